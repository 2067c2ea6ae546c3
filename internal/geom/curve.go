package geom

/*
 Copyright 2019 - 2025 Crunchy Data Solutions, Inc.
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at
      http://www.apache.org/licenses/LICENSE-2.0
 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

import "math"

// Curve is a dense polyline with precomputed cumulative arc length, used
// both for whole Paths and for the sub-curves ("Sections") sliced out of
// them. Resolution happens once, at load time; the renderer only ever
// walks a Curve's Vertices, never re-resolves symbolic positions.
type Curve struct {
	Vertices []Point
	// Cumulative[i] is the arc length from Vertices[0] to Vertices[i].
	Cumulative []float64
}

// NewCurve builds a Curve from a dense vertex sequence, precomputing
// cumulative arc length.
func NewCurve(vertices []Point) *Curve {
	cum := make([]float64, len(vertices))
	for i := 1; i < len(vertices); i++ {
		cum[i] = cum[i-1] + dist(vertices[i-1], vertices[i])
	}
	return &Curve{Vertices: vertices, Cumulative: cum}
}

func dist(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Length returns the total arc length of the curve.
func (c *Curve) Length() float64 {
	if len(c.Cumulative) == 0 {
		return 0
	}
	return c.Cumulative[len(c.Cumulative)-1]
}

// PointAt interpolates the point at arc length s, clamped to [0, Length()].
func (c *Curve) PointAt(s float64) Point {
	i := c.segmentIndex(s)
	return c.interpolate(i, s)
}

// TangentAt returns the unit tangent direction at arc length s. A
// single-vertex curve (a resolved point, no direction of travel) has no
// tangent; callers get the zero vector and fall back to their own
// default orientation.
func (c *Curve) TangentAt(s float64) Vector {
	if len(c.Vertices) < 2 {
		return Vector{}
	}
	i := c.segmentIndex(s)
	a, b := c.Vertices[i], c.Vertices[i+1]
	return Vector{b.X - a.X, b.Y - a.Y}.Normalize()
}

// segmentIndex returns the index i such that s falls within
// [Cumulative[i], Cumulative[i+1]], clamped to valid segments.
func (c *Curve) segmentIndex(s float64) int {
	n := len(c.Vertices)
	if n < 2 {
		return 0
	}
	if s <= c.Cumulative[0] {
		return 0
	}
	last := c.Cumulative[n-1]
	if s >= last {
		return n - 2
	}
	// Linear scan is fine: path vertex counts are small (tens to low
	// hundreds) and resolution happens once at load time, not per-tile.
	for i := 0; i < n-2; i++ {
		if s < c.Cumulative[i+1] {
			return i
		}
	}
	return n - 2
}

func (c *Curve) interpolate(i int, s float64) Point {
	a, b := c.Vertices[i], c.Vertices[i+1]
	segLen := c.Cumulative[i+1] - c.Cumulative[i]
	if segLen <= 0 {
		return a
	}
	t := (s - c.Cumulative[i]) / segLen
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// Sub returns the sub-curve between arc lengths s0 and s1. If s1 < s0 the
// result is reversed, matching the DSL's "[a, b]" reversed-section rule.
func (c *Curve) Sub(s0, s1 float64) *Curve {
	reversed := s1 < s0
	if reversed {
		s0, s1 = s1, s0
	}
	s0 = clamp(s0, 0, c.Length())
	s1 = clamp(s1, 0, c.Length())

	var verts []Point
	verts = append(verts, c.PointAt(s0))
	for i, cum := range c.Cumulative {
		if cum > s0 && cum < s1 {
			verts = append(verts, c.Vertices[i])
		}
	}
	verts = append(verts, c.PointAt(s1))

	if reversed {
		for l, r := 0, len(verts)-1; l < r; l, r = l+1, r-1 {
			verts[l], verts[r] = verts[r], verts[l]
		}
	}
	return NewCurve(verts)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BBox returns the axis-aligned bounding box of the curve's vertices.
func (c *Curve) BBox() BBox {
	b := EmptyBBox()
	for _, v := range c.Vertices {
		b = b.Extend(v)
	}
	return b
}

// Translate returns a new Curve with every vertex shifted by v.
func (c *Curve) Translate(v Vector) *Curve {
	out := make([]Point, len(c.Vertices))
	for i, p := range c.Vertices {
		out[i] = p.Add(v)
	}
	return NewCurve(out)
}

// JoinSmooth joins two curves with a cubic Bezier between the endpoint of a
// and the start of b, using each curve's tangent at the join.
func JoinSmooth(a, b *Curve) *Curve {
	if len(a.Vertices) == 0 {
		return b
	}
	if len(b.Vertices) == 0 {
		return a
	}
	p0 := a.Vertices[len(a.Vertices)-1]
	p3 := b.Vertices[0]
	t0 := a.TangentAt(a.Length())
	t1 := b.TangentAt(0)
	d := dist(p0, p3) / 3
	p1 := p0.Add(t0.Scale(d))
	p2 := p3.Add(t1.Scale(-d))

	const steps = 8
	bez := make([]Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		bez = append(bez, cubicBezier(p0, p1, p2, p3, t))
	}

	verts := make([]Point, 0, len(a.Vertices)+len(bez)+len(b.Vertices))
	verts = append(verts, a.Vertices...)
	verts = append(verts, bez[1:len(bez)-1]...)
	verts = append(verts, b.Vertices...)
	return NewCurve(verts)
}

func cubicBezier(p0, p1, p2, p3 Point, t float64) Point {
	mt := 1 - t
	a := mt * mt * mt
	bcoef := 3 * mt * mt * t
	ccoef := 3 * mt * t * t
	d := t * t * t
	return Point{
		X: a*p0.X + bcoef*p1.X + ccoef*p2.X + d*p3.X,
		Y: a*p0.Y + bcoef*p1.Y + ccoef*p2.Y + d*p3.Y,
	}
}

// JoinStraight joins two curves with a straight segment between a's
// endpoint and b's start (the "--" connector).
func JoinStraight(a, b *Curve) *Curve {
	if len(a.Vertices) == 0 {
		return b
	}
	if len(b.Vertices) == 0 {
		return a
	}
	verts := make([]Point, 0, len(a.Vertices)+len(b.Vertices))
	verts = append(verts, a.Vertices...)
	verts = append(verts, b.Vertices...)
	return NewCurve(verts)
}
