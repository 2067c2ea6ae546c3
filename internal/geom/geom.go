// Package geom holds the plain geometric primitives shared by the path
// store, spatial index and renderer. Everything here is expressed in
// Mercator meters (EPSG:3857); no package in this tree carries raw
// latitude/longitude.
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

// Point is a 2D coordinate in Mercator meters.
type Point struct {
	X, Y float64
}

// Add returns p translated by v.
func (p Point) Add(v Vector) Point {
	return Point{p.X + v.X, p.Y + v.Y}
}

// Vector is a displacement in Mercator meters.
type Vector struct {
	X, Y float64
}

// Scale returns v scaled by s.
func (v Vector) Scale(s float64) Vector {
	return Vector{v.X * s, v.Y * s}
}

// Left returns the left-hand normal of a unit tangent vector (rotate +90deg).
func (v Vector) Left() Vector {
	return Vector{-v.Y, v.X}
}

// Rotate rotates v by theta radians around the origin.
func (v Vector) Rotate(theta float64) Vector {
	s, c := math.Sin(theta), math.Cos(theta)
	return Vector{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Normalize returns a unit vector in the same direction as v, or the zero
// vector if v has zero length.
func (v Vector) Normalize() Vector {
	l := math.Hypot(v.X, v.Y)
	if l == 0 {
		return Vector{}
	}
	return Vector{v.X / l, v.Y / l}
}

// BBox is an axis-aligned bounding box in Mercator meters. A zero-value
// BBox is "empty"; use Empty() to test and Union() to accumulate.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
	set                    bool
}

// EmptyBBox returns a BBox with no extent, ready to be grown with Extend.
func EmptyBBox() BBox {
	return BBox{}
}

// Empty reports whether the box has never been extended.
func (b BBox) Empty() bool {
	return !b.set
}

// Extend grows b to include p, returning the updated box.
func (b BBox) Extend(p Point) BBox {
	if !b.set {
		return BBox{p.X, p.Y, p.X, p.Y, true}
	}
	return BBox{
		MinX: math.Min(b.MinX, p.X),
		MinY: math.Min(b.MinY, p.Y),
		MaxX: math.Max(b.MaxX, p.X),
		MaxY: math.Max(b.MaxY, p.Y),
		set:  true,
	}
}

// Union returns the smallest box containing both b and o.
func (b BBox) Union(o BBox) BBox {
	if o.Empty() {
		return b
	}
	if b.Empty() {
		return o
	}
	return BBox{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
		set:  true,
	}
}

// Expand grows the box by margin meters on every side.
func (b BBox) Expand(margin float64) BBox {
	if b.Empty() {
		return b
	}
	return BBox{
		MinX: b.MinX - margin,
		MinY: b.MinY - margin,
		MaxX: b.MaxX + margin,
		MaxY: b.MaxY + margin,
		set:  true,
	}
}

// Intersects reports whether b and o overlap. Touching counts as overlap
// so a feature exactly on a tile boundary appears in both neighbors.
func (b BBox) Intersects(o BBox) bool {
	if b.Empty() || o.Empty() {
		return false
	}
	return b.MinX <= o.MaxX && b.MaxX >= o.MinX && b.MinY <= o.MaxY && b.MaxY >= o.MinY
}
