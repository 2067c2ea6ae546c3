package pathstore

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

import (
	"fmt"
	"math"

	"github.com/railwayhistory/railmap/internal/geom"
)

// SymbolicPosition is a resolved (path-independent-of-units) location
// along a curve: a named base position plus a signed arc-length
// displacement already converted to meters by the caller.
type SymbolicPosition struct {
	Base          string
	DisplacementM float64 // signed, meters of arc length
}

// Offset is one of Sideways, Shift or Angle, already converted to meters/
// radians by the caller, applied in declaration order.
type Offset interface {
	apply(f Frame) Frame
}

// Sideways translates by AmountM along the curve's left-hand normal.
// Negative AmountM means ">>" (right); positive means "<<" (left).
type Sideways struct {
	AmountM float64
}

func (o Sideways) apply(f Frame) Frame {
	f.Point = f.Point.Add(f.Tangent.Left().Scale(o.AmountM))
	return f
}

// Shift translates by an absolute 2D vector in meters.
type Shift struct {
	Vector geom.Vector
}

func (o Shift) apply(f Frame) Frame {
	f.Point = f.Point.Add(o.Vector)
	return f
}

// Angle rotates the tangent frame by Radians around the anchor point,
// without moving the point itself; it changes how a marker is drawn at
// that anchor.
type Angle struct {
	Radians float64
}

func (o Angle) apply(f Frame) Frame {
	f.Tangent = f.Tangent.Rotate(o.Radians)
	return f
}

// Frame is a resolved point plus the unit tangent at that point, the unit
// of work offsets are applied to.
type Frame struct {
	Point   Point
	Tangent geom.Vector
}

// Point is geom.Point, aliased so call sites that already import
// pathstore need not also import geom.
type Point = geom.Point

// Resolve finds the point+tangent for sp on p's curve, before any Offsets
// are applied.
func Resolve(p *Path, sp SymbolicPosition) (Frame, error) {
	base, ok := p.ArcOffset(sp.Base)
	if !ok {
		return Frame{}, fmt.Errorf("pathstore: path %q has no position %q", p.ID, sp.Base)
	}
	s := base + sp.DisplacementM
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return Frame{}, fmt.Errorf("pathstore: position %q+%.3f resolves to non-finite arc length", sp.Base, sp.DisplacementM)
	}
	return Frame{Point: p.Curve.PointAt(s), Tangent: p.Curve.TangentAt(s)}, nil
}

// ResolveOffsets applies offs to f in order, returning the final anchor.
func ResolveOffsets(f Frame, offs []Offset) Frame {
	for _, o := range offs {
		f = o.apply(f)
	}
	return f
}

// ResolveSection resolves a Section: either a single point (end == nil) or
// a sub-curve between start and end, with offs applied to every vertex of
// the result.
// If the resolved end arc length is before the start, the sub-curve is
// reversed per the "[a, b] reversed section" rule.
func ResolveSection(p *Path, start SymbolicPosition, end *SymbolicPosition, offs []Offset) (*geom.Curve, error) {
	startBase, ok := p.ArcOffset(start.Base)
	if !ok {
		return nil, fmt.Errorf("pathstore: path %q has no position %q", p.ID, start.Base)
	}
	s0 := startBase + start.DisplacementM

	if end == nil {
		f, err := Resolve(p, start)
		if err != nil {
			return nil, err
		}
		f = ResolveOffsets(f, offs)
		return geom.NewCurve([]geom.Point{f.Point}), nil
	}

	endBase, ok := p.ArcOffset(end.Base)
	if !ok {
		return nil, fmt.Errorf("pathstore: path %q has no position %q", p.ID, end.Base)
	}
	s1 := endBase + end.DisplacementM

	sub := p.Curve.Sub(s0, s1)
	if len(offs) == 0 {
		return sub, nil
	}

	out := make([]geom.Point, len(sub.Vertices))
	for i, v := range sub.Vertices {
		tangent := sub.TangentAt(sub.Cumulative[i])
		f := ResolveOffsets(Frame{Point: v, Tangent: tangent}, offs)
		out[i] = f.Point
	}
	return geom.NewCurve(out), nil
}
