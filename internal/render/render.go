// Package render's Renderer walks an assembled Scene and draws each
// Feature onto a Canvas per its Kind and symbols.
package render

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
	"image/color"
	"math"

	"github.com/railwayhistory/railmap/internal/geom"
	"github.com/railwayhistory/railmap/internal/model"
	"github.com/railwayhistory/railmap/internal/scene"
	"github.com/railwayhistory/railmap/internal/style"
)

var (
	colorTrackFirst   = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	colorTrackDefault = color.RGBA{R: 0x50, G: 0x50, B: 0x50, A: 0xff}
	colorTrackRemoved = color.RGBA{R: 0x90, G: 0x90, B: 0x90, A: 0xa0}
	colorStation      = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
	colorMarker       = color.RGBA{R: 0x00, G: 0x40, B: 0x90, A: 0xff}
	colorBadge        = color.RGBA{R: 0xb0, G: 0x10, B: 0x10, A: 0xff}
	colorCatenary     = color.RGBA{R: 0x80, G: 0x80, B: 0x20, A: 0xd0}
)

const (
	widthDefaultPx = 2.0
	widthFirstPx   = 3.0
	markerRadiusPx = 5.0
)

// Renderer draws Scenes onto a Canvas using a style Table for the
// detail-dependent double-track spacing.
type Renderer struct {
	Style *style.Table
}

// NewRenderer builds a Renderer bound to st.
func NewRenderer(st *style.Table) *Renderer {
	return &Renderer{Style: st}
}

// Draw iterates sc.Features in order and issues the corresponding Canvas
// operations.
func (r *Renderer) Draw(sc *scene.Scene, c *Canvas) {
	for _, f := range sc.Features {
		switch f.Kind {
		case model.Track:
			r.drawTrack(c, f)
		case model.Marker:
			r.drawMarker(c, f)
		case model.Station:
			r.drawStation(c, f)
		case model.LineBadge:
			r.drawLineBadge(c, f)
		default:
			r.drawTrack(c, f)
		}
	}
}

func (r *Renderer) drawTrack(c *Canvas, f *model.Feature) {
	curve := f.Geom.Curve
	if curve == nil || len(curve.Vertices) == 0 {
		return
	}

	col, widthPx, dashed := trackStyle(f.Symbols)

	if f.Symbols.Has("double") {
		spacing := r.Style.DoubleTrackSpacing(f.Detail) / 2
		c.StrokeCurve(offsetCurve(curve, spacing), widthPx, col, dashed)
		c.StrokeCurve(offsetCurve(curve, -spacing), widthPx, col, dashed)
	} else {
		c.StrokeCurve(curve, widthPx, col, dashed)
	}

	if f.Symbols.Has("cat") {
		drawCatenaryHatching(c, curve)
	}
}

func trackStyle(syms model.SymbolSet) (color.RGBA, float64, bool) {
	switch {
	case syms.Has("removed"):
		return colorTrackRemoved, widthDefaultPx, true
	case syms.HasAny("first", "station"):
		return colorTrackFirst, widthFirstPx, false
	default:
		return colorTrackDefault, widthDefaultPx, false
	}
}

// offsetCurve returns a copy of curve shifted sideways by offsetM meters
// (positive is left of travel direction), used to draw the two rails of a
// `:double` track.
func offsetCurve(curve *geom.Curve, offsetM float64) *geom.Curve {
	verts := make([]geom.Point, len(curve.Vertices))
	for i, v := range curve.Vertices {
		s := curve.Cumulative[i]
		n := curve.TangentAt(s).Left()
		verts[i] = v.Add(n.Scale(offsetM))
	}
	return geom.NewCurve(verts)
}

// drawCatenaryHatching overlays short cross-ties along curve every 40
// meters of arc length, a schematic stand-in for the overhead-wire
// hatching `:cat` denotes.
func drawCatenaryHatching(c *Canvas, curve *geom.Curve) {
	const stepM = 40.0
	length := curve.Length()
	for s := 0.0; s < length; s += stepM {
		p := curve.PointAt(s)
		tangent := curve.TangentAt(s)
		n := tangent.Left()
		half := tangent.Scale(0.5)
		a := p.Add(n.Scale(3)).Add(half)
		b := p.Add(n.Scale(-3)).Add(half)
		d := p.Add(n.Scale(-3)).Add(half.Scale(-1))
		e := p.Add(n.Scale(3)).Add(half.Scale(-1))
		c.FillPolygon([]geom.Point{a, b, d, e}, colorCatenary)
	}
}

// drawMarker stamps a pictogram anchor: a filled disc rotated to the
// anchor's tangent and mirrored across the tangent if `:left` is set.
// Pictogram art itself (:de_bf, :de_abzw, :de_dirgr, :statdt) is
// not rendered as distinct artwork; the Canvas abstraction only promises
// stroked/filled primitives and text, not image sprites.
func (r *Renderer) drawMarker(c *Canvas, f *model.Feature) {
	curve := f.Geom.Curve
	if curve == nil || len(curve.Vertices) == 0 {
		return
	}
	center := curve.Vertices[0]
	c.Circle(center, markerRadiusPx, colorMarker)

	tangent := curve.TangentAt(0)
	theta := math.Atan2(tangent.Y, tangent.X)
	if f.Symbols.Has("left") {
		theta = -theta
	}
	dir := geom.Vector{X: math.Cos(theta), Y: math.Sin(theta)}
	side := dir.Left()
	tip := center.Add(dir.Scale(8))
	base1 := center.Add(side.Scale(2.5))
	base2 := center.Add(side.Scale(-2.5))
	c.FillPolygon([]geom.Point{base1, base2, tip}, colorMarker)
}

// drawStation draws a text box anchored at the station position: side
// determines which side of the anchor the box sits on, name is the first
// line and the auxiliary kilometer/sub-line annotation the second.
func (r *Renderer) drawStation(c *Canvas, f *model.Feature) {
	curve := f.Geom.Curve
	if curve == nil || len(curve.Vertices) == 0 || f.Text == nil {
		return
	}
	anchor := curve.Vertices[0]
	c.Circle(anchor, 3, colorStation)

	offsetM := 10.0
	if f.Text.Side == "left" || f.Symbols.Has("left") {
		offsetM = -offsetM
	}
	labelPos := geom.Point{X: anchor.X + offsetM, Y: anchor.Y}
	c.Text(labelPos, f.Text.Name, colorStation)
	if f.Text.Aux != "" {
		c.Text(geom.Point{X: labelPos.X, Y: labelPos.Y + 12}, f.Text.Aux, colorStation)
	}
}

// drawLineBadge draws a small filled rectangle with the route number at
// its symbolic offset.
func (r *Renderer) drawLineBadge(c *Canvas, f *model.Feature) {
	curve := f.Geom.Curve
	if curve == nil || len(curve.Vertices) == 0 {
		return
	}
	center := curve.Vertices[0]
	c.Rect(center, 20, 14, colorBadge)
	if f.Text != nil && f.Text.Name != "" {
		c.Text(geom.Point{X: center.X - 8, Y: center.Y + 4}, f.Text.Name, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	}
}
