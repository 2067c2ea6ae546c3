// Package render implements the Canvas capability and the Renderer that
// walks an assembled Scene and draws it. The Canvas keeps drawing
// independent of the output encoding: operations are recorded once and
// replayed by either encoder — gg's anti-aliased rasterizer for PNG
// output, real <path>/<text> elements for SVG. Labels are single-line
// strings; multi-line station boxes are emitted as separate text ops.
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

	"github.com/railwayhistory/railmap/internal/geom"
	"github.com/railwayhistory/railmap/internal/tile"
)

// Canvas accumulates draw operations in Mercator-meter coordinates,
// projecting them to tile-pixel space via the tile's fixed affine
// transform, and can serialize the accumulated scene to PNG or SVG.
type Canvas struct {
	coord  tile.Coord
	width  int
	height int
	ops    []drawOp
}

// NewCanvas creates a Canvas sized for coord's zoom level, with pixel
// (0,0) at the tile's top-left Mercator corner.
func NewCanvas(coord tile.Coord) *Canvas {
	return &Canvas{coord: coord, width: tile.RasterSize, height: tile.RasterSize}
}

func (c *Canvas) project(p geom.Point) (float64, float64) {
	return tile.ToPixel(c.coord, p)
}

// Dash pattern in pixels for the `:removed` muted variant, shared by both
// encoders so the two output formats agree.
const (
	dashOnPx  = 6
	dashOffPx = 4
)

type drawOp interface{ isDrawOp() }

type strokeOp struct {
	points  [][2]float64
	widthPx float64
	color   color.RGBA
	dashed  bool
}

func (strokeOp) isDrawOp() {}

type polygonOp struct {
	points [][2]float64
	color  color.RGBA
}

func (polygonOp) isDrawOp() {}

type circleOp struct {
	x, y, radiusPx float64
	color          color.RGBA
}

func (circleOp) isDrawOp() {}

type rectOp struct {
	x, y, w, h float64
	color      color.RGBA
}

func (rectOp) isDrawOp() {}

type textOp struct {
	x, y  float64
	text  string
	color color.RGBA
}

func (textOp) isDrawOp() {}

// StrokeCurve draws curve as a stroked polyline widthPx wide. dashed
// requests the muted dashed variant used for `:removed` tracks.
func (c *Canvas) StrokeCurve(curve *geom.Curve, widthPx float64, col color.RGBA, dashed bool) {
	if len(curve.Vertices) == 0 {
		return
	}
	pts := make([][2]float64, len(curve.Vertices))
	for i, v := range curve.Vertices {
		x, y := c.project(v)
		pts[i] = [2]float64{x, y}
	}
	c.ops = append(c.ops, strokeOp{points: pts, widthPx: widthPx, color: col, dashed: dashed})
}

// FillPolygon fills the closed polygon described by pts (a small helper
// used for line_badge rectangles and catenary hatching quads).
func (c *Canvas) FillPolygon(pts []geom.Point, col color.RGBA) {
	out := make([][2]float64, len(pts))
	for i, p := range pts {
		x, y := c.project(p)
		out[i] = [2]float64{x, y}
	}
	c.ops = append(c.ops, polygonOp{points: out, color: col})
}

// Circle draws a filled disc centered at center, used for simple marker
// pictograms.
func (c *Canvas) Circle(center geom.Point, radiusPx float64, col color.RGBA) {
	x, y := c.project(center)
	c.ops = append(c.ops, circleOp{x: x, y: y, radiusPx: radiusPx, color: col})
}

// Rect draws a filled rectangle centered at center, used for line_badge
// boxes.
func (c *Canvas) Rect(center geom.Point, wPx, hPx float64, col color.RGBA) {
	x, y := c.project(center)
	c.ops = append(c.ops, rectOp{x: x - wPx/2, y: y - hPx/2, w: wPx, h: hPx, color: col})
}

// Text places a single-line label anchored at pos, used for station name/
// kilometer annotations and line_badge numbers.
func (c *Canvas) Text(pos geom.Point, text string, col color.RGBA) {
	x, y := c.project(pos)
	c.ops = append(c.ops, textOp{x: x, y: y, text: text, color: col})
}
