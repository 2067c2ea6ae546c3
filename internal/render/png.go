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
	"image/png"
	"io"

	"github.com/fogleman/gg"
)

// EncodePNG rasterizes the accumulated ops onto a RasterSize×RasterSize
// transparent canvas and writes a PNG. Stroking, filling and text all go
// through gg's anti-aliased rasterizer; text uses gg's built-in bitmap
// face, which is enough for the short station/badge labels tiles carry.
func (c *Canvas) EncodePNG(w io.Writer) error {
	dc := gg.NewContext(c.width, c.height)
	for _, op := range c.ops {
		switch o := op.(type) {
		case strokeOp:
			if len(o.points) < 2 {
				continue
			}
			dc.MoveTo(o.points[0][0], o.points[0][1])
			for _, p := range o.points[1:] {
				dc.LineTo(p[0], p[1])
			}
			if o.dashed {
				dc.SetDash(dashOnPx, dashOffPx)
			}
			dc.SetColor(o.color)
			dc.SetLineWidth(o.widthPx)
			dc.Stroke()
			if o.dashed {
				dc.SetDash()
			}
		case polygonOp:
			if len(o.points) < 3 {
				continue
			}
			dc.MoveTo(o.points[0][0], o.points[0][1])
			for _, p := range o.points[1:] {
				dc.LineTo(p[0], p[1])
			}
			dc.ClosePath()
			dc.SetColor(o.color)
			dc.Fill()
		case circleOp:
			dc.DrawCircle(o.x, o.y, o.radiusPx)
			dc.SetColor(o.color)
			dc.Fill()
		case rectOp:
			dc.DrawRectangle(o.x, o.y, o.w, o.h)
			dc.SetColor(o.color)
			dc.Fill()
		case textOp:
			dc.SetColor(o.color)
			dc.DrawString(o.text, o.x, o.y)
		}
	}
	return png.Encode(w, dc.Image())
}
