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
	"fmt"
	"image/color"
	"io"
	"strings"
)

// EncodeSVG serializes the accumulated ops as an SVG document, the
// alternate output format requested via the tile request's `format`
// parameter. Unlike the raster encoder, strokes and text are
// emitted as real `<path>`/`<text>` elements rather than approximated.
func (c *Canvas) EncodeSVG(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		c.width, c.height, c.width, c.height)
	b.WriteByte('\n')

	for _, op := range c.ops {
		switch o := op.(type) {
		case strokeOp:
			writeStrokeSVG(&b, o)
		case polygonOp:
			writePolygonSVG(&b, o)
		case circleOp:
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n",
				o.x, o.y, o.radiusPx, hexColor(o.color))
		case rectOp:
			fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
				o.x, o.y, o.w, o.h, hexColor(o.color))
		case textOp:
			fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="11">%s</text>`+"\n",
				o.x, o.y, hexColor(o.color), escapeXML(o.text))
		}
	}

	b.WriteString("</svg>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeStrokeSVG(b *strings.Builder, o strokeOp) {
	if len(o.points) == 0 {
		return
	}
	var d strings.Builder
	fmt.Fprintf(&d, "M %.2f %.2f", o.points[0][0], o.points[0][1])
	for _, p := range o.points[1:] {
		fmt.Fprintf(&d, " L %.2f %.2f", p[0], p[1])
	}
	dash := ""
	if o.dashed {
		dash = fmt.Sprintf(` stroke-dasharray="%d,%d"`, dashOnPx, dashOffPx)
	}
	fmt.Fprintf(b, `<path d="%s" fill="none" stroke="%s" stroke-width="%.2f"%s/>`+"\n",
		d.String(), hexColor(o.color), o.widthPx, dash)
}

func writePolygonSVG(b *strings.Builder, o polygonOp) {
	if len(o.points) == 0 {
		return
	}
	var pts strings.Builder
	for i, p := range o.points {
		if i > 0 {
			pts.WriteByte(' ')
		}
		fmt.Fprintf(&pts, "%.2f,%.2f", p[0], p[1])
	}
	fmt.Fprintf(b, `<polygon points="%s" fill="%s"/>`+"\n", pts.String(), hexColor(o.color))
}

func hexColor(c color.RGBA) string {
	if c.A == 0 {
		return "none"
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
