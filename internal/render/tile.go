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
	"bytes"
	"fmt"

	"github.com/railwayhistory/railmap/internal/atlas"
	"github.com/railwayhistory/railmap/internal/scene"
	"github.com/railwayhistory/railmap/internal/tile"
)

// Format is one of the two encodings a tile request may ask for.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat maps a URL extension ("png"/"svg") to a Format, or reports
// ok=false for anything else so the caller can turn it into a
// RequestError.
func ParseFormat(ext string) (Format, bool) {
	switch Format(ext) {
	case FormatPNG, FormatSVG:
		return Format(ext), true
	default:
		return "", false
	}
}

// RenderTile produces the encoded bytes for one tile: it assembles the
// Scene for coord against snap, draws it and encodes the result in the
// requested format. Scene assembly and drawing are strictly sequential;
// nothing here suspends.
func RenderTile(snap *atlas.Snapshot, layerName string, coord tile.Coord, format Format) ([]byte, error) {
	if !coord.Valid() {
		return nil, fmt.Errorf("render: tile coordinate out of range: %s", coord)
	}

	sc, err := scene.Assemble(snap.Index, snap.Style, snap.Layers, layerName, coord)
	if err != nil {
		return nil, err
	}

	canvas := NewCanvas(coord)
	NewRenderer(snap.Style).Draw(sc, canvas)

	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		if err := canvas.EncodePNG(&buf); err != nil {
			return nil, fmt.Errorf("render: encode PNG: %w", err)
		}
	case FormatSVG:
		if err := canvas.EncodeSVG(&buf); err != nil {
			return nil, fmt.Errorf("render: encode SVG: %w", err)
		}
	default:
		return nil, fmt.Errorf("render: unknown format %q", format)
	}
	return buf.Bytes(), nil
}
