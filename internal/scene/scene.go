// Package scene assembles the per-tile Scene the Renderer walks: a tile
// bounds query against the spatial index, filtered by layer/detail/z and
// sorted deterministically.
package scene

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
	"sort"

	"github.com/railwayhistory/railmap/internal/index"
	"github.com/railwayhistory/railmap/internal/model"
	"github.com/railwayhistory/railmap/internal/style"
	"github.com/railwayhistory/railmap/internal/tile"
)

// overscanBP is the baseline overscan margin in typographic points added
// to every tile query, covering stroke widths and label boxes that bleed
// across tile edges. It is converted to meters per tile via the
// style table's bp constant.
const overscanBP = 24.0

// Scene is an immutable, ordered list of Features to draw for one tile
// request, borrowing directly into the Atlas's FeatureSet — it owns no
// geometry of its own.
type Scene struct {
	Coord    tile.Coord
	Detail   int
	Features []*model.Feature
}

// Assemble builds the Scene for one (layer, z, x, y) request: tile bounds
// plus overscan, zoom to detail level, index query, layer/detail/z-order
// filtering, stable sort.
func Assemble(idx *index.Index, st *style.Table, layers map[string]model.Layer, layerName string, coord tile.Coord) (*Scene, error) {
	layer, ok := layers[layerName]
	if !ok {
		return nil, &UnknownLayerError{Layer: layerName}
	}

	detail := st.DetailForZoom(coord.Z)
	marginM, err := st.Meters(style.UnitBP, overscanBP, detail)
	if err != nil {
		return nil, err
	}
	bounds := tile.BoundsWithMargin(coord, marginM)

	candidates := idx.Query(bounds)
	var kept []*model.Feature
	for _, f := range candidates {
		if f.Detail != detail {
			continue
		}
		if !layer.Accepts(f) {
			continue
		}
		kept = append(kept, f)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].ZOrder != kept[j].ZOrder {
			return kept[i].ZOrder < kept[j].ZOrder
		}
		return kept[i].Seq < kept[j].Seq
	})

	return &Scene{Coord: coord, Detail: detail, Features: kept}, nil
}

// UnknownLayerError is returned when Assemble is asked for a layer name
// not present in the configured layer table; the HTTP handler maps this to
// a 404.
type UnknownLayerError struct {
	Layer string
}

func (e *UnknownLayerError) Error() string {
	return "scene: unknown layer " + e.Layer
}
