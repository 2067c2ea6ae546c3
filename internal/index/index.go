// Package index wraps a bulk-loaded R-tree over Feature bounding boxes for
// the tile-bounds range queries the Scene Assembler issues at high
// frequency.
package index

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
	"github.com/dhconnelly/rtreego"

	"github.com/railwayhistory/railmap/internal/geom"
	"github.com/railwayhistory/railmap/internal/model"
)

// minExtent guards against a zero-width/height rectangle, which rtreego
// rejects; point features (markers, stations) collapse to a single
// coordinate and need a minimum non-zero box.
const minExtent = 1e-6

// indexedFeature adapts a *model.Feature to rtreego.Spatial, the same
// "wrap a domain type behind Bounds()" shape used by the s57 chart parser.
type indexedFeature struct {
	feature *model.Feature
}

func (f *indexedFeature) Bounds() rtreego.Rect {
	b := f.feature.BBox
	w := b.MaxX - b.MinX
	h := b.MaxY - b.MinY
	if w < minExtent {
		w = minExtent
	}
	if h < minExtent {
		h = minExtent
	}
	rect, _ := rtreego.NewRect(rtreego.Point{b.MinX, b.MinY}, []float64{w, h})
	return rect
}

// Index is an R-tree over one FeatureSet's bounding boxes, built once at
// load time and immutable thereafter — it is swapped, never mutated, on
// reload.
type Index struct {
	tree *rtreego.Rtree
}

// Build bulk-loads an Index over every Feature in fs. Tree parameters (2
// dimensions, 25/50 min/max children) are reasonable defaults for corpora
// of a few thousand features.
func Build(fs *model.FeatureSet) *Index {
	spatials := make([]rtreego.Spatial, len(fs.Features))
	for i, f := range fs.Features {
		spatials[i] = &indexedFeature{feature: f}
	}
	return &Index{tree: rtreego.NewTree(2, 25, 50, spatials...)}
}

// Query returns every Feature whose bounding box intersects bbox,
// including boxes that only touch its edge.
func (idx *Index) Query(bbox geom.BBox) []*model.Feature {
	if bbox.Empty() {
		return nil
	}
	w := bbox.MaxX - bbox.MinX
	h := bbox.MaxY - bbox.MinY
	if w < minExtent {
		w = minExtent
	}
	if h < minExtent {
		h = minExtent
	}
	// rtreego's intersection test is strict, so the search rectangle is
	// padded by minExtent and the candidates are then filtered with
	// geom.BBox.Intersects, which counts touching edges.
	rect, err := rtreego.NewRect(rtreego.Point{bbox.MinX - minExtent, bbox.MinY - minExtent}, []float64{w + 2*minExtent, h + 2*minExtent})
	if err != nil {
		return nil
	}
	results := idx.tree.SearchIntersect(rect)
	out := make([]*model.Feature, 0, len(results))
	for _, r := range results {
		if f := r.(*indexedFeature).feature; f.BBox.Intersects(bbox) {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the number of Features indexed.
func (idx *Index) Len() int {
	return idx.tree.Size()
}
