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
	"testing"

	"github.com/railwayhistory/railmap/internal/geom"
	"github.com/railwayhistory/railmap/internal/model"
)

func featureAt(x0, y0, x1, y1 float64) *model.Feature {
	bbox := geom.EmptyBBox().Extend(geom.Point{X: x0, Y: y0}).Extend(geom.Point{X: x1, Y: y1})
	return &model.Feature{BBox: bbox}
}

func TestBuildAndQueryReturnsIntersectingFeatures(t *testing.T) {
	fs := &model.FeatureSet{}
	a := featureAt(0, 0, 10, 10)
	b := featureAt(100, 100, 110, 110)
	fs.Append(a)
	fs.Append(b)

	idx := Build(fs)
	if idx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", idx.Len())
	}

	results := idx.Query(geom.EmptyBBox().Extend(geom.Point{X: -5, Y: -5}).Extend(geom.Point{X: 5, Y: 5}))
	if len(results) != 1 || results[0] != a {
		t.Fatalf("Query near a = %v, want [a]", results)
	}

	results = idx.Query(geom.EmptyBBox().Extend(geom.Point{X: 1000, Y: 1000}).Extend(geom.Point{X: 1010, Y: 1010}))
	if len(results) != 0 {
		t.Fatalf("Query far away = %v, want none", results)
	}
}

func TestQueryIncludesFeatureTouchingBoundary(t *testing.T) {
	fs := &model.FeatureSet{}
	onBoundary := featureAt(10, 0, 20, 10)
	fs.Append(onBoundary)

	idx := Build(fs)
	results := idx.Query(geom.EmptyBBox().Extend(geom.Point{X: 0, Y: 0}).Extend(geom.Point{X: 10, Y: 10}))
	if len(results) != 1 {
		t.Fatalf("expected the boundary-touching feature to be included, got %d results", len(results))
	}
}

func TestQueryOnEmptyIndexReturnsNothing(t *testing.T) {
	idx := Build(&model.FeatureSet{})
	if got := idx.Query(geom.EmptyBBox().Extend(geom.Point{X: 0, Y: 0}).Extend(geom.Point{X: 1, Y: 1})); len(got) != 0 {
		t.Fatalf("expected no results, got %v", got)
	}
}
