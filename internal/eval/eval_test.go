package eval

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

	"github.com/railwayhistory/railmap/internal/dsl"
	"github.com/railwayhistory/railmap/internal/model"
	"github.com/railwayhistory/railmap/internal/pathstore"
	"github.com/railwayhistory/railmap/internal/style"
)

func testStyle(t *testing.T) *style.Table {
	t.Helper()
	st, err := style.New(style.BuildParams{
		DoubleTrackMeters:  []float64{4.0},
		SwitchLengthMeters: []float64{40.0},
		DetailUnitMeters:   []float64{1000, 500, 200, 50},
		PointMeters:        0.3528,
		ZoomThresholds:     []int{6, 10, 13},
	})
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func run(t *testing.T, src string) *model.FeatureSet {
	t.Helper()
	stmts, err := dsl.Parse("test.map", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fset := &model.FeatureSet{}
	store := pathstore.NewStore(pathstore.FileLoader{Root: "../../testdata/paths"})
	ev := NewEvaluator(store, testStyle(t), fset)
	if err := ev.Run(stmts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return fset
}

func TestScenarioOneSingleTrackFeature(t *testing.T) {
	src := `let flwhag = path("de.1000");
with detail = 1 {
	track(:first, flwhag[:flw.f, :f]);
}
`
	fset := run(t, src)
	if len(fset.Features) != 1 {
		t.Fatalf("len(Features) = %d, want 1", len(fset.Features))
	}
	f := fset.Features[0]
	if f.Kind != model.Track {
		t.Errorf("Kind = %v, want Track", f.Kind)
	}
	if f.Detail != 1 {
		t.Errorf("Detail = %d, want 1", f.Detail)
	}
	if !f.Symbols.Has("first") {
		t.Errorf("Symbols = %v, want {first}", f.Symbols)
	}
	if f.BBox.Empty() {
		t.Error("BBox should not be empty")
	}
}

func TestScenarioTwoSidewaysOffset(t *testing.T) {
	src := `let flwhag = path("de.1000");
with detail = 1 {
	track(:first, flwhag[:fri - 1sw, :fri + 1sw] << 0.5dt);
}
`
	fset := run(t, src)
	f := fset.Features[0]
	if len(f.Geom.Curve.Vertices) < 2 {
		t.Fatalf("expected a multi-vertex sub-curve, got %d vertices", len(f.Geom.Curve.Vertices))
	}
}

func TestMultipleDetailBlocksForSameRoute(t *testing.T) {
	src := `let flwhag = path("de.1000");
with detail = 1 {
	track(:first, flwhag[:flw.f, :f]);
}
with detail = 2 {
	track(:first, flwhag[:flw.f, :f]);
}
`
	fset := run(t, src)
	if len(fset.Features) != 2 {
		t.Fatalf("len(Features) = %d, want 2", len(fset.Features))
	}
	if fset.Features[0].Detail != 1 || fset.Features[1].Detail != 2 {
		t.Errorf("unexpected detail levels: %d, %d", fset.Features[0].Detail, fset.Features[1].Detail)
	}
	if fset.Features[0].Seq != 0 || fset.Features[1].Seq != 1 {
		t.Errorf("unexpected declaration-order Seq: %d, %d", fset.Features[0].Seq, fset.Features[1].Seq)
	}
}

func TestUndefinedNameIsEvalError(t *testing.T) {
	stmts, err := dsl.Parse("bad.map", `with detail = 1 { track(:first, nope[:a, :b]); }`)
	if err != nil {
		t.Fatal(err)
	}
	fset := &model.FeatureSet{}
	store := pathstore.NewStore(pathstore.FileLoader{Root: "../../testdata/paths"})
	ev := NewEvaluator(store, testStyle(t), fset)
	if err := ev.Run(stmts); err == nil {
		t.Fatal("expected an EvalError for an undefined name")
	}
}

func TestRunTolerantSkipsBadStatementButKeepsGood(t *testing.T) {
	stmts, err := dsl.Parse("mixed.map", `let flwhag = path("de.1000");
with detail = 1 {
	track(:first, nope[:a, :b]);
	track(:second, flwhag[:flw.f, :f]);
}
`)
	if err != nil {
		t.Fatal(err)
	}
	fset := &model.FeatureSet{}
	store := pathstore.NewStore(pathstore.FileLoader{Root: "../../testdata/paths"})
	ev := NewEvaluator(store, testStyle(t), fset)

	var errs []error
	ev.RunTolerant(stmts, func(err error) { errs = append(errs, err) })

	if len(errs) == 0 {
		t.Fatal("expected at least one tolerated error")
	}
	if len(fset.Features) != 1 {
		t.Fatalf("len(Features) = %d, want 1 (the good statement should still be applied)", len(fset.Features))
	}
}
