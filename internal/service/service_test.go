package service

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
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/railwayhistory/railmap/internal/atlas"
	"github.com/railwayhistory/railmap/internal/cache"
	"github.com/railwayhistory/railmap/internal/geom"
	"github.com/railwayhistory/railmap/internal/index"
	"github.com/railwayhistory/railmap/internal/model"
	"github.com/railwayhistory/railmap/internal/style"
	"github.com/railwayhistory/railmap/internal/tile"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// testSnapshot builds a one-track snapshot whose feature sits in the
// middle of tile 9/268/161 at detail 2 (the detail z=9 maps to with the
// default zoom thresholds).
func testSnapshot() (*atlas.Snapshot, error) {
	st, err := style.New(style.BuildParams{
		DoubleTrackMeters:  []float64{4.0},
		SwitchLengthMeters: []float64{40.0},
		DetailUnitMeters:   []float64{1000, 500, 200, 50},
		PointMeters:        0.3528,
		ZoomThresholds:     []int{6, 10, 13},
	})
	if err != nil {
		return nil, err
	}

	coord := tile.Coord{Z: 9, X: 268, Y: 161}
	b := tile.Bounds(coord)
	cy := (b.MinY + b.MaxY) / 2
	curve := geom.NewCurve([]geom.Point{
		{X: b.MinX, Y: cy},
		{X: b.MaxX, Y: cy},
	})

	fs := &model.FeatureSet{}
	fs.Append(&model.Feature{
		Kind:    model.Track,
		Geom:    model.Geometry{Curve: curve},
		Symbols: model.NewSymbolSet("first"),
		Detail:  2,
		ZOrder:  model.DefaultZOrder(model.Track),
		BBox:    curve.BBox(),
	})
	return &atlas.Snapshot{
		Features: fs,
		Index:    index.Build(fs),
		Style:    st,
		Layers:   model.StandardLayers(),
	}, nil
}

func testService(t *testing.T) *Service {
	t.Helper()
	a, err := atlas.New(testSnapshot)
	if err != nil {
		t.Fatal(err)
	}
	tc, err := cache.NewTileCache(64, 0)
	if err != nil {
		t.Fatal(err)
	}
	return New(a, tc, NewCacheInvalidatingReloader(a, tc), nil)
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", url, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTileEndpointServesPNG(t *testing.T) {
	s := testService(t)
	h := s.Handler()

	rec := get(t, h, "/el/9/268/161.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), pngMagic) {
		t.Error("body does not start with the PNG magic header")
	}
}

func TestTileEndpointServesSVG(t *testing.T) {
	s := testService(t)
	rec := get(t, s.Handler(), "/el/9/268/161.svg")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("<svg")) {
		t.Error("body does not look like SVG")
	}
}

func TestTileEndpointUnknownLayerIs404(t *testing.T) {
	s := testService(t)
	rec := get(t, s.Handler(), "/unknown/5/0/0.png")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestTileEndpointOutOfRangeCoordIs404(t *testing.T) {
	s := testService(t)
	h := s.Handler()
	for _, url := range []string{
		"/el/18/0/0.png",  // zoom beyond 17
		"/el/5/999/0.png", // x beyond 2^5
	} {
		if rec := get(t, h, url); rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", url, rec.Code)
		}
	}
}

func TestTileEndpointUnknownFormatIsNotRouted(t *testing.T) {
	s := testService(t)
	rec := get(t, s.Handler(), "/el/9/268/161.gif")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for an unrouted format", rec.Code)
	}
}

// TestConcurrentIdenticalTileRequestsAgree: many concurrent requests for
// the same cold tile must all succeed with byte-identical bodies.
func TestConcurrentIdenticalTileRequestsAgree(t *testing.T) {
	s := testService(t)
	h := s.Handler()

	const n = 16
	bodies := make([][]byte, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := get(t, h, "/el/9/268/161.png")
			if rec.Code != http.StatusOK {
				t.Errorf("request %d: status = %d", i, rec.Code)
				return
			}
			bodies[i] = rec.Body.Bytes()
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if !bytes.Equal(bodies[0], bodies[i]) {
			t.Fatalf("response %d differs from response 0", i)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := testService(t)
	rec := get(t, s.Handler(), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"status":"ok"`)) {
		t.Errorf("unexpected health body: %s", rec.Body.String())
	}
}

func TestLayersEndpointListsStandardLayers(t *testing.T) {
	s := testService(t)
	rec := get(t, s.Handler(), "/layers")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	for _, want := range []string{"el", "pax", "border"} {
		if !bytes.Contains(rec.Body.Bytes(), []byte(`"`+want+`"`)) {
			t.Errorf("layer %q missing from %s", want, rec.Body.String())
		}
	}
}

// TestReloadFailureKeepsServingPreviousAtlas: a reload against a broken
// source must leave the previous snapshot serving; a subsequent good
// reload swaps and invalidates the cache.
func TestReloadFailureKeepsServingPreviousAtlas(t *testing.T) {
	fail := false
	builder := func() (*atlas.Snapshot, error) {
		if fail {
			return nil, errors.New("broken .map file")
		}
		return testSnapshot()
	}
	a, err := atlas.New(builder)
	if err != nil {
		t.Fatal(err)
	}
	tc, err := cache.NewTileCache(64, 0)
	if err != nil {
		t.Fatal(err)
	}
	s := New(a, tc, NewCacheInvalidatingReloader(a, tc), nil)
	h := s.Handler()

	// Warm the cache against generation 0.
	if rec := get(t, h, "/el/9/268/161.png"); rec.Code != http.StatusOK {
		t.Fatalf("warm-up status = %d", rec.Code)
	}
	if tc.Stats().Size != 1 {
		t.Fatalf("cache size = %d, want 1 after warm-up", tc.Stats().Size)
	}

	fail = true
	req := httptest.NewRequest("POST", "/reload", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("broken reload status = %d, want 500", rec.Code)
	}
	if a.Current().Generation != 0 {
		t.Fatal("failed reload must not swap the snapshot")
	}
	if tc.Stats().Size != 1 {
		t.Fatal("failed reload must not invalidate the cache")
	}

	fail = false
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/reload", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("good reload status = %d, want 200", rec.Code)
	}
	if a.Current().Generation != 1 {
		t.Fatalf("Generation = %d, want 1 after a successful reload", a.Current().Generation)
	}
	if tc.Stats().Size != 0 {
		t.Fatal("successful reload must invalidate the cache")
	}
}

func TestCacheStatsEndpoint(t *testing.T) {
	s := testService(t)
	h := s.Handler()
	get(t, h, "/el/9/268/161.png")
	get(t, h, "/el/9/268/161.png")

	rec := get(t, h, "/cache/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"hits":1`)) {
		t.Errorf("expected one recorded hit, got: %s", rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"atlas_generation":0`)) {
		t.Errorf("expected the stats to name the generation they apply to, got: %s", rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"el"`)) {
		t.Errorf("expected the stats to list the configured layers, got: %s", rec.Body.String())
	}
}

func TestCacheClearUnknownLayerIs404(t *testing.T) {
	s := testService(t)
	h := s.Handler()
	get(t, h, "/el/9/268/161.png")

	req := httptest.NewRequest("DELETE", "/cache/layer/nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for an unknown layer", rec.Code)
	}
	if s.Cache.Stats().Size != 1 {
		t.Fatal("an unknown-layer clear must not touch the cache")
	}
}

func TestCacheClearLayerDrainsOnlyThatLayer(t *testing.T) {
	s := testService(t)
	h := s.Handler()
	get(t, h, "/el/9/268/161.png")
	get(t, h, "/pax/9/268/161.png")

	req := httptest.NewRequest("DELETE", "/cache/layer/el", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"removed":1`)) {
		t.Errorf("expected one removed tile, got: %s", rec.Body.String())
	}
	if s.Cache.Stats().Size != 1 {
		t.Fatalf("cache size = %d, want 1 (the pax tile should survive)", s.Cache.Stats().Size)
	}
}
