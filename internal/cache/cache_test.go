package cache

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
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/railwayhistory/railmap/internal/tile"
)

func testKey(layer string) Key {
	return Key{Layer: layer, Coord: tile.Coord{Z: 9, X: 268, Y: 161}, Format: "png"}
}

func TestGetOrBuildCachesOnFirstMiss(t *testing.T) {
	tc, err := NewTileCache(16, 0)
	if err != nil {
		t.Fatal(err)
	}
	var builds int32
	build := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&builds, 1)
		return []byte("tile-bytes"), nil
	}

	data, err := tc.GetOrBuild(context.Background(), testKey("el"), build)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "tile-bytes" {
		t.Fatalf("data = %q, want %q", data, "tile-bytes")
	}

	data2, err := tc.GetOrBuild(context.Background(), testKey("el"), build)
	if err != nil {
		t.Fatal(err)
	}
	if string(data2) != "tile-bytes" {
		t.Fatalf("second data = %q, want %q", data2, "tile-bytes")
	}
	if atomic.LoadInt32(&builds) != 1 {
		t.Fatalf("builds = %d, want 1 (second call should be a cache hit)", builds)
	}

	stats := tc.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("stats = %+v, want 1 hit and 1 miss", stats)
	}
}

// TestGetOrBuildCoalescesConcurrentMisses: a cold popular tile must be
// built exactly once even when
// many requests for the same key arrive concurrently.
func TestGetOrBuildCoalescesConcurrentMisses(t *testing.T) {
	tc, err := NewTileCache(16, 0)
	if err != nil {
		t.Fatal(err)
	}

	var builds int32
	started := make(chan struct{})
	release := make(chan struct{})
	build := func(ctx context.Context) ([]byte, error) {
		if atomic.AddInt32(&builds, 1) == 1 {
			close(started)
			<-release
		}
		return []byte("built-once"), nil
	}

	const n = 20
	var wg sync.WaitGroup
	results := make([][]byte, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := tc.GetOrBuild(context.Background(), testKey("el"), build)
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = data
		}(i)
	}

	<-started
	close(release)
	wg.Wait()

	if atomic.LoadInt32(&builds) != 1 {
		t.Fatalf("builds = %d, want exactly 1 for %d concurrent callers", builds, n)
	}
	for i, r := range results {
		if string(r) != "built-once" {
			t.Fatalf("result[%d] = %q, want %q", i, r, "built-once")
		}
	}
}

func TestGetOrBuildPropagatesBuildErrorAndDoesNotCache(t *testing.T) {
	tc, err := NewTileCache(16, 0)
	if err != nil {
		t.Fatal(err)
	}
	boom := errors.New("render failed")
	var builds int32
	failOnce := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&builds, 1)
		return nil, boom
	}

	_, err = tc.GetOrBuild(context.Background(), testKey("el"), failOnce)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}

	succeed := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&builds, 1)
		return []byte("ok"), nil
	}
	data, err := tc.GetOrBuild(context.Background(), testKey("el"), succeed)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ok" {
		t.Fatalf("data = %q, want %q", data, "ok")
	}
	if atomic.LoadInt32(&builds) != 2 {
		t.Fatalf("builds = %d, want 2 (failed build must not be cached)", builds)
	}
}

func TestClearInvalidatesEverything(t *testing.T) {
	tc, err := NewTileCache(16, 0)
	if err != nil {
		t.Fatal(err)
	}
	build := func(ctx context.Context) ([]byte, error) { return []byte("x"), nil }
	if _, err := tc.GetOrBuild(context.Background(), testKey("el"), build); err != nil {
		t.Fatal(err)
	}
	tc.Clear()
	if tc.Stats().Size != 0 {
		t.Fatalf("Size = %d after Clear, want 0", tc.Stats().Size)
	}
}

func TestClearLayerOnlyRemovesMatchingLayer(t *testing.T) {
	tc, err := NewTileCache(16, 0)
	if err != nil {
		t.Fatal(err)
	}
	build := func(ctx context.Context) ([]byte, error) { return []byte("x"), nil }
	if _, err := tc.GetOrBuild(context.Background(), testKey("el"), build); err != nil {
		t.Fatal(err)
	}
	if _, err := tc.GetOrBuild(context.Background(), testKey("pax"), build); err != nil {
		t.Fatal(err)
	}

	removed := tc.ClearLayer("el")
	if removed != 1 {
		t.Fatalf("ClearLayer removed %d, want 1", removed)
	}
	if tc.Stats().Size != 1 {
		t.Fatalf("Size = %d after ClearLayer, want 1 (pax tile should survive)", tc.Stats().Size)
	}
}

func TestDisabledCacheAlwaysMisses(t *testing.T) {
	tc := NewDisabledCache()
	var builds int32
	build := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&builds, 1)
		return []byte("x"), nil
	}
	for i := 0; i < 3; i++ {
		if _, err := tc.GetOrBuild(context.Background(), testKey("el"), build); err != nil {
			t.Fatal(err)
		}
	}
	if atomic.LoadInt32(&builds) != 3 {
		t.Fatalf("builds = %d, want 3 (disabled cache must never hit)", builds)
	}
}
