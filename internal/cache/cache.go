// Package cache implements the Tile Cache & Build Coordinator: a
// bounded LRU from (layer, z, x, y, format) to encoded tile bytes, with
// at-most-one-concurrent-build-per-key coalescing on a cold miss.
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
	"fmt"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/railwayhistory/railmap/internal/metrics"
	"github.com/railwayhistory/railmap/internal/tile"
)

// Key identifies one cached tile: layer name, coordinate and output
// format.
type Key struct {
	Layer  string
	Coord  tile.Coord
	Format string
}

// String renders the cache key as "layer:z/x/y.format", also used as the
// LRU's internal string key and the ClearLayer prefix match.
func (k Key) String() string {
	return fmt.Sprintf("%s:%s.%s", k.Layer, k.Coord.String(), k.Format)
}

// Builder produces the encoded bytes for a cache miss. It is supplied by
// the tile handler and runs under singleflight, so it executes at most
// once per key even under concurrent requests.
type Builder func(ctx context.Context) ([]byte, error)

// TileCache is a thread-safe, bounded LRU cache of encoded tile bytes,
// layered with request coalescing so a cold popular tile is rendered
// exactly once regardless of how many requests arrive concurrently.
type TileCache struct {
	cache       *lru.Cache[string, []byte]
	group       singleflight.Group
	enabled     bool
	maxMemoryMB int64

	hits         atomic.Int64
	misses       atomic.Int64
	evictions    atomic.Int64
	currentSize  atomic.Int64
	currentBytes atomic.Int64
}

// Stats reports cache hit/miss/eviction counters for the admin endpoints.
type Stats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Evictions   int64   `json:"evictions"`
	Size        int     `json:"size"`
	MemoryBytes int64   `json:"memory_bytes"`
	HitRate     float64 `json:"hit_rate"`
}

// NewTileCache creates a bounded LRU cache of capacity maxItems, tracking
// an approximate memory budget of maxMemoryMB.
func NewTileCache(maxItems int, maxMemoryMB int) (*TileCache, error) {
	if maxItems <= 0 {
		return nil, fmt.Errorf("cache: maxItems must be positive, got %d", maxItems)
	}

	tc := &TileCache{
		enabled:     true,
		maxMemoryMB: int64(maxMemoryMB),
	}

	c, err := lru.NewWithEvict(maxItems, tc.onEvict)
	if err != nil {
		return nil, err
	}
	tc.cache = c

	log.Infof("cache: initialized tile cache max_items=%d max_memory=%dMB", maxItems, maxMemoryMB)
	return tc, nil
}

// NewDisabledCache returns a cache that always misses and never stores,
// for the `cache.disabled` configuration flag.
func NewDisabledCache() *TileCache {
	return &TileCache{enabled: false}
}

// GetOrBuild returns the cached bytes for key if present; on a miss,
// build runs under a per-key singleflight group so concurrent misses for
// the same key share one build. A failed build is returned to all current
// waiters and nothing is cached.
func (tc *TileCache) GetOrBuild(ctx context.Context, key Key, build Builder) ([]byte, error) {
	k := key.String()

	if tc.enabled {
		if data, ok := tc.cache.Get(k); ok {
			tc.hits.Add(1)
			metrics.CacheHitsTotal.Inc()
			log.Debugf("cache: HIT %s", k)
			return data, nil
		}
	}
	tc.misses.Add(1)
	metrics.CacheMissesTotal.Inc()

	data, err, _ := tc.group.Do(k, func() (interface{}, error) {
		// A caller that missed just before an earlier build of k finished
		// finds that build's result here instead of building again.
		if tc.enabled {
			if cached, ok := tc.cache.Get(k); ok {
				return cached, nil
			}
		}
		built, err := build(ctx)
		if err != nil {
			return nil, err
		}
		tc.set(k, built)
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return data.([]byte), nil
}

func (tc *TileCache) set(key string, data []byte) {
	if !tc.enabled || len(data) == 0 {
		return
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	tc.cache.Add(key, cp)
	tc.currentBytes.Add(int64(len(cp)))
	tc.currentSize.Add(1)
	metrics.CacheSize.Set(float64(tc.currentSize.Load()))
	log.Debugf("cache: SET %s (%d bytes)", key, len(cp))
}

func (tc *TileCache) onEvict(key string, value []byte) {
	tc.evictions.Add(1)
	tc.currentSize.Add(-1)
	tc.currentBytes.Add(-int64(len(value)))
	metrics.CacheEvictionsTotal.Inc()
	metrics.CacheSize.Set(float64(tc.currentSize.Load()))
	log.Debugf("cache: EVICT %s", key)
}

// Clear purges every entry, used when the Atlas reloads: every cached
// tile refers to the prior Feature Set and must be invalidated.
func (tc *TileCache) Clear() {
	if !tc.enabled {
		return
	}
	tc.cache.Purge()
	tc.currentSize.Store(0)
	tc.currentBytes.Store(0)
	metrics.CacheSize.Set(0)
	log.Info("cache: cleared (atlas reload)")
}

// ClearLayer removes every cached tile for one layer, used by the
// `/cache/layer/{name}` admin endpoint.
func (tc *TileCache) ClearLayer(layerName string) int {
	if !tc.enabled {
		return 0
	}
	removed := 0
	prefix := layerName + ":"
	for _, key := range tc.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			tc.cache.Remove(key)
			removed++
		}
	}
	log.Infof("cache: cleared %d tiles for layer %s", removed, layerName)
	return removed
}

// Stats reports the current counters.
func (tc *TileCache) Stats() Stats {
	if !tc.enabled {
		return Stats{}
	}
	hits, misses := tc.hits.Load(), tc.misses.Load()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100.0
	}
	return Stats{
		Hits:        hits,
		Misses:      misses,
		Evictions:   tc.evictions.Load(),
		Size:        tc.cache.Len(),
		MemoryBytes: tc.currentBytes.Load(),
		HitRate:     hitRate,
	}
}

// Enabled reports whether the cache is in use.
func (tc *TileCache) Enabled() bool {
	return tc.enabled
}
