// Package metrics exposes the Prometheus collectors the service updates
// for tile renders, cache activity and atlas reloads, scraped at
// `/metrics`.
package metrics

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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TileRequestsTotal counts tile requests by layer, format and
	// outcome ("hit", "miss", "error").
	TileRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "railmap_tile_requests_total",
			Help: "Total number of tile requests processed",
		},
		[]string{"layer", "format", "outcome"},
	)

	// TileRenderDuration measures wall-clock time spent actually
	// rendering a tile (the coalesced build, not cache-hit latency).
	TileRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "railmap_tile_render_duration_seconds",
			Help:    "Tile render duration in seconds, measured for cache-miss builds only",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"layer", "format"},
	)

	// CacheHitsTotal and CacheMissesTotal mirror the tile cache's own
	// atomic counters as Prometheus series for dashboards.
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "railmap_cache_hits_total",
			Help: "Total number of tile cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "railmap_cache_misses_total",
			Help: "Total number of tile cache misses",
		},
	)

	CacheEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "railmap_cache_evictions_total",
			Help: "Total number of tile cache evictions",
		},
	)

	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "railmap_cache_size",
			Help: "Current number of entries in the tile cache",
		},
	)

	// AtlasGeneration is the generation number of the currently active
	// Atlas snapshot; it increments on every successful reload.
	AtlasGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "railmap_atlas_generation",
			Help: "Generation number of the currently active atlas snapshot",
		},
	)

	AtlasReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "railmap_atlas_reloads_total",
			Help: "Total number of atlas reload attempts",
		},
		[]string{"outcome"},
	)

	AtlasReloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "railmap_atlas_reload_duration_seconds",
			Help:    "Time spent rebuilding the atlas on reload",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0},
		},
	)

	// RateLimitExceededTotal counts requests rejected by the per-remote
	// rate limiter.
	RateLimitExceededTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "railmap_rate_limit_exceeded_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// RecordTileRequest updates the request counter and, for a build (cache
// miss), the render duration histogram.
func RecordTileRequest(layer, format, outcome string, renderDuration time.Duration) {
	TileRequestsTotal.WithLabelValues(layer, format, outcome).Inc()
	if outcome == "miss" {
		TileRenderDuration.WithLabelValues(layer, format).Observe(renderDuration.Seconds())
	}
}

// RecordReload updates the atlas reload counters; generation should be
// the new generation number on success, or left untouched on failure.
func RecordReload(success bool, duration time.Duration, generation int64) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	AtlasReloadsTotal.WithLabelValues(outcome).Inc()
	AtlasReloadDuration.Observe(duration.Seconds())
	if success {
		AtlasGeneration.Set(float64(generation))
	}
}
