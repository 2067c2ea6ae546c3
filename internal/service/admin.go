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
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/railwayhistory/railmap/internal/cache"
	"github.com/railwayhistory/railmap/internal/conf"
)

const headerAPIKey = "X-API-Key"

// apiKeyGate guards the mutating admin endpoints (reload, cache drains)
// behind an API key when one is configured; with no key configured they
// stay open, which is the right default for a tile server normally run
// behind a trusted reverse proxy.
func apiKeyGate(next appHandler) appHandler {
	return func(w http.ResponseWriter, r *http.Request) *appError {
		configuredKey := conf.Configuration.Cache.APIKey
		if configuredKey == "" {
			return next(w, r)
		}
		providedKey := r.Header.Get(headerAPIKey)
		if providedKey == "" {
			log.Warnf("service: admin endpoint accessed without API key from %s", r.RemoteAddr)
			return appErrorUnauthorized(nil, "API key required. Provide X-API-Key header.")
		}
		if providedKey != configuredKey {
			log.Warnf("service: admin endpoint accessed with invalid API key from %s", r.RemoteAddr)
			return appErrorForbidden(nil, "invalid API key")
		}
		return next(w, r)
	}
}

// cacheStatsResponse ties the cache counters to the Atlas generation they
// were accumulated against: the cache is drained whenever a reload swaps
// the generation, so counters always describe tiles of exactly one
// generation.
type cacheStatsResponse struct {
	AtlasGeneration int64        `json:"atlas_generation"`
	Enabled         bool         `json:"enabled"`
	Layers          []string     `json:"layers"`
	Stats           *cache.Stats `json:"stats,omitempty"`
}

// handleCacheStats reports the tile cache's hit/miss/eviction counters
// together with the generation and layer set they apply to.
func (s *Service) handleCacheStats(w http.ResponseWriter, r *http.Request) *appError {
	snap := s.Atlas.Current()
	resp := cacheStatsResponse{
		AtlasGeneration: snap.Generation,
		Enabled:         s.Cache.Enabled(),
		Layers:          layerNames(snap),
	}
	if resp.Enabled {
		stats := s.Cache.Stats()
		resp.Stats = &stats
	}
	return writeJSON(w, "application/json", resp)
}

// cacheClearResponse reports one drain action.
type cacheClearResponse struct {
	Status          string `json:"status"`
	Removed         int    `json:"removed"`
	Layer           string `json:"layer,omitempty"`
	AtlasGeneration int64  `json:"atlas_generation"`
}

// handleCacheClear drains every cached tile, the same full invalidation a
// reload performs, without swapping the Atlas.
func (s *Service) handleCacheClear(w http.ResponseWriter, r *http.Request) *appError {
	if !s.Cache.Enabled() {
		return appErrorBadRequest(nil, "cache is disabled")
	}
	removed := s.Cache.Stats().Size
	s.Cache.Clear()
	return writeJSON(w, "application/json", cacheClearResponse{
		Status:          "ok",
		Removed:         removed,
		AtlasGeneration: s.Atlas.Current().Generation,
	})
}

// handleCacheClearLayer drains only the entries for one layer, e.g. after
// editing a style that affects a single pyramid. An unknown layer is a
// 404, mirroring the tile endpoint's contract.
func (s *Service) handleCacheClearLayer(w http.ResponseWriter, r *http.Request) *appError {
	if !s.Cache.Enabled() {
		return appErrorBadRequest(nil, "cache is disabled")
	}
	layer := mux.Vars(r)["layer"]
	snap := s.Atlas.Current()
	if _, ok := snap.Layers[layer]; !ok {
		return appErrorNotFound(nil, "unknown layer "+layer)
	}
	removed := s.Cache.ClearLayer(layer)
	return writeJSON(w, "application/json", cacheClearResponse{
		Status:          "ok",
		Removed:         removed,
		Layer:           layer,
		AtlasGeneration: snap.Generation,
	})
}
