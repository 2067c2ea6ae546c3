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
	"time"

	"github.com/railwayhistory/railmap/internal/cache"
)

// HealthResponse is the JSON body of GET /healthz.
type HealthResponse struct {
	Status       string      `json:"status"`
	Generation   int64       `json:"atlas_generation"`
	Features     int         `json:"feature_count"`
	LastReloadAt time.Time   `json:"last_reload_at"`
	Cache        CacheStatus `json:"cache"`
}

// CacheStatus summarizes tile-cache health for the /healthz response.
type CacheStatus struct {
	Enabled bool         `json:"enabled"`
	Stats   *cache.Stats `json:"stats,omitempty"`
}

// handleHealth reports whether the current Atlas snapshot loaded
// successfully, when it was last (re)built, and basic cache status. The
// Atlas snapshot is the only resource this service depends on, so there
// is no external backend to ping.
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) *appError {
	snap := s.Atlas.Current()

	resp := HealthResponse{
		Status:       "ok",
		Generation:   snap.Generation,
		Features:     len(snap.Features.Features),
		LastReloadAt: snap.BuiltAt,
		Cache: CacheStatus{
			Enabled: s.Cache.Enabled(),
		},
	}
	if resp.Cache.Enabled {
		stats := s.Cache.Stats()
		resp.Cache.Stats = &stats
	}
	return writeJSON(w, "application/json", resp)
}
