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
	"sort"

	"github.com/railwayhistory/railmap/internal/atlas"
)

// LayerInfo describes one servable layer for the /layers discovery
// endpoint.
type LayerInfo struct {
	Name string `json:"name"`
}

// layerNames returns the sorted layer names of one snapshot, shared by
// the discovery, viewer and cache-admin handlers.
func layerNames(snap *atlas.Snapshot) []string {
	names := make([]string, 0, len(snap.Layers))
	for name := range snap.Layers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// handleLayers lists the layer names configured in the current Atlas
// snapshot's style/layer table.
func (s *Service) handleLayers(w http.ResponseWriter, r *http.Request) *appError {
	names := layerNames(s.Atlas.Current())
	out := make([]LayerInfo, len(names))
	for i, name := range names {
		out[i] = LayerInfo{Name: name}
	}
	return writeJSON(w, "application/json", out)
}
