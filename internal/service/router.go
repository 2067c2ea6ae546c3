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
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/railwayhistory/railmap/internal/conf"
)

// router builds the route table: the tile endpoints, the
// root HTML page, health/metrics/layers discovery, cache admin and the
// manual reload trigger.
func (s *Service) router() *mux.Router {
	r := mux.NewRouter()

	if !conf.Configuration.Server.DisableUi {
		r.Handle("/", appHandler(s.handleRoot)).Methods("GET")
	}
	r.Handle("/healthz", appHandler(s.handleHealth)).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.Handle("/layers", appHandler(s.handleLayers)).Methods("GET")
	r.Handle("/layers.json", appHandler(s.handleLayers)).Methods("GET")

	r.Handle(
		"/{layer}/{z:[0-9]+}/{x:[0-9]+}/{y:[0-9]+}.{format:png|svg}",
		appHandler(s.handleTile),
	).Methods("GET")

	r.Handle("/reload", apiKeyGate(s.handleReload)).Methods("POST")
	r.Handle("/cache/stats", appHandler(s.handleCacheStats)).Methods("GET")
	r.Handle("/cache/clear", apiKeyGate(s.handleCacheClear)).Methods("DELETE")
	r.Handle("/cache/layer/{layer}", apiKeyGate(s.handleCacheClearLayer)).Methods("DELETE")

	r.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		if tpl, err := route.GetPathTemplate(); err == nil {
			log.Debugf("service: registered route %s", tpl)
		}
		return nil
	})

	return r
}
