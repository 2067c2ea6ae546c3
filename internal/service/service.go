// Package service wires the Atlas, Tile Cache and Renderer into the HTTP
// surface: it routes `/{layer}/{z}/{x}/{y}.{png,svg}` through the
// cache's get-or-build contract, and exposes health, metrics, layer
// discovery and cache-admin endpoints alongside it. The handlers only
// route; all real work happens in the render and cache packages.
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

	"github.com/gorilla/handlers"
	log "github.com/sirupsen/logrus"

	"github.com/railwayhistory/railmap/internal/atlas"
	"github.com/railwayhistory/railmap/internal/cache"
	"github.com/railwayhistory/railmap/internal/conf"
)

// Reloader is the narrow interface the /reload admin endpoint needs.
type Reloader interface {
	Reload() error
}

// Service holds everything a request handler needs: the live Atlas, the
// tile cache sitting in front of the Renderer, and a Reloader for the
// admin reload trigger. One Service is constructed at startup and lives
// for the process lifetime; the Atlas and cache are independently
// swapped/cleared underneath it on reload.
type Service struct {
	Atlas    *atlas.Atlas
	Cache    *cache.TileCache
	Reloader Reloader
	limiter  *RateLimiter
}

// New builds a Service. limiter may be nil, disabling rate limiting.
func New(a *atlas.Atlas, c *cache.TileCache, reloader Reloader, limiter *RateLimiter) *Service {
	return &Service{Atlas: a, Cache: c, Reloader: reloader, limiter: limiter}
}

// Handler builds the complete net/http handler for the service: the
// gorilla/mux router wrapped in gorilla/handlers' combined-log and
// panic-recovery middleware, keeping request-level logging outside route
// dispatch.
func (s *Service) Handler() http.Handler {
	router := s.router()
	var h http.Handler = router
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
	h = handlers.CombinedLoggingHandler(log.StandardLogger().Writer(), h)
	if s.limiter != nil {
		h = s.limiter.Middleware(h)
	}
	return h
}

// Serve starts the HTTP listener on cfg.Server.ListenAddr and blocks
// until it returns (normally only on error or process shutdown).
func Serve(cfg *conf.Config, s *Service) error {
	srv := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Infof("service: listening on %s", cfg.Server.ListenAddr)
	return srv.ListenAndServe()
}
