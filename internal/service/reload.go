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

import "net/http"

// handleReload is the manual counterpart to the filesystem watcher
// (internal/watch): an operator-triggered `reload()` call. s.Reloader
// is expected to invalidate the tile cache itself on success (see
// NewCacheInvalidatingReloader); on failure the previous Atlas keeps
// serving and the error is surfaced in the response rather than to any
// in-flight render.
func (s *Service) handleReload(w http.ResponseWriter, r *http.Request) *appError {
	if err := s.Reloader.Reload(); err != nil {
		return appErrorInternal(err, "reload failed, previous atlas still serving: "+err.Error())
	}
	return writeJSON(w, "application/json", map[string]string{"status": "ok", "message": "atlas reloaded"})
}

// CacheInvalidatingReloader wraps an Atlas so that Reload also invalidates
// the tile cache on success. It implements both service.Reloader and watch.Reloader,
// so the same value can be handed to both the manual /reload endpoint and
// the filesystem watcher.
type CacheInvalidatingReloader struct {
	Atlas interface{ Reload() error }
	Cache interface{ Clear() }
}

// NewCacheInvalidatingReloader builds a CacheInvalidatingReloader.
func NewCacheInvalidatingReloader(a interface{ Reload() error }, c interface{ Clear() }) *CacheInvalidatingReloader {
	return &CacheInvalidatingReloader{Atlas: a, Cache: c}
}

// Reload rebuilds the Atlas and, only on success, clears the tile cache.
func (c *CacheInvalidatingReloader) Reload() error {
	if err := c.Atlas.Reload(); err != nil {
		return err
	}
	c.Cache.Clear()
	return nil
}
