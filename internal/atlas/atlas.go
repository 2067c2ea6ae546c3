// Package atlas holds the current (FeatureSet, SpatialIndex, StyleTables)
// snapshot the Renderer and Scene Assembler read against, and coordinates
// reloads.
package atlas

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
	"fmt"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/railwayhistory/railmap/internal/index"
	"github.com/railwayhistory/railmap/internal/metrics"
	"github.com/railwayhistory/railmap/internal/model"
	"github.com/railwayhistory/railmap/internal/style"
)

// Snapshot is one immutable generation of the loaded map: the Feature
// Set, its spatial index and the style table they were built with. New
// and Reload stamp BuiltAt and Generation before publishing it; no field
// is mutated after that. Readers hold a Snapshot for the life of a single
// render.
type Snapshot struct {
	Features *model.FeatureSet
	Index    *index.Index
	Style    *style.Table
	Layers   map[string]model.Layer
	// Generation increments on every successful reload, used in log
	// messages, the atlas-generation metric and the /healthz and
	// cache-admin responses.
	Generation int64
	BuiltAt    time.Time
}

// Builder produces a new Snapshot from the current on-disk sources. It is
// supplied by the caller (railmap.go) so this package stays independent of
// the DSL/eval/pathstore wiring details.
type Builder func() (*Snapshot, error)

// Atlas holds the current Snapshot behind an atomic pointer: readers
// load-acquire, reload() rebuilds offline and store-releases only on
// success.
type Atlas struct {
	current atomic.Pointer[Snapshot]
	build   Builder
}

// New builds the first Snapshot via build and returns an Atlas ready to
// serve reads, or an error if the initial load fails (there is no prior
// snapshot to fall back to).
func New(build Builder) (*Atlas, error) {
	snap, err := build()
	if err != nil {
		return nil, fmt.Errorf("atlas: initial load: %w", err)
	}
	snap.BuiltAt = time.Now()
	a := &Atlas{build: build}
	a.current.Store(snap)
	return a, nil
}

// Current returns the Snapshot in effect right now. The returned pointer
// is safe to hold for as long as the caller needs; it is never mutated,
// only replaced.
func (a *Atlas) Current() *Snapshot {
	return a.current.Load()
}

// Reload rebuilds the Atlas from its Builder and swaps to the new
// Snapshot only if the build succeeds. On failure the previous Snapshot
// remains in effect and the error is returned to the caller, never to in-flight renders.
func (a *Atlas) Reload() error {
	start := time.Now()
	prev := a.current.Load()
	next, err := a.build()
	if err != nil {
		metrics.RecordReload(false, time.Since(start), prev.Generation)
		log.WithError(err).Warn("atlas: reload failed, keeping previous snapshot")
		return err
	}
	next.Generation = prev.Generation + 1
	next.BuiltAt = time.Now()
	a.current.Store(next)
	metrics.RecordReload(true, time.Since(start), next.Generation)
	log.WithField("generation", next.Generation).Info("atlas: reload succeeded")
	return nil
}
