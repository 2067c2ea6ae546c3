// Package load wires the cold-path pipeline from config.toml's [regions]
// table to a ready-to-serve atlas.Snapshot: glob each region's .map files,
// parse and tolerantly evaluate them into a Feature Set, then bulk-build
// the spatial index. It is the Builder railmap.go hands to atlas.New and
// Atlas.Reload.
package load

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
	"os"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/railwayhistory/railmap/internal/atlas"
	"github.com/railwayhistory/railmap/internal/conf"
	"github.com/railwayhistory/railmap/internal/dsl"
	"github.com/railwayhistory/railmap/internal/eval"
	"github.com/railwayhistory/railmap/internal/index"
	"github.com/railwayhistory/railmap/internal/model"
	"github.com/railwayhistory/railmap/internal/pathstore"
	"github.com/railwayhistory/railmap/internal/style"
)

// regionFilter, when non-empty, restricts Build to the named regions.
type regionFilter = map[string]bool

// Builder creates an atlas.Builder bound to cfg and an optional set of
// region names to restrict loading to (nil/empty means all configured
// regions). Each call to the returned Builder re-globs and re-parses
// every source from scratch, matching the "rebuilds offline" contract of
// atlas.Atlas.Reload.
func Builder(cfg *conf.Config, regions []string) atlas.Builder {
	filter := regionFilter(nil)
	if len(regions) > 0 {
		filter = make(regionFilter, len(regions))
		for _, r := range regions {
			filter[r] = true
		}
	}
	return func() (*atlas.Snapshot, error) {
		return build(cfg, filter)
	}
}

func build(cfg *conf.Config, filter regionFilter) (*atlas.Snapshot, error) {
	st, err := style.New(style.BuildParams{
		DoubleTrackMeters:  cfg.Style.DoubleTrackMeters,
		SwitchLengthMeters: cfg.Style.SwitchLengthMeters,
		DetailUnitMeters:   cfg.Style.DetailUnitMeters,
		PointMeters:        cfg.Style.PointMeters,
		ZoomThresholds:     cfg.Style.ZoomThresholds,
	})
	if err != nil {
		return nil, fmt.Errorf("load: style table: %w", err)
	}

	store := pathstore.NewStore(pathstore.FileLoader{Root: cfg.Paths.GeometryRoot})
	fset := &model.FeatureSet{}
	ev := eval.NewEvaluator(store, st, fset)

	files, err := mapFiles(cfg, filter)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("load: no .map files matched the configured regions")
	}

	var featureErrors int
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("load: read %s: %w", file, err)
		}
		stmts, err := dsl.Parse(file, string(src))
		if err != nil {
			// A syntax error fails the whole file (and thus the whole
			// reload): unlike a per-feature evaluation error, a parse
			// error means the author cannot possibly have meant
			// anything, so this is a startup-class fatal
			// rather than "drop and continue".
			return nil, fmt.Errorf("load: parse %s: %w", file, err)
		}
		ev.RunTolerant(stmts, func(evalErr error) {
			featureErrors++
			log.WithField("file", file).WithError(evalErr).Warn("load: dropping feature")
		})
	}
	if featureErrors > 0 {
		log.Warnf("load: %d feature(s) dropped across %d file(s)", featureErrors, len(files))
	}

	idx := index.Build(fset)
	return &atlas.Snapshot{
		Features: fset,
		Index:    idx,
		Style:    st,
		Layers:   model.StandardLayers(),
	}, nil
}

// mapFiles resolves every region's glob patterns (relative to
// cfg.Paths.MapRoot) into a sorted, de-duplicated list of paths rooted at
// MapRoot (relative when MapRoot is),
// restricted to filter when non-empty. Sorting makes load order -- and
// thus Feature.Seq declaration-order tie-breaks -- deterministic
// across reloads regardless of directory iteration order.
func mapFiles(cfg *conf.Config, filter regionFilter) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, region := range cfg.Regions {
		if filter != nil && !filter[region.Name] {
			continue
		}
		for _, pattern := range region.Maps {
			full := pattern
			if !filepath.IsAbs(full) {
				full = filepath.Join(cfg.Paths.MapRoot, pattern)
			}
			matches, err := filepath.Glob(full)
			if err != nil {
				return nil, fmt.Errorf("region %q: glob %q: %w", region.Name, pattern, err)
			}
			for _, m := range matches {
				if !seen[m] {
					seen[m] = true
					out = append(out, m)
				}
			}
		}
	}
	sort.Strings(out)
	return out, nil
}
