// Package pathstore loads named Paths from the geometry corpus and
// resolves symbolic positions/sections/offsets into concrete geometry.
// Resolution happens once per Feature, at load time; nothing here is
// called from the render path.
package pathstore

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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/railwayhistory/railmap/internal/geom"
)

// Path is a named, immutable polyline with a name->arc-offset mapping for
// its symbolic positions.
type Path struct {
	ID        string
	Curve     *geom.Curve
	Positions map[string]float64
}

// ArcOffset returns the arc-length offset of a named position.
func (p *Path) ArcOffset(name string) (float64, bool) {
	off, ok := p.Positions[name]
	return off, ok
}

// Loader loads a single Path by id from the geometry corpus. Only the
// interface is fixed here; FileLoader below is this repo's concrete
// implementation over a line-oriented on-disk format.
type Loader interface {
	LoadPath(id string) (*Path, error)
}

// Store loads Paths on demand and caches them for the remainder of one
// Atlas generation. A Store is built fresh for each load/reload and
// discarded with its Atlas; it is not a shared mutable singleton.
type Store struct {
	loader Loader
	mu     sync.Mutex
	cache  map[string]*Path
}

// NewStore creates a Store backed by loader.
func NewStore(loader Loader) *Store {
	return &Store{loader: loader, cache: make(map[string]*Path)}
}

// Get returns the Path for id, loading and caching it on first access.
func (s *Store) Get(id string) (*Path, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.cache[id]; ok {
		return p, nil
	}
	p, err := s.loader.LoadPath(id)
	if err != nil {
		return nil, fmt.Errorf("pathstore: load %q: %w", id, err)
	}
	s.cache[id] = p
	return p, nil
}

// FileLoader reads Paths from a line-oriented text format under Root, one
// file per path named "<id>.path". Format:
//
//	id <identifier>
//	vertex <x> <y>          (Mercator meters, one or more lines)
//	pos <name> <arc-offset> (zero or more lines)
//
// Blank lines and lines starting with "#" are ignored.
type FileLoader struct {
	Root string
}

func (f FileLoader) LoadPath(id string) (*Path, error) {
	file := filepath.Join(f.Root, id+".path")
	fh, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var gotID string
	var verts []geom.Point
	positions := make(map[string]float64)

	scanner := bufio.NewScanner(fh)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "id":
			if len(fields) != 2 {
				return nil, fmt.Errorf("%s:%d: malformed id line", file, lineNo)
			}
			gotID = fields[1]
		case "vertex":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%s:%d: malformed vertex line", file, lineNo)
			}
			x, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", file, lineNo, err)
			}
			y, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", file, lineNo, err)
			}
			verts = append(verts, geom.Point{X: x, Y: y})
		case "pos":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%s:%d: malformed pos line", file, lineNo)
			}
			off, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", file, lineNo, err)
			}
			positions[fields[1]] = off
		default:
			return nil, fmt.Errorf("%s:%d: unknown directive %q", file, lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if gotID == "" {
		gotID = id
	}
	if len(verts) < 2 {
		return nil, fmt.Errorf("%s: path needs at least 2 vertices, got %d", file, len(verts))
	}
	return &Path{ID: gotID, Curve: geom.NewCurve(verts), Positions: positions}, nil
}
