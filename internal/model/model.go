// Package model holds the Feature Set data model produced by the
// evaluator: drawable Features tagged with detail level, layer-relevant
// symbols, z-order and geometry.
package model

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

import "github.com/railwayhistory/railmap/internal/geom"

// Kind classifies what a Feature draws.
type Kind int

const (
	Track Kind = iota
	Marker
	Station
	LineBadge
	Border
	Generic
)

func (k Kind) String() string {
	switch k {
	case Track:
		return "track"
	case Marker:
		return "marker"
	case Station:
		return "station"
	case LineBadge:
		return "line_badge"
	case Border:
		return "border"
	default:
		return "generic"
	}
}

// SymbolSet is the set of colon-prefixed tags attached to a Feature, e.g.
// {:double, :first, :cat}. Membership tests are case-sensitive and exact.
type SymbolSet map[string]bool

// NewSymbolSet builds a SymbolSet from a list of symbol names (without the
// leading colon).
func NewSymbolSet(symbols ...string) SymbolSet {
	s := make(SymbolSet, len(symbols))
	for _, sym := range symbols {
		s[sym] = true
	}
	return s
}

// Has reports whether sym is present.
func (s SymbolSet) Has(sym string) bool {
	return s[sym]
}

// HasAny reports whether any of syms is present.
func (s SymbolSet) HasAny(syms ...string) bool {
	for _, sym := range syms {
		if s[sym] {
			return true
		}
	}
	return false
}

// TextPayload carries the optional name/side/auxiliary-line text a Feature
// may render.
type TextPayload struct {
	Name string
	// Side is "left" or "right" for station labels; empty if not
	// applicable.
	Side string
	// Aux is the secondary line of a station label (kilometer/sub-line
	// annotation); a line_badge draws its route number from Name.
	Aux string
}

// Geometry is a Feature's resolved payload: either a point (Curve with one
// vertex, produced for a single symbolic position) or a full sub-curve.
// Both cases are represented as a *geom.Curve so the renderer has a single
// code path; IsPoint distinguishes them where that matters (marker
// rotation vs. track stroking).
type Geometry struct {
	Curve   *geom.Curve
	IsPoint bool
}

// Feature is one drawable element produced by the Evaluator.
type Feature struct {
	Kind    Kind
	Geom    Geometry
	Symbols SymbolSet
	Text    *TextPayload // nil if the feature carries no text
	Detail  int          // 1..4
	ZOrder  int
	// Seq is the feature's append index in the Evaluator's Feature Set,
	// the deterministic tie-break for stable sort by z-order.
	Seq int
	BBox geom.BBox
}

// DefaultZOrder returns the z-order a Feature of the given Kind gets when
// not overridden by `with layer = N`.
func DefaultZOrder(k Kind) int {
	switch k {
	case Border:
		return 0
	case Track:
		return 10
	case LineBadge:
		return 20
	case Marker:
		return 30
	case Station:
		return 40
	default:
		return 15
	}
}

// FeatureSet is the flat, immutable collection of Features produced by one
// evaluation pass. It is owned by exactly one Atlas snapshot.
type FeatureSet struct {
	Features []*Feature
}

// Append adds f to the set, assigning it the next declaration-order Seq.
func (fs *FeatureSet) Append(f *Feature) {
	f.Seq = len(fs.Features)
	fs.Features = append(fs.Features, f)
}

// Layer is a named predicate deciding which Features a tile pyramid
// includes.
type Layer struct {
	Name string
	// Kinds restricts which Kinds this layer ever includes; empty means
	// all kinds are eligible subject to the other predicates.
	Kinds []Kind
	// RequireAny, if non-empty, requires at least one of these symbols.
	RequireAny []string
	// ExcludeAny, if non-empty, excludes a Feature carrying any of these
	// symbols (e.g. "el" excludes :removed in some configurations).
	ExcludeAny []string
	// MinZ/MaxZ bound the Feature's ZOrder for this layer; a zero MaxZ
	// means unbounded.
	MinZ, MaxZ int
	// TextVariant labels this layer's text variant: "", "lat" or "num".
	// The renderer does not read it; every layer draws TextPayload.Name,
	// so the -lat and -num layers show the same text as their base layer.
	TextVariant string
}

// Accepts reports whether f is included in this layer.
func (l Layer) Accepts(f *Feature) bool {
	if len(l.Kinds) > 0 {
		found := false
		for _, k := range l.Kinds {
			if k == f.Kind {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(l.RequireAny) > 0 && !f.Symbols.HasAny(l.RequireAny...) {
		return false
	}
	if len(l.ExcludeAny) > 0 && f.Symbols.HasAny(l.ExcludeAny...) {
		return false
	}
	if f.ZOrder < l.MinZ {
		return false
	}
	if l.MaxZ > 0 && f.ZOrder > l.MaxZ {
		return false
	}
	return true
}

// StandardLayers is the fixed set of served layers: el, el-lat,
// el-num, pax, pax-lat, pax-num, border.
func StandardLayers() map[string]Layer {
	rail := []Kind{Track, Marker, Station, LineBadge, Generic}
	return map[string]Layer{
		"el": {
			Name: "el", Kinds: rail,
		},
		"el-lat": {
			Name: "el-lat", Kinds: rail, TextVariant: "lat",
		},
		"el-num": {
			Name: "el-num", Kinds: rail, TextVariant: "num",
		},
		"pax": {
			Name: "pax", Kinds: rail, RequireAny: []string{"pax"},
		},
		"pax-lat": {
			Name: "pax-lat", Kinds: rail, RequireAny: []string{"pax"}, TextVariant: "lat",
		},
		"pax-num": {
			Name: "pax-num", Kinds: rail, RequireAny: []string{"pax"}, TextVariant: "num",
		},
		"border": {
			Name: "border", Kinds: []Kind{Border},
		},
	}
}
