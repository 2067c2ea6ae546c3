// Package eval executes a parsed `.map` AST in a lexically scoped
// environment, lowering it to a model.FeatureSet. Values passed
// between expressions and built-in procedures are a tagged variant with
// cases {Complex, List, Vector, Number, Symbol, SymbolSet, Text,
// UnitNumber, Path, Section}, implemented here as a small interface with
// one concrete type per case, mirroring the dsl package's Expr variant.
package eval

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
	"github.com/railwayhistory/railmap/internal/geom"
	"github.com/railwayhistory/railmap/internal/pathstore"
	"github.com/railwayhistory/railmap/internal/style"
)

// Value is one of the ten tagged-variant cases an expression can
// evaluate to.
type Value interface {
	value()
	// Type names the case, used in EvalError messages when a builtin
	// rejects a Value of the wrong variant.
	Type() string
}

// ComplexValue is an unresolved named reference: a variable that hasn't
// been looked up yet, or a builtin call result not otherwise representable
// (rare in practice — most Complex expressions reduce directly to one of
// the other cases during evaluation).
type ComplexValue struct {
	Name string
	Args []Value
}

func (ComplexValue) value()       {}
func (ComplexValue) Type() string { return "complex" }

type ListValue struct{ Items []Value }

func (ListValue) value()       {}
func (ListValue) Type() string { return "list" }

type VectorValue struct{ X, Y UnitNumberValue }

func (VectorValue) value()       {}
func (VectorValue) Type() string { return "vector" }

// ToGeomVector converts a VectorValue into a geom.Vector, resolving each
// component's unit to meters via the style table at the given detail.
func (v VectorValue) ToGeomVector(st *style.Table, detail int) (geom.Vector, error) {
	x, err := st.Meters(v.X.Unit, v.X.Value, detail)
	if err != nil {
		return geom.Vector{}, err
	}
	y, err := st.Meters(v.Y.Unit, v.Y.Value, detail)
	if err != nil {
		return geom.Vector{}, err
	}
	return geom.Vector{X: x, Y: y}, nil
}

type NumberValue struct{ Value float64 }

func (NumberValue) value()       {}
func (NumberValue) Type() string { return "number" }

type SymbolValue struct{ Name string }

func (SymbolValue) value()       {}
func (SymbolValue) Type() string { return "symbol" }

type SymbolSetValue struct{ Symbols []string }

func (SymbolSetValue) value()       {}
func (SymbolSetValue) Type() string { return "symbol-set" }

type TextValue struct{ Value string }

func (TextValue) value()       {}
func (TextValue) Type() string { return "text" }

type UnitNumberValue struct {
	Value float64
	Unit  style.Unit
}

func (UnitNumberValue) value()       {}
func (UnitNumberValue) Type() string { return "unit-number" }

// PathValue wraps a loaded pathstore.Path, the result of `path("id")`.
type PathValue struct{ Path *pathstore.Path }

func (PathValue) value()       {}
func (PathValue) Type() string { return "path" }

// SectionValue wraps a curve already resolved from a bracketed section
// (offsets already applied), the result of evaluating `somepath[...]`.
type SectionValue struct{ Curve *geom.Curve }

func (SectionValue) value()       {}
func (SectionValue) Type() string { return "section" }
