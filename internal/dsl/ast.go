// Package dsl lexes and parses `.map` source files into an AST that
// preserves source spans for diagnostics, per the grammar in the map
// description language.
package dsl

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

// Stmt is a top-level or nested statement: LetStmt, WithStmt or CallStmt.
// A bare ";" is consumed by the parser and produces no node.
type Stmt interface {
	stmt()
	Span() Pos
}

// LetStmt binds a name to an expression for the rest of the enclosing
// scope: "let name = expr;".
type LetStmt struct {
	Name  string
	Value Expr
	Pos   Pos
}

func (s *LetStmt) stmt()     {}
func (s *LetStmt) Span() Pos { return s.Pos }

// WithStmt extends the lexical environment with one or more assignments for
// the duration of Body: "with a = x, b = y { ... }".
type WithStmt struct {
	Assigns []Assign
	Body    []Stmt
	Pos     Pos
}

func (s *WithStmt) stmt()     {}
func (s *WithStmt) Span() Pos { return s.Pos }

// Assign is one "name = expr" pair inside a with-statement's assignment
// list.
type Assign struct {
	Name  string
	Value Expr
	Pos   Pos
}

// CallStmt invokes a built-in procedure: "track(:first, flwhag[...]);".
type CallStmt struct {
	Name string
	Args []Expr
	Pos  Pos
}

func (s *CallStmt) stmt()     {}
func (s *CallStmt) Span() Pos { return s.Pos }

// Expr is any of the tagged-variant expression cases: Complex,
// List, Vector, Number, Symbol, SymbolSet, Text, UnitNumber, or a Join of
// two fragments via a connector. Section is not a top-level Expr case on
// its own; it only ever appears attached to a ComplexExpr.
type Expr interface {
	expr()
	Span() Pos
}

// ComplexExpr is a named reference, optionally called with arguments and
// optionally followed by a bracketed Section, e.g. `path("id")` or
// `flwhag[:flw.f, :f]`.
type ComplexExpr struct {
	Name string
	// Called distinguishes a call like `path()` (zero args, still a call)
	// from a bare reference like `flwhag`; Args is only meaningful when
	// Called is true.
	Called  bool
	Args    []Expr
	Section *SectionExpr // nil if no bracketed section
	Pos     Pos
}

func (e *ComplexExpr) expr()     {}
func (e *ComplexExpr) Span() Pos { return e.Pos }

// ListExpr is a bracketed, comma-separated list of expressions not attached
// to a preceding Complex.
type ListExpr struct {
	Items []Expr
	Pos   Pos
}

func (e *ListExpr) expr()     {}
func (e *ListExpr) Span() Pos { return e.Pos }

// VectorExpr is a parenthesized pair of unit-numbers: "(1bp, 2bp)".
type VectorExpr struct {
	X, Y UnitNumberExpr
	Pos  Pos
}

func (e *VectorExpr) expr()     {}
func (e *VectorExpr) Span() Pos { return e.Pos }

// NumberExpr is a bare numeric literal with no unit.
type NumberExpr struct {
	Value float64
	Pos   Pos
}

func (e *NumberExpr) expr()     {}
func (e *NumberExpr) Span() Pos { return e.Pos }

// SymbolExpr is a single colon-prefixed tag.
type SymbolExpr struct {
	Name string
	Pos  Pos
}

func (e *SymbolExpr) expr()     {}
func (e *SymbolExpr) Span() Pos { return e.Pos }

// SymbolSetExpr is two or more symbols juxtaposed with no separator, e.g.
// ":double :first :cat".
type SymbolSetExpr struct {
	Symbols []string
	Pos     Pos
}

func (e *SymbolSetExpr) expr()     {}
func (e *SymbolSetExpr) Span() Pos { return e.Pos }

// TextExpr is a double-quoted string literal.
type TextExpr struct {
	Value string
	Pos   Pos
}

func (e *TextExpr) expr()     {}
func (e *TextExpr) Span() Pos { return e.Pos }

// UnitNumberExpr is a number immediately followed (no whitespace) by a unit
// identifier, e.g. "1.5dt".
type UnitNumberExpr struct {
	Value float64
	Unit  string
	Pos   Pos
}

func (e *UnitNumberExpr) expr()     {}
func (e *UnitNumberExpr) Span() Pos { return e.Pos }

// JoinExpr connects two fragments with a ".." (smooth) or "--" (straight)
// connector, forming the expr := fragment (connector fragment)* grammar.
type JoinExpr struct {
	Left, Right Expr
	Smooth      bool // true for "..", false for "--"
	Pos         Pos
}

func (e *JoinExpr) expr()     {}
func (e *JoinExpr) Span() Pos { return e.Pos }

// SectionExpr is the bracketed "[location (, location)?] offset*" suffix of
// a ComplexExpr.
type SectionExpr struct {
	Start, End *Location // End is nil for a single-point section
	Offsets    []Offset
	Pos        Pos
}

// Location is "symbol distance*": a named position plus zero or more
// signed unit-number displacements along the curve.
type Location struct {
	Symbol    string
	Distances []Distance
	Pos       Pos
}

// Distance is a signed unit-number added to a Location's base arc offset.
type Distance struct {
	Negative bool
	Amount   UnitNumberExpr
}

// Offset is one of Sideways, Shift or Angle, applied in declaration order
// after a Section's base position is resolved.
type Offset interface {
	offset()
}

// Sideways translates by +-amount along the curve's left-hand normal:
// "<< 1.5dt" or ">> 0.5sw".
type Sideways struct {
	Left   bool // true for "<<", false for ">>"
	Amount UnitNumberExpr
}

func (Sideways) offset() {}

// Shift translates by an absolute 2D vector: "+ (1bp, 1bp)" or "- (...)".
type Shift struct {
	Negative bool
	Vector   VectorExpr
}

func (Shift) offset() {}

// Angle rotates the local frame by Value radians-equivalent degrees around
// the anchor point: "@ 15".
type Angle struct {
	Value float64
}

func (Angle) offset() {}
