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
	"fmt"
	"math"

	"github.com/railwayhistory/railmap/internal/dsl"
	"github.com/railwayhistory/railmap/internal/geom"
	"github.com/railwayhistory/railmap/internal/model"
	"github.com/railwayhistory/railmap/internal/pathstore"
	"github.com/railwayhistory/railmap/internal/style"
)

// Evaluator executes a parsed statement list against a Path Store and a
// style Table, appending Features to a FeatureSet. It is
// deterministic and side-effect-free apart from feature emission.
type Evaluator struct {
	store *pathstore.Store
	style *style.Table
	fset  *model.FeatureSet
}

// NewEvaluator creates an Evaluator over the given path store and style
// table, emitting into fset.
func NewEvaluator(store *pathstore.Store, st *style.Table, fset *model.FeatureSet) *Evaluator {
	return &Evaluator{store: store, style: st, fset: fset}
}

// Run executes stmts in a fresh root environment and stops at the first
// evaluation error, which it returns; callers that want the "log and
// drop" policy should use RunTolerant instead.
func (ev *Evaluator) Run(stmts []dsl.Stmt) error {
	return ev.exec(stmts, NewEnvironment())
}

// RunTolerant executes stmts, logging and skipping any statement whose
// evaluation fails instead of aborting the whole file. Each error is
// passed to onError; nothing is returned.
func (ev *Evaluator) RunTolerant(stmts []dsl.Stmt, onError func(error)) {
	ev.execTolerant(stmts, NewEnvironment(), onError)
}

func (ev *Evaluator) exec(stmts []dsl.Stmt, env *Environment) error {
	for _, s := range stmts {
		if err := ev.execStmt(s, env); err != nil {
			return err
		}
	}
	return nil
}

// execTolerant mirrors exec/execStmt's WithStmt handling but recurses into
// nested blocks tolerantly too, so one bad statement inside a with-block
// does not prevent its siblings from still being evaluated.
func (ev *Evaluator) execTolerant(stmts []dsl.Stmt, env *Environment, onError func(error)) {
	for _, s := range stmts {
		with, isWith := s.(*dsl.WithStmt)
		if !isWith {
			if err := ev.execStmt(s, env); err != nil {
				onError(err)
			}
			continue
		}

		child := env.Child()
		assignsOK := true
		for _, a := range with.Assigns {
			v, err := ev.evalExpr(a.Value, child)
			if err != nil {
				onError(err)
				assignsOK = false
				break
			}
			child.Define(a.Name, v)
		}
		if assignsOK {
			ev.execTolerant(with.Body, child, onError)
		}
	}
}

func (ev *Evaluator) execStmt(s dsl.Stmt, env *Environment) error {
	switch x := s.(type) {
	case *dsl.LetStmt:
		v, err := ev.evalExpr(x.Value, env)
		if err != nil {
			return err
		}
		env.Define(x.Name, v)
		return nil
	case *dsl.WithStmt:
		child := env.Child()
		for _, a := range x.Assigns {
			v, err := ev.evalExpr(a.Value, child)
			if err != nil {
				return err
			}
			child.Define(a.Name, v)
		}
		return ev.exec(x.Body, child)
	case *dsl.CallStmt:
		return ev.evalCallStmt(x, env)
	default:
		return errAt(s.Span(), fmt.Sprintf("unsupported statement %T", s))
	}
}

func (ev *Evaluator) evalExpr(e dsl.Expr, env *Environment) (Value, error) {
	switch x := e.(type) {
	case *dsl.NumberExpr:
		return NumberValue{Value: x.Value}, nil
	case *dsl.UnitNumberExpr:
		return UnitNumberValue{Value: x.Value, Unit: style.Unit(x.Unit)}, nil
	case *dsl.SymbolExpr:
		return SymbolValue{Name: x.Name}, nil
	case *dsl.SymbolSetExpr:
		return SymbolSetValue{Symbols: x.Symbols}, nil
	case *dsl.TextExpr:
		return TextValue{Value: x.Value}, nil
	case *dsl.ListExpr:
		items := make([]Value, len(x.Items))
		for i, it := range x.Items {
			v, err := ev.evalExpr(it, env)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return ListValue{Items: items}, nil
	case *dsl.VectorExpr:
		return VectorValue{
			X: UnitNumberValue{Value: x.X.Value, Unit: style.Unit(x.X.Unit)},
			Y: UnitNumberValue{Value: x.Y.Value, Unit: style.Unit(x.Y.Unit)},
		}, nil
	case *dsl.ComplexExpr:
		return ev.evalComplex(x, env)
	case *dsl.JoinExpr:
		return ev.evalJoin(x, env)
	default:
		return nil, errAt(e.Span(), fmt.Sprintf("unsupported expression %T", e))
	}
}

func (ev *Evaluator) evalComplex(x *dsl.ComplexExpr, env *Environment) (Value, error) {
	if x.Called {
		switch x.Name {
		case "path":
			if len(x.Args) != 1 {
				return nil, errAt(x.Pos, "path() takes exactly one argument")
			}
			arg, err := ev.evalExpr(x.Args[0], env)
			if err != nil {
				return nil, err
			}
			txt, ok := arg.(TextValue)
			if !ok {
				return nil, errAt(x.Pos, fmt.Sprintf("path() argument must be text, got %s", arg.Type()))
			}
			p, err := ev.store.Get(txt.Value)
			if err != nil {
				return nil, errAt(x.Pos, err.Error())
			}
			val := Value(PathValue{Path: p})
			if x.Section != nil {
				return ev.applySection(val, x, env)
			}
			return val, nil
		default:
			return nil, errAt(x.Pos, fmt.Sprintf("unknown procedure %q in expression position", x.Name))
		}
	}

	v, ok := env.Lookup(x.Name)
	if !ok {
		return nil, errAt(x.Pos, fmt.Sprintf("undefined name %q", x.Name))
	}
	if x.Section != nil {
		return ev.applySection(v, x, env)
	}
	return v, nil
}

func (ev *Evaluator) applySection(v Value, x *dsl.ComplexExpr, env *Environment) (Value, error) {
	pv, ok := v.(PathValue)
	if !ok {
		return nil, errAt(x.Pos, fmt.Sprintf("cannot take a section of a %s value", v.Type()))
	}
	detail, ok := env.LookupInt("detail")
	if !ok {
		return nil, errAt(x.Pos, "section used outside of an enclosing 'with detail = ...' block")
	}

	start, err := ev.toSymbolicPosition(x.Section.Start, detail)
	if err != nil {
		return nil, errAt(x.Pos, err.Error())
	}
	var end *pathstore.SymbolicPosition
	if x.Section.End != nil {
		e, err := ev.toSymbolicPosition(x.Section.End, detail)
		if err != nil {
			return nil, errAt(x.Pos, err.Error())
		}
		end = &e
	}
	offs, err := ev.toOffsets(x.Section.Offsets, detail)
	if err != nil {
		return nil, errAt(x.Pos, err.Error())
	}

	curve, err := pathstore.ResolveSection(pv.Path, start, end, offs)
	if err != nil {
		return nil, errAt(x.Pos, err.Error())
	}
	return SectionValue{Curve: curve}, nil
}

func (ev *Evaluator) evalJoin(x *dsl.JoinExpr, env *Environment) (Value, error) {
	lv, err := ev.evalExpr(x.Left, env)
	if err != nil {
		return nil, err
	}
	rv, err := ev.evalExpr(x.Right, env)
	if err != nil {
		return nil, err
	}
	lc, err := ev.toCurve(lv, x.Pos)
	if err != nil {
		return nil, err
	}
	rc, err := ev.toCurve(rv, x.Pos)
	if err != nil {
		return nil, err
	}
	var joined *geom.Curve
	if x.Smooth {
		joined = geom.JoinSmooth(lc, rc)
	} else {
		joined = geom.JoinStraight(lc, rc)
	}
	return SectionValue{Curve: joined}, nil
}

func (ev *Evaluator) toCurve(v Value, pos dsl.Pos) (*geom.Curve, error) {
	switch x := v.(type) {
	case SectionValue:
		return x.Curve, nil
	case PathValue:
		return x.Path.Curve, nil
	default:
		return nil, errAt(pos, fmt.Sprintf("cannot join a %s value", v.Type()))
	}
}

func (ev *Evaluator) toSymbolicPosition(loc *dsl.Location, detail int) (pathstore.SymbolicPosition, error) {
	m, err := ev.signedMeters(loc.Distances, detail)
	if err != nil {
		return pathstore.SymbolicPosition{}, err
	}
	return pathstore.SymbolicPosition{Base: loc.Symbol, DisplacementM: m}, nil
}

func (ev *Evaluator) signedMeters(dists []dsl.Distance, detail int) (float64, error) {
	var total float64
	for _, d := range dists {
		m, err := ev.style.Meters(style.Unit(d.Amount.Unit), d.Amount.Value, detail)
		if err != nil {
			return 0, err
		}
		if d.Negative {
			m = -m
		}
		total += m
	}
	return total, nil
}

func (ev *Evaluator) toOffsets(dslOffsets []dsl.Offset, detail int) ([]pathstore.Offset, error) {
	offs := make([]pathstore.Offset, 0, len(dslOffsets))
	for _, o := range dslOffsets {
		switch x := o.(type) {
		case dsl.Sideways:
			m, err := ev.style.Meters(style.Unit(x.Amount.Unit), x.Amount.Value, detail)
			if err != nil {
				return nil, err
			}
			if !x.Left {
				m = -m
			}
			offs = append(offs, pathstore.Sideways{AmountM: m})
		case dsl.Shift:
			vec, err := VectorValue{
				X: UnitNumberValue{Value: x.Vector.X.Value, Unit: style.Unit(x.Vector.X.Unit)},
				Y: UnitNumberValue{Value: x.Vector.Y.Value, Unit: style.Unit(x.Vector.Y.Unit)},
			}.ToGeomVector(ev.style, detail)
			if err != nil {
				return nil, err
			}
			if x.Negative {
				vec = vec.Scale(-1)
			}
			offs = append(offs, pathstore.Shift{Vector: vec})
		case dsl.Angle:
			offs = append(offs, pathstore.Angle{Radians: x.Value * math.Pi / 180})
		}
	}
	return offs, nil
}
