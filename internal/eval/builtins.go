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

	"github.com/railwayhistory/railmap/internal/dsl"
	"github.com/railwayhistory/railmap/internal/model"
)

// evalCallStmt dispatches a top-level procedure call to the fixed built-in
// table: track, marker, station, line_badge and border each append zero
// or more Features; path() evaluated as a statement is legal but pointless
// (its result is discarded).
func (ev *Evaluator) evalCallStmt(x *dsl.CallStmt, env *Environment) error {
	switch x.Name {
	case "path":
		ref := &dsl.ComplexExpr{Name: "path", Called: true, Args: x.Args, Pos: x.Pos}
		_, err := ev.evalComplex(ref, env)
		return err
	case "track":
		return ev.emitGeometryFeature(model.Track, x, env)
	case "marker":
		return ev.emitGeometryFeature(model.Marker, x, env)
	case "station":
		return ev.emitGeometryFeature(model.Station, x, env)
	case "line_badge":
		return ev.emitGeometryFeature(model.LineBadge, x, env)
	case "border":
		return ev.emitGeometryFeature(model.Border, x, env)
	default:
		return errAt(x.Pos, fmt.Sprintf("unknown procedure %q", x.Name))
	}
}

// emitGeometryFeature implements the common shape of track/marker/station/
// line_badge: a symbol (or symbol set) argument, a geometry argument that
// evaluates to a Path or Section, and zero or more trailing text arguments
// (name, then auxiliary line) for text-bearing kinds.
func (ev *Evaluator) emitGeometryFeature(kind model.Kind, x *dsl.CallStmt, env *Environment) error {
	if len(x.Args) < 2 {
		return errAt(x.Pos, fmt.Sprintf("%s() requires a symbol set and a geometry argument", x.Name))
	}

	symVal, err := ev.evalExpr(x.Args[0], env)
	if err != nil {
		return err
	}
	var symbols []string
	switch sv := symVal.(type) {
	case SymbolValue:
		symbols = []string{sv.Name}
	case SymbolSetValue:
		symbols = sv.Symbols
	default:
		return errAt(x.Pos, fmt.Sprintf("%s() first argument must be a symbol or symbol set, got %s", x.Name, symVal.Type()))
	}

	geomVal, err := ev.evalExpr(x.Args[1], env)
	if err != nil {
		return err
	}
	curve, err := ev.toCurve(geomVal, x.Pos)
	if err != nil {
		return err
	}

	detail, ok := env.LookupInt("detail")
	if !ok {
		return errAt(x.Pos, fmt.Sprintf("%s() used outside of an enclosing 'with detail = ...' block", x.Name))
	}
	zorder := model.DefaultZOrder(kind)
	if z, ok := env.LookupInt("layer"); ok {
		zorder = z
	}

	var text *model.TextPayload
	if len(x.Args) > 2 {
		text = &model.TextPayload{}
		for i, a := range x.Args[2:] {
			v, err := ev.evalExpr(a, env)
			if err != nil {
				return err
			}
			txt, ok := v.(TextValue)
			if !ok {
				return errAt(x.Pos, fmt.Sprintf("%s() extra argument %d must be text, got %s", x.Name, i+1, v.Type()))
			}
			switch i {
			case 0:
				text.Name = txt.Value
			case 1:
				text.Aux = txt.Value
			}
		}
	}

	bbox := curve.BBox()
	if bbox.Empty() {
		return errAt(x.Pos, fmt.Sprintf("%s() produced a feature with an empty bounding box", x.Name))
	}

	ev.fset.Append(&model.Feature{
		Kind:    kind,
		Geom:    model.Geometry{Curve: curve, IsPoint: len(curve.Vertices) == 1},
		Symbols: model.NewSymbolSet(symbols...),
		Text:    text,
		Detail:  detail,
		ZOrder:  zorder,
		BBox:    bbox,
	})
	return nil
}
