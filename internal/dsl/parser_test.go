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

import "testing"

func TestParseLetAndTrack(t *testing.T) {
	src := `let flwhag = path("path.de.1000");
with detail = 1 {
	track(:first, flwhag[:flw.f, :f]);
}
`
	stmts, err := Parse("1000.map", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}

	let, ok := stmts[0].(*LetStmt)
	if !ok {
		t.Fatalf("stmts[0] = %T, want *LetStmt", stmts[0])
	}
	if let.Name != "flwhag" {
		t.Errorf("let.Name = %q, want flwhag", let.Name)
	}
	call, ok := let.Value.(*ComplexExpr)
	if !ok || call.Name != "path" {
		t.Fatalf("let.Value = %#v, want Complex(path)", let.Value)
	}
	if len(call.Args) != 1 {
		t.Fatalf("path() args = %d, want 1", len(call.Args))
	}
	if txt, ok := call.Args[0].(*TextExpr); !ok || txt.Value != "path.de.1000" {
		t.Fatalf("path() arg = %#v, want Text(path.de.1000)", call.Args[0])
	}

	with, ok := stmts[1].(*WithStmt)
	if !ok {
		t.Fatalf("stmts[1] = %T, want *WithStmt", stmts[1])
	}
	if len(with.Assigns) != 1 || with.Assigns[0].Name != "detail" {
		t.Fatalf("with.Assigns = %#v", with.Assigns)
	}
	if len(with.Body) != 1 {
		t.Fatalf("with.Body = %d statements, want 1", len(with.Body))
	}
	track, ok := with.Body[0].(*CallStmt)
	if !ok || track.Name != "track" {
		t.Fatalf("with.Body[0] = %#v, want CallStmt(track)", with.Body[0])
	}
	if len(track.Args) != 2 {
		t.Fatalf("track() args = %d, want 2", len(track.Args))
	}
	if _, ok := track.Args[0].(*SymbolExpr); !ok {
		t.Fatalf("track arg0 = %#v, want SymbolExpr", track.Args[0])
	}
	ref, ok := track.Args[1].(*ComplexExpr)
	if !ok || ref.Name != "flwhag" {
		t.Fatalf("track arg1 = %#v, want Complex(flwhag)", track.Args[1])
	}
	if ref.Section == nil {
		t.Fatalf("flwhag reference has no section")
	}
	if ref.Section.Start.Symbol != "flw.f" {
		t.Errorf("section start = %q, want flw.f", ref.Section.Start.Symbol)
	}
	if ref.Section.End == nil || ref.Section.End.Symbol != "f" {
		t.Errorf("section end = %#v, want symbol f", ref.Section.End)
	}
}

func TestParseSectionWithDistanceAndSideways(t *testing.T) {
	src := `track(:first, flwhag[:fri - 1sw, :fri + 1sw] << 0.5dt);`
	stmts, err := Parse("scenario2.map", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	call := stmts[0].(*CallStmt)
	ref := call.Args[1].(*ComplexExpr)
	sec := ref.Section
	if sec.Start.Symbol != "fri" || len(sec.Start.Distances) != 1 {
		t.Fatalf("start location = %#v", sec.Start)
	}
	if !sec.Start.Distances[0].Negative {
		t.Errorf("start distance should be negative")
	}
	if sec.End.Symbol != "fri" || sec.End.Distances[0].Negative {
		t.Errorf("end location = %#v", sec.End)
	}
	if len(sec.Offsets) != 1 {
		t.Fatalf("offsets = %#v, want 1", sec.Offsets)
	}
	sw, ok := sec.Offsets[0].(Sideways)
	if !ok || !sw.Left || sw.Amount.Value != 0.5 || sw.Amount.Unit != "dt" {
		t.Fatalf("offset = %#v", sec.Offsets[0])
	}
}

func TestParseSymbolSetAndListLiteral(t *testing.T) {
	src := `station(:double :first :cat, [1bp, 2bp]);`
	stmts, err := Parse("symbolset.map", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	call := stmts[0].(*CallStmt)
	set, ok := call.Args[0].(*SymbolSetExpr)
	if !ok || len(set.Symbols) != 3 {
		t.Fatalf("arg0 = %#v, want SymbolSetExpr of 3", call.Args[0])
	}
	list, ok := call.Args[1].(*ListExpr)
	if !ok || len(list.Items) != 2 {
		t.Fatalf("arg1 = %#v, want ListExpr of 2", call.Args[1])
	}
}

func TestParseLeadingDotFraction(t *testing.T) {
	src := `track(:first, flwhag[:fri - 1sw, :fri + .2sw + 2dl] >> 1.5dt);`
	stmts, err := Parse("fraction.map", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	call := stmts[0].(*CallStmt)
	sec := call.Args[1].(*ComplexExpr).Section
	if len(sec.End.Distances) != 2 {
		t.Fatalf("end distances = %#v, want 2", sec.End.Distances)
	}
	if d := sec.End.Distances[0]; d.Amount.Value != 0.2 || d.Amount.Unit != "sw" {
		t.Errorf("end distance 0 = %#v, want +.2sw", d)
	}
	sw, ok := sec.Offsets[0].(Sideways)
	if !ok || sw.Left || sw.Amount.Value != 1.5 || sw.Amount.Unit != "dt" {
		t.Fatalf("offset = %#v, want >> 1.5dt", sec.Offsets[0])
	}
}

func TestParseErrorReportsPosition(t *testing.T) {
	_, err := Parse("bad.map", `let x = ;`)
	if err == nil {
		t.Fatal("expected a ParseError")
	}
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("err = %T, want *ParseError", err)
	}
	if perr.Pos.Line != 1 {
		t.Errorf("Pos.Line = %d, want 1", perr.Pos.Line)
	}
}

func TestParseConnectors(t *testing.T) {
	src := `let x = a .. b -- c;`
	stmts, err := Parse("connectors.map", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	let := stmts[0].(*LetStmt)
	outer, ok := let.Value.(*JoinExpr)
	if !ok || outer.Smooth {
		t.Fatalf("outer join = %#v, want straight JoinExpr", let.Value)
	}
	inner, ok := outer.Left.(*JoinExpr)
	if !ok || !inner.Smooth {
		t.Fatalf("inner join = %#v, want smooth JoinExpr", outer.Left)
	}
}

// TestPrintRoundTrip: printing a parsed tree and reparsing the output
// must yield the same tree again, up to whitespace and comments.
func TestPrintRoundTrip(t *testing.T) {
	sources := []string{
		`let flwhag = path("path.de.1000");
# comment lines vanish on round-trip
with detail = 1 {
	track(:first, flwhag[:flw.f, :f]);
}
`,
		`track(:first, flwhag[:fri - 1sw, :fri + .2sw + 2dl] >> 1.5dt);`,
		`station(:double :first :cat, [1bp, 2bp], "Flensburg", "km 0.9");`,
		`let x = a .. b -- c;`,
		`line_badge(harline[:har - 3km] @ -15 + (1bp, 2bp));`,
	}
	for _, src := range sources {
		stmts, err := Parse("roundtrip.map", src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		printed := Print(stmts)
		again, err := Parse("roundtrip2.map", printed)
		if err != nil {
			t.Fatalf("reparse of printed output failed: %v\noutput:\n%s", err, printed)
		}
		if got := Print(again); got != printed {
			t.Errorf("round-trip not stable:\nfirst:\n%s\nsecond:\n%s", printed, got)
		}
	}
}

func TestParseAngleOffset(t *testing.T) {
	src := `line_badge(harline[:har - 3km] @ -15);`
	stmts, err := Parse("badge.map", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	call := stmts[0].(*CallStmt)
	ref := call.Args[0].(*ComplexExpr)
	ang, ok := ref.Section.Offsets[0].(Angle)
	if !ok || ang.Value != -15 {
		t.Fatalf("offset = %#v, want Angle(-15)", ref.Section.Offsets[0])
	}
}
