package toolchain

import (
	"slices"
	"testing"
)

func TestParseUnitImports(t *testing.T) {
	src := `import def, { a, b as c, type T } from "./one";
import * as ns from './two';
import "./side";
export { x, y as z } from "./three";
export * from "./four";
export * as five from "./five";
const lazy = import("./six");
const req = require("./seven");
// import gone from "./comment";
const s = "import fake from './string'";
`
	u := ParseUnit("/p/a.ts", src, TargetES2020)
	type got struct {
		kind  ImportKind
		spec  string
		names []string
		star  bool
	}
	want := []got{
		{ImportStatic, "./one", []string{"default", "a", "b", "T"}, false},
		{ImportStatic, "./two", nil, false},
		{ImportSideEffect, "./side", nil, false},
		{ImportReExport, "./three", []string{"x", "y"}, false},
		{ImportReExport, "./four", nil, true},
		{ImportReExport, "./five", nil, false},
		{ImportDynamic, "./six", nil, false},
		{ImportRequire, "./seven", nil, false},
	}
	if len(u.Imports) != len(want) {
		t.Fatalf("got %d imports, want %d: %+v", len(u.Imports), len(want), u.Imports)
	}
	for i, w := range want {
		imp := u.Imports[i]
		if imp.Kind != w.kind || imp.Specifier != w.spec || !slices.Equal(imp.Names, w.names) || imp.Star != w.star {
			t.Errorf("import %d = %+v, want %+v", i, imp, w)
		}
	}
	if !u.ESM {
		t.Error("unit not marked as ESM")
	}
	if want := []string{"five", "x", "z"}; !slices.Equal(u.Exports, want) {
		t.Errorf("exports = %v, want %v", u.Exports, want)
	}
}

func TestParseUnitExports(t *testing.T) {
	src := `export const one = 1;
export function two() {}
export async function three() {}
export class Four {}
export interface Five {}
export type Six = string;
export enum Seven { A }
export default function () {}
const eight = 8, nine = 9;
export { eight, nine as ten };
const str = "export const fake = 1";
`
	u := ParseUnit("/p/b.ts", src, TargetES2020)
	want := []string{"Five", "Four", "Seven", "Six", "default", "eight", "one", "ten", "three", "two"}
	if !slices.Equal(u.Exports, want) {
		t.Errorf("exports = %v, want %v", u.Exports, want)
	}
	if u.CommonJS {
		t.Error("ESM unit marked as CommonJS")
	}
}

func TestParseUnitCommonJS(t *testing.T) {
	u := ParseUnit("/p/c.js", "const a = require('./a');\nmodule.exports = { a };\n", TargetES2020)
	if !u.CommonJS || u.ESM {
		t.Errorf("CommonJS=%v ESM=%v, want true/false", u.CommonJS, u.ESM)
	}
	u = ParseUnit("/p/d.js", "obj.require('./x');\n", TargetES2020)
	if len(u.Imports) != 0 {
		t.Errorf("member call taken for require: %+v", u.Imports)
	}
}

func TestUnitPosition(t *testing.T) {
	u := ParseUnit("/p/a.ts", "\n\nimport { x } from \"./b\";\n", TargetES2020)
	if len(u.Imports) != 1 {
		t.Fatalf("imports = %+v", u.Imports)
	}
	line, col := u.Position(u.Imports[0].Off)
	if line != 3 || col != 19 {
		t.Errorf("position = %d:%d, want 3:19", line, col)
	}
}
