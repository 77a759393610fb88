package driver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"glaze/internal/diag"
	"glaze/internal/diagfmt"
	"glaze/internal/preprocess"
	"glaze/internal/source"
	"glaze/internal/toolchain"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return source.CleanPath(dir)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestCompileOneShot(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"src/a.ts": "#define TWICE(x) ((x) * 2)\nimport { b } from './b';\nexport const a = TWICE(b);\n",
		"src/b.ts": "export const b = 21;\n",
	})
	var phases []string
	res, err := Compile(context.Background(), Options{
		Entries:  []string{dir + "/src"},
		Compiler: toolchain.CompilerOptions{OutDir: dir + "/out"},
		Observer: func(ev PhaseEvent) {
			if ev.Status == PhaseStart {
				phases = append(phases, ev.Name)
			}
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if ds := res.Diagnostics(); len(ds) != 0 {
		t.Fatalf("diagnostics = %v", ds)
	}
	if want := []string{dir + "/src/a.ts", dir + "/src/b.ts"}; !slices.Equal(res.Inputs, want) {
		t.Errorf("Inputs = %v", res.Inputs)
	}
	if want := []string{dir + "/out/b.js", dir + "/out/a.js"}; !slices.Equal(res.Outputs(), want) {
		t.Errorf("Outputs = %v", res.Outputs())
	}
	out := readFile(t, dir+"/out/a.js")
	if strings.Contains(out, "TWICE") || !strings.Contains(out, "b * 2") {
		t.Errorf("a.js =\n%s", out)
	}
	if got := res.Exports()[dir+"/src/a.ts"]; !slices.Equal(got, []string{"a"}) {
		t.Errorf("exports of a.ts = %v", got)
	}
	if want := []string{PhaseInputs, PhasePreprocess, PhaseProgram, PhaseCheck, PhaseEmit}; !slices.Equal(phases, want) {
		t.Errorf("phases = %v", phases)
	}
	if len(res.Timings.Phases) != 5 {
		t.Errorf("timings = %+v", res.Timings)
	}
	if res.Watching() {
		t.Error("one-shot result claims to watch")
	}
	if res.Builds() != 1 || res.Status() != "done, 0 errors" {
		t.Errorf("Builds = %d, Status = %q", res.Builds(), res.Status())
	}
	res.Stop()
}

func TestCompileReportsDiagnostics(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.ts": "import { missing } from './b';\nimport './nowhere';\n",
		"b.ts": "export const b = 1;\n",
	})
	res, err := Compile(context.Background(), Options{
		Entries:  []string{dir + "/a.ts"},
		Compiler: toolchain.CompilerOptions{NoEmit: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	ds := res.Diagnostics()
	codes := make([]diag.Code, len(ds))
	for i, d := range ds {
		codes[i] = d.Code
	}
	if !slices.Equal(codes, []diag.Code{diag.ImpMissingExport, diag.ImpModuleNotFound}) {
		t.Fatalf("diagnostics = %v", ds)
	}
	if res.ErrorCount() != 2 {
		t.Errorf("ErrorCount = %d", res.ErrorCount())
	}
	if len(res.Outputs()) != 0 {
		t.Errorf("no_emit wrote %v", res.Outputs())
	}

	var buf bytes.Buffer
	sum := res.Debug(&buf, diagfmt.ReportOpts{Mode: diagfmt.ModeAll, Max: 1})
	if !sum.Truncated || sum.Displayed != 1 || sum.Total != 2 {
		t.Errorf("summary = %+v", sum)
	}
	if !strings.Contains(buf.String(), "Displayed the first 1 error out of 2.") {
		t.Errorf("debug output:\n%s", buf.String())
	}
}

func TestCompileConfigErrorsAbortEarly(t *testing.T) {
	res, err := Compile(context.Background(), Options{
		Entries:  []string{"/does/not/matter.ts"},
		Compiler: toolchain.CompilerOptions{TargetName: "es1999"},
	})
	if err != nil {
		t.Fatal(err)
	}
	ds := res.Diagnostics()
	if len(ds) != 1 || ds[0].Code != diag.CfgUnknownTarget {
		t.Fatalf("diagnostics = %v", ds)
	}
	if len(res.Inputs) != 0 {
		t.Errorf("inputs expanded after a config error: %v", res.Inputs)
	}
}

func TestCompileEntryErrors(t *testing.T) {
	dir := writeTree(t, map[string]string{"empty/readme.md": "nothing"})
	tests := []struct {
		name  string
		entry string
		code  diag.Code
	}{
		{"missing file", dir + "/nope.ts", diag.EntryNotFound},
		{"no sources", dir + "/empty", diag.EntryNoSources},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compile(context.Background(), Options{Entries: []string{tt.entry}})
			if err != nil {
				t.Fatal(err)
			}
			ds := res.Diagnostics()
			if len(ds) != 1 || ds[0].Code != tt.code {
				t.Errorf("diagnostics = %v", ds)
			}
		})
	}
}

func TestExpandInputsSkipsIgnoredDirs(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"src/a.ts":                "",
		"src/a.test.ts":           "",
		"src/types.d.ts":          "",
		"src/gen/x.ts":            "",
		"src/node_modules/m/i.js": "",
		"src/.cache/c.ts":         "",
		"src/out/a.js":            "",
		"src/notes.txt":           "",
	})
	got, ds := expandInputs([]string{dir + "/src", dir + "/src/a.ts"}, []string{"*.test.ts", "gen"}, dir+"/src/out")
	if len(ds) != 0 {
		t.Fatalf("diagnostics = %v", ds)
	}
	want := []string{dir + "/src/a.ts", dir + "/src/types.d.ts"}
	if !slices.Equal(got, want) {
		t.Errorf("inputs = %v, want %v", got, want)
	}
}

func TestCompileExactFiles(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.ts": "import { b } from './b';\nexport const a = b;\n",
		"b.ts": "export const b = 1;\n",
	})
	res, err := Compile(context.Background(), Options{
		Entries:    []string{dir + "/a.ts"},
		ExactFiles: true,
		Compiler:   toolchain.CompilerOptions{OutDir: dir + "/out"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if ds := res.Diagnostics(); len(ds) != 0 {
		t.Errorf("diagnostics = %v", ds)
	}
	if want := []string{dir + "/out/a.js"}; !slices.Equal(res.Outputs(), want) {
		t.Errorf("Outputs = %v", res.Outputs())
	}
}

func TestCompileAliases(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"src/a.ts":    "import { util } from '@lib/util';\nexport const a = util;\n",
		"lib/util.ts": "export const util = 1;\n",
	})
	res, err := Compile(context.Background(), Options{
		Entries:  []string{dir + "/src/a.ts"},
		Aliases:  map[string]string{"@lib": dir + "/lib"},
		Compiler: toolchain.CompilerOptions{OutDir: dir + "/out"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if ds := res.Diagnostics(); len(ds) != 0 {
		t.Fatalf("diagnostics = %v", ds)
	}
	if want := []string{dir + "/out/lib/util.js", dir + "/out/src/a.js"}; !slices.Equal(res.Outputs(), want) {
		t.Fatalf("Outputs = %v", res.Outputs())
	}
	if out := readFile(t, dir+"/out/src/a.js"); !strings.Contains(out, `"../lib/util"`) {
		t.Errorf("a.js =\n%s", out)
	}
}

func TestCompileAwaitsAsyncTransform(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.ts": "export const greeting = 'hello';\n"})
	transform := func(_ context.Context, _, text string) *preprocess.Pending {
		return preprocess.Async(func() (string, error) {
			return strings.ReplaceAll(text, "hello", "hi"), nil
		})
	}
	res, err := Compile(context.Background(), Options{
		Entries:   []string{dir + "/a.ts"},
		Transform: transform,
		Compiler:  toolchain.CompilerOptions{OutDir: dir + "/out"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if ds := res.Diagnostics(); len(ds) != 0 {
		t.Fatalf("diagnostics = %v", ds)
	}
	if out := readFile(t, dir+"/out/a.js"); !strings.Contains(out, "hi") {
		t.Errorf("a.js =\n%s", out)
	}
}

func TestCompileTransformFailureIsDiagnostic(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.ts": "export const a = 1;\n"})
	transform := func(context.Context, string, string) *preprocess.Pending {
		return preprocess.Failed(errors.New("plugin exploded"))
	}
	res, err := Compile(context.Background(), Options{
		Entries:   []string{dir + "/a.ts"},
		Transform: transform,
		Compiler:  toolchain.CompilerOptions{NoEmit: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	ds := res.Diagnostics()
	if len(ds) != 1 || ds[0].Code != diag.PreTransformFailed || ds[0].File != dir+"/a.ts" {
		t.Errorf("diagnostics = %v", ds)
	}
}

func TestCompileWatch(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.ts": "import { b } from './b';\nexport const a = b;\n",
	})
	var changed []string
	res, err := Compile(context.Background(), Options{
		Entries:   []string{dir + "/a.ts"},
		Compiler:  toolchain.CompilerOptions{OutDir: dir + "/out"},
		Watch:     true,
		NoWatcher: true,
		OnChange:  func(p string) { changed = append(changed, p) },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer res.Stop()
	if !res.Watching() {
		t.Fatal("not watching")
	}
	ds := res.Diagnostics()
	if len(ds) != 1 || ds[0].Code != diag.ImpModuleNotFound {
		t.Errorf("diagnostics = %v", ds)
	}
	if !slices.Equal(changed, []string{dir + "/out/a.js"}) {
		t.Errorf("changed = %v", changed)
	}
	if got := res.Exports()[dir+"/a.ts"]; !slices.Equal(got, []string{"a"}) {
		t.Errorf("exports = %v", got)
	}
	if res.Err() != nil {
		t.Errorf("Err = %v", res.Err())
	}
	if res.Builds() != 1 {
		t.Errorf("Builds = %d, want 1", res.Builds())
	}
}

func TestCompileWatchRejectsAsyncTransform(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.ts": "export const a = 1;\n"})
	transform := func(_ context.Context, _, text string) *preprocess.Pending {
		return preprocess.Async(func() (string, error) { return text, nil })
	}
	_, err := Compile(context.Background(), Options{
		Entries:   []string{dir + "/a.ts"},
		Transform: transform,
		Watch:     true,
		NoWatcher: true,
	})
	if !errors.Is(err, preprocess.ErrAsyncTransform) {
		t.Fatalf("err = %v, want ErrAsyncTransform", err)
	}
}

func TestTokenizeSegments(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.ts": "#define A 1\nlet s = 'x'; // c\n"})
	res, err := Tokenize(dir + "/a.ts")
	if err != nil {
		t.Fatal(err)
	}
	var kinds []string
	for _, seg := range res.Segments {
		k := seg.State.String()
		if seg.Directive {
			k = "directive:" + k
		}
		kinds = append(kinds, k)
	}
	if len(kinds) == 0 || kinds[0] != "directive:code" {
		t.Errorf("segments = %v", kinds)
	}
	if !slices.Contains(kinds, "string") || !slices.Contains(kinds, "comment") {
		t.Errorf("segments = %v", kinds)
	}
}

func TestPreprocessFile(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.ts": "#define N 3\n#define N 4\nconst n = N;\n"})
	res, err := PreprocessFile(context.Background(), dir+"/a.ts", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Text, "const n = 4;") {
		t.Errorf("text = %q", res.Text)
	}
	if !slices.Equal(res.Macros, []string{"N"}) || !slices.Equal(res.Redefined, []string{"N"}) {
		t.Errorf("macros = %v, redefined = %v", res.Macros, res.Redefined)
	}
}

func TestCompileSampleGolden(t *testing.T) {
	base, err := filepath.Abs(filepath.Join("..", "..", "testdata", "sample"))
	if err != nil {
		t.Fatal(err)
	}
	want, err := os.ReadFile(filepath.Join(base, "expected.diag"))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Compile(context.Background(), Options{
		Entries:  []string{filepath.Join(base, "src", "app.ts")},
		Compiler: toolchain.CompilerOptions{NoEmit: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := diag.FormatGoldenDiagnostics(res.Diagnostics(), base)
	if got != strings.TrimRight(string(want), "\n") {
		t.Errorf("diagnostics:\n%s\nwant:\n%s", got, want)
	}
}
