package toolchain

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"glaze/internal/diag"
)

func TestEmit(t *testing.T) {
	host := newMemHost(map[string]string{
		"/p/src/main.ts":    "import { helper } from './util';\nexport const main = (n: number) => helper(n);\n",
		"/p/src/util.ts":    "export function helper(n: number): number { return n * 2; }\nexport default helper;\n",
		"/p/src/types.d.ts": "export declare const v: number;\n",
	})
	opts := CompilerOptions{OutDir: "/p/dist", Declaration: true, Module: ModuleESNext}
	prog, err := NewProgram(context.Background(), host, []string{"/p/src/main.ts", "/p/src/types.d.ts"}, opts)
	if err != nil {
		t.Fatal(err)
	}
	res := Emit(context.Background(), prog)
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics: %v", res.Diagnostics)
	}
	want := []string{"/p/dist/main.d.ts", "/p/dist/main.js", "/p/dist/util.d.ts", "/p/dist/util.js"}
	if got := host.writtenPaths(); !slices.Equal(got, want) {
		t.Fatalf("written = %v, want %v", got, want)
	}
	js := host.written["/p/dist/main.js"]
	if strings.Contains(js, ": number") {
		t.Errorf("types not stripped:\n%s", js)
	}
	if !strings.Contains(js, "./util") {
		t.Errorf("import lost:\n%s", js)
	}
	dts := host.written["/p/dist/util.d.ts"]
	if !strings.Contains(dts, "export declare const helper: any;") || !strings.Contains(dts, "export default _default;") {
		t.Errorf("declaration stub:\n%s", dts)
	}
}

func TestEmitRefusesToOverwriteInput(t *testing.T) {
	host := newMemHost(map[string]string{"/p/a.js": "export const a = 1;\n"})
	prog, err := NewProgram(context.Background(), host, []string{"/p/a.js"}, CompilerOptions{})
	if err != nil {
		t.Fatal(err)
	}
	res := Emit(context.Background(), prog)
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != diag.EmitFailed {
		t.Fatalf("diagnostics = %v", res.Diagnostics)
	}
	if len(host.writtenPaths()) != 0 {
		t.Errorf("input overwritten")
	}
}

func TestEmitNoEmit(t *testing.T) {
	host := newMemHost(map[string]string{"/p/a.ts": "export const a = 1;\n"})
	prog, err := NewProgram(context.Background(), host, []string{"/p/a.ts"}, CompilerOptions{NoEmit: true, OutDir: "/out"})
	if err != nil {
		t.Fatal(err)
	}
	if res := Emit(context.Background(), prog); len(res.Outputs) != 0 || len(host.writtenPaths()) != 0 {
		t.Errorf("no_emit wrote files: %+v", res)
	}
}

func TestEmitIncremental(t *testing.T) {
	dir := t.TempDir()
	src := filepath.ToSlash(filepath.Join(dir, "src", "a.ts"))
	out := filepath.ToSlash(filepath.Join(dir, "dist"))
	opts := CompilerOptions{OutDir: out, Incremental: true}

	// первая сборка пишет на диск, чтобы BuildInfo.Fresh увидел выходы
	host := &diskBackedHost{memHost: newMemHost(map[string]string{src: "export const a = 1;\n"})}
	prog, err := NewProgram(context.Background(), host, []string{src}, opts)
	if err != nil {
		t.Fatal(err)
	}
	first := Emit(context.Background(), prog)
	if len(first.Outputs) != 1 || len(first.Skipped) != 0 {
		t.Fatalf("first emit = %+v", first)
	}

	prog, err = NewProgram(context.Background(), host, []string{src}, opts)
	if err != nil {
		t.Fatal(err)
	}
	second := Emit(context.Background(), prog)
	if len(second.Outputs) != 0 || !slices.Equal(second.Skipped, []string{src}) {
		t.Fatalf("second emit = %+v", second)
	}

	host.set(src, "export const a = 2;\n")
	prog, err = NewProgram(context.Background(), host, []string{src}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third := Emit(context.Background(), prog); len(third.Outputs) != 1 {
		t.Fatalf("changed source not re-emitted: %+v", third)
	}
}
