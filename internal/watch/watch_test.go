package watch

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"glaze/internal/diag"
	"glaze/internal/preprocess"
	"glaze/internal/toolchain"
	"glaze/internal/vhost"
)

func start(t *testing.T, disk *vhost.MemDisk, opts Options) *Session {
	t.Helper()
	opts.Disk = disk
	opts.NoWatcher = true
	if opts.Roots == nil {
		opts.Roots = []string{"/p/a.ts"}
	}
	if opts.Compiler.OutDir == "" {
		opts.Compiler.OutDir = "/out"
	}
	s, err := Start(context.Background(), opts)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func TestBuildIndex(t *testing.T) {
	ix := BuildIndex([]string{"/p/B.ts", "/p/a.ts", "/p/b.ts"})
	if r, ok := ix.Rank("/p/b.ts"); !ok || r != 0 {
		t.Errorf("rank(b) = %d, %v", r, ok)
	}
	if r, ok := ix.Rank("/P/A.TS"); !ok || r != 1 {
		t.Errorf("rank(A) = %d, %v", r, ok)
	}
	if _, ok := ix.Rank("/p/c.ts"); ok {
		t.Error("unknown file ranked")
	}
}

func TestFlushOrdersByDiscovery(t *testing.T) {
	x := diag.NewError(diag.SynError, "x broken").At("/p/x.ts", 1, 1)
	y := diag.NewError(diag.SynError, "y broken").At("/p/y.ts", 1, 1)
	global := diag.NewError(diag.EmitFailed, "no file")

	var reported []diag.Diagnostic
	s := newSession(context.Background(), Options{
		Reporter: diag.FuncReporter(func(d diag.Diagnostic) { reported = append(reported, d) }),
	})
	s.index = BuildIndex([]string{"/p/x.ts", "/p/y.ts"})
	s.collect(global)
	s.collect(y)
	s.collect(x)
	s.collect(y)
	s.flush()

	want := []diag.Diagnostic{x, y, global}
	if !slices.Equal(reported, want) {
		t.Errorf("reported = %v, want %v", reported, want)
	}
	if !slices.Equal(s.Diagnostics(), want) {
		t.Errorf("Diagnostics = %v", s.Diagnostics())
	}
	if s.pending.Len() != 0 {
		t.Error("pending not reset after flush")
	}

	// повтор после flush снова попадает в следующую сборку
	s.collect(y)
	s.flush()
	if !slices.Equal(s.Diagnostics(), []diag.Diagnostic{y}) {
		t.Errorf("second flush = %v", s.Diagnostics())
	}
}

func TestStartFlushesFirstBuild(t *testing.T) {
	disk := vhost.NewMemDisk(map[string]string{
		"/p/a.ts": "import { b } from './b';\nexport const a = b;\n",
	})
	var flushes [][]diag.Diagnostic
	s := start(t, disk, Options{
		OnFlush: func(ds []diag.Diagnostic) { flushes = append(flushes, ds) },
	})
	if len(flushes) != 1 {
		t.Fatalf("flushes = %d, want 1", len(flushes))
	}
	got := s.Diagnostics()
	if len(got) != 1 || got[0].Code != diag.ImpModuleNotFound || got[0].File != "/p/a.ts" {
		t.Errorf("diagnostics = %v", got)
	}
	if s.Index() == nil {
		t.Error("index not built")
	}
	if s.Builds() != 1 {
		t.Errorf("Builds = %d, want 1", s.Builds())
	}
	if st := s.Status(); st != "1 builds, 1 errors" {
		t.Errorf("Status = %q", st)
	}
	if disk.Exists(s.ConfigPath()) {
		t.Errorf("config path %s exists on disk", s.ConfigPath())
	}
}

func TestWriteDedup(t *testing.T) {
	disk := vhost.NewMemDisk(map[string]string{
		"/p/a.ts": "export const a = 1;\n",
	})
	var changed []string
	s := start(t, disk, Options{
		OnChange: func(p string) { changed = append(changed, p) },
	})
	if !slices.Equal(changed, []string{"/out/a.js"}) {
		t.Fatalf("changed = %v", changed)
	}
	writes := disk.Writes

	if err := s.Rebuild(context.Background(), "/p/a.ts"); err != nil {
		t.Fatal(err)
	}
	if disk.Writes != writes {
		t.Errorf("identical output rewritten: %d writes, want %d", disk.Writes, writes)
	}
	if len(changed) != 1 {
		t.Errorf("OnChange fired for identical output: %v", changed)
	}

	if err := disk.WriteFile("/p/a.ts", []byte("export const a = 2;\n")); err != nil {
		t.Fatal(err)
	}
	writes = disk.Writes
	if err := s.Rebuild(context.Background(), "/p/a.ts"); err != nil {
		t.Fatal(err)
	}
	if disk.Writes != writes+1 {
		t.Errorf("changed output not written")
	}
	if len(changed) != 2 {
		t.Errorf("changed = %v", changed)
	}
	out, _ := disk.File("/out/a.js")
	if !strings.Contains(out, "2") {
		t.Errorf("output = %q", out)
	}
}

func TestSourcesArePreprocessed(t *testing.T) {
	disk := vhost.NewMemDisk(map[string]string{
		"/p/a.ts": "#define LIMIT 10\nexport const limit = LIMIT;\n",
	})
	start(t, disk, Options{})
	out, ok := disk.File("/out/a.js")
	if !ok {
		t.Fatalf("no output: %v", disk.Paths())
	}
	if !strings.Contains(out, "10") || strings.Contains(out, "LIMIT") {
		t.Errorf("output = %q", out)
	}
}

func TestAsyncTransformIsFatal(t *testing.T) {
	disk := vhost.NewMemDisk(map[string]string{"/p/a.ts": "export const a = 1;\n"})
	pipeline := preprocess.New(func(_ context.Context, _, text string) *preprocess.Pending {
		return preprocess.Async(func() (string, error) { return text, nil })
	})
	_, err := Start(context.Background(), Options{
		Roots:     []string{"/p/a.ts"},
		Compiler:  toolchain.CompilerOptions{OutDir: "/out"},
		Disk:      disk,
		Pipeline:  pipeline,
		NoWatcher: true,
	})
	if !errors.Is(err, preprocess.ErrAsyncTransform) {
		t.Fatalf("err = %v, want ErrAsyncTransform", err)
	}
}

func TestVerbosityFiltersStatus(t *testing.T) {
	disk := vhost.NewMemDisk(map[string]string{"/p/a.ts": "export const a = 1;\n"})
	var quiet, normal strings.Builder
	start(t, disk, Options{Log: &quiet})
	start(t, disk, Options{Log: &normal, Verbosity: VerbosityNormal})

	if strings.Contains(quiet.String(), "Starting compilation") {
		t.Errorf("quiet log = %q", quiet.String())
	}
	if !strings.Contains(quiet.String(), "Found 0 errors. Watching for file changes.") {
		t.Errorf("idle line missing: %q", quiet.String())
	}
	if !strings.Contains(normal.String(), "Starting compilation in watch mode...") {
		t.Errorf("normal log = %q", normal.String())
	}
}
