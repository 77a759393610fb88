package toolchain

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuildInfoRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state", ".glazebuildinfo")
	out := filepath.Join(dir, "a.js")
	if err := os.WriteFile(out, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts := CompilerOptions{OutDir: dir}
	hash := [32]byte{1, 2, 3}

	info, err := LoadBuildInfo(path, opts)
	if err != nil {
		t.Fatal(err)
	}
	info.Record("/src/a.ts", hash, []string{out})
	if err := info.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadBuildInfo(path, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.Fresh("/src/a.ts", hash) {
		t.Error("recorded entry not fresh")
	}
	if loaded.Fresh("/src/a.ts", [32]byte{9}) {
		t.Error("entry fresh with another hash")
	}

	if err := os.Remove(out); err != nil {
		t.Fatal(err)
	}
	if loaded.Fresh("/src/a.ts", hash) {
		t.Error("entry fresh although its output is gone")
	}

	// другие опции сбрасывают состояние
	other, err := LoadBuildInfo(path, CompilerOptions{OutDir: dir, Declaration: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(other.Files) != 0 {
		t.Errorf("state kept across option change: %v", other.Files)
	}
}

func TestBuildInfoCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".glazebuildinfo")
	if err := os.WriteFile(path, []byte{0xc1, 0xff, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := LoadBuildInfo(path, CompilerOptions{})
	if err == nil {
		t.Error("corrupt build info accepted")
	}
	if info == nil || len(info.Files) != 0 {
		t.Errorf("corrupt build info did not yield empty state: %+v", info)
	}
}
