package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	otherDir := filepath.Join(tmp, "other")

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("failed to create base dir: %v", err)
	}
	if err := os.MkdirAll(otherDir, 0o755); err != nil {
		t.Fatalf("failed to create other dir: %v", err)
	}

	target := filepath.Join(otherDir, "file.ts")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}

	want := normalizePath(target)
	if got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}

func TestRelativePathInsideBaseStaysRelative(t *testing.T) {
	tmp := t.TempDir()
	baseDir := filepath.Join(tmp, "base")
	target := filepath.Join(baseDir, "nested", "file.ts")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}

	if want := "nested/file.ts"; got != want {
		t.Fatalf("expected relative path %q, got %q", want, got)
	}
}

func TestToLineCol(t *testing.T) {
	content := []byte("ab\ncd\n\nef")
	idx := buildLineIndex(content)
	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{1, LineCol{1, 2}},
		{2, LineCol{1, 3}}, // сам '\n'
		{3, LineCol{2, 1}},
		{6, LineCol{3, 1}},
		{8, LineCol{4, 2}},
	}
	for _, tt := range tests {
		if got := toLineCol(idx, tt.off); got != tt.want {
			t.Errorf("toLineCol(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}

	if got := toLineCol(nil, 4); got != (LineCol{1, 5}) {
		t.Errorf("single line: got %+v", got)
	}
}

func TestNormalize(t *testing.T) {
	in := []byte("\xEF\xBB\xBFa\r\nb\rc")
	out, flags := Normalize(in)
	if string(out) != "a\nb\rc" {
		t.Errorf("Normalize = %q", out)
	}
	if flags&FileHadBOM == 0 || flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b, want BOM and CRLF", flags)
	}

	plain := []byte("x\n")
	if out, flags := Normalize(plain); string(out) != "x\n" || flags != 0 {
		t.Errorf("plain input changed: %q %b", out, flags)
	}
}

func TestFormatPath(t *testing.T) {
	long := "/" + strings.Repeat("d", 40) + "/main.ts"
	tests := []struct {
		p, mode, base string
		want          string
	}{
		{"/w/src/a.ts", "relative", "/w", "src/a.ts"},
		{"/w/src/a.ts", "basename", "", "a.ts"},
		{"src/a.ts", "auto", "", "src/a.ts"},
		{long, "auto", "", "main.ts"},
		{"src/a.ts", "raw", "", "src/a.ts"},
	}
	for _, tt := range tests {
		if got := FormatPath(tt.p, tt.mode, tt.base); got != tt.want {
			t.Errorf("FormatPath(%q, %q) = %q, want %q", tt.p, tt.mode, got, tt.want)
		}
	}
}
