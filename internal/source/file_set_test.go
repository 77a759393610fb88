package source

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	// Добавляем файл первый раз
	id1 := fs.Add("src/a.ts", []byte("let a = 1"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}

	// Тот же путь с новым содержимым получает новый ID
	id2 := fs.Add("src/./a.ts", []byte("let a = 2"), FileHadBOM)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}

	latest, ok := fs.Lookup("src/a.ts")
	if !ok || latest.ID != id2 {
		t.Errorf("Expected latest ID %d, got %+v (ok=%v)", id2, latest, ok)
	}

	// Старая версия остаётся доступной
	if got := fs.Get(id1).Text(); got != "let a = 1" {
		t.Errorf("Expected first content 'let a = 1', got %q", got)
	}
	if f, ok := fs.Lookup("src/a.ts"); !ok || f.Flags&FileHadBOM == 0 {
		t.Errorf("Expected BOM flag on latest version")
	}
	if fs.Len() != 2 {
		t.Errorf("Expected 2 versions, got %d", fs.Len())
	}
}

func TestFileHash(t *testing.T) {
	fs := NewFileSet()
	a := fs.Get(fs.Add("a.ts", []byte("let a = 1"), 0))
	b := fs.Get(fs.Add("a.ts", []byte("let a = 2"), 0))
	if a.Hash != sha256.Sum256([]byte("let a = 1")) {
		t.Errorf("hash does not match content")
	}
	if a.Hash == b.Hash {
		t.Errorf("new content must change the hash")
	}
}

func TestFileLines(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.Add("x.ts", []byte("const α = 1;\nfoo(α)\n"), 0))

	// 'f' на второй строке; α занимает два байта
	if got := f.LineCol(14); got != (LineCol{Line: 2, Col: 1}) {
		t.Errorf("LineCol(14) = %+v, want 2:1", got)
	}
	tests := []struct {
		n    int
		want string
		ok   bool
	}{
		{1, "const α = 1;", true},
		{2, "foo(α)", true},
		{3, "", true},
		{0, "", false},
		{9, "", false},
	}
	for _, tt := range tests {
		got, ok := f.Line(tt.n)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Line(%d) = %q, %v; want %q, %v", tt.n, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.ts")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb"), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if f.Text() != "a\nb" {
		t.Errorf("content = %q, want %q", f.Text(), "a\nb")
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b", f.Flags)
	}
	if got := f.LineCol(2); got != (LineCol{Line: 2, Col: 1}) {
		t.Errorf("LineCol(2) = %+v", got)
	}

	if _, err := fs.Load(filepath.Join(dir, "missing.ts")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestSpanLen(t *testing.T) {
	if s := (Span{File: 1, Start: 4, End: 8}); s.Len() != 4 || s.Empty() || s.String() != "1:4-8" {
		t.Errorf("unexpected span %v", s)
	}
	if s := (Span{Start: 8, End: 4}); s.Len() != 0 || !s.Empty() {
		t.Errorf("inverted span %v must be empty", s)
	}
}
