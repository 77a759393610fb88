package diag

import (
	"testing"

	"glaze/internal/source"
)

func TestNormalizeResolvesOffset(t *testing.T) {
	f := source.NewFile("src/./a.ts", []byte("let a = 1;\nimport b from './b';\n"), 0)
	d := Normalize(Raw{
		Severity: SevError,
		Code:     ImpModuleNotFound,
		Message:  "Cannot find module './b'",
		File:     f,
		Span:     source.Span{Start: 25, End: 30},
	})
	if d.File != "src/a.ts" || d.Line != 2 || d.Column != 15 {
		t.Errorf("Normalize = %+v, want src/a.ts:2:15", d)
	}
	if got, want := d.String(), "src/a.ts:2:15: error IMP2101: Cannot find module './b'"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

func TestNormalizeWithoutFile(t *testing.T) {
	d := Normalize(Raw{Severity: SevWarning, Code: BndWarning, Message: "x", Path: "out/b.js", Line: 3, Column: 1})
	if d.Location() != "out/b.js:3:1" {
		t.Errorf("Location = %q", d.Location())
	}

	bare := NewError(CfgInvalidOption, "bad\ntarget")
	if bare.Location() != "" {
		t.Errorf("file-less diagnostic has location %q", bare.Location())
	}
	if got := bare.String(); got != "error CFG1001: bad target" {
		t.Errorf("String = %q", got)
	}
}

func TestBagLimitAndCounts(t *testing.T) {
	b := NewBag(2)
	b.Add(NewError(SynError, "a"))
	b.Add(New(SevWarning, SynWarning, "b"))
	if b.Add(NewError(SynError, "c")) {
		t.Error("Add beyond the limit must fail")
	}
	if b.Len() != 2 || b.ErrorCount() != 1 || CountErrors(b.Items()[1:]) != 0 {
		t.Errorf("unexpected counts: len=%d errors=%d", b.Len(), b.ErrorCount())
	}

	unlimited := NewBag(0)
	for range 100 {
		unlimited.Add(NewError(SynError, "x"))
	}
	if unlimited.Len() != 100 {
		t.Errorf("unlimited bag holds %d", unlimited.Len())
	}
	unlimited.Dedup()
	if unlimited.Len() != 1 {
		t.Errorf("Dedup left %d entries", unlimited.Len())
	}
}

func TestBagSortByRank(t *testing.T) {
	b := NewBag(0)
	b.Add(NewError(SynError, "y1").At("y.ts", 1, 1))
	b.Add(NewError(CfgInvalidOption, "no file"))
	b.Add(NewError(SynError, "x1").At("x.ts", 4, 1))
	b.Add(NewError(SynError, "z").At("z.ts", 1, 1))
	b.Add(NewError(SynError, "x2").At("x.ts", 2, 1))

	ranks := map[string]int{"x.ts": 0, "y.ts": 1}
	b.SortByRank(func(file string) (int, bool) {
		r, ok := ranks[file]
		return r, ok
	})

	var got []string
	for _, d := range b.Items() {
		got = append(got, d.Message)
	}
	want := []string{"x1", "x2", "y1", "z", "no file"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if files := b.Files(); len(files) != 3 || files[0] != "x.ts" {
		t.Errorf("Files = %v", files)
	}
}

func TestFormatGoldenDiagnostics(t *testing.T) {
	base := t.TempDir()
	diags := []Diagnostic{
		New(SevWarning, SynWarning, "second").At(base+"/src/a.ts", 2, 1),
		NewError(SynError, "first\nline").At(base+"/src/a.ts", 1, 5),
		NewError(SynError, "vendored").At(base+"/node_modules/x/i.js", 1, 1),
	}
	want := "error SYN2001 src/a.ts:1:5 first line\n" +
		"warning SYN2002 src/a.ts:2:1 second"
	if got := FormatGoldenDiagnostics(diags, base); got != want {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(FuncReporter(func(d Diagnostic) { bag.Add(d) }))
	d := NewError(SynError, "dup").At("a.ts", 1, 1)
	r.Report(d)
	r.Report(d)
	r.Forget()
	r.Report(d)
	if bag.Len() != 2 {
		t.Errorf("expected 2 forwarded diagnostics, got %d", bag.Len())
	}
}
