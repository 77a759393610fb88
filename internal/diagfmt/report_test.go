package diagfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"glaze/internal/diag"
)

func diagsFor(files ...string) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(files))
	for i, f := range files {
		out = append(out, diag.Errorf(diag.ImpModuleNotFound, "Cannot find module './m%d'", i).At(f, i+1, 1))
	}
	return out
}

func TestSummaryLine(t *testing.T) {
	tests := []struct {
		sum  Summary
		want string
	}{
		{Summary{Displayed: 5, Total: 8, Truncated: true}, "Displayed the first 5 errors out of 8."},
		{Summary{Displayed: 3, Total: 3}, "Encountered 3 errors."},
		{Summary{Displayed: 1, Total: 1}, "Encountered 1 error."},
		{Summary{}, "Encountered 0 errors."},
		{Summary{Displayed: 1, Total: 4, Truncated: true}, "Displayed the first 1 error out of 4."},
	}
	for _, tt := range tests {
		if got := tt.sum.Line(); got != tt.want {
			t.Errorf("%+v.Line() = %q, want %q", tt.sum, got, tt.want)
		}
	}
}

func TestReportCap(t *testing.T) {
	diags := diagsFor("a.ts", "a.ts", "b.ts", "b.ts", "c.ts", "c.ts", "d.ts", "d.ts")
	var buf bytes.Buffer
	sum := Report(&buf, diags, ReportOpts{Max: 5})
	if sum.Displayed != 5 || sum.Total != 8 || !sum.Truncated {
		t.Fatalf("summary = %+v", sum)
	}
	out := buf.String()
	if !strings.Contains(out, "Displayed the first 5 errors out of 8.") {
		t.Errorf("missing cap summary:\n%s", out)
	}
	if strings.Contains(out, "m5'") {
		t.Errorf("sixth diagnostic printed past the cap:\n%s", out)
	}
	// таблица считает все диагностики, а не только показанные
	if !strings.Contains(out, "     2  d.ts:7") {
		t.Errorf("count table misses d.ts:\n%s", out)
	}
}

func TestReportAll(t *testing.T) {
	var buf bytes.Buffer
	sum := Report(&buf, diagsFor("a.ts", "b.ts", "c.ts"), ReportOpts{Max: 5})
	if sum.Truncated || sum.Displayed != 3 {
		t.Fatalf("summary = %+v", sum)
	}
	out := buf.String()
	if !strings.HasSuffix(out, "Encountered 3 errors.\n") {
		t.Errorf("output does not end with summary:\n%s", out)
	}
	first := strings.Index(out, "a.ts:1:1 - error IMP2101: Cannot find module './m0'")
	second := strings.Index(out, "b.ts:2:1 - error IMP2101")
	if first < 0 || second < first {
		t.Errorf("diagnostics missing or out of order:\n%s", out)
	}
}

func TestReportUnlimited(t *testing.T) {
	files := make([]string, 150)
	for i := range files {
		files[i] = fmt.Sprintf("f%d.ts", i)
	}
	var buf bytes.Buffer
	sum := Report(&buf, diagsFor(files...), ReportOpts{})
	if sum.Truncated || sum.Displayed != 150 {
		t.Errorf("summary = %+v, want all 150 displayed", sum)
	}
}

func TestReportFileMode(t *testing.T) {
	diags := diagsFor("src/a.ts", "src/b.ts", "src/a.ts")

	var buf bytes.Buffer
	sum := Report(&buf, diags, ReportOpts{Mode: ModeFile, File: "SRC/A.ts"})
	if sum.NoMatch || sum.Displayed != 2 {
		t.Fatalf("summary = %+v", sum)
	}
	if strings.Contains(buf.String(), " - error IMP2101: Cannot find module './m1'") {
		t.Errorf("diagnostic of another file printed:\n%s", buf.String())
	}

	buf.Reset()
	sum = Report(&buf, diags, ReportOpts{Mode: ModeFile, File: "src/zzz.ts"})
	if !sum.NoMatch || sum.Displayed != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	out := buf.String()
	if !strings.Contains(out, `warning: no diagnostics for "src/zzz.ts"; files with diagnostics: src/a.ts, src/b.ts`) {
		t.Errorf("missing candidate list:\n%s", out)
	}
	if !strings.Contains(out, "Encountered 3 errors.") {
		t.Errorf("summary missing:\n%s", out)
	}
}

func TestReportFirstFileMode(t *testing.T) {
	diags := diagsFor("a.ts", "a.ts", "b.ts", "a.ts")
	var buf bytes.Buffer
	sum := Report(&buf, diags, ReportOpts{Mode: ModeFirstFile})
	if sum.Displayed != 2 {
		t.Errorf("displayed %d, want 2 (stop at the first other file)", sum.Displayed)
	}
	if strings.Contains(buf.String(), "m3'") {
		t.Errorf("printed past the first file:\n%s", buf.String())
	}
}

func TestPrettySourceContext(t *testing.T) {
	d := diag.NewError(diag.SynError, "Expected \";\"").At("x.ts", 2, 5)
	var buf bytes.Buffer
	Pretty(&buf, d, PrettyOpts{Source: func(file string, line int) (string, bool) {
		if file == "x.ts" && line == 2 {
			return "let a b", true
		}
		return "", false
	}})
	want := "x.ts:2:5 - error SYN2001: Expected \";\"\n\n2 let a b\n      ^\n"
	if got := buf.String(); got != want {
		t.Errorf("Pretty =\n%q\nwant\n%q", got, want)
	}
}

func TestPrettyWithoutFile(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, diag.NewError(diag.CfgInvalidOption, "bad option"), PrettyOpts{})
	if got, want := buf.String(), "error CFG1001: bad option\n"; got != want {
		t.Errorf("Pretty = %q, want %q", got, want)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, diagsFor("a.ts", "b.ts", "c.ts"), JSONOpts{Max: 2}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || out.Total != 3 || len(out.Diagnostics) != 2 {
		t.Fatalf("output = %+v", out)
	}
	got := out.Diagnostics[1]
	if got.File != "b.ts" || got.Line != 2 || got.Code != "IMP2101" || got.Severity != "error" {
		t.Errorf("second diagnostic = %+v", got)
	}
}

func TestParseModes(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeAll, "file": ModeFile, "First-File": ModeFirstFile} {
		if got, err := ParseMode(in); err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("some"); err == nil {
		t.Error("ParseMode accepted an unknown mode")
	}
	if got, err := ParsePathMode("rel"); err != nil || got != PathModeRelative {
		t.Errorf("ParsePathMode = %v, %v", got, err)
	}
}
