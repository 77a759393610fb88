package diag

import (
	"cmp"
	"fmt"
	"path"
	"slices"
	"strings"

	"glaze/internal/source"
)

// shortLine is one diagnostic of the short rendering.
type shortLine struct {
	sev, code, file string
	line, col       int
	msg             string
}

func (l shortLine) String() string {
	if l.file == "" {
		return fmt.Sprintf("%s %s %s", l.sev, l.code, l.msg)
	}
	return fmt.Sprintf("%s %s %s:%d:%d %s", l.sev, l.code, l.file, l.line, l.col, l.msg)
}

func compareShort(a, b shortLine) int {
	return cmp.Or(
		cmp.Compare(a.file, b.file),
		cmp.Compare(a.line, b.line),
		cmp.Compare(a.col, b.col),
		cmp.Compare(a.sev, b.sev),
		cmp.Compare(a.code, b.code),
		cmp.Compare(a.msg, b.msg),
	)
}

// FormatShortDiagnostics renders one line per diagnostic:
//
//	error IMP3001 src/a.ts:1:19 Cannot find module './b' ...
//
// Paths are relative to baseDir and lines are sorted by position, so the
// output does not depend on discovery order.
func FormatShortDiagnostics(diags []Diagnostic, baseDir string) string {
	return renderShort(diags, baseDir, false)
}

// FormatGoldenDiagnostics is FormatShortDiagnostics without anything under
// node_modules, for comparing against expected output in tests.
func FormatGoldenDiagnostics(diags []Diagnostic, baseDir string) string {
	return renderShort(diags, baseDir, true)
}

func renderShort(diags []Diagnostic, baseDir string, skipVendored bool) string {
	lines := make([]shortLine, 0, len(diags))
	for _, d := range diags {
		file := ""
		if d.File != "" {
			file = strings.TrimPrefix(path.Clean(source.FormatPath(d.File, "relative", baseDir)), "./")
		}
		if skipVendored && vendored(file) {
			continue
		}
		lines = append(lines, shortLine{
			sev:  d.Severity.Label(),
			code: d.Code.ID(),
			file: file,
			line: d.Line,
			col:  d.Column,
			msg:  sanitizeMessage(d.Message),
		})
	}
	slices.SortStableFunc(lines, compareShort)

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return strings.Join(out, "\n")
}

func vendored(file string) bool {
	return slices.Contains(strings.Split(file, "/"), "node_modules")
}
