package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"glaze/internal/diag"
	"glaze/internal/source"
)

// Summary describes what a Report printed.
type Summary struct {
	Displayed int
	Total     int
	Truncated bool
	// NoMatch is set in ModeFile when the requested file had no diagnostics.
	NoMatch bool
}

// Line returns the closing sentence of a report.
func (s Summary) Line() string {
	if s.Truncated {
		return fmt.Sprintf("Displayed the first %d %s out of %d.", s.Displayed, plural(s.Displayed), s.Total)
	}
	return fmt.Sprintf("Encountered %d %s.", s.Total, plural(s.Total))
}

func plural(n int) string {
	if n == 1 {
		return "error"
	}
	return "errors"
}

// Report prints diags according to opts.Mode, then the per-file count table,
// then the summary line. It never reorders diags.
func Report(w io.Writer, diags []diag.Diagnostic, opts ReportOpts) Summary {
	pal := newPalette(opts.Color)
	sum := Summary{Total: len(diags)}

	selected, noMatch := selectDiagnostics(diags, opts)
	if noMatch {
		sum.NoMatch = true
		files := distinctFiles(diags)
		shown := make([]string, len(files))
		for i, f := range files {
			shown[i] = displayPath(f, opts.PathMode, opts.BaseDir)
		}
		msg := fmt.Sprintf("warning: no diagnostics for %q", opts.File)
		if len(shown) > 0 {
			msg += "; files with diagnostics: " + strings.Join(shown, ", ")
		}
		fmt.Fprintln(w, pal.warn.Sprint(msg))
	}

	for _, d := range selected {
		if opts.Max > 0 && sum.Displayed >= opts.Max {
			sum.Truncated = true
			break
		}
		Pretty(w, d, opts.PrettyOpts)
		sum.Displayed++
	}

	writeCounts(w, diags, opts, pal)
	fmt.Fprintln(w, pal.bold.Sprint(sum.Line()))
	return sum
}

func selectDiagnostics(diags []diag.Diagnostic, opts ReportOpts) (selected []diag.Diagnostic, noMatch bool) {
	switch opts.Mode {
	case ModeFile:
		for _, d := range diags {
			if d.File != "" && sameFile(d.File, opts.File, opts.BaseDir) {
				selected = append(selected, d)
			}
		}
		return selected, len(selected) == 0
	case ModeFirstFile:
		first := ""
		for _, d := range diags {
			if d.File == "" {
				continue
			}
			if first == "" {
				first = d.File
			}
			// останавливаемся на первой диагностике другого файла
			if d.File != first {
				break
			}
			selected = append(selected, d)
		}
		return selected, false
	default:
		return diags, false
	}
}

// sameFile сравнивает пути без учёта регистра; относительный запрос берётся от baseDir.
func sameFile(have, want, baseDir string) bool {
	if strings.EqualFold(source.CleanPath(have), source.CleanPath(want)) {
		return true
	}
	if !filepath.IsAbs(want) && baseDir != "" {
		want = filepath.Join(baseDir, want)
	}
	absHave, err1 := source.AbsolutePath(have)
	absWant, err2 := source.AbsolutePath(want)
	return err1 == nil && err2 == nil && strings.EqualFold(absHave, absWant)
}

func distinctFiles(diags []diag.Diagnostic) []string {
	bag := diag.NewBag(0)
	for _, d := range diags {
		bag.Add(d)
	}
	return bag.Files()
}

type fileCount struct {
	file  string
	count int
	line  int
}

func writeCounts(w io.Writer, diags []diag.Diagnostic, opts ReportOpts, pal palette) {
	var rows []fileCount
	index := make(map[string]int)
	noFile := 0
	for _, d := range diags {
		if d.File == "" {
			noFile++
			continue
		}
		i, ok := index[d.File]
		if !ok {
			i = len(rows)
			index[d.File] = i
			rows = append(rows, fileCount{file: d.File, line: d.Line})
		}
		rows[i].count++
	}
	if len(rows) == 0 && noFile == 0 {
		return
	}

	const header = "Errors"
	colWidth := runewidth.StringWidth(header)
	fmt.Fprintf(w, "\n%s  %s\n", pal.bold.Sprint(header), pal.bold.Sprint("Files"))
	for _, r := range rows {
		name := displayPath(r.file, opts.PathMode, opts.BaseDir)
		if r.line > 0 {
			name += ":" + strconv.Itoa(r.line)
		}
		if opts.Width > 0 && runewidth.StringWidth(name) > opts.Width {
			name = runewidth.Truncate(name, opts.Width, "...")
		}
		fmt.Fprintf(w, "%s  %s\n", runewidth.FillLeft(strconv.Itoa(r.count), colWidth), pal.path.Sprint(name))
	}
	if noFile > 0 {
		fmt.Fprintf(w, "%s  %s\n", runewidth.FillLeft(strconv.Itoa(noFile), colWidth), pal.dim.Sprint("(no file)"))
	}
	fmt.Fprintln(w)
}
