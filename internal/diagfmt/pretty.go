package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"glaze/internal/diag"
	"glaze/internal/source"
)

type palette struct {
	err, warn, info, path, dim, bold *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan),
		path: color.New(color.FgCyan),
		dim:  color.New(color.Faint),
		bold: color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.path, p.dim, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует одну диагностику:
// <path>:<line>:<col> - <sev> <CODE>: <Message>
// затем строку исходника с подчёркиванием ^ по колонке, если доступен Source.
func Pretty(w io.Writer, d diag.Diagnostic, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	var b strings.Builder
	if d.File != "" {
		loc := displayPath(d.File, opts.PathMode, opts.BaseDir)
		if d.Line > 0 {
			loc = fmt.Sprintf("%s:%d:%d", loc, d.Line, d.Column)
		}
		b.WriteString(pal.path.Sprint(loc))
		b.WriteString(" - ")
	}
	b.WriteString(pal.severity(d.Severity).Sprint(d.Severity.Label()))
	b.WriteByte(' ')
	b.WriteString(pal.dim.Sprint(d.Code.ID()))
	b.WriteString(": ")
	b.WriteString(d.Message)
	b.WriteByte('\n')

	if opts.Source != nil && d.File != "" && d.Line > 0 {
		if line, ok := opts.Source(d.File, d.Line); ok {
			gutter := fmt.Sprintf("%d", d.Line)
			fmt.Fprintf(&b, "\n%s %s\n", pal.dim.Sprint(gutter), line)
			if d.Column > 0 {
				pad := strings.Repeat(" ", len(gutter)+d.Column)
				fmt.Fprintf(&b, "%s%s\n", pad, pal.severity(d.Severity).Sprint("^"))
			}
		}
	}
	// Best-effort write, как и трейсер
	_, _ = io.WriteString(w, b.String()) //nolint:errcheck
}

func displayPath(p string, mode PathMode, baseDir string) string {
	return source.FormatPath(p, mode.String(), baseDir)
}
