package diag

import (
	"fmt"
	"strings"

	"glaze/internal/source"
)

// Raw is a diagnostic as produced by the checker, the watch session or the
// bundler, before its position is resolved to a line and column.
type Raw struct {
	Severity Severity
	Code     Code
	Message  string
	// File is the source unit the offset refers to; nil when unknown.
	File *source.File
	Span source.Span
	// Path, Line and Column are used as is when File is nil
	// (the bundler reports already resolved positions).
	Path         string
	Line, Column int
}

// Diagnostic is the flat, normalized record handed to reporters and callers.
// Line and Column are 1-based; zero means absent, as does an empty File.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	File     string
	Line     int
	Column   int
}

// Normalize resolves r's offset through its source unit.
func Normalize(r Raw) Diagnostic {
	d := Diagnostic{
		Severity: r.Severity,
		Code:     r.Code,
		Message:  r.Message,
		File:     r.Path,
		Line:     r.Line,
		Column:   r.Column,
	}
	if r.File != nil {
		lc := r.File.LineCol(r.Span.Start)
		d.File = r.File.Path
		d.Line = int(lc.Line)
		d.Column = int(lc.Col)
	}
	if d.File != "" {
		d.File = source.CleanPath(d.File)
	}
	return d
}

// New builds a file-less diagnostic.
func New(sev Severity, code Code, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Message: msg}
}

// NewError builds a file-less error.
func NewError(code Code, msg string) Diagnostic {
	return New(SevError, code, msg)
}

// Errorf builds a file-less error with a formatted message.
func Errorf(code Code, format string, args ...any) Diagnostic {
	return New(SevError, code, fmt.Sprintf(format, args...))
}

// At returns a copy of d attached to a file position.
func (d Diagnostic) At(file string, line, col int) Diagnostic {
	d.File = source.CleanPath(file)
	d.Line = line
	d.Column = col
	return d
}

// Location renders "file:line:col", dropping absent parts.
func (d Diagnostic) Location() string {
	if d.File == "" {
		return ""
	}
	switch {
	case d.Line > 0 && d.Column > 0:
		return fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Column)
	case d.Line > 0:
		return fmt.Sprintf("%s:%d", d.File, d.Line)
	default:
		return d.File
	}
}

// String renders the one-line form: "a.ts:3:7: error IMP2101: Cannot find module './b'".
func (d Diagnostic) String() string {
	var b strings.Builder
	if loc := d.Location(); loc != "" {
		b.WriteString(loc)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s %s: %s", d.Severity.Label(), d.Code.ID(), sanitizeMessage(d.Message))
	return b.String()
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
