// Package macro implements the #define preprocessor: extraction of macro
// definitions from directive lines and whole-word textual expansion.
//
// Expansion is a single non-recursive pass: a template that mentions another
// macro is not expanded again. A later #define of the same name replaces the
// earlier one; the replaced names are reported in Result.Redefined.
package macro

import (
	"regexp"
	"slices"
	"strings"
)

// DefineKeyword is the only directive type the preprocessor interprets.
const DefineKeyword = "define"

// Definition is one registered macro.
type Definition struct {
	Name string
	// Params is nil for object-like macros (#define A 1) and non-nil,
	// possibly empty, for function-like ones (#define F() 1).
	Params []string
	Value  string

	paramRe *regexp.Regexp
}

// FunctionLike reports whether the macro takes an argument list.
func (d *Definition) FunctionLike() bool { return d.Params != nil }

// Table maps macro names to definitions for one preprocessing pass.
type Table map[string]*Definition

// Names returns the registered names, sorted.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// pattern строит одну альтернативу по всем именам: (#?)\b(NAME|...)\b.
// Длинные имена идут первыми.
func (t Table) pattern() *regexp.Regexp {
	names := t.Names()
	slices.SortStableFunc(names, func(a, b string) int { return len(b) - len(a) })
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = regexp.QuoteMeta(name)
	}
	return regexp.MustCompile(`(#?)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// Result is the outcome of one preprocessing pass over a file.
type Result struct {
	Text      string
	Macros    Table
	Redefined []string
}

// Process extracts the definitions from text and expands them in the remainder.
func Process(text string) Result {
	res := Extract(text)
	res.Text = Expand(res.Text, res.Macros)
	return res
}
