package toolchain

import (
	"regexp"
	"slices"
	"strings"

	"fortio.org/safecast"

	"glaze/internal/lexer"
	"glaze/internal/source"
	"glaze/internal/token"
)

// ImportKind tells how a module is referenced.
type ImportKind uint8

const (
	ImportStatic     ImportKind = iota // import x from "m"
	ImportSideEffect                   // import "m"
	ImportReExport                     // export { x } from "m", export * from "m"
	ImportDynamic                      // import("m")
	ImportRequire                      // require("m")
)

// Import is one module reference of a source unit.
type Import struct {
	Kind      ImportKind
	Specifier string
	// Names are the imported binding names; "default" stands for a default import.
	Names []string
	// Star is set for `export * from`; such a unit re-exports the target's names.
	Star bool
	// Off is the byte offset of the specifier's opening quote.
	Off uint32
}

// SourceUnit is a parsed file: its text plus the module references and
// exported names found in plain code.
type SourceUnit struct {
	Path    string
	Text    string
	Target  Target
	File    *source.File
	Imports []Import
	// Exports are the names declared by the unit itself, sorted.
	Exports []string
	// ESM is set when the unit uses import/export syntax. Export checks are
	// skipped for units without it.
	ESM bool
	// CommonJS is set when the unit assigns module.exports or exports.*.
	CommonJS bool
}

// Position returns the 1-based line and column of off.
func (u *SourceUnit) Position(off uint32) (line, col int) {
	lc := u.File.LineCol(off)
	return int(lc.Line), int(lc.Col)
}

// Declaration reports whether the unit is a .d.ts file.
func (u *SourceUnit) Declaration() bool {
	return strings.HasSuffix(u.Path, ".d.ts")
}

var (
	reImportFrom = regexp.MustCompile(`\bimport\s+(type\s+)?([^;'"]*?)\s*\bfrom\s*(["'])([^"'\n]*)["']`)
	reImportBare = regexp.MustCompile(`\bimport\s*(["'])([^"'\n]*)["']`)
	reExportFrom = regexp.MustCompile(`\bexport\s+(type\s+)?(\*(?:\s*as\s+[\w$]+)?|\{[^}]*\})\s*from\s*(["'])([^"'\n]*)["']`)
	reCall       = regexp.MustCompile(`\b(require|import)\s*\(\s*(["'])([^"'\n]*)["']\s*\)`)
	reExportDecl = regexp.MustCompile(`\bexport\s+(?:declare\s+)?(?:async\s+)?(?:abstract\s+)?(?:const\s+enum|function\s*\*?|class|const|let|var|enum|interface|type|namespace)\s+([\w$]+)`)
	reExportList = regexp.MustCompile(`\bexport\s+(?:type\s+)?\{([^}]*)\}`)
	reExportDef  = regexp.MustCompile(`\bexport\s+default\b`)
	reExportEq   = regexp.MustCompile(`\bexport\s*=`)
	reCommonJS   = regexp.MustCompile(`\b(?:module\.exports|exports\.[\w$]+)\s*=`)
)

// ParseUnit scans text for imports and exports. Only plain code counts:
// keywords inside strings, comments, templates and regex literals are ignored.
func ParseUnit(path, text string, target Target) *SourceUnit {
	u := &SourceUnit{
		Path:   path,
		Text:   text,
		Target: target,
		File:   source.NewFile(path, []byte(text), 0),
	}
	toks := lexer.Scan(lexer.TypeScript, text)
	code := maskNonCode(text, toks)
	plain := func(off int) bool {
		i, ok := tokenIndex(toks, off)
		return ok && toks[i].IsPlain() && !precededByDot(text, off)
	}
	quoted := func(off int) bool {
		i, ok := tokenIndex(toks, off)
		return ok && toks[i].Flags.Has(token.String)
	}
	exports := map[string]struct{}{}

	for _, m := range reExportFrom.FindAllStringSubmatchIndex(code, -1) {
		if !plain(m[0]) || !quoted(m[6]) {
			continue
		}
		u.ESM = true
		clause := code[m[4]:m[5]]
		imp := Import{Kind: ImportReExport, Specifier: text[m[8]:m[9]], Off: offset(m[6])}
		switch {
		case strings.HasPrefix(clause, "{"):
			for _, spec := range splitList(clause[1 : len(clause)-1]) {
				local, exported := splitAs(spec)
				imp.Names = append(imp.Names, local)
				exports[exported] = struct{}{}
			}
		default:
			// * или * as ns
			rest := strings.TrimSpace(strings.TrimPrefix(clause, "*"))
			if ns, ok := strings.CutPrefix(rest, "as"); ok {
				exports[strings.TrimSpace(ns)] = struct{}{}
			} else {
				imp.Star = true
			}
		}
		u.Imports = append(u.Imports, imp)
	}

	for _, m := range reImportFrom.FindAllStringSubmatchIndex(code, -1) {
		if !plain(m[0]) || !quoted(m[6]) {
			continue
		}
		u.ESM = true
		u.Imports = append(u.Imports, Import{
			Kind:      ImportStatic,
			Specifier: text[m[8]:m[9]],
			Names:     importNames(code[m[4]:m[5]]),
			Off:       offset(m[6]),
		})
	}
	for _, m := range reImportBare.FindAllStringSubmatchIndex(code, -1) {
		if !plain(m[0]) || !quoted(m[2]) {
			continue
		}
		u.ESM = true
		u.Imports = append(u.Imports, Import{Kind: ImportSideEffect, Specifier: text[m[4]:m[5]], Off: offset(m[2])})
	}
	for _, m := range reCall.FindAllStringSubmatchIndex(code, -1) {
		if !plain(m[0]) || !quoted(m[4]) {
			continue
		}
		kind := ImportDynamic
		if code[m[2]:m[3]] == "require" {
			kind = ImportRequire
		}
		u.Imports = append(u.Imports, Import{Kind: kind, Specifier: text[m[6]:m[7]], Off: offset(m[4])})
	}

	for _, m := range reExportDecl.FindAllStringSubmatchIndex(code, -1) {
		if plain(m[0]) {
			u.ESM = true
			exports[code[m[2]:m[3]]] = struct{}{}
		}
	}
	for _, m := range reExportList.FindAllStringSubmatchIndex(code, -1) {
		if !plain(m[0]) {
			continue
		}
		if rest := strings.TrimLeft(code[m[1]:], " \t\r\n"); strings.HasPrefix(rest, "from") {
			// уже разобрано как re-export
			continue
		}
		u.ESM = true
		for _, spec := range splitList(code[m[2]:m[3]]) {
			_, exported := splitAs(spec)
			exports[exported] = struct{}{}
		}
	}
	for _, m := range reExportDef.FindAllStringIndex(code, -1) {
		if plain(m[0]) {
			u.ESM = true
			exports["default"] = struct{}{}
		}
	}
	for _, m := range reExportEq.FindAllStringIndex(code, -1) {
		if plain(m[0]) {
			u.CommonJS = true
		}
	}
	for _, m := range reCommonJS.FindAllStringIndex(code, -1) {
		if plain(m[0]) {
			u.CommonJS = true
		}
	}

	slices.SortStableFunc(u.Imports, func(a, b Import) int { return int(a.Off) - int(b.Off) })
	u.Exports = make([]string, 0, len(exports))
	for name := range exports {
		if name != "" {
			u.Exports = append(u.Exports, name)
		}
	}
	slices.Sort(u.Exports)
	return u
}

// maskNonCode blanks comments, template text and regex literals, keeping
// offsets and line breaks, so the statement patterns only see code and
// ordinary string literals.
func maskNonCode(text string, toks []token.ScanToken) string {
	b := []byte(text)
	for _, tok := range toks {
		if tok.IsPlain() || tok.Flags.Has(token.String) && !tok.Flags.Has(token.Template) {
			continue
		}
		for k := tok.Off; k < tok.End(); k++ {
			if b[k] != '\n' {
				b[k] = ' '
			}
		}
	}
	return string(b)
}

func tokenIndex(toks []token.ScanToken, off int) (int, bool) {
	i, ok := slices.BinarySearchFunc(toks, off, func(t token.ScanToken, off int) int { return int(t.Off) - off })
	return i, ok
}

func precededByDot(text string, off int) bool {
	k := off - 1
	for k >= 0 && (text[k] == ' ' || text[k] == '\t') {
		k--
	}
	return k >= 0 && text[k] == '.'
}

func offset(i int) uint32 {
	off, err := safecast.Conv[uint32](i)
	if err != nil {
		return 0
	}
	return off
}

// importNames разбирает клаузу импорта: default, { a, b as c }, * as ns.
func importNames(clause string) []string {
	clause = strings.TrimSpace(clause)
	var names []string
	head := clause
	if i := strings.IndexByte(clause, '{'); i >= 0 {
		head = clause[:i]
		inner := clause[i+1:]
		if j := strings.IndexByte(inner, '}'); j >= 0 {
			inner = inner[:j]
		}
		for _, spec := range splitList(inner) {
			imported, _ := splitAs(spec)
			names = append(names, imported)
		}
	}
	head = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(head), ","))
	if head != "" && !strings.HasPrefix(head, "*") {
		def := strings.TrimSpace(strings.SplitN(head, ",", 2)[0])
		if def != "" && isIdent(def) {
			names = append([]string{"default"}, names...)
		}
	}
	return names
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimSpace(strings.TrimPrefix(part, "type "))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitAs splits "a as b" into (a, b); a plain name is returned twice.
func splitAs(spec string) (local, exported string) {
	fields := strings.Fields(spec)
	switch {
	case len(fields) == 3 && fields[1] == "as":
		return fields[0], fields[2]
	case len(fields) == 2 && fields[0] == "as":
		return "", fields[1]
	case len(fields) == 1:
		return fields[0], fields[0]
	}
	return strings.TrimSpace(spec), strings.TrimSpace(spec)
}

func isIdent(s string) bool {
	for i, r := range s {
		if i == 0 && !lexer.IsIdentStart(r) || i > 0 && !lexer.IsIdentPart(r) {
			return false
		}
	}
	return s != ""
}
