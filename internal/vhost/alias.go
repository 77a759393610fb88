package vhost

import (
	"path/filepath"
	"strings"

	"glaze/internal/source"
	"glaze/internal/toolchain"
)

// Alias is a compile-time import prefix. Source is where the prefix resolves
// for checking; Output is where the aliased files are emitted, used to
// rewrite specifiers in written modules. An empty Output means Source.
type Alias struct {
	Prefix string
	Source string
	Output string
}

func (a Alias) target() string {
	if a.Output != "" {
		return a.Output
	}
	return a.Source
}

// IsModuleOutput reports whether path is emitted JavaScript.
func IsModuleOutput(path string) bool {
	switch filepath.Ext(path) {
	case ".js", ".mjs", ".cjs":
		return true
	}
	return false
}

// RewriteImports replaces aliased import/require specifiers in code written to
// file with paths relative to file's directory. The sub-path after the alias
// is kept; results always start with "./" or "../".
func RewriteImports(file, code string, aliases []Alias) string {
	unit := toolchain.ParseUnit(file, code, toolchain.TargetESNext)
	if len(unit.Imports) == 0 {
		return code
	}
	dir := filepath.Dir(file)

	var b strings.Builder
	b.Grow(len(code))
	copied := 0
	for _, imp := range unit.Imports {
		a, rest, ok := matchAlias(aliases, imp.Specifier)
		if !ok {
			continue
		}
		rel, err := filepath.Rel(dir, filepath.Join(a.target(), rest))
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if !strings.HasPrefix(rel, "../") && rel != ".." {
			rel = "./" + rel
		}
		start := int(imp.Off) + 1 // после кавычки
		b.WriteString(code[copied:start])
		b.WriteString(rel)
		copied = start + len(imp.Specifier)
	}
	b.WriteString(code[copied:])
	return b.String()
}

// matchAlias picks the longest matching prefix.
func matchAlias(aliases []Alias, spec string) (Alias, string, bool) {
	var best Alias
	var bestRest string
	found := false
	for _, a := range aliases {
		rest, ok := toolchain.MatchAlias(a.Prefix, spec)
		if !ok {
			continue
		}
		if !found || len(a.Prefix) > len(best.Prefix) {
			best, bestRest, found = a, rest, true
		}
	}
	return best, bestRest, found
}

// AliasPaths turns aliases into the prefix → source directory map of
// toolchain.CompilerOptions.Paths.
func AliasPaths(aliases []Alias) map[string]string {
	if len(aliases) == 0 {
		return nil
	}
	out := make(map[string]string, len(aliases))
	for _, a := range aliases {
		out[a.Prefix] = source.CleanPath(a.Source)
	}
	return out
}
