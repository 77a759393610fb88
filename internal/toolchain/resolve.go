package toolchain

import (
	"path/filepath"
	"slices"
	"strings"

	"glaze/internal/source"
)

// ResolutionKind classifies where an import points.
type ResolutionKind uint8

const (
	// ResolvedSource is a file that becomes part of the program.
	ResolvedSource ResolutionKind = iota
	// ResolvedExternal is a bare package specifier.
	ResolvedExternal
	// ResolvedHidden is an existing file the host keeps out of the program.
	ResolvedHidden
	// ResolvedAsset is a non-source file such as JSON.
	ResolvedAsset
	// ResolvedMissing means no candidate exists.
	ResolvedMissing
)

// Resolution is the outcome of resolving one Import of a unit.
type Resolution struct {
	Import Import
	Kind   ResolutionKind
	Path   string
}

var sourceExtensions = []string{".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mjs", ".cjs", ".mts", ".cts"}

// TypeScript sources may import their emitted name: "./a.js" finds a.ts.
var emittedCounterparts = map[string][]string{
	".js":  {".ts", ".tsx"},
	".jsx": {".tsx"},
	".mjs": {".mts"},
	".cjs": {".cts"},
}

type resolver struct {
	host  Host
	paths []alias
}

type alias struct {
	prefix string
	dir    string
}

func newResolver(host Host, paths map[string]string) *resolver {
	r := &resolver{host: host}
	for prefix, dir := range paths {
		r.paths = append(r.paths, alias{prefix: trimAlias(prefix), dir: source.CleanPath(dir)})
	}
	// длинные префиксы первыми: "@app/ui" раньше "@app"
	slices.SortFunc(r.paths, func(a, b alias) int {
		if len(a.prefix) != len(b.prefix) {
			return len(b.prefix) - len(a.prefix)
		}
		return strings.Compare(a.prefix, b.prefix)
	})
	return r
}

// trimAlias normalises "@lib/*" and "@lib/" to "@lib".
func trimAlias(prefix string) string {
	prefix = strings.TrimSuffix(prefix, "*")
	if len(prefix) > 1 {
		prefix = strings.TrimSuffix(prefix, "/")
	}
	return prefix
}

// MatchAlias returns the alias prefix matching spec and the sub-path after it.
// A prefix matches the whole specifier or a specifier continuing with '/'.
func MatchAlias(prefix, spec string) (rest string, ok bool) {
	prefix = trimAlias(prefix)
	if spec == prefix {
		return "", true
	}
	if strings.HasPrefix(spec, prefix) && (strings.HasSuffix(prefix, "/") || spec[len(prefix)] == '/') {
		return strings.TrimPrefix(spec[len(prefix):], "/"), true
	}
	return "", false
}

func (r *resolver) resolve(fromDir string, imp Import) Resolution {
	res := Resolution{Import: imp, Kind: ResolvedMissing}
	spec := imp.Specifier
	var base string
	switch {
	case strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || spec == "." || spec == "..":
		base = filepath.Join(fromDir, spec)
	case filepath.IsAbs(spec):
		base = spec
	default:
		for _, a := range r.paths {
			if rest, ok := MatchAlias(a.prefix, spec); ok {
				base = filepath.Join(a.dir, rest)
				break
			}
		}
		if base == "" {
			res.Kind = ResolvedExternal
			return res
		}
	}
	base = source.CleanPath(base)

	candidates := probeCandidates(base)
	for _, c := range candidates {
		if r.host.FileExists(c) {
			res.Path = c
			res.Kind = ResolvedSource
			if !isSourcePath(c) {
				res.Kind = ResolvedAsset
			}
			return res
		}
	}
	if h, ok := r.host.(Hider); ok {
		for _, c := range candidates {
			if h.Hidden(c) {
				res.Path = c
				res.Kind = ResolvedHidden
				return res
			}
		}
	}
	return res
}

// probeCandidates lists the files an extension-less or emitted-name specifier
// may refer to, in lookup order.
func probeCandidates(base string) []string {
	ext := filepath.Ext(base)
	if alts, ok := emittedCounterparts[ext]; ok {
		stem := strings.TrimSuffix(base, ext)
		out := make([]string, 0, len(alts)+1)
		for _, alt := range alts {
			out = append(out, stem+alt)
		}
		return append(out, base)
	}
	var out []string
	if ext != "" {
		out = append(out, base)
	}
	for _, e := range sourceExtensions {
		out = append(out, base+e)
	}
	for _, e := range sourceExtensions {
		out = append(out, base+"/index"+e)
	}
	return out
}

func isSourcePath(p string) bool {
	for _, e := range sourceExtensions {
		if strings.HasSuffix(p, e) {
			return true
		}
	}
	return false
}
