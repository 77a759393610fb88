package watch

import (
	"strings"

	"glaze/internal/source"
)

// ImportOrderIndex ranks files by the position they were first discovered at.
// Keys are lower-cased cleaned paths. It only orders output.
type ImportOrderIndex map[string]int

// BuildIndex ranks paths in order; a repeated path keeps its first rank.
func BuildIndex(paths []string) ImportOrderIndex {
	ix := make(ImportOrderIndex, len(paths))
	for _, p := range paths {
		key := indexKey(p)
		if _, ok := ix[key]; !ok {
			ix[key] = len(ix)
		}
	}
	return ix
}

// Rank returns the rank of path.
func (ix ImportOrderIndex) Rank(path string) (int, bool) {
	r, ok := ix[indexKey(path)]
	return r, ok
}

func indexKey(p string) string {
	return strings.ToLower(source.CleanPath(p))
}
