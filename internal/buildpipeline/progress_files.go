package buildpipeline

import (
	"path/filepath"
	"slices"
	"strings"
)

// displayFiles turns input paths into the sorted, deduplicated list shown by
// the progress view. Paths under baseDir become relative to it.
func displayFiles(files []string, baseDir string) []string {
	if len(files) == 0 {
		return files
	}
	base := strings.TrimSpace(baseDir)
	if base != "" {
		if abs, err := filepath.Abs(base); err == nil {
			base = abs
		}
	}
	out := make([]string, 0, len(files))
	for _, file := range files {
		if file != "" {
			out = append(out, displayPath(file, base))
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func displayPath(file, base string) string {
	path := filepath.Clean(file)
	if base == "" {
		return filepath.ToSlash(path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." {
		return filepath.ToSlash(path)
	}
	if rel = filepath.ToSlash(rel); rel == ".." || strings.HasPrefix(rel, "../") {
		return filepath.ToSlash(path)
	}
	return rel
}
