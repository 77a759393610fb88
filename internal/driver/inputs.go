package driver

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"glaze/internal/diag"
	"glaze/internal/preprocess"
	"glaze/internal/source"
	"glaze/internal/toolchain"
)

// expandInputs turns entries into the ordered, de-duplicated list of input
// files. Entries keep their order; files found under a directory are sorted.
func expandInputs(entries, exclude []string, outDir string) ([]string, []diag.Diagnostic) {
	var (
		out   []string
		diags []diag.Diagnostic
		seen  = make(map[string]bool)
	)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, entry := range entries {
		abs, err := source.AbsolutePath(entry)
		if err != nil {
			diags = append(diags, diag.Errorf(diag.EntryNotFound, "File '%s' not found.", entry))
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			diags = append(diags, diag.Errorf(diag.EntryNotFound, "File '%s' not found.", abs))
			continue
		}
		if !info.IsDir() {
			add(abs)
			continue
		}
		files, err := listSources(abs, exclude, outDir)
		if err != nil {
			diags = append(diags, diag.Errorf(diag.EntryNotFound, "Cannot read directory '%s': %v", abs, err))
			continue
		}
		if len(files) == 0 {
			diags = append(diags, diag.Errorf(diag.EntryNoSources, "No inputs were found in '%s'.", abs))
			continue
		}
		for _, f := range files {
			add(f)
		}
	}
	return out, diags
}

// listSources возвращает отсортированный список исходников в директории.
// node_modules, скрытые каталоги и out_dir пропускаются.
func listSources(dir string, exclude []string, outDir string) ([]string, error) {
	if outDir != "" {
		outDir = source.CleanPath(outDir)
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		path = source.CleanPath(path)
		rel, _ := filepath.Rel(dir, path)
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if path == source.CleanPath(dir) {
				return nil
			}
			name := d.Name()
			if name == "node_modules" || strings.HasPrefix(name, ".") ||
				(outDir != "" && toolchain.WithinDir(path, outDir)) || excluded(exclude, rel, name) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isSource(path) || excluded(exclude, rel, d.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func isSource(path string) bool {
	return preprocess.Applies(path) || strings.HasSuffix(path, ".d.ts")
}

func excluded(patterns []string, rel, name string) bool {
	for _, pat := range patterns {
		pat = strings.TrimSuffix(filepath.ToSlash(pat), "/")
		if ok, _ := filepath.Match(pat, name); ok {
			return true
		}
		if ok, _ := filepath.Match(pat, rel); ok {
			return true
		}
		if strings.HasPrefix(rel, pat+"/") {
			return true
		}
	}
	return false
}
