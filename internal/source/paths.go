package source

import (
	"os"
	"path/filepath"
	"strings"
)

// CleanPath returns p in the slash-separated, cleaned form used as FileSet key.
func CleanPath(p string) string {
	return normalizePath(p)
}

// AbsolutePath resolves p against the working directory.
func AbsolutePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return normalizePath(abs), nil
}

// RelativePath returns p relative to baseDir. Paths outside baseDir keep
// their absolute form so reports never show ../ chains.
func RelativePath(p, baseDir string) (string, error) {
	abs, err := AbsolutePath(p)
	if err != nil {
		return "", err
	}
	base, err := AbsolutePath(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return abs, nil
	}
	if rel = filepath.ToSlash(rel); rel == ".." || strings.HasPrefix(rel, "../") {
		return abs, nil
	}
	return rel, nil
}

// autoPathLimit: длиннее этого абсолютный путь в режиме auto сокращается до имени.
const autoPathLimit = 40

// FormatPath renders p for reports. mode is one of absolute, relative,
// basename or auto; anything else returns p unchanged.
func FormatPath(p, mode, baseDir string) string {
	var (
		out string
		err error
	)
	switch mode {
	case "absolute":
		out, err = AbsolutePath(p)
	case "relative":
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		out, err = RelativePath(p, baseDir)
	case "basename":
		return filepath.Base(p)
	case "auto":
		if len(p) >= autoPathLimit && filepath.IsAbs(p) {
			return filepath.Base(p)
		}
		return p
	default:
		return p
	}
	if err != nil {
		return p
	}
	return out
}
