package main

import (
	"path/filepath"
	"strings"
)

// formatPathForOutput shows paths under root relative to it, with forward
// slashes. Paths outside root are printed unchanged.
func formatPathForOutput(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return path
	}
	return rel
}
