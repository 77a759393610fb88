package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"glaze/internal/source"
	"glaze/internal/trace"
)

// Program is the set of source units reachable from the root files.
type Program struct {
	opts    CompilerOptions
	host    Host
	roots   []string
	rootDir string

	units    map[string]*SourceUnit
	order    []string
	resolved map[string][]Resolution
	missing  []string // корни, которых нет

	exportsOnce sync.Once
	exports     map[string][]string

	mu       sync.Mutex
	compiled map[string]*compiled
}

// NewProgram parses the roots and everything they import through host.
// Source paths are discovered depth-first with dependencies before their
// importers. A host error other than fs.ErrNotExist aborts the build.
func NewProgram(ctx context.Context, host Host, roots []string, opts CompilerOptions) (*Program, error) {
	ctx, span := trace.StartSpan(ctx, trace.ScopePass, "program")

	p := &Program{
		opts:     opts,
		host:     host,
		units:    make(map[string]*SourceUnit),
		resolved: make(map[string][]Resolution),
		compiled: make(map[string]*compiled),
	}
	for _, root := range roots {
		p.roots = append(p.roots, source.CleanPath(root))
	}
	p.rootDir = opts.RootDir
	if p.rootDir == "" {
		p.rootDir = CommonDir(p.roots)
	}
	p.rootDir = source.CleanPath(p.rootDir)

	res := newResolver(host, opts.Paths)
	visiting := make(map[string]bool)

	var visit func(path string) error
	visit = func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := p.units[path]; ok || visiting[path] {
			return nil
		}
		visiting[path] = true
		unit, err := host.ParseSourceUnit(path, opts.Target)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				p.missing = append(p.missing, path)
				return nil
			}
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		dir := filepath.Dir(path)
		resolutions := make([]Resolution, len(unit.Imports))
		for i, imp := range unit.Imports {
			resolutions[i] = res.resolve(dir, imp)
		}
		p.resolved[path] = resolutions
		for _, r := range resolutions {
			if r.Kind != ResolvedSource {
				continue
			}
			if err := visit(r.Path); err != nil {
				return err
			}
		}
		p.units[path] = unit
		p.order = append(p.order, path)
		return nil
	}

	for _, root := range p.roots {
		if err := visit(root); err != nil {
			span.Fail(err).End("failed")
			return nil, err
		}
	}
	span.End(fmt.Sprintf("%d files", len(p.order)))
	return p, nil
}

// SourcePaths returns the discovered source paths in discovery order.
func (p *Program) SourcePaths() []string {
	return slices.Clone(p.order)
}

// Roots returns the cleaned root paths.
func (p *Program) Roots() []string { return slices.Clone(p.roots) }

// Unit returns the parsed unit of path.
func (p *Program) Unit(path string) (*SourceUnit, bool) {
	u, ok := p.units[source.CleanPath(path)]
	return u, ok
}

// Resolutions returns how each import of path was resolved.
func (p *Program) Resolutions(path string) []Resolution {
	return p.resolved[source.CleanPath(path)]
}

// Options returns the options the program was built with.
func (p *Program) Options() CompilerOptions { return p.opts }

// RootDir is the directory output paths are computed against.
func (p *Program) RootDir() string { return p.rootDir }

// Exports returns the exported names of every unit, including names re-exported
// with `export *`. Default exports are not re-exported by `export *`.
func (p *Program) Exports() map[string][]string {
	p.exportsOnce.Do(func() {
		p.exports = make(map[string][]string, len(p.units))
		for _, path := range p.order {
			p.exports[path] = p.collectExports(path, map[string]bool{})
		}
	})
	return p.exports
}

func (p *Program) collectExports(path string, seen map[string]bool) []string {
	if seen[path] {
		return nil
	}
	seen[path] = true
	unit, ok := p.units[path]
	if !ok {
		return nil
	}
	names := slices.Clone(unit.Exports)
	for _, r := range p.resolved[path] {
		if !r.Import.Star || r.Kind != ResolvedSource {
			continue
		}
		for _, name := range p.collectExports(r.Path, seen) {
			if name != "default" {
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// opaqueExports reports whether the export set of path cannot be known:
// CommonJS units, units without module syntax, and star re-exports of
// anything outside the program.
func (p *Program) opaqueExports(path string, seen map[string]bool) bool {
	if seen[path] {
		return false
	}
	seen[path] = true
	unit, ok := p.units[path]
	if !ok || unit.CommonJS || !unit.ESM {
		return true
	}
	for _, r := range p.resolved[path] {
		if !r.Import.Star {
			continue
		}
		if r.Kind != ResolvedSource || p.opaqueExports(r.Path, seen) {
			return true
		}
	}
	return false
}

// OutputPath maps a source path to its emitted JavaScript path.
func (p *Program) OutputPath(src string) (string, error) {
	rel, err := filepath.Rel(p.rootDir, src)
	if err != nil || rel == ".." || strings.HasPrefix(filepath.ToSlash(rel), "../") {
		return "", fmt.Errorf("file '%s' is not under root_dir '%s'", src, p.rootDir)
	}
	outDir := p.opts.OutDir
	if outDir == "" {
		outDir = p.rootDir
	}
	return source.CleanPath(filepath.Join(outDir, jsName(rel))), nil
}

// jsName заменяет расширение исходника на расширение результата.
func jsName(p string) string {
	ext := filepath.Ext(p)
	stem := strings.TrimSuffix(p, ext)
	switch ext {
	case ".mts", ".mjs":
		return stem + ".mjs"
	case ".cts", ".cjs":
		return stem + ".cjs"
	default:
		return stem + ".js"
	}
}

// CommonDir returns the deepest directory containing every file of paths.
func CommonDir(paths []string) string {
	if len(paths) == 0 {
		return "."
	}
	dir := filepath.Dir(paths[0])
	for _, p := range paths[1:] {
		for !WithinDir(p, dir) {
			parent := filepath.Dir(dir)
			if parent == dir {
				return dir
			}
			dir = parent
		}
	}
	return dir
}

// WithinDir reports whether p is dir or lies below it.
func WithinDir(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(filepath.ToSlash(rel), "../")
}
