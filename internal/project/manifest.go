// Package project loads the glaze.toml project manifest.
package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"glaze/internal/bundle"
	"glaze/internal/diagfmt"
	"glaze/internal/driver"
	"glaze/internal/preprocess"
	"glaze/internal/toolchain"
)

// ErrCompileSectionMissing reports a manifest without [compile].entries.
var ErrCompileSectionMissing = errors.New("missing [compile] section")

// Manifest is a decoded glaze.toml. Paths in Config are absolute.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Compile  CompileConfig             `toml:"compile"`
	Compiler toolchain.CompilerOptions `toml:"compiler"`
	Aliases  map[string]string         `toml:"aliases"`
	Watch    WatchConfig               `toml:"watch"`
	Bundle   BundleConfig              `toml:"bundle"`
}

type CompileConfig struct {
	Entries    []string `toml:"entries"`
	Exclude    []string `toml:"exclude"`
	OutDir     string   `toml:"out_dir"`
	RootDir    string   `toml:"root_dir"`
	ExactFiles bool     `toml:"exact_files"`
	// MaxErrors caps printed diagnostics; 0 is unlimited, unset is diagfmt.DefaultMax.
	MaxErrors int `toml:"max_errors"`
	// DebugFile selects the file reported in "file" mode.
	DebugFile string `toml:"debug_file"`
	Report    string `toml:"report"`
}

type WatchConfig struct {
	Verbosity int `toml:"verbosity"`
}

type BundleConfig struct {
	Entries   []string `toml:"entries"`
	Outfile   string   `toml:"outfile"`
	Platform  string   `toml:"platform"`
	Target    string   `toml:"target"`
	Format    string   `toml:"format"`
	Minify    bool     `toml:"minify"`
	TreeShake bool     `toml:"tree_shake"`
	Sourcemap bool     `toml:"sourcemap"`
	External  []string `toml:"external"`
	// Preprocess defaults to true.
	Preprocess bool `toml:"preprocess"`
}

// LoadFromDir finds and loads the manifest above startDir.
func LoadFromDir(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// Load decodes the manifest at path and resolves its paths against its directory.
func Load(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	meta, err := toml.DecodeFile(abs, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", abs, err)
	}
	if !meta.IsDefined("compile") {
		return nil, fmt.Errorf("%s: %w", abs, ErrCompileSectionMissing)
	}
	if !meta.IsDefined("compile", "entries") || len(cfg.Compile.Entries) == 0 {
		return nil, fmt.Errorf("%s: missing [compile].entries", abs)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%s: unknown keys: %s", abs, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("compile", "max_errors") {
		cfg.Compile.MaxErrors = diagfmt.DefaultMax
	}
	if !meta.IsDefined("bundle", "preprocess") {
		cfg.Bundle.Preprocess = true
	}
	if _, err := diagfmt.ParseMode(cfg.Compile.Report); err != nil {
		return nil, fmt.Errorf("%s: [compile].report: %w", abs, err)
	}

	m := &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}
	m.resolvePaths()
	return m, nil
}

func (m *Manifest) resolvePaths() {
	c := &m.Config
	for i, e := range c.Compile.Entries {
		c.Compile.Entries[i] = m.abs(e)
	}
	c.Compile.OutDir = m.abs(c.Compile.OutDir)
	c.Compile.RootDir = m.abs(c.Compile.RootDir)
	c.Compile.DebugFile = m.abs(c.Compile.DebugFile)
	c.Compiler.OutDir = m.abs(c.Compiler.OutDir)
	c.Compiler.RootDir = m.abs(c.Compiler.RootDir)
	c.Compiler.BuildInfo = m.abs(c.Compiler.BuildInfo)
	for prefix, dir := range c.Aliases {
		c.Aliases[prefix] = m.abs(dir)
	}
	for i, e := range c.Bundle.Entries {
		c.Bundle.Entries[i] = m.abs(e)
	}
	c.Bundle.Outfile = m.abs(c.Bundle.Outfile)
}

func (m *Manifest) abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, filepath.FromSlash(p))
}

// DriverOptions returns compile options for the manifest; [compile] paths
// win over the same keys in [compiler].
func (m *Manifest) DriverOptions() driver.Options {
	c := m.Config
	compiler := c.Compiler
	if c.Compile.OutDir != "" {
		compiler.OutDir = c.Compile.OutDir
	}
	if c.Compile.RootDir != "" {
		compiler.RootDir = c.Compile.RootDir
	}
	return driver.Options{
		Entries:    c.Compile.Entries,
		Exclude:    c.Compile.Exclude,
		Compiler:   compiler,
		Aliases:    c.Aliases,
		ExactFiles: c.Compile.ExactFiles,
		Verbosity:  c.Watch.Verbosity,
	}
}

// ReportOptions returns the reporter settings of [compile].
func (m *Manifest) ReportOptions() diagfmt.ReportOpts {
	mode, _ := diagfmt.ParseMode(m.Config.Compile.Report)
	return diagfmt.ReportOpts{
		PrettyOpts: diagfmt.PrettyOpts{BaseDir: m.Root},
		Mode:       mode,
		File:       m.Config.Compile.DebugFile,
		Max:        m.Config.Compile.MaxErrors,
	}
}

// BundleOptions returns bundler options for [bundle]. Without bundle entries
// the compile entries are bundled.
func (m *Manifest) BundleOptions() (bundle.Options, error) {
	b := m.Config.Bundle
	platform, err := bundle.ParsePlatform(b.Platform)
	if err != nil {
		return bundle.Options{}, fmt.Errorf("%s: [bundle].platform: %w", m.Path, err)
	}
	format, err := bundle.ParseFormat(b.Format)
	if err != nil {
		return bundle.Options{}, fmt.Errorf("%s: [bundle].format: %w", m.Path, err)
	}
	targetName := b.Target
	if targetName == "" {
		targetName = m.Config.Compiler.TargetName
	}
	target, err := toolchain.ParseTarget(targetName)
	if err != nil {
		return bundle.Options{}, fmt.Errorf("%s: [bundle].target: %w", m.Path, err)
	}
	entries := b.Entries
	if len(entries) == 0 {
		entries = m.Config.Compile.Entries
	}
	opts := bundle.Options{
		Entries:   entries,
		Outfile:   b.Outfile,
		Platform:  platform,
		Target:    target,
		Format:    format,
		Minify:    b.Minify,
		TreeShake: b.TreeShake,
		Sourcemap: b.Sourcemap,
		External:  b.External,
		Aliases:   m.Config.Aliases,
		WorkDir:   m.Root,
		Write:     b.Outfile != "",
	}
	if b.Preprocess {
		opts.Pipeline = preprocess.New(nil)
	}
	return opts, nil
}
