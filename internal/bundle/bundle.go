// Package bundle runs the downstream bundling stage: esbuild with a
// preprocessing plugin, its errors and warnings folded into diagnostics.
package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"glaze/internal/diag"
	"glaze/internal/diagfmt"
	"glaze/internal/source"
	"glaze/internal/toolchain"
	"glaze/internal/trace"
	"glaze/internal/vhost"
)

// Result is the outcome of one bundle build.
type Result struct {
	Code string
	// Map is the external source map, "" unless requested.
	Map         string
	Diagnostics []diag.Diagnostic
	// Inputs are the files the bundle was built from, sorted.
	Inputs []string
}

// Debug prints the diagnostics per opts.
func (r *Result) Debug(w io.Writer, opts diagfmt.ReportOpts) diagfmt.Summary {
	return diagfmt.Report(w, r.Diagnostics, opts)
}

// HasErrors reports whether any diagnostic is an error.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity >= diag.SevError {
			return true
		}
	}
	return false
}

var build = api.Build

// Build bundles opts.Entries. Bundler failures, including a crash of the
// bundler itself, are returned as diagnostics.
func Build(ctx context.Context, opts Options) (res *Result) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "bundle", trace.CurrentSpan(ctx).SpanID).
		WithExtra("entries", fmt.Sprint(len(opts.Entries)))
	defer func() {
		if r := recover(); r != nil {
			res = &Result{Diagnostics: []diag.Diagnostic{diag.Errorf(diag.BndPanic, "bundler crashed: %v", r)}}
			span.End("panic")
		}
	}()

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}
	workDir, err := source.AbsolutePath(workDir)
	if err != nil {
		span.End("failed")
		return &Result{Diagnostics: []diag.Diagnostic{diag.Errorf(diag.BndError, "%v", err)}}
	}

	if len(opts.Entries) == 0 {
		span.End("no entries")
		return &Result{Diagnostics: []diag.Diagnostic{diag.NewError(diag.EntryNoSources, "No entry points to bundle.")}}
	}

	br := build(buildOptions(ctx, opts, workDir))
	res = &Result{}
	for _, m := range br.Errors {
		res.Diagnostics = append(res.Diagnostics, toolchain.MessageDiagnostic(m, diag.SevError, diag.BndError, workDir))
	}
	for _, m := range br.Warnings {
		res.Diagnostics = append(res.Diagnostics, toolchain.MessageDiagnostic(m, diag.SevWarning, diag.BndWarning, workDir))
	}
	for _, f := range br.OutputFiles {
		if strings.HasSuffix(f.Path, ".map") {
			res.Map = string(f.Contents)
		} else if res.Code == "" {
			res.Code = string(f.Contents)
		}
	}
	if br.Metafile != "" {
		inputs, err := metafileInputs(br.Metafile, workDir)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, diag.New(diag.SevWarning, diag.BndWarning,
				fmt.Sprintf("cannot read bundle metadata: %v", err)))
		}
		res.Inputs = inputs
	}
	span.End(fmt.Sprintf("%d errors, %d warnings", len(br.Errors), len(br.Warnings)))
	return res
}

func buildOptions(ctx context.Context, opts Options, workDir string) api.BuildOptions {
	outfile := opts.Outfile
	if outfile == "" {
		// без outfile esbuild не даёт внешнюю карту
		outfile = filepath.Join(workDir, "bundle.js")
	} else if !filepath.IsAbs(outfile) {
		outfile = filepath.Join(workDir, outfile)
	}

	bo := api.BuildOptions{
		EntryPoints:       opts.Entries,
		Bundle:            true,
		Write:             opts.Write,
		Outfile:           outfile,
		Platform:          opts.Platform.esbuild(),
		Target:            opts.Target.ESBuild(),
		Format:            opts.Format.esbuild(),
		External:          opts.External,
		Alias:             opts.Aliases,
		Metafile:          true,
		AbsWorkingDir:     workDir,
		LogLevel:          api.LogLevelSilent,
		MinifyWhitespace:  opts.Minify,
		MinifyIdentifiers: opts.Minify,
		MinifySyntax:      opts.Minify,
		TreeShaking:       api.TreeShakingFalse,
	}
	if opts.TreeShake {
		bo.TreeShaking = api.TreeShakingTrue
	}
	if opts.Sourcemap {
		bo.Sourcemap = api.SourceMapExternal
	}
	if opts.Pipeline != nil {
		disk := opts.Disk
		if disk == nil {
			disk = vhost.OSDisk{}
		}
		bo.Plugins = append(bo.Plugins, preprocessPlugin(ctx, opts.Pipeline, disk))
	}
	return bo
}

type metafile struct {
	Inputs map[string]json.RawMessage `json:"inputs"`
}

func metafileInputs(text, workDir string) ([]string, error) {
	var meta metafile
	if err := json.Unmarshal([]byte(text), &meta); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(meta.Inputs))
	for p := range meta.Inputs {
		out = append(out, inputPath(p, workDir))
	}
	sort.Strings(out)
	return out, nil
}

// inputPath resolves a metafile or message path. Paths in a non-file
// namespace ("ns:path") are kept as they are.
func inputPath(p, workDir string) string {
	if filepath.IsAbs(p) {
		return source.CleanPath(p)
	}
	if ns, _, ok := strings.Cut(p, ":"); ok && ns != "file" && !strings.ContainsAny(ns, `/\`) {
		return p
	}
	p = strings.TrimPrefix(p, "file:")
	return source.CleanPath(filepath.Join(workDir, p))
}
