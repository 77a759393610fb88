// Package driver is the entry point of the pipeline: it expands entries into
// inputs, preprocesses them into the virtual host's overlay, and runs the
// toolchain once or as a watch session.
package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"glaze/internal/diag"
	"glaze/internal/observ"
	"glaze/internal/preprocess"
	"glaze/internal/source"
	"glaze/internal/toolchain"
	"glaze/internal/trace"
	"glaze/internal/vhost"
	"glaze/internal/watch"
)

// Compile runs the pipeline. Configuration and entry errors end the compile
// early and are returned as diagnostics. The returned error is reserved for
// fatal conditions: an asynchronous transform in watch mode, host failures,
// cancellation.
//
// In watch mode Compile returns after the first build has been reported; the
// result is refreshed by later builds until Stop.
func Compile(ctx context.Context, opts Options) (*CompileResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := trace.StartSpan(ctx, trace.ScopeDriver, "compile")
	defer span.End("")

	res := &CompileResult{}
	ph := &phases{timer: observ.NewTimer(), observer: opts.Observer}

	compiler := opts.Compiler
	absolutize(&compiler)
	cfgDiags := compiler.Resolve()
	res.base = cfgDiags
	if hasErrors(cfgDiags) {
		res.setDiagnostics(nil)
		return res, nil
	}

	idx := ph.begin(PhaseInputs)
	inputs, entryDiags := expandInputs(opts.Entries, opts.Exclude, compiler.OutDir)
	ph.end(idx, PhaseInputs, fmt.Sprintf("%d files", len(inputs)))
	res.Inputs = inputs
	if hasErrors(entryDiags) {
		res.setDiagnostics(entryDiags)
		res.Timings = ph.timer.Report()
		return res, nil
	}
	if len(inputs) == 0 {
		res.setDiagnostics([]diag.Diagnostic{diag.NewError(diag.EntryNoSources, "No inputs were given.")})
		return res, nil
	}

	if opts.OnInputs != nil {
		opts.OnInputs(slices.Clone(inputs))
	}

	aliases := resolveAliases(opts.Aliases, inputs, &compiler)
	pipeline := preprocess.New(opts.Transform)
	var exact []string
	if opts.ExactFiles {
		exact = inputs
	}

	if opts.Watch {
		return startWatch(ctx, opts, res, ph, inputs, compiler, exact, aliases, pipeline)
	}

	disk := vhost.OSDisk{}
	overlay := vhost.NewOverlay()
	idx = ph.begin(PhasePreprocess)
	preDiags, err := preprocessInputs(ctx, pipeline, disk, overlay, inputs, opts.Jobs)
	ph.end(idx, PhasePreprocess, fmt.Sprintf("%d in overlay", overlay.Len()))
	if err != nil {
		span.Fail(err)
		return nil, err
	}

	host := vhost.New(ctx, vhost.Options{
		Overlay:    overlay,
		Disk:       disk,
		ExactFiles: exact,
		Aliases:    aliases,
		// файлы графа вне входов препроцессятся при первом чтении
		Load: pipeline.Loader(ctx, disk.ReadFile, true),
	})

	idx = ph.begin(PhaseProgram)
	prog, err := toolchain.NewProgram(ctx, host, inputs, compiler)
	ph.end(idx, PhaseProgram, "")
	if err != nil {
		span.Fail(err)
		return nil, err
	}

	idx = ph.begin(PhaseCheck)
	checked := toolchain.Check(ctx, prog)
	ph.end(idx, PhaseCheck, fmt.Sprintf("%d diagnostics", len(checked)))

	idx = ph.begin(PhaseEmit)
	emitted := toolchain.Emit(ctx, prog)
	ph.end(idx, PhaseEmit, fmt.Sprintf("%d written", len(emitted.Outputs)))

	all := slices.Concat(entryDiags, preDiags, checked, emitted.Diagnostics)
	res.setDiagnostics(all)
	res.mu.Lock()
	res.outputs = emitted.Outputs
	res.exports = prog.Exports()
	res.mu.Unlock()
	res.Timings = ph.timer.Report()
	span.WithExtra("inputs", fmt.Sprint(len(inputs)))
	return res, nil
}

func startWatch(ctx context.Context, opts Options, res *CompileResult, ph *phases, inputs []string,
	compiler toolchain.CompilerOptions, exact []string, aliases []vhost.Alias, pipeline *preprocess.Pipeline,
) (*CompileResult, error) {
	idx := ph.begin(PhaseWatch)
	sess, err := watch.Start(ctx, watch.Options{
		Roots:      inputs,
		Compiler:   compiler,
		ExactFiles: exact,
		Aliases:    aliases,
		Pipeline:   pipeline,
		Verbosity:  opts.Verbosity,
		Log:        opts.Log,
		OnChange:   opts.OnChange,
		OnFlush: func(ds []diag.Diagnostic) {
			res.setDiagnostics(ds)
			if opts.OnFlush != nil {
				opts.OnFlush(res.Diagnostics())
			}
		},
		NoWatcher: opts.NoWatcher,
	})
	ph.end(idx, PhaseWatch, "first build")
	if err != nil {
		return nil, err
	}
	res.mu.Lock()
	res.session = sess
	res.mu.Unlock()
	return res, nil
}

// resolveAliases turns prefix → directory pairs into host aliases. With an
// out_dir, aliased files are emitted under it, so rewritten imports point
// there. root_dir is widened to cover the alias directories.
func resolveAliases(in map[string]string, inputs []string, compiler *toolchain.CompilerOptions) []vhost.Alias {
	prefixes := make([]string, 0, len(in))
	for prefix := range in {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	aliases := make([]vhost.Alias, 0, len(prefixes))
	for _, prefix := range prefixes {
		dir, err := source.AbsolutePath(in[prefix])
		if err != nil {
			dir = source.CleanPath(in[prefix])
		}
		aliases = append(aliases, vhost.Alias{Prefix: prefix, Source: dir})
	}

	if compiler.RootDir == "" {
		root := toolchain.CommonDir(inputs)
		for _, a := range aliases {
			for !toolchain.WithinDir(a.Source, root) {
				parent := filepath.Dir(root)
				if parent == root {
					break
				}
				root = parent
			}
		}
		compiler.RootDir = source.CleanPath(root)
	}
	if compiler.OutDir != "" {
		for i := range aliases {
			rel, err := filepath.Rel(compiler.RootDir, aliases[i].Source)
			if err != nil || strings.HasPrefix(filepath.ToSlash(rel), "../") {
				continue
			}
			aliases[i].Output = source.CleanPath(filepath.Join(compiler.OutDir, rel))
		}
	}

	if len(aliases) > 0 {
		paths := vhost.AliasPaths(aliases)
		for k, v := range compiler.Paths {
			paths[k] = v
		}
		compiler.Paths = paths
	}
	return aliases
}

func absolutize(o *toolchain.CompilerOptions) {
	for _, p := range []*string{&o.OutDir, &o.RootDir, &o.BuildInfo} {
		if *p == "" {
			continue
		}
		if abs, err := source.AbsolutePath(*p); err == nil {
			*p = abs
		}
	}
}

func hasErrors(ds []diag.Diagnostic) bool {
	return slices.ContainsFunc(ds, func(d diag.Diagnostic) bool { return d.Severity >= diag.SevError })
}
