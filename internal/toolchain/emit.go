package toolchain

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"glaze/internal/diag"
	"glaze/internal/trace"
)

// EmitResult lists what Emit wrote.
type EmitResult struct {
	Outputs []string
	// Skipped are sources whose outputs were up to date (incremental mode).
	Skipped     []string
	Diagnostics []diag.Diagnostic
}

// Emit writes JavaScript (and declaration stubs when enabled) for every unit of
// the program through the host. Units with syntax errors and .d.ts files are
// not emitted. Write failures become diagnostics.
func Emit(ctx context.Context, p *Program) EmitResult {
	var res EmitResult
	if p.opts.NoEmit {
		return res
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "emit", trace.CurrentSpan(ctx).SpanID)

	var info *BuildInfo
	infoPath := p.opts.BuildInfoPath()
	if p.opts.Incremental && infoPath != "" {
		var err error
		info, err = LoadBuildInfo(infoPath, p.opts)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, diag.New(diag.SevWarning, diag.BuildInfoCorrupt,
				fmt.Sprintf("ignoring build info: %v", err)))
		}
	}

	for _, path := range p.order {
		if ctx.Err() != nil {
			break
		}
		unit := p.units[path]
		if unit.Declaration() {
			continue
		}
		c := p.compile(unit)
		if len(c.errors) > 0 {
			continue
		}
		hash := unit.File.Hash
		if info != nil && info.Fresh(path, hash) {
			res.Skipped = append(res.Skipped, path)
			continue
		}

		out, err := p.OutputPath(path)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, diag.Errorf(diag.EmitFailed, "%v", err).At(path, 0, 0))
			continue
		}
		if out == path {
			res.Diagnostics = append(res.Diagnostics, diag.Errorf(diag.EmitFailed,
				"Cannot write file '%s' because it would overwrite input file.", out))
			continue
		}

		written := make([]string, 0, 2)
		if err := p.host.WriteFile(out, c.code); err != nil {
			res.Diagnostics = append(res.Diagnostics, diag.Errorf(diag.EmitWriteFailed, "Could not write file '%s': %v", out, err))
			continue
		}
		written = append(written, out)

		if p.opts.Declaration {
			dts := declarationName(out)
			if err := p.host.WriteFile(dts, []byte(p.declaration(unit))); err != nil {
				res.Diagnostics = append(res.Diagnostics, diag.Errorf(diag.EmitWriteFailed, "Could not write file '%s': %v", dts, err))
			} else {
				written = append(written, dts)
			}
		}
		res.Outputs = append(res.Outputs, written...)
		if info != nil {
			info.Record(path, hash, written)
		}
	}

	if info != nil {
		if err := info.Save(infoPath); err != nil {
			res.Diagnostics = append(res.Diagnostics, diag.Errorf(diag.EmitWriteFailed, "Could not write build info '%s': %v", infoPath, err))
		}
	}
	span.End(fmt.Sprintf("%d written, %d skipped", len(res.Outputs), len(res.Skipped)))
	return res
}

func declarationName(out string) string {
	for _, pair := range [][2]string{{".mjs", ".d.mts"}, {".cjs", ".d.cts"}, {".js", ".d.ts"}} {
		if stem, ok := strings.CutSuffix(out, pair[0]); ok {
			return stem + pair[1]
		}
	}
	return out + ".d.ts"
}

// declaration строит заглушку .d.ts по карте экспортов: все значения any.
func (p *Program) declaration(u *SourceUnit) string {
	var b strings.Builder
	for _, name := range u.Exports {
		if name == "default" {
			b.WriteString("declare const _default: any;\nexport default _default;\n")
			continue
		}
		fmt.Fprintf(&b, "export declare const %s: any;\n", name)
	}
	var stars []string
	for _, r := range p.resolved[u.Path] {
		if r.Import.Star && r.Kind != ResolvedMissing {
			stars = append(stars, r.Import.Specifier)
		}
	}
	for _, spec := range slices.Compact(stars) {
		fmt.Fprintf(&b, "export * from %q;\n", spec)
	}
	if b.Len() == 0 {
		b.WriteString("export {};\n")
	}
	return b.String()
}
