package toolchain

import (
	"context"
	"fmt"
	"slices"

	"glaze/internal/diag"
	"glaze/internal/trace"
)

// Check reports diagnostics unit by unit in discovery order: missing roots
// first, then for each unit its syntax errors followed by its import errors
// in source order.
func Check(ctx context.Context, p *Program) []diag.Diagnostic {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "check", trace.CurrentSpan(ctx).SpanID)

	var out []diag.Diagnostic
	for _, path := range p.missing {
		out = append(out, diag.Errorf(diag.EntryNotFound, "File '%s' not found.", path))
	}
	for _, path := range p.order {
		unit, ok := p.Unit(path)
		if !ok {
			continue
		}
		out = append(out, p.syntax(unit)...)
		out = append(out, p.imports(unit)...)
	}
	span.End(fmt.Sprintf("%d diagnostics", len(out)))
	return out
}

func (p *Program) syntax(u *SourceUnit) []diag.Diagnostic {
	c := p.compile(u)
	out := make([]diag.Diagnostic, 0, len(c.errors)+len(c.warnings))
	for _, m := range c.errors {
		out = append(out, MessageDiagnostic(m, diag.SevError, diag.SynError, p.rootDir))
	}
	for _, m := range c.warnings {
		out = append(out, MessageDiagnostic(m, diag.SevWarning, diag.SynWarning, p.rootDir))
	}
	return out
}

func (p *Program) imports(u *SourceUnit) []diag.Diagnostic {
	var out []diag.Diagnostic
	exports := p.Exports()
	for _, r := range p.Resolutions(u.Path) {
		line, col := u.Position(r.Import.Off)
		switch r.Kind {
		case ResolvedMissing:
			if r.Import.Kind == ImportDynamic || r.Import.Kind == ImportRequire {
				// динамические импорты проверяются только во время выполнения
				continue
			}
			out = append(out, diag.Errorf(diag.ImpModuleNotFound,
				"Cannot find module '%s' or its corresponding type declarations.", r.Import.Specifier).
				At(u.Path, line, col))
		case ResolvedSource:
			if len(r.Import.Names) == 0 || p.opaqueExports(r.Path, map[string]bool{}) {
				continue
			}
			have := exports[r.Path]
			for _, name := range r.Import.Names {
				if slices.Contains(have, name) {
					continue
				}
				msg := fmt.Sprintf("Module '\"%s\"' has no exported member '%s'.", r.Import.Specifier, name)
				if name == "default" {
					msg = fmt.Sprintf("Module '\"%s\"' has no default export.", r.Import.Specifier)
				}
				out = append(out, diag.NewError(diag.ImpMissingExport, msg).At(u.Path, line, col))
			}
		}
	}
	return out
}
