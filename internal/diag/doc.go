// Package diag defines the diagnostic model shared by every pipeline stage.
//
// # Data model
//
// Producers build a Raw record: severity, code, message and either a source
// unit plus byte span (checker) or an already resolved path/line/column
// (bundler). Normalize maps the offset back to a 1-based line and column and
// yields a flat Diagnostic, which is what reporters, the watch session and
// callers see. A Diagnostic is never mutated after creation; only the
// collection holding it is re-sorted.
//
// # Emitting diagnostics
//
// Stages report through a Reporter; FuncReporter adapts a closure and
// DedupReporter drops repeats within one build. A Bag sorts stably by
// position or by an external rank (watch mode orders by import discovery),
// drops exact repeats and lists the files it touches.
//
// # Scope
//
// Package diag performs no formatting beyond the one-line String form and the
// sorted short rendering (--format short, golden files). Terminal output lives in internal/diagfmt.
package diag
