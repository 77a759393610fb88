package driver

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"glaze/internal/diag"
	"glaze/internal/diagfmt"
	"glaze/internal/observ"
	"glaze/internal/watch"
)

// CompileResult is the outcome of Compile. In watch mode its diagnostics,
// outputs and exports follow the latest finished build.
type CompileResult struct {
	// Inputs are the absolute input files in entry order.
	Inputs []string
	// Timings of a one-shot compile; empty in watch mode.
	Timings observ.Report

	mu          sync.Mutex
	base        []diag.Diagnostic // предупреждения конфигурации, живут весь сеанс
	diagnostics []diag.Diagnostic
	outputs     []string
	exports     map[string][]string
	session     *watch.Session
}

// Diagnostics returns a copy of the current diagnostics.
func (r *CompileResult) Diagnostics() []diag.Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.diagnostics)
}

// SortDiagnostics re-orders the diagnostics by file, line and column and
// drops exact repeats.
func (r *CompileResult) SortDiagnostics() {
	r.mu.Lock()
	defer r.mu.Unlock()
	bag := diag.NewBag(0)
	for _, d := range r.diagnostics {
		bag.Add(d)
	}
	bag.Sort()
	bag.Dedup()
	r.diagnostics = bag.Items()
}

// ErrorCount returns the number of error diagnostics.
func (r *CompileResult) ErrorCount() int {
	return diag.CountErrors(r.Diagnostics())
}

// Outputs returns the written files in first-write order.
func (r *CompileResult) Outputs() []string {
	r.mu.Lock()
	s := r.session
	out := slices.Clone(r.outputs)
	r.mu.Unlock()
	if s != nil {
		return s.Outputs()
	}
	return out
}

// Exports maps every compiled file to its exported names.
func (r *CompileResult) Exports() map[string][]string {
	r.mu.Lock()
	s := r.session
	exports := maps.Clone(r.exports)
	r.mu.Unlock()
	if s != nil {
		if p := s.Program(); p != nil {
			return p.Exports()
		}
		return nil
	}
	return exports
}

// Debug prints the diagnostics per opts and returns what was shown.
func (r *CompileResult) Debug(w io.Writer, opts diagfmt.ReportOpts) diagfmt.Summary {
	return diagfmt.Report(w, r.Diagnostics(), opts)
}

// Watching reports whether the result belongs to a watch session.
func (r *CompileResult) Watching() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil
}

// Stop ends the watch session; it does nothing for one-shot results.
func (r *CompileResult) Stop() {
	r.mu.Lock()
	s := r.session
	r.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}

// Err returns the fatal error that stopped a watch session.
func (r *CompileResult) Err() error {
	r.mu.Lock()
	s := r.session
	r.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Err()
}

// Builds returns how many builds produced this result: 1 for a one-shot
// compile, the flushed builds of a watch session.
func (r *CompileResult) Builds() int {
	r.mu.Lock()
	s := r.session
	r.mu.Unlock()
	if s == nil {
		return 1
	}
	return s.Builds()
}

// Status is a one-line summary for heartbeats.
func (r *CompileResult) Status() string {
	r.mu.Lock()
	s := r.session
	r.mu.Unlock()
	if s == nil {
		return fmt.Sprintf("done, %d errors", r.ErrorCount())
	}
	return s.Status()
}

func (r *CompileResult) setDiagnostics(ds []diag.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagnostics = append(slices.Clone(r.base), ds...)
}
