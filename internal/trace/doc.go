// Package trace records what the pipeline is doing: spans for compiles, watch
// builds and passes, points for per-file and macro events, and heartbeats
// for long watch sessions.
//
// A tracer travels in the context together with the current span:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.StartSpan(ctx, trace.ScopePass, "emit")
//	defer span.End("")
//
// Levels admit scopes from the coarsest up: phase shows driver and pass
// spans, detail adds files, debug adds macros. In ring mode events stay in
// memory and are dumped only when a command fails.
package trace
