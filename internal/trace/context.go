package trace

import "context"

// state is what the package keeps in a context: the tracer and the span new
// spans attach to.
type state struct {
	tracer Tracer
	span   SpanContext
}

type stateKey struct{}

func stateOf(ctx context.Context) state {
	if ctx != nil {
		if st, ok := ctx.Value(stateKey{}).(state); ok {
			return st
		}
	}
	return state{tracer: Nop}
}

func withState(ctx context.Context, st state) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, stateKey{}, st)
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return stateOf(ctx).tracer
}

// WithTracer attaches t to ctx. The current span is kept.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	st := stateOf(ctx)
	st.tracer = t
	return withState(ctx, st)
}

// SpanContext identifies the span new spans are parented to.
type SpanContext struct {
	SpanID uint64
	GID    uint64
}

// CurrentSpan returns the span attached to ctx; zero when there is none.
func CurrentSpan(ctx context.Context) SpanContext {
	return stateOf(ctx).span
}

// WithSpanContext makes sc the current span of the returned context.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	st := stateOf(ctx)
	st.span = sc
	return withState(ctx, st)
}

// StartSpan begins a span under the current one and returns a context in
// which it is current. A disabled scope returns ctx unchanged.
func StartSpan(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	st := stateOf(ctx)
	span := Begin(st.tracer, scope, name, st.span.SpanID)
	if span.ID() == 0 {
		return ctx, span
	}
	st.span = SpanContext{SpanID: span.id, GID: span.gid}
	return withState(ctx, st), span
}
