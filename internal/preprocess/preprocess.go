// Package preprocess chains the source rewriter, the macro preprocessor and an
// optional caller transform into the text served by the compiler host.
package preprocess

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"glaze/internal/macro"
	"glaze/internal/rewrite"
	"glaze/internal/trace"
)

// ErrAsyncTransform is returned when a transform answers asynchronously in a
// context that can only consume synchronous results (watch-mode reads).
var ErrAsyncTransform = errors.New("transform returned an asynchronous result; watch mode requires a synchronous transform")

// Source runs unit/color rewriting and then macro processing over text.
func Source(text string) macro.Result {
	return macro.Process(rewrite.Rewrite(text))
}

// Extensions are the file kinds the pipeline rewrites; everything else is
// served as is.
var Extensions = []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"}

// Applies reports whether path is a source file the pipeline rewrites.
// Declaration files are left alone.
func Applies(path string) bool {
	if strings.HasSuffix(path, ".d.ts") {
		return false
	}
	ext := filepath.Ext(path)
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Pipeline preprocesses files for one compile or bundle invocation.
type Pipeline struct {
	// Transform runs after macro expansion; nil means identity.
	Transform Transform
}

// New returns a pipeline with the given post-preprocess transform.
func New(transform Transform) *Pipeline {
	return &Pipeline{Transform: transform}
}

// File preprocesses text read from path and hands the result to the caller
// transform. Files the pipeline does not apply to skip rewriting but still go
// through the transform.
func (p *Pipeline) File(ctx context.Context, path, text string) *Pending {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "preprocess", trace.CurrentSpan(ctx).SpanID).
		WithExtra("path", path)

	out := text
	if Applies(path) {
		res := Source(text)
		out = res.Text
		for _, name := range res.Redefined {
			trace.Point(tracer, trace.ScopeMacro, "macro.redefined", fmt.Sprintf("%s: %s", path, name))
		}
		span.WithExtra("macros", fmt.Sprint(len(res.Macros)))
	}
	span.End("")

	if p == nil || p.Transform == nil {
		return Ready(out)
	}
	pending := p.Transform(ctx, path, out)
	if pending == nil {
		return Ready(out)
	}
	return pending
}

// Sync preprocesses path and requires the transform to answer synchronously.
// An asynchronous answer is a fatal ErrAsyncTransform.
func (p *Pipeline) Sync(ctx context.Context, path, text string) (string, error) {
	pending := p.File(ctx, path, text)
	if pending.IsAsync() {
		return "", fmt.Errorf("%s: %w", path, ErrAsyncTransform)
	}
	return pending.Wait(ctx)
}

// Loader returns a read-and-preprocess function for a compiler host.
// With allowAsync the loader waits for asynchronous transforms; without it an
// asynchronous result fails with ErrAsyncTransform.
func (p *Pipeline) Loader(ctx context.Context, read func(path string) ([]byte, error), allowAsync bool) func(path string) (string, error) {
	return func(path string) (string, error) {
		data, err := read(path)
		if err != nil {
			return "", err
		}
		if !allowAsync {
			return p.Sync(ctx, path, string(data))
		}
		return p.File(ctx, path, string(data)).Wait(ctx)
	}
}
