package preprocess

import (
	"context"
)

// Transform is a caller-supplied post-preprocess step. It returns Ready for
// synchronous results and Async when the work completes later.
type Transform func(ctx context.Context, path, text string) *Pending

// Pending is the result of a transform, available now or later.
type Pending struct {
	text string
	err  error
	done chan struct{} // nil для синхронного результата
}

// Ready wraps a synchronous result.
func Ready(text string) *Pending {
	return &Pending{text: text}
}

// Failed wraps a synchronous failure.
func Failed(err error) *Pending {
	return &Pending{err: err}
}

// Async runs fn in its own goroutine and returns a pending result for it.
func Async(fn func() (string, error)) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.text, p.err = fn()
	}()
	return p
}

// IsAsync reports whether the result was produced asynchronously, whether or
// not it has completed yet.
func (p *Pending) IsAsync() bool {
	return p.done != nil
}

// Wait blocks until the result is available or ctx is done.
func (p *Pending) Wait(ctx context.Context) (string, error) {
	if p.done == nil {
		return p.text, p.err
	}
	select {
	case <-p.done:
		return p.text, p.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
