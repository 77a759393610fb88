package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"glaze/internal/diag"
	"glaze/internal/preprocess"
	"glaze/internal/trace"
	"glaze/internal/vhost"
)

type preprocessed struct {
	text string
	ok   bool
	diag *diag.Diagnostic
}

// preprocessInputs читает и препроцессит входные файлы параллельно, дожидаясь
// асинхронных transform. Результаты кладутся в overlay в порядке входов.
func preprocessInputs(ctx context.Context, pipeline *preprocess.Pipeline, disk vhost.Disk, overlay *vhost.Overlay, inputs []string, jobs int) ([]diag.Diagnostic, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	tracer := trace.FromContext(ctx)

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]preprocessed, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(inputs)))
	for i, path := range inputs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			data, err := disk.ReadFile(path)
			if err != nil {
				d := diag.Errorf(diag.PreReadFailed, "Cannot read file '%s': %v", path, err).At(path, 0, 0)
				results[i] = preprocessed{diag: &d}
				return nil
			}
			text, err := pipeline.File(gctx, path, string(data)).Wait(gctx)
			switch {
			case err == nil:
				results[i] = preprocessed{text: text, ok: true}
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				// без transform, но с макросами: файл всё равно участвует в проверке
				d := diag.Errorf(diag.PreTransformFailed, "transform failed: %v", err).At(path, 0, 0)
				results[i] = preprocessed{text: preprocess.Source(string(data)).Text, ok: true, diag: &d}
				trace.Point(tracer, trace.ScopeFile, "preprocess.failed", path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("preprocessing interrupted: %w", err)
	}

	var diags []diag.Diagnostic
	for i, r := range results {
		if r.diag != nil {
			diags = append(diags, *r.diag)
		}
		if r.ok {
			overlay.Set(inputs[i], r.text)
		}
	}
	return diags, nil
}
