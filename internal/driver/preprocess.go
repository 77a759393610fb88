package driver

import (
	"context"
	"os"

	"glaze/internal/preprocess"
	"glaze/internal/source"
)

// PreprocessResult is the rewritten text of one file.
type PreprocessResult struct {
	Path      string
	Text      string
	Macros    []string
	Redefined []string
}

// PreprocessFile runs the rewriter and the macro stage over one file without
// compiling it.
func PreprocessFile(ctx context.Context, path string, transform preprocess.Transform) (*PreprocessResult, error) {
	abs, err := source.AbsolutePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	text, _ := source.Normalize(data)
	res := preprocess.Source(string(text))
	out := &PreprocessResult{Path: abs, Text: res.Text, Macros: res.Macros.Names(), Redefined: res.Redefined}
	if transform != nil {
		out.Text, err = preprocess.New(transform).File(ctx, abs, string(text)).Wait(ctx)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
