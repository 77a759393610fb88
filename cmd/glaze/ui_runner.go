package main

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"glaze/internal/buildpipeline"
	"glaze/internal/ui"
)

// runCompileWithUI runs the compile in the background and shows its progress
// until the pipeline closes the event stream.
func runCompileWithUI(ctx context.Context, title string, files []string, req *buildpipeline.CompileRequest) (buildpipeline.CompileResult, error) {
	if req == nil {
		return buildpipeline.CompileResult{}, errors.New("missing compile request")
	}
	events := make(chan buildpipeline.Event, 256)
	type outcome struct {
		res buildpipeline.CompileResult
		err error
	}
	finished := make(chan outcome, 1)

	withSink := *req
	withSink.Progress = buildpipeline.ChannelSink{Ch: events}
	go func() {
		defer close(events)
		res, err := buildpipeline.Compile(ctx, &withSink)
		finished <- outcome{res, err}
	}()

	_, uiErr := tea.NewProgram(ui.NewProgressModel(title, files, events), tea.WithOutput(os.Stdout)).Run()
	out := <-finished
	return out.res, errors.Join(uiErr, out.err)
}
