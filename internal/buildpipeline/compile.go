// Package buildpipeline runs compile and bundle for the command line and
// reports their progress as stage events.
package buildpipeline

import (
	"context"
	"fmt"
	"time"

	"glaze/internal/bundle"
	"glaze/internal/driver"
)

// CompileRequest configures the shared compilation pipeline.
type CompileRequest struct {
	Options driver.Options
	// BaseDir shortens file names in progress events.
	BaseDir  string
	Progress ProgressSink
	// Bundle, when set, runs the bundler after an error-free compile.
	Bundle *bundle.Options
}

// CompileResult captures compilation artefacts and stage timings.
type CompileResult struct {
	Compile *driver.CompileResult
	Bundle  *bundle.Result
	Timings Timings
}

// Compile runs the driver and, if requested, the bundler.
func Compile(ctx context.Context, req *CompileRequest) (CompileResult, error) {
	var result CompileResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing compile request")
	}

	phase := &phaseObserver{sink: req.Progress, timings: &result.Timings}
	opts := req.Options
	userObserver := opts.Observer
	opts.Observer = func(ev driver.PhaseEvent) {
		phase.OnPhase(ev)
		if userObserver != nil {
			userObserver(ev)
		}
	}
	userInputs := opts.OnInputs
	opts.OnInputs = func(inputs []string) {
		phase.files = displayFiles(inputs, req.BaseDir)
		emitQueued(req.Progress, phase.files)
		if userInputs != nil {
			userInputs(inputs)
		}
	}

	start := time.Now()
	res, err := driver.Compile(ctx, opts)
	if err != nil {
		emitStage(req.Progress, phase.files, phase.current(), StatusError, err, time.Since(start))
		return result, err
	}
	result.Compile = res
	if n := res.ErrorCount(); n > 0 {
		emitStage(req.Progress, phase.files, phase.current(), StatusError, fmt.Errorf("%d errors", n), time.Since(start))
		return result, nil
	}
	if req.Bundle == nil {
		emitStage(req.Progress, phase.files, phase.current(), StatusDone, nil, time.Since(start))
		return result, nil
	}

	emitStage(req.Progress, phase.files, StageBundle, StatusWorking, nil, 0)
	bundleStart := time.Now()
	result.Bundle = bundle.Build(ctx, *req.Bundle)
	elapsed := time.Since(bundleStart)
	result.Timings.Set(StageBundle, elapsed)
	if result.Bundle.HasErrors() {
		emitStage(req.Progress, phase.files, StageBundle, StatusError, fmt.Errorf("bundling failed"), elapsed)
		return result, nil
	}
	emitStage(req.Progress, phase.files, StageBundle, StatusDone, nil, elapsed)
	return result, nil
}

type phaseObserver struct {
	sink    ProgressSink
	files   []string
	timings *Timings
	stage   Stage
}

func stageOf(phase string) (Stage, bool) {
	switch phase {
	case driver.PhaseInputs, driver.PhasePreprocess:
		return StagePreprocess, true
	case driver.PhaseProgram, driver.PhaseCheck:
		return StageCheck, true
	case driver.PhaseEmit:
		return StageEmit, true
	case driver.PhaseWatch:
		return StageWatch, true
	}
	return "", false
}

// OnPhase updates the progress UI based on driver phase events.
func (p *phaseObserver) OnPhase(ev driver.PhaseEvent) {
	stage, ok := stageOf(ev.Name)
	if !ok {
		return
	}
	if ev.Status == driver.PhaseEnd {
		p.timings.Add(stage, ev.Elapsed)
		return
	}
	if stage == p.stage {
		return
	}
	p.stage = stage
	emitStage(p.sink, p.files, stage, StatusWorking, nil, 0)
}

func (p *phaseObserver) current() Stage {
	if p.stage == "" {
		return StagePreprocess
	}
	return p.stage
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StagePreprocess, Status: StatusQueued})
	}
}

func emitStage(sink ProgressSink, files []string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	}
}
