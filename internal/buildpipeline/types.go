package buildpipeline

import (
	"slices"
	"time"
)

// Stage is a coarse step of the pipeline as the progress view shows it.
type Stage string

const (
	StagePreprocess Stage = "preprocess" // entry expansion and preprocessing
	StageCheck      Stage = "check"      // program graph and checks
	StageEmit       Stage = "emit"
	StageBundle     Stage = "bundle"
	StageWatch      Stage = "watch" // first build of a watch session
)

// Status is the state of a file or of the whole run within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress of one file, or of the run when File is empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings records stage durations in the order stages first finished.
// The zero value is ready to use.
type Timings struct {
	entries []stageTiming
}

type stageTiming struct {
	stage Stage
	dur   time.Duration
}

func (t *Timings) find(stage Stage) int {
	return slices.IndexFunc(t.entries, func(e stageTiming) bool { return e.stage == stage })
}

// Set replaces the duration of stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if i := t.find(stage); i >= 0 {
		t.entries[i].dur = dur
		return
	}
	t.entries = append(t.entries, stageTiming{stage, dur})
}

// Add accumulates dur into stage; a stage spans several driver phases.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if i := t.find(stage); i >= 0 {
		t.entries[i].dur += dur
		return
	}
	t.entries = append(t.entries, stageTiming{stage, dur})
}

// Has reports whether stage finished.
func (t Timings) Has(stage Stage) bool { return t.find(stage) >= 0 }

// Duration returns the time spent in stage, 0 if it never ran.
func (t Timings) Duration(stage Stage) time.Duration {
	if i := t.find(stage); i >= 0 {
		return t.entries[i].dur
	}
	return 0
}

// Total sums every recorded stage.
func (t Timings) Total() time.Duration {
	var total time.Duration
	for _, e := range t.entries {
		total += e.dur
	}
	return total
}
