package driver

import (
	"time"

	"glaze/internal/observ"
)

// Phase names reported by Compile, in the order a one-shot compile runs them.
const (
	PhaseInputs     = "inputs"
	PhasePreprocess = "preprocess"
	PhaseProgram    = "program"
	PhaseCheck      = "check"
	PhaseEmit       = "emit"
	PhaseWatch      = "watch"
)

type PhaseStatus uint8

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

func (s PhaseStatus) String() string {
	if s == PhaseEnd {
		return "end"
	}
	return "start"
}

// PhaseEvent is one phase boundary; Elapsed is set on PhaseEnd only.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver is called synchronously from Compile's goroutine.
type PhaseObserver func(PhaseEvent)

// phases times each phase and mirrors its boundaries to the observer.
type phases struct {
	timer    *observ.Timer
	observer PhaseObserver
}

func (p *phases) notify(ev PhaseEvent) {
	if p.observer != nil {
		p.observer(ev)
	}
}

func (p *phases) begin(name string) int {
	p.notify(PhaseEvent{Name: name, Status: PhaseStart})
	return p.timer.Begin(name)
}

func (p *phases) end(idx int, name, note string) {
	p.notify(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: p.timer.End(idx, note)})
}
