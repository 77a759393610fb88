package ui

import (
	"strings"
	"testing"

	"glaze/internal/buildpipeline"
)

func TestProgressModelAddsQueuedFiles(t *testing.T) {
	events := make(chan buildpipeline.Event)
	m := NewProgressModel("compile", nil, events).(*progressModel)

	m.applyEvent(buildpipeline.Event{File: "src/a.ts", Stage: buildpipeline.StagePreprocess, Status: buildpipeline.StatusQueued})
	m.applyEvent(buildpipeline.Event{File: "src/b.ts", Stage: buildpipeline.StageCheck, Status: buildpipeline.StatusWorking})
	m.applyEvent(buildpipeline.Event{File: "src/a.ts", Stage: buildpipeline.StageCheck, Status: buildpipeline.StatusWorking})
	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageEmit, Status: buildpipeline.StatusWorking})

	if len(m.files) != 1 || m.files[0].path != "src/a.ts" || m.files[0].label() != "checking" {
		t.Fatalf("files = %+v", m.files)
	}
	if m.run.label() != "emitting" {
		t.Errorf("run label = %q", m.run.label())
	}
	if view := m.View(); !strings.Contains(view, "src/a.ts") || !strings.Contains(view, "compile (emitting)") {
		t.Errorf("view:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("src/components/button.ts", 10); got != "src/com..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("a.ts", 10); got != "a.ts" {
		t.Errorf("truncate = %q", got)
	}
}

func TestProgressModelCountsFailures(t *testing.T) {
	m := NewProgressModel("compile", []string{"a.ts", "b.ts"}, nil).(*progressModel)
	m.applyEvent(buildpipeline.Event{File: "a.ts", Stage: buildpipeline.StageCheck, Status: buildpipeline.StatusError})
	m.applyEvent(buildpipeline.Event{File: "b.ts", Stage: buildpipeline.StageEmit, Status: buildpipeline.StatusDone})

	if got := m.files[0].fraction() + m.files[1].fraction(); got != 2 {
		t.Errorf("finished fractions = %v, want 2", got)
	}
	if view := m.View(); !strings.Contains(view, "1 of 2 files failed") {
		t.Errorf("view:\n%s", view)
	}
}
