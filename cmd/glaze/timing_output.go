package main

import (
	"fmt"
	"io"
	"time"

	"glaze/internal/buildpipeline"
)

var timingLines = []struct {
	stage buildpipeline.Stage
	label string
}{
	{buildpipeline.StagePreprocess, "preprocessed"},
	{buildpipeline.StageCheck, "checked"},
	{buildpipeline.StageEmit, "emitted"},
	{buildpipeline.StageBundle, "bundled"},
	{buildpipeline.StageWatch, "first build"},
}

func printStageTimings(out io.Writer, timings buildpipeline.Timings) error {
	if out == nil {
		return nil
	}
	for _, line := range timingLines {
		if !timings.Has(line.stage) {
			continue
		}
		if _, err := fmt.Fprintf(out, "%s %.1f ms\n", line.label, toMillis(timings.Duration(line.stage))); err != nil {
			return err
		}
	}
	return nil
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
