package driver

import (
	"encoding/json"

	"glaze/internal/observ"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Inputs  int                  `json:"inputs"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// TimingsJSON renders the phase timings of a one-shot compile as one JSON object.
func (r *CompileResult) TimingsJSON() ([]byte, error) {
	kind := "compile"
	if r.Watching() {
		kind = "watch"
	}
	return json.Marshal(timingPayload{
		Kind:    kind,
		Inputs:  len(r.Inputs),
		TotalMS: r.Timings.TotalMS,
		Phases:  r.Timings.Phases,
	})
}
