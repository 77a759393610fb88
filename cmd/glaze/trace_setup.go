package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"glaze/internal/trace"
)

// setupTracing inspects trace-related flags and attaches a tracer to the
// command context. It returns a cleanup function that flushes and closes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()

	traceOutput, err := flags.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	heartbeatInterval, err := flags.GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff && traceOutput != "" && !flags.Changed("trace-level") {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, err
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceOutput,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	active = traceSession{tracer: tracer, mode: mode, output: traceOutput}
	if heartbeatInterval > 0 {
		active.heartbeat = trace.StartHeartbeat(tracer, heartbeatInterval)
	}

	cleanup := func() {
		active.heartbeat.Stop()
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
		active = traceSession{}
	}
	return cleanup, nil
}

// traceSession is the tracer of the running command.
type traceSession struct {
	tracer    trace.Tracer
	heartbeat *trace.Heartbeat
	mode      trace.StorageMode
	output    string
}

var active traceSession

// setHeartbeatProbe attaches probe to the running heartbeat, if any.
func setHeartbeatProbe(probe func() string) {
	active.heartbeat.SetProbe(probe)
}

// dumpTraceRing writes the in-memory events after a failed command. In ring
// mode they go to the --trace path; with both sinks that path already holds
// the stream, so the ring goes to stderr.
func dumpTraceRing() error {
	ring, ok := trace.RingOf(active.tracer)
	if !ok {
		return nil
	}
	path := active.output
	if active.mode == trace.ModeBoth {
		path = "-"
	}
	if n := ring.Dropped(); n > 0 {
		fmt.Fprintf(os.Stderr, "trace: %d earlier events were dropped from the ring\n", n)
	}
	return ring.DumpFile(path, trace.FormatAuto)
}
