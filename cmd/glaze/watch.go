package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"glaze/internal/buildpipeline"
	"glaze/internal/diag"
	"glaze/internal/driver"
	"glaze/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] [entries...]",
	Short: "Recompile on every change",
	Long: `Watch runs a compile session that rebuilds whenever an input or a file
it imports changes. Diagnostics are reprinted after every build, ordered by
the position of their file in the import graph.`,
	RunE: runWatch,
}

func init() {
	addCompileFlags(watchCmd)
	watchCmd.Flags().Int("verbosity", 0, "status output (0 = idle summary, 1 = build events, 2 = debug)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	inv, err := loadInvocation(cmd, args)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("verbosity") {
		inv.driver.Verbosity, _ = cmd.Flags().GetInt("verbosity")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := startWatchSession(ctx, inv, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer res.Stop()
	setHeartbeatProbe(res.Status)

	<-ctx.Done()
	return res.Err()
}

// startWatchSession starts a watch compile whose flushes are printed to out
// and whose status lines go to log.
func startWatchSession(ctx context.Context, inv *invocation, out, log io.Writer) (*driver.CompileResult, error) {
	opts := inv.driver
	opts.Watch = true
	opts.Log = log

	var mu sync.Mutex
	opts.OnFlush = func(diags []diag.Diagnostic) {
		mu.Lock()
		defer mu.Unlock()
		// файлы могли измениться с прошлой сборки
		inv.report.Source = sourceLines()
		if _, err := inv.printDiagnostics(out, diags); err != nil {
			fmt.Fprintf(log, "watch: %v\n", err)
		}
	}
	if opts.Verbosity >= watch.VerbosityDebug {
		opts.OnChange = func(path string) {
			fmt.Fprintf(log, "wrote %s\n", formatPathForOutput(inv.baseDir, path))
		}
	}

	res, err := buildpipeline.Compile(ctx, &buildpipeline.CompileRequest{Options: opts, BaseDir: inv.baseDir})
	if err != nil {
		return nil, err
	}
	return res.Compile, nil
}
