package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"glaze/internal/buildpipeline"
	"glaze/internal/bundle"
	"glaze/internal/driver"
	"glaze/internal/preprocess"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] [entries...]",
	Short: "Preprocess and compile a project",
	Long: `Compile expands the entries (files or directories) from glaze.toml or
the command line, preprocesses every input and runs the check and emit
passes once. Diagnostics are printed in discovery order.`,
	RunE: runCompile,
}

func init() {
	addCompileFlags(compileCmd)
	compileCmd.Flags().Bool("bundle", false, "bundle the [bundle] entries after an error-free compile")
}

func runCompile(cmd *cobra.Command, args []string) error {
	inv, err := loadInvocation(cmd, args)
	if err != nil {
		return err
	}
	req := buildpipeline.CompileRequest{Options: inv.driver, BaseDir: inv.baseDir}

	withBundle, _ := cmd.Flags().GetBool("bundle")
	if withBundle {
		opts, err := inv.bundleOptions()
		if err != nil {
			return err
		}
		req.Bundle = &opts
	}

	out := cmd.OutOrStdout()
	var res buildpipeline.CompileResult
	if shouldUseTUI(inv.ui, inv.json) {
		res, err = runCompileWithUI(cmd.Context(), "glaze compile", nil, &req)
	} else {
		res, err = buildpipeline.Compile(cmd.Context(), &req)
	}
	if err != nil {
		return err
	}
	return inv.finishCompile(out, res, req.Bundle)
}

// finishCompile prints diagnostics, timings and the bundle outcome.
func (inv *invocation) finishCompile(out io.Writer, res buildpipeline.CompileResult, bundled *bundle.Options) error {
	compiled := res.Compile
	if inv.sort {
		compiled.SortDiagnostics()
	}
	errs, err := inv.printDiagnostics(out, compiled.Diagnostics())
	if err != nil {
		return err
	}
	if inv.timings {
		if err := inv.printTimings(out, res, compiled); err != nil {
			return err
		}
	}
	if res.Bundle != nil {
		bundleErrs, err := inv.printDiagnostics(out, res.Bundle.Diagnostics)
		if err != nil {
			return err
		}
		errs += bundleErrs
	}
	if errs > 0 {
		return errReported
	}
	if !inv.quiet && !inv.json {
		fmt.Fprintf(out, "compiled %d inputs, wrote %d files\n", len(compiled.Inputs), len(compiled.Outputs()))
		if res.Bundle != nil && bundled.Write {
			fmt.Fprintf(out, "bundled %s\n", formatPathForOutput(inv.baseDir, bundled.Outfile))
		}
	}
	return nil
}

func (inv *invocation) printTimings(out io.Writer, res buildpipeline.CompileResult, compiled *driver.CompileResult) error {
	if inv.json {
		data, err := compiled.TimingsJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	if err := printStageTimings(out, res.Timings); err != nil {
		return err
	}
	if len(compiled.Timings.Phases) == 0 {
		return nil
	}
	_, err := io.WriteString(out, compiled.Timings.Summary())
	return err
}

// bundleOptions builds bundler options from [bundle], falling back to the
// compile entries when no manifest is present.
func (inv *invocation) bundleOptions() (bundle.Options, error) {
	if inv.manifest != nil {
		opts, err := inv.manifest.BundleOptions()
		if err != nil {
			return bundle.Options{}, err
		}
		opts.Aliases = inv.driver.Aliases
		return opts, nil
	}
	return bundle.Options{
		Entries:  inv.driver.Entries,
		Aliases:  inv.driver.Aliases,
		WorkDir:  inv.baseDir,
		Pipeline: preprocess.New(inv.driver.Transform),
	}, nil
}
