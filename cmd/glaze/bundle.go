package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"glaze/internal/bundle"
	"glaze/internal/diagfmt"
	"glaze/internal/preprocess"
	"glaze/internal/project"
	"glaze/internal/toolchain"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle [flags] [entries...]",
	Short: "Bundle entry points into one file",
	Long: `Bundle resolves the entry points and their imports into a single output.
Sources are preprocessed on load unless --no-preprocess is given. Without
--outfile the bundle is printed to standard output.`,
	RunE: runBundle,
}

func init() {
	flags := bundleCmd.Flags()
	flags.String("config", "", "path to glaze.toml (default: search upwards from the working directory)")
	flags.String("outfile", "", "write the bundle to this file")
	flags.String("platform", "", "target platform (browser|node|neutral)")
	flags.String("target", "", "language target (es2015..es2022, esnext)")
	flags.String("output-format", "", "bundle module format (iife|esm|cjs)")
	flags.Bool("minify", false, "minify whitespace, identifiers and syntax")
	flags.Bool("tree-shake", false, "drop unused code")
	flags.Bool("sourcemap", false, "write an external source map next to --outfile")
	flags.StringSlice("external", nil, "module paths left out of the bundle")
	flags.StringToString("alias", nil, "import alias prefix=dir (repeatable)")
	flags.Bool("no-preprocess", false, "bundle sources without unit, color and macro rewriting")
}

func runBundle(cmd *cobra.Command, args []string) error {
	inv := &invocation{report: diagfmt.ReportOpts{Max: diagfmt.DefaultMax}}
	if err := inv.applyOutputFlags(cmd); err != nil {
		return err
	}
	opts, err := loadBundleOptions(cmd, args)
	if err != nil {
		return err
	}
	inv.baseDir = opts.WorkDir
	inv.report.BaseDir = opts.WorkDir

	res := bundle.Build(cmd.Context(), opts)
	return inv.finishBundle(cmd.OutOrStdout(), opts, res)
}

func (inv *invocation) finishBundle(out io.Writer, opts bundle.Options, res *bundle.Result) error {
	errs, err := inv.printDiagnostics(out, res.Diagnostics)
	if err != nil {
		return err
	}
	if errs > 0 {
		return errReported
	}
	if !opts.Write {
		_, err := io.WriteString(out, res.Code)
		return err
	}
	if !inv.quiet && !inv.json {
		fmt.Fprintf(out, "bundled %d inputs into %s\n", len(res.Inputs), formatPathForOutput(inv.baseDir, opts.Outfile))
	}
	return nil
}

// loadBundleOptions merges [bundle] from glaze.toml with the command line.
// Positional entries make the manifest optional.
func loadBundleOptions(cmd *cobra.Command, args []string) (bundle.Options, error) {
	flags := cmd.Flags()
	cwd, err := os.Getwd()
	if err != nil {
		return bundle.Options{}, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	configPath, _ := flags.GetString("config")
	var manifest *project.Manifest
	if configPath != "" {
		if manifest, err = project.Load(configPath); err != nil {
			return bundle.Options{}, err
		}
	} else {
		var found bool
		manifest, found, err = project.LoadFromDir(cwd)
		if err != nil && !(found && len(args) > 0 && errors.Is(err, project.ErrCompileSectionMissing)) {
			return bundle.Options{}, err
		}
		if err != nil {
			manifest = nil
		}
	}

	opts := bundle.Options{WorkDir: cwd, Pipeline: preprocess.New(nil)}
	if manifest != nil {
		if opts, err = manifest.BundleOptions(); err != nil {
			return bundle.Options{}, err
		}
	}
	if len(args) > 0 {
		opts.Entries = make([]string, len(args))
		for i, arg := range args {
			opts.Entries[i] = absFrom(cwd, arg)
		}
	}
	if len(opts.Entries) == 0 {
		return bundle.Options{}, errors.New(noManifestMessage)
	}

	if flags.Changed("outfile") {
		v, _ := flags.GetString("outfile")
		opts.Outfile = absFrom(cwd, v)
		opts.Write = opts.Outfile != ""
	}
	if flags.Changed("platform") {
		v, _ := flags.GetString("platform")
		if opts.Platform, err = bundle.ParsePlatform(v); err != nil {
			return bundle.Options{}, err
		}
	}
	if flags.Changed("target") {
		v, _ := flags.GetString("target")
		if opts.Target, err = toolchain.ParseTarget(v); err != nil {
			return bundle.Options{}, err
		}
	} else if manifest == nil {
		opts.Target, _ = toolchain.ParseTarget("")
	}
	if flags.Changed("output-format") {
		v, _ := flags.GetString("output-format")
		if opts.Format, err = bundle.ParseFormat(v); err != nil {
			return bundle.Options{}, err
		}
	}
	if flags.Changed("minify") {
		opts.Minify, _ = flags.GetBool("minify")
	}
	if flags.Changed("tree-shake") {
		opts.TreeShake, _ = flags.GetBool("tree-shake")
	}
	if flags.Changed("sourcemap") {
		opts.Sourcemap, _ = flags.GetBool("sourcemap")
	}
	if flags.Changed("external") {
		opts.External, _ = flags.GetStringSlice("external")
	}
	if flags.Changed("alias") {
		aliases, _ := flags.GetStringToString("alias")
		merged := make(map[string]string, len(opts.Aliases)+len(aliases))
		for prefix, dir := range opts.Aliases {
			merged[prefix] = dir
		}
		for prefix, dir := range aliases {
			merged[prefix] = absFrom(cwd, dir)
		}
		opts.Aliases = merged
	}
	if noPre, _ := flags.GetBool("no-preprocess"); noPre {
		opts.Pipeline = nil
	}
	return opts, nil
}
