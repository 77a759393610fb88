package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"glaze/internal/diag"
	"glaze/internal/diagfmt"
	"glaze/internal/driver"
	"glaze/internal/project"
	"glaze/internal/source"
)

const noManifestMessage = "no glaze.toml found\nplease specify the entries explicitly, e.g.:\n  glaze compile src/"

// errReported marks a failure whose details were already printed.
var errReported = errors.New("reported")

// invocation is the merged view of glaze.toml and the command line.
type invocation struct {
	manifest *project.Manifest
	driver   driver.Options
	report   diagfmt.ReportOpts
	baseDir  string
	json     bool
	short    bool // --format short: one sorted line per diagnostic
	quiet    bool
	timings  bool
	sort     bool
	ui       uiMode
}

func addCompileFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("config", "", "path to glaze.toml (default: search upwards from the working directory)")
	flags.String("out-dir", "", "output directory")
	flags.String("root-dir", "", "root of the source tree mirrored under --out-dir")
	flags.String("target", "", "language target (es2015..es2022, esnext)")
	flags.String("module", "", "module format (preserve|esnext|commonjs)")
	flags.StringSlice("exclude", nil, "exclude patterns for directory entries")
	flags.StringToString("alias", nil, "import alias prefix=dir (repeatable)")
	flags.Bool("exact-files", false, "hide every file that is not an input from the compiler")
	flags.Bool("declaration", false, "emit .d.ts stubs")
	flags.Bool("incremental", false, "reuse unchanged outputs across runs")
	flags.Bool("no-emit", false, "check only")
	flags.Int("jobs", 0, "parallel preprocessing jobs (0 = GOMAXPROCS)")
	flags.String("report", "", "diagnostic report mode (all|file|first-file)")
	flags.String("debug-file", "", "file reported in --report file mode")
	flags.Bool("sort", false, "sort diagnostics by file, line and column")
	flags.String("ui", "auto", "progress UI (auto|on|off)")
}

// loadInvocation reads the manifest (unless positional entries make it
// optional) and applies command line overrides on top of it.
func loadInvocation(cmd *cobra.Command, args []string) (*invocation, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	inv := &invocation{baseDir: cwd}
	var manifest *project.Manifest
	switch {
	case configPath != "":
		manifest, err = project.Load(configPath)
		if err != nil {
			return nil, err
		}
	default:
		var found bool
		manifest, found, err = project.LoadFromDir(cwd)
		if err != nil {
			// явные входы позволяют обойтись без манифеста без [compile]
			if !(found && len(args) > 0 && errors.Is(err, project.ErrCompileSectionMissing)) {
				return nil, err
			}
			manifest = nil
		}
	}

	if manifest != nil {
		inv.manifest = manifest
		inv.driver = manifest.DriverOptions()
		inv.report = manifest.ReportOptions()
		inv.baseDir = manifest.Root
	} else {
		inv.report = diagfmt.ReportOpts{Max: diagfmt.DefaultMax}
	}
	inv.report.BaseDir = inv.baseDir

	if len(args) > 0 {
		entries := make([]string, len(args))
		for i, arg := range args {
			entries[i] = absFrom(cwd, arg)
		}
		inv.driver.Entries = entries
	}
	if len(inv.driver.Entries) == 0 {
		return nil, errors.New(noManifestMessage)
	}

	if err := inv.applyFlags(cmd, cwd); err != nil {
		return nil, err
	}
	return inv, nil
}

func (inv *invocation) applyFlags(cmd *cobra.Command, cwd string) error {
	flags := cmd.Flags()
	o := &inv.driver

	if flags.Changed("out-dir") {
		v, _ := flags.GetString("out-dir")
		o.Compiler.OutDir = absFrom(cwd, v)
	}
	if flags.Changed("root-dir") {
		v, _ := flags.GetString("root-dir")
		o.Compiler.RootDir = absFrom(cwd, v)
	}
	if flags.Changed("target") {
		o.Compiler.TargetName, _ = flags.GetString("target")
	}
	if flags.Changed("module") {
		o.Compiler.ModuleName, _ = flags.GetString("module")
	}
	if flags.Changed("exclude") {
		o.Exclude, _ = flags.GetStringSlice("exclude")
	}
	if flags.Changed("alias") {
		aliases, _ := flags.GetStringToString("alias")
		merged := make(map[string]string, len(o.Aliases)+len(aliases))
		for prefix, dir := range o.Aliases {
			merged[prefix] = dir
		}
		for prefix, dir := range aliases {
			merged[prefix] = absFrom(cwd, dir)
		}
		o.Aliases = merged
	}
	if flags.Changed("exact-files") {
		o.ExactFiles, _ = flags.GetBool("exact-files")
	}
	if flags.Changed("declaration") {
		o.Compiler.Declaration, _ = flags.GetBool("declaration")
	}
	if flags.Changed("incremental") {
		o.Compiler.Incremental, _ = flags.GetBool("incremental")
	}
	if flags.Changed("no-emit") {
		o.Compiler.NoEmit, _ = flags.GetBool("no-emit")
	}
	o.Jobs, _ = flags.GetInt("jobs")

	if flags.Changed("report") {
		v, _ := flags.GetString("report")
		mode, err := diagfmt.ParseMode(v)
		if err != nil {
			return err
		}
		inv.report.Mode = mode
	}
	if flags.Changed("debug-file") {
		v, _ := flags.GetString("debug-file")
		inv.report.File = absFrom(cwd, v)
	}
	inv.sort, _ = flags.GetBool("sort")
	uiValue, _ := flags.GetString("ui")
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	inv.ui = mode

	return inv.applyOutputFlags(cmd)
}

// applyOutputFlags reads the persistent flags shared by every command that
// prints diagnostics.
func (inv *invocation) applyOutputFlags(cmd *cobra.Command) error {
	root := cmd.Root().PersistentFlags()

	maxErrors, err := root.GetInt("max-errors")
	if err != nil {
		return err
	}
	if maxErrors >= 0 {
		inv.report.Max = maxErrors
	}
	pathMode, err := root.GetString("path-mode")
	if err != nil {
		return err
	}
	if inv.report.PathMode, err = diagfmt.ParsePathMode(pathMode); err != nil {
		return err
	}
	colorFlag, err := root.GetString("color")
	if err != nil {
		return err
	}
	if inv.report.Color, err = useColor(colorFlag, os.Stdout); err != nil {
		return err
	}
	format, err := root.GetString("format")
	if err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case "pretty":
	case "json":
		inv.json = true
	case "short":
		inv.short = true
	default:
		return fmt.Errorf("unknown format: %s (expected pretty|short|json)", format)
	}
	inv.quiet, _ = root.GetBool("quiet")
	inv.timings, _ = root.GetBool("timings")
	inv.report.Source = sourceLines()
	return nil
}

// printDiagnostics writes diags in the selected format. It returns the number
// of error diagnostics.
func (inv *invocation) printDiagnostics(out io.Writer, diags []diag.Diagnostic) (int, error) {
	errs := 0
	for _, d := range diags {
		if d.Severity >= diag.SevError {
			errs++
		}
	}
	if inv.json {
		return errs, diagfmt.JSON(out, diags, diagfmt.JSONOpts{
			PathMode: inv.report.PathMode,
			BaseDir:  inv.report.BaseDir,
			Max:      inv.report.Max,
		})
	}
	if len(diags) == 0 {
		return 0, nil
	}
	if inv.short {
		_, err := fmt.Fprintln(out, diag.FormatShortDiagnostics(diags, inv.report.BaseDir))
		return errs, err
	}
	diagfmt.Report(out, diags, inv.report)
	return errs, nil
}

// sourceLines serves context lines for pretty diagnostics, loading each file once.
func sourceLines() func(file string, line int) (string, bool) {
	fs := source.NewFileSet()
	return func(file string, line int) (string, bool) {
		f, ok := fs.Lookup(file)
		if !ok {
			id, err := fs.Load(file)
			if err != nil {
				return "", false
			}
			f = fs.Get(id)
		}
		text, ok := f.Line(line)
		return text, ok && text != ""
	}
}

func absFrom(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
