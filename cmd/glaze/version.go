package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"glaze/internal/version"
)

const versionTagline = "units in, pixels out"

// versionInfo is the build metadata linked into the binary.
type versionInfo struct {
	Version    string
	GitCommit  string
	GitMessage string
	BuildDate  string
}

// versionOptions picks the optional metadata to print.
type versionOptions struct {
	showHash    bool
	showMessage bool
	showDate    bool
}

func (o versionOptions) any() bool { return o.showHash || o.showMessage || o.showDate }

type versionPayload struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	Tagline    string `json:"tagline"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show glaze build fingerprints",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	f := versionCmd.Flags()
	f.Bool("hash", false, "include git commit hash")
	f.Bool("message", false, "include git commit message")
	f.Bool("date", false, "include build timestamp")
	f.Bool("full", false, "show every recorded bit of build metadata")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	full, _ := f.GetBool("full")
	hash, _ := f.GetBool("hash")
	msg, _ := f.GetBool("message")
	date, _ := f.GetBool("date")
	opts := versionOptions{showHash: hash || full, showMessage: msg || full, showDate: date || full}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	info := versionInfo{
		Version:    cmp.Or(strings.TrimSpace(version.Version), "dev"),
		GitCommit:  strings.TrimSpace(version.GitCommit),
		GitMessage: strings.TrimSpace(version.GitMessage),
		BuildDate:  strings.TrimSpace(version.BuildDate),
	}
	switch strings.ToLower(format) {
	case "json":
		return renderVersionJSON(cmd.OutOrStdout(), info, opts)
	case "pretty":
		renderVersionPretty(cmd.OutOrStdout(), info, opts)
		return nil
	}
	return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
}

// payload fills the optional fields the options ask for; missing metadata
// reads "unknown".
func (info versionInfo) payload(opts versionOptions) versionPayload {
	pick := func(on bool, v string) string {
		if !on {
			return ""
		}
		return cmp.Or(v, "unknown")
	}
	return versionPayload{
		Tool:       "glaze",
		Version:    info.Version,
		Tagline:    versionTagline,
		GitCommit:  pick(opts.showHash, info.GitCommit),
		GitMessage: pick(opts.showMessage, info.GitMessage),
		BuildDate:  pick(opts.showDate, info.BuildDate),
	}
}

func renderVersionPretty(out io.Writer, info versionInfo, opts versionOptions) {
	p := info.payload(opts)
	fmt.Fprintf(out, "%s %s: %s\n", p.Tool, version.Colored(p.Version), p.Tagline)
	for _, row := range [][2]string{{"commit: ", p.GitCommit}, {"message:", p.GitMessage}, {"built:  ", p.BuildDate}} {
		if row[1] != "" {
			fmt.Fprintf(out, "%s %s\n", row[0], row[1])
		}
	}
	if !opts.any() {
		fmt.Fprintln(out, "set --hash, --message, --date, or --full for more build trivia")
	}
}

func renderVersionJSON(out io.Writer, info versionInfo, opts versionOptions) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(info.payload(opts))
}
