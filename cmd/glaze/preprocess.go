package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"glaze/internal/driver"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess [flags] file",
	Short: "Print a file after unit, color and macro rewriting",
	Long: `Preprocess runs the rewriter and the macro stage over one file and
prints the text the compiler would see.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreprocess,
}

func init() {
	preprocessCmd.Flags().Bool("macros", false, "list the macro table after the text")
}

type preprocessPayload struct {
	Path      string   `json:"path"`
	Text      string   `json:"text"`
	Macros    []string `json:"macros"`
	Redefined []string `json:"redefined,omitempty"`
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	showMacros, err := cmd.Flags().GetBool("macros")
	if err != nil {
		return err
	}

	res, err := driver.PreprocessFile(cmd.Context(), args[0], nil)
	if err != nil {
		return fmt.Errorf("preprocessing failed: %w", err)
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		return writePreprocessJSON(out, res)
	case "pretty":
		return writePreprocessPretty(out, res, showMacros)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writePreprocessPretty(out io.Writer, res *driver.PreprocessResult, showMacros bool) error {
	if _, err := io.WriteString(out, res.Text); err != nil {
		return err
	}
	for _, name := range res.Redefined {
		fmt.Fprintf(out, "// redefined: %s\n", name)
	}
	if showMacros && len(res.Macros) > 0 {
		_, err := fmt.Fprintf(out, "// macros: %s\n", strings.Join(res.Macros, ", "))
		return err
	}
	return nil
}

func writePreprocessJSON(out io.Writer, res *driver.PreprocessResult) error {
	payload := preprocessPayload{
		Path:      res.Path,
		Text:      res.Text,
		Macros:    res.Macros,
		Redefined: res.Redefined,
	}
	if payload.Macros == nil {
		payload.Macros = []string{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
