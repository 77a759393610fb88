package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"glaze/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file",
	Short: "Show the lexical classification of a source file",
	Long: `Tokenize classifies every rune of a file as code, string, comment or
regex (directive lines are marked) and prints the resulting segments.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokenize,
}

type segmentJSON struct {
	State     string `json:"state"`
	Directive bool   `json:"directive,omitempty"`
	Start     uint32 `json:"start"`
	End       uint32 `json:"end"`
	Line      uint32 `json:"line"`
	Column    uint32 `json:"column"`
	Text      string `json:"text"`
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	result, err := driver.Tokenize(args[0])
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "pretty":
		return formatSegmentsPretty(out, result.Segments)
	case "json":
		return formatSegmentsJSON(out, result.Segments)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

const segmentTextWidth = 60

func formatSegmentsPretty(out io.Writer, segs []driver.Segment) error {
	for _, s := range segs {
		state := s.State.String()
		if s.Directive {
			state += "+directive"
		}
		text := strconv.Quote(s.Text)
		text = runewidth.Truncate(text, segmentTextWidth, "...")
		if _, err := fmt.Fprintf(out, "%4d:%-3d %-18s %s\n", s.Pos.Line, s.Pos.Col, state, text); err != nil {
			return err
		}
	}
	return nil
}

func formatSegmentsJSON(out io.Writer, segs []driver.Segment) error {
	payload := make([]segmentJSON, len(segs))
	for i, s := range segs {
		payload[i] = segmentJSON{
			State:     s.State.String(),
			Directive: s.Directive,
			Start:     s.Start,
			End:       s.End,
			Line:      s.Pos.Line,
			Column:    s.Pos.Col,
			Text:      s.Text,
		}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
