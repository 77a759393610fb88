// Package rewrite applies the lexically scoped source rewrites that run before
// macro processing: bare CSS-style units and hex colours in code become string
// literals, and triple-backtick text blocks are dedented.
package rewrite

import (
	"strings"

	"glaze/internal/lexer"
	"glaze/internal/token"
)

// Rewrite runs one left-to-right pass over text. Runs of runes sharing a coarse
// state are collected into a batch and flushed on every state change:
// code batches get QuoteUnits then QuoteColors, comments, strings and regex
// literals pass through untouched. A triple-backtick block is one batch
// together with its ${...} code; it becomes a dedented template literal and
// its interpolations are rewritten recursively.
func Rewrite(text string) string {
	toks := lexer.Scan(lexer.TypeScript, text)
	if len(toks) == 0 {
		return text
	}

	var out strings.Builder
	out.Grow(len(text) + len(text)/8)
	eachRun(text, toks, func(run []token.ScanToken, batch string) {
		if run[0].Flags.Has(token.Fence) {
			out.WriteString(fenced(text, run, Rewrite))
			return
		}
		out.WriteString(flush(run[0].State(), batch))
	})
	return out.String()
}

// eachRun делит toks на батчи одного состояния; fence-блок целиком один батч.
func eachRun(text string, toks []token.ScanToken, fn func(run []token.ScanToken, batch string)) {
	for i := 0; i < len(toks); {
		key := batchKey(toks[i])
		j := i + 1
		for j < len(toks) && batchKey(toks[j]) == key {
			j++
		}
		end := uint32(len(text))
		if j < len(toks) {
			end = toks[j].Off
		}
		fn(toks[i:j], text[toks[i].Off:end])
		i = j
	}
}

const fenceBatch = 0xff

func batchKey(t token.ScanToken) uint8 {
	if t.Flags.Has(token.Fence) {
		return fenceBatch
	}
	return uint8(t.State())
}

func flush(state token.State, batch string) string {
	if state == token.StateCode {
		return QuoteColors(QuoteUnits(batch))
	}
	return batch
}
