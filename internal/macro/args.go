package macro

import (
	"strings"

	"glaze/internal/lexer"
)

// SplitArgs splits the text between a call's parentheses on top-level commas.
// Commas nested in (), [] or {} or inside strings, comments and regex literals
// do not split. Each argument is trimmed and loses one pair of matching quotes.
// Empty input yields an empty, non-nil slice.
func SplitArgs(text string) []string {
	args := []string{}
	if strings.TrimSpace(text) == "" {
		return args
	}
	toks := lexer.Scan(lexer.TypeScript, text)
	start := uint32(0)
	for _, tok := range toks {
		if tok.Ch != ',' || !tok.IsPlain() {
			continue
		}
		if tok.Brace != 0 || tok.Paren != 0 || tok.Bracket != 0 {
			continue
		}
		args = append(args, cleanArg(text[start:tok.Off]))
		start = tok.End()
	}
	return append(args, cleanArg(text[start:]))
}

func cleanArg(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		q := s[0]
		if (q == '"' || q == '\'' || q == '`') && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}
	return s
}
