package rewrite

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"glaze/internal/lexer"
)

var (
	// длины, вьюпорт и проценты; vmin/vmax стоят раньше vh/vw
	unitPattern = regexp.MustCompile(
		`\b\d+(?:\.\d+)?(?:px|rem|em|vmin|vmax|vh|vw|ch|ex|cm|mm|pt|pc)\b|\b\d+(?:\.\d+)?%`)
	colorPattern = regexp.MustCompile(
		`#(?:[0-9a-fA-F]{8}|[0-9a-fA-F]{6}|[0-9a-fA-F]{4}|[0-9a-fA-F]{3})\b`)
)

// QuoteUnits wraps bare unit literals such as 10px, 1.5rem or 50% in double quotes.
// A percent literal directly followed by an operand (10%3) is a modulo and stays.
func QuoteUnits(code string) string {
	return quoteMatches(unitPattern, code, func(start, end int) bool {
		if start > 0 && code[start-1] == '.' {
			return false
		}
		if code[end-1] == '%' && end < len(code) {
			r, _ := utf8.DecodeRuneInString(code[end:])
			if lexer.IsIdentPart(r) || r == '(' {
				return false
			}
		}
		return true
	})
}

// QuoteColors wraps #rgb, #rgba, #rrggbb and #rrggbbaa literals in double quotes.
// Private member access (this.#abc) and identifiers ending in '#' are left alone.
func QuoteColors(code string) string {
	return quoteMatches(colorPattern, code, func(start, _ int) bool {
		if start == 0 {
			return true
		}
		r, _ := utf8.DecodeLastRuneInString(code[:start])
		return r != '.' && !lexer.IsIdentPart(r)
	})
}

func quoteMatches(re *regexp.Regexp, s string, keep func(start, end int) bool) string {
	locs := re.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2*len(locs))
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if !keep(start, end) {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteByte('"')
		b.WriteString(s[start:end])
		b.WriteByte('"')
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}
