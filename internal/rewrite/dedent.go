package rewrite

import (
	"strconv"
	"strings"

	"glaze/internal/lexer"
	"glaze/internal/token"
)

// Fence delimits a multi-line text block.
const Fence = "```"

// DedentFences replaces every ```...``` block in source s by a single-backtick
// template literal holding the dedented block text. ${...} interpolations are
// kept verbatim. An opening fence without a closing one leaves the rest of s
// unmodified.
func DedentFences(s string) string {
	if !strings.Contains(s, Fence) {
		return s
	}
	toks := lexer.Scan(lexer.TypeScript, s)
	var b strings.Builder
	b.Grow(len(s))
	eachRun(s, toks, func(run []token.ScanToken, text string) {
		if run[0].Flags.Has(token.Fence) {
			b.WriteString(fenced(s, run, nil))
			return
		}
		b.WriteString(text)
	})
	return b.String()
}

// fenced собирает подряд идущие fence-блоки из run в шаблонные литералы.
// Код каждой интерполяции проходит через interp, если он задан.
func fenced(src string, run []token.ScanToken, interp func(string) string) string {
	var b strings.Builder
	for i := 0; i < len(run); {
		if !strings.HasPrefix(src[run[i].Off:], Fence) {
			b.WriteString(src[run[i].Off : run[i].Off+uint32(run[i].Width)])
			i++
			continue
		}
		end, lit, ok := fenceBody(src, run, i, interp)
		if !ok {
			// незакрытый блок остаётся как есть
			b.WriteString(src[run[i].Off:runEnd(src, run)])
			break
		}
		b.WriteByte('`')
		b.WriteString(lit)
		b.WriteByte('`')
		i = end
	}
	return b.String()
}

// fenceBody разбирает блок, открытый на run[open]. Возвращает индекс токена за
// закрывающим маркером и готовое тело литерала.
func fenceBody(src string, run []token.ScanToken, open int, interp func(string) string) (int, string, bool) {
	depth := run[open].Brace
	var (
		text    strings.Builder
		subs    []string
		escaped bool
	)
	for i := open + len(Fence); i < len(run); {
		t := run[i]
		ch := src[t.Off : t.Off+uint32(t.Width)]
		switch {
		case t.State() == token.StateString && t.Brace == depth:
			if !escaped && strings.HasPrefix(src[t.Off:], Fence) {
				return i + len(Fence), fill(escapeBackticks(Dedent(text.String())), subs), true
			}
			escaped = !escaped && t.Ch == '\\'
			text.WriteString(ch)
			i++
		case t.Ch == '$' && t.IsPlain() && i+1 < len(run) && run[i+1].Ch == '{':
			closing := interpolationEnd(run, i+2, depth)
			if closing < 0 {
				return 0, "", false
			}
			code := src[run[i+1].Off+1 : run[closing].Off]
			if interp != nil {
				code = interp(code)
			}
			text.WriteString(placeholder(len(subs)))
			subs = append(subs, "${"+code+"}")
			escaped = false
			i = closing + 1
		default:
			text.WriteString(ch)
			i++
		}
	}
	return 0, "", false
}

// interpolationEnd ищет '}', закрывающий ${ на глубине depth.
func interpolationEnd(run []token.ScanToken, from int, depth int32) int {
	for j := from; j < len(run); j++ {
		if t := run[j]; t.Ch == '}' && t.IsPlain() && t.Brace == depth {
			return j
		}
	}
	return -1
}

func placeholder(n int) string {
	return "\x00" + strconv.Itoa(n) + "\x00"
}

func fill(s string, subs []string) string {
	for n, sub := range subs {
		s = strings.Replace(s, placeholder(n), sub, 1)
	}
	return s
}

func runEnd(src string, run []token.ScanToken) uint32 {
	last := run[len(run)-1]
	return min(last.Off+uint32(last.Width), uint32(len(src)))
}

// Dedent strips one leading and one trailing blank line, then removes the
// indentation of the first indented non-empty line from every line that starts
// with it. Lines that do not share the prefix are kept as they are.
func Dedent(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 && isBlank(s[:i]) {
		s = s[i+1:]
	}
	if i := strings.LastIndexByte(s, '\n'); i >= 0 && isBlank(s[i+1:]) {
		s = s[:i]
	}

	lines := strings.Split(s, "\n")
	indent := ""
	for _, line := range lines {
		if isBlank(line) || (line[0] != ' ' && line[0] != '\t') {
			continue
		}
		indent = line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		break
	}
	if indent == "" {
		return s
	}
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, indent)
	}
	return strings.Join(lines, "\n")
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// escapeBackticks экранирует '`', которые ещё не экранированы.
func escapeBackticks(s string) string {
	if !strings.Contains(s, "`") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	backslashes := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '`' && backslashes%2 == 0 {
			b.WriteByte('\\')
		}
		if c == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
		b.WriteByte(c)
	}
	return b.String()
}
