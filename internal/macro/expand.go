package macro

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"glaze/internal/lexer"
	"glaze/internal/token"
)

// Expand replaces every whole-word use of a macro in the plain code of text.
// Strings, comments and regex literals are copied untouched. A leading '#'
// before a macro name is dropped. A function-like macro followed by an
// argument list has its parameters substituted; without one, its template is
// inserted as is. Names that are not in table stay literal text.
func Expand(text string, table Table) string {
	if len(table) == 0 {
		return text
	}
	re := table.pattern()
	toks := lexer.Scan(lexer.TypeScript, text)

	var out strings.Builder
	out.Grow(len(text))
	copied := 0

	for i := 0; i < len(toks); {
		if !toks[i].IsPlain() {
			i++
			continue
		}
		j := i
		for j < len(toks) && toks[j].IsPlain() {
			j++
		}
		base := int(toks[i].Off)
		run := text[base:int(toks[j-1].End())]
		next := j

		for _, m := range re.FindAllStringSubmatchIndex(run, -1) {
			start, nameStart, nameEnd := base+m[0], base+m[4], base+m[5]
			if start < copied {
				// поглощено аргументами предыдущего вызова
				continue
			}
			if start == nameStart && start > 0 {
				if r, _ := utf8.DecodeLastRuneInString(text[:start]); lexer.IsIdentPart(r) {
					continue
				}
			}
			if nameEnd < len(text) {
				if r, _ := utf8.DecodeRuneInString(text[nameEnd:]); lexer.IsIdentPart(r) {
					continue
				}
			}
			def, ok := table[text[nameStart:nameEnd]]
			if !ok {
				// U+FFFD в имени совпадает с невалидным байтом текста
				continue
			}
			out.WriteString(text[copied:start])
			copied = nameEnd
			body := def.Value
			if def.FunctionLike() {
				if args, after, ok := callArgs(toks, text, nameEnd); ok {
					body = def.substitute(SplitArgs(args))
					copied = after
					if k := tokenAt(toks, after); k > next {
						next = k
					}
				}
			}
			out.WriteString(body)
		}
		i = next
	}
	out.WriteString(text[copied:])
	return out.String()
}

// callArgs ищет список аргументов сразу после имени (допускаются пробелы в той же строке)
// и возвращает текст между скобками и смещение за закрывающей скобкой.
func callArgs(toks []token.ScanToken, text string, from int) (args string, after int, ok bool) {
	k := tokenAt(toks, from)
	for k < len(toks) && toks[k].IsSpace() && !toks[k].IsLineBreak() {
		k++
	}
	if k >= len(toks) || toks[k].Ch != '(' || !toks[k].IsPlain() {
		return "", 0, false
	}
	open := toks[k]
	depth := open.Paren - 1
	for m := k + 1; m < len(toks); m++ {
		tok := toks[m]
		if tok.Ch == ')' && tok.IsPlain() && tok.Paren == depth {
			return text[open.End():tok.Off], int(tok.End()), true
		}
	}
	return "", 0, false
}

func tokenAt(toks []token.ScanToken, off int) int {
	return sort.Search(len(toks), func(i int) bool { return int(toks[i].Off) >= off })
}

// substitute подставляет фактические аргументы вместо параметров за один проход.
// Недостающие аргументы становятся пустой строкой.
func (d *Definition) substitute(args []string) string {
	if d.paramRe == nil {
		quoted := make([]string, 0, len(d.Params))
		for _, p := range d.Params {
			if p != "" {
				quoted = append(quoted, regexp.QuoteMeta(p))
			}
		}
		if len(quoted) == 0 {
			return d.Value
		}
		d.paramRe = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	index := make(map[string]int, len(d.Params))
	for i, p := range d.Params {
		if _, seen := index[p]; !seen {
			index[p] = i
		}
	}

	locs := d.paramRe.FindAllStringIndex(d.Value, -1)
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if start > 0 {
			if r, _ := utf8.DecodeLastRuneInString(d.Value[:start]); lexer.IsIdentPart(r) {
				continue
			}
		}
		if end < len(d.Value) {
			if r, _ := utf8.DecodeRuneInString(d.Value[end:]); lexer.IsIdentPart(r) {
				continue
			}
		}
		i, ok := index[d.Value[start:end]]
		if !ok {
			continue
		}
		b.WriteString(d.Value[last:start])
		if i < len(args) {
			b.WriteString(args[i])
		}
		last = end
	}
	b.WriteString(d.Value[last:])
	return b.String()
}
