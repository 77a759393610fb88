package macro

import (
	"strings"

	"glaze/internal/lexer"
	"glaze/internal/token"
)

type phase uint8

const (
	phaseType phase = iota
	phasePreName
	phaseName
	phaseArgs
	phaseValue
)

type directive struct {
	kind   string
	name   string
	params []string
	value  string
}

// Extract registers every #define directive of text and drops it from the
// output. A dropped directive leaves its line breaks behind so line numbers
// of the following code do not move. Other directives are kept verbatim.
func Extract(text string) Result {
	toks := lexer.Scan(lexer.TypeScript.WithDirectives(), text)
	res := Result{Macros: Table{}}

	var out strings.Builder
	out.Grow(len(text))
	copied := uint32(0)

	for i := 0; i < len(toks); {
		if !toks[i].InDirective() {
			i++
			continue
		}
		j := i
		for j < len(toks) && toks[j].InDirective() {
			j++
		}
		span := toks[i:j]
		i = j

		d := parseDirective(span)
		if d.kind != DefineKeyword || d.name == "" {
			continue
		}
		if _, dup := res.Macros[d.name]; dup {
			res.Redefined = append(res.Redefined, d.name)
		}
		res.Macros[d.name] = &Definition{Name: d.name, Params: d.params, Value: d.value}

		out.WriteString(text[copied:span[0].Off])
		for _, tok := range span {
			if tok.IsLineBreak() {
				out.WriteByte('\n')
			}
		}
		copied = span[len(span)-1].End()
	}
	out.WriteString(text[copied:])
	res.Text = out.String()
	return res
}

// parseDirective разбирает захваченный отрезок директивы:
// type -> pre_name -> name -> args -> value.
func parseDirective(span []token.ScanToken) directive {
	var kind, name, args, value strings.Builder
	ph := phaseType
	own := span[0].Paren
	argsDepth := int32(0)
	hasParams := false
	swallow := false

	// span[0] это сам маркер
	for k := 1; k < len(span); k++ {
		tok := span[k]
		r := tok.Ch
		switch ph {
		case phaseType:
			if tok.IsSpace() {
				ph = phasePreName
				continue
			}
			kind.WriteRune(r)
		case phasePreName, phaseName:
			if ph == phasePreName && tok.IsSpace() {
				continue
			}
			ph = phaseName
			switch {
			case r == '(' && tok.IsPlain():
				ph = phaseArgs
				hasParams = true
				argsDepth = tok.Paren - 1
			case tok.IsSpace() && tok.Paren == own:
				ph = phaseValue
			default:
				name.WriteRune(r)
			}
		case phaseArgs:
			if r == ')' && tok.IsPlain() && tok.Paren == argsDepth {
				ph = phaseValue
				continue
			}
			args.WriteRune(r)
		case phaseValue:
			if tok.Flags.Has(token.Comment) {
				continue
			}
			if swallow {
				if tok.IsLineBreak() {
					swallow = false
				}
				continue
			}
			if r == '\\' && tok.IsPlain() && continuesLine(span[k+1:]) {
				swallow = true
				continue
			}
			value.WriteRune(r)
		}
	}

	d := directive{
		kind:  kind.String(),
		name:  strings.TrimSpace(name.String()),
		value: strings.TrimSpace(value.String()),
	}
	if hasParams {
		d.params = SplitArgs(args.String())
	}
	return d
}

// continuesLine reports whether rest starts with a line break, optionally after '\r'.
func continuesLine(rest []token.ScanToken) bool {
	if len(rest) > 0 && rest[0].Ch == '\r' {
		rest = rest[1:]
	}
	return len(rest) > 0 && rest[0].IsLineBreak()
}
