package lexer

// Grammar описывает лексическую грамматику исходного языка.
// Классификатор знает только грубые состояния, поэтому грамматика сводится к набору маркеров.
type Grammar struct {
	LineComment string // "//"
	BlockOpen   string // "/*"
	BlockClose  string // "*/"
	Quotes      string // одиночные строковые кавычки
	Template    rune   // многострочный шаблон с ${...}; 0 если нет
	Fence       string // блок текста с отступами, тоже с ${...}; "" если нет
	Regex       bool   // распознавать /regex/ литералы
	// DirectiveMarker starts a preprocessor line when it is the first
	// non-blank rune of a line; 0 disables directives.
	DirectiveMarker rune
}

// TypeScript is the grammar of .ts/.tsx/.js sources.
var TypeScript = Grammar{
	LineComment: "//",
	BlockOpen:   "/*",
	BlockClose:  "*/",
	Quotes:      `"'`,
	Template:    '`',
	Fence:       "```",
	Regex:       true,
}

// DirectiveSigil is the marker used by macro directives.
const DirectiveSigil = '#'

// WithDirectives returns a copy of g that classifies preprocessor lines.
func (g Grammar) WithDirectives() Grammar {
	g.DirectiveMarker = DirectiveSigil
	return g
}
