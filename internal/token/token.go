package token

// Flags is a bit set describing the lexical context of a single rune.
type Flags uint16

const (
	// String marks quoted string content, including the quotes.
	String Flags = 1 << iota
	// Template marks template-literal text; always set together with String.
	Template
	// Comment marks line and block comment content, including the markers.
	Comment
	// BlockComment marks /* ... */ comments; always set together with Comment.
	BlockComment
	// Regex marks a regular-expression literal, delimiters and flags included.
	Regex
	// Directive marks a preprocessor line: from the marker to the logical end of line.
	Directive
	Whitespace
	LineBreak
	// Fence marks every rune of a triple-backtick block, including the code of
	// its ${...} interpolations. Fence text is also String|Template.
	Fence
)

// Has reports whether all bits of mask are set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// State is the coarse lexical state used by rewriting passes.
type State uint8

const (
	// StateCode is anything outside strings, comments and regex literals.
	StateCode State = iota
	StateString
	StateComment
	StateRegex
)

func (s State) String() string {
	switch s {
	case StateCode:
		return "code"
	case StateString:
		return "string"
	case StateComment:
		return "comment"
	case StateRegex:
		return "regex"
	}
	return "unknown"
}

// ScanToken is the classification snapshot of one rune.
type ScanToken struct {
	Ch      rune
	Off     uint32 // byte offset of Ch
	Width   uint8  // encoded width of Ch in bytes
	Flags   Flags
	Brace   int32
	Paren   int32
	Bracket int32
}

// State folds the flags into a coarse state; precedence is string > comment > regex > code.
func (t ScanToken) State() State {
	switch {
	case t.Flags&String != 0:
		return StateString
	case t.Flags&Comment != 0:
		return StateComment
	case t.Flags&Regex != 0:
		return StateRegex
	default:
		return StateCode
	}
}

// IsPlain reports whether the rune is code (not string, comment or regex).
func (t ScanToken) IsPlain() bool {
	return t.Flags&(String|Comment|Regex) == 0
}

// InDirective reports whether the rune belongs to a preprocessor line.
func (t ScanToken) InDirective() bool { return t.Flags&Directive != 0 }

// IsSpace reports whether the rune is whitespace (line breaks included).
func (t ScanToken) IsSpace() bool { return t.Flags&Whitespace != 0 }

// IsLineBreak reports whether the rune is '\n'.
func (t ScanToken) IsLineBreak() bool { return t.Flags&LineBreak != 0 }

// End returns the byte offset just past the rune.
func (t ScanToken) End() uint32 { return t.Off + uint32(t.Width) }

// Text reassembles the runes of toks into a string.
func Text(toks []ScanToken) string {
	buf := make([]rune, 0, len(toks))
	for _, t := range toks {
		buf = append(buf, t.Ch)
	}
	return string(buf)
}
