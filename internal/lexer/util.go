package lexer

import "unicode"

// IsIdentStart reports whether r may start an identifier.
func IsIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

// IsIdentPart reports whether r may continue an identifier.
func IsIdentPart(r rune) bool {
	return IsIdentStart(r) || unicode.IsDigit(r)
}

func isRegexFlag(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
