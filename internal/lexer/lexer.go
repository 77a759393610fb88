package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"glaze/internal/token"
)

type mode uint8

const (
	modeCode mode = iota
	modeString
	modeTemplate
	modeLineComment
	modeBlockComment
	modeRegex
)

// после этих символов '/' открывает регулярное выражение, а не деление
const regexPreceders = "(,=:[!&|?{};+-*%<>~^"

// после этих слов тоже
var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true,
}

// frame запоминает шаблон, из которого открыт ${.
type frame struct {
	brace int32 // глубина фигурных скобок после '{'
	fence bool
}

type scanner struct {
	g   Grammar
	cur Cursor
	out []token.ScanToken

	mode    mode
	quote   rune
	escaped bool
	inClass bool // внутри [...] регулярного выражения

	brace, paren, bracket int32
	templates             []frame // открытые ${ по вложенности
	fence                 bool    // текущий шаблон открыт маркером Fence
	fences                int     // сколько fence-шаблонов охватывает текущую позицию

	directive bool
	lineStart bool // с начала строки были только пробелы
	last      rune // последняя выданная руна, '\r' не считается
	word      []rune
	regexOK   bool
}

// Scan classifies every rune of text under grammar g.
// It never fails: malformed input (unterminated strings, comments, regex) yields
// best-effort states and the scan continues.
func Scan(g Grammar, text string) []token.ScanToken {
	s := &scanner{
		g:         g,
		cur:       NewCursor(text),
		out:       make([]token.ScanToken, 0, utf8.RuneCountInString(text)),
		lineStart: true,
		regexOK:   true,
	}
	for !s.cur.EOF() {
		s.step()
	}
	return s.out
}

func (s *scanner) step() {
	r, _ := s.cur.PeekRune()
	// логический конец директивы: перевод строки без '\' перед ним
	if r == '\n' && s.directive && s.last != '\\' {
		s.directive = false
	}
	switch s.mode {
	case modeString:
		s.scanString(r)
	case modeTemplate:
		s.scanTemplate(r)
	case modeLineComment:
		if r == '\n' {
			s.mode = modeCode
			s.take(0)
			return
		}
		s.take(token.Comment)
	case modeBlockComment:
		if s.cur.HasPrefix(s.g.BlockClose) {
			s.takeN(s.g.BlockClose, token.Comment|token.BlockComment)
			s.mode = modeCode
			return
		}
		s.take(token.Comment | token.BlockComment)
	case modeRegex:
		s.scanRegex(r)
	default:
		s.scanCode(r)
	}
}

func (s *scanner) scanCode(r rune) {
	switch {
	case s.g.DirectiveMarker != 0 && r == s.g.DirectiveMarker && s.lineStart && !s.directive:
		s.directive = true
		s.take(0)
		s.note(r)
		return
	case s.cur.HasPrefix(s.g.LineComment):
		s.mode = modeLineComment
		s.takeN(s.g.LineComment, token.Comment)
		return
	case s.cur.HasPrefix(s.g.BlockOpen):
		s.mode = modeBlockComment
		s.takeN(s.g.BlockOpen, token.Comment|token.BlockComment)
		return
	case strings.ContainsRune(s.g.Quotes, r):
		s.mode = modeString
		s.quote = r
		s.escaped = false
		s.take(token.String)
		return
	case s.g.Fence != "" && s.cur.HasPrefix(s.g.Fence):
		s.mode = modeTemplate
		s.escaped = false
		s.fence = true
		s.fences++
		s.takeN(s.g.Fence, token.String|token.Template)
		return
	case s.g.Template != 0 && r == s.g.Template:
		s.mode = modeTemplate
		s.escaped = false
		s.fence = false
		s.take(token.String | token.Template)
		return
	case r == '/' && s.g.Regex && s.regexOK:
		s.mode = modeRegex
		s.escaped = false
		s.inClass = false
		s.take(token.Regex)
		return
	}

	switch r {
	case '{':
		s.brace++
	case '}':
		// '}' закрывает ${...}, возвращаемся в текст шаблона
		if n := len(s.templates); n > 0 && s.templates[n-1].brace == s.brace {
			s.fence = s.templates[n-1].fence
			s.templates = s.templates[:n-1]
			s.brace--
			s.take(0)
			s.mode = modeTemplate
			return
		}
		s.brace--
	case '(':
		s.paren++
	case ')':
		s.paren--
	case '[':
		s.bracket++
	case ']':
		s.bracket--
	}
	s.take(0)
	s.note(r)
}

func (s *scanner) scanString(r rune) {
	if r == '\n' && !s.escaped {
		// незакрытая строка заканчивается на переводе строки
		s.closeLiteral()
		s.take(0)
		return
	}
	s.take(token.String)
	switch {
	case s.escaped:
		s.escaped = false
	case r == '\\':
		s.escaped = true
	case r == s.quote:
		s.closeLiteral()
	}
}

func (s *scanner) scanTemplate(r rune) {
	const flags = token.String | token.Template
	if s.escaped {
		s.escaped = false
		s.take(flags)
		return
	}
	if b0, b1, ok := s.cur.Peek2(); ok && b0 == '$' && b1 == '{' {
		s.take(0)
		s.brace++
		s.templates = append(s.templates, frame{brace: s.brace, fence: s.fence})
		s.take(0)
		s.mode = modeCode
		s.fence = false
		s.word = s.word[:0]
		s.regexOK = true
		return
	}
	if s.fence {
		// одиночная '`' внутри блока это просто текст
		if s.cur.HasPrefix(s.g.Fence) {
			s.takeN(s.g.Fence, flags)
			s.fence = false
			s.fences--
			s.closeLiteral()
			return
		}
		s.take(flags)
		s.escaped = r == '\\'
		return
	}
	s.take(flags)
	switch r {
	case '\\':
		s.escaped = true
	case s.g.Template:
		s.closeLiteral()
	}
}

func (s *scanner) scanRegex(r rune) {
	if r == '\n' {
		s.closeLiteral()
		s.take(0)
		return
	}
	s.take(token.Regex)
	switch {
	case s.escaped:
		s.escaped = false
	case r == '\\':
		s.escaped = true
	case r == '[':
		s.inClass = true
	case r == ']':
		s.inClass = false
	case r == '/' && !s.inClass:
		for {
			f, _ := s.cur.PeekRune()
			if !isRegexFlag(f) {
				break
			}
			s.take(token.Regex)
		}
		s.closeLiteral()
	}
}

// closeLiteral возвращает сканер в код после строки/шаблона/регулярки.
// После литерала '/' означает деление.
func (s *scanner) closeLiteral() {
	s.mode = modeCode
	s.escaped = false
	s.word = s.word[:0]
	s.regexOK = false
}

// note обновляет контекст для различения деления и регулярного выражения.
func (s *scanner) note(r rune) {
	switch {
	case unicode.IsSpace(r):
		s.word = s.word[:0]
		return
	case IsIdentPart(r):
		s.word = append(s.word, r)
		s.regexOK = regexKeywords[string(s.word)]
		return
	}
	s.word = s.word[:0]
	s.regexOK = strings.ContainsRune(regexPreceders, r)
}

func (s *scanner) takeN(marker string, flags token.Flags) {
	for range utf8.RuneCountInString(marker) {
		s.take(flags)
	}
}

func (s *scanner) take(flags token.Flags) {
	off := s.cur.Off
	r, sz := s.cur.Bump()
	if sz == 0 {
		return
	}
	if unicode.IsSpace(r) {
		flags |= token.Whitespace
	}
	if r == '\n' {
		flags |= token.LineBreak
	}
	if s.directive {
		flags |= token.Directive
	}
	if s.fences > 0 {
		flags |= token.Fence
	}
	s.out = append(s.out, token.ScanToken{
		Ch:      r,
		Off:     off,
		Width:   uint8(sz),
		Flags:   flags,
		Brace:   s.brace,
		Paren:   s.paren,
		Bracket: s.bracket,
	})
	switch {
	case r == '\n':
		s.lineStart = true
	case !unicode.IsSpace(r):
		s.lineStart = false
	}
	if r != '\r' {
		s.last = r
	}
}
