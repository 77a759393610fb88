package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"
)

// Cursor walks text rune by rune. Off is a byte offset.
type Cursor struct {
	Text string
	Off  uint32
	end  uint32
}

func NewCursor(text string) Cursor {
	end, err := safecast.Conv[uint32](len(text))
	if err != nil {
		panic(fmt.Errorf("source too large: %w", err))
	}
	return Cursor{Text: text, end: end}
}

func (c *Cursor) EOF() bool { return c.Off >= c.end }

// rest is the unread text.
func (c *Cursor) rest() string { return c.Text[c.Off:c.end] }

// Peek returns the current byte, 0 at EOF.
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.Text[c.Off]
}

// PeekRune decodes the current rune; at EOF it returns utf8.RuneError and size 0.
// An invalid byte decodes as utf8.RuneError of size 1.
func (c *Cursor) PeekRune() (r rune, size int) {
	if c.EOF() {
		return utf8.RuneError, 0
	}
	if b := c.Peek(); b < utf8.RuneSelf {
		return rune(b), 1
	}
	return utf8.DecodeRuneInString(c.rest())
}

// Peek2 returns the current and the next byte.
func (c *Cursor) Peek2() (b0, b1 byte, ok bool) {
	if c.Off+1 >= c.end {
		return 0, 0, false
	}
	return c.Text[c.Off], c.Text[c.Off+1], true
}

// HasPrefix reports whether the unread text starts with a non-empty s.
func (c *Cursor) HasPrefix(s string) bool {
	return s != "" && strings.HasPrefix(c.rest(), s)
}

// Bump consumes one rune and returns it; size 0 means EOF.
func (c *Cursor) Bump() (rune, int) {
	r, size := c.PeekRune()
	c.Off += uint32(size)
	return r, size
}
