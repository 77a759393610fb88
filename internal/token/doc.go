// Package token defines the per-character classification produced by the lexer.
// Invariants:
//   - One ScanToken per rune of the input, in input order.
//   - Off is a byte offset into the original text; Off of token i+1 equals Off+Width of token i.
//   - Depth counters are the values after the rune is applied, and only code runes move them.
//   - Tokens are immutable once produced; passes that re-walk a span index the slice.
package token
