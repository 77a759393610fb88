package diag

import (
	"cmp"
	"slices"
)

// Bag accumulates diagnostics in arrival order.
type Bag struct {
	items []Diagnostic
	max   int // 0: без лимита
}

func NewBag(limit int) *Bag {
	return &Bag{max: max(limit, 0)}
}

// Add returns false once the bag is full.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Len() int { return len(b.items) }

// Items отдаёт внутренний срез, не модифицировать.
func (b *Bag) Items() []Diagnostic { return b.items }

func (b *Bag) ErrorCount() int { return CountErrors(b.items) }

// CountErrors returns the number of error-severity entries in ds.
func CountErrors(ds []Diagnostic) int {
	n := 0
	for _, d := range ds {
		if d.Severity >= SevError {
			n++
		}
	}
	return n
}

// Sort orders by file, line, column, then severity descending and code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.File, y.File),
			cmp.Compare(x.Line, y.Line),
			cmp.Compare(x.Column, y.Column),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// SortByRank stably orders entries by the rank of their file. Unranked files
// come after ranked ones, file-less entries last.
func (b *Bag) SortByRank(rank func(file string) (int, bool)) {
	type key struct{ group, rank int }
	keyOf := func(d Diagnostic) key {
		if d.File == "" {
			return key{group: 2}
		}
		if r, ok := rank(d.File); ok {
			return key{rank: r}
		}
		return key{group: 1}
	}
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		kx, ky := keyOf(x), keyOf(y)
		return cmp.Or(cmp.Compare(kx.group, ky.group), cmp.Compare(kx.rank, ky.rank))
	})
}

// Dedup drops exact repeats, keeping the first occurrence.
func (b *Bag) Dedup() {
	seen := make(map[Diagnostic]bool, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		if seen[d] {
			return true
		}
		seen[d] = true
		return false
	})
}

// Files returns the distinct files with diagnostics, in first-seen order.
func (b *Bag) Files() []string {
	var files []string
	for _, d := range b.items {
		if d.File != "" && !slices.Contains(files, d.File) {
			files = append(files, d.File)
		}
	}
	return files
}
