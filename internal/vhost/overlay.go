package vhost

import (
	"slices"
	"sync"

	"golang.org/x/text/unicode/norm"

	"glaze/internal/source"
)

// Key is the overlay key of path: absolute, cleaned, NFC-normalised.
// Two spellings of one file (relative/absolute, composed/decomposed)
// share a key.
func Key(path string) string {
	if abs, err := source.AbsolutePath(path); err == nil {
		path = abs
	} else {
		path = source.CleanPath(path)
	}
	return norm.NFC.String(path)
}

// Overlay maps resolved paths to preprocessed text. An entry always wins over
// disk content.
type Overlay struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewOverlay returns an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{entries: make(map[string]string)}
}

// Set stores text for path.
func (o *Overlay) Set(path, text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries[Key(path)] = text
}

// Get returns the text stored for path.
func (o *Overlay) Get(path string) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	text, ok := o.entries[Key(path)]
	return text, ok
}

// Has reports whether path has an entry.
func (o *Overlay) Has(path string) bool {
	_, ok := o.Get(path)
	return ok
}

// Delete drops the entry of path.
func (o *Overlay) Delete(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.entries, Key(path))
}

// Len returns the number of entries.
func (o *Overlay) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.entries)
}

// Paths returns the keys, sorted.
func (o *Overlay) Paths() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]string, 0, len(o.entries))
	for k := range o.entries {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
