package toolchain

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// memHost is an in-memory Host for engine tests.
type memHost struct {
	mu      sync.Mutex
	files   map[string]string
	hidden  map[string]bool
	written map[string]string
}

func newMemHost(files map[string]string) *memHost {
	return &memHost{files: files, hidden: map[string]bool{}, written: map[string]string{}}
}

func (h *memHost) FileExists(path string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.files[path]
	return ok && !h.hidden[path]
}

func (h *memHost) ReadFile(path string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	text, ok := h.files[path]
	if !ok || h.hidden[path] {
		return "", fmt.Errorf("read %s: %w", path, fs.ErrNotExist)
	}
	return text, nil
}

func (h *memHost) ParseSourceUnit(path string, target Target) (*SourceUnit, error) {
	text, err := h.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseUnit(path, text, target), nil
}

func (h *memHost) WriteFile(path string, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.written[path] = string(data)
	return nil
}

func (h *memHost) Hidden(path string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.files[path]
	return ok && h.hidden[path]
}

func (h *memHost) set(path, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.files[path] = text
}

func (h *memHost) writtenPaths() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.written))
	for p := range h.written {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// diskBackedHost reads sources from memory but writes outputs to disk.
type diskBackedHost struct {
	*memHost
}

func (h *diskBackedHost) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	return h.memHost.WriteFile(path, data)
}
