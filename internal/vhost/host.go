package vhost

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"sync"

	"glaze/internal/preprocess"
	"glaze/internal/toolchain"
	"glaze/internal/trace"
)

// Options configures a Host.
type Options struct {
	// Overlay holds preprocessed text; nil creates an empty one.
	Overlay *Overlay
	// Disk is the delegate for everything else; nil is the real file system.
	Disk Disk
	// ExactFiles activates the allow-list when non-nil: files outside it are
	// invisible unless they have an overlay entry.
	ExactFiles []string
	Aliases    []Alias
	// Load reads and preprocesses a source file missing from the overlay; the
	// result is stored in the overlay. nil serves raw disk content.
	Load func(path string) (string, error)
}

// Host serves one compile or watch session. It is safe for concurrent use.
type Host struct {
	ctx     context.Context
	overlay *Overlay
	disk    Disk
	exact   map[string]bool // nil, если allow-list выключен
	aliases []Alias
	load    func(path string) (string, error)

	mu      sync.Mutex
	exists  map[string]bool
	outputs []string
	seenOut map[string]bool
}

// New returns a host for opts. ctx carries the tracer.
func New(ctx context.Context, opts Options) *Host {
	h := &Host{
		ctx:     ctx,
		overlay: opts.Overlay,
		disk:    opts.Disk,
		aliases: opts.Aliases,
		load:    opts.Load,
		exists:  make(map[string]bool),
		seenOut: make(map[string]bool),
	}
	if h.overlay == nil {
		h.overlay = NewOverlay()
	}
	if h.disk == nil {
		h.disk = OSDisk{}
	}
	if opts.ExactFiles != nil {
		h.exact = make(map[string]bool, len(opts.ExactFiles))
		for _, p := range opts.ExactFiles {
			h.exact[Key(p)] = true
		}
	}
	return h
}

// Overlay returns the host's overlay.
func (h *Host) Overlay() *Overlay { return h.overlay }

// Excluded reports whether the allow-list hides path.
func (h *Host) Excluded(path string) bool {
	return h.exact != nil && !h.exact[Key(path)] && !h.overlay.Has(path)
}

// FileExists: overlay entry, else false when excluded, else one memoized disk check.
func (h *Host) FileExists(path string) bool {
	if h.overlay.Has(path) {
		return true
	}
	if h.Excluded(path) {
		return false
	}
	return h.onDisk(path)
}

func (h *Host) onDisk(path string) bool {
	key := Key(path)
	h.mu.Lock()
	defer h.mu.Unlock()
	if ok, cached := h.exists[key]; cached {
		return ok
	}
	ok := h.disk.Exists(key)
	h.exists[key] = ok
	return ok
}

// Hidden reports whether path exists on disk but is excluded.
func (h *Host) Hidden(path string) bool {
	return h.Excluded(path) && h.onDisk(path)
}

// ReadFile returns overlay text, or a fs.ErrNotExist error for excluded and
// missing files, or disk content (preprocessed through Load for sources).
func (h *Host) ReadFile(path string) (string, error) {
	if text, ok := h.overlay.Get(path); ok {
		return text, nil
	}
	if h.Excluded(path) {
		trace.Point(trace.FromContext(h.ctx), trace.ScopeFile, "vhost.excluded", path)
		return "", fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}
	key := Key(path)
	if h.load != nil && preprocess.Applies(key) {
		if !h.onDisk(key) {
			return "", fmt.Errorf("%s: %w", path, fs.ErrNotExist)
		}
		trace.Point(trace.FromContext(h.ctx), trace.ScopeFile, "vhost.load", key)
		text, err := h.load(key)
		if err != nil {
			return "", err
		}
		h.overlay.Set(key, text)
		return text, nil
	}
	data, err := h.disk.ReadFile(key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseSourceUnit builds a unit from whatever ReadFile returns for path.
func (h *Host) ParseSourceUnit(path string, target toolchain.Target) (*toolchain.SourceUnit, error) {
	text, err := h.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return toolchain.ParseUnit(Key(path), text, target), nil
}

// WriteFile records path as an output, rewrites alias specifiers in module
// outputs and writes data to disk.
func (h *Host) WriteFile(path string, data []byte) error {
	key := Key(path)
	if IsModuleOutput(key) && len(h.aliases) > 0 {
		data = []byte(RewriteImports(key, string(data), h.aliases))
	}
	if err := h.disk.WriteFile(key, data); err != nil {
		return err
	}
	h.mu.Lock()
	if !h.seenOut[key] {
		h.seenOut[key] = true
		h.outputs = append(h.outputs, key)
	}
	h.exists[key] = true
	h.mu.Unlock()
	return nil
}

// Invalidate forgets the overlay entry and the cached existence of path so
// the next access goes back to disk.
func (h *Host) Invalidate(path string) {
	if h.load != nil {
		// предзаполненные записи без загрузчика не восстановить
		h.overlay.Delete(path)
	}
	h.mu.Lock()
	delete(h.exists, Key(path))
	h.mu.Unlock()
}

// Outputs returns the written paths in first-write order.
func (h *Host) Outputs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.outputs)
}

var (
	_ toolchain.Host        = (*Host)(nil)
	_ toolchain.Hider       = (*Host)(nil)
	_ toolchain.Invalidator = (*Host)(nil)
)
