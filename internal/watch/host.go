package watch

import (
	"crypto/sha256"
	"sync"

	"glaze/internal/trace"
	"glaze/internal/vhost"
)

// sessionHost is the watch-mode host: the one-shot host plus the synthetic
// configuration path and write deduplication.
type sessionHost struct {
	*vhost.Host
	s *Session

	mu      sync.Mutex
	written map[string][32]byte
}

func (h *sessionHost) FileExists(path string) bool {
	if path == h.s.configPath {
		return true
	}
	return h.Host.FileExists(path)
}

func (h *sessionHost) ReadFile(path string) (string, error) {
	if path == h.s.configPath {
		return h.s.configText, nil
	}
	return h.Host.ReadFile(path)
}

// WriteFile skips writes whose content equals the last write to the same
// path; those do not trigger OnChange either.
func (h *sessionHost) WriteFile(path string, data []byte) error {
	sum := sha256.Sum256(data)
	key := vhost.Key(path)
	h.mu.Lock()
	prev, seen := h.written[key]
	h.mu.Unlock()
	if seen && prev == sum {
		trace.Point(trace.FromContext(h.s.ctx), trace.ScopeFile, "watch.write.skipped", key)
		return nil
	}
	if err := h.Host.WriteFile(key, data); err != nil {
		return err
	}
	h.mu.Lock()
	h.written[key] = sum
	h.mu.Unlock()
	if vhost.IsModuleOutput(key) && h.s.opts.OnChange != nil {
		h.s.opts.OnChange(key)
	}
	return nil
}
