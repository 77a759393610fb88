package vhost

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Disk is what the host delegates to for paths the overlay does not cover.
type Disk interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// OSDisk is the real file system.
type OSDisk struct{}

func (OSDisk) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (OSDisk) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OSDisk) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// MemDisk is an in-memory Disk. It counts Exists calls per path.
type MemDisk struct {
	mu     sync.Mutex
	files  map[string][]byte
	Stats  map[string]int
	Writes int
}

// NewMemDisk returns a disk holding files (path → content).
func NewMemDisk(files map[string]string) *MemDisk {
	d := &MemDisk{files: make(map[string][]byte, len(files)), Stats: make(map[string]int)}
	for p, text := range files {
		d.files[p] = []byte(text)
	}
	return d
}

func (d *MemDisk) Exists(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Stats[path]++
	_, ok := d.files[path]
	return ok
}

func (d *MemDisk) ReadFile(path string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

func (d *MemDisk) WriteFile(path string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[path] = append([]byte(nil), data...)
	d.Writes++
	return nil
}

// File returns the content of path and whether it exists.
func (d *MemDisk) File(path string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.files[path]
	return string(data), ok
}

// Paths returns every stored path, sorted.
func (d *MemDisk) Paths() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.files))
	for p := range d.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (d *MemDisk) String() string {
	return fmt.Sprintf("MemDisk(%d files)", len(d.Paths()))
}
