package source

import (
	"crypto/sha256"
	"os"
	"sync"
)

// FileSet keeps every loaded version of a file; the path index points at the
// newest one. Safe for concurrent use.
type FileSet struct {
	mu     sync.RWMutex
	files  []*File
	byPath map[string]FileID
}

func NewFileSet() *FileSet {
	return &FileSet{byPath: make(map[string]FileID)}
}

// NewFile builds a standalone File (ID 0) from already normalized content.
func NewFile(path string, content []byte, flags FileFlags) *File {
	return &File{
		Path:    normalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	}
}

// Add registers a new version of path and returns its id. Earlier versions
// stay reachable through Get.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	f := NewFile(path, content, flags)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	f.ID = FileID(mustUint32(len(fs.files), "file count"))
	fs.files = append(fs.files, f)
	fs.byPath[f.Path] = f.ID
	return f.ID
}

// Load reads path from disk, normalizes it and adds it.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content, flags := Normalize(content)
	return fs.Add(path, content, flags), nil
}

func (fs *FileSet) Get(id FileID) *File {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.files[id]
}

func (fs *FileSet) Len() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.files)
}

// Lookup returns the newest version of path.
func (fs *FileSet) Lookup(path string) (*File, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	id, ok := fs.byPath[normalizePath(path)]
	if !ok {
		return nil, false
	}
	return fs.files[id], true
}

// LineCol maps a byte offset to a 1-based line and column.
func (f *File) LineCol(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}

func (f *File) Text() string {
	return string(f.Content)
}

// Line returns line n (1-based) without its newline; false past the end.
func (f *File) Line(n int) (string, bool) {
	if n < 1 || n > len(f.LineIdx)+1 {
		return "", false
	}
	start := 0
	if n > 1 {
		start = int(f.LineIdx[n-2]) + 1
	}
	end := len(f.Content)
	if n <= len(f.LineIdx) {
		end = int(f.LineIdx[n-1])
	}
	return string(f.Content[start:end]), true
}
