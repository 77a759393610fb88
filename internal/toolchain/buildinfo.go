package toolchain

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when BuildInfo format changes
const buildInfoSchema uint16 = 1

// BuildInfo is the incremental state persisted between one-shot compiles:
// per source, the hash of the text it was emitted from and the files written.
type BuildInfo struct {
	Schema uint16
	// Options fingerprints the emit-affecting options; a mismatch drops all entries.
	Options string
	Files   map[string]BuildInfoEntry
}

// BuildInfoEntry describes one emitted source.
type BuildInfoEntry struct {
	Hash    [32]byte
	Outputs []string
}

func optionsFingerprint(o CompilerOptions) string {
	return fmt.Sprintf("%s|%s|%t|%t|%s|%s", o.Target, o.Module, o.Declaration, o.SourceMap, o.OutDir, o.RootDir)
}

// LoadBuildInfo reads the state file at path. A missing file yields empty
// state; a corrupt one yields empty state and an error describing it.
func LoadBuildInfo(path string, opts CompilerOptions) (*BuildInfo, error) {
	info := &BuildInfo{Schema: buildInfoSchema, Options: optionsFingerprint(opts), Files: map[string]BuildInfoEntry{}}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return info, nil
		}
		return info, err
	}
	defer f.Close()

	var stored BuildInfo
	if err := msgpack.NewDecoder(f).Decode(&stored); err != nil {
		return info, fmt.Errorf("%s: %w", path, err)
	}
	if stored.Schema != buildInfoSchema || stored.Options != info.Options || stored.Files == nil {
		return info, nil
	}
	return &stored, nil
}

// Save writes the state atomically.
func (b *BuildInfo) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// после успешного Rename временного файла уже нет
		_ = os.Remove(f.Name())
	}()

	if err := msgpack.NewEncoder(f).Encode(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), path)
}

// Fresh reports whether src was already emitted from text with this hash and
// all of its outputs are still on disk.
func (b *BuildInfo) Fresh(src string, hash [32]byte) bool {
	entry, ok := b.Files[src]
	if !ok || entry.Hash != hash || len(entry.Outputs) == 0 {
		return false
	}
	for _, out := range entry.Outputs {
		if _, err := os.Stat(out); err != nil {
			return false
		}
	}
	return true
}

// Record stores the outputs written for src.
func (b *BuildInfo) Record(src string, hash [32]byte, outputs []string) {
	b.Files[src] = BuildInfoEntry{Hash: hash, Outputs: outputs}
}
