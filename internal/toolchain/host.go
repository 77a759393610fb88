package toolchain

// Host is the file-system contract of the engine. Paths are absolute and
// cleaned. ReadFile and ParseSourceUnit report missing files with errors
// wrapping fs.ErrNotExist; any other error aborts the build.
type Host interface {
	FileExists(path string) bool
	ReadFile(path string) (string, error)
	ParseSourceUnit(path string, target Target) (*SourceUnit, error)
	WriteFile(path string, data []byte) error
}

// Hider is implemented by hosts that hide existing files from the program.
// An import resolving to a hidden file is external: it is neither reported
// nor compiled.
type Hider interface {
	Hidden(path string) bool
}

// Invalidator is implemented by hosts that cache reads; watch sessions call
// it for every changed path before rebuilding.
type Invalidator interface {
	Invalidate(path string)
}
