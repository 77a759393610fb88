package driver

import (
	"io"

	"glaze/internal/diag"
	"glaze/internal/preprocess"
	"glaze/internal/toolchain"
)

// Options configures Compile.
type Options struct {
	// Entries are files or directories; directories contribute every source
	// file below them.
	Entries []string
	// Exclude patterns match a file's base name or its slash path relative to
	// the directory entry it was found under.
	Exclude  []string
	Compiler toolchain.CompilerOptions
	// Aliases map an import prefix to a source directory.
	Aliases map[string]string
	// ExactFiles hides every file that is not an input from the compiler.
	ExactFiles bool
	// Transform runs after macro expansion. It may answer asynchronously only
	// in one-shot mode.
	Transform preprocess.Transform
	// Jobs bounds parallel preprocessing; <= 0 is GOMAXPROCS.
	Jobs int
	// Observer receives phase boundaries of one-shot compiles.
	Observer PhaseObserver
	// OnInputs receives the expanded input files before they are compiled.
	OnInputs func(inputs []string)

	Watch bool
	// OnChange is called for each changed module output in watch mode.
	OnChange func(path string)
	// OnFlush receives the full diagnostic list after every watch build.
	OnFlush   func(diags []diag.Diagnostic)
	Verbosity int
	// Log receives watch status lines.
	Log io.Writer
	// NoWatcher keeps a watch session from subscribing to file events.
	NoWatcher bool
}
