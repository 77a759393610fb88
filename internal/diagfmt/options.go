package diagfmt

import (
	"fmt"
	"strings"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses relative or absolute path automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

func (m PathMode) String() string {
	switch m {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	default:
		return "auto"
	}
}

// ParsePathMode maps a flag value; "" is auto.
func ParsePathMode(s string) (PathMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return PathModeAuto, nil
	case "absolute", "abs":
		return PathModeAbsolute, nil
	case "relative", "rel":
		return PathModeRelative, nil
	case "basename", "base":
		return PathModeBasename, nil
	}
	return PathModeAuto, fmt.Errorf("unknown path mode %q", s)
}

// Mode selects which diagnostics a report prints.
type Mode uint8

const (
	// ModeAll prints diagnostics in collection order up to the cap.
	ModeAll Mode = iota
	// ModeFile prints only diagnostics of one requested file.
	ModeFile
	// ModeFirstFile prints the diagnostics of the first file that has any.
	ModeFirstFile
)

func (m Mode) String() string {
	switch m {
	case ModeFile:
		return "file"
	case ModeFirstFile:
		return "first-file"
	default:
		return "all"
	}
}

// ParseMode maps a flag or manifest value; "" is all.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ModeAll, nil
	case "file":
		return ModeFile, nil
	case "first-file", "first_file", "first":
		return ModeFirstFile, nil
	}
	return ModeAll, fmt.Errorf("unknown report mode %q", s)
}

// DefaultMax is the display cap used when none is configured.
const DefaultMax = 100

// PrettyOpts configures pretty-printing of a single diagnostic.
type PrettyOpts struct {
	Color    bool
	PathMode PathMode
	BaseDir  string
	Width    int // максимальная ширина пути в таблице, 0 - не ограничено
	// Source returns a line (1-based) of a file for context; nil disables context.
	Source func(file string, line int) (string, bool)
}

// ReportOpts configures Report.
type ReportOpts struct {
	PrettyOpts
	Mode Mode
	// File is the requested path for ModeFile; matched case-insensitively.
	File string
	// Max caps the number of printed diagnostics; 0 means unlimited.
	Max int
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode PathMode
	BaseDir  string
	Max      int // обрезка вывода, не Bag
}
