package bundle

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"glaze/internal/preprocess"
	"glaze/internal/toolchain"
	"glaze/internal/vhost"
)

// Platform selects the runtime the bundle is built for.
type Platform uint8

const (
	PlatformBrowser Platform = iota
	PlatformNode
	PlatformNeutral
)

var platformNames = [...]string{"browser", "node", "neutral"}

func (p Platform) String() string {
	if int(p) < len(platformNames) {
		return platformNames[p]
	}
	return fmt.Sprintf("Platform(%d)", p)
}

// ParsePlatform maps a manifest or flag value; "" is browser.
func ParsePlatform(s string) (Platform, error) {
	if s == "" {
		return PlatformBrowser, nil
	}
	for i, name := range platformNames {
		if strings.EqualFold(name, s) {
			return Platform(i), nil
		}
	}
	return PlatformBrowser, fmt.Errorf("unknown platform %q", s)
}

func (p Platform) esbuild() api.Platform {
	switch p {
	case PlatformNode:
		return api.PlatformNode
	case PlatformNeutral:
		return api.PlatformNeutral
	default:
		return api.PlatformBrowser
	}
}

// Format is the module format of the bundle.
type Format uint8

const (
	FormatIIFE Format = iota
	FormatESM
	FormatCJS
)

var formatNames = [...]string{"iife", "esm", "cjs"}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", f)
}

// ParseFormat maps a manifest or flag value; "" is iife.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatIIFE, nil
	}
	for i, name := range formatNames {
		if strings.EqualFold(name, s) {
			return Format(i), nil
		}
	}
	return FormatIIFE, fmt.Errorf("unknown bundle format %q", s)
}

func (f Format) esbuild() api.Format {
	switch f {
	case FormatESM:
		return api.FormatESModule
	case FormatCJS:
		return api.FormatCommonJS
	default:
		return api.FormatIIFE
	}
}

// Options configures Build.
type Options struct {
	Entries  []string
	Outfile  string
	Platform Platform
	Target   toolchain.Target
	Format   Format
	Minify   bool
	// TreeShake is applied as given; esbuild's own default depends on the format.
	TreeShake bool
	Sourcemap bool
	External  []string
	// Aliases map an import prefix to a directory.
	Aliases map[string]string
	// WorkDir resolves relative entries and diagnostic paths; "" is the process directory.
	WorkDir string
	// Write stores the outputs on disk in addition to returning them.
	Write bool

	// Pipeline preprocesses every loaded source; nil bundles the files as is.
	Pipeline *preprocess.Pipeline
	// Disk reads sources for the preprocessing plugin; nil is the OS.
	Disk vhost.Disk
}
