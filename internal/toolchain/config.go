package toolchain

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"

	"glaze/internal/diag"
)

// ProjectConfig is what a watch session reads from its configuration path:
// the root files and the compiler options.
type ProjectConfig struct {
	Files    []string        `toml:"files"`
	Compiler CompilerOptions `toml:"compiler"`
}

// Encode serialises the configuration as TOML. Target and Module are written
// by name, so options must be resolved first.
func (c ProjectConfig) Encode() (string, error) {
	c.Compiler.TargetName = c.Compiler.Target.String()
	c.Compiler.ModuleName = c.Compiler.Module.String()
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(c); err != nil {
		return "", fmt.Errorf("failed to encode project config: %w", err)
	}
	return buf.String(), nil
}

// ParseProjectConfig decodes text produced by Encode (or written by hand).
// Decoding and option problems are returned as configuration diagnostics.
func ParseProjectConfig(text string) (ProjectConfig, []diag.Diagnostic) {
	var cfg ProjectConfig
	meta, err := toml.Decode(text, &cfg)
	if err != nil {
		return ProjectConfig{}, []diag.Diagnostic{diag.Errorf(diag.CfgManifest, "failed to parse project config: %v", err)}
	}
	var out []diag.Diagnostic
	if !meta.IsDefined("files") {
		out = append(out, diag.NewError(diag.CfgManifest, "project config has no 'files'"))
	}
	for _, key := range meta.Undecoded() {
		out = append(out, diag.New(diag.SevWarning, diag.CfgInvalidOption, fmt.Sprintf("unknown project config key %q", key.String())))
	}
	out = append(out, cfg.Compiler.Resolve()...)
	return cfg, out
}
