package toolchain

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"glaze/internal/diag"
)

// Target is the language version emitted code must run on.
type Target uint8

const (
	TargetES2015 Target = iota
	TargetES2016
	TargetES2017
	TargetES2018
	TargetES2019
	TargetES2020
	TargetES2021
	TargetES2022
	TargetESNext
)

var targetNames = [...]string{
	TargetES2015: "es2015",
	TargetES2016: "es2016",
	TargetES2017: "es2017",
	TargetES2018: "es2018",
	TargetES2019: "es2019",
	TargetES2020: "es2020",
	TargetES2021: "es2021",
	TargetES2022: "es2022",
	TargetESNext: "esnext",
}

func (t Target) String() string {
	if int(t) < len(targetNames) {
		return targetNames[t]
	}
	return fmt.Sprintf("Target(%d)", t)
}

// ParseTarget accepts the lower-case names ("es2020", "esnext"); "es6" is an
// alias of es2015. An empty string is es2020.
func ParseTarget(s string) (Target, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return TargetES2020, nil
	case "es6":
		return TargetES2015, nil
	}
	for i, name := range targetNames {
		if name == s {
			return Target(i), nil
		}
	}
	return TargetES2020, fmt.Errorf("unknown target %q", s)
}

func (t Target) ESBuild() api.Target {
	switch t {
	case TargetES2015:
		return api.ES2015
	case TargetES2016:
		return api.ES2016
	case TargetES2017:
		return api.ES2017
	case TargetES2018:
		return api.ES2018
	case TargetES2019:
		return api.ES2019
	case TargetES2020:
		return api.ES2020
	case TargetES2021:
		return api.ES2021
	case TargetES2022:
		return api.ES2022
	default:
		return api.ESNext
	}
}

// ModuleKind is the module format of emitted files.
type ModuleKind uint8

const (
	// ModulePreserve keeps each file's own import/export syntax.
	ModulePreserve ModuleKind = iota
	ModuleESNext
	ModuleCommonJS
)

func (m ModuleKind) String() string {
	switch m {
	case ModuleESNext:
		return "esnext"
	case ModuleCommonJS:
		return "commonjs"
	default:
		return "preserve"
	}
}

// ParseModuleKind accepts preserve, esnext (es2015..es2022 are aliases) and commonjs.
func ParseModuleKind(s string) (ModuleKind, error) {
	switch s = strings.ToLower(strings.TrimSpace(s)); {
	case s == "" || s == "preserve":
		return ModulePreserve, nil
	case s == "esnext" || strings.HasPrefix(s, "es20") || s == "es6":
		return ModuleESNext, nil
	case s == "commonjs" || s == "cjs":
		return ModuleCommonJS, nil
	}
	return ModulePreserve, fmt.Errorf("unknown module kind %q", s)
}

func (m ModuleKind) ESBuild() api.Format {
	switch m {
	case ModuleESNext:
		return api.FormatESModule
	case ModuleCommonJS:
		return api.FormatCommonJS
	default:
		return api.FormatDefault
	}
}

// CompilerOptions is the option bag shared by one-shot compiles and watch sessions.
type CompilerOptions struct {
	Target      Target     `toml:"-"`
	TargetName  string     `toml:"target,omitempty"`
	Module      ModuleKind `toml:"-"`
	ModuleName  string     `toml:"module,omitempty"`
	OutDir      string     `toml:"out_dir,omitempty"`
	RootDir     string     `toml:"root_dir,omitempty"`
	Declaration bool       `toml:"declaration,omitempty"`
	SourceMap   bool       `toml:"source_map,omitempty"`
	NoEmit      bool       `toml:"no_emit,omitempty"`
	Incremental bool       `toml:"incremental,omitempty"`
	// BuildInfo is the incremental state file; defaults to <out_dir>/.glazebuildinfo.
	BuildInfo string `toml:"build_info,omitempty"`
	// Paths maps an import alias prefix to the directory it resolves to.
	Paths map[string]string `toml:"paths,omitempty"`
}

// Resolve fills Target and Module from their names and validates option
// combinations. Every problem becomes a configuration diagnostic.
func (o *CompilerOptions) Resolve() []diag.Diagnostic {
	var out []diag.Diagnostic
	if o.TargetName != "" {
		t, err := ParseTarget(o.TargetName)
		if err != nil {
			out = append(out, diag.Errorf(diag.CfgUnknownTarget, "%v; expected one of es2015..es2022, esnext", err))
		}
		o.Target = t
	}
	if o.ModuleName != "" {
		m, err := ParseModuleKind(o.ModuleName)
		if err != nil {
			out = append(out, diag.Errorf(diag.CfgInvalidOption, "%v; expected preserve, esnext or commonjs", err))
		}
		o.Module = m
	}
	if o.NoEmit && o.Declaration {
		out = append(out, diag.NewError(diag.CfgConflictingOptions, "option 'declaration' cannot be combined with 'no_emit'"))
	}
	if o.Incremental && o.OutDir == "" && o.BuildInfo == "" {
		out = append(out, diag.NewError(diag.CfgInvalidOption, "option 'incremental' requires 'out_dir' or 'build_info'"))
	}
	for alias, dir := range o.Paths {
		if strings.TrimSpace(alias) == "" || strings.TrimSpace(dir) == "" {
			out = append(out, diag.Errorf(diag.CfgInvalidOption, "invalid path alias %q = %q", alias, dir))
		}
	}
	return out
}

// BuildInfoPath returns where incremental state is kept, or "" if nowhere.
func (o *CompilerOptions) BuildInfoPath() string {
	switch {
	case o.BuildInfo != "":
		return o.BuildInfo
	case o.OutDir != "":
		return filepath.Join(o.OutDir, ".glazebuildinfo")
	}
	return ""
}
