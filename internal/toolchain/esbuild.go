package toolchain

import (
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"glaze/internal/diag"
)

type compiled struct {
	code     []byte
	errors   []api.Message
	warnings []api.Message
}

// LoaderFor picks the esbuild loader for a source path.
func LoaderFor(path string) api.Loader {
	switch filepath.Ext(path) {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".tsx":
		return api.LoaderTSX
	case ".jsx":
		return api.LoaderJSX
	case ".json":
		return api.LoaderJSON
	default:
		return api.LoaderJS
	}
}

// compile transforms a unit once per program; Check and Emit share the result.
func (p *Program) compile(u *SourceUnit) *compiled {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.compiled[u.Path]; ok {
		return c
	}
	opts := api.TransformOptions{
		Loader:     LoaderFor(u.Path),
		Format:     p.opts.Module.ESBuild(),
		Target:     u.Target.ESBuild(),
		Sourcefile: u.Path,
		LogLevel:   api.LogLevelSilent,
	}
	if p.opts.SourceMap {
		opts.Sourcemap = api.SourceMapInline
	}
	res := api.Transform(u.Text, opts)
	c := &compiled{code: res.Code, errors: res.Errors, warnings: res.Warnings}
	p.compiled[u.Path] = c
	return c
}

// MessageDiagnostic converts an esbuild message. Relative locations are
// resolved against baseDir; esbuild columns are 0-based.
func MessageDiagnostic(m api.Message, sev diag.Severity, code diag.Code, baseDir string) diag.Diagnostic {
	raw := diag.Raw{Severity: sev, Code: code, Message: m.Text}
	if m.PluginName != "" && !strings.HasPrefix(m.Text, "["+m.PluginName+"]") {
		raw.Message = "[" + m.PluginName + "] " + m.Text
	}
	if loc := m.Location; loc != nil && loc.File != "" {
		file := loc.File
		if !filepath.IsAbs(file) && baseDir != "" && (loc.Namespace == "" || loc.Namespace == "file") {
			file = filepath.Join(baseDir, file)
		}
		raw.Path = file
		raw.Line = loc.Line
		raw.Column = loc.Column + 1
	}
	return diag.Normalize(raw)
}
