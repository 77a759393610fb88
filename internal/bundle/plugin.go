package bundle

import (
	"context"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"

	"glaze/internal/preprocess"
	"glaze/internal/toolchain"
	"glaze/internal/trace"
	"glaze/internal/vhost"
)

// PluginName prefixes messages raised while preprocessing.
const PluginName = "glaze-preprocess"

// preprocessPlugin runs every source esbuild loads from disk through the
// pipeline. Asynchronous transforms are awaited.
func preprocessPlugin(ctx context.Context, pipeline *preprocess.Pipeline, disk vhost.Disk) api.Plugin {
	return api.Plugin{
		Name: PluginName,
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: `\.(m|c)?[jt]sx?$`, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					if !preprocess.Applies(args.Path) {
						return api.OnLoadResult{}, nil
					}
					trace.Point(trace.FromContext(ctx), trace.ScopeFile, "bundle.load", args.Path)
					data, err := disk.ReadFile(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}
					text, err := pipeline.File(ctx, args.Path, string(data)).Wait(ctx)
					if err != nil {
						return api.OnLoadResult{}, err
					}
					dir := filepath.Dir(args.Path)
					return api.OnLoadResult{
						Contents:   &text,
						Loader:     toolchain.LoaderFor(args.Path),
						ResolveDir: dir,
					}, nil
				})
		},
	}
}
