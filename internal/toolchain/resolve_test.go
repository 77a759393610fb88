package toolchain

import (
	"slices"
	"testing"
)

func TestMatchAlias(t *testing.T) {
	tests := []struct {
		prefix, spec string
		rest         string
		ok           bool
	}{
		{"@lib", "@lib", "", true},
		{"@lib", "@lib/util/x", "util/x", true},
		{"@lib/*", "@lib/util", "util", true},
		{"@lib/", "@lib/util", "util", true},
		{"@lib", "@library", "", false},
		{"~", "~/a", "a", true},
		{"@lib", "react", "", false},
	}
	for _, tt := range tests {
		rest, ok := MatchAlias(tt.prefix, tt.spec)
		if rest != tt.rest || ok != tt.ok {
			t.Errorf("MatchAlias(%q, %q) = %q, %v; want %q, %v", tt.prefix, tt.spec, rest, ok, tt.rest, tt.ok)
		}
	}
}

func TestProbeCandidates(t *testing.T) {
	got := probeCandidates("/p/a.js")
	if want := []string{"/p/a.ts", "/p/a.tsx", "/p/a.js"}; !slices.Equal(got, want) {
		t.Errorf("probeCandidates(a.js) = %v, want %v", got, want)
	}
	got = probeCandidates("/p/a")
	if got[0] != "/p/a.ts" || !slices.Contains(got, "/p/a/index.ts") {
		t.Errorf("probeCandidates(a) = %v", got)
	}
}

func TestResolve(t *testing.T) {
	host := newMemHost(map[string]string{
		"/p/src/b.ts":         "",
		"/p/src/dir/index.ts": "",
		"/p/lib/util.ts":      "",
		"/p/src/data.json":    "{}",
		"/p/src/hidden.ts":    "",
	})
	host.hidden["/p/src/hidden.ts"] = true
	r := newResolver(host, map[string]string{"@lib": "/p/lib"})

	tests := []struct {
		spec string
		kind ResolutionKind
		path string
	}{
		{"./b", ResolvedSource, "/p/src/b.ts"},
		{"./b.js", ResolvedSource, "/p/src/b.ts"},
		{"./dir", ResolvedSource, "/p/src/dir/index.ts"},
		{"@lib/util", ResolvedSource, "/p/lib/util.ts"},
		{"./data.json", ResolvedAsset, "/p/src/data.json"},
		{"./hidden", ResolvedHidden, "/p/src/hidden.ts"},
		{"./nope", ResolvedMissing, ""},
		{"react", ResolvedExternal, ""},
	}
	for _, tt := range tests {
		got := r.resolve("/p/src", Import{Specifier: tt.spec})
		if got.Kind != tt.kind || got.Path != tt.path {
			t.Errorf("resolve(%q) = %v %q, want %v %q", tt.spec, got.Kind, got.Path, tt.kind, tt.path)
		}
	}
}
