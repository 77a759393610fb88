package rewrite

import (
	"strings"
	"testing"
)

func TestRewrite(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unit in call", "width(10px)", `width("10px")`},
		{"unit in string kept", `"keep 10px"`, `"keep 10px"`},
		{"unit in comment kept", "x // 10px\n", "x // 10px\n"},
		{"unit in block comment kept", "/* #fff 2em */ y", "/* #fff 2em */ y"},
		{"unit in regex kept", "x = /10px/", "x = /10px/"},
		{"fractional unit", "pad(1.5rem)", `pad("1.5rem")`},
		{"viewport unit", "h(100vh, 10vmin)", `h("100vh", "10vmin")`},
		{"percent", "width: 50%", `width: "50%"`},
		{"modulo with spaces", "x = 10 % 3", "x = 10 % 3"},
		{"modulo without spaces", "x = 10%3", "x = 10%3"},
		{"identifier with digits", "a10px + b", "a10px + b"},
		{"unknown unit", "x = 10kg", "x = 10kg"},
		{"hex color", "color(#fff)", `color("#fff")`},
		{"hex color alpha", "c = #ff00ff80;", `c = "#ff00ff80";`},
		{"six digits", "c = #a1b2c3", `c = "#a1b2c3"`},
		{"five digits", "c = #abcde", "c = #abcde"},
		{"color in string kept", `s = "#fff"`, `s = "#fff"`},
		{"private member", "this.#abc = 1", "this.#abc = 1"},
		{"mixed string and code", `f("a", 2px)`, `f("a", "2px")`},
		{"template interpolation", "`w: ${10px}`", "`w: ${\"10px\"}`"},
		{"template text kept", "`w: 10px`", "`w: 10px`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rewrite(tt.in); got != tt.want {
				t.Errorf("Rewrite(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRewriteFence(t *testing.T) {
	in := "const t = ```\n    hello\n      world\n    ```;\n"
	want := "const t = `hello\n  world`;\n"
	if got := Rewrite(in); got != want {
		t.Errorf("Rewrite fenced block:\n got %q\nwant %q", got, want)
	}

	unclosed := "const t = ```\n    hello\n"
	if got := Rewrite(unclosed); got != unclosed {
		t.Errorf("unclosed fence must be left unmodified, got %q", got)
	}
}

func TestRewriteFenceInterpolation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"interpolation kept",
			"export const b = ```\n    Hello ${name}\n      world\n    ```;",
			"export const b = `Hello ${name}\n  world`;",
		},
		{
			"unit inside interpolation",
			"const c = ```\n  w: ${10px}\n```",
			"const c = `w: ${\"10px\"}`",
		},
		{
			"nested template",
			"const d = ```\n  ${`a ${x}`} `q`\n  ```",
			"const d = `${`a ${x}`} \\`q\\``",
		},
		{
			"object literal in interpolation",
			"f(```\n    ${g({a: 1})}\n    ```)",
			"f(`${g({a: 1})}`)",
		},
		{
			"escaped interpolation is text",
			"```\n  \\${x}\n```",
			"`\\${x}`",
		},
		{"two blocks", "```\n a\n``` + ```\n b\n```", "`a` + `b`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rewrite(tt.in); got != tt.want {
				t.Errorf("Rewrite(%q)\n got %q\nwant %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDedent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "abc", "abc"},
		{"strip blank lines", "\n  a\n  b\n", "a\nb"},
		{"nested indent", "\n    a\n      b\n    c\n  ", "a\n  b\nc"},
		{"line without prefix", "\n    a\n  b\n    c", "a\n  b\nc"},
		{"blank line inside", "\n  a\n\n  b\n", "a\n\nb"},
		{"tabs", "\n\ta\n\t\tb\n", "a\n\tb"},
		{"first line flush", "a\n  b\n  c", "a\nb\nc"},
		{"indent taken from first indented line", "a\n    b\n      c", "a\nb\n  c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dedent(tt.in); got != tt.want {
				t.Errorf("Dedent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDedentIdempotent(t *testing.T) {
	for _, in := range []string{"\n  a\n  b\n", "one line", "\n\tx\n\ty"} {
		once := Dedent(in)
		if twice := Dedent(once); twice != once {
			t.Errorf("Dedent not idempotent for %q: %q then %q", in, once, twice)
		}
	}

	fenced := []string{
		"```\n  a\n    b\n  ```",
		"```\n  select *\n    from t\n  where x\n```",
		"x = ```\n    Hello ${name}\n      world\n    ```;",
	}
	for _, in := range fenced {
		once := DedentFences(in)
		if twice := DedentFences(once); twice != once {
			t.Errorf("DedentFences not idempotent for %q: %q then %q", in, once, twice)
		}
		if again := Rewrite(Rewrite(in)); again != Rewrite(in) {
			t.Errorf("Rewrite not idempotent for %q: got %q", in, again)
		}
	}
}

func TestDedentFencesEscapesBackticks(t *testing.T) {
	got := DedentFences("```\n  a `b` \\`c\n```")
	if want := "`a \\`b\\` \\`c`"; got != want {
		t.Errorf("DedentFences = %q, want %q", got, want)
	}
	if strings.Contains(DedentFences("``"), "\\") {
		t.Errorf("empty template must not be touched")
	}
}
