package fuzztests

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"glaze/internal/preprocess"
)

// maxSeedBytes bounds one seed.
const maxSeedBytes = 64 << 10

var inlineSeeds = []string{
	"const w = 10px;\nconst h = 1.5em + 2rem;\n",
	"el.style.color = #fff; const bg = #12345678;\n",
	"#define SQ(x) ((x) * (x))\nconst a = SQ(3);\n",
	"#define N 4\n#define N 5\nlet n = N % 2;\n",
	"#define LONG(a, b) \\\n  (a + b)\nLONG(1, (2, 3));\n",
	"const css = ```\n    .a { width: 10px; }\n  ```;\n",
	"const s = '10px #fff'; // 12px\n/* #000 */ const r = /#[0-9]+px/g;\n",
	"const t = `${a}px ${`nested ${b}`}`;\n",
	"if (a / b > 2) { x = y / 3 / z; }\n",
	"#define\n#define 1bad\n#define F(\nF(",
	"'unterminated\n\"also\n`template",
}

// addCorpusSeeds seeds f with the inline cases and every preprocessed
// source under testdata, each cut to maxSeedBytes.
func addCorpusSeeds(f *testing.F) {
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
	root := filepath.Join("..", "..", "testdata")
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !preprocess.Applies(path) {
			return nil
		}
		// #nosec G304 -- path comes from the testdata walk
		if src, err := os.ReadFile(path); err == nil {
			f.Add(bytes.Clone(src[:min(len(src), maxSeedBytes)]))
		}
		return nil
	})
}
