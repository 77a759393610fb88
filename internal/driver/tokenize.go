package driver

import (
	"glaze/internal/lexer"
	"glaze/internal/source"
	"glaze/internal/token"
)

// Segment is a maximal run of runes sharing one coarse state.
type Segment struct {
	State     token.State
	Directive bool
	Start     uint32
	End       uint32
	Pos       source.LineCol
	Text      string
}

type TokenizeResult struct {
	File     *source.File
	Tokens   []token.ScanToken
	Segments []Segment
}

// Tokenize classifies a file with the directive-aware source grammar.
func Tokenize(path string) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)
	text := file.Text()
	toks := lexer.Scan(lexer.TypeScript.WithDirectives(), text)
	return &TokenizeResult{
		File:     file,
		Tokens:   toks,
		Segments: segments(file, text, toks),
	}, nil
}

func segments(file *source.File, text string, toks []token.ScanToken) []Segment {
	var out []Segment
	for i := 0; i < len(toks); {
		j := i + 1
		for j < len(toks) && toks[j].State() == toks[i].State() && toks[j].InDirective() == toks[i].InDirective() {
			j++
		}
		start, end := toks[i].Off, toks[j-1].End()
		out = append(out, Segment{
			State:     toks[i].State(),
			Directive: toks[i].InDirective(),
			Start:     start,
			End:       end,
			Pos:       file.LineCol(start),
			Text:      text[start:end],
		})
		i = j
	}
	return out
}
