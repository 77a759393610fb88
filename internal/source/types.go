package source

// FileID identifies a file version within one FileSet; ids start at 0.
type FileID uint32

// FileFlags record how a file's text was obtained and normalized.
type FileFlags uint8

const (
	FileHadBOM         FileFlags = 1 << iota // a UTF-8 BOM was stripped
	FileNormalizedCRLF                       // \r\n became \n
)

// File is one registered text with its line index.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	// LineIdx holds the offset of every '\n'.
	LineIdx []uint32
	// Hash is the sha256 of Content.
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based position; Col counts bytes.
type LineCol struct {
	Line uint32
	Col  uint32
}
