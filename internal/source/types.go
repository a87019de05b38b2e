package source

// FileID indexes a File inside its FileSet. IDs are dense and never reused.
type FileID uint32

// FileFlags records how a file's bytes were obtained and what Load had to
// rewrite before spans could point into them.
type FileFlags uint8

const (
	FileVirtual FileFlags = 1 << iota // added from memory, never read from disk
	FileHadBOM
	FileNormalizedCRLF
)

// File is one program description as the loader saw it. Content is already
// normalized, so spans index it directly.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offset of each '\n'
	Flags   FileFlags
}

// LineCol is a 1-based line and byte column.
type LineCol struct {
	Line uint32
	Col  uint32
}
