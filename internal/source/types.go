package source

import "fortio.org/safecast"

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32 // просто ID источника
	// FileFlags encodes metadata about a source file.
	FileFlags uint8 // метаданные
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota // добавлен не с диска (тест, stdin)
	FileHadBOM
	FileNormalizedCRLF
)

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	// LineIdx holds the offset of every '\n', in order.
	LineIdx []uint32
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// LineBounds returns the byte range [lo, hi) of the 1-based line, its
// trailing newline included. Lines past the end collapse to len(Content).
func (f *File) LineBounds(line uint32) (lo, hi uint32) {
	size := safecast.MustConv[uint32](len(f.Content))
	if line == 0 {
		return 0, 0
	}
	lo = size
	if line == 1 {
		lo = 0
	} else if i := int(line) - 2; i < len(f.LineIdx) {
		lo = f.LineIdx[i] + 1
	}
	hi = size
	if i := int(line) - 1; i < len(f.LineIdx) {
		hi = f.LineIdx[i] + 1
	}
	return lo, hi
}
