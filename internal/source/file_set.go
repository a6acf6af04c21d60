package source

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"

	"fortio.org/safecast"
)

// FileSet owns the text of every file of a run. Files are only appended, so
// a FileID stays valid for the life of the set.
type FileSet struct {
	files []File
}

func NewFileSet() *FileSet {
	return &FileSet{}
}

// Add registers already normalized content. Adding the same path again
// creates a new file.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	id := FileID(safecast.MustConv[uint32](len(fileSet.files)))
	path = filepath.ToSlash(filepath.Clean(path))
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: newlineOffsets(content),
		Flags:   flags,
	})
	return id
}

var bom = []byte("\xEF\xBB\xBF")

// Load reads path from disk. A leading BOM is dropped and CRLF line endings
// become LF; both are recorded in the file flags.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var flags FileFlags
	if rest, ok := bytes.CutPrefix(content, bom); ok {
		content = rest
		flags |= FileHadBOM
	}
	if bytes.Contains(content, []byte("\r\n")) {
		content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual registers text that does not live on disk: fixture crates and
// test input.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

func (fileSet *FileSet) Get(id FileID) *File {
	return &fileSet.files[id]
}

// Resolve converts a span into 1-based line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := &fileSet.files[span.File]
	return f.position(span.Start), f.position(span.End)
}

// Snippet returns the text covered by span, or "" when it falls outside the file.
func (fileSet *FileSet) Snippet(span Span) string {
	if int(span.File) >= len(fileSet.files) {
		return ""
	}
	f := &fileSet.files[span.File]
	if span.End < span.Start || int(span.End) > len(f.Content) {
		return ""
	}
	return string(f.Content[span.Start:span.End])
}

func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

func newlineOffsets(content []byte) []uint32 {
	var out []uint32
	for off := 0; ; {
		i := bytes.IndexByte(content[off:], '\n')
		if i < 0 {
			return out
		}
		off += i
		out = append(out, safecast.MustConv[uint32](off))
		off++
	}
}

// position maps a byte offset to its line and column. The line is one more
// than the number of newlines before off.
func (f *File) position(off uint32) LineCol {
	line, _ := slices.BinarySearch(f.LineIdx, off)
	var lineStart uint32
	if line > 0 {
		lineStart = f.LineIdx[line-1] + 1
	}
	return LineCol{Line: safecast.MustConv[uint32](line + 1), Col: off - lineStart + 1}
}
