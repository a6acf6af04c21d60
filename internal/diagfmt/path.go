package diagfmt

import (
	"os"
	"path/filepath"
	"strings"

	"ferrule/internal/diag"
	"ferrule/internal/source"
)

func formatPath(f *source.File, mode PathMode, base string) string {
	switch mode {
	case PathModeBasename:
		return filepath.Base(f.Path)
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return abs
		}
		return f.Path
	case PathModeRelative, PathModeAuto:
		if f.Flags&source.FileVirtual != 0 && mode == PathModeAuto {
			return f.Path
		}
		if base == "" {
			base, _ = os.Getwd()
		}
		abs, err := filepath.Abs(f.Path)
		if err != nil {
			return f.Path
		}
		rel, err := filepath.Rel(base, abs)
		if err != nil || (mode == PathModeAuto && strings.HasPrefix(rel, "..")) {
			return f.Path
		}
		return rel
	default:
		return f.Path
	}
}

// located reports whether d points into a source file. Internal and I/O
// errors are reported without a position.
func located(d *diag.Diagnostic, fs *source.FileSet) bool {
	if d.Code.Spanless() {
		return false
	}
	return fs != nil && int(d.Primary.File) < fs.Len()
}
