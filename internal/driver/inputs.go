package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ferrule/internal/fixture"
)

// inputExt lists the file kinds the driver reads.
var inputExt = map[string]bool{".yaml": true, ".yml": true, ".rs": true}

// listInputs expands directories into their fixture and source files,
// sorted for a deterministic crate order.
func listInputs(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && inputExt[filepath.Ext(path)] {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// LoadInputs reads every crate named by paths. A YAML file contributes
// one crate per document; a .rs file is a crate named after the file.
func LoadInputs(paths []string) ([]*fixture.Fixture, error) {
	files, err := listInputs(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to list inputs: %w", err)
	}
	var out []*fixture.Fixture
	seen := make(map[string]string)
	for _, file := range files {
		var crates []*fixture.Fixture
		switch filepath.Ext(file) {
		case ".rs":
			f, err := sourceFixture(file)
			if err != nil {
				return nil, err
			}
			crates = []*fixture.Fixture{f}
		default:
			crates, err = fixture.Load(file)
			if err != nil {
				return nil, err
			}
		}
		for _, f := range crates {
			if prev, dup := seen[f.Crate]; dup {
				return nil, fmt.Errorf("crate %q is defined in both %s and %s", f.Crate, prev, file)
			}
			seen[f.Crate] = file
		}
		out = append(out, crates...)
	}
	return out, nil
}

// sourceFixture wraps a bare source file; the edition and features come
// from configuration and crate attributes.
func sourceFixture(path string) (*fixture.Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.Map(func(r rune) rune {
		if r == '-' || r == '.' {
			return '_'
		}
		return r
	}, name)
	return &fixture.Fixture{Path: path, Crate: name, Source: string(data)}, nil
}
