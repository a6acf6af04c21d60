// Package fixture reads YAML crate fixtures. A fixture file holds one or
// more YAML documents; each document is a crate: its name, edition, crate
// features, source text and, optionally, what lowering it must produce.
//
//	crate: demo
//	edition: 2018
//	features: [in_band_lifetimes]
//	source: |
//	  fn f(x: &'a u8) {}
//	expect:
//	  owners: 2
//	  diagnostics:
//	    - code: LOW4003
//	      severity: warning
package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"ferrule/internal/diag"
	"ferrule/internal/source"
)

// Known crate features.
var knownFeatures = []string{"in_band_lifetimes"}

// Fixture is one crate document.
type Fixture struct {
	// Path is the file the document came from; Index is its position in it.
	Path  string `yaml:"-"`
	Index int    `yaml:"-"`

	Crate    string   `yaml:"crate"`
	Edition  string   `yaml:"edition"`
	Features []string `yaml:"features"`
	Source   string   `yaml:"source"`
	Expect   *Expect  `yaml:"expect"`
}

// Expect is what lowering the crate must produce. Zero fields are not
// checked.
type Expect struct {
	Owners      int            `yaml:"owners"`
	Diagnostics []ExpectedDiag `yaml:"diagnostics"`
	// NoDiagnostics requires an empty report; it conflicts with Diagnostics.
	NoDiagnostics bool `yaml:"no_diagnostics"`
	// HIR is the short dump (hir.DumpString) of the lowered crate.
	HIR string `yaml:"hir"`
}

// ExpectedDiag matches one reported diagnostic. Message is a substring.
type ExpectedDiag struct {
	Code     string `yaml:"code"`
	Severity string `yaml:"severity"`
	Message  string `yaml:"message"`
}

// Load reads every crate document in path.
func Load(path string) ([]*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return Decode(bytes.NewReader(data), path)
}

// Decode reads every crate document from r. path is only used in errors.
func Decode(r io.Reader, path string) ([]*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var out []*Fixture
	for i := 0; ; i++ {
		f := &Fixture{Path: path, Index: i}
		err := dec.Decode(f)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: document %d: %w", path, i, err)
		}
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("%s: document %d: %w", path, i, err)
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no crate documents", path)
	}
	if err := checkUniqueNames(out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// Validate checks the fields that do not need parsing the source.
func (f *Fixture) Validate() error {
	var errs []error
	if f.Crate == "" {
		errs = append(errs, errors.New("crate name is empty"))
	}
	if _, err := f.EditionValue(); err != nil {
		errs = append(errs, err)
	}
	for _, feat := range f.Features {
		if !slices.Contains(knownFeatures, feat) {
			errs = append(errs, fmt.Errorf("unknown feature %q", feat))
		}
	}
	if f.Expect != nil {
		if f.Expect.NoDiagnostics && len(f.Expect.Diagnostics) > 0 {
			errs = append(errs, errors.New("expect: no_diagnostics conflicts with diagnostics"))
		}
		for _, d := range f.Expect.Diagnostics {
			if d.Severity == "" {
				continue
			}
			if _, err := diag.ParseSeverity(d.Severity); err != nil {
				errs = append(errs, fmt.Errorf("expect: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

// EditionValue parses Edition; an empty edition is the default one.
func (f *Fixture) EditionValue() (source.Edition, error) {
	return source.ParseEdition(f.Edition)
}

// HasFeature reports whether the document enables feat.
func (f *Fixture) HasFeature(feat string) bool {
	return slices.Contains(f.Features, feat)
}

// FileName is the name the source is registered under. Sources read from
// a .rs file keep its path.
func (f *Fixture) FileName() string {
	if strings.HasSuffix(f.Path, ".rs") {
		return f.Path
	}
	return fmt.Sprintf("%s#%s.rs", f.Path, f.Crate)
}

func checkUniqueNames(fs []*Fixture) error {
	seen := make(map[string]int, len(fs))
	for _, f := range fs {
		if prev, dup := seen[f.Crate]; dup {
			return fmt.Errorf("crate %q is defined by documents %d and %d", f.Crate, prev, f.Index)
		}
		seen[f.Crate] = f.Index
	}
	return nil
}
