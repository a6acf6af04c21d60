package fixture

import (
	"fmt"

	"ferrule/internal/ast"
	"ferrule/internal/diag"
	"ferrule/internal/parser"
	"ferrule/internal/resolve"
	"ferrule/internal/source"
)

// Crate is a parsed and resolved fixture, ready for lowering.
type Crate struct {
	Fixture *Fixture
	File    *source.File
	Edition source.Edition
	AST     *ast.Crate
	Table   *resolve.Table
}

// Build parses and resolves f. Syntax and resolution diagnostics go to rep;
// a crate with syntax errors is not resolved and Build fails.
func (f *Fixture) Build(fs *source.FileSet, rep diag.Reporter) (*Crate, error) {
	edition, err := f.EditionValue()
	if err != nil {
		return nil, err
	}
	if rep == nil {
		rep = diag.NopReporter{}
	}
	id := fs.AddVirtual(f.FileName(), []byte(f.Source))
	file := fs.Get(id)

	res := parser.ParseFile(file, f.Crate, parser.Options{Reporter: rep})
	if res.Errors > 0 {
		return nil, fmt.Errorf("crate %s: %d syntax error(s)", f.Crate, res.Errors)
	}
	table := resolve.Collect(res.Crate, resolve.Options{
		Reporter:        rep,
		InBandLifetimes: f.HasFeature("in_band_lifetimes"),
	})
	return &Crate{Fixture: f, File: file, Edition: edition, AST: res.Crate, Table: table}, nil
}
