// Package fuzztests holds fuzz harnesses for the front end: lexer, parser,
// resolver and lowering. They look for panics, internal errors and broken
// HIR invariants on arbitrary input.
package fuzztests

import (
	"io/fs"
	"path/filepath"
	"testing"

	"ferrule/internal/fixture"
)

const maxFuzzInput = 64 << 10 // 64 KiB

var inlineSeeds = []string{
	"",
	"fn f() {}",
	"fn f<T>(x: &T) -> impl Tr + '_ { x }",
	"async fn run(a: &u8, b: &u8) -> u8 { a.await }",
	"struct S<'a>(&'a u8, [u8; 4]);",
	"impl<'a> Tr for S<'a> { type Out = impl Fn(&u8) -> u8; fn go(&self) {} }",
	"type A = dyn for<'a> Fn(&'a u8) + Send + 'static;",
	"fn g(f: impl Fn(&u8), _: fn(&u8) -> &u8) where T: 'a {}",
	"mod m { const N: usize = 3; fn h() -> [u8; N] { [0; N] } }",
	"fn f<'_>() {}",
	"fn f( {",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
	addFixtureSeeds(f)
}

// addFixtureSeeds adds the source of every fixture crate in the repository.
func addFixtureSeeds(f *testing.F) {
	root := filepath.Join("..", "fixture", "testdata")
	// ошибки обхода не валят фаззер: корпус просто меньше
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}
		crates, err := fixture.Load(path)
		if err != nil {
			return nil
		}
		for _, c := range crates {
			f.Add(clamp([]byte(c.Source)))
		}
		return nil
	})
}

func clamp(src []byte) []byte {
	if len(src) <= maxFuzzInput {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxFuzzInput]...)
}
