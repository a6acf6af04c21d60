package fuzztests

import (
	"context"
	"errors"
	"testing"
	"time"

	"ferrule/internal/diag"
	"ferrule/internal/lexer"
	"ferrule/internal/lower"
	"ferrule/internal/parser"
	"ferrule/internal/resolve"
	"ferrule/internal/source"
	"ferrule/internal/testkit"
	"ferrule/internal/token"
)

// parseTimeout bounds one input; longer means the parser is looping.
const parseTimeout = 5 * time.Second

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.rs", clamp(input)))
		lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: diag.NewBag(64)}})
		// tokens are never empty, so this bound is generous
		for i := 0; i <= 2*len(file.Content)+2; i++ {
			if lx.Next().Kind == token.EOF {
				return
			}
		}
		t.Fatalf("lexer did not reach EOF on %d bytes", len(file.Content))
	})
}

func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Add([]byte("fn f() { let x = 1\nlet y = 2; }"))
	f.Add([]byte("fn f() { { { { } } } }"))
	f.Add([]byte("fn f<,>() where , {}"))
	f.Fuzz(func(t *testing.T, input []byte) {
		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.rs", clamp(input)))

		done := make(chan struct{})
		go func() {
			defer close(done)
			parser.ParseFile(file, "fuzz", parser.Options{Reporter: diag.BagReporter{Bag: diag.NewBag(128)}, MaxErrors: 128})
		}()
		select {
		case <-done:
		case <-time.After(parseTimeout):
			t.Fatalf("parser did not finish within %v", parseTimeout)
		}
	})
}

// FuzzLowerCrate runs inputs that parse through resolution and lowering.
// Lowering must never fail with an internal error and its output must pass
// the HIR checks.
func FuzzLowerCrate(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input)
		// lowering records its results in the definitions table, so each
		// mode gets a fresh parse
		for _, relative := range []bool{false, true} {
			fs := source.NewFileSet()
			file := fs.Get(fs.AddVirtual("fuzz.rs", input))
			rep := diag.BagReporter{Bag: diag.NewBag(256)}

			res := parser.ParseFile(file, "fuzz", parser.Options{Reporter: rep, MaxErrors: 16})
			if res.Errors > 0 {
				return
			}
			table := resolve.Collect(res.Crate, resolve.Options{Reporter: rep})
			c, err := lower.Crate(context.Background(), res.Crate, table, lower.Options{
				Reporter:                 rep,
				Edition:                  source.DefaultEdition,
				IncrementalRelativeSpans: relative,
				DebugAssertions:          true,
			})
			var ice *lower.InternalError
			if errors.As(err, &ice) {
				t.Fatalf("internal error (relative=%v): %v\ninput: %q", relative, ice, input)
			}
			if err != nil {
				t.Fatalf("lower: %v", err)
			}
			if err := testkit.CheckCrate(c, table.Definitions(), testkit.CheckOptions{RelativeSpans: relative}); err != nil {
				t.Fatalf("HIR check (relative=%v): %v\ninput: %q", relative, err, input)
			}
		}
	})
}
