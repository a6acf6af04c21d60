package testkit

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

// UpdateEnv names the environment variable that rewrites golden files
// instead of comparing against them.
const UpdateEnv = "FERRULE_UPDATE_GOLDEN"

// Diff returns a unified diff of want and got, or "" when they are equal.
func Diff(wantName, gotName, want, got string) string {
	if want == got {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: wantName,
		ToFile:   gotName,
		Context:  3,
	})
	if err != nil {
		// difflib only fails on writer errors; a strings.Builder never fails
		return err.Error()
	}
	if diff == "" {
		// the inputs differ only in a missing trailing newline
		return "--- " + wantName + "\n+++ " + gotName + "\n(trailing newline differs)\n"
	}
	return diff
}

// Golden compares got with testdata/<name>.golden. With FERRULE_UPDATE_GOLDEN
// set the file is rewritten instead.
func Golden(t testing.TB, name, got string) {
	t.Helper()
	path := filepath.Join("testdata", name+".golden")
	if os.Getenv(UpdateEnv) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("golden: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0o600); err != nil {
			t.Fatalf("golden: %v", err)
		}
		return
	}
	want, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		t.Fatalf("golden file %s is missing; rerun with %s=1", path, UpdateEnv)
	}
	if err != nil {
		t.Fatalf("golden: %v", err)
	}
	if diff := Diff(path, "got", normalize(string(want)), normalize(got)); diff != "" {
		t.Errorf("output differs from %s:\n%s", path, diff)
	}
}

// normalize drops carriage returns so checkouts with CRLF line endings
// still compare equal.
func normalize(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
