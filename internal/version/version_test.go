package version

import (
	"strings"
	"testing"
)

func override(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
}

func TestVersionDefault(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestLine(t *testing.T) {
	tests := []struct {
		version, commit, date string
		want                  string
	}{
		{"0.1.0-dev", "", "", "ferrule 0.1.0-dev"},
		{"1.2.3", "1234567890abcdef1234", "", "ferrule 1.2.3 (1234567890ab)"},
		{"1.2.3", "abc", "2024-01-15", "ferrule 1.2.3 (abc) built 2024-01-15"},
	}
	for _, tt := range tests {
		override(t, tt.version, tt.commit, tt.date)
		if got := Line(false); got != tt.want {
			t.Errorf("Line() = %q, want %q", got, tt.want)
		}
	}
}

func TestColoredKeepsSuffix(t *testing.T) {
	override(t, "1.2.3-rc.1+build.123", "", "")
	got := Colored(true)
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected ANSI escapes in %q", got)
	}
	if !strings.HasSuffix(got, "-rc.1+build.123") {
		t.Fatalf("suffix lost: %q", got)
	}
	override(t, "snapshot", "", "")
	if got := Colored(true); got != "snapshot" {
		t.Fatalf("non-semver version altered: %q", got)
	}
}
