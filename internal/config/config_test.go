package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ferrule/internal/source"
	"ferrule/internal/trace"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[lower]
edition = "2018"

[cache]
dir = "cache"
enabled = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ed, _ := cfg.Edition(); ed != source.Edition2018 {
		t.Errorf("edition = %v, want 2018", ed)
	}
	if !cfg.Lower.DebugAssertions {
		t.Errorf("debug_assertions default lost")
	}
	if cfg.Diagnostics.Max != 100 {
		t.Errorf("diagnostics.max = %d, want 100", cfg.Diagnostics.Max)
	}
	if want := filepath.Join(dir, "cache"); cfg.Cache.Dir != want {
		t.Errorf("cache dir = %q, want %q", cfg.Cache.Dir, want)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q", cfg.Path)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[lower]
editon = "2018"
`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "lower.editon") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[lower]
edition = "2030"

[trace]
level = "chatty"

[diagnostics]
max = 0
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{path, "[lower].edition", "[trace].level", "[diagnostics].max"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
}

func TestLoadNearestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[diagnostics]\nmax = 7\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadNearest(nested)
	if err != nil {
		t.Fatalf("LoadNearest: %v", err)
	}
	if cfg.Diagnostics.Max != 7 {
		t.Errorf("max = %d, want 7", cfg.Diagnostics.Max)
	}
}

func TestTracerConfig(t *testing.T) {
	cfg := Default()
	cfg.Trace.Level = "detail"
	cfg.Trace.Mode = "both"
	tc, err := cfg.TracerConfig()
	if err != nil {
		t.Fatal(err)
	}
	if tc.Level != trace.LevelDetail || tc.Mode != trace.ModeBoth || tc.OutputPath != "-" {
		t.Errorf("unexpected tracer config: %+v", tc)
	}
}
