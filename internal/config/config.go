// Package config reads ferrule.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"ferrule/internal/source"
	"ferrule/internal/trace"
)

// FileName is the name Find looks for.
const FileName = "ferrule.toml"

// Config is the decoded file with defaults filled in.
type Config struct {
	// Path is the file the config was read from; empty for Default().
	Path string `toml:"-"`

	Lower       LowerConfig       `toml:"lower"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
	Trace       TraceConfig       `toml:"trace"`
	Cache       CacheConfig       `toml:"cache"`
}

type LowerConfig struct {
	Edition                  string `toml:"edition"`
	IncrementalRelativeSpans bool   `toml:"incremental_relative_spans"`
	DebugAssertions          bool   `toml:"debug_assertions"`
}

type DiagnosticsConfig struct {
	Max int `toml:"max"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

type CacheConfig struct {
	Dir     string `toml:"dir"`
	Enabled bool   `toml:"enabled"`
}

// Default is the configuration used when no file exists.
func Default() Config {
	return Config{
		Lower: LowerConfig{
			Edition:         source.DefaultEdition.String(),
			DebugAssertions: true,
		},
		Diagnostics: DiagnosticsConfig{Max: 100},
		Trace:       TraceConfig{Level: "off", Mode: "stream", Output: "stderr"},
		Cache:       CacheConfig{Dir: ".ferrule/cache", Enabled: false},
	}
}

// Find walks up from startDir looking for ferrule.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Load decodes path. Keys the file leaves out keep their defaults.
func Load(path string) (Config, error) {
	raw := Default()
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("cache", "dir") && !filepath.IsAbs(raw.Cache.Dir) {
		raw.Cache.Dir = filepath.Join(filepath.Dir(path), raw.Cache.Dir)
	}
	raw.Path = path
	if err := raw.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}

// LoadNearest loads the ferrule.toml closest to startDir, or Default() when
// there is none.
func LoadNearest(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the values that have a closed set of choices.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.Edition(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.TraceLevel(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.TraceMode(); err != nil {
		errs = append(errs, err)
	}
	if c.Diagnostics.Max <= 0 {
		errs = append(errs, fmt.Errorf("[diagnostics].max must be positive, got %d", c.Diagnostics.Max))
	}
	return errors.Join(errs...)
}

// Edition parses [lower].edition.
func (c Config) Edition() (source.Edition, error) {
	e, err := source.ParseEdition(c.Lower.Edition)
	if err != nil {
		return 0, fmt.Errorf("[lower].edition: %w", err)
	}
	return e, nil
}

// TraceLevel parses [trace].level.
func (c Config) TraceLevel() (trace.Level, error) {
	lvl, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return 0, fmt.Errorf("[trace].level: %w", err)
	}
	return lvl, nil
}

// TraceMode parses [trace].mode.
func (c Config) TraceMode() (trace.StorageMode, error) {
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return 0, fmt.Errorf("[trace].mode: %w", err)
	}
	return mode, nil
}

// TracerConfig builds the tracer configuration. An output of "stderr" or
// "-" writes to standard error.
func (c Config) TracerConfig() (trace.Config, error) {
	lvl, err := c.TraceLevel()
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := c.TraceMode()
	if err != nil {
		return trace.Config{}, err
	}
	out := c.Trace.Output
	if out == "stderr" {
		out = "-"
	}
	return trace.Config{Level: lvl, Mode: mode, Format: trace.FormatAuto, OutputPath: out}, nil
}
