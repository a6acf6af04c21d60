package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ferrule/internal/config"
	"ferrule/internal/diag"
	"ferrule/internal/diagfmt"
	"ferrule/internal/source"
)

// loadConfig reads ferrule.toml and applies the global flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, err
	}

	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadNearest(".")
	}
	if err != nil {
		return config.Config{}, err
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"edition", &cfg.Lower.Edition},
		{"trace", &cfg.Trace.Output},
		{"trace-level", &cfg.Trace.Level},
		{"trace-mode", &cfg.Trace.Mode},
	}
	for _, o := range overrides {
		if !flags.Changed(o.flag) {
			continue
		}
		if *o.dst, err = flags.GetString(o.flag); err != nil {
			return config.Config{}, err
		}
	}
	// --trace alone turns the stream on at phase level
	if flags.Changed("trace") && !flags.Changed("trace-level") && cfg.Trace.Level == "off" {
		cfg.Trace.Level = "phase"
	}
	if flags.Changed("max-diagnostics") {
		if cfg.Diagnostics.Max, err = flags.GetInt("max-diagnostics"); err != nil {
			return config.Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// reportSetupError prints a failure that happened before any crate was
// loaded, in the same shape as crate diagnostics.
func reportSetupError(cmd *cobra.Command, code diag.Code, err error) error {
	bag := diag.NewBag(1)
	bag.Add(diag.Diagnostic{Severity: diag.SevError, Code: code, Message: err.Error()})
	color, cerr := useColor(cmd, os.Stderr)
	if cerr != nil {
		return cerr
	}
	if perr := diagfmt.Pretty(cmd.ErrOrStderr(), bag, source.NewFileSet(), diagfmt.PrettyOpts{Color: color}); perr != nil {
		return perr
	}
	cmd.SilenceErrors = true
	return errReported
}
