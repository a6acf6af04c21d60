package main

import (
	"io"

	"github.com/spf13/cobra"

	"ferrule/internal/config"
	"ferrule/internal/diag"
	"ferrule/internal/driver"
)

// runOptions are the per-command switches layered over the config.
type runOptions struct {
	check         bool
	relativeSpans bool
	jobs          int
	cacheDir      string
	ui            uiMode
	title         string
}

// runDriver loads the inputs named by args and runs the driver. The
// returned cleanup must be called once the result has been printed.
func runDriver(cmd *cobra.Command, args []string, ro runOptions) (*driver.Result, config.Config, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, nil, reportSetupError(cmd, diag.IOConfigError, err)
	}
	if ro.cacheDir != "" {
		cfg.Cache.Dir = ro.cacheDir
		cfg.Cache.Enabled = true
	}

	cleanup, err := setupTracing(cmd, cfg)
	if err != nil {
		return nil, cfg, nil, err
	}

	inputs, err := driver.LoadInputs(args)
	if err != nil {
		cleanup()
		return nil, cfg, nil, reportSetupError(cmd, diag.IOLoadFileError, err)
	}

	opts, err := driver.OptionsFromConfig(cfg)
	if err != nil {
		cleanup()
		return nil, cfg, nil, reportSetupError(cmd, diag.IOCacheError, err)
	}
	opts.CheckExpectations = ro.check
	opts.IncrementalRelativeSpans = opts.IncrementalRelativeSpans || ro.relativeSpans
	opts.Jobs = ro.jobs
	opts.ICEOutput = cmd.ErrOrStderr()

	var res *driver.Result
	if shouldUseTUI(ro.ui, len(inputs)) {
		res, err = runWithUI(cmd.Context(), ro.title, inputs, opts)
	} else {
		res, err = driver.Run(cmd.Context(), inputs, opts)
	}
	if err != nil {
		cleanup()
		return nil, cfg, nil, err
	}
	return res, cfg, cleanup, nil
}

// printTimings writes the phase summary when --timings is set.
func printTimings(cmd *cobra.Command, res *driver.Result) error {
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil || !timings {
		return err
	}
	_, err = io.WriteString(cmd.ErrOrStderr(), res.Timer.Summary())
	return err
}
