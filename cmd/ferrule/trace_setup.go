package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ferrule/internal/config"
	"ferrule/internal/trace"
)

// setupTracing builds the tracer described by cfg and attaches it to the
// command context. The returned cleanup flushes and closes it.
func setupTracing(cmd *cobra.Command, cfg config.Config) (func(), error) {
	tcfg, err := cfg.TracerConfig()
	if err != nil {
		return nil, err
	}
	if tcfg.Level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	ringSize, err := cmd.Root().PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	tcfg.RingSize = ringSize

	tracer, err := trace.New(tcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	cleanup := func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}
