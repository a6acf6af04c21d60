package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ferrule/internal/driver"
)

var hashCmd = &cobra.Command{
	Use:   "hash [paths...]",
	Short: "Print crate and owner hashes",
	Long: `Lower the given crates and print the crate hash followed by the hash of
every owner. With a hash cache (--cache-dir or [cache] in ferrule.toml) the
owners that changed since the previous run are listed too.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHash,
}

func init() {
	hashCmd.Flags().Bool("full", false, "print full digests instead of short ones")
	hashCmd.Flags().Bool("relative-spans", false, "store spans relative to their owner")
	hashCmd.Flags().String("cache-dir", "", "compare with and update the hash cache in this directory")
}

func runHash(cmd *cobra.Command, args []string) error {
	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return err
	}
	ro := runOptions{ui: uiModeOff}
	if ro.relativeSpans, err = cmd.Flags().GetBool("relative-spans"); err != nil {
		return err
	}
	if ro.cacheDir, err = cmd.Flags().GetString("cache-dir"); err != nil {
		return err
	}

	res, cfg, cleanup, err := runDriver(cmd, args, ro)
	if err != nil {
		return err
	}
	defer cleanup()

	colored, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}
	printHashes(cmd.OutOrStdout(), res, full, cfg.Cache.Enabled, colored)
	printCrateErrors(cmd.ErrOrStderr(), res, false, colored)
	if err := printTimings(cmd, res); err != nil {
		return err
	}
	if res.Failed() {
		cmd.SilenceErrors = true
		return errReported
	}
	return nil
}

func printHashes(w io.Writer, res *driver.Result, full, cached, colored bool) {
	added := color.New(color.FgGreen)
	changed := color.New(color.FgYellow)
	removed := color.New(color.FgRed)
	for _, c := range []*color.Color{added, changed, removed} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, c := range res.Crates {
		if c.HIR == nil {
			fmt.Fprintf(w, "crate %s: not lowered\n", c.Name())
			continue
		}
		digest := c.HIR.Hash.Short()
		if full {
			digest = c.HIR.Hash.String()
		}
		fmt.Fprintf(w, "crate %s %s\n", c.Name(), digest)
		for _, def := range c.HIR.OwnerDefs() {
			h := c.HIR.Owner(def).Nodes.Hash
			d := h.Short()
			if full {
				d = h.String()
			}
			fmt.Fprintf(w, "  %s %s\n", d, c.Defs.PathString(def))
		}

		if !cached {
			continue
		}
		switch {
		case c.Delta.Fresh:
			fmt.Fprintln(w, "  cache: fresh")
		case c.Delta.Empty():
			fmt.Fprintln(w, "  cache: unchanged")
		default:
			fmt.Fprintln(w, "  cache:")
			for _, p := range c.Delta.Added {
				fmt.Fprintf(w, "    %s %s\n", added.Sprint("+"), p)
			}
			for _, p := range c.Delta.Changed {
				fmt.Fprintf(w, "    %s %s\n", changed.Sprint("~"), p)
			}
			for _, p := range c.Delta.Removed {
				fmt.Fprintf(w, "    %s %s\n", removed.Sprint("-"), p)
			}
		}
	}
}
