package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"ferrule/internal/diag"
	"ferrule/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Apply the fixes suggested by lowering diagnostics",
	Long: `Lower the given crates and apply the edits their diagnostics suggest,
such as adding a missing dyn. Only .rs inputs are rewritten; crates read from
fixture documents are reported but left alone.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply every fix instead of the first one")
	fixCmd.Flags().Bool("dry-run", false, "print a diff instead of writing files")
}

func runFix(cmd *cobra.Command, args []string) error {
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}

	res, _, cleanup, err := runDriver(cmd, args, runOptions{ui: uiModeOff})
	if err != nil {
		return err
	}
	defer cleanup()

	var diags []diag.Diagnostic
	for _, c := range res.Crates {
		diags = append(diags, c.Bag.Items()...)
	}
	opts := fix.ApplyOptions{Mode: fix.ApplyModeOnce, DryRun: dryRun}
	if all {
		opts.Mode = fix.ApplyModeAll
	}

	out := cmd.OutOrStdout()
	result, err := fix.Apply(res.FileSet, diags, opts)
	for _, s := range result.Skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %q in %s: %s\n", s.Title, s.Path, s.Reason)
	}
	if errors.Is(err, fix.ErrNoFixes) {
		fmt.Fprintln(out, "no applicable fixes")
		return nil
	}
	if err != nil {
		return err
	}

	for _, a := range result.Applied {
		fmt.Fprintf(out, "%s %s: %s\n", a.Code.ID(), a.Path, a.Title)
	}
	if dryRun {
		return printFixDiffs(out, result.Files)
	}
	for _, f := range result.Files {
		fmt.Fprintf(out, "fixed %s (%d edit(s))\n", f.Path, f.EditCount)
	}
	return nil
}

func printFixDiffs(w io.Writer, files []fix.FileChange) error {
	for _, f := range files {
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(f.Before)),
			B:        difflib.SplitLines(string(f.After)),
			FromFile: "a/" + f.Path,
			ToFile:   "b/" + f.Path,
			Context:  2,
		})
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, text); err != nil {
			return err
		}
	}
	return nil
}
