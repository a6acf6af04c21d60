package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ferrule/internal/diag"
	"ferrule/internal/diagfmt"
	"ferrule/internal/driver"
	"ferrule/internal/hir"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [paths...]",
	Short: "Lower crates and report diagnostics",
	Long: `Lower every crate found in the given fixture files (.yaml), source files
(.rs) or directories. With --check the expectations recorded in fixtures are
verified as well.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLower,
}

func init() {
	lowerCmd.Flags().String("format", "pretty", "diagnostic format (pretty|short|json)")
	lowerCmd.Flags().Bool("check", false, "verify fixture expectations")
	lowerCmd.Flags().Bool("relative-spans", false, "store spans relative to their owner")
	lowerCmd.Flags().Int("jobs", 0, "crates lowered in parallel (0 = GOMAXPROCS)")
	lowerCmd.Flags().Bool("dump-hir", false, "print the lowered HIR")
	lowerCmd.Flags().Bool("with-notes", true, "include diagnostic notes")
	lowerCmd.Flags().Bool("suggest", false, "include fix suggestions")
	lowerCmd.Flags().Bool("fullpath", false, "emit absolute file paths")
	lowerCmd.Flags().String("ui", "auto", "progress view on stderr (auto|on|off)")
}

type lowerFlags struct {
	format    string
	dumpHIR   bool
	withNotes bool
	suggest   bool
	fullpath  bool
}

func readLowerFlags(cmd *cobra.Command) (lowerFlags, runOptions, error) {
	var (
		lf  lowerFlags
		ro  runOptions
		err error
	)
	flags := cmd.Flags()
	if lf.format, err = flags.GetString("format"); err != nil {
		return lf, ro, err
	}
	switch lf.format {
	case "pretty", "short", "json":
	default:
		return lf, ro, fmt.Errorf("unsupported format %q (must be pretty, short or json)", lf.format)
	}
	if lf.dumpHIR, err = flags.GetBool("dump-hir"); err != nil {
		return lf, ro, err
	}
	if lf.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return lf, ro, err
	}
	if lf.suggest, err = flags.GetBool("suggest"); err != nil {
		return lf, ro, err
	}
	if lf.fullpath, err = flags.GetBool("fullpath"); err != nil {
		return lf, ro, err
	}
	if ro.check, err = flags.GetBool("check"); err != nil {
		return lf, ro, err
	}
	if ro.relativeSpans, err = flags.GetBool("relative-spans"); err != nil {
		return lf, ro, err
	}
	if ro.jobs, err = flags.GetInt("jobs"); err != nil {
		return lf, ro, err
	}
	mode, err := flags.GetString("ui")
	if err != nil {
		return lf, ro, err
	}
	if ro.ui, err = readUIMode(mode); err != nil {
		return lf, ro, err
	}
	ro.title = "lowering"
	return lf, ro, nil
}

func runLower(cmd *cobra.Command, args []string) error {
	lf, ro, err := readLowerFlags(cmd)
	if err != nil {
		return err
	}
	res, _, cleanup, err := runDriver(cmd, args, ro)
	if err != nil {
		return err
	}
	defer cleanup()

	colored, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if lf.dumpHIR {
		for _, c := range res.Crates {
			if c.HIR == nil {
				continue
			}
			fmt.Fprintf(out, "== crate %s ==\n", c.Name())
			if err := hir.Dump(out, c.HIR, c.Defs); err != nil {
				return err
			}
		}
	}

	if err := printDiagnostics(out, res, lf, colored); err != nil {
		return err
	}
	printCrateErrors(cmd.ErrOrStderr(), res, ro.check, colored)
	if err := printTimings(cmd, res); err != nil {
		return err
	}

	if res.Failed() {
		cmd.SilenceErrors = true
		return errReported
	}
	return nil
}

// crateDiagnosticsJSON is one entry of the json format.
type crateDiagnosticsJSON struct {
	Crate string `json:"crate"`
	diagfmt.DiagnosticsOutput
	Error       string `json:"error,omitempty"`
	ExpectError string `json:"expect_error,omitempty"`
}

func printDiagnostics(w io.Writer, res *driver.Result, lf lowerFlags, colored bool) error {
	pathMode := diagfmt.PathModeAuto
	if lf.fullpath {
		pathMode = diagfmt.PathModeAbsolute
	}

	switch lf.format {
	case "json":
		crates := make([]crateDiagnosticsJSON, 0, len(res.Crates))
		for _, c := range res.Crates {
			built, err := diagfmt.BuildDiagnosticsOutput(c.Bag, res.FileSet, diagfmt.JSONOpts{
				IncludePositions: true,
				PathMode:         pathMode,
				IncludeNotes:     lf.withNotes,
				IncludeFixes:     lf.suggest,
				IncludePreviews:  lf.suggest,
			})
			if err != nil {
				return err
			}
			entry := crateDiagnosticsJSON{Crate: c.Name(), DiagnosticsOutput: built}
			if c.Err != nil {
				entry.Error = c.Err.Error()
			}
			if c.ExpectErr != nil {
				entry.ExpectError = c.ExpectErr.Error()
			}
			crates = append(crates, entry)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Crates []crateDiagnosticsJSON `json:"crates"`
		}{crates})
	case "short":
		for _, c := range res.Crates {
			if text := diag.FormatGoldenDiagnostics(c.Bag.Items(), res.FileSet, lf.withNotes); text != "" {
				fmt.Fprintln(w, text)
			}
		}
		return nil
	default:
		for _, c := range res.Crates {
			if c.Bag.Len() == 0 {
				continue
			}
			err := diagfmt.Pretty(w, c.Bag, res.FileSet, diagfmt.PrettyOpts{
				Color:       colored,
				PathMode:    pathMode,
				ShowNotes:   lf.withNotes,
				ShowFixes:   lf.suggest,
				ShowPreview: lf.suggest,
			})
			if err != nil {
				return err
			}
		}
		return nil
	}
}

// printCrateErrors reports failures that are not diagnostics: expectation
// mismatches and load errors that left nothing in the bag.
func printCrateErrors(w io.Writer, res *driver.Result, check, colored bool) {
	fail := color.New(color.FgRed, color.Bold)
	ok := color.New(color.FgGreen)
	if colored {
		fail.EnableColor()
		ok.EnableColor()
	} else {
		fail.DisableColor()
		ok.DisableColor()
	}

	for _, c := range res.Crates {
		if c.Err != nil && !c.Bag.HasErrors() {
			fmt.Fprintf(w, "%s crate %s: %v\n", fail.Sprint("error:"), c.Name(), c.Err)
		}
		if !check {
			continue
		}
		switch {
		case c.ExpectErr != nil:
			fmt.Fprintf(w, "%s %s\n%s\n", fail.Sprint("FAIL"), c.Name(), indent(c.ExpectErr.Error()))
		case c.Err == nil:
			fmt.Fprintf(w, "%s   %s\n", ok.Sprint("ok"), c.Name())
		}
	}
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}
