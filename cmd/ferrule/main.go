package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ferrule/internal/prof"
	"ferrule/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ferrule",
	Short: "Lower surface crates to HIR",
	Long: `ferrule reads crates written in a small Rust-like surface language,
resolves them and lowers them to the owner-based HIR, reporting diagnostics
and per-owner hashes.`,
	SilenceUsage: true,
}

// errReported is returned by commands whose failure was already printed.
var errReported = errors.New("failure already reported")

func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("config", "", "path to ferrule.toml (default: nearest one upwards)")
	rootCmd.PersistentFlags().String("edition", "", "edition for crates that do not name one (overrides config)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics per crate (overrides config)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept by the ring tracer")
	rootCmd.PersistentFlags().String("cpuprofile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("memprofile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().String("exec-trace", "", "write a runtime execution trace to this file")
	rootCmd.PersistentPreRunE = startProfiling

	err := rootCmd.Execute()
	// Профили пишем и при ошибке команды
	if stopErr := profiling.Stop(); stopErr != nil {
		fmt.Fprintf(os.Stderr, "profiling: %v\n", stopErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

var profiling *prof.Session

func startProfiling(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	var (
		opts prof.Options
		err  error
	)
	if opts.CPU, err = flags.GetString("cpuprofile"); err != nil {
		return err
	}
	if opts.Mem, err = flags.GetString("memprofile"); err != nil {
		return err
	}
	if opts.ExecTrace, err = flags.GetString("exec-trace"); err != nil {
		return err
	}
	profiling, err = prof.Start(opts)
	return err
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(f), nil
	default:
		return false, errors.New("--color must be auto, on or off")
	}
}
