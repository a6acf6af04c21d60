package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"ferrule/internal/driver"
	"ferrule/internal/fixture"
	"ferrule/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI: auto only pays off for several crates on a terminal.
func shouldUseTUI(mode uiMode, crates int) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return crates > 1 && isTerminal(os.Stderr)
	}
}

type runOutcome struct {
	result *driver.Result
	err    error
}

// runWithUI runs the driver while a progress view draws on stderr.
func runWithUI(ctx context.Context, title string, inputs []*fixture.Fixture, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		o := opts
		o.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Run(ctx, inputs, o)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	names := make([]string, 0, len(inputs))
	for _, f := range inputs {
		names = append(names, f.Crate)
	}
	program := tea.NewProgram(ui.NewProgressModel(title, names, events), tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// the view may quit before the driver is done sending
	for range events {
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
