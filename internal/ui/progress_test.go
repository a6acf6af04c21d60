package ui

import (
	"strings"
	"testing"
	"time"

	"ferrule/internal/driver"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a_long_crate_name", 10, "a_long_..."},
		{"abcdef", 3, "abc"},
		{"anything", 0, "anything"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestProgressModelTracksCrates(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("lowering", []string{"alpha", "beta"}, events).(*progressModel)

	m.Update(eventMsg{Crate: "alpha", Stage: driver.StageLower, Status: driver.StatusWorking})
	if got := m.crates[0].status; got != "lowering" {
		t.Fatalf("alpha status = %q", got)
	}
	if p := m.percent(); p != 0.3 {
		t.Fatalf("percent = %v, want 0.3", p)
	}

	m.Update(eventMsg{Crate: "alpha", Stage: driver.StageLower, Status: driver.StatusDone, Elapsed: 1500 * time.Microsecond})
	m.Update(eventMsg{Crate: "alpha", Status: driver.StatusDone})
	m.Update(eventMsg{Crate: "beta", Status: driver.StatusError})
	m.Update(eventMsg{Crate: "unknown", Status: driver.StatusDone})
	if m.percent() != 1 {
		t.Fatalf("percent = %v after both crates finished", m.percent())
	}

	m.Update(doneMsg{})
	view := m.View()
	for _, want := range []string{"done: lowering", "alpha", "1.5 ms", "beta", "error"} {
		if !strings.Contains(view, want) {
			t.Errorf("view misses %q:\n%s", want, view)
		}
	}
}
