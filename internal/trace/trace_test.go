package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevelAndMode(t *testing.T) {
	levels := map[string]Level{"": LevelOff, "off": LevelOff, "Error": LevelError, "phase": LevelPhase, "detail": LevelDetail, "debug": LevelDebug}
	for in, want := range levels {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Errorf("ParseLevel(loud) should fail")
	}
	if m, err := ParseMode(""); err != nil || m != ModeStream {
		t.Errorf("ParseMode(\"\") = %v, %v", m, err)
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Errorf("ParseMode(disk) should fail")
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeCrate, false},
		{LevelDetail, ScopeCrate, true},
		{LevelDetail, ScopeOwner, false},
		{LevelDebug, ScopeOwner, true},
		{LevelOff, ScopeDriver, false},
	}
	for _, c := range cases {
		if got := c.level.ShouldEmit(c.scope); got != c.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", c.level, c.scope, got, c.want)
		}
	}
}

func TestStreamTextNesting(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	ctx := WithTracer(context.Background(), tr)

	ctx, pass := StartSpan(ctx, ScopePass, "lower")
	_, crate := StartSpan(ctx, ScopeCrate, "crate:demo")
	crate.WithExtra("owners", "3").WithExtra("errors", "0").End("")
	// filtered at this level
	Point(tr, ScopeOwner, "demo::f", "", crate.ID())
	pass.End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "  → lower") {
		t.Errorf("pass begin: %q", lines[0])
	}
	if !strings.Contains(lines[1], "    → crate:demo") {
		t.Errorf("crate begin not nested: %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "← crate:demo {errors=0, owners=3}") {
		t.Errorf("extras not sorted: %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], "← lower (ok)") {
		t.Errorf("pass end: %q", lines[3])
	}
}

func TestNDJSONCarriesParent(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	root := Begin(tr, ScopeDriver, "lower", 0)
	Point(tr, ScopeOwner, "demo::f", "owner", root.ID())
	root.End("")

	var got []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad json %q: %v", line, err)
		}
		got = append(got, m)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[1]["kind"] != "point" || got[1]["scope"] != "owner" {
		t.Errorf("unexpected point event: %v", got[1])
	}
	if uint64(got[1]["parent_id"].(float64)) != root.ID() {
		t.Errorf("point parent = %v, want %d", got[1]["parent_id"], root.ID())
	}
}

func TestRingKeepsNewest(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for i := 0; i < 5; i++ {
		Point(r, ScopeOwner, string(rune('a'+i)), "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 events, got %d", len(snap))
	}
	names := snap[0].Name + snap[1].Name + snap[2].Name
	if names != "cde" {
		t.Errorf("ring order = %q, want cde", names)
	}
}

func TestErrorLevelOnlyFeedsRing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelError, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	Begin(tr, ScopeCrate, "crate:demo", 0).End("")
	if buf.Len() != 0 {
		t.Errorf("stream wrote at error level: %q", buf.String())
	}
	ring := RingOf(tr)
	if ring == nil {
		t.Fatal("no ring behind a ModeBoth tracer")
	}
	var dump bytes.Buffer
	if err := ring.Dump(&dump, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(dump.String(), "crate:demo") != 2 {
		t.Errorf("ring dump missing events:\n%s", dump.String())
	}
}

func TestOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr != Nop || RingOf(tr) != nil {
		t.Errorf("LevelOff should yield Nop")
	}
	if id := Begin(tr, ScopeDriver, "x", 0).ID(); id != 0 {
		t.Errorf("nop span id = %d", id)
	}
}
