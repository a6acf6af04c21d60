package observ

import (
	"strings"
	"sync"
	"testing"
)

func TestTimerReportOrder(t *testing.T) {
	tm := NewTimer()
	endLoad := tm.Track(PhaseLoad)
	endLoad("2 crates")
	idx := tm.Begin(PhaseLower)
	tm.End(idx, "")
	tm.End(99, "ignored")

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(rep.Phases))
	}
	if rep.Phases[0].Name != PhaseLoad || rep.Phases[0].Note != "2 crates" {
		t.Errorf("unexpected first phase: %+v", rep.Phases[0])
	}
	sum := tm.Summary()
	if !strings.Contains(sum, "// 2 crates") || !strings.Contains(sum, "total") {
		t.Errorf("summary missing fields:\n%s", sum)
	}
}

func TestTimerConcurrentTracks(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Track(PhaseLower)("")
		}()
	}
	wg.Wait()
	if n := len(tm.Report().Phases); n != 16 {
		t.Errorf("expected 16 phases, got %d", n)
	}
}

func TestNilTimerTrack(t *testing.T) {
	var tm *Timer
	tm.Track(PhaseCache)("")
}
