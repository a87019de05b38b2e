package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerRecordsStagesInOrder(t *testing.T) {
	tm := NewTimer()
	load := tm.Begin("load")
	time.Sleep(time.Millisecond)
	tm.End(load, "3 types")
	check := tm.Begin("typeck")
	tm.End(check, "")

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(rep.Phases))
	}
	if rep.Phases[0].Name != "load" || rep.Phases[1].Name != "typeck" {
		t.Fatalf("unexpected order: %+v", rep.Phases)
	}
	if rep.Phases[0].DurationMS <= 0 {
		t.Fatalf("load duration not recorded")
	}
	if rep.TotalMS < rep.Phases[0].DurationMS {
		t.Fatalf("total %.3f below load %.3f", rep.TotalMS, rep.Phases[0].DurationMS)
	}

	sum := tm.Summary()
	if !strings.Contains(sum, "// 3 types") || !strings.Contains(sum, "total") {
		t.Fatalf("summary:\n%s", sum)
	}
}

func TestTimerIgnoresBadIndex(t *testing.T) {
	tm := NewTimer()
	tm.End(5, "x")
	tm.End(-1, "x")
	if len(tm.Report().Phases) != 0 {
		t.Fatalf("bad index created a phase")
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	idx := tm.Begin("plan")
	tm.End(idx, "")
	if rep := tm.Report(); len(rep.Phases) != 0 || rep.TotalMS != 0 {
		t.Fatalf("nil timer reported %+v", rep)
	}
}

func TestTimerConcurrentTargets(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for _, lang := range []string{"x86_64", "aarch64", "wasm32", "riscv64"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.End(tm.Begin("plan:"+lang), "")
		}()
	}
	wg.Wait()
	if got := len(tm.Report().Phases); got != 4 {
		t.Fatalf("got %d phases, want 4", got)
	}
}
