package tracker

import (
	"testing"

	"github.com/sadopc/vigil/internal/store"
)

const testIdleTime = 300

func sampleAt(t int64) store.Interval {
	return store.Interval{
		StartTime:   t,
		EndTime:     t,
		App:         "Code",
		Info:        "main.go - Code",
		ProcessName: "code.exe",
	}
}

// ============================================================
// Decide
// ============================================================

func TestDecideNoPriorInterval(t *testing.T) {
	a := Decide(sampleAt(1000), nil, testIdleTime, 0)
	if a.Kind != ActionAppendGap {
		t.Fatalf("expected gap append, got %d", a.Kind)
	}
	if a.Interval.StartTime != 999 || a.Interval.EndTime != 1000 {
		t.Fatalf("unexpected interval bounds: [%d, %d]", a.Interval.StartTime, a.Interval.EndTime)
	}
}

func TestDecideExtendsSameEvent(t *testing.T) {
	latest := sampleAt(1000)
	latest.ID = 7
	latest.StartTime = 900

	a := Decide(sampleAt(1100), &latest, testIdleTime, 0)
	if a.Kind != ActionExtend {
		t.Fatalf("expected extend, got %d", a.Kind)
	}
	if a.Interval.ID != 7 || a.Interval.EndTime != 1100 {
		t.Fatalf("extend must move end time on the latest row, got %+v", a.Interval)
	}
	if a.Interval.StartTime != 900 {
		t.Fatalf("extend must not touch start time, got %d", a.Interval.StartTime)
	}
}

func TestDecideAppendsConnectedOnFieldChange(t *testing.T) {
	latest := sampleAt(1000)
	latest.StartTime = 900

	next := sampleAt(1100)
	next.ProcessName = "brave.exe"

	a := Decide(next, &latest, testIdleTime, 0)
	if a.Kind != ActionAppendConnected {
		t.Fatalf("expected connected append, got %d", a.Kind)
	}
	if a.Interval.StartTime != 1000 {
		t.Fatalf("connected interval must start at previous end, got %d", a.Interval.StartTime)
	}
	if a.Interval.EndTime != 1100 {
		t.Fatalf("unexpected end time %d", a.Interval.EndTime)
	}
}

func TestDecideAppendsGapWhenIdle(t *testing.T) {
	latest := sampleAt(1000)

	a := Decide(sampleAt(1000+testIdleTime), &latest, testIdleTime, 0)
	if a.Kind != ActionAppendGap {
		t.Fatalf("expected gap append, got %d", a.Kind)
	}
	if a.Interval.StartTime != 1000+testIdleTime-1 {
		t.Fatalf("gap interval must start one second before the sample, got %d", a.Interval.StartTime)
	}
}

func TestDecideIdleBoundary(t *testing.T) {
	latest := sampleAt(1000)

	// One second under the threshold still merges.
	a := Decide(sampleAt(1000+testIdleTime-1), &latest, testIdleTime, 0)
	if a.Kind != ActionExtend {
		t.Fatalf("gap of idle_time-1 must extend, got %d", a.Kind)
	}
}

func TestDecideSplitsAcrossMidnight(t *testing.T) {
	// 86395 and 86405 are 10 seconds apart but on different UTC days.
	latest := sampleAt(86395)

	a := Decide(sampleAt(86405), &latest, testIdleTime, 0)
	if a.Kind != ActionAppendConnected {
		t.Fatalf("day boundary must start a new interval, got %d", a.Kind)
	}
	if a.Interval.StartTime != 86395 {
		t.Fatalf("unexpected start %d", a.Interval.StartTime)
	}
}

func TestDecideGmtOffsetShiftsMidnight(t *testing.T) {
	// Same pair as above, but with a +3 offset both timestamps fall on the
	// same local day and the merge survives.
	latest := sampleAt(86395)
	latest.ID = 1

	a := Decide(sampleAt(86405), &latest, testIdleTime, 3)
	if a.Kind != ActionExtend {
		t.Fatalf("expected extend under offset, got %d", a.Kind)
	}
}

// ============================================================
// Day
// ============================================================

func TestDay(t *testing.T) {
	tests := []struct {
		ts     int64
		offset int
		want   string
	}{
		{0, 0, "1970-01-01"},
		{86399, 0, "1970-01-01"},
		{86400, 0, "1970-01-02"},
		{86399, -3, "1970-01-01"},
		{86399 - 3*3600 + 1, 3, "1970-01-02"},
	}
	for _, tt := range tests {
		if got := Day(tt.ts, tt.offset); got != tt.want {
			t.Errorf("Day(%d, %d) = %q, want %q", tt.ts, tt.offset, got, tt.want)
		}
	}
}

// ============================================================
// Reconcile against a live store
// ============================================================

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReconcileSequence(t *testing.T) {
	s := newTestStore(t)

	// First sample: gap append against the empty store.
	if err := Reconcile(s, sampleAt(1000), testIdleTime, 0, 3); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	// Second sample of the same activity: extend.
	if err := Reconcile(s, sampleAt(1060), testIdleTime, 0, 3); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	latest, err := s.LatestInterval()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil {
		t.Fatal("expected an interval")
	}
	if latest.StartTime != 999 || latest.EndTime != 1060 {
		t.Fatalf("expected merged interval [999, 1060], got [%d, %d]", latest.StartTime, latest.EndTime)
	}

	// Different activity before the idle threshold: connected append.
	next := sampleAt(1120)
	next.ProcessName = "brave.exe"
	next.App = "Brave"
	if err := Reconcile(s, next, testIdleTime, 0, 3); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	all, err := s.ListIntervals(store.IntervalFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(all))
	}
	if all[1].StartTime != 1060 {
		t.Fatalf("connected interval must abut the previous end, got start %d", all[1].StartTime)
	}

	// Sample after an idle stretch: gap append.
	if err := Reconcile(s, sampleAt(1120+testIdleTime+60), testIdleTime, 0, 3); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	all, err = s.ListIntervals(store.IntervalFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 intervals, got %d", len(all))
	}
	if got := all[2].StartTime; got != 1120+testIdleTime+60-1 {
		t.Fatalf("gap interval start = %d", got)
	}
}
