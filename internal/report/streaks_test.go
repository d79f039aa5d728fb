package report

import (
	"testing"

	"github.com/sadopc/vigil/internal/store"
)

var testGoals = Goals{Work: 4, SmallWork: 1, Personal: 2, Multiplier: 0.5}

func day(work, personal float64) store.DayTotal {
	return store.DayTotal{Work: work, Personal: personal}
}

func TestEvaluateStreaksEmptyWindow(t *testing.T) {
	if s := EvaluateStreaks(nil, testGoals); s != (Streaks{}) {
		t.Fatalf("expected zero streaks, got %+v", s)
	}
}

func TestEvaluateStreaksTodayOnly(t *testing.T) {
	s := EvaluateStreaks([]store.DayTotal{day(5, 1)}, testGoals)
	if s.Work != 1 || s.SmallWork != 1 || s.Personal != 1 {
		t.Fatalf("got %+v", s)
	}
}

func TestEvaluateStreaksTodayFailing(t *testing.T) {
	// Today misses every goal; history cannot help.
	s := EvaluateStreaks([]store.DayTotal{day(8, 0), day(0, 10)}, testGoals)
	if s != (Streaks{}) {
		t.Fatalf("expected zero streaks, got %+v", s)
	}
}

func TestEvaluateStreaksPermanentBreak(t *testing.T) {
	// Oldest first: a qualifying day before a broken one never counts.
	days := []store.DayTotal{
		day(6, 0), // qualifies, but unreachable past the break
		day(0, 0), // breaks work, keeps personal
		day(5, 1), // today
	}
	s := EvaluateStreaks(days, testGoals)
	if s.Work != 1 {
		t.Fatalf("work streak must stop at the break, got %d", s.Work)
	}
	if s.SmallWork != 1 {
		t.Fatalf("small work streak must stop at the break, got %d", s.SmallWork)
	}
	if s.Personal != 3 {
		t.Fatalf("personal streak spans all days, got %d", s.Personal)
	}
}

func TestEvaluateStreaksIndependent(t *testing.T) {
	days := []store.DayTotal{
		day(2, 0), // small work only
		day(5, 0), // both work goals
		day(6, 1), // today, all three
	}
	s := EvaluateStreaks(days, testGoals)
	if s.Work != 2 {
		t.Fatalf("work = %d", s.Work)
	}
	if s.SmallWork != 3 {
		t.Fatalf("small work = %d", s.SmallWork)
	}
	if s.Personal != 3 {
		t.Fatalf("personal = %d", s.Personal)
	}
}

func TestPersonalLimitScaling(t *testing.T) {
	// The flat goal rules until the work-scaled allowance overtakes it.
	if got := testGoals.personalLimit(0); got != 2 {
		t.Fatalf("limit at zero work = %v", got)
	}
	if got := testGoals.personalLimit(10); got != 5 {
		t.Fatalf("limit at 10h work = %v", got)
	}
}

func TestPersonalMetUsesScaledLimit(t *testing.T) {
	// 3h personal exceeds the flat 2h goal, but 8h work raises the
	// allowance to 4h.
	if !testGoals.personalMet(day(8, 3)) {
		t.Fatal("scaled allowance must apply")
	}
	if testGoals.personalMet(day(0, 3)) {
		t.Fatal("flat goal must apply without work")
	}
}
