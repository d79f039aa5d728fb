package store

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// insertInterval is a test helper that inserts a completed interval.
func insertInterval(t *testing.T, s *Store, start, end int64, process string) *Interval {
	t.Helper()
	iv, err := s.AppendInterval(Interval{
		StartTime:   start,
		EndTime:     end,
		App:         process,
		Info:        process + " window",
		ProcessName: process,
	})
	if err != nil {
		t.Fatalf("insert interval: %v", err)
	}
	return iv
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/vigil.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen — should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Intervals
// ============================================================

func TestAppendAndGetInterval(t *testing.T) {
	s := newTestStore(t)
	iv, err := s.AppendInterval(Interval{
		StartTime:   100,
		EndTime:     150,
		App:         "Editor",
		Info:        "main.go - Editor",
		ProcessName: "editor.exe",
		URL:         "",
		Domain:      "",
	})
	if err != nil {
		t.Fatal(err)
	}
	if iv.ID == 0 {
		t.Fatal("expected non-zero ID")
	}
	if iv.StartTime != 100 || iv.EndTime != 150 {
		t.Fatalf("unexpected times: %+v", iv)
	}
	if iv.Duration() != 50 {
		t.Fatalf("expected duration 50, got %d", iv.Duration())
	}
}

func TestAppendIntervalRejectsNegativeDuration(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AppendInterval(Interval{StartTime: 200, EndTime: 100})
	if err == nil {
		t.Fatal("expected error for end_time < start_time")
	}
}

func TestLatestIntervalEmpty(t *testing.T) {
	s := newTestStore(t)
	iv, err := s.LatestInterval()
	if err != nil {
		t.Fatalf("empty store should not be an error: %v", err)
	}
	if iv != nil {
		t.Fatal("expected nil interval for empty store")
	}
}

func TestLatestIntervalOrder(t *testing.T) {
	s := newTestStore(t)
	insertInterval(t, s, 100, 150, "a.exe")
	second := insertInterval(t, s, 150, 200, "b.exe")

	latest, err := s.LatestInterval()
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.ID != second.ID {
		t.Fatalf("expected latest to be id %d, got %+v", second.ID, latest)
	}
}

func TestExtendInterval(t *testing.T) {
	s := newTestStore(t)
	iv := insertInterval(t, s, 100, 150, "a.exe")

	if err := s.ExtendInterval(iv.ID, 160); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetInterval(iv.ID)
	if got.EndTime != 160 {
		t.Fatalf("expected end_time 160, got %d", got.EndTime)
	}
	if got.StartTime != 100 {
		t.Fatalf("start_time should be unchanged, got %d", got.StartTime)
	}
}

func TestExtendIntervalMissing(t *testing.T) {
	s := newTestStore(t)
	if err := s.ExtendInterval(999, 100); err == nil {
		t.Fatal("expected error for missing row")
	}
}

func TestIntervalsBetween(t *testing.T) {
	s := newTestStore(t)
	insertInterval(t, s, 100, 150, "a.exe")
	insertInterval(t, s, 200, 250, "b.exe")
	insertInterval(t, s, 300, 350, "c.exe")

	got, err := s.IntervalsBetween(150, 260)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ProcessName != "b.exe" {
		t.Fatalf("expected only b.exe, got %+v", got)
	}
}

func TestListIntervalsOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	insertInterval(t, s, 300, 350, "c.exe")
	insertInterval(t, s, 100, 150, "a.exe")
	insertInterval(t, s, 200, 250, "b.exe")

	got, err := s.ListIntervals(IntervalFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 intervals, got %d", len(got))
	}
	// Ascending start order
	if got[0].ProcessName != "a.exe" || got[2].ProcessName != "c.exe" {
		t.Fatalf("wrong order: %+v", got)
	}

	got, _ = s.ListIntervals(IntervalFilter{Limit: 2})
	if len(got) != 2 {
		t.Fatalf("expected 2 intervals with limit, got %d", len(got))
	}
}

func TestListIntervalsByProcess(t *testing.T) {
	s := newTestStore(t)
	insertInterval(t, s, 100, 150, "a.exe")
	insertInterval(t, s, 200, 250, "b.exe")

	got, err := s.ListIntervals(IntervalFilter{Process: "b.exe"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ProcessName != "b.exe" {
		t.Fatalf("expected only b.exe, got %+v", got)
	}
}

// ============================================================
// Inputs
// ============================================================

func TestTouchAndLastInput(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.LastInput(InputMouse)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected no mouse input yet")
	}

	if err := s.TouchInput(InputMouse, 1000); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.LastInput(InputMouse)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || got != 1000 {
		t.Fatalf("expected 1000, got %d (ok=%v)", got, ok)
	}

	// Upsert overwrites
	s.TouchInput(InputMouse, 2000)
	got, _, _ = s.LastInput(InputMouse)
	if got != 2000 {
		t.Fatalf("expected 2000 after upsert, got %d", got)
	}
}

func TestSetIdle(t *testing.T) {
	s := newTestStore(t)
	now := int64(10000)
	var idleTime int64 = 300

	s.TouchInput(InputMouse, now-10)     // recent, should be pushed back
	s.TouchInput(InputKeyboard, now-500) // already past threshold, untouched

	if err := s.SetIdle(now, idleTime); err != nil {
		t.Fatal(err)
	}

	mouse, _, _ := s.LastInput(InputMouse)
	if mouse != now-idleTime {
		t.Fatalf("expected mouse pushed to %d, got %d", now-idleTime, mouse)
	}
	keyboard, _, _ := s.LastInput(InputKeyboard)
	if keyboard != now-500 {
		t.Fatalf("keyboard should be untouched, got %d", keyboard)
	}
}

// ============================================================
// Day totals
// ============================================================

func TestReplaceAndListDayTotals(t *testing.T) {
	s := newTestStore(t)
	totals := []DayTotal{
		{Day: "2026-08-27", Work: 2, Personal: 1, Neutral: 0.5},
		{Day: "2026-08-28", Work: 3},
	}
	if err := s.ReplaceDayTotals(totals); err != nil {
		t.Fatal(err)
	}

	got, err := s.DayTotals()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Day != "2026-08-27" || got[0].Work != 2 {
		t.Fatalf("unexpected first row: %+v", got[0])
	}

	// Replace fully swaps the table
	if err := s.ReplaceDayTotals([]DayTotal{{Day: "2026-08-29", Work: 1}}); err != nil {
		t.Fatal(err)
	}
	got, _ = s.DayTotals()
	if len(got) != 1 || got[0].Day != "2026-08-29" {
		t.Fatalf("expected only replaced row, got %+v", got)
	}
}

func TestDayTotalFor(t *testing.T) {
	s := newTestStore(t)
	s.ReplaceDayTotals([]DayTotal{{Day: "2026-08-29", Work: 1.5}})

	dt, err := s.DayTotalFor("2026-08-29")
	if err != nil {
		t.Fatal(err)
	}
	if dt == nil || dt.Work != 1.5 {
		t.Fatalf("unexpected row: %+v", dt)
	}

	dt, err = s.DayTotalFor("2020-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if dt != nil {
		t.Fatal("expected nil for absent day")
	}
}

// ============================================================
// Milestones
// ============================================================

func TestMilestonesRoundTrip(t *testing.T) {
	s := newTestStore(t)

	m, err := s.GetMilestones()
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Fatal("expected no milestone record yet")
	}

	want := &Milestones{Day: "2026-08-29", Work25: true, SmallWork: true}
	if err := s.SaveMilestones(want); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetMilestones()
	if err != nil {
		t.Fatal(err)
	}
	if got.Day != want.Day || !got.Work25 || !got.SmallWork {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.Work100 || got.Personal {
		t.Fatalf("unset flags should stay false: %+v", got)
	}

	// Save replaces the single row
	if err := s.SaveMilestones(&Milestones{Day: "2026-08-30"}); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetMilestones()
	if got.Day != "2026-08-30" || got.Work25 {
		t.Fatalf("expected fresh record, got %+v", got)
	}
}

// ============================================================
// Retry
// ============================================================

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errTest
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryExhausted(t *testing.T) {
	calls := 0
	err := Retry(2, time.Millisecond, func() error {
		calls++
		return errTest
	})
	if err != errTest {
		t.Fatalf("expected errTest, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

type testError string

func (e testError) Error() string { return string(e) }

const errTest = testError("boom")
