package tracker

import (
	"fmt"
	"time"

	"github.com/sadopc/vigil/internal/store"
)

// ActionKind is the reconciliation decision for a new sample.
type ActionKind int

const (
	// ActionExtend merges the sample into the latest interval by moving
	// its end time forward.
	ActionExtend ActionKind = iota
	// ActionAppendConnected appends a new interval whose start is the
	// previous interval's end, leaving no gap.
	ActionAppendConnected
	// ActionAppendGap appends a new interval starting one second before
	// the sample, the marker of an idle discontinuity.
	ActionAppendGap
)

// Action is the outcome of a reconcile decision. For ActionExtend,
// Interval carries the latest row's ID and the new end time; for the
// append kinds it is the row to insert.
type Action struct {
	Kind     ActionKind
	Interval store.Interval
}

// Day returns the calendar day of a unix timestamp under the configured
// GMT offset, as yyyy-mm-dd.
func Day(t int64, gmtOffset int) string {
	return time.Unix(t, 0).UTC().Add(time.Duration(gmtOffset) * time.Hour).Format("2006-01-02")
}

// sameEvent reports whether the sample describes the same activity as the
// latest interval: field-wise equality of the comparison fields and the
// same calendar day. Crossing midnight always starts a new interval so
// per-day totals stay exact.
func sameEvent(sample, latest store.Interval, gmtOffset int) bool {
	return sample.App == latest.App &&
		sample.Info == latest.Info &&
		sample.ProcessName == latest.ProcessName &&
		sample.URL == latest.URL &&
		sample.Domain == latest.Domain &&
		Day(sample.StartTime, gmtOffset) == Day(latest.EndTime, gmtOffset)
}

// Decide picks the reconcile action for a parsed sample against the most
// recent stored interval (nil when the store is legitimately empty).
func Decide(sample store.Interval, latest *store.Interval, idleTime int64, gmtOffset int) Action {
	if latest == nil {
		sample.StartTime = sample.StartTime - 1
		return Action{Kind: ActionAppendGap, Interval: sample}
	}

	notIdle := sample.EndTime-latest.EndTime < idleTime
	if notIdle {
		if sameEvent(sample, *latest, gmtOffset) {
			latest.EndTime = sample.EndTime
			return Action{Kind: ActionExtend, Interval: *latest}
		}
		sample.StartTime = latest.EndTime
		return Action{Kind: ActionAppendConnected, Interval: sample}
	}

	sample.StartTime = sample.StartTime - 1
	return Action{Kind: ActionAppendGap, Interval: sample}
}

// Apply executes a reconcile action against the store.
func Apply(st *store.Store, a Action) error {
	switch a.Kind {
	case ActionExtend:
		return st.ExtendInterval(a.Interval.ID, a.Interval.EndTime)
	case ActionAppendConnected, ActionAppendGap:
		_, err := st.AppendInterval(a.Interval)
		return err
	default:
		return fmt.Errorf("unknown reconcile action %d", a.Kind)
	}
}

// Reconcile runs the full read-decide-write cycle for one sample. The
// store's single-writer discipline keeps the cycle atomic with respect to
// other writers. Transient read failures are retried a bounded number of
// times and then surfaced; they are never treated as an empty store.
func Reconcile(st *store.Store, sample store.Interval, idleTime int64, gmtOffset int, retryAttempts int) error {
	var latest *store.Interval
	err := store.Retry(retryAttempts, 100*time.Millisecond, func() error {
		var err error
		latest, err = st.LatestInterval()
		return err
	})
	if err != nil {
		return fmt.Errorf("read latest interval: %w", err)
	}

	action := Decide(sample, latest, idleTime, gmtOffset)
	err = store.Retry(retryAttempts, 100*time.Millisecond, func() error {
		return Apply(st, action)
	})
	if err != nil {
		return fmt.Errorf("apply reconcile action: %w", err)
	}
	return nil
}
