package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/vigil/internal/config"
	"github.com/sadopc/vigil/internal/report"
	"github.com/sadopc/vigil/internal/store"
	"github.com/sadopc/vigil/internal/tracker"
)

// trackOnce is one pass of the activity pipeline: acquire a sample,
// reconcile it into the interval store, then rebuild the aggregates.
func (s *Supervisor) trackOnce(ctx context.Context, cfg *config.Config) error {
	now := time.Now().Unix()

	rules, err := tracker.CompileRules(cfg.Categories)
	if err != nil {
		return err
	}

	sample := s.acquireSample(ctx, cfg, now)

	// An idle stretch overrides whatever window is in the foreground.
	idle, isIdle, err := tracker.IdleCheck(s.store, now, int64(cfg.IdleTime))
	if err != nil {
		return fmt.Errorf("idle check: %w", err)
	}
	if isIdle {
		sample = idle
	}

	sample = sample.Redact(rules.HiddenApps)

	if sample.Fullscreen && inList(rules.FullscreenApps, sample.ProcessName) {
		if err := s.store.TouchInput(store.InputFullscreen, now); err != nil {
			return err
		}
	}

	err = tracker.Reconcile(s.store, sample.Interval(), int64(cfg.IdleTime), cfg.GMTOffset, cfg.RetryAttempts)
	if err != nil {
		return err
	}

	return s.rebuildTotals(cfg, rules, now)
}

// acquireSample polls the foreground window with bounded local retries.
// Persistent failure downgrades to the idle sentinel so reconciliation
// always has a well-formed input.
func (s *Supervisor) acquireSample(ctx context.Context, cfg *config.Config, now int64) tracker.Sample {
	var lastErr error
	for i := 0; i < cfg.RetryAttempts; i++ {
		sample, err := s.poller.Poll(ctx)
		if err == nil {
			return sample
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return tracker.IdleSample(now)
		case <-time.After(200 * time.Millisecond):
		}
	}
	s.logger.Printf("sampler failed after %d attempts: %v", cfg.RetryAttempts, lastErr)
	return tracker.IdleSample(now)
}

// rebuildTotals re-aggregates the trailing window from scratch and swaps
// the day-totals table.
func (s *Supervisor) rebuildTotals(cfg *config.Config, rules *tracker.Rules, now int64) error {
	from := now - int64(report.TrailingDays+1)*86400
	intervals, err := s.store.IntervalsBetween(from, now+1)
	if err != nil {
		return fmt.Errorf("load intervals: %w", err)
	}

	totals := report.Aggregate(intervals, rules, cfg.GMTOffset)
	dayTotals := report.DayTotals(totals, time.Unix(now, 0), cfg.GMTOffset)
	if err := s.store.ReplaceDayTotals(dayTotals); err != nil {
		return err
	}
	return s.store.TouchInput(store.InputBackend, now)
}

// adviseOnce is one pass of the milestone checker.
func (s *Supervisor) adviseOnce(_ context.Context, cfg *config.Config) error {
	return report.CheckMilestones(s.store, cfg, s.notifier, time.Now())
}

func inList(list []string, name string) bool {
	for _, v := range list {
		if strings.EqualFold(v, name) {
			return true
		}
	}
	return false
}
