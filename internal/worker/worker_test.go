package worker

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/sadopc/vigil/internal/config"
	"github.com/sadopc/vigil/internal/store"
	"github.com/sadopc/vigil/internal/tracker"
)

type fakePoller struct {
	samples []tracker.Sample
	errs    []error
	calls   int
}

func (p *fakePoller) Poll(ctx context.Context) (tracker.Sample, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return tracker.Sample{}, p.errs[i]
	}
	if i >= len(p.samples) {
		i = len(p.samples) - 1
	}
	return p.samples[i], nil
}

type silentNotifier struct {
	titles []string
}

func (n *silentNotifier) Notify(title, message string) {
	n.titles = append(n.titles, title)
}

func newTestSupervisor(t *testing.T, poller tracker.WindowPoller) (*Supervisor, *store.Store, *config.Config) {
	t.Helper()

	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	cfg := config.Default()
	cfg.RetryAttempts = 2
	cfg.Categories.WorkApps = []string{"code"}
	if err := config.Save(cfg, cfgPath); err != nil {
		t.Fatalf("save config: %v", err)
	}

	logger := log.New(io.Discard, "", 0)
	sup := NewSupervisor(s, cfgPath, poller, &silentNotifier{}, logger)
	return sup, s, cfg
}

func windowSample(title, process string) tracker.Sample {
	return tracker.Sample{Time: time.Now().Unix(), Title: title, ProcessName: process}
}

func TestTrackOnceRecordsInterval(t *testing.T) {
	poller := &fakePoller{samples: []tracker.Sample{windowSample("main.go - Code", "code.exe")}}
	sup, s, cfg := newTestSupervisor(t, poller)

	if err := sup.trackOnce(context.Background(), cfg); err != nil {
		t.Fatalf("track: %v", err)
	}

	latest, err := s.LatestInterval()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil || latest.ProcessName != "code.exe" {
		t.Fatalf("expected recorded interval, got %+v", latest)
	}

	// The pass must also rebuild the day-totals window and leave a
	// backend heartbeat.
	days, err := s.DayTotals()
	if err != nil {
		t.Fatalf("day totals: %v", err)
	}
	if len(days) == 0 {
		t.Fatal("expected rebuilt day totals")
	}
	if _, ok, err := s.LastInput(store.InputBackend); err != nil || !ok {
		t.Fatalf("expected backend heartbeat, ok=%v err=%v", ok, err)
	}
}

func TestTrackOnceRetriesPoller(t *testing.T) {
	poller := &fakePoller{
		errs:    []error{errors.New("transient")},
		samples: []tracker.Sample{{}, windowSample("a - Code", "code.exe")},
	}
	sup, s, cfg := newTestSupervisor(t, poller)

	if err := sup.trackOnce(context.Background(), cfg); err != nil {
		t.Fatalf("track: %v", err)
	}
	if poller.calls != 2 {
		t.Fatalf("expected one retry, got %d calls", poller.calls)
	}

	latest, err := s.LatestInterval()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ProcessName != "code.exe" {
		t.Fatalf("expected retried sample, got %+v", latest)
	}
}

func TestTrackOnceDowngradesToIdle(t *testing.T) {
	poller := &fakePoller{errs: []error{errors.New("down"), errors.New("down")}}
	sup, s, cfg := newTestSupervisor(t, poller)

	if err := sup.trackOnce(context.Background(), cfg); err != nil {
		t.Fatalf("track: %v", err)
	}

	latest, err := s.LatestInterval()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil || latest.ProcessName != tracker.IdleProcess {
		t.Fatalf("persistent poller failure must record idle, got %+v", latest)
	}
}

func TestTrackOnceIdleOverridesWindow(t *testing.T) {
	poller := &fakePoller{samples: []tracker.Sample{windowSample("movie - Player", "player.exe")}}
	sup, s, cfg := newTestSupervisor(t, poller)

	// All recorded input kinds are stale past the idle threshold.
	stale := time.Now().Unix() - int64(cfg.IdleTime) - 10
	if err := s.TouchInput(store.InputMouse, stale); err != nil {
		t.Fatalf("touch: %v", err)
	}

	if err := sup.trackOnce(context.Background(), cfg); err != nil {
		t.Fatalf("track: %v", err)
	}

	latest, err := s.LatestInterval()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ProcessName != tracker.IdleProcess {
		t.Fatalf("idle must override the foreground window, got %+v", latest)
	}
}

func TestTrackOnceRedactsHiddenApp(t *testing.T) {
	poller := &fakePoller{samples: []tracker.Sample{windowSample("private chat", "signal.exe")}}
	sup, s, cfg := newTestSupervisor(t, poller)
	cfg.Categories.HiddenApps = []string{"signal.exe"}

	if err := sup.trackOnce(context.Background(), cfg); err != nil {
		t.Fatalf("track: %v", err)
	}

	latest, err := s.LatestInterval()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Info != tracker.HiddenTitle {
		t.Fatalf("expected redacted title, got %q", latest.Info)
	}
}

func TestTrackOnceFullscreenCountsAsInput(t *testing.T) {
	sample := windowSample("Game", "game.exe")
	sample.Fullscreen = true
	poller := &fakePoller{samples: []tracker.Sample{sample}}
	sup, s, cfg := newTestSupervisor(t, poller)
	cfg.Categories.FullscreenApps = []string{"game.exe"}

	if err := sup.trackOnce(context.Background(), cfg); err != nil {
		t.Fatalf("track: %v", err)
	}

	if _, ok, err := s.LastInput(store.InputFullscreen); err != nil || !ok {
		t.Fatalf("expected fullscreen input touch, ok=%v err=%v", ok, err)
	}
}

func TestAdviseOnce(t *testing.T) {
	sup, s, cfg := newTestSupervisor(t, &fakePoller{})

	day := time.Now().UTC().Format("2006-01-02")
	err := s.ReplaceDayTotals([]store.DayTotal{{Day: day, Work: cfg.WorkDailyGoal}})
	if err != nil {
		t.Fatalf("seed totals: %v", err)
	}

	if err := sup.adviseOnce(context.Background(), cfg); err != nil {
		t.Fatalf("advise: %v", err)
	}

	n := sup.notifier.(*silentNotifier)
	if len(n.titles) == 0 {
		t.Fatal("expected milestone notifications")
	}
}
