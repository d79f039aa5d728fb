// Package worker runs the background polling loops under a supervisor.
// Each worker re-reads configuration at the top of every iteration and
// records a heartbeat after each successful one; the supervisor restarts
// workers that die and alerts when heartbeats go stale.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sadopc/vigil/internal/config"
	"github.com/sadopc/vigil/internal/report"
	"github.com/sadopc/vigil/internal/store"
	"github.com/sadopc/vigil/internal/tracker"
)

const restartDelay = 3 * time.Second

// Worker is one supervised polling loop.
type Worker struct {
	Name     string
	Interval func(cfg *config.Config) time.Duration
	Run      func(ctx context.Context, cfg *config.Config) error
}

// Supervisor owns the shared store and the worker set.
type Supervisor struct {
	store      *store.Store
	configPath string
	poller     tracker.WindowPoller
	notifier   report.Notifier
	logger     *log.Logger
}

func NewSupervisor(st *store.Store, configPath string, poller tracker.WindowPoller, notifier report.Notifier, logger *log.Logger) *Supervisor {
	return &Supervisor{
		store:      st,
		configPath: configPath,
		poller:     poller,
		notifier:   notifier,
		logger:     logger,
	}
}

func (s *Supervisor) workers() []Worker {
	return []Worker{
		{
			Name: "activity",
			Interval: func(cfg *config.Config) time.Duration {
				return time.Duration(cfg.ActivityInterval) * time.Second
			},
			Run: s.trackOnce,
		},
		{
			Name: "advisor",
			Interval: func(cfg *config.Config) time.Duration {
				return time.Duration(cfg.AdvisorInterval) * time.Second
			},
			Run: s.adviseOnce,
		},
	}
}

// Run starts all workers and the heartbeat monitor, blocking until ctx is
// cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	for _, w := range s.workers() {
		go s.supervise(ctx, w)
	}
	go s.monitor(ctx)

	<-ctx.Done()
	return ctx.Err()
}

// supervise keeps one worker alive, restarting it after failures.
func (s *Supervisor) supervise(ctx context.Context, w Worker) {
	for {
		err := s.runLoop(ctx, w)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Printf("worker %s died: %v (restarting in %s)", w.Name, err, restartDelay)
		select {
		case <-ctx.Done():
			return
		case <-time.After(restartDelay):
		}
	}
}

// runLoop is one worker's iteration loop. Configuration is reloaded fresh
// each pass so edits take effect within one interval; a malformed config
// is fatal for the worker and surfaced loudly.
func (s *Supervisor) runLoop(ctx context.Context, w Worker) error {
	for {
		cfg, err := config.Load(s.configPath)
		if err != nil {
			return fmt.Errorf("worker %s: %w", w.Name, err)
		}

		if err := w.Run(ctx, cfg); err != nil {
			return fmt.Errorf("worker %s: %w", w.Name, err)
		}

		if err := s.store.TouchInput("worker:"+w.Name, time.Now().Unix()); err != nil {
			s.logger.Printf("worker %s: heartbeat: %v", w.Name, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.Interval(cfg)):
		}
	}
}

// monitor alerts when a worker heartbeat goes stale past the configured
// threshold. Restarting is the supervise loop's job; the monitor only
// makes the silence user-visible.
func (s *Supervisor) monitor(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		cfg, err := config.Load(s.configPath)
		if err != nil {
			s.logger.Printf("monitor: %v", err)
			continue
		}
		now := time.Now().Unix()
		for _, w := range s.workers() {
			t, ok, err := s.store.LastInput("worker:" + w.Name)
			if err != nil {
				s.logger.Printf("monitor: %v", err)
				continue
			}
			if ok && now-t > int64(cfg.UnresponsiveThreshold) {
				s.notifier.Notify("Tracker unresponsive",
					fmt.Sprintf("Worker %s has been silent for %ds.", w.Name, now-t))
			}
		}
	}
}
