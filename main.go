package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/vigil/internal/config"
	"github.com/sadopc/vigil/internal/export"
	"github.com/sadopc/vigil/internal/report"
	"github.com/sadopc/vigil/internal/store"
	"github.com/sadopc/vigil/internal/tracker"
	"github.com/sadopc/vigil/internal/tui"
	"github.com/sadopc/vigil/internal/worker"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbPath, configPath string

	root := &cobra.Command{
		Use:           "vigil",
		Short:         "Personal desktop activity tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default ~/.config/vigil/vigil.db)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config path (default ~/.config/vigil/config.yml)")

	root.AddCommand(newTrackCmd(&dbPath, &configPath))
	root.AddCommand(newDashCmd(&dbPath, &configPath))
	root.AddCommand(newExportCmd(&dbPath, &configPath))
	return root
}

func resolvePaths(dbPath, configPath *string) (string, string, error) {
	db := *dbPath
	if db == "" {
		var err error
		db, err = store.DefaultDBPath()
		if err != nil {
			return "", "", err
		}
	}
	cfg := *configPath
	if cfg == "" {
		var err error
		cfg, err = config.DefaultPath()
		if err != nil {
			return "", "", err
		}
	}
	return db, cfg, nil
}

func newTrackCmd(dbPath, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "track",
		Short: "Run the background polling workers",
		RunE: func(_ *cobra.Command, _ []string) error {
			db, cfgPath, err := resolvePaths(dbPath, configPath)
			if err != nil {
				return err
			}

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			s, err := store.New(db)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer s.Close()

			logger := log.New(os.Stderr, "vigil: ", log.LstdFlags)
			poller := tracker.CommandPoller{Command: cfg.WindowCommand}
			notifier := report.LogNotifier{Logger: logger}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Printf("tracking (db=%s, config=%s)", db, cfgPath)
			sup := worker.NewSupervisor(s, cfgPath, poller, notifier, logger)
			if err := sup.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func newDashCmd(dbPath, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Run the terminal dashboard",
		RunE: func(_ *cobra.Command, _ []string) error {
			db, cfgPath, err := resolvePaths(dbPath, configPath)
			if err != nil {
				return err
			}

			s, err := store.New(db)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer s.Close()

			app := tui.NewApp(s, cfgPath)
			p := tea.NewProgram(app, tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

func newExportCmd(dbPath, configPath *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export (csv|json)",
		Short: "Export categorized intervals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := args[0]
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}
			if out == "" {
				out = "vigil-export." + format
			}

			db, cfgPath, err := resolvePaths(dbPath, configPath)
			if err != nil {
				return err
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			rules, err := tracker.CompileRules(cfg.Categories)
			if err != nil {
				return err
			}

			s, err := store.New(db)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer s.Close()

			intervals, err := s.ListIntervals(store.IntervalFilter{})
			if err != nil {
				return err
			}

			if format == "csv" {
				err = export.ToCSV(intervals, rules, cfg.GMTOffset, out)
			} else {
				err = export.ToJSON(intervals, rules, cfg.GMTOffset, out)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d intervals to %s\n", len(intervals), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}
