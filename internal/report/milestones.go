package report

import (
	"fmt"
	"log"
	"time"

	"github.com/sadopc/vigil/internal/config"
	"github.com/sadopc/vigil/internal/store"
	"github.com/sadopc/vigil/internal/tracker"
)

// Notifier delivers one-time milestone notifications to the user.
type Notifier interface {
	Notify(title, message string)
}

// LogNotifier writes notifications to a logger. The TUI provides its own
// implementation; this one backs the headless tracker.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) Notify(title, message string) {
	n.Logger.Printf("notification: %s: %s", title, message)
}

// CheckMilestones evaluates today's totals against the goal thresholds
// and fires a notification for each threshold crossed since the last
// check. Crossing is edge-triggered: a set flag is never re-checked until
// the record resets on day rollover or when the goal schema changes. The
// record is read-modify-written under the single-writer discipline.
func CheckMilestones(st *store.Store, cfg *config.Config, n Notifier, now time.Time) error {
	today := tracker.Day(now.Unix(), cfg.GMTOffset)

	m, err := st.GetMilestones()
	if err != nil {
		return fmt.Errorf("load milestones: %w", err)
	}
	if m == nil || m.Day != today {
		m = &store.Milestones{Day: today}
	}

	dt, err := st.DayTotalFor(today)
	if err != nil {
		return fmt.Errorf("load day total: %w", err)
	}
	if dt == nil {
		// No data yet today; persist the (possibly reset) record anyway.
		return st.SaveMilestones(m)
	}

	goals := GoalsFromConfig(cfg)
	workGoal := goals.Work
	workDone := dt.Work
	personalDone := dt.Personal

	if !m.Personal && personalDone >= goals.personalLimit(workDone) {
		m.Personal = true
		n.Notify("Misstep detected",
			"Passed your personal daily limit. Consider working more!")
	}
	if !m.SmallWork && workDone >= goals.SmallWork {
		m.SmallWork = true
		n.Notify("Progress made",
			"Completed the small daily work goal. Congratulations for your consistency!")
	}
	if !m.Work25 && workDone >= workGoal*0.25 {
		m.Work25 = true
		n.Notify("Progress made", progressMessage(25, workGoal*0.75))
	}
	if !m.Work50 && workDone >= workGoal*0.50 {
		m.Work50 = true
		n.Notify("Progress made", progressMessage(50, workGoal*0.50))
	}
	if !m.Work75 && workDone >= workGoal*0.75 {
		m.Work75 = true
		n.Notify("Progress made", progressMessage(75, workGoal*0.25))
	}
	if !m.Work100 && workDone >= workGoal {
		m.Work100 = true
		n.Notify("Milestone achieved",
			"Completed 100% of the daily work goal. Congratulations! +1 streak point")
	}

	if err := st.SaveMilestones(m); err != nil {
		return fmt.Errorf("save milestones: %w", err)
	}
	return nil
}

func progressMessage(percent int, hoursLeft float64) string {
	return fmt.Sprintf(
		"Completed %d%% of the daily work goal. Consider working %dm to stay on track!",
		percent, int(hoursLeft*60))
}
