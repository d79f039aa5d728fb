package report

import (
	"github.com/sadopc/vigil/internal/config"
	"github.com/sadopc/vigil/internal/store"
)

// Goals are the daily thresholds in hours.
type Goals struct {
	Work       float64
	SmallWork  float64
	Personal   float64
	Multiplier float64 // work-to-personal override multiplier
}

func GoalsFromConfig(cfg *config.Config) Goals {
	return Goals{
		Work:       cfg.WorkDailyGoal,
		SmallWork:  cfg.SmallWorkDailyGoal,
		Personal:   cfg.PersonalDailyGoal,
		Multiplier: cfg.WorkToPersonalMultiplier,
	}
}

// personalLimit is the personal allowance for a day: the flat goal or the
// work-scaled override, whichever is larger.
func (g Goals) personalLimit(workDone float64) float64 {
	limit := g.Personal
	if scaled := workDone * g.Multiplier; scaled > limit {
		limit = scaled
	}
	return limit
}

func (g Goals) workMet(d store.DayTotal) bool      { return d.Work >= g.Work }
func (g Goals) smallWorkMet(d store.DayTotal) bool { return d.Work >= g.SmallWork }
func (g Goals) personalMet(d store.DayTotal) bool  { return d.Personal <= g.personalLimit(d.Work) }

// Streaks are consecutive trailing day counts, today included, for each
// goal condition.
type Streaks struct {
	Work      int
	SmallWork int
	Personal  int
}

// EvaluateStreaks walks the day-totals window (oldest first, last row is
// today) backward from today. A streak that fails on a day is broken
// permanently: earlier qualifying days never resume it. The walk stops
// once all three streaks are broken. An empty window yields zero streaks.
func EvaluateStreaks(days []store.DayTotal, g Goals) Streaks {
	if len(days) == 0 {
		return Streaks{}
	}

	today := days[len(days)-1]
	var s Streaks
	workAlive := g.workMet(today)
	smallAlive := g.smallWorkMet(today)
	personalAlive := g.personalMet(today)
	if workAlive {
		s.Work = 1
	}
	if smallAlive {
		s.SmallWork = 1
	}
	if personalAlive {
		s.Personal = 1
	}

	for i := len(days) - 2; i >= 0; i-- {
		if !workAlive && !smallAlive && !personalAlive {
			break
		}
		d := days[i]
		if workAlive {
			if g.workMet(d) {
				s.Work++
			} else {
				workAlive = false
			}
		}
		if smallAlive {
			if g.smallWorkMet(d) {
				s.SmallWork++
			} else {
				smallAlive = false
			}
		}
		if personalAlive {
			if g.personalMet(d) {
				s.Personal++
			} else {
				personalAlive = false
			}
		}
	}
	return s
}
