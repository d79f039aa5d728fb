// Package report turns stored intervals into the aggregates the dashboard
// and the goal evaluator consume: categorized totals, the trailing
// day-totals window, streaks, and milestone checks.
package report

import (
	"sort"
	"time"

	"github.com/sadopc/vigil/internal/store"
	"github.com/sadopc/vigil/internal/tracker"
)

// TrailingDays is the fixed width of the day-totals window.
const TrailingDays = 364

// CategorizedTotal is one aggregated row: all time a process spent on one
// (subtitle, category, method) combination within one calendar day.
type CategorizedTotal struct {
	ProcessName string
	Subtitle    string
	Category    tracker.Category
	Method      tracker.Method
	Day         string
	Seconds     int64
	Hours       float64
}

// Aggregate categorizes every interval and sums durations grouped by
// (process, day, subtitle, category, method). Rows come back sorted by
// day descending, then duration descending. The result is rebuilt from
// scratch on every pass; an empty input yields an empty result, not an
// error.
func Aggregate(intervals []store.Interval, rules *tracker.Rules, gmtOffset int) []CategorizedTotal {
	type key struct {
		process  string
		day      string
		subtitle string
		category tracker.Category
		method   tracker.Method
	}
	sums := make(map[key]int64)
	for _, iv := range intervals {
		category, method, subtitle := rules.Categorize(iv.ProcessName, iv.Domain, iv.Info)
		if iv.ProcessName == tracker.IdleProcess {
			category = tracker.CategoryNeutral
		}
		k := key{
			process:  iv.ProcessName,
			day:      tracker.Day(iv.StartTime, gmtOffset),
			subtitle: subtitle,
			category: category,
			method:   method,
		}
		sums[k] += iv.Duration()
	}

	totals := make([]CategorizedTotal, 0, len(sums))
	for k, secs := range sums {
		totals = append(totals, CategorizedTotal{
			ProcessName: k.process,
			Subtitle:    k.subtitle,
			Category:    k.category,
			Method:      k.method,
			Day:         k.day,
			Seconds:     secs,
			Hours:       float64(secs) / 3600,
		})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Day != totals[j].Day {
			return totals[i].Day > totals[j].Day
		}
		if totals[i].Seconds != totals[j].Seconds {
			return totals[i].Seconds > totals[j].Seconds
		}
		return totals[i].ProcessName < totals[j].ProcessName
	})
	return totals
}

// DayTotals pivots categorized totals into one row per calendar day over
// the trailing window ending today, oldest first, zero-filling days with
// no data. Idle time never counts toward a category.
func DayTotals(totals []CategorizedTotal, now time.Time, gmtOffset int) []store.DayTotal {
	byDay := make(map[string]*store.DayTotal)
	for _, t := range totals {
		if t.ProcessName == tracker.IdleProcess {
			continue
		}
		dt := byDay[t.Day]
		if dt == nil {
			dt = &store.DayTotal{Day: t.Day}
			byDay[t.Day] = dt
		}
		switch t.Category {
		case tracker.CategoryWork:
			dt.Work += t.Hours
		case tracker.CategoryPersonal:
			dt.Personal += t.Hours
		default:
			dt.Neutral += t.Hours
		}
	}

	today := time.Unix(now.Unix(), 0).UTC().Add(time.Duration(gmtOffset) * time.Hour)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	window := make([]store.DayTotal, 0, TrailingDays)
	for i := TrailingDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format("2006-01-02")
		if dt, ok := byDay[day]; ok {
			window = append(window, *dt)
		} else {
			window = append(window, store.DayTotal{Day: day})
		}
	}
	return window
}

// CategoryTotal is summed hours for one category across an aggregation.
type CategoryTotal struct {
	Category tracker.Category
	Hours    float64
}

// TotalsByCategory sums hours per category in a fixed Work, Personal,
// Neutral order, excluding idle time.
func TotalsByCategory(totals []CategorizedTotal) []CategoryTotal {
	sums := make(map[tracker.Category]float64)
	for _, t := range totals {
		if t.ProcessName == tracker.IdleProcess {
			continue
		}
		sums[t.Category] += t.Hours
	}
	return []CategoryTotal{
		{Category: tracker.CategoryWork, Hours: sums[tracker.CategoryWork]},
		{Category: tracker.CategoryPersonal, Hours: sums[tracker.CategoryPersonal]},
		{Category: tracker.CategoryNeutral, Hours: sums[tracker.CategoryNeutral]},
	}
}
