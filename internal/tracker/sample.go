// Package tracker implements the activity pipeline core: raw sample
// parsing, rule-based categorization, and interval reconciliation.
package tracker

import (
	"strings"

	"github.com/sadopc/vigil/internal/store"
)

// Sentinel values shared across the pipeline.
const (
	// IdleProcess is the pseudo process name recorded for idle spans.
	IdleProcess = "IDLE TIME"
	// IdleTitle is the window title recorded for idle spans.
	IdleTitle = "Time not counted"
	// HiddenTitle replaces the title of processes on the hidden list.
	HiddenTitle = "HIDDEN APPLICATION INFO"
)

// Sample is one raw observation of the foreground window. It is produced
// once per poll, consumed immediately, and never persisted as-is.
type Sample struct {
	Time        int64 // unix seconds
	Title       string
	ProcessName string
	URL         string
	Domain      string
	Fullscreen  bool
}

// IdleSample returns the sentinel sample recorded when no input kind has
// seen activity within the idle threshold. Idle periods are first-class
// intervals, not holes.
func IdleSample(now int64) Sample {
	return Sample{Time: now, Title: IdleTitle, ProcessName: IdleProcess}
}

// Redact blanks the window title of processes on the hidden list. The
// list holds exact process names, compared case-insensitively.
func (s Sample) Redact(hiddenApps []string) Sample {
	for _, name := range hiddenApps {
		if strings.EqualFold(s.ProcessName, name) {
			s.Title = HiddenTitle
			break
		}
	}
	return s
}

// Interval parses the sample into a zero-length interval ready for
// reconciliation. The app label is the last " - "-delimited segment of
// the title.
func (s Sample) Interval() store.Interval {
	sections := strings.Split(s.Title, " - ")
	return store.Interval{
		StartTime:   s.Time,
		EndTime:     s.Time,
		App:         sections[len(sections)-1],
		Info:        s.Title,
		ProcessName: s.ProcessName,
		URL:         s.URL,
		Domain:      s.Domain,
	}
}
