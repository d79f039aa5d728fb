package store

// Interval is the persisted unit of activity: a contiguous span of one
// observed window/process. Intervals for a day are non-overlapping and
// ordered by start time; only end_time is ever mutated (merge path).
type Interval struct {
	ID          int64
	StartTime   int64 // unix seconds
	EndTime     int64 // unix seconds, >= StartTime
	App         string
	Info        string
	ProcessName string
	URL         string
	Domain      string
}

// Duration returns the interval length in seconds.
func (iv Interval) Duration() int64 {
	return iv.EndTime - iv.StartTime
}

// InputTime records when a given input kind (mouse, keyboard, audio,
// fullscreen) last saw activity. Worker heartbeats share the table under
// "worker:" kinds.
type InputTime struct {
	Kind string
	Time int64 // unix seconds
}

// DayTotal is one row of the trailing day-totals window: summed hours per
// category for one calendar day.
type DayTotal struct {
	Day      string // yyyy-mm-dd
	Neutral  float64
	Personal float64
	Work     float64
}

// Milestones is the one-per-current-day record of goal thresholds already
// crossed. Flags are edge-triggered: once set they stay set until the day
// rolls over or the goal set changes.
type Milestones struct {
	Day       string
	Work100   bool
	Work75    bool
	Work50    bool
	Work25    bool
	SmallWork bool
	Personal  bool
}

// IntervalFilter is used to filter interval queries.
type IntervalFilter struct {
	From    *int64
	To      *int64
	Process string
	Limit   int
}
