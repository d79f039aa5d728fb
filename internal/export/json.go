package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/vigil/internal/store"
	"github.com/sadopc/vigil/internal/tracker"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Intervals  []jsonEntry `json:"intervals"`
}

type jsonEntry struct {
	ID          int64  `json:"id"`
	Day         string `json:"day"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	App         string `json:"app"`
	Info        string `json:"info,omitempty"`
	Process     string `json:"process"`
	URL         string `json:"url,omitempty"`
	Domain      string `json:"domain,omitempty"`
	Category    string `json:"category"`
	Method      string `json:"method"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
}

func ToJSON(intervals []store.Interval, rules *tracker.Rules, gmtOffset int, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(intervals),
	}

	for _, iv := range intervals {
		category, method, _ := rules.Categorize(iv.ProcessName, iv.Domain, iv.Info)
		export.Intervals = append(export.Intervals, jsonEntry{
			ID:          iv.ID,
			Day:         tracker.Day(iv.StartTime, gmtOffset),
			StartTime:   time.Unix(iv.StartTime, 0).UTC().Format(time.RFC3339),
			EndTime:     time.Unix(iv.EndTime, 0).UTC().Format(time.RFC3339),
			App:         iv.App,
			Info:        iv.Info,
			Process:     iv.ProcessName,
			URL:         iv.URL,
			Domain:      iv.Domain,
			Category:    string(category),
			Method:      string(method),
			DurationSec: iv.Duration(),
			Duration:    formatDuration(iv.Duration()),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
