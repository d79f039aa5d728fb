package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/vigil/internal/store"
	"github.com/sadopc/vigil/internal/tracker"
)

func ToCSV(intervals []store.Interval, rules *tracker.Rules, gmtOffset int, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	header := []string{"ID", "Day", "Start", "End", "App", "Info", "Process", "Domain", "Category", "Method", "Duration (s)", "Duration"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, iv := range intervals {
		category, method, _ := rules.Categorize(iv.ProcessName, iv.Domain, iv.Info)
		row := []string{
			fmt.Sprintf("%d", iv.ID),
			tracker.Day(iv.StartTime, gmtOffset),
			time.Unix(iv.StartTime, 0).UTC().Format(time.RFC3339),
			time.Unix(iv.EndTime, 0).UTC().Format(time.RFC3339),
			iv.App,
			iv.Info,
			iv.ProcessName,
			iv.Domain,
			string(category),
			string(method),
			fmt.Sprintf("%d", iv.Duration()),
			formatDuration(iv.Duration()),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
