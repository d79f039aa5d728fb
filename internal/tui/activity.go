package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/vigil/internal/config"
	"github.com/sadopc/vigil/internal/report"
	"github.com/sadopc/vigil/internal/store"
	"github.com/sadopc/vigil/internal/tracker"
)

type activityModel struct {
	store      *store.Store
	configPath string
	width      int
	height     int

	offset    int // days back from today (0 = today)
	totals    []report.CategorizedTotal
	conflicts []tracker.Conflict
	scroll    int
}

func newActivityModel(s *store.Store, configPath string) activityModel {
	return activityModel{store: s, configPath: configPath}
}

func (a *activityModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

type activityDataMsg struct {
	totals    []report.CategorizedTotal
	conflicts []tracker.Conflict
}

func (a activityModel) refresh() tea.Cmd {
	return func() tea.Msg {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Config error: %v", err), isError: true}
		}
		rules, err := tracker.CompileRules(cfg.Categories)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Rules error: %v", err), isError: true}
		}

		from, to := a.dayRange(cfg.GMTOffset)
		intervals, err := a.store.IntervalsBetween(from, to)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}

		totals := report.Aggregate(intervals, rules, cfg.GMTOffset)

		var processes, domains []string
		for _, iv := range intervals {
			processes = append(processes, iv.ProcessName)
			domains = append(domains, iv.Domain)
		}

		return activityDataMsg{
			totals:    totals,
			conflicts: rules.Conflicts(processes, domains),
		}
	}
}

// dayRange returns the unix bounds of the shown calendar day under the
// configured GMT offset.
func (a activityModel) dayRange(gmtOffset int) (int64, int64) {
	now := time.Now().UTC().Add(time.Duration(gmtOffset) * time.Hour)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day = day.AddDate(0, 0, -a.offset)
	start := day.Add(-time.Duration(gmtOffset) * time.Hour)
	return start.Unix(), start.Add(24 * time.Hour).Unix()
}

func (a activityModel) update(msg tea.Msg) (activityModel, tea.Cmd) {
	switch msg := msg.(type) {
	case activityDataMsg:
		a.totals = msg.totals
		a.conflicts = msg.conflicts
		a.scroll = 0
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			a.offset++
			return a, a.refresh()
		case key.Matches(msg, keys.Right):
			if a.offset > 0 {
				a.offset--
			}
			return a, a.refresh()
		case key.Matches(msg, keys.Up):
			if a.scroll > 0 {
				a.scroll--
			}
			return a, nil
		case key.Matches(msg, keys.Down):
			if a.scroll < max(0, len(a.totals)-a.visibleRows()) {
				a.scroll++
			}
			return a, nil
		case key.Matches(msg, keys.Refresh):
			return a, a.refresh()
		}
	}
	return a, nil
}

func (a activityModel) visibleRows() int {
	rows := a.height - 12
	if rows < 5 {
		rows = 5
	}
	return rows
}

func (a activityModel) view() string {
	w := a.width - 4

	day := time.Now().AddDate(0, 0, -a.offset).Format("Jan 02, 2006")
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Activity"), "  ", mutedStyle.Render(day),
	)

	table := a.renderTable(w)
	totalsLine := a.renderCategoryTotals()
	conflicts := a.renderConflicts()
	nav := mutedStyle.Render("  ←/→: day  ↑/↓: scroll  r: refresh")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", totalsLine, "", table, conflicts, "", nav,
		),
	)
}

func (a activityModel) renderTable(w int) string {
	if len(a.totals) == 0 {
		return mutedStyle.Render("  No activity recorded for this day")
	}

	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-20s %-28s %-9s %-8s %10s", "Process", "Subtitle", "Category", "Method", "Duration"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 78))))

	visible := a.totals
	if a.scroll < len(visible) {
		visible = visible[a.scroll:]
	}
	if len(visible) > a.visibleRows() {
		visible = visible[:a.visibleRows()]
	}

	for _, t := range visible {
		dot := categoryStyle(string(t.Category)).Render("●")
		subtitle := t.Subtitle
		if len(subtitle) > 28 {
			subtitle = subtitle[:25] + "..."
		}
		rows = append(rows, fmt.Sprintf("  %-20s %-28s %s %-8s %-8s %10s",
			t.ProcessName, subtitle, dot, t.Category, t.Method, formatSeconds(t.Seconds),
		))
	}
	return strings.Join(rows, "\n")
}

func (a activityModel) renderCategoryTotals() string {
	byCategory := report.TotalsByCategory(a.totals)
	var parts []string
	for _, ct := range byCategory {
		dot := categoryStyle(string(ct.Category)).Render("●")
		parts = append(parts, fmt.Sprintf("%s %s %s", dot, ct.Category, formatHours(ct.Hours)))
	}
	return "  " + strings.Join(parts, "   ")
}

func (a activityModel) renderConflicts() string {
	if len(a.conflicts) == 0 {
		return ""
	}
	var rows []string
	rows = append(rows, "")
	rows = append(rows, warningStyle.Render("  Pattern conflicts (resolved to Work by precedence):"))
	for _, c := range a.conflicts {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %s %q matches both a work and a personal pattern", c.Field, c.Value)))
	}
	return strings.Join(rows, "\n")
}
