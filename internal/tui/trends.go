package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/vigil/internal/store"
)

type trendsModel struct {
	store  *store.Store
	width  int
	height int

	days   []store.DayTotal
	offset int // 7-day blocks back from the newest window

	chart barchart.Model
}

func newTrendsModel(s *store.Store) trendsModel {
	return trendsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (t *trendsModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

type trendsDataMsg struct {
	days []store.DayTotal
}

func (t trendsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		days, _ := t.store.DayTotals()
		return trendsDataMsg{days: days}
	}
}

func (t trendsModel) update(msg tea.Msg) (trendsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case trendsDataMsg:
		t.days = msg.days
		t.buildChart()
		return t, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if (t.offset+1)*7 < len(t.days) {
				t.offset++
				t.buildChart()
			}
			return t, nil
		case key.Matches(msg, keys.Right):
			if t.offset > 0 {
				t.offset--
				t.buildChart()
			}
			return t, nil
		case key.Matches(msg, keys.Refresh):
			return t, t.refresh()
		}
	}
	return t, nil
}

// window returns the 7 day-totals rows currently shown, oldest first.
func (t trendsModel) window() []store.DayTotal {
	end := len(t.days) - 7*t.offset
	if end > len(t.days) {
		end = len(t.days)
	}
	start := end - 7
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}
	return t.days[start:end]
}

func (t *trendsModel) buildChart() {
	chartWidth := t.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if t.height > 30 {
		chartHeight = 16
	}

	t.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, d := range t.window() {
		label := d.Day
		if len(label) > 5 {
			label = label[5:] // mm-dd
		}
		values := []barchart.BarValue{
			{Name: "Work", Value: d.Work, Style: lipgloss.NewStyle().Foreground(colorWork)},
			{Name: "Personal", Value: d.Personal, Style: lipgloss.NewStyle().Foreground(colorPersonal)},
			{Name: "Neutral", Value: d.Neutral, Style: lipgloss.NewStyle().Foreground(colorNeutral)},
		}
		bars = append(bars, barchart.BarData{Label: label, Values: values})
	}

	t.chart.PushAll(bars)
	t.chart.Draw()
}

func (t trendsModel) view() string {
	w := t.width - 4

	window := t.window()
	dateLabel := mutedStyle.Render("no data")
	if len(window) > 0 {
		dateLabel = mutedStyle.Render(fmt.Sprintf("%s — %s", window[0].Day, window[len(window)-1].Day))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Trends"), "  ", dateLabel,
	)

	chartView := t.chart.View()
	legend := fmt.Sprintf("  %s Work   %s Personal   %s Neutral",
		categoryStyle("Work").Render("●"),
		categoryStyle("Personal").Render("●"),
		categoryStyle("Neutral").Render("●"),
	)
	table := t.renderWeekTable(w)
	nav := mutedStyle.Render("  ←/→: navigate weeks  r: refresh")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", legend, "", table, "", nav,
		),
	)
}

func (t trendsModel) renderWeekTable(w int) string {
	window := t.window()
	if len(window) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %8s %10s %9s", "Day", "Work", "Personal", "Neutral")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 42))))
	for _, d := range window {
		rows = append(rows, fmt.Sprintf("  %-12s %8s %10s %9s",
			d.Day, formatHours(d.Work), formatHours(d.Personal), formatHours(d.Neutral),
		))
	}
	return strings.Join(rows, "\n")
}
