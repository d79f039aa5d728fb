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

type dashboardModel struct {
	store      *store.Store
	configPath string
	width      int
	height     int

	cfg        *config.Config
	today      *store.DayTotal
	streaks    report.Streaks
	milestones *store.Milestones
	backendAge int64 // seconds since last backend heartbeat, -1 when unknown
}

func newDashboardModel(s *store.Store, configPath string) dashboardModel {
	return dashboardModel{store: s, configPath: configPath, backendAge: -1}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	cfg        *config.Config
	today      *store.DayTotal
	streaks    report.Streaks
	milestones *store.Milestones
	backendAge int64
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		cfg, err := config.Load(d.configPath)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Config error: %v", err), isError: true}
		}

		now := time.Now().Unix()
		today, _ := d.store.DayTotalFor(tracker.Day(now, cfg.GMTOffset))
		days, _ := d.store.DayTotals()
		streaks := report.EvaluateStreaks(days, report.GoalsFromConfig(cfg))
		milestones, _ := d.store.GetMilestones()

		backendAge := int64(-1)
		if t, ok, err := d.store.LastInput(store.InputBackend); err == nil && ok {
			backendAge = now - t
		}

		return dashboardDataMsg{
			cfg:        cfg,
			today:      today,
			streaks:    streaks,
			milestones: milestones,
			backendAge: backendAge,
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.cfg = msg.cfg
		d.today = msg.today
		d.streaks = msg.streaks
		d.milestones = msg.milestones
		d.backendAge = msg.backendAge
		return d, nil

	case tickMsg:
		// Refresh once per tick so the view follows the background worker.
		return d, d.loadData()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.SetIdle):
			return d, d.setIdle()
		case key.Matches(msg, keys.Refresh):
			return d, d.loadData()
		}
	}
	return d, nil
}

func (d dashboardModel) setIdle() tea.Cmd {
	return func() tea.Msg {
		cfg, err := config.Load(d.configPath)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Config error: %v", err), isError: true}
		}
		if err := d.store.SetIdle(time.Now().Unix(), int64(cfg.IdleTime)); err != nil {
			return statusMsg{text: fmt.Sprintf("Set idle error: %v", err), isError: true}
		}
		return statusMsg{text: "Inputs forced past idle threshold"}
	}
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	if d.cfg == nil {
		return mutedStyle.Render("Loading...")
	}

	contentWidth := d.width - 4

	panels := []string{
		d.renderTodayPanel(contentWidth),
		d.renderStreakPanel(contentWidth),
		d.renderStatusPanel(contentWidth),
	}
	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

func (d dashboardModel) renderTodayPanel(w int) string {
	title := titleStyle.Render("Today")
	date := mutedStyle.Render(time.Now().Format("January 02, Monday, 15:04"))
	header := fmt.Sprintf("%s  %s", title, date)

	var work, personal, neutral float64
	if d.today != nil {
		work, personal, neutral = d.today.Work, d.today.Personal, d.today.Neutral
	}

	bars := []string{
		fmt.Sprintf("  %s %-9s %s", categoryStyle("Work").Render("●"), "Work", formatHours(work)),
		fmt.Sprintf("  %s %-9s %s", categoryStyle("Personal").Render("●"), "Personal", formatHours(personal)),
		fmt.Sprintf("  %s %-9s %s", categoryStyle("Neutral").Render("●"), "Neutral", formatHours(neutral)),
	}

	goal := d.renderGoalLine(work, personal)

	content := lipgloss.JoinVertical(lipgloss.Left,
		header, "", strings.Join(bars, "\n"), "", goal,
	)
	return panelStyle.Width(w).Render(content)
}

// renderGoalLine mirrors the milestone conditions: work remaining toward
// the daily goal, personal remaining under the (possibly work-scaled)
// limit.
func (d dashboardModel) renderGoalLine(work, personal float64) string {
	text := "Work: "
	if work >= d.cfg.WorkDailyGoal {
		text += "Done!"
	} else {
		left := (d.cfg.WorkDailyGoal - work) * 60
		text += fmt.Sprintf("%d min left", int(left))
	}

	personalLimit := d.cfg.PersonalDailyGoal
	if scaled := work * d.cfg.WorkToPersonalMultiplier; scaled > personalLimit {
		personalLimit = scaled
	}
	text += ", Personal: "
	if personal >= personalLimit {
		text += "Over limit!"
	} else {
		left := (personalLimit - personal) * 60
		text += fmt.Sprintf("%d min left", int(left))
	}
	return highlightStyle.Render(text)
}

func (d dashboardModel) renderStreakPanel(w int) string {
	title := titleStyle.Render("Streaks")

	rows := []string{
		fmt.Sprintf("  %s Work goal        %s", categoryStyle("Work").Render("♛"), streakLabel(d.streaks.Work)),
		fmt.Sprintf("  %s Consistency      %s", warningStyle.Render("♛"), streakLabel(d.streaks.SmallWork)),
		fmt.Sprintf("  %s Personal limit   %s", categoryStyle("Personal").Render("♛"), streakLabel(d.streaks.Personal)),
	}

	milestones := d.renderMilestoneLine()

	content := lipgloss.JoinVertical(lipgloss.Left,
		title, "", strings.Join(rows, "\n"), "", milestones,
	)
	return panelStyle.Width(w).Render(content)
}

func streakLabel(days int) string {
	if days == 0 {
		return mutedStyle.Render("—")
	}
	return successStyle.Render(fmt.Sprintf("%d day streak", days))
}

func (d dashboardModel) renderMilestoneLine() string {
	if d.milestones == nil {
		return mutedStyle.Render("No milestones yet today")
	}
	var parts []string
	for _, m := range []struct {
		set   bool
		label string
	}{
		{d.milestones.Work25, "25%"},
		{d.milestones.Work50, "50%"},
		{d.milestones.Work75, "75%"},
		{d.milestones.Work100, "100%"},
		{d.milestones.SmallWork, "small"},
	} {
		if m.set {
			parts = append(parts, successStyle.Render(m.label))
		} else {
			parts = append(parts, mutedStyle.Render(m.label))
		}
	}
	line := "Milestones: " + strings.Join(parts, " ")
	if d.milestones.Personal {
		line += "  " + errorStyle.Render("personal limit passed")
	}
	return line
}

func (d dashboardModel) renderStatusPanel(w int) string {
	title := titleStyle.Render("Tracker")

	var status string
	switch {
	case d.backendAge < 0:
		status = mutedStyle.Render("  No heartbeat recorded, is `vigil track` running?")
	case d.backendAge > int64(d.cfg.UnresponsiveThreshold):
		status = errorStyle.Render(fmt.Sprintf("  Backend silent for %ds, tracker may be down", d.backendAge))
	default:
		status = successStyle.Render(fmt.Sprintf("  Backend updated %ds ago", d.backendAge))
	}

	hint := mutedStyle.Render("  i: force idle  r: refresh")

	content := lipgloss.JoinVertical(lipgloss.Left, title, "", status, "", hint)
	return panelStyle.Width(w).Render(content)
}
