package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/vigil/internal/config"
)

type settingsModel struct {
	configPath string
	width      int
	height     int

	cfg        *config.Config
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	idleTime      *string
	activityEvery *string
	gmtOffset     *string
	workGoal      *string
	smallWorkGoal *string
	personalGoal  *string
	multiplier    *string
}

func newSettingsModel(configPath string) settingsModel {
	it, ae, gmt := "", "", ""
	wg, sg, pg, mult := "", "", "", ""
	return settingsModel{
		configPath:    configPath,
		idleTime:      &it,
		activityEvery: &ae,
		gmtOffset:     &gmt,
		workGoal:      &wg,
		smallWorkGoal: &sg,
		personalGoal:  &pg,
		multiplier:    &mult,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	cfg *config.Config
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		cfg, err := config.Load(s.configPath)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Config error: %v", err), isError: true}
		}
		return settingsDataMsg{cfg: cfg}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.cfg = msg.cfg
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	if s.cfg == nil {
		return s, s.refresh()
	}

	*s.idleTime = strconv.Itoa(s.cfg.IdleTime)
	*s.activityEvery = strconv.Itoa(s.cfg.ActivityInterval)
	*s.gmtOffset = strconv.Itoa(s.cfg.GMTOffset)
	*s.workGoal = formatFloat(s.cfg.WorkDailyGoal)
	*s.smallWorkGoal = formatFloat(s.cfg.SmallWorkDailyGoal)
	*s.personalGoal = formatFloat(s.cfg.PersonalDailyGoal)
	*s.multiplier = formatFloat(s.cfg.WorkToPersonalMultiplier)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Idle threshold (s)").Value(s.idleTime),
			huh.NewInput().Title("Poll interval (s)").Value(s.activityEvery),
			huh.NewInput().Title("GMT offset (h)").Value(s.gmtOffset),
		).Title("Tracking"),
		huh.NewGroup(
			huh.NewInput().Title("Work goal (hours)").Value(s.workGoal),
			huh.NewInput().Title("Small work goal (hours)").Value(s.smallWorkGoal),
			huh.NewInput().Title("Personal limit (hours)").Value(s.personalGoal),
			huh.NewInput().Title("Work-to-personal multiplier").Value(s.multiplier),
		).Title("Goals"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && key.Matches(kmsg, keys.Back) {
		s.formActive = false
		s.form = nil
		return s, func() tea.Msg { return formCancelMsg{} }
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.save(); err != nil {
			return s, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
			}
		}
		return s, tea.Batch(
			s.refresh(),
			func() tea.Msg { return formDoneMsg{} },
		)
	}
	return s, cmd
}

// save writes the edited values back to the config file. Workers pick the
// changes up on their next iteration.
func (s settingsModel) save() error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}

	if v, err := strconv.Atoi(strings.TrimSpace(*s.idleTime)); err == nil {
		cfg.IdleTime = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(*s.activityEvery)); err == nil {
		cfg.ActivityInterval = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(*s.gmtOffset)); err == nil {
		cfg.GMTOffset = v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(*s.workGoal), 64); err == nil {
		cfg.WorkDailyGoal = v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(*s.smallWorkGoal), 64); err == nil {
		cfg.SmallWorkDailyGoal = v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(*s.personalGoal), 64); err == nil {
		cfg.PersonalDailyGoal = v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(*s.multiplier), 64); err == nil {
		cfg.WorkToPersonalMultiplier = v
	}

	return config.Save(cfg, s.configPath)
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		return activePanelStyle.Width(w).Render(s.form.View())
	}

	title := titleStyle.Render("Settings")
	if s.cfg == nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("Loading...")),
		)
	}

	rows := []string{
		fmt.Sprintf("  %-28s %s", "Idle threshold", fmt.Sprintf("%ds", s.cfg.IdleTime)),
		fmt.Sprintf("  %-28s %s", "Poll interval", fmt.Sprintf("%ds", s.cfg.ActivityInterval)),
		fmt.Sprintf("  %-28s %+dh", "GMT offset", s.cfg.GMTOffset),
		fmt.Sprintf("  %-28s %s", "Work goal", formatFloat(s.cfg.WorkDailyGoal)+"h"),
		fmt.Sprintf("  %-28s %s", "Small work goal", formatFloat(s.cfg.SmallWorkDailyGoal)+"h"),
		fmt.Sprintf("  %-28s %s", "Personal limit", formatFloat(s.cfg.PersonalDailyGoal)+"h"),
		fmt.Sprintf("  %-28s %sx", "Work-to-personal multiplier", formatFloat(s.cfg.WorkToPersonalMultiplier)),
	}

	lists := mutedStyle.Render(fmt.Sprintf(
		"  Category lists: %d work apps, %d personal apps, %d work domains, %d personal domains\n"+
			"  Edit pattern lists directly in %s",
		len(s.cfg.Categories.WorkApps), len(s.cfg.Categories.PersonalApps),
		len(s.cfg.Categories.WorkDomains), len(s.cfg.Categories.PersonalDomains),
		s.configPath,
	))

	hint := mutedStyle.Render("  enter: edit")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title, "", strings.Join(rows, "\n"), "", lists, "", hint,
		),
	)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
