package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"trekly/internal/activity"
	"trekly/internal/analysis"
	"trekly/internal/profile"
	"trekly/internal/units"
)

// HomeModel is the weekly report screen
type HomeModel struct {
	profiles *profile.Manager
	log      *activity.Log

	weekly   activity.WeeklyComparison
	distance activity.Change
	duration activity.Change
	zones    *analysis.Analysis
	loaded   bool
}

// NewHomeModel creates a new home model
func NewHomeModel(profiles *profile.Manager, log *activity.Log) HomeModel {
	return HomeModel{
		profiles: profiles,
		log:      log,
	}
}

// Init initializes the home screen
func (m HomeModel) Init() tea.Cmd {
	return m.loadData
}

type homeDataMsg struct {
	weekly   activity.WeeklyComparison
	distance activity.Change
	duration activity.Change
	zones    *analysis.Analysis
}

func (m HomeModel) loadData() tea.Msg {
	system := m.profiles.Preferences().UnitSystem
	weekly := activity.ComputeWeeklyComparison(m.log.All(), system, time.Now())

	msg := homeDataMsg{
		weekly:   weekly,
		distance: activity.ComputeChange(weekly.Totals.CurrentDistance, weekly.Totals.PreviousDistance),
		duration: activity.ComputeChange(float64(weekly.Totals.CurrentSeconds), float64(weekly.Totals.PreviousSeconds)),
	}
	if latest := m.log.LatestWithHeartRate(); latest != nil {
		msg.zones = analysis.AnalyzeHeartRate(latest.HeartRateData)
	}
	return msg
}

// Update handles messages
func (m HomeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case homeDataMsg:
		m.weekly = msg.weekly
		m.distance = msg.distance
		m.duration = msg.duration
		m.zones = msg.zones
		m.loaded = true
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the home screen
func (m HomeModel) View() string {
	if !m.loaded {
		return "\n  Loading your week..."
	}

	var sections []string
	sections = append(sections, m.renderTotalsCard())
	sections = append(sections, m.renderWeekChart())
	if m.zones != nil {
		sections = append(sections, m.renderZonesCard())
	}
	sections = append(sections, statusStyle.Render("Press 'r' to refresh, '2' to start an activity"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m HomeModel) renderTotalsCard() string {
	title := cardTitleStyle.Render("This Week vs Last Week")
	system := m.profiles.Preferences().UnitSystem

	lines := []string{
		RenderMetric("Distance",
			fmt.Sprintf("%.1f %s", m.weekly.Totals.CurrentDistance, system.Label()),
			m.distance.Value),
		RenderMetric("Time",
			units.FormatDurationStats(m.weekly.Totals.CurrentSeconds),
			m.duration.Value),
		RenderMetric("Activities", fmt.Sprintf("%d", m.log.Len()), ""),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m HomeModel) renderWeekChart() string {
	system := m.profiles.Preferences().UnitSystem
	title := cardTitleStyle.Render(fmt.Sprintf("Daily Distance (%s), last week in gray", system.Label()))

	current := make([]float64, 7)
	previous := make([]float64, 7)
	hasData := false
	for i, d := range m.weekly.Days {
		current[i] = d.CurrentDistance
		previous[i] = d.PreviousDistance
		if d.CurrentDistance > 0 || d.PreviousDistance > 0 {
			hasData = true
		}
	}

	if !hasData {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title,
			"No activities yet. Start one from the Activity screen!"))
	}

	graph := asciigraph.PlotMany([][]float64{previous, current},
		asciigraph.Height(8),
		asciigraph.Width(56),
		asciigraph.Precision(1),
		asciigraph.SeriesColors(asciigraph.Gray, asciigraph.Green),
	)

	days := "  Mon      Tue      Wed      Thu      Fri      Sat      Sun"
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph, statusStyle.Render(days)))
}

func (m HomeModel) renderZonesCard() string {
	title := cardTitleStyle.Render("Latest Heart Rate Analysis")

	lines := []string{
		RenderMetric("Average", fmt.Sprintf("%d bpm", m.zones.Avg), ""),
		RenderMetric("Max", fmt.Sprintf("%d bpm", m.zones.Max), ""),
		RenderMetric("Min", fmt.Sprintf("%d bpm", m.zones.Min), ""),
		"",
	}

	total := 0
	for _, z := range m.zones.Zones {
		total += z.TimeSeconds
	}
	for _, z := range m.zones.Zones {
		share := 0.0
		if total > 0 {
			share = float64(z.TimeSeconds) / float64(total)
		}
		bar := RenderProgressBar(share, 20)
		lines = append(lines, fmt.Sprintf("%-22s %s %s",
			z.Name, bar, units.FormatDurationShort(z.TimeSeconds)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}
