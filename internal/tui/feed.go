package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"trekly/internal/activity"
	"trekly/internal/profile"
	"trekly/internal/units"
)

// FeedModel is the social feed of completed activities
type FeedModel struct {
	log      *activity.Log
	profiles *profile.Manager
	selected int
}

// NewFeedModel creates a new feed model
func NewFeedModel(log *activity.Log, profiles *profile.Manager) FeedModel {
	return FeedModel{log: log, profiles: profiles}
}

// Init initializes the feed
func (m FeedModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m FeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < m.log.Len()-1 {
				m.selected++
			}
		}
	}
	return m, nil
}

// View renders the feed
func (m FeedModel) View() string {
	all := m.log.All()
	if len(all) == 0 {
		return cardStyle.Render("No activities yet. Start one from the Activity screen!")
	}

	var sections []string
	for i, a := range all {
		if i >= 8 {
			sections = append(sections, statusStyle.Render(fmt.Sprintf("  ... and %d more", len(all)-i)))
			break
		}
		sections = append(sections, m.renderCard(a, i == m.selected))
	}
	sections = append(sections, statusStyle.Render("↑/↓ to browse"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m FeedModel) renderCard(a activity.Activity, selected bool) string {
	when := a.Timestamp
	if t := a.Time(); !t.IsZero() {
		when = humanize.Time(t)
	}

	header := fmt.Sprintf("%s · %s, %s", a.User.Name, a.Type, when)
	stats := fmt.Sprintf("%s in %s   %s → %s",
		units.FormatDistance(a.DistanceKm, m.profiles.Preferences().UnitSystem, true, 2),
		a.TimeLabel, a.Route.Start, a.Route.End)

	lines := []string{cardTitleStyle.Render(header), stats}
	if selected {
		if len(a.HeartRateData) > 0 {
			lines = append(lines, fmt.Sprintf("%d heart rate samples recorded", len(a.HeartRateData)))
		}
		if a.AIInsight != "" {
			lines = append(lines, successStyle.Render(a.AIInsight))
		}
		lines = append(lines, statusStyle.Render("Image: "+truncate(a.ImageURL, 52)))
	}

	style := cardStyle
	if selected {
		style = style.BorderForeground(primaryColor)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
