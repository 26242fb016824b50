package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"trekly/internal/notify"
	"trekly/internal/profile"
)

// NotificationsModel is the inbox overlay
type NotificationsModel struct {
	center   *notify.Center
	profiles *profile.Manager
}

// NewNotificationsModel creates a new notifications model
func NewNotificationsModel(center *notify.Center, profiles *profile.Manager) NotificationsModel {
	return NotificationsModel{
		center:   center,
		profiles: profiles,
	}
}

// Init initializes the inbox
func (m NotificationsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m NotificationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "m":
			if u := m.profiles.User(); u != nil {
				m.center.MarkAllRead(u.ID)
			}
		}
	}
	return m, nil
}

// View renders the inbox
func (m NotificationsModel) View() string {
	user := m.profiles.User()
	if user == nil {
		return ""
	}

	inbox := m.center.ForUser(user.ID)
	if len(inbox) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			cardStyle.Render("Nothing here yet."),
			statusStyle.Render("[esc] back"))
	}

	lines := []string{cardTitleStyle.Render("Inbox")}
	for i, n := range inbox {
		if i >= 10 {
			break
		}
		title := n.Title
		if !n.Read {
			title = navActiveStyle.Render("● " + title)
		}
		when := n.Timestamp
		if t, err := time.Parse(time.RFC3339, n.Timestamp); err == nil {
			when = humanize.Time(t)
		}
		lines = append(lines, title, n.Body, statusStyle.Render(when), "")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)),
		statusStyle.Render("[m] mark all read  [esc] back"))
}
