package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trekly/internal/profile"
)

// LoginModel is the local "login by name" screen
type LoginModel struct {
	profiles *profile.Manager
	input    textinput.Model
}

// NewLoginModel creates a new login model
func NewLoginModel(profiles *profile.Manager) LoginModel {
	ti := textinput.New()
	ti.Placeholder = "Your name"
	ti.CharLimit = 40
	ti.Width = 30
	ti.Focus()

	return LoginModel{
		profiles: profiles,
		input:    ti,
	}
}

// Init initializes the login screen
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			name := strings.TrimSpace(m.input.Value())
			if name == "" {
				return m, nil
			}
			m.profiles.Login(name)
			return m, func() tea.Msg { return LoggedInMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the login screen
func (m LoginModel) View() string {
	title := headerStyle.Render("Trekly")
	prompt := cardTitleStyle.Render("Who's trekking today?")

	card := cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		prompt,
		m.input.View(),
		"",
		statusStyle.Render("Enter to continue, Ctrl+C to quit"),
	))

	return lipgloss.JoinVertical(lipgloss.Left, title, card)
}
