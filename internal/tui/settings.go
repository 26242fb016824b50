package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trekly/internal/device"
	"trekly/internal/profile"
	"trekly/internal/session"
	"trekly/internal/units"
)

// SettingsModel is the preferences and device screen
type SettingsModel struct {
	profiles *profile.Manager
	devices  device.Source
	tracker  *session.Tracker

	monitor      *device.Monitor
	deviceStatus string
}

// NewSettingsModel creates a new settings model
func NewSettingsModel(profiles *profile.Manager, devices device.Source, tracker *session.Tracker) SettingsModel {
	return SettingsModel{
		profiles: profiles,
		devices:  devices,
		tracker:  tracker,
	}
}

// Init initializes the settings screen
func (m SettingsModel) Init() tea.Cmd {
	return nil
}

type deviceConnectedMsg struct {
	monitor *device.Monitor
	err     error
}

func (m SettingsModel) connectDevice() tea.Msg {
	monitor, err := m.devices.Connect(context.Background())
	return deviceConnectedMsg{monitor: monitor, err: err}
}

// Update handles messages
func (m SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case deviceConnectedMsg:
		if msg.err != nil {
			m.deviceStatus = errorStyle.Render(fmt.Sprintf("Connection failed: %v", msg.err))
			return m, nil
		}
		if m.monitor != nil {
			m.monitor.Close()
		}
		m.monitor = msg.monitor
		m.deviceStatus = successStyle.Render("Connected to " + msg.monitor.Name())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "u":
			prefs := m.profiles.Preferences()
			if prefs.UnitSystem == units.Imperial {
				prefs.UnitSystem = units.Metric
			} else {
				prefs.UnitSystem = units.Imperial
			}
			m.profiles.SetPreferences(prefs)
			// The tracker phrases messages in the display unit.
			m.tracker.SetUnitSystem(prefs.UnitSystem)
		case "t":
			prefs := m.profiles.Preferences()
			if prefs.Theme == profile.Light {
				prefs.Theme = profile.Dark
			} else {
				prefs.Theme = profile.Light
			}
			m.profiles.SetPreferences(prefs)
		case "c":
			m.deviceStatus = "Scanning for heart rate devices..."
			return m, m.connectDevice
		case "d":
			if m.monitor != nil {
				m.monitor.Close()
				m.monitor = nil
				m.deviceStatus = "Disconnected."
			}
		case "x":
			if m.monitor != nil {
				m.monitor.Close()
			}
			m.profiles.Logout()
			return m, func() tea.Msg { return LoggedOutMsg{} }
		}
	}
	return m, nil
}

// View renders the settings screen
func (m SettingsModel) View() string {
	prefs := m.profiles.Preferences()

	deviceLine := "No device connected"
	if m.monitor != nil {
		deviceLine = "Connected: " + m.monitor.Name()
	}

	lines := []string{
		cardTitleStyle.Render("Settings"),
		RenderMetric("Units", string(prefs.UnitSystem), ""),
		RenderMetric("Theme", string(prefs.Theme), ""),
		RenderMetric("Heart rate", deviceLine, ""),
	}
	if m.deviceStatus != "" {
		lines = append(lines, "", m.deviceStatus)
	}

	card := cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	help := statusStyle.Render("[u] toggle units  [t] toggle theme  [c] connect device  [d] disconnect  [x] log out")
	return lipgloss.JoinVertical(lipgloss.Left, card, help)
}
