package tui

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trekly/internal/activity"
	"trekly/internal/device"
	"trekly/internal/geo"
	"trekly/internal/location"
	"trekly/internal/profile"
	"trekly/internal/session"
	"trekly/internal/units"
)

// ActivityModel drives the activity session: setup, live tracking,
// and the post-activity summary.
type ActivityModel struct {
	tracker   *session.Tracker
	positions location.Source
	devices   device.Source
	profiles  *profile.Manager
	log       *activity.Log

	ctx       context.Context
	watch     *location.Watch
	monitor   *device.Monitor
	latestBPM int
	spin      spinner.Model
	finishing bool
	recorded  *activity.Activity
}

// NewActivityModel creates a new activity model
func NewActivityModel(tracker *session.Tracker, positions location.Source, devices device.Source, profiles *profile.Manager, log *activity.Log) ActivityModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return ActivityModel{
		tracker:   tracker,
		positions: positions,
		devices:   devices,
		profiles:  profiles,
		log:       log,
		ctx:       context.Background(),
		spin:      sp,
	}
}

// Init initializes the activity screen
func (m ActivityModel) Init() tea.Cmd {
	return nil
}

// capturesKeys reports whether number-key navigation is suspended;
// leaving mid-session is not allowed, finish or keep going.
func (m ActivityModel) capturesKeys() bool {
	return m.tracker.Snapshot().State == session.Tracking
}

// Messages

type trackTickMsg struct{}

type startedMsg struct {
	watch      *location.Watch
	watchErr   error
	monitor    *device.Monitor
	monitorErr error
}

type fixMsg struct{ fix geo.Coords }

type fixErrMsg struct{ err location.WatchError }

type fixClosedMsg struct{}

type hrMsg struct{ bpm int }

type hrClosedMsg struct{}

// Commands

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return trackTickMsg{}
	})
}

func (m ActivityModel) start() tea.Msg {
	watch, werr := m.positions.Watch(m.ctx)
	monitor, derr := m.devices.Connect(m.ctx)
	return startedMsg{watch: watch, watchErr: werr, monitor: monitor, monitorErr: derr}
}

func waitForFix(w *location.Watch) tea.Cmd {
	return func() tea.Msg {
		select {
		case fix, ok := <-w.Fixes():
			if !ok {
				return fixClosedMsg{}
			}
			return fixMsg{fix: fix}
		case werr, ok := <-w.Errors():
			if !ok {
				return fixClosedMsg{}
			}
			return fixErrMsg{err: werr}
		}
	}
}

func waitForSample(mon *device.Monitor) tea.Cmd {
	return func() tea.Msg {
		bpm, ok := <-mon.Samples()
		if !ok {
			return hrClosedMsg{}
		}
		return hrMsg{bpm: bpm}
	}
}

func (m ActivityModel) confirmFinish() tea.Cmd {
	watch := m.watch
	monitor := m.monitor
	return func() tea.Msg {
		// Deterministic teardown before the session closes out.
		if watch != nil {
			watch.Stop()
		}
		if monitor != nil {
			monitor.Close()
		}

		user := m.profiles.User()
		if user == nil {
			user = &profile.User{Name: "Trekker"}
		}
		a := m.tracker.ConfirmFinish(m.ctx, *user)
		m.log.Add(m.ctx, a)
		return ActivityRecordedMsg{Activity: a}
	}
}

// Update handles messages
func (m ActivityModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case startedMsg:
		m.watch = msg.watch
		m.monitor = msg.monitor
		m.tracker.Start(m.ctx)

		var cmds []tea.Cmd
		cmds = append(cmds, tickCmd())
		if msg.watchErr != nil || m.watch == nil {
			m.tracker.RecordPositionError(location.WatchError{Code: location.Unavailable}.Message())
		} else {
			cmds = append(cmds, waitForFix(m.watch))
		}
		if msg.monitorErr == nil && m.monitor != nil {
			cmds = append(cmds, waitForSample(m.monitor))
		}
		return m, tea.Batch(cmds...)

	case trackTickMsg:
		m.tracker.Tick()
		if m.tracker.Snapshot().State == session.Tracking {
			return m, tickCmd()
		}
		return m, nil

	case fixMsg:
		m.tracker.RecordFix(m.ctx, msg.fix)
		return m, waitForFix(m.watch)

	case fixErrMsg:
		m.tracker.RecordPositionError(msg.err.Message())
		return m, waitForFix(m.watch)

	case hrMsg:
		m.latestBPM = msg.bpm
		m.tracker.RecordHeartRate(msg.bpm)
		return m, waitForSample(m.monitor)

	case fixClosedMsg, hrClosedMsg:
		return m, nil

	case ActivityRecordedMsg:
		m.finishing = false
		// The log may have enriched the record with an insight.
		for _, a := range m.log.All() {
			if a.ID == msg.Activity.ID {
				m.recorded = &a
				break
			}
		}
		return m, nil

	case spinner.TickMsg:
		if m.finishing {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

func (m ActivityModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.tracker.Snapshot()

	switch s.State {
	case session.Setup:
		switch msg.String() {
		case "c":
			m.tracker.SetType(activity.Cycle)
		case "r":
			m.tracker.SetType(activity.Run)
		case "+", "=":
			m.adjustGoal(s, 1)
		case "-":
			m.adjustGoal(s, -1)
		case "enter", "s":
			m.latestBPM = 0
			return m, m.start
		}

	case session.Tracking:
		if s.FinishPrompt {
			switch msg.String() {
			case "y":
				m.finishing = true
				return m, tea.Batch(m.spin.Tick, m.confirmFinish())
			case "n", "esc":
				m.tracker.CancelFinish()
			}
			return m, nil
		}
		switch msg.String() {
		case "f", "enter":
			if !m.tracker.RequestFinish(m.ctx) {
				m.finishing = true
				return m, tea.Batch(m.spin.Tick, m.confirmFinish())
			}
		}

	case session.Summary:
		switch msg.String() {
		case "g":
			m.tracker.Reset()
			m.watch = nil
			m.monitor = nil
			m.latestBPM = 0
			m.recorded = nil
		}
	}

	return m, nil
}

// adjustGoal moves the goal by one unit in the display system,
// flooring at 1.
func (m ActivityModel) adjustGoal(s session.Snapshot, delta float64) {
	system := m.profiles.Preferences().UnitSystem
	display := math.Round(units.ToDisplay(s.GoalKm, system)) + delta
	if display < 1 {
		display = 1
	}
	m.tracker.SetGoal(units.FromDisplay(display, system))
}

// View renders the activity screen
func (m ActivityModel) View() string {
	s := m.tracker.Snapshot()

	switch s.State {
	case session.Tracking:
		return m.viewTracking(s)
	case session.Summary:
		return m.viewSummary(s)
	default:
		return m.viewSetup(s)
	}
}

func (m ActivityModel) viewSetup(s session.Snapshot) string {
	system := m.profiles.Preferences().UnitSystem
	title := cardTitleStyle.Render("New Activity")

	cycle := "  Cycle"
	run := "  Run"
	if s.Type == activity.Cycle {
		cycle = navActiveStyle.Render("▸ Cycle")
	} else {
		run = navActiveStyle.Render("▸ Run")
	}

	goal := fmt.Sprintf("Goal: %s", units.FormatDistance(s.GoalKm, system, true, 0))

	card := cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		cycle,
		run,
		"",
		metricValueStyle.Render(goal),
		"",
		statusStyle.Render("[c] cycle  [r] run  [+/-] goal  [enter] start"),
	))
	return card
}

func (m ActivityModel) viewTracking(s session.Snapshot) string {
	system := m.profiles.Preferences().UnitSystem
	var sections []string

	if s.Motivation != "" {
		sections = append(sections, toastStyle.Render(s.Motivation))
	}

	clock := clockStyle.Render(fmt.Sprintf("  %s  %s", s.Type, units.FormatClock(s.ElapsedSeconds)))
	sections = append(sections, clock)

	bar := RenderProgressBar(s.Progress()/100, 40)
	progress := fmt.Sprintf("%s\n%s / %s",
		bar,
		units.FormatDistance(s.DistanceKm, system, true, 2),
		units.FormatDistance(s.GoalKm, system, true, 0))
	sections = append(sections, progress)

	if m.latestBPM > 0 {
		sections = append(sections, fmt.Sprintf("♥ %d bpm", m.latestBPM))
	}
	if s.GPSStatus != "" {
		sections = append(sections, errorStyle.Render(s.GPSStatus))
	}
	if len(s.Path) > 1 {
		sections = append(sections, m.renderMiniMap(s.Path))
	}

	if s.FinishPrompt {
		modal := modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			s.FinishMessage,
			"",
			statusStyle.Render("[y] stop anyway   [n] keep going"),
		))
		sections = append(sections, modal)
	} else {
		sections = append(sections, statusStyle.Render("[f] finish"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderMiniMap plots the tracked path on a small character canvas.
func (m ActivityModel) renderMiniMap(path []geo.Coords) string {
	const w, h = 36, 10
	points := geo.NormalizePathToCanvas(path, w, h, 1)

	grid := make([][]rune, h)
	for y := range grid {
		grid[y] = make([]rune, w)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}
	for _, p := range points {
		x := int(p.X)
		y := int(p.Y)
		if x >= 0 && x < w && y >= 0 && y < h {
			grid[y][x] = '·'
		}
	}
	if last := points[len(points)-1]; int(last.X) >= 0 && int(last.X) < w && int(last.Y) >= 0 && int(last.Y) < h {
		grid[int(last.Y)][int(last.X)] = '●'
	}

	lines := make([]string, h)
	for y, row := range grid {
		lines[y] = string(row)
	}
	heading := ""
	if len(path) > 1 {
		heading = fmt.Sprintf("Heading %s", geo.CalculateBearing(path[len(path)-2], path[len(path)-1]))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinVertical(lipgloss.Left, lines...),
		statusStyle.Render(heading)))
}

func (m ActivityModel) viewSummary(s session.Snapshot) string {
	a := m.recorded
	if a == nil {
		a = s.Completed
	}
	if m.finishing || a == nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			"",
			fmt.Sprintf("  %s Crafting your highlight...", m.spin.View()),
			statusStyle.Render("  Our AI is generating a unique image for your adventure!"),
		)
	}

	system := m.profiles.Preferences().UnitSystem
	title := cardTitleStyle.Render("Great Job!")

	lines := []string{
		RenderMetric("Type", string(a.Type), ""),
		RenderMetric("Distance", units.FormatDistance(a.DistanceKm, system, true, 2), ""),
		RenderMetric("Time", a.TimeLabel, ""),
		RenderMetric("Route", fmt.Sprintf("%s → %s", a.Route.Start, a.Route.End), ""),
	}
	if a.AIInsight != "" {
		lines = append(lines, "", successStyle.Render(a.AIInsight))
	}
	lines = append(lines, "", statusStyle.Render("Image: "+truncate(a.ImageURL, 48)))

	card := cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title,
		lipgloss.JoinVertical(lipgloss.Left, lines...)))
	return lipgloss.JoinVertical(lipgloss.Left, card,
		statusStyle.Render("[g] go again  [3] see it in the feed"))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
