package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"trekly/internal/fundraiser"
	"trekly/internal/profile"
)

type fundraiserMode int

const (
	fundraiserList fundraiserMode = iota
	fundraiserDetail
	fundraiserCreate
)

// FundraisersModel lists campaigns, shows details, and takes
// donations.
type FundraisersModel struct {
	book     *fundraiser.Book
	profiles *profile.Manager

	mode     fundraiserMode
	selected int
	status   string

	// Create form
	formField   int
	title       textinput.Model
	description textinput.Model
	goal        textinput.Model
	creating    bool
	spin        spinner.Model
}

// NewFundraisersModel creates a new fundraisers model
func NewFundraisersModel(book *fundraiser.Book, profiles *profile.Manager) FundraisersModel {
	title := textinput.New()
	title.Placeholder = "Campaign title"
	title.CharLimit = 60
	title.Width = 40

	description := textinput.New()
	description.Placeholder = "What are you raising money for?"
	description.CharLimit = 200
	description.Width = 40

	goal := textinput.New()
	goal.Placeholder = "1000"
	goal.CharLimit = 8
	goal.Width = 10

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return FundraisersModel{
		book:        book,
		profiles:    profiles,
		title:       title,
		description: description,
		goal:        goal,
		spin:        sp,
	}
}

// Init initializes the fundraisers screen
func (m FundraisersModel) Init() tea.Cmd {
	return nil
}

// capturesKeys reports whether the create form owns the keyboard.
func (m FundraisersModel) capturesKeys() bool {
	return m.mode == fundraiserCreate
}

type campaignCreatedMsg struct {
	campaign fundraiser.Fundraiser
}

// Update handles messages
func (m FundraisersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case campaignCreatedMsg:
		m.creating = false
		m.mode = fundraiserList
		m.selected = 0
		m.status = successStyle.Render(fmt.Sprintf("Campaign %q is live!", msg.campaign.Title))
		return m, nil

	case spinner.TickMsg:
		if m.creating {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch m.mode {
	case fundraiserList:
		return m.updateList(keyMsg)
	case fundraiserDetail:
		return m.updateDetail(keyMsg)
	case fundraiserCreate:
		return m.updateCreate(keyMsg)
	}
	return m, nil
}

func (m FundraisersModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.book.All())
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < count-1 {
			m.selected++
		}
	case "enter":
		if count > 0 {
			m.mode = fundraiserDetail
			m.status = ""
		}
	case "c":
		m.mode = fundraiserCreate
		m.formField = 0
		m.title.SetValue("")
		m.description.SetValue("")
		m.goal.SetValue("")
		m.status = ""
		return m, m.title.Focus()
	}
	return m, nil
}

func (m FundraisersModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		m.mode = fundraiserList
		m.status = ""
	case "1", "2", "3":
		amounts := map[string]float64{"1": 10, "2": 25, "3": 50}
		m.donate(amounts[msg.String()])
	}
	return m, nil
}

func (m *FundraisersModel) donate(amount float64) {
	all := m.book.All()
	if m.selected >= len(all) {
		return
	}
	user := m.profiles.User()
	if user == nil {
		return
	}

	f := all[m.selected]
	if err := m.book.Donate(f.ID, amount, user.Name, user.AvatarURL, "Happy to support!"); err != nil {
		m.status = errorStyle.Render(fmt.Sprintf("Donation failed: %v", err))
		return
	}
	m.status = successStyle.Render(fmt.Sprintf("You donated $%g to %q!", amount, f.Title))
}

func (m FundraisersModel) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.creating {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.mode = fundraiserList
		return m, nil
	case "tab", "shift+tab", "enter":
		if msg.String() == "enter" && m.formField == 2 {
			return m.submitCreate()
		}
		if msg.String() == "shift+tab" {
			m.formField = (m.formField + 2) % 3
		} else {
			m.formField = (m.formField + 1) % 3
		}
		m.title.Blur()
		m.description.Blur()
		m.goal.Blur()
		switch m.formField {
		case 0:
			return m, m.title.Focus()
		case 1:
			return m, m.description.Focus()
		default:
			return m, m.goal.Focus()
		}
	}

	var cmd tea.Cmd
	switch m.formField {
	case 0:
		m.title, cmd = m.title.Update(msg)
	case 1:
		m.description, cmd = m.description.Update(msg)
	default:
		m.goal, cmd = m.goal.Update(msg)
	}
	return m, cmd
}

func (m FundraisersModel) submitCreate() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.title.Value())
	description := strings.TrimSpace(m.description.Value())
	goal, err := strconv.ParseFloat(strings.TrimSpace(m.goal.Value()), 64)
	if title == "" || description == "" || err != nil || goal <= 0 {
		m.status = errorStyle.Render("Please fill in a title, description, and a positive goal.")
		return m, nil
	}

	user := m.profiles.User()
	if user == nil {
		return m, nil
	}

	// The campaign image fetch can take many seconds; run it off the
	// event loop and deliver the result as a message.
	m.creating = true
	m.status = ""
	book := m.book
	creator := *user
	create := func() tea.Msg {
		f := book.Add(context.Background(), creator, title, description, goal)
		return campaignCreatedMsg{campaign: f}
	}
	return m, tea.Batch(m.spin.Tick, create)
}

// View renders the fundraisers screen
func (m FundraisersModel) View() string {
	switch m.mode {
	case fundraiserDetail:
		return m.viewDetail()
	case fundraiserCreate:
		return m.viewCreate()
	default:
		return m.viewList()
	}
}

func (m FundraisersModel) viewList() string {
	all := m.book.All()

	var sections []string
	if m.status != "" {
		sections = append(sections, m.status)
	}
	if len(all) == 0 {
		sections = append(sections, cardStyle.Render("No campaigns yet. Press 'c' to create one."))
	}
	for i, f := range all {
		style := cardStyle
		if i == m.selected {
			style = style.BorderForeground(primaryColor)
		}
		progress := 0.0
		if f.Goal > 0 {
			progress = f.CurrentAmount / f.Goal
		}
		card := style.Render(lipgloss.JoinVertical(lipgloss.Left,
			cardTitleStyle.Render(f.Title),
			fmt.Sprintf("by %s · %s", f.Creator.Name, humanizeTimestamp(f.Timestamp)),
			RenderProgressBar(progress, 30),
			fmt.Sprintf("$%s raised of $%s · %d supporters",
				humanize.Commaf(f.CurrentAmount), humanize.Commaf(f.Goal), len(f.Supporters)),
		))
		sections = append(sections, card)
	}
	sections = append(sections, statusStyle.Render("↑/↓ browse  [enter] details  [c] create"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m FundraisersModel) viewDetail() string {
	all := m.book.All()
	if m.selected >= len(all) {
		return ""
	}
	f := all[m.selected]

	lines := []string{
		cardTitleStyle.Render(f.Title),
		f.Description,
		"",
		fmt.Sprintf("$%s raised of $%s goal", humanize.Commaf(f.CurrentAmount), humanize.Commaf(f.Goal)),
	}

	if len(f.Supporters) > 0 {
		lines = append(lines, "", cardTitleStyle.Render("Supporters"))
		for i, s := range f.Supporters {
			if i >= 5 {
				lines = append(lines, statusStyle.Render(fmt.Sprintf("... and %d more", len(f.Supporters)-i)))
				break
			}
			entry := fmt.Sprintf("%s · $%g", s.Name, s.Amount)
			if s.Message != "" {
				entry += fmt.Sprintf(" · %q", s.Message)
			}
			lines = append(lines, entry)
		}
	}

	var sections []string
	if m.status != "" {
		sections = append(sections, m.status)
	}
	sections = append(sections,
		cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)),
		statusStyle.Render("[1] $10  [2] $25  [3] $50  [esc] back"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m FundraisersModel) viewCreate() string {
	if m.creating {
		return lipgloss.JoinVertical(lipgloss.Left,
			"",
			fmt.Sprintf("  %s Setting up your campaign...", m.spin.View()),
			statusStyle.Render("  Our AI is generating a banner image for it!"),
		)
	}

	labels := [3]string{"Title", "Description", "Goal ($)"}
	fields := [3]string{m.title.View(), m.description.View(), m.goal.View()}

	lines := []string{cardTitleStyle.Render("New Campaign")}
	for i := range fields {
		label := labels[i]
		if i == m.formField {
			label = navActiveStyle.Render(label)
		}
		lines = append(lines, label, fields[i], "")
	}
	lines = append(lines, statusStyle.Render("[tab] next field  [enter] on goal submits  [esc] cancel"))
	if m.status != "" {
		lines = append(lines, m.status)
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func humanizeTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return humanize.Time(t)
}
