package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trekly/internal/activity"
	"trekly/internal/device"
	"trekly/internal/fundraiser"
	"trekly/internal/location"
	"trekly/internal/notify"
	"trekly/internal/profile"
	"trekly/internal/session"
)

// Screen identifiers
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenHome
	ScreenActivity
	ScreenFeed
	ScreenFundraisers
	ScreenSettings
	ScreenNotifications
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	login         LoginModel
	home          HomeModel
	activityView  ActivityModel
	feed          FeedModel
	fundraisers   FundraisersModel
	settings      SettingsModel
	notifications NotificationsModel

	// Services
	profiles *profile.Manager
	log      *activity.Log
	book     *fundraiser.Book
	center   *notify.Center

	// Window dimensions
	width  int
	height int
}

// NewApp creates a new App with all dependencies
func NewApp(
	profiles *profile.Manager,
	log *activity.Log,
	book *fundraiser.Book,
	center *notify.Center,
	tracker *session.Tracker,
	positions location.Source,
	devices device.Source,
) *App {
	a := &App{
		profiles:      profiles,
		log:           log,
		book:          book,
		center:        center,
		login:         NewLoginModel(profiles),
		home:          NewHomeModel(profiles, log),
		activityView:  NewActivityModel(tracker, positions, devices, profiles, log),
		feed:          NewFeedModel(log, profiles),
		fundraisers:   NewFundraisersModel(book, profiles),
		settings:      NewSettingsModel(profiles, devices, tracker),
		notifications: NewNotificationsModel(center, profiles),
	}
	if profiles.User() != nil {
		a.screen = ScreenHome
	}
	return a
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	if a.screen == ScreenLogin {
		return a.login.Init()
	}
	return a.home.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings. Login owns the keyboard, and the live
		// tracking and fundraiser forms capture typed text.
		if a.screen != ScreenLogin && !a.capturingInput() {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				a.screen = ScreenHome
				a.home = NewHomeModel(a.profiles, a.log)
				return a, a.home.Init()
			case "2":
				a.screen = ScreenActivity
				return a, a.activityView.Init()
			case "3":
				a.screen = ScreenFeed
				return a, a.feed.Init()
			case "4":
				a.screen = ScreenFundraisers
				return a, a.fundraisers.Init()
			case "5":
				a.screen = ScreenSettings
				return a, a.settings.Init()
			case "n":
				if a.screen != ScreenNotifications {
					a.prevScreen = a.screen
					a.screen = ScreenNotifications
					return a, a.notifications.Init()
				}
			case "esc":
				if a.screen == ScreenNotifications {
					a.screen = a.prevScreen
					return a, nil
				}
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case LoggedInMsg:
		a.screen = ScreenHome
		a.home = NewHomeModel(a.profiles, a.log)
		return a, a.home.Init()

	case LoggedOutMsg:
		a.screen = ScreenLogin
		a.login = NewLoginModel(a.profiles)
		return a, a.login.Init()

	case ActivityRecordedMsg:
		// A finished activity refreshes the home stats next visit.
		a.home = NewHomeModel(a.profiles, a.log)
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenLogin:
		var m tea.Model
		m, cmd = a.login.Update(msg)
		a.login = m.(LoginModel)
	case ScreenHome:
		var m tea.Model
		m, cmd = a.home.Update(msg)
		a.home = m.(HomeModel)
	case ScreenActivity:
		var m tea.Model
		m, cmd = a.activityView.Update(msg)
		a.activityView = m.(ActivityModel)
	case ScreenFeed:
		var m tea.Model
		m, cmd = a.feed.Update(msg)
		a.feed = m.(FeedModel)
	case ScreenFundraisers:
		var m tea.Model
		m, cmd = a.fundraisers.Update(msg)
		a.fundraisers = m.(FundraisersModel)
	case ScreenSettings:
		var m tea.Model
		m, cmd = a.settings.Update(msg)
		a.settings = m.(SettingsModel)
	case ScreenNotifications:
		var m tea.Model
		m, cmd = a.notifications.Update(msg)
		a.notifications = m.(NotificationsModel)
	}

	return a, cmd
}

// capturingInput reports whether the current screen is reading typed
// text, which suspends the number-key navigation.
func (a *App) capturingInput() bool {
	switch a.screen {
	case ScreenActivity:
		return a.activityView.capturesKeys()
	case ScreenFundraisers:
		return a.fundraisers.capturesKeys()
	}
	return false
}

// View renders the app
func (a *App) View() string {
	if a.screen == ScreenLogin {
		return a.login.View()
	}

	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenHome:
		content = a.home.View()
	case ScreenActivity:
		content = a.activityView.View()
	case ScreenFeed:
		content = a.feed.View()
	case ScreenFundraisers:
		content = a.fundraisers.View()
	case ScreenSettings:
		content = a.settings.View()
	case ScreenNotifications:
		content = a.notifications.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content)
}

func (a *App) renderHeader() string {
	title := "Trekly"
	if u := a.profiles.User(); u != nil {
		title = fmt.Sprintf("Trekly · %s", u.Name)
	}
	return headerStyle.Render(title)
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Home", ScreenHome},
		{"2", "Activity", ScreenActivity},
		{"3", "Feed", ScreenFeed},
		{"4", "Fundraisers", ScreenFundraisers},
		{"5", "Settings", ScreenSettings},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	bell := "[n] Inbox"
	if u := a.profiles.User(); u != nil {
		if unread := a.center.UnreadCount(u.ID); unread > 0 {
			bell = fmt.Sprintf("[n] Inbox (%d)", unread)
		}
	}
	nav += "  " + navInactiveStyle.Render(bell)
	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

// LoggedInMsg is sent when the login screen completes
type LoggedInMsg struct{}

// LoggedOutMsg is sent when the user logs out from settings
type LoggedOutMsg struct{}

// ActivityRecordedMsg is sent when a tracked activity lands in the log
type ActivityRecordedMsg struct {
	Activity activity.Activity
}
