// Package profile holds the local user identity and display
// preferences. There is no remote account: "logging in" just creates
// a named local user.
package profile

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trekly/internal/store"
	"trekly/internal/units"
)

// Theme is the UI color scheme preference.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// User is the locally stored identity.
type User struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	AvatarURL           string         `json:"avatarUrl"`
	OnboardingCompleted bool           `json:"isOnboardingCompleted,omitempty"`
	Payout              *PayoutDetails `json:"payoutDetails,omitempty"`
}

// Preferences are the user's display settings.
type Preferences struct {
	UnitSystem units.System `json:"unitSystem"`
	Theme      Theme        `json:"theme"`
}

// DefaultPreferences returns the out-of-the-box settings.
func DefaultPreferences() Preferences {
	return Preferences{
		UnitSystem: units.Metric,
		Theme:      Light,
	}
}

// Manager owns the persisted user and preferences. Persistence
// failures are logged and never surfaced: the in-memory state stays
// authoritative for the rest of the process. Screens read from
// background goroutines while settings writes on the event loop, so
// access is serialized by mu.
type Manager struct {
	db     *store.DB
	logger *zap.Logger

	mu    sync.Mutex
	user  *User
	prefs Preferences
}

// NewManager loads any stored user and preferences from the db.
func NewManager(db *store.DB, logger *zap.Logger) *Manager {
	m := &Manager{
		db:     db,
		logger: logger,
		prefs:  DefaultPreferences(),
	}
	m.load()
	return m
}

func (m *Manager) load() {
	if raw, ok, err := m.db.Load(store.KeyUser); err != nil {
		m.logger.Error("loading user", zap.Error(err))
	} else if ok {
		var u User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			m.logger.Error("decoding stored user", zap.Error(err))
		} else {
			m.user = &u
		}
	}

	if raw, ok, err := m.db.Load(store.KeyPreferences); err != nil {
		m.logger.Error("loading preferences", zap.Error(err))
	} else if ok {
		var p Preferences
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			m.logger.Error("decoding stored preferences", zap.Error(err))
		} else {
			m.prefs = p
		}
	}
}

// User returns a copy of the current user, or nil when nobody is
// logged in.
func (m *Manager) User() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Preferences returns the current display preferences.
func (m *Manager) Preferences() Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs
}

// Login creates and persists a new local user with the given name.
func (m *Manager) Login(name string) *User {
	u := &User{
		ID:        "user_" + uuid.NewString(),
		Name:      name,
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", name),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = u
	m.persistUser()
	out := *u
	return &out
}

// Logout clears the stored user.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	if err := m.db.Delete(store.KeyUser); err != nil {
		m.logger.Error("deleting stored user", zap.Error(err))
	}
}

// Update applies changes to the current user and persists them.
// No-op when nobody is logged in.
func (m *Manager) Update(fn func(*User)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return
	}
	fn(m.user)
	m.persistUser()
}

// CompleteOnboarding marks onboarding done.
func (m *Manager) CompleteOnboarding() {
	m.Update(func(u *User) { u.OnboardingCompleted = true })
}

// SetPreferences replaces and persists the display preferences.
func (m *Manager) SetPreferences(p Preferences) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = p
	data, err := json.Marshal(p)
	if err != nil {
		m.logger.Error("encoding preferences", zap.Error(err))
		return
	}
	if err := m.db.Save(store.KeyPreferences, string(data)); err != nil {
		m.logger.Error("saving preferences", zap.Error(err))
	}
}

func (m *Manager) persistUser() {
	data, err := json.Marshal(m.user)
	if err != nil {
		m.logger.Error("encoding user", zap.Error(err))
		return
	}
	if err := m.db.Save(store.KeyUser, string(data)); err != nil {
		m.logger.Error("saving user", zap.Error(err))
	}
}
