package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"trekly/internal/coach"
	"trekly/internal/fundraiser"
	"trekly/internal/notify"
	"trekly/internal/profile"
	"trekly/internal/store"
)

// stubCoachService fails every text call; GenerateImage blocks on
// imageGate when set, then returns imageURL.
type stubCoachService struct {
	imageGate chan struct{}
	imageURL  string
}

func (s *stubCoachService) Motivation(context.Context, coach.ActivityType, float64, float64) (string, error) {
	return "", errors.New("unavailable")
}

func (s *stubCoachService) Encouragement(context.Context, coach.ActivityType, float64, float64) (string, error) {
	return "", errors.New("unavailable")
}

func (s *stubCoachService) Insight(context.Context, []int) (string, error) {
	return "", errors.New("unavailable")
}

func (s *stubCoachService) GenerateImage(context.Context, string, string) (string, error) {
	if s.imageGate != nil {
		<-s.imageGate
	}
	if s.imageURL == "" {
		return "", errors.New("unavailable")
	}
	return s.imageURL, nil
}

func newTestBook(t *testing.T, c coach.Service) (*fundraiser.Book, *profile.Manager) {
	t.Helper()
	db, err := store.NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	center := notify.NewCenter(db, zap.NewNop())
	profiles := profile.NewManager(db, zap.NewNop())
	profiles.Login("Alex")
	return fundraiser.NewBook(db, c, center, zap.NewNop()), profiles
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCreateCampaignDoesNotBlockUpdate(t *testing.T) {
	c := &stubCoachService{
		imageGate: make(chan struct{}),
		imageURL:  "https://img.example/banner.png",
	}
	book, profiles := newTestBook(t, c)

	m := NewFundraisersModel(book, profiles)
	m.mode = fundraiserCreate
	m.formField = 2
	m.title.SetValue("Trail Repair Fund")
	m.description.SetValue("Fixing up the ridge trail")
	m.goal.SetValue("500")

	// Submitting must return immediately even though the image fetch
	// is still blocked.
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(FundraisersModel)
	if !m.creating {
		t.Fatal("creating = false after submit")
	}
	if cmd == nil {
		t.Fatal("submit returned no command")
	}

	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatal("submit command is not a batch")
	}
	results := make(chan tea.Msg, len(batch))
	for _, c := range batch {
		go func(c tea.Cmd) { results <- c() }(c)
	}

	close(c.imageGate)

	var created campaignCreatedMsg
	deadline := time.After(2 * time.Second)
	for found := false; !found; {
		select {
		case msg := <-results:
			if cm, ok := msg.(campaignCreatedMsg); ok {
				created = cm
				found = true
			}
		case <-deadline:
			t.Fatal("timed out waiting for campaign creation")
		}
	}

	model, _ = m.Update(created)
	m = model.(FundraisersModel)
	if m.creating {
		t.Error("creating = true after result arrived")
	}
	if m.mode != fundraiserList {
		t.Errorf("mode = %d, want list", m.mode)
	}

	all := book.All()
	if len(all) != 3 {
		t.Fatalf("campaigns = %d, want 3 (two seeds plus the new one)", len(all))
	}
	if all[0].Title != "Trail Repair Fund" {
		t.Errorf("newest campaign = %q", all[0].Title)
	}
	if all[0].ImageURL != c.imageURL {
		t.Errorf("ImageURL = %q, want %q", all[0].ImageURL, c.imageURL)
	}
}

func TestCreateFormIgnoresKeysWhileCreating(t *testing.T) {
	book, profiles := newTestBook(t, &stubCoachService{})

	m := NewFundraisersModel(book, profiles)
	m.mode = fundraiserCreate
	m.creating = true

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = model.(FundraisersModel)
	if m.mode != fundraiserCreate {
		t.Error("esc should not leave the form while creation is in flight")
	}
}
