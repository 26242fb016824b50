// Package fundraiser implements fundraising campaigns: creation,
// donations, and the supporter roll. Money never moves; amounts are
// display state only.
package fundraiser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trekly/internal/coach"
	"trekly/internal/notify"
	"trekly/internal/profile"
	"trekly/internal/store"
)

// ErrNotFound is returned when a campaign id does not exist.
var ErrNotFound = errors.New("fundraiser not found")

// Supporter is one donation entry on a campaign.
type Supporter struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	AvatarURL string  `json:"avatarUrl"`
	Amount    float64 `json:"amount"`
	Message   string  `json:"message,omitempty"`
}

// Fundraiser is a campaign. Supporters are newest first.
type Fundraiser struct {
	ID            string       `json:"id"`
	Creator       profile.User `json:"creator"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Goal          float64      `json:"goal"`
	CurrentAmount float64      `json:"currentAmount"`
	Supporters    []Supporter  `json:"supporters"`
	Timestamp     string       `json:"timestamp"`
	ImageURL      string       `json:"imageUrl"`
}

// Book owns the campaign collection and notifies creators about
// donations. Add runs on a background goroutine while other screens
// read, so access is serialized by mu.
type Book struct {
	db     *store.DB
	coach  coach.Service
	notify *notify.Center
	logger *zap.Logger

	mu          sync.Mutex
	fundraisers []Fundraiser
}

// NewBook loads the stored campaigns. On first run the book is seeded
// with demo campaigns so the screen isn't empty.
func NewBook(db *store.DB, coachSvc coach.Service, center *notify.Center, logger *zap.Logger) *Book {
	b := &Book{
		db:     db,
		coach:  coachSvc,
		notify: center,
		logger: logger,
	}

	raw, ok, err := db.Load(store.KeyFundraisers)
	if err != nil {
		logger.Error("loading fundraisers", zap.Error(err))
		return b
	}
	if !ok {
		b.fundraisers = seedCampaigns()
		b.persist()
		return b
	}
	if err := json.Unmarshal([]byte(raw), &b.fundraisers); err != nil {
		logger.Error("decoding stored fundraisers", zap.Error(err))
		b.fundraisers = nil
	}
	return b
}

// Add creates a campaign with a zero amount and no supporters and
// persists the collection. The banner image comes from the coach;
// when generation fails a seeded placeholder stands in.
func (b *Book) Add(ctx context.Context, creator profile.User, title, description string, goal float64) Fundraiser {
	id := "fund_" + uuid.NewString()

	// The image fetch can take many seconds; keep it outside the lock
	// so readers stay responsive.
	imageURL, err := b.coach.GenerateImage(ctx, coach.CampaignImagePrompt(title), "16:9")
	if err != nil {
		b.logger.Warn("generating campaign image, using placeholder", zap.Error(err))
		imageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/450", id)
	}

	f := Fundraiser{
		ID:          id,
		Creator:     creator,
		Title:       title,
		Description: description,
		Goal:        goal,
		Timestamp:   time.Now().Format(time.RFC3339),
		ImageURL:    imageURL,
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fundraisers = append([]Fundraiser{f}, b.fundraisers...)
	b.persist()
	return f
}

// Donate adds a supporter to a campaign, raises its amount, persists
// the collection, and notifies the campaign creator.
func (b *Book) Donate(id string, amount float64, name, avatarURL, message string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := -1
	for i := range b.fundraisers {
		if b.fundraisers[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	f := &b.fundraisers[idx]
	supporter := Supporter{
		ID:        "supp_" + uuid.NewString(),
		Name:      name,
		AvatarURL: avatarURL,
		Amount:    amount,
		Message:   message,
	}
	f.CurrentAmount += amount
	f.Supporters = append([]Supporter{supporter}, f.Supporters...)
	b.persist()

	b.notify.Add(f.Creator.ID,
		"New Donation Received!",
		fmt.Sprintf("%s donated $%g to your %q campaign.", name, amount, f.Title),
		f.ID)
	return nil
}

// All returns the campaigns newest-first. The returned slice is a
// copy.
func (b *Book) All() []Fundraiser {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Fundraiser, len(b.fundraisers))
	copy(out, b.fundraisers)
	return out
}

// Get returns one campaign by id.
func (b *Book) Get(id string) (Fundraiser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, f := range b.fundraisers {
		if f.ID == id {
			return f, nil
		}
	}
	return Fundraiser{}, ErrNotFound
}

func (b *Book) persist() {
	data, err := json.Marshal(b.fundraisers)
	if err != nil {
		b.logger.Error("encoding fundraisers", zap.Error(err))
		return
	}
	if err := b.db.Save(store.KeyFundraisers, string(data)); err != nil {
		b.logger.Error("saving fundraisers", zap.Error(err))
	}
}

// seedCampaigns returns the demo campaigns shown before anyone has
// created their own.
func seedCampaigns() []Fundraiser {
	now := time.Now()
	return []Fundraiser{
		{
			ID: "fund_alps-cycle",
			Creator: profile.User{
				ID:        "user_alex-ride",
				Name:      "Alex Ride",
				AvatarURL: "https://i.pravatar.cc/150?u=alex",
			},
			Title:         "Cycle Across the Alps",
			Description:   "I'm embarking on a challenging journey to cycle across the Alps to raise money for new cycling equipment for underprivileged kids. Every donation helps!",
			Goal:          5000,
			CurrentAmount: 2850,
			Supporters: []Supporter{
				{ID: "supp_charlie", Name: "Charlie", AvatarURL: "https://i.pravatar.cc/150?u=charlie", Amount: 50, Message: "Go for it!"},
				{ID: "supp_diana", Name: "Diana", AvatarURL: "https://i.pravatar.cc/150?u=diana", Amount: 25, Message: "Happy to support!"},
			},
			Timestamp: now.Add(-24 * time.Hour).Format(time.RFC3339),
			ImageURL:  "https://picsum.photos/seed/alps-cycle/800/450",
		},
		{
			ID: "fund_water-run",
			Creator: profile.User{
				ID:        "user_mia-runner",
				Name:      "Mia Runner",
				AvatarURL: "https://i.pravatar.cc/150?u=mia",
			},
			Title:         "Marathon for Clean Water",
			Description:   "Running my first full marathon to support charities that provide clean drinking water to communities in need. Your contribution, big or small, makes a huge difference.",
			Goal:          3000,
			CurrentAmount: 1200,
			Supporters: []Supporter{
				{ID: "supp_ethan", Name: "Ethan", AvatarURL: "https://i.pravatar.cc/150?u=ethan", Amount: 100},
			},
			Timestamp: now.Add(-48 * time.Hour).Format(time.RFC3339),
			ImageURL:  "https://picsum.photos/seed/water-run/800/450",
		},
	}
}
