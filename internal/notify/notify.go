// Package notify holds in-app notifications, delivered to a user's
// inbox when something happens to things they own (donations to their
// campaigns, mostly).
package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trekly/internal/store"
)

// Notification is one inbox entry.
type Notification struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	Timestamp    string `json:"timestamp"`
	Read         bool   `json:"read"`
	FundraiserID string `json:"fundraiserId,omitempty"`
}

// Center owns the notification collection, newest first.
type Center struct {
	db     *store.DB
	logger *zap.Logger

	notifications []Notification
}

// NewCenter loads the stored notifications. A missing key yields an
// empty inbox; a corrupt value is logged and treated as empty.
func NewCenter(db *store.DB, logger *zap.Logger) *Center {
	c := &Center{db: db, logger: logger}

	raw, ok, err := db.Load(store.KeyNotifications)
	if err != nil {
		logger.Error("loading notifications", zap.Error(err))
		return c
	}
	if !ok {
		return c
	}
	if err := json.Unmarshal([]byte(raw), &c.notifications); err != nil {
		logger.Error("decoding stored notifications", zap.Error(err))
		c.notifications = nil
	}
	return c
}

// Add records a new unread notification for a user and persists the
// inbox.
func (c *Center) Add(userID, title, body, fundraiserID string) Notification {
	n := Notification{
		ID:           "notif_" + uuid.NewString(),
		UserID:       userID,
		Title:        title,
		Body:         body,
		Timestamp:    time.Now().Format(time.RFC3339),
		FundraiserID: fundraiserID,
	}
	c.notifications = append([]Notification{n}, c.notifications...)
	c.persist()
	return n
}

// ForUser returns the user's notifications, newest first.
func (c *Center) ForUser(userID string) []Notification {
	var out []Notification
	for _, n := range c.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// UnreadCount reports how many of the user's notifications are
// unread.
func (c *Center) UnreadCount(userID string) int {
	count := 0
	for _, n := range c.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count
}

// MarkAllRead marks every notification belonging to the user as read
// and persists the inbox.
func (c *Center) MarkAllRead(userID string) {
	changed := false
	for i := range c.notifications {
		if c.notifications[i].UserID == userID && !c.notifications[i].Read {
			c.notifications[i].Read = true
			changed = true
		}
	}
	if changed {
		c.persist()
	}
}

func (c *Center) persist() {
	data, err := json.Marshal(c.notifications)
	if err != nil {
		c.logger.Error("encoding notifications", zap.Error(err))
		return
	}
	if err := c.db.Save(store.KeyNotifications, string(data)); err != nil {
		c.logger.Error("saving notifications", zap.Error(err))
	}
}
