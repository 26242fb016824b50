package notify

import (
	"testing"

	"go.uber.org/zap"

	"trekly/internal/store"
)

func newTestCenter(t *testing.T) (*Center, *store.DB) {
	t.Helper()
	db, err := store.NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewCenter(db, zap.NewNop()), db
}

func TestAddPrependsAndScopesToUser(t *testing.T) {
	c, _ := newTestCenter(t)

	c.Add("user_a", "New Donation Received!", "Charlie donated $50", "fund_1")
	second := c.Add("user_a", "New Donation Received!", "Diana donated $25", "fund_1")
	c.Add("user_b", "Welcome", "Hello!", "")

	got := c.ForUser("user_a")
	if len(got) != 2 {
		t.Fatalf("ForUser(a) len = %d, want 2", len(got))
	}
	if got[0].ID != second.ID {
		t.Errorf("newest first violated: got %s on top", got[0].ID)
	}
	if len(c.ForUser("user_b")) != 1 {
		t.Errorf("ForUser(b) len = %d, want 1", len(c.ForUser("user_b")))
	}
}

func TestUnreadCountAndMarkAllRead(t *testing.T) {
	c, _ := newTestCenter(t)

	c.Add("user_a", "t1", "b1", "")
	c.Add("user_a", "t2", "b2", "")
	c.Add("user_b", "t3", "b3", "")

	if got := c.UnreadCount("user_a"); got != 2 {
		t.Errorf("UnreadCount = %d, want 2", got)
	}

	c.MarkAllRead("user_a")

	if got := c.UnreadCount("user_a"); got != 0 {
		t.Errorf("UnreadCount after MarkAllRead = %d, want 0", got)
	}
	// Other users' inboxes are untouched.
	if got := c.UnreadCount("user_b"); got != 1 {
		t.Errorf("UnreadCount(b) = %d, want 1", got)
	}
}

func TestCenterReloadsFromStore(t *testing.T) {
	c, db := newTestCenter(t)

	n := c.Add("user_a", "title", "body", "fund_9")
	c.MarkAllRead("user_a")

	reloaded := NewCenter(db, zap.NewNop())
	got := reloaded.ForUser("user_a")
	if len(got) != 1 {
		t.Fatalf("reloaded len = %d, want 1", len(got))
	}
	if got[0].ID != n.ID || !got[0].Read || got[0].FundraiserID != "fund_9" {
		t.Errorf("reloaded = %+v", got[0])
	}
}

func TestCenterToleratesCorruptData(t *testing.T) {
	db, err := store.NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB() error: %v", err)
	}
	defer db.Close()

	if err := db.Save(store.KeyNotifications, "{not json"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	c := NewCenter(db, zap.NewNop())
	if got := c.ForUser("anyone"); got != nil {
		t.Errorf("ForUser on corrupt data = %v, want none", got)
	}
}
