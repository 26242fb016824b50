package activity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"trekly/internal/coach"
	"trekly/internal/profile"
	"trekly/internal/store"
)

// stubCoach implements coach.Service with canned results.
type stubCoach struct {
	insight    string
	insightErr error
	calls      int
}

func (s *stubCoach) Motivation(context.Context, coach.ActivityType, float64, float64) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubCoach) Encouragement(context.Context, coach.ActivityType, float64, float64) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubCoach) Insight(context.Context, []int) (string, error) {
	s.calls++
	return s.insight, s.insightErr
}

func (s *stubCoach) GenerateImage(context.Context, string, string) (string, error) {
	return "", errors.New("not implemented")
}

func testUser() profile.User {
	return profile.User{ID: "user_test", Name: "Alex", AvatarURL: "https://example.com/a.png"}
}

func newTestLog(t *testing.T, c coach.Service) (*Log, *store.DB) {
	t.Helper()
	db, err := store.NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewLog(db, c, zap.NewNop()), db
}

func TestAddPrependsNewestFirst(t *testing.T) {
	l, _ := newTestLog(t, &stubCoach{})

	first := New(testUser(), Cycle, 10, 3600, "img1", nil, nil)
	second := New(testUser(), Run, 5, 1800, "img2", nil, nil)

	l.Add(context.Background(), first)
	l.Add(context.Background(), second)

	all := l.All()
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
	if all[0].ID != second.ID || all[1].ID != first.ID {
		t.Errorf("order = [%s, %s], want newest first", all[0].ID, all[1].ID)
	}
}

func TestAddAttachesInsight(t *testing.T) {
	c := &stubCoach{insight: "Great aerobic session! 💚"}
	l, _ := newTestLog(t, c)

	samples := []int{120, 125, 130, 135, 140, 145}
	a := New(testUser(), Run, 5, 1800, "img", nil, samples)
	l.Add(context.Background(), a)

	got := l.All()[0]
	if got.AIInsight != c.insight {
		t.Errorf("AIInsight = %q, want %q", got.AIInsight, c.insight)
	}
	if c.calls != 1 {
		t.Errorf("insight calls = %d, want 1", c.calls)
	}
}

func TestAddSkipsInsightForShortStreams(t *testing.T) {
	c := &stubCoach{insight: "should not appear"}
	l, _ := newTestLog(t, c)

	// Five samples is at the threshold, not above it.
	a := New(testUser(), Run, 5, 1800, "img", nil, []int{120, 125, 130, 135, 140})
	l.Add(context.Background(), a)

	if c.calls != 0 {
		t.Errorf("insight calls = %d, want 0", c.calls)
	}
	if got := l.All()[0].AIInsight; got != "" {
		t.Errorf("AIInsight = %q, want empty", got)
	}
}

func TestAddSurvivesInsightFailure(t *testing.T) {
	c := &stubCoach{insightErr: errors.New("quota exceeded")}
	l, db := newTestLog(t, c)

	samples := []int{120, 125, 130, 135, 140, 145}
	a := New(testUser(), Cycle, 12, 2400, "img", nil, samples)
	l.Add(context.Background(), a)

	if l.Len() != 1 {
		t.Fatalf("Len = %d, want 1: insight failure must not block recording", l.Len())
	}
	if got := l.All()[0].AIInsight; got != "" {
		t.Errorf("AIInsight = %q, want empty on failure", got)
	}

	// And the record made it to durable storage.
	reloaded := NewLog(db, c, zap.NewNop())
	if reloaded.Len() != 1 {
		t.Errorf("reloaded Len = %d, want 1", reloaded.Len())
	}
}

func TestLogReloadsFromStore(t *testing.T) {
	l, db := newTestLog(t, &stubCoach{})

	a := New(testUser(), Cycle, 21.5, 5400, "img", nil, nil)
	l.Add(context.Background(), a)

	reloaded := NewLog(db, &stubCoach{}, zap.NewNop())
	all := reloaded.All()
	if len(all) != 1 {
		t.Fatalf("reloaded len = %d, want 1", len(all))
	}
	if all[0].ID != a.ID || all[0].DistanceKm != 21.5 {
		t.Errorf("reloaded record = %+v", all[0])
	}
}

func TestLogToleratesCorruptData(t *testing.T) {
	db, err := store.NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB() error: %v", err)
	}
	defer db.Close()

	if err := db.Save(store.KeyActivities, "{not json"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	l := NewLog(db, &stubCoach{}, zap.NewNop())
	if l.Len() != 0 {
		t.Errorf("Len = %d, want 0 for corrupt data", l.Len())
	}
}

func TestLogConcurrentAddAndRead(t *testing.T) {
	l, _ := newTestLog(t, &stubCoach{})

	// Add runs on a background goroutine while the home screen reads;
	// both must be safe to interleave.
	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			l.Add(context.Background(), New(testUser(), Run, 5, 1800, "img", nil, []int{130, 140}))
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.All()
				l.Len()
				l.LatestWithHeartRate()
			}
		}()
	}
	wg.Wait()

	if l.Len() != writers {
		t.Errorf("Len = %d, want %d", l.Len(), writers)
	}
}

func TestLatestWithHeartRate(t *testing.T) {
	l, _ := newTestLog(t, &stubCoach{})

	if l.LatestWithHeartRate() != nil {
		t.Error("empty log should have no HR activity")
	}

	noHR := New(testUser(), Cycle, 10, 3600, "img", nil, nil)
	withHR := New(testUser(), Run, 5, 1800, "img", nil, []int{130, 140})
	newest := New(testUser(), Run, 3, 900, "img", nil, nil)

	l.Add(context.Background(), noHR)
	l.Add(context.Background(), withHR)
	l.Add(context.Background(), newest)

	got := l.LatestWithHeartRate()
	if got == nil || got.ID != withHR.ID {
		t.Errorf("LatestWithHeartRate() = %+v, want %s", got, withHR.ID)
	}
}
