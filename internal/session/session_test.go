package session

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"trekly/internal/activity"
	"trekly/internal/coach"
	"trekly/internal/geo"
	"trekly/internal/profile"
)

// stubCoach implements coach.Service with canned responses. An
// optional gate channel makes GenerateImage block until released so
// tests can race it against state transitions.
type stubCoach struct {
	mu               sync.Mutex
	motivation       string
	motivationErr    error
	motivationCalls  int
	encouragement    string
	encouragementErr error
	imageURL         string
	imageErr         error
	imageGate        chan struct{}
}

func (s *stubCoach) Motivation(context.Context, coach.ActivityType, float64, float64) (string, error) {
	s.mu.Lock()
	s.motivationCalls++
	s.mu.Unlock()
	return s.motivation, s.motivationErr
}

func (s *stubCoach) Encouragement(context.Context, coach.ActivityType, float64, float64) (string, error) {
	return s.encouragement, s.encouragementErr
}

func (s *stubCoach) Insight(context.Context, []int) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubCoach) GenerateImage(context.Context, string, string) (string, error) {
	if s.imageGate != nil {
		<-s.imageGate
	}
	return s.imageURL, s.imageErr
}

func (s *stubCoach) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.motivationCalls
}

func testUser() profile.User {
	return profile.User{ID: "user_test", Name: "Alex"}
}

func newTracker(c coach.Service) *Tracker {
	return NewTracker(c, zap.NewNop())
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// route is a short straight-ish line; spacing is a few hundred
// meters per fix.
var route = []geo.Coords{
	{Latitude: 51.5000, Longitude: -0.1200},
	{Latitude: 51.5030, Longitude: -0.1200},
	{Latitude: 51.5060, Longitude: -0.1195},
	{Latitude: 51.5090, Longitude: -0.1190},
}

func TestDistanceIsRunningHaversineSum(t *testing.T) {
	tr := newTracker(&stubCoach{imageErr: errors.New("down")})
	tr.Start(context.Background())

	var want, prev float64
	for i, fix := range route {
		tr.RecordFix(context.Background(), fix)
		if i > 0 {
			want += geo.HaversineDistance(route[i-1], fix)
		}

		got := tr.Snapshot().DistanceKm
		if got < prev {
			t.Fatalf("distance decreased: %v after %v", got, prev)
		}
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("after fix %d distance = %v, want %v", i, got, want)
		}
		prev = got
	}

	if got := len(tr.Snapshot().Path); got != len(route) {
		t.Errorf("path length = %d, want %d", got, len(route))
	}
}

func TestMilestonesFireExactlyOnce(t *testing.T) {
	c := &stubCoach{motivation: "Keep going!"}
	tr := newTracker(c)
	tr.SetGoal(1)
	tr.Start(context.Background())

	// Long hops march straight through every threshold, then keep
	// arriving while progress stays above 75%.
	far := []geo.Coords{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0.003, Longitude: 0}, // ~0.33 km, past 25%
		{Latitude: 0.006, Longitude: 0}, // past 50%
		{Latitude: 0.008, Longitude: 0}, // past 75%
		{Latitude: 0.0081, Longitude: 0},
		{Latitude: 0.0082, Longitude: 0},
	}
	for _, fix := range far {
		tr.RecordFix(context.Background(), fix)
	}

	got := tr.Snapshot().MilestonesHit
	if len(got) != 3 || got[0] != 25 || got[1] != 50 || got[2] != 75 {
		t.Errorf("MilestonesHit = %v, want [25 50 75]", got)
	}

	waitFor(t, "three motivation requests", func() bool { return c.calls() == 3 })
	// More fixes above the last threshold must not re-trigger.
	tr.RecordFix(context.Background(), geo.Coords{Latitude: 0.0083, Longitude: 0})
	time.Sleep(20 * time.Millisecond)
	if c.calls() != 3 {
		t.Errorf("motivation calls = %d after extra fixes, want 3", c.calls())
	}
}

func TestMilestoneMessageExpires(t *testing.T) {
	c := &stubCoach{motivationErr: errors.New("down")}
	tr := newTracker(c)
	tr.motivationTTL = 50 * time.Millisecond
	tr.SetGoal(0.1)
	tr.Start(context.Background())

	tr.RecordFix(context.Background(), geo.Coords{Latitude: 0, Longitude: 0})
	tr.RecordFix(context.Background(), geo.Coords{Latitude: 0.001, Longitude: 0})

	waitFor(t, "fallback motivation to show", func() bool {
		return tr.Snapshot().Motivation == coach.FallbackMotivation()
	})
	waitFor(t, "motivation to expire", func() bool {
		return tr.Snapshot().Motivation == ""
	})
}

func TestFinishBelowGoalPromptsWithRemaining(t *testing.T) {
	c := &stubCoach{encouragement: "One more push and the lake is yours!"}
	tr := newTracker(c)
	tr.SetGoal(10)
	tr.Start(context.Background())
	tr.mu.Lock()
	tr.distanceKm = 7.3
	tr.mu.Unlock()

	if !tr.RequestFinish(context.Background()) {
		t.Fatal("RequestFinish below goal should need confirmation")
	}

	s := tr.Snapshot()
	if !s.FinishPrompt {
		t.Fatal("prompt not shown")
	}
	if !strings.Contains(s.FinishMessage, "2.7") {
		t.Errorf("default message = %q, want the remaining 2.7", s.FinishMessage)
	}
	if s.State != Tracking {
		t.Errorf("state = %v, want still Tracking", s.State)
	}

	// The coach message replaces the default while the prompt is open.
	waitFor(t, "coach message to land", func() bool {
		return tr.Snapshot().FinishMessage == c.encouragement
	})
}

func TestFinishAtGoalSkipsConfirmation(t *testing.T) {
	tr := newTracker(&stubCoach{imageErr: errors.New("down")})
	tr.SetGoal(10)
	tr.Start(context.Background())
	tr.mu.Lock()
	tr.distanceKm = 10.0
	tr.mu.Unlock()

	if tr.RequestFinish(context.Background()) {
		t.Error("RequestFinish at goal should not need confirmation")
	}
	if tr.Snapshot().FinishPrompt {
		t.Error("no prompt expected at goal")
	}
}

func TestCancelFinishResumesTracking(t *testing.T) {
	tr := newTracker(&stubCoach{encouragementErr: errors.New("down")})
	tr.SetGoal(10)
	tr.Start(context.Background())
	tr.RecordFix(context.Background(), geo.Coords{Latitude: 0, Longitude: 0})

	tr.RequestFinish(context.Background())
	tr.CancelFinish()

	s := tr.Snapshot()
	if s.FinishPrompt || s.FinishMessage != "" {
		t.Errorf("prompt still present after cancel: %+v", s)
	}
	if s.State != Tracking {
		t.Errorf("state = %v, want Tracking", s.State)
	}
}

func TestConfirmFinishFallsBackToPlaceholder(t *testing.T) {
	tr := newTracker(&stubCoach{imageErr: errors.New("quota exceeded")})
	tr.SetType(activity.Run)
	tr.SetGoal(5)
	tr.Start(context.Background())
	for _, fix := range route {
		tr.RecordFix(context.Background(), fix)
	}
	for i := 0; i < 90; i++ {
		tr.Tick()
	}
	tr.RecordHeartRate(132)
	tr.RecordHeartRate(141)

	a := tr.ConfirmFinish(context.Background(), testUser())

	if !strings.HasPrefix(a.ImageURL, "https://picsum.photos/seed/") {
		t.Errorf("ImageURL = %q, want picsum placeholder", a.ImageURL)
	}
	if a.Type != activity.Run || a.Duration != 90 {
		t.Errorf("record = %+v", a)
	}
	if len(a.TrekPath) != len(route) || len(a.HeartRateData) != 2 {
		t.Errorf("path/hr = %d/%d, want %d/2", len(a.TrekPath), len(a.HeartRateData), len(route))
	}
	if got := tr.Snapshot().State; got != Summary {
		t.Errorf("state = %v, want Summary", got)
	}
}

func TestConfirmFinishUsesPreparedImage(t *testing.T) {
	c := &stubCoach{imageURL: "data:image/jpeg;base64,aGVsbG8="}
	tr := newTracker(c)
	tr.Start(context.Background())

	waitFor(t, "prepared image", func() bool {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		return tr.preparedImage != ""
	})

	a := tr.ConfirmFinish(context.Background(), testUser())
	if a.ImageURL != c.imageURL {
		t.Errorf("ImageURL = %q, want prepared %q", a.ImageURL, c.imageURL)
	}
}

func TestResetDiscardsStaleImage(t *testing.T) {
	gate := make(chan struct{})
	c := &stubCoach{imageURL: "data:image/jpeg;base64,bGF0ZQ==", imageGate: gate}
	tr := newTracker(c)
	tr.Start(context.Background())

	tr.Reset()
	close(gate)

	time.Sleep(20 * time.Millisecond)
	tr.mu.Lock()
	got := tr.preparedImage
	tr.mu.Unlock()
	if got != "" {
		t.Errorf("stale image applied after reset: %q", got)
	}
	if s := tr.Snapshot(); s.State != Setup || s.DistanceKm != 0 || s.ElapsedSeconds != 0 {
		t.Errorf("snapshot after reset = %+v", s)
	}
}

func TestSetupFieldsFrozenWhileTracking(t *testing.T) {
	tr := newTracker(&stubCoach{imageErr: errors.New("down")})
	tr.SetGoal(5)
	tr.SetType(activity.Run)
	tr.Start(context.Background())

	tr.SetGoal(1)
	tr.SetType(activity.Cycle)

	s := tr.Snapshot()
	if s.GoalKm != 5 || s.Type != activity.Run {
		t.Errorf("goal/type = %v/%v, want 5/Run", s.GoalKm, s.Type)
	}
}

func TestClockFrozenOutsideTracking(t *testing.T) {
	tr := newTracker(&stubCoach{imageErr: errors.New("down")})

	tr.Tick()
	if got := tr.Snapshot().ElapsedSeconds; got != 0 {
		t.Errorf("elapsed in setup = %d, want 0", got)
	}

	tr.Start(context.Background())
	tr.Tick()
	tr.ConfirmFinish(context.Background(), testUser())
	tr.Tick()

	if got := tr.Snapshot().ElapsedSeconds; got != 1 {
		t.Errorf("elapsed = %d, want 1", got)
	}
}

func TestPositionErrorIsNonFatal(t *testing.T) {
	tr := newTracker(&stubCoach{imageErr: errors.New("down")})
	tr.Start(context.Background())

	tr.RecordPositionError("Location information is unavailable.")
	if got := tr.Snapshot().GPSStatus; got == "" {
		t.Fatal("status not surfaced")
	}

	// A good fix clears the flag and tracking carries on.
	tr.RecordFix(context.Background(), geo.Coords{Latitude: 1, Longitude: 1})
	s := tr.Snapshot()
	if s.GPSStatus != "" {
		t.Errorf("GPSStatus = %q, want cleared", s.GPSStatus)
	}
	if s.State != Tracking || len(s.Path) != 1 {
		t.Errorf("snapshot = %+v", s)
	}
}

func TestSnapshotProgressCaps(t *testing.T) {
	s := Snapshot{GoalKm: 10, DistanceKm: 12}
	if got := s.Progress(); got != 100 {
		t.Errorf("Progress = %v, want capped 100", got)
	}
	s = Snapshot{GoalKm: 10, DistanceKm: 2.5}
	if got := s.Progress(); got != 25 {
		t.Errorf("Progress = %v, want 25", got)
	}
}
