// Package session implements the lifecycle of a single tracked
// activity: setup, live tracking, and summary. The Tracker consumes
// position fixes and heart-rate samples, accumulates distance and
// elapsed time, fires milestone encouragements, and finalizes an
// immutable activity record on finish.
package session

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trekly/internal/activity"
	"trekly/internal/coach"
	"trekly/internal/geo"
	"trekly/internal/profile"
	"trekly/internal/units"
)

// State is the tracker's lifecycle phase.
type State int

const (
	Setup State = iota
	Tracking
	Summary
)

const (
	defaultGoalKm = 10

	// milestoneDisplayTime is how long a milestone message stays
	// visible before it clears itself.
	milestoneDisplayTime = 7 * time.Second
)

var milestoneThresholds = [3]int{25, 50, 75}

// Snapshot is a point-in-time copy of the tracker for rendering.
// Slices are copies; mutating them has no effect on the session.
type Snapshot struct {
	State           State
	Type            activity.Type
	GoalKm          float64
	ElapsedSeconds  int
	DistanceKm      float64
	Path            []geo.Coords
	HeartRate       []int
	MilestonesHit   []int
	Motivation      string
	GPSStatus       string
	FinishPrompt    bool
	FinishMessage   string
	GeneratingImage bool
	Completed       *activity.Activity
}

// Tracker drives one activity session. All methods are safe for
// concurrent use; async coach results are tagged with the session
// epoch at issue and discarded if the session was reset or finished
// before they land.
type Tracker struct {
	coach  coach.Service
	logger *zap.Logger

	mu            sync.Mutex
	state         State
	epoch         uint64
	system        units.System
	activityType  activity.Type
	goalKm        float64
	elapsed       int
	distanceKm    float64
	path          []geo.Coords
	heartRate     []int
	milestonesHit map[int]bool
	motivation    string
	motivationSeq int
	motivationTTL time.Duration
	gpsStatus     string
	finishPrompt  bool
	finishMessage string
	preparedImage string
	generating    bool
	completed     *activity.Activity
}

// NewTracker returns a tracker in setup with default goal and type.
func NewTracker(coachSvc coach.Service, logger *zap.Logger) *Tracker {
	return &Tracker{
		coach:         coachSvc,
		logger:        logger,
		system:        units.Metric,
		activityType:  activity.Cycle,
		goalKm:        defaultGoalKm,
		milestonesHit: make(map[int]bool),
		motivationTTL: milestoneDisplayTime,
	}
}

// Snapshot returns a copy of the current session for display.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		State:           t.state,
		Type:            t.activityType,
		GoalKm:          t.goalKm,
		ElapsedSeconds:  t.elapsed,
		DistanceKm:      t.distanceKm,
		Path:            append([]geo.Coords(nil), t.path...),
		HeartRate:       append([]int(nil), t.heartRate...),
		Motivation:      t.motivation,
		GPSStatus:       t.gpsStatus,
		FinishPrompt:    t.finishPrompt,
		FinishMessage:   t.finishMessage,
		GeneratingImage: t.generating,
		Completed:       t.completed,
	}
	for _, m := range milestoneThresholds {
		if t.milestonesHit[m] {
			s.MilestonesHit = append(s.MilestonesHit, m)
		}
	}
	return s
}

// SetUnitSystem sets the display unit used in locally generated
// messages. Distances are tracked in kilometers regardless.
func (t *Tracker) SetUnitSystem(system units.System) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.system = system
}

// SetType selects the activity kind. Legal only during setup.
func (t *Tracker) SetType(typ activity.Type) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Setup {
		t.activityType = typ
	}
}

// SetGoal sets the goal distance in kilometers. Non-positive values
// and calls outside setup are ignored.
func (t *Tracker) SetGoal(km float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Setup && km > 0 {
		t.goalKm = km
	}
}

// Start transitions setup to tracking and kicks off a background
// image preparation so the summary image is usually ready by the time
// the user finishes. Preparation failure is swallowed.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	if t.state != Setup {
		t.mu.Unlock()
		return
	}
	t.state = Tracking
	epoch := t.epoch
	typ := t.activityType
	t.mu.Unlock()

	go func() {
		url, err := t.coach.GenerateImage(ctx, coach.ActivityImagePrompt(coach.ActivityType(typ), 0), "3:4")
		if err != nil {
			t.logger.Warn("preparing activity image", zap.Error(err))
			return
		}
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.epoch == epoch && t.state == Tracking {
			t.preparedImage = url
		}
	}()
}

// Tick advances elapsed time by one second. The clock is frozen
// outside tracking.
func (t *Tracker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Tracking {
		t.elapsed++
	}
}

// RecordFix folds a GPS fix into the session: the great-circle
// distance from the previous fix is added to the covered distance
// (strictly additive, no smoothing) and the fix is appended to the
// path. A successful fix clears any GPS status message.
func (t *Tracker) RecordFix(ctx context.Context, fix geo.Coords) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Tracking {
		return
	}

	t.gpsStatus = ""
	if len(t.path) > 0 {
		t.distanceKm += geo.HaversineDistance(t.path[len(t.path)-1], fix)
	}
	t.path = append(t.path, fix)
	t.checkMilestonesLocked(ctx)
}

// RecordPositionError surfaces a position-stream failure as status
// text. Tracking continues; the error is never terminal.
func (t *Tracker) RecordPositionError(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Tracking {
		t.gpsStatus = message
	}
}

// RecordHeartRate appends a bpm sample in receipt order.
func (t *Tracker) RecordHeartRate(bpm int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Tracking {
		t.heartRate = append(t.heartRate, bpm)
	}
}

// checkMilestonesLocked fires each of the 25/50/75% thresholds at
// most once per session. Crossing one requests a motivational message
// asynchronously; the coach failing just means the local fallback
// shows instead.
func (t *Tracker) checkMilestonesLocked(ctx context.Context) {
	if t.goalKm <= 0 {
		return
	}
	progress := t.distanceKm / t.goalKm * 100
	for _, m := range milestoneThresholds {
		if progress >= float64(m) && !t.milestonesHit[m] {
			t.milestonesHit[m] = true
			go t.fetchMotivation(ctx, t.epoch)
		}
	}
}

func (t *Tracker) fetchMotivation(ctx context.Context, epoch uint64) {
	t.mu.Lock()
	typ := t.activityType
	goal := t.goalKm
	covered := t.distanceKm
	t.mu.Unlock()

	message, err := t.coach.Motivation(ctx, coach.ActivityType(typ), goal, covered)
	if err != nil {
		t.logger.Warn("coach motivation unavailable", zap.Error(err))
		message = coach.FallbackMotivation()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.epoch != epoch {
		return
	}
	t.motivation = message
	t.motivationSeq++
	seq := t.motivationSeq
	time.AfterFunc(t.motivationTTL, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.epoch == epoch && t.motivationSeq == seq {
			t.motivation = ""
		}
	})
}

// RequestFinish handles the finish action. At or above goal it
// reports that the finish may proceed immediately. Below goal it
// raises a confirmation prompt carrying a locally computed message
// naming the remaining distance, then asks the coach for a better one
// in the background; the coach message replaces the default only if
// it arrives while the prompt is still open.
func (t *Tracker) RequestFinish(ctx context.Context) (confirmationNeeded bool) {
	t.mu.Lock()
	if t.state != Tracking {
		t.mu.Unlock()
		return false
	}
	if t.distanceKm >= t.goalKm {
		t.mu.Unlock()
		return false
	}

	t.finishPrompt = true
	t.finishMessage = coach.FallbackEncouragement(t.goalKm, t.distanceKm, t.system)
	epoch := t.epoch
	typ := t.activityType
	goal := t.goalKm
	covered := t.distanceKm
	t.mu.Unlock()

	go func() {
		message, err := t.coach.Encouragement(ctx, coach.ActivityType(typ), goal, covered)
		if err != nil {
			t.logger.Warn("coach encouragement unavailable", zap.Error(err))
			return
		}
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.epoch == epoch && t.finishPrompt {
			t.finishMessage = message
		}
	}()
	return true
}

// CancelFinish dismisses the confirmation prompt and resumes
// tracking.
func (t *Tracker) CancelFinish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finishPrompt = false
	t.finishMessage = ""
}

// ConfirmFinish ends the session and builds the activity record. The
// state moves to summary before any slow work. The prepared image is
// used when available; otherwise a fresh one is requested, and if
// that fails too a deterministic placeholder stands in. Image
// trouble never prevents the record from being created.
func (t *Tracker) ConfirmFinish(ctx context.Context, user profile.User) activity.Activity {
	t.mu.Lock()
	t.finishPrompt = false
	t.finishMessage = ""
	t.state = Summary
	epoch := t.epoch
	typ := t.activityType
	covered := t.distanceKm
	elapsed := t.elapsed
	path := append([]geo.Coords(nil), t.path...)
	heartRate := append([]int(nil), t.heartRate...)
	imageURL := t.preparedImage
	if imageURL == "" {
		t.generating = true
	}
	t.mu.Unlock()

	if imageURL == "" {
		url, err := t.coach.GenerateImage(ctx, coach.ActivityImagePrompt(coach.ActivityType(typ), covered), "3:4")
		if err != nil {
			t.logger.Warn("generating activity image, using placeholder", zap.Error(err))
		} else {
			imageURL = url
		}
	}
	if imageURL == "" {
		imageURL = placeholderImageURL()
	}

	a := activity.New(user, typ, covered, elapsed, imageURL, path, heartRate)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.epoch == epoch {
		t.generating = false
		t.completed = &a
	}
	return a
}

// Reset discards the session and returns to setup defaults. The
// epoch bump orphans any in-flight async work.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.epoch++
	t.state = Setup
	t.activityType = activity.Cycle
	t.goalKm = defaultGoalKm
	t.elapsed = 0
	t.distanceKm = 0
	t.path = nil
	t.heartRate = nil
	t.milestonesHit = make(map[int]bool)
	t.motivation = ""
	t.gpsStatus = ""
	t.finishPrompt = false
	t.finishMessage = ""
	t.preparedImage = ""
	t.generating = false
	t.completed = nil
}

// Progress reports goal completion in percent, capped at 100 for
// display.
func (s Snapshot) Progress() float64 {
	if s.GoalKm <= 0 {
		return 0
	}
	return math.Min(s.DistanceKm/s.GoalKm*100, 100)
}

func placeholderImageURL() string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/400/600", uuid.NewString())
}
