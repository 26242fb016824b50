package activity

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"trekly/internal/coach"
	"trekly/internal/store"
)

// insightSampleThreshold is the minimum number of heart-rate samples
// before an activity is worth asking the coach about.
const insightSampleThreshold = 5

// Log is the durable, newest-first collection of completed
// activities. It is the only writer of the activities key; every
// addition rewrites the full serialized collection. Add runs on a
// background goroutine while other screens read, so access is
// serialized by mu.
type Log struct {
	db     *store.DB
	coach  coach.Service
	logger *zap.Logger

	mu         sync.Mutex
	activities []Activity
}

// NewLog loads the stored collection. A missing key yields an empty
// log; a corrupt value is logged and treated as empty rather than
// failing startup.
func NewLog(db *store.DB, coachSvc coach.Service, logger *zap.Logger) *Log {
	l := &Log{
		db:     db,
		coach:  coachSvc,
		logger: logger,
	}

	raw, ok, err := db.Load(store.KeyActivities)
	if err != nil {
		logger.Error("loading activities", zap.Error(err))
		return l
	}
	if !ok {
		return l
	}
	if err := json.Unmarshal([]byte(raw), &l.activities); err != nil {
		logger.Error("decoding stored activities", zap.Error(err))
		l.activities = nil
	}
	return l
}

// Add enriches the record with a coach insight when enough heart-rate
// data exists, prepends it to the collection, and persists the whole
// collection. Insight and persistence failures are logged but never
// prevent the activity from being recorded.
func (l *Log) Add(ctx context.Context, a Activity) {
	// The insight fetch can take many seconds; keep it outside the
	// lock so readers stay responsive.
	if len(a.HeartRateData) > insightSampleThreshold {
		insight, err := l.coach.Insight(ctx, a.HeartRateData)
		if err != nil {
			l.logger.Warn("coach insight unavailable", zap.String("activity", a.ID), zap.Error(err))
		} else {
			a.AIInsight = insight
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.activities = append([]Activity{a}, l.activities...)
	l.persist()
}

// All returns the activities newest-first. The returned slice is a
// copy; records themselves are treated as immutable.
func (l *Log) All() []Activity {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Activity, len(l.activities))
	copy(out, l.activities)
	return out
}

// Len reports the number of recorded activities.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.activities)
}

// LatestWithHeartRate returns the most recent activity carrying heart
// rate samples, or nil.
func (l *Log) LatestWithHeartRate() *Activity {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.activities {
		if len(l.activities[i].HeartRateData) > 0 {
			a := l.activities[i]
			return &a
		}
	}
	return nil
}

func (l *Log) persist() {
	data, err := json.Marshal(l.activities)
	if err != nil {
		l.logger.Error("encoding activities", zap.Error(err))
		return
	}
	if err := l.db.Save(store.KeyActivities, string(data)); err != nil {
		// In-memory state stays authoritative; no retry.
		l.logger.Error("saving activities", zap.Error(err))
	}
}
