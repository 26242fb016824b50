// Package activity defines completed activity records and the durable
// log that owns them, plus the weekly aggregation derived from it.
package activity

import (
	"time"

	"github.com/google/uuid"

	"trekly/internal/geo"
	"trekly/internal/profile"
	"trekly/internal/units"
)

// Type is the kind of activity.
type Type string

const (
	Cycle Type = "Cycle"
	Run   Type = "Run"
)

// Route holds free-text start/end labels. They are display labels,
// not derived from the tracked path.
type Route struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Activity is a completed, immutable activity record. AIInsight is
// the only field attached after creation, and only before the record
// enters the log.
type Activity struct {
	ID            string       `json:"id"`
	User          profile.User `json:"user"`
	Type          Type         `json:"type"`
	DistanceKm    float64      `json:"distance"`
	TimeLabel     string       `json:"time"`
	Duration      int          `json:"duration"`
	ImageURL      string       `json:"imageUrl"`
	Route         Route        `json:"route"`
	Timestamp     string       `json:"timestamp"`
	TrekPath      []geo.Coords `json:"trekPath,omitempty"`
	HeartRateData []int        `json:"heartRateData,omitempty"`
	AIInsight     string       `json:"aiInsight,omitempty"`
}

// NewID returns a collision-resistant activity id.
func NewID() string {
	return "act_" + uuid.NewString()
}

// New builds a record from finished session fields. The timestamp is
// the creation instant in RFC 3339.
func New(user profile.User, typ Type, distanceKm float64, durationSeconds int, imageURL string, path []geo.Coords, heartRate []int) Activity {
	return Activity{
		ID:            NewID(),
		User:          user,
		Type:          typ,
		DistanceKm:    distanceKm,
		TimeLabel:     units.FormatDurationShort(durationSeconds),
		Duration:      durationSeconds,
		ImageURL:      imageURL,
		Route:         Route{Start: "City Park", End: "Lakeview Point"},
		Timestamp:     time.Now().Format(time.RFC3339),
		TrekPath:      path,
		HeartRateData: heartRate,
	}
}

// Time parses the record's creation timestamp. The zero time is
// returned for records with malformed timestamps.
func (a Activity) Time() time.Time {
	t, err := time.Parse(time.RFC3339, a.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}
