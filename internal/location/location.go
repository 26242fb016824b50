// Package location models the position stream collaborator: a source
// that starts a watch delivering GPS fixes and non-fatal error events
// over channels.
package location

import (
	"context"
	"math"
	"sync"
	"time"

	"trekly/internal/geo"
)

// ErrorCode classifies position-stream failures.
type ErrorCode int

const (
	Unknown ErrorCode = iota
	PermissionDenied
	Unavailable
	Timeout
)

// WatchError is a non-fatal position-stream error event.
type WatchError struct {
	Code ErrorCode
}

// Message is the user-facing status text for the error.
func (e WatchError) Message() string {
	switch e.Code {
	case PermissionDenied:
		return "Location access denied. Please enable it in your settings."
	case Unavailable:
		return "Location information is unavailable."
	case Timeout:
		return "The request to get user location timed out."
	default:
		return "An unknown error occurred with GPS tracking."
	}
}

// Source starts position watches. Implementations should watch with
// high accuracy, a timeout around ten seconds, and no cached fixes.
type Source interface {
	Watch(ctx context.Context) (*Watch, error)
}

// Watch is a running position subscription. Fixes and errors arrive
// on their channels until Stop, which is idempotent.
type Watch struct {
	fixes  chan geo.Coords
	errors chan WatchError
	stop   chan struct{}
	once   sync.Once
}

// NewWatch wraps a fix feed. The feed function runs on its own
// goroutine and must return when the stop channel closes.
func NewWatch(feed func(fixes chan<- geo.Coords, errors chan<- WatchError, stop <-chan struct{})) *Watch {
	w := &Watch{
		fixes:  make(chan geo.Coords, 8),
		errors: make(chan WatchError, 4),
		stop:   make(chan struct{}),
	}
	go func() {
		defer close(w.fixes)
		defer close(w.errors)
		feed(w.fixes, w.errors, w.stop)
	}()
	return w
}

// Fixes is the position stream, in receipt order.
func (w *Watch) Fixes() <-chan geo.Coords {
	return w.fixes
}

// Errors is the non-fatal error stream.
func (w *Watch) Errors() <-chan WatchError {
	return w.errors
}

// Stop ends the watch. Safe to call more than once.
func (w *Watch) Stop() {
	w.once.Do(func() { close(w.stop) })
}

// Playback replays a looped route, standing in for a live GPS
// provider. With no explicit route it traces a circle around Center.
type Playback struct {
	Center   geo.Coords
	Route    []geo.Coords
	Interval time.Duration
}

// Watch emits the route's fixes cyclically at the playback cadence.
// It never fails to start.
func (p *Playback) Watch(ctx context.Context) (*Watch, error) {
	route := p.Route
	if len(route) == 0 {
		route = circleRoute(p.Center)
	}
	interval := p.Interval
	if interval <= 0 {
		interval = time.Second
	}

	return NewWatch(func(fixes chan<- geo.Coords, _ chan<- WatchError, stop <-chan struct{}) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case fixes <- route[i%len(route)]:
				default:
				}
				i++
			}
		}
	}), nil
}

// circleRoute traces a small loop around center, a few meters of
// movement per fix.
func circleRoute(center geo.Coords) []geo.Coords {
	const points = 60
	const radius = 0.002 // degrees
	route := make([]geo.Coords, points)
	for i := range route {
		angle := 2 * math.Pi * float64(i) / points
		route[i] = geo.Coords{
			Latitude:  center.Latitude + radius*math.Sin(angle),
			Longitude: center.Longitude + radius*math.Cos(angle),
		}
	}
	return route
}
