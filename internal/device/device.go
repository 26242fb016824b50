// Package device models the heart-rate strap collaborator: a source
// that connects to a monitor delivering integer bpm samples over a
// channel at device-determined intervals.
package device

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Source connects to a heart rate device.
type Source interface {
	// Connect resolves to a live monitor or fails with a connection
	// error. Connection failures are user-visible status, never fatal
	// to the app.
	Connect(ctx context.Context) (*Monitor, error)
}

// Monitor is a connected heart rate device. Samples arrive on the
// channel until Close, which is idempotent.
type Monitor struct {
	name    string
	samples chan int
	stop    chan struct{}
	once    sync.Once
}

// NewMonitor wraps a sample channel. The feed function runs on its
// own goroutine and must return when the stop channel closes.
func NewMonitor(name string, feed func(samples chan<- int, stop <-chan struct{})) *Monitor {
	m := &Monitor{
		name:    name,
		samples: make(chan int, 8),
		stop:    make(chan struct{}),
	}
	go func() {
		defer close(m.samples)
		feed(m.samples, m.stop)
	}()
	return m
}

// Name reports the device name shown in settings.
func (m *Monitor) Name() string {
	return m.name
}

// Samples is the bpm stream. It closes after Close.
func (m *Monitor) Samples() <-chan int {
	return m.samples
}

// Close disconnects the device. Safe to call more than once.
func (m *Monitor) Close() {
	m.once.Do(func() { close(m.stop) })
}

// Simulator is a fake strap producing a plausible bpm random walk.
// The default interval is one second, matching the zone analysis
// sampling assumption.
type Simulator struct {
	DeviceName string
	Interval   time.Duration
	RestingBPM int
}

// Connect starts the simulated stream immediately; it never fails.
func (s *Simulator) Connect(ctx context.Context) (*Monitor, error) {
	name := s.DeviceName
	if name == "" {
		name = "Trekly Pulse Sim"
	}
	interval := s.Interval
	if interval <= 0 {
		interval = time.Second
	}
	bpm := s.RestingBPM
	if bpm <= 0 {
		bpm = 95
	}

	return NewMonitor(name, func(samples chan<- int, stop <-chan struct{}) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				bpm += rand.Intn(9) - 4
				if bpm < 60 {
					bpm = 60
				}
				if bpm > 190 {
					bpm = 190
				}
				select {
				case samples <- bpm:
				default:
					// Receiver is behind; drop the sample.
				}
			}
		}
	}), nil
}

// ParseMeasurement decodes a Bluetooth Heart Rate Measurement value.
// Flag bit 0 selects between an 8-bit and a 16-bit little-endian
// rate. Malformed payloads decode to 0.
func ParseMeasurement(data []byte) int {
	if len(data) < 2 {
		return 0
	}
	if data[0]&0x1 != 0 {
		if len(data) < 3 {
			return 0
		}
		return int(data[1]) | int(data[2])<<8
	}
	return int(data[1])
}
