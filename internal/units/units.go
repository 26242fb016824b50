// Package units converts and formats distances and durations
// according to the user's preferred unit system. Distances are stored
// in kilometers everywhere; conversion happens only at the display
// boundary.
package units

import (
	"fmt"
	"math"
)

// KmToMiles is the kilometer to mile conversion factor.
const KmToMiles = 0.621371

// System is the user's unit system preference.
type System string

const (
	Metric   System = "metric"
	Imperial System = "imperial"
)

// Label returns the short distance unit label for the system.
func (s System) Label() string {
	if s == Imperial {
		return "mi"
	}
	return "km"
}

// ToDisplay converts an internal kilometer value to the system's
// display unit.
func ToDisplay(km float64, s System) float64 {
	if s == Imperial {
		return km * KmToMiles
	}
	return km
}

// FromDisplay converts a display-unit value back to kilometers.
func FromDisplay(value float64, s System) float64 {
	if s == Imperial {
		return value / KmToMiles
	}
	return value
}

// FormatDistance renders a kilometer value in the system's unit.
func FormatDistance(km float64, s System, withUnit bool, precision int) string {
	formatted := fmt.Sprintf("%.*f", precision, ToDisplay(km, s))
	if !withUnit {
		return formatted
	}
	return formatted + " " + s.Label()
}

// FormatClock renders elapsed seconds as HH:MM:SS for the live timer.
func FormatClock(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	sec := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

// FormatDurationShort renders a duration the way activity summaries
// label it: "1h 25m", "12m", or "45s".
func FormatDurationShort(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", seconds)
}

// FormatDurationStats renders a duration as "Xh Ym" for aggregate
// stat tiles, keeping the hour component even when zero.
func FormatDurationStats(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	return fmt.Sprintf("%dh %dm", h, m)
}

// ChartMinutes converts seconds to rounded whole minutes for chart
// axes.
func ChartMinutes(seconds int) int {
	return int(math.Round(float64(seconds) / 60))
}
