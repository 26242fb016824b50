package activity

import (
	"fmt"
	"math"
	"time"

	"trekly/internal/units"
)

// DayComparison is one weekday row of the week-over-week chart.
// Distances are in the display unit rounded to one decimal; durations
// are rounded whole minutes.
type DayComparison struct {
	Name             string
	CurrentDistance  float64
	PreviousDistance float64
	CurrentMinutes   int
	PreviousMinutes  int
}

// WeeklyTotals aggregates both weeks. Distances are sums of the
// per-day rounded values (matching the chart); durations are raw
// seconds.
type WeeklyTotals struct {
	CurrentDistance  float64
	PreviousDistance float64
	CurrentSeconds   int
	PreviousSeconds  int
}

// WeeklyComparison is the chart plus totals for the home report.
type WeeklyComparison struct {
	Days   [7]DayComparison
	Totals WeeklyTotals
}

// Direction indicates how a total moved week over week.
type Direction int

const (
	Same Direction = iota
	Up
	Down
)

// Change is a formatted week-over-week delta.
type Change struct {
	Value     string
	Direction Direction
}

var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// weekStart returns Monday 00:00:00 of the week containing t, in t's
// location.
func weekStart(t time.Time) time.Time {
	dow := int(t.Weekday()) // 0 = Sunday
	offset := dow - 1
	if dow == 0 {
		offset = 6
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

// dayIndex maps a timestamp to its Monday-first weekday slot.
func dayIndex(t time.Time) int {
	dow := int(t.Weekday())
	if dow == 0 {
		return 6
	}
	return dow - 1
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ComputeWeeklyComparison buckets activities into the current and
// previous ISO weeks relative to ref. The current week spans Monday
// 00:00:00 through the instant before the next Monday; the previous
// week is the seven days before that. Activities outside both windows
// are ignored. Distances are converted to the display unit before
// bucketing.
func ComputeWeeklyComparison(activities []Activity, system units.System, ref time.Time) WeeklyComparison {
	start := weekStart(ref)
	prevStart := start.AddDate(0, 0, -7)
	end := start.AddDate(0, 0, 7)

	type rawDay struct {
		currentDistance  float64
		previousDistance float64
		currentSeconds   int
		previousSeconds  int
	}
	var raw [7]rawDay

	for _, a := range activities {
		at := a.Time()
		if at.IsZero() {
			continue
		}
		idx := dayIndex(at)
		distance := units.ToDisplay(a.DistanceKm, system)

		switch {
		case !at.Before(start) && at.Before(end):
			raw[idx].currentDistance += distance
			raw[idx].currentSeconds += a.Duration
		case !at.Before(prevStart) && at.Before(start):
			raw[idx].previousDistance += distance
			raw[idx].previousSeconds += a.Duration
		}
	}

	var wc WeeklyComparison
	for i := range raw {
		wc.Days[i] = DayComparison{
			Name:             dayNames[i],
			CurrentDistance:  round1(raw[i].currentDistance),
			PreviousDistance: round1(raw[i].previousDistance),
			CurrentMinutes:   units.ChartMinutes(raw[i].currentSeconds),
			PreviousMinutes:  units.ChartMinutes(raw[i].previousSeconds),
		}
		wc.Totals.CurrentDistance += wc.Days[i].CurrentDistance
		wc.Totals.PreviousDistance += wc.Days[i].PreviousDistance
		wc.Totals.CurrentSeconds += raw[i].currentSeconds
		wc.Totals.PreviousSeconds += raw[i].previousSeconds
	}
	return wc
}

// ComputeChange formats the week-over-week delta between two totals.
// A previous total of zero has no meaningful percentage: the change
// reads "New Data!" when something happened this week and "--"
// otherwise.
func ComputeChange(current, previous float64) Change {
	if previous == 0 {
		if current > 0 {
			return Change{Value: "New Data!", Direction: Up}
		}
		return Change{Value: "--", Direction: Same}
	}
	if current == previous {
		return Change{Value: "0%", Direction: Same}
	}

	pct := (current - previous) / previous * 100
	if pct > 0 {
		return Change{Value: fmt.Sprintf("+%.0f%%", pct), Direction: Up}
	}
	return Change{Value: fmt.Sprintf("%.0f%%", pct), Direction: Down}
}
