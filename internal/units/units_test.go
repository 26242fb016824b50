package units

import (
	"math"
	"testing"
)

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		name      string
		km        float64
		system    System
		withUnit  bool
		precision int
		expected  string
	}{
		{"metric with unit", 10, Metric, true, 1, "10.0 km"},
		{"metric without unit", 10, Metric, false, 1, "10.0"},
		{"metric two decimals", 7.256, Metric, true, 2, "7.26 km"},
		{"imperial with unit", 10, Imperial, true, 1, "6.2 mi"},
		{"imperial without unit", 10, Imperial, false, 2, "6.21"},
		{"zero", 0, Metric, true, 1, "0.0 km"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDistance(tt.km, tt.system, tt.withUnit, tt.precision)
			if got != tt.expected {
				t.Errorf("FormatDistance() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDisplayConversionRoundTrip(t *testing.T) {
	for _, s := range []System{Metric, Imperial} {
		for _, km := range []float64{0, 1, 5, 10.5, 42.195} {
			back := FromDisplay(ToDisplay(km, s), s)
			if math.Abs(back-km) > 1e-9 {
				t.Errorf("round trip %v via %v = %v", km, s, back)
			}
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{61, "00:01:01"},
		{3600, "01:00:00"},
		{3725, "01:02:05"},
		{36061, "10:01:01"},
	}

	for _, tt := range tests {
		if got := FormatClock(tt.seconds); got != tt.expected {
			t.Errorf("FormatClock(%d) = %q, want %q", tt.seconds, got, tt.expected)
		}
	}
}

func TestFormatDurationShort(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{45, "45s"},
		{60, "1m"},
		{720, "12m"},
		{5100, "1h 25m"},
		{3600, "1h 0m"},
	}

	for _, tt := range tests {
		if got := FormatDurationShort(tt.seconds); got != tt.expected {
			t.Errorf("FormatDurationShort(%d) = %q, want %q", tt.seconds, got, tt.expected)
		}
	}
}

func TestChartMinutes(t *testing.T) {
	tests := []struct {
		seconds  int
		expected int
	}{
		{0, 0},
		{29, 0},
		{30, 1},
		{90, 2},
		{3600, 60},
	}

	for _, tt := range tests {
		if got := ChartMinutes(tt.seconds); got != tt.expected {
			t.Errorf("ChartMinutes(%d) = %d, want %d", tt.seconds, got, tt.expected)
		}
	}
}
