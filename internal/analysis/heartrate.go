// Package analysis computes heart-rate statistics for recorded
// activities.
package analysis

import "math"

// Zone is a heart-rate intensity bucket. Bounds are fixed and
// partition all non-negative bpm values.
type Zone struct {
	Name        string `json:"name"`
	Range       string `json:"range"`
	TimeSeconds int    `json:"time"`

	// maxBpm is the exclusive upper bound; the last zone is unbounded.
	maxBpm int
}

// zoneConfig holds the five fixed zones. The last bound is sentinel
// "no limit".
var zoneConfig = []Zone{
	{Name: "Zone 1: Very Light", Range: "< 114 bpm", maxBpm: 114},
	{Name: "Zone 2: Light", Range: "114-133 bpm", maxBpm: 133},
	{Name: "Zone 3: Moderate", Range: "133-152 bpm", maxBpm: 152},
	{Name: "Zone 4: Hard", Range: "152-171 bpm", maxBpm: 171},
	{Name: "Zone 5: Maximum", Range: "> 171 bpm", maxBpm: math.MaxInt},
}

// Analysis summarizes a heart-rate sample stream.
type Analysis struct {
	Avg   int    `json:"avg"`
	Max   int    `json:"max"`
	Min   int    `json:"min"`
	Zones []Zone `json:"zones"`
}

// AnalyzeHeartRate buckets a time-ordered bpm stream into the five
// fixed zones and computes aggregate statistics. Each sample counts
// as one second of zone time; sampling is assumed to be 1 Hz rather
// than derived from timestamps. Returns nil when there are fewer than
// two samples, which callers treat as "no insight yet" rather than an
// error.
func AnalyzeHeartRate(samples []int) *Analysis {
	if len(samples) < 2 {
		return nil
	}

	sum := 0
	max := samples[0]
	min := samples[0]
	for _, bpm := range samples {
		sum += bpm
		if bpm > max {
			max = bpm
		}
		if bpm < min {
			min = bpm
		}
	}

	zones := make([]Zone, len(zoneConfig))
	copy(zones, zoneConfig)

	for _, bpm := range samples {
		for i := range zones {
			if bpm < zones[i].maxBpm {
				zones[i].TimeSeconds++
				break
			}
		}
	}

	return &Analysis{
		Avg:   int(math.Round(float64(sum) / float64(len(samples)))),
		Max:   max,
		Min:   min,
		Zones: zones,
	}
}
