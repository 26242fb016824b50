// Package coach talks to the AI coach: short motivational text, post-
// workout insights, and generated activity images. Every call can
// fail; callers degrade to the deterministic fallbacks below and never
// treat a coach failure as fatal.
package coach

import (
	"context"
	"fmt"

	"trekly/internal/units"
)

// ActivityType names the kind of activity being coached.
type ActivityType string

const (
	Cycle ActivityType = "Cycle"
	Run   ActivityType = "Run"
)

// Service is the coach collaborator contract. Motivation and
// Encouragement implementations should return an error rather than
// inventing text; callers substitute the local fallbacks.
type Service interface {
	// Motivation returns a short mid-activity cheer after a milestone.
	Motivation(ctx context.Context, activityType ActivityType, goalKm, coveredKm float64) (string, error)

	// Encouragement returns a message nudging the user to finish the
	// remaining distance when they try to stop early.
	Encouragement(ctx context.Context, activityType ActivityType, goalKm, coveredKm float64) (string, error)

	// Insight returns a post-workout observation derived from heart
	// rate samples.
	Insight(ctx context.Context, samples []int) (string, error)

	// GenerateImage returns an image reference (data URL) for the
	// given prompt and aspect ratio such as "3:4" or "16:9".
	GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error)
}

// FallbackMotivation is the local milestone message used when the
// coach is unreachable.
func FallbackMotivation() string {
	return "Keep pushing, you're doing great! 💪"
}

// FallbackEncouragement is the local finish-early message. It always
// names the remaining distance to one decimal.
func FallbackEncouragement(goalKm, coveredKm float64, system units.System) string {
	remaining := units.FormatDistance(goalKm-coveredKm, system, false, 1)
	return fmt.Sprintf("You're so close! Just %s %s to go. You've got this! Are you sure you want to stop now?",
		remaining, system.Label())
}

// ActivityImagePrompt builds the scene description for a finished (or
// starting) activity image.
func ActivityImagePrompt(activityType ActivityType, coveredKm float64) string {
	if coveredKm > 0 {
		return fmt.Sprintf("A scenic, photorealistic image of a %s route at Lakeview City Park, celebrating the completion of a %.1fkm activity. Show a beautiful landscape with a path or road, vibrant colors, sunny day.",
			lower(activityType), coveredKm)
	}
	return fmt.Sprintf("A scenic, photorealistic image of a %s route at Lakeview City Park. Show a beautiful landscape with a path or road, vibrant colors, sunny day.",
		lower(activityType))
}

// CampaignImagePrompt builds the scene description for a fundraising
// campaign banner.
func CampaignImagePrompt(theme string) string {
	return fmt.Sprintf("A high-quality, vibrant, and inspiring photograph for a fundraising campaign. The theme is: %q. Photorealistic style.", theme)
}

func lower(t ActivityType) string {
	if t == Cycle {
		return "cycle"
	}
	return "run"
}
