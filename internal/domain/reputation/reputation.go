// Package reputation aggregates per-user metrics into a single trust score.
package reputation

import "math"

// Weight of each metric in the final score. The weights must sum to
// exactly 1.00 so that all-maxed inputs produce a score of 100.
const (
	weightDeadlines   = 0.20
	weightAcceptance  = 0.20
	weightQuality     = 0.20
	weightCollab      = 0.15
	weightEngagement  = 0.10
	weightSeniority   = 0.10
	weightTaskVolume  = 0.05
	seniorityCapDays  = 365
	taskVolumeCapSize = 50
	maxRate           = 100
)

// Metrics is a snapshot of a user's raw reputation inputs. Rate fields
// are percentages in [0,100]; out-of-range values are clamped before
// weighting.
type Metrics struct {
	DeadlineRate   float64 `json:"deadline_rate"`
	AcceptanceRate float64 `json:"acceptance_rate"`
	QualityScore   float64 `json:"quality_score"`
	CollabRate     float64 `json:"collab_rate"`
	EngagementRate float64 `json:"engagement_rate"`
	AccountAgeDays int     `json:"account_age_days"`
	TasksCompleted int     `json:"tasks_completed"`
}

// Badge is a named reputation tier.
type Badge string

const (
	BadgeBronze   Badge = "bronze"
	BadgeSilver   Badge = "silver"
	BadgeGold     Badge = "gold"
	BadgePlatinum Badge = "platinum"
)

// badgeTiers is ordered highest threshold first; lookup returns the
// first tier whose minimum the score reaches.
var badgeTiers = []struct {
	minScore float64
	badge    Badge
}{
	{85, BadgePlatinum},
	{65, BadgeGold},
	{40, BadgeSilver},
	{0, BadgeBronze},
}

// Score combines the seven weighted metrics into a [0,100] score,
// rounded half-up to one decimal place.
func Score(m Metrics) float64 {
	seniority := math.Min(maxRate, float64(m.AccountAgeDays)/seniorityCapDays*maxRate)
	volume := math.Min(maxRate, float64(m.TasksCompleted)/taskVolumeCapSize*maxRate)

	sum := clampRate(m.DeadlineRate)*weightDeadlines +
		clampRate(m.AcceptanceRate)*weightAcceptance +
		clampRate(m.QualityScore)*weightQuality +
		clampRate(m.CollabRate)*weightCollab +
		clampRate(m.EngagementRate)*weightEngagement +
		seniority*weightSeniority +
		volume*weightTaskVolume

	return math.Floor(sum*10+0.5) / 10
}

// BadgeFor maps a reputation score to its badge tier. It is a pure
// function of the score alone.
func BadgeFor(score float64) Badge {
	for _, tier := range badgeTiers {
		if score >= tier.minScore {
			return tier.badge
		}
	}
	return BadgeBronze
}

func clampRate(v float64) float64 {
	return math.Max(0, math.Min(maxRate, v))
}
