// Package schedule generates randomized posting timestamps.
//
// The jitter is intentionally non-deterministic: predictable posting
// times are a bot-detection signal, so unlike the review scorer this
// package must NOT produce repeatable output in production. Tests can
// inject a seeded random source.
package schedule

import (
	"math/rand"
	"strings"
	"time"

	"github.com/lumiere-video/lumiere/internal/domain/model"
)

// Frequency values recognized by the planner. Anything else falls back
// to the weekly cadence.
const (
	FrequencyDaily      = "daily"
	FrequencyThriceWeek = "3x_week"
	FrequencyWeekly     = "weekly"
)

// Jitter and hour-selection constants.
const (
	maxJitterMinutes   = 45
	minForcedJitter    = 30 // forced magnitude floor on adjacent-hour collision
	hourChoiceWindow   = 4  // pick among at most this many top hours
	minutesSecondsBase = 60
)

// defaultPlatformHours maps platforms to their optimal posting hours,
// best first. Unknown platforms use the fallback table.
var defaultPlatformHours = map[string][]int{
	"TIKTOK":    {19, 21, 12, 15, 9},
	"INSTAGRAM": {11, 13, 17, 19, 21},
	"YOUTUBE":   {15, 17, 20, 12, 18},
	"FACEBOOK":  {9, 13, 15, 19, 20},
	"X":         {8, 12, 17, 21, 22},
}

var fallbackHours = []int{10, 14, 18, 20}

// Request describes one schedule generation call.
type Request struct {
	Platform  string
	Frequency string
	StartDate time.Time
	Count     int
	// LastPostHour is the hour of the caller's most recent post, used
	// to force separation on the first slot. Negative means unknown.
	LastPostHour int
}

// Option applies a configuration option to the Planner.
type Option func(*Planner)

// WithRand injects a random source, e.g. a seeded one for tests.
func WithRand(rng *rand.Rand) Option {
	return func(p *Planner) {
		if rng != nil {
			p.rng = rng
		}
	}
}

// WithPlatformHours replaces the optimal-hour tables.
func WithPlatformHours(hours map[string][]int) Option {
	return func(p *Planner) {
		if len(hours) == 0 {
			return
		}
		p.hours = make(map[string][]int, len(hours))
		for platform, hs := range hours {
			if len(hs) > 0 {
				p.hours[strings.ToUpper(platform)] = hs
			}
		}
	}
}

// Planner generates posting schedules with anti-pattern jitter.
type Planner struct {
	rng   *rand.Rand
	hours map[string][]int
}

// NewPlanner creates a planner with configuration options.
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // timing jitter, not security material
		hours: defaultPlatformHours,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Generate produces req.Count posting slots starting at req.StartDate.
// Each slot lands on one of the platform's top optimal hours with a
// randomized minute offset; consecutive slots within one hour of each
// other get a forced minimum jitter so posts never cluster.
func (p *Planner) Generate(req Request) []model.ScheduleSlot {
	if req.Count <= 0 {
		return nil
	}

	hours, ok := p.hours[strings.ToUpper(req.Platform)]
	if !ok {
		hours = fallbackHours
	}
	window := hourChoiceWindow
	if len(hours) < window {
		window = len(hours)
	}

	slots := make([]model.ScheduleSlot, 0, req.Count)
	day := req.StartDate
	prevHour := req.LastPostHour

	for i := 0; i < req.Count; i++ {
		hour := hours[p.rng.Intn(window)]

		jitter := p.rng.Intn(2*maxJitterMinutes+1) - maxJitterMinutes
		if prevHour >= 0 && abs(hour-prevHour) <= 1 {
			// Keep the sign of the first draw, force the magnitude.
			magnitude := minForcedJitter + p.rng.Intn(maxJitterMinutes-minForcedJitter+1)
			if jitter < 0 {
				jitter = -magnitude
			} else {
				jitter = magnitude
			}
		}

		at := time.Date(day.Year(), day.Month(), day.Day(), hour,
			p.rng.Intn(minutesSecondsBase), p.rng.Intn(minutesSecondsBase), 0, day.Location())
		at = at.Add(time.Duration(jitter) * time.Minute)

		slots = append(slots, model.ScheduleSlot{
			At:            at,
			Hour:          hour,
			JitterMinutes: jitter,
		})

		prevHour = hour
		day = day.AddDate(0, 0, p.stepDays(req.Frequency))
	}

	return slots
}

// stepDays returns the day advancement for the given cadence. Every
// cadence except daily is wobbled by one day in either direction.
func (p *Planner) stepDays(frequency string) int {
	switch frequency {
	case FrequencyDaily:
		return 1
	case FrequencyThriceWeek:
		return 2 + p.rng.Intn(3) - 1
	default:
		return 7 + p.rng.Intn(3) - 1
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
