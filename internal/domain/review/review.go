// Package review defines the contract for scoring task submissions.
package review

import (
	"context"

	"github.com/lumiere-video/lumiere/internal/domain/model"
)

// Default review configuration constants.
const (
	// DefaultThreshold is the approval cutoff used when the caller
	// supplies none (e.g. threshold lookup failed upstream).
	DefaultThreshold = 70

	baseFloor      = 50 // minimum hash-derived base score
	baseSpread     = 45 // base range width, base in [50,95]
	bonusCeiling   = 98 // cap applied after each bonus step
	penaltyFloor   = 30 // floor applied after the short-notes penalty
	longNotesLen   = 100
	detailNotesLen = 200
	minNotesLen    = 20
	hashBuckets    = 1000
)

// Option applies a configuration option to the HashScorer.
type Option func(*HashScorer)

// WithDefaultThreshold overrides the fallback approval threshold.
func WithDefaultThreshold(threshold int) Option {
	return func(s *HashScorer) {
		if threshold > 0 && threshold <= 100 {
			s.defaultThreshold = threshold
		}
	}
}

// Input carries the submission fields needed for scoring.
type Input struct {
	SubmissionID string
	Notes        string
	FileURL      string
	// Threshold is the approval cutoff in [1,100]. Zero or negative
	// falls back to the scorer's default.
	Threshold int
}

// Result contains the computed score, feedback and verdict.
type Result struct {
	SubmissionID string
	Score        int
	Feedback     string
	Verdict      model.Verdict
}

// Scorer computes a review result from a submission. The hash-based
// implementation is a stand-in for an external ML classifier; callers
// depend on this interface so a real model can be swapped in later.
type Scorer interface {
	Score(ctx context.Context, in Input) (Result, error)
}

// HashScorer implements Scorer with deterministic hash-derived scoring.
// The same submission ID always yields the same score and feedback.
type HashScorer struct {
	defaultThreshold int
}

// NewHashScorer creates a new hash-based scorer with configuration options.
func NewHashScorer(opts ...Option) *HashScorer {
	s := &HashScorer{
		defaultThreshold: DefaultThreshold,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Score computes a deterministic review result for the given input.
// It never fails; missing optional fields degrade through the score
// adjustments rather than producing an error.
func (s *HashScorer) Score(_ context.Context, in Input) (Result, error) {
	score := baseFloor + int(hashFraction(in.SubmissionID)*baseSpread)

	// Bonuses clamp immediately after each step so a later penalty
	// still applies from the capped value.
	if len(in.Notes) > longNotesLen {
		score = capAt(score+5, bonusCeiling)
	}
	if len(in.Notes) > detailNotesLen {
		score = capAt(score+3, bonusCeiling)
	}
	if in.FileURL != "" {
		score = capAt(score+8, bonusCeiling)
	}
	if len(in.Notes) < minNotesLen {
		score -= 15
		if score < penaltyFloor {
			score = penaltyFloor
		}
	}

	threshold := in.Threshold
	if threshold <= 0 {
		threshold = s.defaultThreshold
	}

	verdict := model.VerdictFlagged
	if score >= threshold {
		verdict = model.VerdictApproved
	}

	return Result{
		SubmissionID: in.SubmissionID,
		Score:        score,
		Feedback:     feedbackFor(in.SubmissionID, score),
		Verdict:      verdict,
	}, nil
}

// hashFraction maps a string to [0,1) with a 31-polynomial rolling hash
// wrapped to 32-bit signed, matching the historical scoring behavior.
func hashFraction(s string) float64 {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	m := h % hashBuckets
	if m < 0 {
		m = -m
	}
	return float64(m) / float64(hashBuckets)
}

func capAt(v, limit int) int {
	if v > limit {
		return limit
	}
	return v
}

// Feedback tiers, highest first. Template choice is derived from the
// submission ID so repeated scoring returns identical feedback.
var feedbackTiers = []struct {
	minScore  int
	templates []string
}{
	{85, []string{
		"Excellent work. The submission exceeds the task requirements.",
		"Outstanding quality throughout; approved with high confidence.",
		"Exceptional attention to detail. This sets the bar for the task.",
	}},
	{70, []string{
		"Good submission that meets the task requirements.",
		"Solid work overall with only minor rough edges.",
		"Meets expectations; a dependable contribution.",
	}},
	{55, []string{
		"Average submission. Core requirements are covered but depth is lacking.",
		"Acceptable work, though several areas could use more care.",
		"Adequate result; consider expanding the supporting notes next time.",
	}},
	{0, []string{
		"The submission falls short of the task requirements.",
		"Insufficient detail to assess the work; flagged for human review.",
		"Below the quality bar for automatic approval.",
	}},
}

func feedbackFor(submissionID string, score int) string {
	for _, tier := range feedbackTiers {
		if score >= tier.minScore {
			idx := int(hashFraction(submissionID+"feedback") * float64(len(tier.templates)))
			if idx >= len(tier.templates) {
				idx = len(tier.templates) - 1
			}
			return tier.templates[idx]
		}
	}
	return ""
}
