// Package model contains domain models passed between layers.
package model

import "time"

// Submission represents a unit of work product submitted against a task.
// Fields mirror the JSON schema for POST /submissions.
type Submission struct {
	SubmissionID string    // unique id, used for idempotency and deterministic scoring
	TaskID       string    // task the work was submitted against
	UserID       string    // submitting contributor
	Notes        string    // free-form submission notes; empty means absent
	FileURL      string    // uploaded artifact URL; empty means absent
	SubmittedAt  time.Time // submission timestamp
}

// Verdict is the binary outcome of an automated review.
type Verdict string

const (
	// VerdictApproved means the submission was auto-accepted.
	VerdictApproved Verdict = "APPROVED"
	// VerdictFlagged means the submission was routed to human review.
	VerdictFlagged Verdict = "FLAGGED"
)

// Review captures the recorded outcome of scoring a submission.
type Review struct {
	SubmissionID string
	UserID       string
	Score        int
	Feedback     string
	Verdict      Verdict
	ReviewedAt   time.Time
}

// PayoutAllocation is one entry's share of a monthly payout pool.
type PayoutAllocation struct {
	EntityID     string
	MonthlyViews int64
	Ratio        float64 // share of total views, in [0,1]
	GrossAmount  float64 // pool x ratio, rounded to cents
	CreatorShare float64 // gross x revenue share pct, rounded to cents
}

// PayoutRun records one closed payout month.
type PayoutRun struct {
	RunID       string
	Month       string // calendar month identifier, e.g. "2026-08"
	Pool        float64
	Allocations []PayoutAllocation
	ClosedAt    time.Time
}

// ScheduleSlot is one generated posting timestamp with its applied jitter.
type ScheduleSlot struct {
	At            time.Time
	Hour          int // optimal hour chosen before jitter
	JitterMinutes int
}
