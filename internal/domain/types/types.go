// Package types contains common types shared across layers.
package types

// Entry represents a creator-leaderboard row.
type Entry struct {
	Rank   int     `json:"rank"`
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
	Badge  string  `json:"badge"`
}
