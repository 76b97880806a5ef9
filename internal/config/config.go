// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of review workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the submission idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// ReviewThreshold is the approval cutoff for automated review, in [1,100].
	ReviewThreshold int `koanf:"review_threshold"`

	// PayoutPool is the monthly pool distributed across catalog entries.
	PayoutPool float64 `koanf:"payout_pool"`

	// PayoutCron schedules the automatic monthly payout close
	// (robfig/cron syntax). Empty disables the job.
	PayoutCron string `koanf:"payout_cron"`

	// PlatformHours overrides the per-platform optimal posting hours.
	PlatformHours map[string][]int `koanf:"platform_hours"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		QueueSize:           100_000,
		WorkerCount:         runtime.NumCPU() * 4,
		DedupeSize:          500_000,
		MaxLeaderboardLimit: 100,
		ReviewThreshold:     70,
		PayoutPool:          50_000,
		PayoutCron:          "0 3 1 * *", // 03:00 on the first of each month
		PlatformHours:       nil,         // nil keeps the built-in tables
	}
}
