// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lumiere-video/lumiere/internal/domain/dedupe"
	"github.com/lumiere-video/lumiere/internal/domain/model"
	"github.com/lumiere-video/lumiere/internal/domain/reputation"
	"github.com/lumiere-video/lumiere/internal/domain/schedule"
	"github.com/lumiere-video/lumiere/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a submission for async review. Returns false on backpressure.
	Enqueue(ctx context.Context, sub model.Submission) bool

	// Review returns the recorded review for a submission.
	Review(ctx context.Context, submissionID string) (model.Review, error)

	// Reputation operations.
	UpsertReputation(ctx context.Context, userID string, m reputation.Metrics) (Entry, error)
	Reputation(ctx context.Context, userID string) (Entry, error)
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Catalog and payout operations.
	RegisterEntity(ctx context.Context, entityID string, revenueSharePct float64) error
	AddViews(ctx context.Context, entityID string, views int64) error
	RunPayouts(ctx context.Context, month string) (model.PayoutRun, error)
	PayoutRun(ctx context.Context, month string) (model.PayoutRun, error)

	// GenerateSchedule produces publish slots; nothing is persisted.
	GenerateSchedule(ctx context.Context, req schedule.Request) []model.ScheduleSlot
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	submissionsHandler *SubmissionsHandler
	reviewsHandler     *ReviewsHandler
	reputationHandler  *ReputationHandler
	leaderboardHandler *LeaderboardHandler
	catalogHandler     *CatalogHandler
	payoutsHandler     *PayoutsHandler
	schedulesHandler   *SchedulesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLeaderboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		submissionsHandler: NewSubmissionsHandler(deps),
		reviewsHandler:     NewReviewsHandler(deps),
		reputationHandler:  NewReputationHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		catalogHandler:     NewCatalogHandler(deps),
		payoutsHandler:     NewPayoutsHandler(deps),
		schedulesHandler:   NewSchedulesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/submissions", MetricsMiddleware(s.submissionsHandler.HandlePostSubmission, "submissions"))
	mux.HandleFunc("/reviews/", MetricsMiddleware(s.reviewsHandler.HandleGetReview, "reviews"))
	mux.HandleFunc("/reputation/", MetricsMiddleware(s.reputationHandler.HandleReputation, "reputation"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/catalog", MetricsMiddleware(s.catalogHandler.HandleRegister, "catalog"))
	mux.HandleFunc("/catalog/", MetricsMiddleware(s.catalogHandler.HandleAddViews, "catalog_views"))
	mux.HandleFunc("/payouts/run", MetricsMiddleware(s.payoutsHandler.HandleRun, "payouts_run"))
	mux.HandleFunc("/payouts/", MetricsMiddleware(s.payoutsHandler.HandleGetRun, "payouts"))
	mux.HandleFunc("/schedules", MetricsMiddleware(s.schedulesHandler.HandleGenerate, "schedules"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404 without
// coupling the API package to every store's sentinel.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

// parseMonth validates a calendar month identifier like "2026-08".
func parseMonth(s string) (string, error) {
	if _, err := time.Parse("2006-01", s); err != nil {
		return "", errors.New("invalid month; must be YYYY-MM")
	}
	return s, nil
}
