// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lumiere-video/lumiere/internal/domain/reputation"
)

// ReputationDependencies defines the interface for reputation operations.
type ReputationDependencies interface {
	UpsertReputation(ctx context.Context, userID string, m reputation.Metrics) (Entry, error)
	Reputation(ctx context.Context, userID string) (Entry, error)
}

// ReputationHandler handles reputation requests.
type ReputationHandler struct {
	deps ReputationDependencies
}

// NewReputationHandler creates a new reputation handler.
func NewReputationHandler(deps ReputationDependencies) *ReputationHandler {
	return &ReputationHandler{deps: deps}
}

// metricsRequest mirrors the JSON schema for PUT /reputation/{user_id}.
type metricsRequest struct {
	reputation.Metrics
}

func (m metricsRequest) validate() error {
	for name, v := range map[string]float64{
		"deadline_rate":   m.DeadlineRate,
		"acceptance_rate": m.AcceptanceRate,
		"quality_score":   m.QualityScore,
		"collab_rate":     m.CollabRate,
		"engagement_rate": m.EngagementRate,
	} {
		if v < 0 || v > 100 {
			return errors.New(name + " must be in [0,100]")
		}
	}
	if m.AccountAgeDays < 0 || m.TasksCompleted < 0 {
		return errors.New("counters must not be negative")
	}
	return nil
}

// HandleReputation handles PUT and GET /reputation/{user_id} requests.
func (h *ReputationHandler) HandleReputation(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimPrefix(r.URL.Path, "/reputation/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req metricsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		entry, err := h.deps.UpsertReputation(r.Context(), userID, req.Metrics)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	case http.MethodGet:
		entry, err := h.deps.Reputation(r.Context(), userID)
		if err != nil {
			if isNotFound(err) {
				writeError(w, http.StatusNotFound, "not_found", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	default:
		http.NotFound(w, r)
	}
}
