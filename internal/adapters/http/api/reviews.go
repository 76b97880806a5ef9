// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/lumiere-video/lumiere/internal/domain/model"
)

// ReviewDependencies defines the interface for review lookups.
type ReviewDependencies interface {
	Review(ctx context.Context, submissionID string) (model.Review, error)
}

// ReviewsHandler handles review lookup requests.
type ReviewsHandler struct {
	deps ReviewDependencies
}

// NewReviewsHandler creates a new reviews handler.
func NewReviewsHandler(deps ReviewDependencies) *ReviewsHandler {
	return &ReviewsHandler{deps: deps}
}

type reviewResponse struct {
	SubmissionID string `json:"submission_id"`
	UserID       string `json:"user_id"`
	Score        int    `json:"score"`
	Feedback     string `json:"feedback"`
	Verdict      string `json:"verdict"`
	ReviewedAt   string `json:"reviewed_at"`
}

// HandleGetReview handles GET /reviews/{submission_id} requests.
// A submission that was accepted but not yet scored returns 404; clients
// poll until the review lands.
func (h *ReviewsHandler) HandleGetReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/reviews/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	rev, err := h.deps.Review(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, reviewResponse{
		SubmissionID: rev.SubmissionID,
		UserID:       rev.UserID,
		Score:        rev.Score,
		Feedback:     rev.Feedback,
		Verdict:      string(rev.Verdict),
		ReviewedAt:   rev.ReviewedAt.UTC().Format(time.RFC3339),
	})
}
