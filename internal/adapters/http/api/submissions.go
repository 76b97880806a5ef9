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
)

// SubmissionDependencies defines the interface for submission intake.
type SubmissionDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, sub model.Submission) bool
}

// SubmissionsHandler handles submission intake requests.
type SubmissionsHandler struct {
	deps SubmissionDependencies
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps SubmissionDependencies) *SubmissionsHandler {
	return &SubmissionsHandler{deps: deps}
}

// submissionRequest mirrors the JSON schema for POST /submissions.
type submissionRequest struct {
	SubmissionID string `json:"submission_id"`
	TaskID       string `json:"task_id"`
	UserID       string `json:"user_id"`
	Notes        string `json:"notes"`
	FileURL      string `json:"file_url"`
}

func (s submissionRequest) validate() error {
	switch {
	case strings.TrimSpace(s.SubmissionID) == "":
		return errors.New("missing submission_id")
	case strings.TrimSpace(s.TaskID) == "":
		return errors.New("missing task_id")
	case strings.TrimSpace(s.UserID) == "":
		return errors.New("missing user_id")
	}
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// HandlePostSubmission handles POST /submissions requests.
func (h *SubmissionsHandler) HandlePostSubmission(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	// Idempotency check - mark as seen first.
	if h.deps.SeenAndRecord(r.Context(), req.SubmissionID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	sub := model.Submission{
		SubmissionID: req.SubmissionID,
		TaskID:       req.TaskID,
		UserID:       req.UserID,
		Notes:        req.Notes,
		FileURL:      req.FileURL,
		SubmittedAt:  time.Now().UTC(),
	}
	if ok := h.deps.Enqueue(r.Context(), sub); !ok {
		// Roll back the seen mark so the client can retry.
		h.deps.Unrecord(r.Context(), req.SubmissionID)
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
