// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lumiere-video/lumiere/internal/domain/model"
	"github.com/lumiere-video/lumiere/internal/domain/schedule"
)

// Schedule generation limits.
const maxScheduleCount = 100

// ScheduleDependencies defines the interface for schedule generation.
type ScheduleDependencies interface {
	GenerateSchedule(ctx context.Context, req schedule.Request) []model.ScheduleSlot
}

// SchedulesHandler handles publish-schedule generation requests.
type SchedulesHandler struct {
	deps ScheduleDependencies
}

// NewSchedulesHandler creates a new schedules handler.
func NewSchedulesHandler(deps ScheduleDependencies) *SchedulesHandler {
	return &SchedulesHandler{deps: deps}
}

// scheduleRequest mirrors the JSON schema for POST /schedules.
type scheduleRequest struct {
	Platform     string `json:"platform"`
	Frequency    string `json:"frequency"`
	StartDate    string `json:"start_date"` // RFC3339; empty means now
	Count        int    `json:"count"`
	LastPostHour *int   `json:"last_post_hour"` // null means unknown
}

type slotResponse struct {
	At            string `json:"at"`
	Hour          int    `json:"hour"`
	JitterMinutes int    `json:"jitter_minutes"`
}

// HandleGenerate handles POST /schedules requests. Slots are generated
// fresh on every call and never persisted.
func (h *SchedulesHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if strings.TrimSpace(req.Platform) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing platform"))
		return
	}
	if req.Count < 1 || req.Count > maxScheduleCount {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("count must be in [1,100]"))
		return
	}

	start := time.Now().UTC()
	if req.StartDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid start_date; must be RFC3339"))
			return
		}
		start = parsed
	}

	lastPostHour := -1
	if req.LastPostHour != nil {
		if *req.LastPostHour < 0 || *req.LastPostHour > 23 {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("last_post_hour must be in [0,23]"))
			return
		}
		lastPostHour = *req.LastPostHour
	}

	slots := h.deps.GenerateSchedule(r.Context(), schedule.Request{
		Platform:     req.Platform,
		Frequency:    req.Frequency,
		StartDate:    start,
		Count:        req.Count,
		LastPostHour: lastPostHour,
	})

	out := make([]slotResponse, len(slots))
	for i, s := range slots {
		out[i] = slotResponse{
			At:            s.At.Format(time.RFC3339),
			Hour:          s.Hour,
			JitterMinutes: s.JitterMinutes,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
