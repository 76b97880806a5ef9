// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/lumiere-video/lumiere/internal/domain/model"
)

// PayoutDependencies defines the interface for payout operations.
type PayoutDependencies interface {
	RunPayouts(ctx context.Context, month string) (model.PayoutRun, error)
	PayoutRun(ctx context.Context, month string) (model.PayoutRun, error)
}

// PayoutsHandler handles payout run requests.
type PayoutsHandler struct {
	deps PayoutDependencies
}

// NewPayoutsHandler creates a new payouts handler.
func NewPayoutsHandler(deps PayoutDependencies) *PayoutsHandler {
	return &PayoutsHandler{deps: deps}
}

type runRequest struct {
	// Month to close, YYYY-MM. Empty means the current calendar month.
	Month string `json:"month"`
}

type allocationResponse struct {
	EntityID     string  `json:"entity_id"`
	MonthlyViews int64   `json:"monthly_views"`
	Ratio        float64 `json:"ratio"`
	GrossAmount  float64 `json:"gross_amount"`
	CreatorShare float64 `json:"creator_share"`
}

type runResponse struct {
	RunID       string               `json:"run_id"`
	Month       string               `json:"month"`
	Pool        float64              `json:"pool"`
	Allocations []allocationResponse `json:"allocations"`
	ClosedAt    string               `json:"closed_at"`
}

func toRunResponse(run model.PayoutRun) runResponse {
	allocs := make([]allocationResponse, len(run.Allocations))
	for i, a := range run.Allocations {
		allocs[i] = allocationResponse{
			EntityID:     a.EntityID,
			MonthlyViews: a.MonthlyViews,
			Ratio:        a.Ratio,
			GrossAmount:  a.GrossAmount,
			CreatorShare: a.CreatorShare,
		}
	}
	return runResponse{
		RunID:       run.RunID,
		Month:       run.Month,
		Pool:        run.Pool,
		Allocations: allocs,
		ClosedAt:    run.ClosedAt.UTC().Format(time.RFC3339),
	}
}

// HandleRun handles POST /payouts/run requests.
func (h *PayoutsHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	month := req.Month
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}
	if _, err := parseMonth(month); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	run, err := h.deps.RunPayouts(r.Context(), month)
	if err != nil {
		if strings.Contains(err.Error(), "already closed") {
			writeError(w, http.StatusConflict, "month_closed", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, toRunResponse(run))
}

// HandleGetRun handles GET /payouts/{month} requests.
func (h *PayoutsHandler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	month := strings.TrimPrefix(r.URL.Path, "/payouts/")
	if _, err := parseMonth(month); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	run, err := h.deps.PayoutRun(r.Context(), month)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, toRunResponse(run))
}
