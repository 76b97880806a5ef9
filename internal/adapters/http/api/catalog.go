// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// CatalogDependencies defines the interface for catalog writes.
type CatalogDependencies interface {
	RegisterEntity(ctx context.Context, entityID string, revenueSharePct float64) error
	AddViews(ctx context.Context, entityID string, views int64) error
}

// CatalogHandler handles catalog registration and view ingestion.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

type registerRequest struct {
	EntityID        string  `json:"entity_id"`
	RevenueSharePct float64 `json:"revenue_share_pct"`
}

type viewsRequest struct {
	Views int64 `json:"views"`
}

// HandleRegister handles POST /catalog requests.
func (h *CatalogHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if strings.TrimSpace(req.EntityID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing entity_id"))
		return
	}
	if err := h.deps.RegisterEntity(r.Context(), req.EntityID, req.RevenueSharePct); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}

// HandleAddViews handles POST /catalog/{entity_id}/views requests.
func (h *CatalogHandler) HandleAddViews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/catalog/")
	entityID, ok := strings.CutSuffix(path, "/views")
	if !ok || entityID == "" || strings.Contains(entityID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	var req viewsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if req.Views < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("views must not be negative"))
		return
	}
	if err := h.deps.AddViews(r.Context(), entityID, req.Views); err != nil {
		if isNotFound(err) || strings.Contains(err.Error(), "unknown") {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}
