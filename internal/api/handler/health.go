package handler

import (
	"errors"
	"net/http"

	"github.com/mcoot/aicardgame-go/internal/api/response"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/storage"
)

// probePlayerID is looked up to exercise the storage round trip
const probePlayerID model.PlayerID = "__health"

// HealthHandler reports service and storage health
type HealthHandler struct {
	storage storage.Storage
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(storage storage.Storage) *HealthHandler {
	return &HealthHandler{storage: storage}
}

// Check handles GET /api/v1/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	_, err := h.storage.GetPlayer(r.Context(), probePlayerID)
	if err != nil && !errors.Is(err, model.ErrPlayerNotFound) {
		response.JSON(w, http.StatusServiceUnavailable, response.Health{Status: "degraded", Storage: "unavailable"})
		return
	}
	response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: "ok"})
}
