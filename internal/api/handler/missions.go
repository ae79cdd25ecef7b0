package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/aicardgame-go/internal/api/apierr"
	"github.com/mcoot/aicardgame-go/internal/api/middleware"
	"github.com/mcoot/aicardgame-go/internal/api/response"
	"github.com/mcoot/aicardgame-go/internal/services/missions"
)

// MissionHandler serves daily missions
type MissionHandler struct {
	missions *missions.Service
}

// NewMissionHandler creates a new mission handler
func NewMissionHandler(missions *missions.Service) *MissionHandler {
	return &MissionHandler{missions: missions}
}

// List handles GET /api/v1/missions
func (h *MissionHandler) List(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	statuses, err := h.missions.List(r.Context(), player.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Missions{Missions: statuses})
}

// Claim handles POST /api/v1/missions/{id}/claim
func (h *MissionHandler) Claim(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	status, state, err := h.missions.Claim(r.Context(), player.ID, mux.Vars(r)["id"])
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MissionClaim{Mission: *status, Tokens: state.Tokens})
}
