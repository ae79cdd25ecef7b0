package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/aicardgame-go/internal/api/apierr"
	"github.com/mcoot/aicardgame-go/internal/api/middleware"
	"github.com/mcoot/aicardgame-go/internal/api/request"
	"github.com/mcoot/aicardgame-go/internal/api/response"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/services/enhance"
	"github.com/mcoot/aicardgame-go/internal/services/fusion"
	"github.com/mcoot/aicardgame-go/internal/services/gamestate"
	"github.com/mcoot/aicardgame-go/internal/services/synergy"
)

// StateHandler serves the game state and card inventory endpoints
type StateHandler struct {
	state   *gamestate.Service
	enhance *enhance.Service
	fusion  *fusion.Service
	synergy *synergy.Engine
}

// NewStateHandler creates a new state handler
func NewStateHandler(state *gamestate.Service, enhance *enhance.Service, fusion *fusion.Service, synergy *synergy.Engine) *StateHandler {
	return &StateHandler{
		state:   state,
		enhance: enhance,
		fusion:  fusion,
		synergy: synergy,
	}
}

// Get handles GET /api/v1/state
func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	state, err := h.state.Get(r.Context(), player.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StateFromModel(state, h.synergy.Calculate(state.Slots)))
}

// Synergy handles GET /api/v1/synergy
func (h *StateHandler) Synergy(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	state, err := h.state.Get(r.Context(), player.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, h.synergy.Calculate(state.Slots))
}

// Cards handles GET /api/v1/cards
func (h *StateHandler) Cards(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	state, err := h.state.Get(r.Context(), player.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Cards{Cards: state.Inventory, Count: len(state.Inventory)})
}

// Enhance handles POST /api/v1/cards/{id}/enhance
func (h *StateHandler) Enhance(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	result, err := h.enhance.Enhance(r.Context(), player.ID, model.CardID(mux.Vars(r)["id"]))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Lock handles POST /api/v1/cards/{id}/lock
func (h *StateHandler) Lock(w http.ResponseWriter, r *http.Request) {
	h.setLock(w, r, true)
}

// Unlock handles DELETE /api/v1/cards/{id}/lock
func (h *StateHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	h.setLock(w, r, false)
}

func (h *StateHandler) setLock(w http.ResponseWriter, r *http.Request, locked bool) {
	player := middleware.MustGetPlayer(r.Context())
	cardID := model.CardID(mux.Vars(r)["id"])

	state, err := h.state.SetCardLock(r.Context(), player.ID, cardID, locked)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Card{Card: state.FindCard(cardID)})
}

// Fuse handles POST /api/v1/cards/fuse
func (h *StateHandler) Fuse(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.FuseRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	ids := make([]model.CardID, len(req.CardIDs))
	for i, id := range req.CardIDs {
		ids[i] = model.CardID(id)
	}

	result, err := h.fusion.Fuse(r.Context(), player.ID, ids)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}
