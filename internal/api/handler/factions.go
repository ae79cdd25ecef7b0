package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/aicardgame-go/internal/api/apierr"
	"github.com/mcoot/aicardgame-go/internal/api/middleware"
	"github.com/mcoot/aicardgame-go/internal/api/request"
	"github.com/mcoot/aicardgame-go/internal/api/response"
	"github.com/mcoot/aicardgame-go/internal/catalog"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/services/gamestate"
	"github.com/mcoot/aicardgame-go/internal/services/production"
)

// FactionHandler serves faction unlocks, slots and card generation
type FactionHandler struct {
	catalog    *catalog.Catalog
	state      *gamestate.Service
	production *production.Service
}

// NewFactionHandler creates a new faction handler
func NewFactionHandler(catalog *catalog.Catalog, state *gamestate.Service, production *production.Service) *FactionHandler {
	return &FactionHandler{
		catalog:    catalog,
		state:      state,
		production: production,
	}
}

// List handles GET /api/v1/factions
func (h *FactionHandler) List(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	state, err := h.state.Get(r.Context(), player.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	out := response.Factions{Factions: make([]response.Faction, 0, len(h.catalog.Factions))}
	for _, f := range h.catalog.Factions {
		out.Factions = append(out.Factions, response.Faction{
			Faction:  f,
			Unlocked: state.HasFaction(f.ID),
			Placed:   state.SlotOf(f.ID) != nil,
		})
	}
	response.JSON(w, http.StatusOK, out)
}

// Unlock handles POST /api/v1/factions/{id}/unlock
func (h *FactionHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	state, err := h.production.UnlockFaction(r.Context(), player.ID, model.FactionID(mux.Vars(r)["id"]))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Tokens{Tokens: state.Tokens})
}

// Place handles POST /api/v1/slots
func (h *FactionHandler) Place(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.PlaceFactionRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}
	if req.FactionID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("faction_id is required"))
		return
	}

	slot, err := h.production.PlaceFaction(r.Context(), player.ID, model.FactionID(req.FactionID), req.Slot)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Slot{Slot: slot})
}

// Clear handles DELETE /api/v1/slots/{slot}
func (h *FactionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	n, err := pathInt(r, "slot")
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	if err := h.production.ClearSlot(r.Context(), player.ID, n); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Claim handles POST /api/v1/slots/{slot}/claim
func (h *FactionHandler) Claim(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	n, err := pathInt(r, "slot")
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	result, err := h.production.Claim(r.Context(), player.ID, n)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// ClaimBonusCards handles POST /api/v1/bonus-cards/claim
func (h *FactionHandler) ClaimBonusCards(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	cards, err := h.production.ClaimBonusCards(r.Context(), player.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BonusCards{Cards: cards})
}
