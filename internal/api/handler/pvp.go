package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/aicardgame-go/internal/api/apierr"
	"github.com/mcoot/aicardgame-go/internal/api/middleware"
	"github.com/mcoot/aicardgame-go/internal/api/request"
	"github.com/mcoot/aicardgame-go/internal/api/response"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/services/matchmaking"
)

// defaultHistoryLimit is used when ?limit= is absent
const defaultHistoryLimit = 20

// PvPHandler serves matchmaking sessions and match history
type PvPHandler struct {
	matchmaking *matchmaking.Service
}

// NewPvPHandler creates a new PvP handler
func NewPvPHandler(matchmaking *matchmaking.Service) *PvPHandler {
	return &PvPHandler{matchmaking: matchmaking}
}

// Search handles POST /api/v1/pvp/search
func (h *PvPHandler) Search(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.SearchRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	ids := make([]model.CardID, len(req.CardIDs))
	for i, id := range req.CardIDs {
		ids[i] = model.CardID(id)
	}

	session, err := h.matchmaking.StartSearch(r.Context(), player.ID, matchmaking.SearchRequest{
		CardIDs: ids,
		Mode:    model.BattleMode(req.Mode),
		Genre:   model.Genre(req.Genre),
		Live:    req.Live,
	})
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusAccepted, session)
}

// Cancel handles DELETE /api/v1/pvp/search
func (h *PvPHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	if err := h.matchmaking.Cancel(r.Context(), player.ID); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Session handles GET /api/v1/pvp/session
func (h *PvPHandler) Session(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	response.JSON(w, http.StatusOK, h.matchmaking.Status(player.ID))
}

// Acknowledge handles POST /api/v1/pvp/session/ack
func (h *PvPHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	session, err := h.matchmaking.Acknowledge(player.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, session)
}

// History handles GET /api/v1/pvp/matches
func (h *PvPHandler) History(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	limit, err := queryLimit(r, defaultHistoryLimit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	matches, err := h.matchmaking.History(r.Context(), player.ID, limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	if matches == nil {
		matches = []*model.PvPMatch{}
	}

	response.JSON(w, http.StatusOK, response.Matches{Matches: matches})
}

// Match handles GET /api/v1/pvp/matches/{id}
func (h *PvPHandler) Match(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	match, err := h.matchmaking.Match(r.Context(), player.ID, model.MatchID(mux.Vars(r)["id"]))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, match)
}
