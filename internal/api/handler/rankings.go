package handler

import (
	"net/http"

	"github.com/mcoot/aicardgame-go/internal/api/apierr"
	"github.com/mcoot/aicardgame-go/internal/api/middleware"
	"github.com/mcoot/aicardgame-go/internal/api/response"
	"github.com/mcoot/aicardgame-go/internal/services/ranking"
)

// defaultRankingLimit is used when ?limit= is absent
const defaultRankingLimit = 50

// RankingHandler serves the leaderboard
type RankingHandler struct {
	ranking *ranking.Service
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(ranking *ranking.Service) *RankingHandler {
	return &RankingHandler{ranking: ranking}
}

// Top handles GET /api/v1/rankings
func (h *RankingHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, defaultRankingLimit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	entries, err := h.ranking.Top(r.Context(), limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Rankings{Season: h.ranking.Season(), Entries: entries})
}

// Me handles GET /api/v1/rankings/me
func (h *RankingHandler) Me(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	standing, err := h.ranking.Standing(r.Context(), player.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, standing)
}
