package handler

import (
	"net/http"

	"github.com/mcoot/aicardgame-go/internal/api/middleware"
	"github.com/mcoot/aicardgame-go/internal/realtime"
)

// EventHandler streams a player's notifications over SSE or WebSocket
type EventHandler struct {
	hubs *realtime.HubManager
}

// NewEventHandler creates a new event handler
func NewEventHandler(hubs *realtime.HubManager) *EventHandler {
	return &EventHandler{hubs: hubs}
}

// Stream handles GET /api/v1/events
func (h *EventHandler) Stream(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	h.hubs.ServeSSE(w, r, player.ID)
}

// WebSocket handles GET /api/v1/ws
func (h *EventHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	h.hubs.ServeWS(w, r, player.ID)
}
