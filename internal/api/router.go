package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/aicardgame-go/internal/api/handler"
	"github.com/mcoot/aicardgame-go/internal/api/middleware"
	"github.com/mcoot/aicardgame-go/internal/catalog"
	"github.com/mcoot/aicardgame-go/internal/realtime"
	"github.com/mcoot/aicardgame-go/internal/services/auth"
	"github.com/mcoot/aicardgame-go/internal/services/enhance"
	"github.com/mcoot/aicardgame-go/internal/services/fusion"
	"github.com/mcoot/aicardgame-go/internal/services/gamestate"
	"github.com/mcoot/aicardgame-go/internal/services/matchmaking"
	"github.com/mcoot/aicardgame-go/internal/services/missions"
	"github.com/mcoot/aicardgame-go/internal/services/production"
	"github.com/mcoot/aicardgame-go/internal/services/ranking"
	"github.com/mcoot/aicardgame-go/internal/services/synergy"
	"github.com/mcoot/aicardgame-go/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Storage     storage.Storage
	Catalog     *catalog.Catalog
	Hubs        *realtime.HubManager
	Auth        *auth.Service
	State       *gamestate.Service
	Enhance     *enhance.Service
	Fusion      *fusion.Service
	Synergy     *synergy.Engine
	Production  *production.Service
	Matchmaking *matchmaking.Service
	Ranking     *ranking.Service
	Missions    *missions.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.Auth)
	stateHandler := handler.NewStateHandler(cfg.State, cfg.Enhance, cfg.Fusion, cfg.Synergy)
	factionHandler := handler.NewFactionHandler(cfg.Catalog, cfg.State, cfg.Production)
	pvpHandler := handler.NewPvPHandler(cfg.Matchmaking)
	rankingHandler := handler.NewRankingHandler(cfg.Ranking)
	missionHandler := handler.NewMissionHandler(cfg.Missions)
	eventHandler := handler.NewEventHandler(cfg.Hubs)
	healthHandler := handler.NewHealthHandler(cfg.Storage)

	authMiddleware := middleware.Auth(cfg.Auth)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Public routes
	api.HandleFunc("/health", healthHandler.Check).Methods(http.MethodGet)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/rankings", rankingHandler.Top).Methods(http.MethodGet)

	// Everything below requires a session
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)

	protected.HandleFunc("/players/me", playerHandler.GetMe).Methods(http.MethodGet)
	protected.HandleFunc("/players/me", playerHandler.Rename).Methods(http.MethodPatch)
	protected.HandleFunc("/players/logout", playerHandler.Logout).Methods(http.MethodPost)

	protected.HandleFunc("/state", stateHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/synergy", stateHandler.Synergy).Methods(http.MethodGet)
	protected.HandleFunc("/cards", stateHandler.Cards).Methods(http.MethodGet)
	protected.HandleFunc("/cards/fuse", stateHandler.Fuse).Methods(http.MethodPost)
	protected.HandleFunc("/cards/{id}/enhance", stateHandler.Enhance).Methods(http.MethodPost)
	protected.HandleFunc("/cards/{id}/lock", stateHandler.Lock).Methods(http.MethodPost)
	protected.HandleFunc("/cards/{id}/lock", stateHandler.Unlock).Methods(http.MethodDelete)

	protected.HandleFunc("/factions", factionHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/factions/{id}/unlock", factionHandler.Unlock).Methods(http.MethodPost)
	protected.HandleFunc("/slots", factionHandler.Place).Methods(http.MethodPost)
	protected.HandleFunc("/slots/{slot}", factionHandler.Clear).Methods(http.MethodDelete)
	protected.HandleFunc("/slots/{slot}/claim", factionHandler.Claim).Methods(http.MethodPost)
	protected.HandleFunc("/bonus-cards/claim", factionHandler.ClaimBonusCards).Methods(http.MethodPost)

	protected.HandleFunc("/pvp/search", pvpHandler.Search).Methods(http.MethodPost)
	protected.HandleFunc("/pvp/search", pvpHandler.Cancel).Methods(http.MethodDelete)
	protected.HandleFunc("/pvp/session", pvpHandler.Session).Methods(http.MethodGet)
	protected.HandleFunc("/pvp/session/ack", pvpHandler.Acknowledge).Methods(http.MethodPost)
	protected.HandleFunc("/pvp/matches", pvpHandler.History).Methods(http.MethodGet)
	protected.HandleFunc("/pvp/matches/{id}", pvpHandler.Match).Methods(http.MethodGet)

	protected.HandleFunc("/rankings/me", rankingHandler.Me).Methods(http.MethodGet)

	protected.HandleFunc("/missions", missionHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/missions/{id}/claim", missionHandler.Claim).Methods(http.MethodPost)

	protected.HandleFunc("/events", eventHandler.Stream).Methods(http.MethodGet)
	protected.HandleFunc("/ws", eventHandler.WebSocket).Methods(http.MethodGet)

	return r
}
