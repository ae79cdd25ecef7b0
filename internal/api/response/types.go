package response

import (
	"time"

	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/services/auth"
	"github.com/mcoot/aicardgame-go/internal/services/missions"
	"github.com/mcoot/aicardgame-go/internal/services/synergy"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// State is the player's full game state with the derived synergy
type State struct {
	State   *model.GameState `json:"state"`
	Synergy synergy.Result   `json:"synergy"`
	WinRate float64          `json:"win_rate"`
}

// StateFromModel builds a State response
func StateFromModel(state *model.GameState, syn synergy.Result) State {
	return State{
		State:   state,
		Synergy: syn,
		WinRate: state.Stats.WinRate(),
	}
}

// Cards lists the player's inventory
type Cards struct {
	Cards []*model.Card `json:"cards"`
	Count int           `json:"count"`
}

// Card wraps a single card
type Card struct {
	Card *model.Card `json:"card"`
}

// Tokens reports a balance after a mutation
type Tokens struct {
	Tokens int `json:"tokens"`
}

// Slot wraps a faction slot
type Slot struct {
	Slot *model.FactionSlot `json:"slot"`
}

// BonusCards lists cards granted from pending level-up bonuses
type BonusCards struct {
	Cards []*model.Card `json:"cards"`
}

// Factions lists the catalog factions with the player's unlock state
type Factions struct {
	Factions []Faction `json:"factions"`
}

// Faction is a catalog faction annotated for the player
type Faction struct {
	model.Faction
	Unlocked bool `json:"unlocked"`
	Placed   bool `json:"placed"`
}

// Missions lists the player's daily missions
type Missions struct {
	Missions []missions.Status `json:"missions"`
}

// MissionClaim is the result of claiming a mission reward
type MissionClaim struct {
	Mission missions.Status `json:"mission"`
	Tokens  int             `json:"tokens"`
}

// Matches lists stored PvP matches
type Matches struct {
	Matches []*model.PvPMatch `json:"matches"`
}

// Rankings lists the top of the leaderboard
type Rankings struct {
	Season  int                  `json:"season"`
	Entries []model.RankingEntry `json:"entries"`
}

// Health is the health check body
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
