package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is an account that owns a GameState
type Player struct {
	ID          PlayerID  `json:"id"`
	DisplayName string    `json:"displayName"`
	IsGuest     bool      `json:"isGuest"` // true for unregistered players
	CreatedAt   time.Time `json:"createdAt"`
}

// RegisteredPlayer holds login credentials for a non-guest Player.
// Stored separately so password hashes never travel with sessions.
type RegisteredPlayer struct {
	PlayerID     PlayerID  `json:"playerId"`
	Username     string    `json:"username"`     // login username (immutable)
	PasswordHash string    `json:"passwordHash"` // bcrypt hash
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
