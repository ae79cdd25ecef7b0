package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Matchmaking events
	EventSearchStarted   EventType = "search_started"
	EventSearchCancelled EventType = "search_cancelled"
	EventMatchFound      EventType = "match_found"
	EventBattleStarted   EventType = "battle_started"
	EventBattleComplete  EventType = "battle_complete"

	// Progression events
	EventLevelUp         EventType = "level_up"
	EventCardGenerated   EventType = "card_generated"
	EventMissionComplete EventType = "mission_complete"
	EventRankingUpdated  EventType = "ranking_updated"
)

// Event is a notification delivered to a single player
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	PlayerID  PlayerID  `json:"playerId"`
	MatchID   MatchID   `json:"matchId,omitempty"`
	Payload   any       `json:"payload,omitempty"`
}

// MatchFoundPayload contains data for match found events
type MatchFoundPayload struct {
	Opponent PvPPlayer  `json:"opponent"`
	Mode     BattleMode `json:"mode"`
	Genre    Genre      `json:"genre"`
}

// BattleCompletePayload contains data for battle complete events
type BattleCompletePayload struct {
	Outcome     BattleOutcome `json:"outcome"`
	RatingDelta int           `json:"ratingDelta"`
	NewRating   int           `json:"newRating"`
	Coins       int           `json:"coins"`
	Experience  int           `json:"experience"`
	Result      BattleResult  `json:"result"`
}

// LevelUpPayload contains data for level up events
type LevelUpPayload struct {
	OldLevel   int `json:"oldLevel"`
	NewLevel   int `json:"newLevel"`
	Tokens     int `json:"tokens"`
	BonusCards int `json:"bonusCards"`
}

// CardGeneratedPayload contains data for card generated events
type CardGeneratedPayload struct {
	Card      Card `json:"card"`
	Fragments int  `json:"fragments"`
}
