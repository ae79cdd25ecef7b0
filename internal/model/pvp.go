package model

import "time"

// MatchID uniquely identifies a PvP match
type MatchID string

// DeckSize is the number of cards in a battle deck
const DeckSize = 5

// Battle round limits
const (
	MaxRounds    = 5
	WinsRequired = 3
)

// BattleMode selects the round resolution rule
type BattleMode string

const (
	// ModeRanked resolves rounds by the last digit of each side's power
	ModeRanked BattleMode = "ranked"
	// ModeStory resolves rounds by raw power
	ModeStory BattleMode = "story"
)

// Valid reports whether m is a known mode
func (m BattleMode) Valid() bool {
	switch m {
	case ModeRanked, ModeStory:
		return true
	default:
		return false
	}
}

// Genre selects the stat weighting used to compute per-round power
type Genre string

const (
	GenreBalanced   Genre = "balanced"
	GenreCreative   Genre = "creative"
	GenreAnalytical Genre = "analytical"
	GenreSpeed      Genre = "speed"
	GenreEthical    Genre = "ethical"
)

// SessionState is the matchmaking session lifecycle
type SessionState string

const (
	SessionIdle      SessionState = "idle"
	SessionSearching SessionState = "searching"
	SessionFound     SessionState = "found"
	SessionBattling  SessionState = "battling"
	SessionResult    SessionState = "result"
)

// MatchStatus is the lifecycle of a PvPMatch record
type MatchStatus string

const (
	MatchFound     MatchStatus = "found"
	MatchBattling  MatchStatus = "battling"
	MatchCompleted MatchStatus = "completed"
	MatchCancelled MatchStatus = "cancelled"
)

// PvPPlayer is a participant snapshot taken when a match is formed
type PvPPlayer struct {
	ID            PlayerID `json:"id"`
	Name          string   `json:"name"`
	Level         int      `json:"level"`
	Rating        int      `json:"rating"`
	SelectedCards []CardID `json:"selectedCards"`
	Deck          []Card   `json:"deck"`
	TotalPower    int      `json:"totalPower"`
	SynergyBonus  float64  `json:"synergyBonus"`
	IsBot         bool     `json:"isBot"`
}

// RoundWinner names the side that took a round
type RoundWinner string

const (
	RoundPlayer1 RoundWinner = "player1"
	RoundPlayer2 RoundWinner = "player2"
	RoundDraw    RoundWinner = "draw"
)

// RoundResult is a single resolved battle round
type RoundResult struct {
	Round  int         `json:"round"`
	Card1  CardID      `json:"card1"`
	Card2  CardID      `json:"card2"`
	Power1 int         `json:"power1"`
	Power2 int         `json:"power2"`
	Winner RoundWinner `json:"winner"`
}

// BattleResult is the outcome of a full battle. Outcome is from player1's perspective.
type BattleResult struct {
	Rounds  []RoundResult `json:"rounds"`
	Wins1   int           `json:"wins1"`
	Wins2   int           `json:"wins2"`
	Outcome BattleOutcome `json:"outcome"`
}

// PvPMatch pairs two players for a battle
type PvPMatch struct {
	ID          MatchID       `json:"id"`
	Player1     PvPPlayer     `json:"player1"`
	Player2     PvPPlayer     `json:"player2"`
	Status      MatchStatus   `json:"status"`
	Mode        BattleMode    `json:"mode"`
	Genre       Genre         `json:"genre"`
	Result      *BattleResult `json:"result,omitempty"`
	StartTime   time.Time     `json:"startTime"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}

// Side returns the participant with the given ID and whether it is player1
func (m *PvPMatch) Side(id PlayerID) (*PvPPlayer, bool) {
	if m.Player1.ID == id {
		return &m.Player1, true
	}
	if m.Player2.ID == id {
		return &m.Player2, false
	}
	return nil, false
}

// Opponent returns the participant that is not id
func (m *PvPMatch) Opponent(id PlayerID) *PvPPlayer {
	if m.Player1.ID == id {
		return &m.Player2
	}
	return &m.Player1
}

// OutcomeFor returns the battle outcome from the given player's perspective
func (m *PvPMatch) OutcomeFor(id PlayerID) BattleOutcome {
	if m.Result == nil {
		return ""
	}
	if m.Player1.ID == id {
		return m.Result.Outcome
	}
	return m.Result.Outcome.Invert()
}

// QueueEntry is a player waiting in the live matchmaking queue
type QueueEntry struct {
	Player   PvPPlayer  `json:"player"`
	Mode     BattleMode `json:"mode"`
	Genre    Genre      `json:"genre"`
	JoinedAt time.Time  `json:"joinedAt"`
}
