package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrStateNotFound  = errors.New("game state not found")

	// Currency and progression errors
	ErrInsufficientFunds = errors.New("insufficient tokens")
	ErrInvalidAmount     = errors.New("amount must not be negative")

	// Card errors
	ErrCardNotFound         = errors.New("card not found")
	ErrCardLocked           = errors.New("card is locked")
	ErrMaxLevelReached      = errors.New("card is at max level")
	ErrInvalidMaterialCount = errors.New("fusion requires exactly three distinct cards")
	ErrRarityMismatch       = errors.New("fusion materials must share a rarity")
	ErrMaxRarityReached     = errors.New("card is at max rarity")

	// Faction and slot errors
	ErrUnknownFaction       = errors.New("unknown faction")
	ErrAlreadyUnlocked      = errors.New("faction already unlocked")
	ErrFactionLocked        = errors.New("faction is not unlocked")
	ErrFactionAlreadyPlaced = errors.New("faction already occupies a slot")
	ErrInvalidSlot          = errors.New("invalid slot number")
	ErrSlotOccupied         = errors.New("slot is occupied")
	ErrSlotEmpty            = errors.New("slot is empty")
	ErrNoEmptySlot          = errors.New("no empty slot")
	ErrNotReady             = errors.New("not ready")

	// Mission errors
	ErrUnknownMission = errors.New("unknown mission")
	ErrAlreadyClaimed = errors.New("already claimed")

	// Battle and matchmaking errors
	ErrInvalidDeck      = errors.New("deck must contain five distinct owned cards")
	ErrInvalidMode      = errors.New("invalid battle mode")
	ErrInvalidGenre     = errors.New("invalid battle genre")
	ErrAlreadySearching = errors.New("matchmaking session already active")
	ErrNotSearching     = errors.New("no matchmaking session")
	ErrCannotCancel     = errors.New("match already found")
	ErrMatchNotFound    = errors.New("match not found")

	// Ranking errors
	ErrRankingNotFound = errors.New("ranking snapshot not found")
)

// expected lists the errors that describe a rejected action rather than a failure
var expected = []error{
	ErrInsufficientFunds,
	ErrInvalidAmount,
	ErrCardNotFound,
	ErrCardLocked,
	ErrMaxLevelReached,
	ErrInvalidMaterialCount,
	ErrRarityMismatch,
	ErrMaxRarityReached,
	ErrUnknownFaction,
	ErrAlreadyUnlocked,
	ErrFactionLocked,
	ErrFactionAlreadyPlaced,
	ErrInvalidSlot,
	ErrSlotOccupied,
	ErrSlotEmpty,
	ErrNoEmptySlot,
	ErrNotReady,
	ErrUnknownMission,
	ErrAlreadyClaimed,
	ErrInvalidDeck,
	ErrInvalidMode,
	ErrInvalidGenre,
	ErrAlreadySearching,
	ErrNotSearching,
	ErrCannotCancel,
}

// IsExpected reports whether err is a gameplay rejection the caller can show to the player
func IsExpected(err error) bool {
	for _, e := range expected {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
