// Package rating implements Elo updates and battle reward scaling.
package rating

import (
	"math"

	"github.com/mcoot/aicardgame-go/internal/model"
)

// DefaultKFactor is the Elo K used when none is configured
const DefaultKFactor = 32

// MinRating is the floor applied to updated ratings
const MinRating = 0

// Reward bases per outcome
const (
	WinCoins  = 100
	DrawCoins = 50
	LossCoins = 25

	WinExperience  = 50
	DrawExperience = 25
	LossExperience = 10

	CoinsPerOpponentLevel      = 10
	CoinsPerPlayerLevel        = 5
	ExperiencePerOpponentLevel = 5
)

// Calculator applies Elo with a fixed K
type Calculator struct {
	K int
}

// New returns a calculator. A non-positive k falls back to DefaultKFactor.
func New(k int) *Calculator {
	if k <= 0 {
		k = DefaultKFactor
	}
	return &Calculator{K: k}
}

// Expected returns the expected score of a player rated rp against ro
func Expected(rp, ro int) float64 {
	return 1 / (1 + math.Pow(10, float64(ro-rp)/400))
}

// Delta returns round(K * (S - E)) for the player
func (c *Calculator) Delta(rp, ro int, outcome model.BattleOutcome) int {
	return int(math.Round(float64(c.K) * (outcome.Score() - Expected(rp, ro))))
}

// Apply returns the player's new rating and the change
func (c *Calculator) Apply(rp, ro int, outcome model.BattleOutcome) (int, int) {
	delta := c.Delta(rp, ro, outcome)
	next := rp + delta
	if next < MinRating {
		next = MinRating
		delta = next - rp
	}
	return next, delta
}

// Rewards are the tokens and experience granted after a battle
type Rewards struct {
	Coins      int `json:"coins"`
	Experience int `json:"experience"`
}

// RewardsFor scales the outcome base rewards by both players' levels
func RewardsFor(outcome model.BattleOutcome, playerLevel, opponentLevel int) Rewards {
	var coins, exp int
	switch outcome {
	case model.OutcomeWin:
		coins, exp = WinCoins, WinExperience
	case model.OutcomeDraw:
		coins, exp = DrawCoins, DrawExperience
	default:
		coins, exp = LossCoins, LossExperience
	}
	return Rewards{
		Coins:      coins + CoinsPerOpponentLevel*opponentLevel + CoinsPerPlayerLevel*playerLevel,
		Experience: exp + ExperiencePerOpponentLevel*opponentLevel,
	}
}
