package gamestate

import "github.com/mcoot/aicardgame-go/internal/model"

// BonusCardEvery is the level interval that grants a bonus card
const BonusCardEvery = 5

// LevelUp describes the effect of an experience grant
type LevelUp struct {
	OldLevel   int `json:"oldLevel"`
	NewLevel   int `json:"newLevel"`
	Tokens     int `json:"tokens"`
	BonusCards int `json:"bonusCards"`
}

// Gained reports whether at least one level was gained
func (l LevelUp) Gained() bool {
	return l.NewLevel > l.OldLevel
}

// Spend deducts amount from the state's tokens. Nothing changes on error.
func Spend(state *model.GameState, amount int) error {
	if amount < 0 {
		return model.ErrInvalidAmount
	}
	if state.Tokens < amount {
		return model.ErrInsufficientFunds
	}
	state.Tokens -= amount
	return nil
}

// Credit adds amount to the state's tokens
func Credit(state *model.GameState, amount int) error {
	if amount < 0 {
		return model.ErrInvalidAmount
	}
	state.Tokens += amount
	return nil
}

// ApplyExperience adds experience and grants level-up rewards. Each gained
// level L pays L*100 tokens; every gained level divisible by BonusCardEvery
// queues one bonus card.
func ApplyExperience(state *model.GameState, amount int) (LevelUp, error) {
	if amount < 0 {
		return LevelUp{}, model.ErrInvalidAmount
	}

	up := LevelUp{OldLevel: state.Level}
	state.TotalExperience += amount
	state.Experience = state.TotalExperience % model.ExperiencePerLevel
	newLevel := model.LevelForExperience(state.TotalExperience)

	for l := state.Level + 1; l <= newLevel; l++ {
		up.Tokens += l * 100
		if l%BonusCardEvery == 0 {
			up.BonusCards++
		}
	}
	if newLevel > state.Level {
		state.Level = newLevel
	}
	up.NewLevel = state.Level
	state.Tokens += up.Tokens
	state.PendingBonusCards += up.BonusCards
	return up, nil
}

// ApplyBattleResult updates lifetime battle counters
func ApplyBattleResult(state *model.GameState, outcome model.BattleOutcome) {
	st := &state.Stats
	st.TotalBattles++
	switch outcome {
	case model.OutcomeWin:
		st.Wins++
		st.CurrentStreak++
		if st.CurrentStreak > st.WinStreak {
			st.WinStreak = st.CurrentStreak
		}
	case model.OutcomeLoss:
		st.Losses++
		st.CurrentStreak = 0
	case model.OutcomeDraw:
		st.Draws++
	}
}
