package battle

import "github.com/mcoot/aicardgame-go/internal/model"

// Strategy decides a single round from both sides' effective power
type Strategy interface {
	Name() string
	ResolveRound(power1, power2 int) model.RoundWinner
}

// LastDigitStrategy compares power % 10, then raw power
type LastDigitStrategy struct{}

func (LastDigitStrategy) Name() string { return "last-digit" }

func (LastDigitStrategy) ResolveRound(power1, power2 int) model.RoundWinner {
	d1, d2 := power1%10, power2%10
	switch {
	case d1 > d2:
		return model.RoundPlayer1
	case d2 > d1:
		return model.RoundPlayer2
	}
	return RawPowerStrategy{}.ResolveRound(power1, power2)
}

// RawPowerStrategy compares raw power
type RawPowerStrategy struct{}

func (RawPowerStrategy) Name() string { return "raw-power" }

func (RawPowerStrategy) ResolveRound(power1, power2 int) model.RoundWinner {
	switch {
	case power1 > power2:
		return model.RoundPlayer1
	case power2 > power1:
		return model.RoundPlayer2
	default:
		return model.RoundDraw
	}
}

// StrategyFor returns the round strategy for a battle mode
func StrategyFor(mode model.BattleMode) (Strategy, error) {
	switch mode {
	case model.ModeRanked:
		return LastDigitStrategy{}, nil
	case model.ModeStory:
		return RawPowerStrategy{}, nil
	default:
		return nil, model.ErrInvalidMode
	}
}
