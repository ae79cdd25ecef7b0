// Package enhance levels up individual cards in exchange for tokens.
package enhance

import (
	"context"
	"log/slog"

	"github.com/mcoot/aicardgame-go/internal/dependencies/clock"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/notify"
	"github.com/mcoot/aicardgame-go/internal/services/gamestate"
	"github.com/mcoot/aicardgame-go/internal/services/missions"
)

// CostPerLevel is the token price per current card level
const CostPerLevel = 50

// PowerGainPercent is the share of current total power added per level
const PowerGainPercent = 10

// Cost returns the token price to enhance a card at the given level
func Cost(level int) int {
	return level * CostPerLevel
}

// PowerGain returns floor(totalPower * 10%)
func PowerGain(totalPower int) int {
	return totalPower * PowerGainPercent / 100
}

// Result describes a successful enhancement
type Result struct {
	Card      *model.Card `json:"card"`
	Cost      int         `json:"cost"`
	PowerGain int         `json:"powerGain"`
	Tokens    int         `json:"tokens"`
}

// Service applies enhancements
type Service struct {
	state  *gamestate.Service
	clock  clock.Clock
	sink   notify.Sink
	logger *slog.Logger
}

// New creates a new enhancement service
func New(state *gamestate.Service, clock clock.Clock, sink notify.Sink, logger *slog.Logger) *Service {
	return &Service{
		state:  state,
		clock:  clock,
		sink:   sink,
		logger: logger.With(slog.String("component", "enhance")),
	}
}

// Apply enhances a card in place. Preconditions are checked before any change.
func Apply(state *model.GameState, cardID model.CardID) (Result, error) {
	card := state.FindCard(cardID)
	if card == nil {
		return Result{}, model.ErrCardNotFound
	}
	if card.Level >= model.MaxCardLevel {
		return Result{}, model.ErrMaxLevelReached
	}
	cost := Cost(card.Level)
	if err := gamestate.Spend(state, cost); err != nil {
		return Result{}, err
	}

	gain := PowerGain(card.TotalPower())
	distribute(&card.Stats, gain)
	card.Level++
	state.Stats.CardsEnhanced++

	return Result{Card: card.Clone(), Cost: cost, PowerGain: gain, Tokens: state.Tokens}, nil
}

// distribute spreads gain evenly over the stats, remainder going to the
// earliest stats in canonical order
func distribute(stats *model.CardStats, gain int) {
	n := len(model.AllStats)
	for i, stat := range model.AllStats {
		share := gain / n
		if i < gain%n {
			share++
		}
		stats.Add(stat, share)
	}
}

// Enhance raises a card's level by one
func (s *Service) Enhance(ctx context.Context, userID model.PlayerID, cardID model.CardID) (*Result, error) {
	var res Result
	var completed []missions.Mission
	now := s.clock.Now()
	_, err := s.state.Mutate(ctx, userID, func(state *model.GameState) error {
		completed = nil
		var err error
		res, err = Apply(state, cardID)
		if err != nil {
			return err
		}
		if m, done := missions.Advance(state, now, missions.DailyEnhance, 1); done {
			completed = append(completed, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	missions.NotifyCompleted(s.sink, userID, now, completed)

	s.logger.Info("card enhanced",
		slog.String("player_id", string(userID)),
		slog.String("card_id", string(cardID)),
		slog.Int("level", res.Card.Level),
		slog.Int("cost", res.Cost),
	)
	return &res, nil
}
