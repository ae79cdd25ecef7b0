// Package fusion combines three cards of one rarity into a card of the next tier.
package fusion

import (
	"context"
	"log/slog"
	"math"

	"github.com/mcoot/aicardgame-go/internal/catalog"
	"github.com/mcoot/aicardgame-go/internal/dependencies/clock"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/notify"
	"github.com/mcoot/aicardgame-go/internal/services/cards"
	"github.com/mcoot/aicardgame-go/internal/services/gamestate"
	"github.com/mcoot/aicardgame-go/internal/services/missions"
)

// MaterialCount is the number of cards consumed by a fusion
const MaterialCount = 3

// Result describes a successful fusion
type Result struct {
	Card     *model.Card    `json:"card"`
	Consumed []model.CardID `json:"consumed"`
	Cost     int            `json:"cost"`
}

// Service performs fusions
type Service struct {
	state     *gamestate.Service
	catalog   *catalog.Catalog
	generator *cards.Generator
	clock     clock.Clock
	sink      notify.Sink
	logger    *slog.Logger
}

// New creates a new fusion service
func New(
	state *gamestate.Service,
	catalog *catalog.Catalog,
	generator *cards.Generator,
	clock clock.Clock,
	sink notify.Sink,
	logger *slog.Logger,
) *Service {
	return &Service{
		state:     state,
		catalog:   catalog,
		generator: generator,
		clock:     clock,
		sink:      sink,
		logger:    logger.With(slog.String("component", "fusion")),
	}
}

// materials resolves and validates the fusion inputs without changing state
func (s *Service) materials(state *model.GameState, ids []model.CardID) ([]*model.Card, catalog.RarityRule, catalog.RarityRule, error) {
	var none catalog.RarityRule
	if len(ids) != MaterialCount {
		return nil, none, none, model.ErrInvalidMaterialCount
	}
	seen := make(map[model.CardID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, none, none, model.ErrInvalidMaterialCount
		}
		seen[id] = true
	}

	mats := make([]*model.Card, 0, len(ids))
	for _, id := range ids {
		card := state.FindCard(id)
		if card == nil {
			return nil, none, none, model.ErrCardNotFound
		}
		if card.IsLocked {
			return nil, none, none, model.ErrCardLocked
		}
		mats = append(mats, card)
	}

	rarity := mats[0].Rarity
	for _, m := range mats[1:] {
		if m.Rarity != rarity {
			return nil, none, none, model.ErrRarityMismatch
		}
	}

	next, ok := rarity.Next()
	if !ok {
		return nil, none, none, model.ErrMaxRarityReached
	}
	from, ok := s.catalog.Rarity(rarity)
	if !ok {
		return nil, none, none, model.ErrRarityMismatch
	}
	to, _ := s.catalog.Rarity(next)
	return mats, from, to, nil
}

// FusedStats averages each stat over the materials and scales it by the
// target tier multiplier, flooring the result
func FusedStats(mats []*model.Card, multiplier float64) model.CardStats {
	pct := int(math.Round(multiplier * 100))
	var out model.CardStats
	for _, stat := range model.AllStats {
		sum := 0
		for _, m := range mats {
			sum += m.Stats.Get(stat)
		}
		out.Add(stat, sum*pct/(len(mats)*100))
	}
	return out
}

// strongest returns the material with the highest total power, first wins ties
func strongest(mats []*model.Card) *model.Card {
	best := mats[0]
	for _, m := range mats[1:] {
		if m.TotalPower() > best.TotalPower() {
			best = m
		}
	}
	return best
}

// Fuse consumes three materials and adds the fused card
func (s *Service) Fuse(ctx context.Context, userID model.PlayerID, materialIDs []model.CardID) (*Result, error) {
	var res Result
	var completed []missions.Mission
	now := s.clock.Now()

	_, err := s.state.Mutate(ctx, userID, func(state *model.GameState) error {
		completed = nil
		mats, from, to, err := s.materials(state, materialIDs)
		if err != nil {
			return err
		}
		if err := gamestate.Spend(state, from.FusionCost); err != nil {
			return err
		}

		base := strongest(mats)
		ref := catalog.TemplateRef{
			Template:  model.CardTemplate{ID: base.TemplateID, Name: base.Name, Unique: base.IsUnique},
			FactionID: base.FactionID,
		}
		card := s.generator.Build(userID, ref, to.Rarity, FusedStats(mats, to.FusionMultiplier))

		for _, id := range materialIDs {
			state.RemoveCard(id)
		}
		state.Inventory = append(state.Inventory, card)
		state.Stats.CardsFused++
		if m, done := missions.Advance(state, now, missions.DailyFuse, 1); done {
			completed = append(completed, m)
		}

		res = Result{
			Card:     card.Clone(),
			Consumed: append([]model.CardID(nil), materialIDs...),
			Cost:     from.FusionCost,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	missions.NotifyCompleted(s.sink, userID, now, completed)

	s.logger.Info("cards fused",
		slog.String("player_id", string(userID)),
		slog.String("card_id", string(res.Card.ID)),
		slog.String("rarity", string(res.Card.Rarity)),
	)
	return &res, nil
}
