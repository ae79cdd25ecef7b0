// Package production manages faction unlocks, slot placement and timed card generation.
package production

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/aicardgame-go/internal/catalog"
	"github.com/mcoot/aicardgame-go/internal/dependencies/clock"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/notify"
	"github.com/mcoot/aicardgame-go/internal/services/cards"
	"github.com/mcoot/aicardgame-go/internal/services/gamestate"
	"github.com/mcoot/aicardgame-go/internal/services/synergy"
)

// BaseFragments is the fragment yield of every claim before bonuses
const BaseFragments = 1

// ClaimResult describes a collected generation
type ClaimResult struct {
	Card      *model.Card       `json:"card"`
	Fragments int               `json:"fragments"`
	Slot      model.FactionSlot `json:"slot"`
}

// Service runs faction production
type Service struct {
	state     *gamestate.Service
	catalog   *catalog.Catalog
	synergy   *synergy.Engine
	generator *cards.Generator
	clock     clock.Clock
	sink      notify.Sink
	logger    *slog.Logger
}

// New creates a new production service
func New(
	state *gamestate.Service,
	catalog *catalog.Catalog,
	synergy *synergy.Engine,
	generator *cards.Generator,
	clock clock.Clock,
	sink notify.Sink,
	logger *slog.Logger,
) *Service {
	return &Service{
		state:     state,
		catalog:   catalog,
		synergy:   synergy,
		generator: generator,
		clock:     clock,
		sink:      sink,
		logger:    logger.With(slog.String("component", "production")),
	}
}

// interval returns the faction's generation time under the current synergy
func (s *Service) interval(faction *model.Faction, slots []model.FactionSlot) time.Duration {
	reduction := s.synergy.Calculate(slots).TimeReduction
	return time.Duration(float64(faction.BaseGenerationTime()) * (1 - reduction))
}

// UnlockFaction buys a faction
func (s *Service) UnlockFaction(ctx context.Context, userID model.PlayerID, factionID model.FactionID) (*model.GameState, error) {
	faction, ok := s.catalog.Faction(factionID)
	if !ok {
		return nil, model.ErrUnknownFaction
	}

	state, err := s.state.Mutate(ctx, userID, func(state *model.GameState) error {
		if state.HasFaction(factionID) {
			return model.ErrAlreadyUnlocked
		}
		if err := gamestate.Spend(state, faction.UnlockCost); err != nil {
			return err
		}
		state.UnlockedFactions = append(state.UnlockedFactions, factionID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("faction unlocked",
		slog.String("player_id", string(userID)),
		slog.String("faction_id", string(factionID)),
		slog.Int("cost", faction.UnlockCost),
	)
	return state, nil
}

// PlaceFaction assigns an unlocked faction to a slot. Slot 0 picks the first empty slot.
func (s *Service) PlaceFaction(ctx context.Context, userID model.PlayerID, factionID model.FactionID, slotNumber int) (*model.FactionSlot, error) {
	faction, ok := s.catalog.Faction(factionID)
	if !ok {
		return nil, model.ErrUnknownFaction
	}

	var placed model.FactionSlot
	now := s.clock.Now()
	_, err := s.state.Mutate(ctx, userID, func(state *model.GameState) error {
		if !state.HasFaction(factionID) {
			return model.ErrFactionLocked
		}
		if state.SlotOf(factionID) != nil {
			return model.ErrFactionAlreadyPlaced
		}

		slot, err := pickSlot(state, slotNumber)
		if err != nil {
			return err
		}

		id := factionID
		slot.FactionID = &id
		next := now.Add(s.interval(faction, state.Slots))
		slot.LastGeneration = nil
		slot.NextGeneration = &next
		placed = *slot
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("faction placed",
		slog.String("player_id", string(userID)),
		slog.String("faction_id", string(factionID)),
		slog.Int("slot", placed.SlotNumber),
	)
	return &placed, nil
}

func pickSlot(state *model.GameState, number int) (*model.FactionSlot, error) {
	if number == 0 {
		for i := range state.Slots {
			if state.Slots[i].IsEmpty() {
				return &state.Slots[i], nil
			}
		}
		return nil, model.ErrNoEmptySlot
	}
	slot := state.Slot(number)
	if slot == nil {
		return nil, model.ErrInvalidSlot
	}
	if !slot.IsEmpty() {
		return nil, model.ErrSlotOccupied
	}
	return slot, nil
}

// ClearSlot removes the faction from a slot
func (s *Service) ClearSlot(ctx context.Context, userID model.PlayerID, slotNumber int) error {
	_, err := s.state.Mutate(ctx, userID, func(state *model.GameState) error {
		slot := state.Slot(slotNumber)
		if slot == nil {
			return model.ErrInvalidSlot
		}
		if slot.IsEmpty() {
			return model.ErrSlotEmpty
		}
		*slot = model.FactionSlot{SlotNumber: slot.SlotNumber}
		return nil
	})
	return err
}

// Claim collects a finished generation and restarts the slot timer
func (s *Service) Claim(ctx context.Context, userID model.PlayerID, slotNumber int) (*ClaimResult, error) {
	var res ClaimResult
	now := s.clock.Now()

	_, err := s.state.Mutate(ctx, userID, func(state *model.GameState) error {
		slot := state.Slot(slotNumber)
		if slot == nil {
			return model.ErrInvalidSlot
		}
		if slot.IsEmpty() {
			return model.ErrSlotEmpty
		}
		if slot.NextGeneration != nil && now.Before(*slot.NextGeneration) {
			return model.ErrNotReady
		}
		faction, ok := s.catalog.Faction(*slot.FactionID)
		if !ok {
			return model.ErrUnknownFaction
		}

		card, err := s.generator.FromFaction(userID, faction.ID)
		if err != nil {
			return err
		}
		fragments := BaseFragments + s.synergy.Calculate(state.Slots).FragmentBonus

		state.Inventory = append(state.Inventory, card)
		state.Fragments += fragments
		next := now.Add(s.interval(faction, state.Slots))
		last := now
		slot.LastGeneration = &last
		slot.NextGeneration = &next

		res = ClaimResult{Card: card.Clone(), Fragments: fragments, Slot: *slot}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sink.Notify(model.Event{
		Type:      model.EventCardGenerated,
		Timestamp: now,
		PlayerID:  userID,
		Payload:   model.CardGeneratedPayload{Card: *res.Card, Fragments: res.Fragments},
	})
	s.logger.Info("card generated",
		slog.String("player_id", string(userID)),
		slog.String("card_id", string(res.Card.ID)),
		slog.String("rarity", string(res.Card.Rarity)),
	)
	return &res, nil
}

// ClaimBonusCards generates every pending level-up bonus card
func (s *Service) ClaimBonusCards(ctx context.Context, userID model.PlayerID) ([]*model.Card, error) {
	var granted []*model.Card
	_, err := s.state.Mutate(ctx, userID, func(state *model.GameState) error {
		granted = nil
		if state.PendingBonusCards == 0 {
			return model.ErrNotReady
		}
		for i := 0; i < state.PendingBonusCards; i++ {
			card, err := s.generator.Random(userID)
			if err != nil {
				return err
			}
			state.Inventory = append(state.Inventory, card)
			granted = append(granted, card.Clone())
		}
		state.PendingBonusCards = 0
		return nil
	})
	if err != nil {
		return nil, err
	}
	return granted, nil
}
