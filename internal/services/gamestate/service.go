// Package gamestate owns the persistent per-player GameState and serializes
// every mutation per player.
package gamestate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/aicardgame-go/internal/catalog"
	"github.com/mcoot/aicardgame-go/internal/dependencies/clock"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/storage"
)

// DefaultNickname is used for states created without a known player name
const DefaultNickname = "Player"

// Service loads, creates and mutates game states
type Service struct {
	storage storage.Storage
	catalog *catalog.Catalog
	clock   clock.Clock
	logger  *slog.Logger
	locks   *userLocks
}

// New creates a new game state service
func New(storage storage.Storage, catalog *catalog.Catalog, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		catalog: catalog,
		clock:   clock,
		logger:  logger.With(slog.String("component", "gamestate")),
		locks:   newUserLocks(),
	}
}

// NewState builds the starting state for a player
func (s *Service) NewState(userID model.PlayerID, nickname string) *model.GameState {
	if nickname == "" {
		nickname = DefaultNickname
	}
	now := s.clock.Now()
	return &model.GameState{
		UserID:           userID,
		Nickname:         nickname,
		Level:            1,
		Tokens:           model.StartingTokens,
		Rating:           model.StartingRating,
		Inventory:        []*model.Card{},
		UnlockedFactions: []model.FactionID{s.catalog.StarterFaction},
		Slots:            model.EmptySlots(),
		DailyMissions: model.DailyMissions{
			Date:     clock.DayKey(now),
			Progress: map[string]int{},
			Claimed:  map[string]bool{},
		},
		CreatedAt: now,
		LastSaved: now,
	}
}

// Get returns the player's state, creating and saving a default one if none exists
func (s *Service) Get(ctx context.Context, userID model.PlayerID) (*model.GameState, error) {
	unlock := s.locks.lock(userID)
	defer unlock()
	return s.load(ctx, userID)
}

// Init creates the player's state with the given nickname if it does not exist
func (s *Service) Init(ctx context.Context, userID model.PlayerID, nickname string) (*model.GameState, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	state, err := s.storage.GetGameState(ctx, userID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, model.ErrStateNotFound) {
		return nil, err
	}
	state = s.NewState(userID, nickname)
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Save persists the state and stamps LastSaved
func (s *Service) Save(ctx context.Context, state *model.GameState) error {
	unlock := s.locks.lock(state.UserID)
	defer unlock()
	return s.save(ctx, state)
}

func (s *Service) load(ctx context.Context, userID model.PlayerID) (*model.GameState, error) {
	state, err := s.storage.GetGameState(ctx, userID)
	if err == nil {
		normalize(state)
		return state, nil
	}
	if !errors.Is(err, model.ErrStateNotFound) {
		s.logger.Error("failed to load game state",
			slog.String("player_id", string(userID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	state = s.NewState(userID, "")
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	s.logger.Info("game state created", slog.String("player_id", string(userID)))
	return state, nil
}

func (s *Service) save(ctx context.Context, state *model.GameState) error {
	state.LastSaved = s.clock.Now()
	if err := s.storage.SaveGameState(ctx, state); err != nil {
		s.logger.Error("failed to save game state",
			slog.String("player_id", string(state.UserID)),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// normalize repairs states written by older versions
func normalize(state *model.GameState) {
	if len(state.Slots) != model.SlotCount {
		slots := model.EmptySlots()
		for _, old := range state.Slots {
			if old.SlotNumber >= 1 && old.SlotNumber <= model.SlotCount {
				slots[old.SlotNumber-1] = old
			}
		}
		state.Slots = slots
	}
	if state.Level < 1 {
		state.Level = model.LevelForExperience(state.TotalExperience)
	}
	if state.DailyMissions.Progress == nil {
		state.DailyMissions.Progress = map[string]int{}
	}
	if state.DailyMissions.Claimed == nil {
		state.DailyMissions.Claimed = map[string]bool{}
	}
}

// Mutate runs fn against a copy of the player's state while holding the
// player's lock. The copy is saved only if fn succeeds.
func (s *Service) Mutate(ctx context.Context, userID model.PlayerID, fn func(state *model.GameState) error) (*model.GameState, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	current, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// AddTokens credits tokens
func (s *Service) AddTokens(ctx context.Context, userID model.PlayerID, amount int) (*model.GameState, error) {
	return s.Mutate(ctx, userID, func(state *model.GameState) error {
		return Credit(state, amount)
	})
}

// SpendTokens debits tokens, failing with ErrInsufficientFunds if the balance is too low
func (s *Service) SpendTokens(ctx context.Context, userID model.PlayerID, amount int) (*model.GameState, error) {
	return s.Mutate(ctx, userID, func(state *model.GameState) error {
		return Spend(state, amount)
	})
}

// AddExperience grants experience and any level-up rewards
func (s *Service) AddExperience(ctx context.Context, userID model.PlayerID, amount int) (*model.GameState, LevelUp, error) {
	var up LevelUp
	state, err := s.Mutate(ctx, userID, func(state *model.GameState) error {
		var err error
		up, err = ApplyExperience(state, amount)
		return err
	})
	if err != nil {
		return nil, LevelUp{}, err
	}
	if up.Gained() {
		s.logger.Info("player levelled up",
			slog.String("player_id", string(userID)),
			slog.Int("old_level", up.OldLevel),
			slog.Int("new_level", up.NewLevel),
		)
	}
	return state, up, nil
}

// AddCard appends a card to the inventory
func (s *Service) AddCard(ctx context.Context, userID model.PlayerID, card *model.Card) (*model.GameState, error) {
	return s.Mutate(ctx, userID, func(state *model.GameState) error {
		c := card.Clone()
		c.OwnerID = userID
		state.Inventory = append(state.Inventory, c)
		return nil
	})
}

// RemoveCard deletes a card from the inventory
func (s *Service) RemoveCard(ctx context.Context, userID model.PlayerID, cardID model.CardID) (*model.GameState, error) {
	return s.Mutate(ctx, userID, func(state *model.GameState) error {
		if !state.RemoveCard(cardID) {
			return model.ErrCardNotFound
		}
		return nil
	})
}

// UpdateCard replaces an inventory card with the same ID
func (s *Service) UpdateCard(ctx context.Context, userID model.PlayerID, card *model.Card) (*model.GameState, error) {
	return s.Mutate(ctx, userID, func(state *model.GameState) error {
		for i, c := range state.Inventory {
			if c.ID == card.ID {
				updated := card.Clone()
				updated.OwnerID = userID
				updated.Stats.Recompute()
				state.Inventory[i] = updated
				return nil
			}
		}
		return model.ErrCardNotFound
	})
}

// SetCardLock marks a card as locked or unlocked
func (s *Service) SetCardLock(ctx context.Context, userID model.PlayerID, cardID model.CardID, locked bool) (*model.GameState, error) {
	return s.Mutate(ctx, userID, func(state *model.GameState) error {
		card := state.FindCard(cardID)
		if card == nil {
			return model.ErrCardNotFound
		}
		card.IsLocked = locked
		return nil
	})
}

// RecordBattleResult updates battle counters
func (s *Service) RecordBattleResult(ctx context.Context, userID model.PlayerID, outcome model.BattleOutcome) (*model.GameState, error) {
	return s.Mutate(ctx, userID, func(state *model.GameState) error {
		ApplyBattleResult(state, outcome)
		return nil
	})
}

// UnlockFaction adds a faction to the unlocked set without charging for it
func (s *Service) UnlockFaction(ctx context.Context, userID model.PlayerID, factionID model.FactionID) (*model.GameState, error) {
	return s.Mutate(ctx, userID, func(state *model.GameState) error {
		if state.HasFaction(factionID) {
			return model.ErrAlreadyUnlocked
		}
		state.UnlockedFactions = append(state.UnlockedFactions, factionID)
		return nil
	})
}

// SetNickname changes the display name on the state
func (s *Service) SetNickname(ctx context.Context, userID model.PlayerID, nickname string) (*model.GameState, error) {
	return s.Mutate(ctx, userID, func(state *model.GameState) error {
		state.Nickname = nickname
		return nil
	})
}
