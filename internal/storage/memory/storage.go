package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Values are copied on the way in and out so callers never share state.
type Storage struct {
	mu sync.RWMutex

	players           map[model.PlayerID]*model.Player
	registeredPlayers map[model.PlayerID]*model.RegisteredPlayer
	usernameIndex     map[string]model.PlayerID
	gameStates        map[model.PlayerID]*model.GameState
	matches           map[model.MatchID]*model.PvPMatch
	rankings          *model.RankingSnapshot
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[model.PlayerID]*model.RegisteredPlayer),
		usernameIndex:     make(map[string]model.PlayerID),
		gameStates:        make(map[model.PlayerID]*model.GameState),
		matches:           make(map[model.MatchID]*model.PvPMatch),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *player
	s.players[player.ID] = &cp
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *player
	return &cp, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rp
	s.registeredPlayers[rp.PlayerID] = &cp
	s.usernameIndex[rp.Username] = rp.PlayerID
	return nil
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *rp
	return &cp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *rp
	return &cp, nil
}

// Game state operations

func (s *Storage) GetGameState(ctx context.Context, id model.PlayerID) (*model.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.gameStates[id]
	if !ok {
		return nil, model.ErrStateNotFound
	}
	return state.Clone(), nil
}

func (s *Storage) SaveGameState(ctx context.Context, state *model.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameStates[state.UserID] = state.Clone()
	return nil
}

func (s *Storage) ListGameStates(ctx context.Context) ([]*model.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	states := make([]*model.GameState, 0, len(s.gameStates))
	for _, state := range s.gameStates {
		states = append(states, state.Clone())
	}
	return states, nil
}

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.PvPMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *match
	s.matches[match.ID] = &cp
	return nil
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.PvPMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match, ok := s.matches[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	cp := *match
	return &cp, nil
}

func (s *Storage) ListMatchesForPlayer(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.PvPMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []*model.PvPMatch
	for _, m := range s.matches {
		if m.Player1.ID == playerID || m.Player2.ID == playerID {
			cp := *m
			matches = append(matches, &cp)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].StartTime.After(matches[j].StartTime)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Ranking operations

func (s *Storage) SaveRankingSnapshot(ctx context.Context, snapshot *model.RankingSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *snapshot
	cp.Entries = append([]model.RankingEntry(nil), snapshot.Entries...)
	s.rankings = &cp
	return nil
}

func (s *Storage) GetRankingSnapshot(ctx context.Context) (*model.RankingSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rankings == nil {
		return nil, model.ErrRankingNotFound
	}
	cp := *s.rankings
	cp.Entries = append([]model.RankingEntry(nil), s.rankings.Entries...)
	return &cp, nil
}
