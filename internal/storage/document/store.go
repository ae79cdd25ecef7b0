// Package document adapts a flat key/value document backend to storage.Storage.
// SQL backends only need to persist JSON blobs keyed by string and grouped by kind.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/storage"
)

// ErrNotFound is returned by a Backend when a key does not exist
var ErrNotFound = errors.New("document not found")

// Document kinds
const (
	KindPlayer           = "player"
	KindRegisteredPlayer = "registered_player"
	KindUsername         = "username"
	KindGameState        = "game_state"
	KindMatch            = "match"
	KindRanking          = "ranking"
)

// Backend persists opaque documents
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, kind, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, kind string) ([][]byte, error)
	Close() error
}

// Store implements storage.Storage over a Backend
type Store struct {
	backend Backend
}

// New wraps backend
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Close closes the backend
func (s *Store) Close() error {
	return s.backend.Close()
}

var _ storage.Storage = (*Store)(nil)

func key(kind, id string) string {
	return kind + ":" + id
}

func (s *Store) put(ctx context.Context, op, kind, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return storage.Unavailable(op, s.backend.Put(ctx, kind, key(kind, id), data))
}

func (s *Store) get(ctx context.Context, op, kind, id string, out any, notFound error) error {
	data, err := s.backend.Get(ctx, key(kind, id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound
		}
		return storage.Unavailable(op, err)
	}
	return json.Unmarshal(data, out)
}

// Player operations

func (s *Store) SavePlayer(ctx context.Context, player *model.Player) error {
	return s.put(ctx, "save player", KindPlayer, string(player.ID), player)
}

func (s *Store) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var player model.Player
	if err := s.get(ctx, "get player", KindPlayer, string(id), &player, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Store) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	return storage.Unavailable("delete player", s.backend.Delete(ctx, key(KindPlayer, string(id))))
}

// Registered player operations

func (s *Store) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	if err := s.put(ctx, "save registered player", KindRegisteredPlayer, string(rp.PlayerID), rp); err != nil {
		return err
	}
	return s.put(ctx, "save username", KindUsername, rp.Username, rp.PlayerID)
}

func (s *Store) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	var rp model.RegisteredPlayer
	if err := s.get(ctx, "get registered player", KindRegisteredPlayer, string(playerID), &rp, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &rp, nil
}

func (s *Store) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	var playerID model.PlayerID
	if err := s.get(ctx, "get username", KindUsername, username, &playerID, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return s.GetRegisteredPlayer(ctx, playerID)
}

// Game state operations

func (s *Store) GetGameState(ctx context.Context, id model.PlayerID) (*model.GameState, error) {
	var state model.GameState
	if err := s.get(ctx, "get game state", KindGameState, string(id), &state, model.ErrStateNotFound); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Store) SaveGameState(ctx context.Context, state *model.GameState) error {
	return s.put(ctx, "save game state", KindGameState, string(state.UserID), state)
}

func (s *Store) ListGameStates(ctx context.Context) ([]*model.GameState, error) {
	docs, err := s.backend.List(ctx, KindGameState)
	if err != nil {
		return nil, storage.Unavailable("list game states", err)
	}
	states := make([]*model.GameState, 0, len(docs))
	for _, doc := range docs {
		var state model.GameState
		if err := json.Unmarshal(doc, &state); err != nil {
			continue
		}
		states = append(states, &state)
	}
	return states, nil
}

// Match operations

func (s *Store) SaveMatch(ctx context.Context, match *model.PvPMatch) error {
	return s.put(ctx, "save match", KindMatch, string(match.ID), match)
}

func (s *Store) GetMatch(ctx context.Context, id model.MatchID) (*model.PvPMatch, error) {
	var match model.PvPMatch
	if err := s.get(ctx, "get match", KindMatch, string(id), &match, model.ErrMatchNotFound); err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *Store) ListMatchesForPlayer(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.PvPMatch, error) {
	docs, err := s.backend.List(ctx, KindMatch)
	if err != nil {
		return nil, storage.Unavailable("list matches", err)
	}

	var matches []*model.PvPMatch
	for _, doc := range docs {
		var match model.PvPMatch
		if err := json.Unmarshal(doc, &match); err != nil {
			continue
		}
		if match.Player1.ID == playerID || match.Player2.ID == playerID {
			matches = append(matches, &match)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].StartTime.After(matches[j].StartTime)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Ranking operations

func (s *Store) SaveRankingSnapshot(ctx context.Context, snapshot *model.RankingSnapshot) error {
	return s.put(ctx, "save rankings", KindRanking, "current", snapshot)
}

func (s *Store) GetRankingSnapshot(ctx context.Context) (*model.RankingSnapshot, error) {
	var snapshot model.RankingSnapshot
	if err := s.get(ctx, "get rankings", KindRanking, "current", &snapshot, model.ErrRankingNotFound); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
