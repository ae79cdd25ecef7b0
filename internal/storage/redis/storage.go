package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, storage.Unavailable("ping", err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Client exposes the underlying client so the match queue can share it
func (s *Storage) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// getJSON loads key into out, mapping a missing key to notFound
func (s *Storage) getJSON(ctx context.Context, key string, out any, notFound error) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return storage.Unavailable("get", err)
	}
	return json.Unmarshal(data, out)
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Apply TTL only for guest players
	var ttl time.Duration
	if player.IsGuest {
		ttl = s.cfg.GuestPlayerTTL
	}

	return storage.Unavailable("save player", s.client.Set(ctx, playerKey(player.ID), data, ttl).Err())
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var player model.Player
	if err := s.getJSON(ctx, playerKey(id), &player, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	return storage.Unavailable("delete player", s.client.Del(ctx, playerKey(id)).Err())
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	data, err := json.Marshal(rp)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, registeredPlayerKey(rp.PlayerID), data, 0)
	pipe.Set(ctx, usernameIndexKey(rp.Username), string(rp.PlayerID), 0)
	_, err = pipe.Exec(ctx)
	return storage.Unavailable("save registered player", err)
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	var rp model.RegisteredPlayer
	if err := s.getJSON(ctx, registeredPlayerKey(playerID), &rp, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &rp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	playerIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, storage.Unavailable("get username", err)
	}

	return s.GetRegisteredPlayer(ctx, model.PlayerID(playerIDStr))
}

// Game state operations

func (s *Storage) GetGameState(ctx context.Context, id model.PlayerID) (*model.GameState, error) {
	var state model.GameState
	if err := s.getJSON(ctx, gameStateKey(id), &state, model.ErrStateNotFound); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Storage) SaveGameState(ctx context.Context, state *model.GameState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, gameStateKey(state.UserID), data, 0)
	pipe.SAdd(ctx, gameStatesIndexKey(), string(state.UserID))
	_, err = pipe.Exec(ctx)
	return storage.Unavailable("save game state", err)
}

func (s *Storage) ListGameStates(ctx context.Context) ([]*model.GameState, error) {
	ids, err := s.client.SMembers(ctx, gameStatesIndexKey()).Result()
	if err != nil {
		return nil, storage.Unavailable("list game states", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameStateKey(model.PlayerID(id))
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storage.Unavailable("list game states", err)
	}

	states := make([]*model.GameState, 0, len(vals))
	for _, val := range vals {
		if val == nil {
			continue
		}
		var state model.GameState
		if err := json.Unmarshal([]byte(val.(string)), &state); err != nil {
			continue // Skip invalid data
		}
		states = append(states, &state)
	}
	return states, nil
}

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.PvPMatch) error {
	data, err := json.Marshal(match)
	if err != nil {
		return err
	}

	score := float64(match.StartTime.UnixMilli())
	pipe := s.client.Pipeline()
	pipe.Set(ctx, matchKey(match.ID), data, s.cfg.MatchTTL)
	for _, pid := range []model.PlayerID{match.Player1.ID, match.Player2.ID} {
		indexKey := playerMatchesIndexKey(pid)
		pipe.ZAdd(ctx, indexKey, redis.Z{Score: score, Member: string(match.ID)})
		if s.cfg.MatchTTL > 0 {
			pipe.Expire(ctx, indexKey, s.cfg.MatchTTL) // Keep index TTL in sync
		}
	}
	_, err = pipe.Exec(ctx)
	return storage.Unavailable("save match", err)
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.PvPMatch, error) {
	var match model.PvPMatch
	if err := s.getJSON(ctx, matchKey(id), &match, model.ErrMatchNotFound); err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *Storage) ListMatchesForPlayer(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.PvPMatch, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	ids, err := s.client.ZRevRange(ctx, playerMatchesIndexKey(playerID), 0, stop).Result()
	if err != nil {
		return nil, storage.Unavailable("list matches", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = matchKey(model.MatchID(id))
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storage.Unavailable("list matches", err)
	}

	matches := make([]*model.PvPMatch, 0, len(vals))
	for _, val := range vals {
		if val == nil {
			continue // Expired
		}
		var match model.PvPMatch
		if err := json.Unmarshal([]byte(val.(string)), &match); err != nil {
			continue
		}
		matches = append(matches, &match)
	}
	return matches, nil
}

// Ranking operations

func (s *Storage) SaveRankingSnapshot(ctx context.Context, snapshot *model.RankingSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return storage.Unavailable("save rankings", s.client.Set(ctx, rankingsKey(), data, 0).Err())
}

func (s *Storage) GetRankingSnapshot(ctx context.Context) (*model.RankingSnapshot, error) {
	var snapshot model.RankingSnapshot
	if err := s.getJSON(ctx, rankingsKey(), &snapshot, model.ErrRankingNotFound); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
