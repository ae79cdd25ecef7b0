package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/storage"
)

// Queue is a Redis-backed live matchmaking queue. Each mode and genre pair
// has a sorted set of player IDs scored by rating; entry bodies live in a
// shared hash. A claim succeeds only for the caller whose ZREM removes the member.
type Queue struct {
	client *redis.Client
	cfg    Config
}

// NewQueue creates a queue on an existing client
func NewQueue(client *redis.Client, cfg Config) *Queue {
	return &Queue{client: client, cfg: cfg}
}

// Ensure Queue implements the interface
var _ storage.MatchQueue = (*Queue)(nil)

func (q *Queue) Join(ctx context.Context, entry *model.QueueEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	// A rejoin may move the player to a different pool
	if err := q.unpool(ctx, entry.Player.ID); err != nil {
		return err
	}

	id := string(entry.Player.ID)
	pipe := q.client.TxPipeline()
	pipe.HSet(ctx, queueEntriesKey(), id, data)
	pipe.ZAdd(ctx, queuePoolKey(entry.Mode, entry.Genre), redis.Z{Score: float64(entry.Player.Rating), Member: id})
	_, err = pipe.Exec(ctx)
	return storage.Unavailable("queue join", err)
}

func (q *Queue) Leave(ctx context.Context, playerID model.PlayerID) error {
	if err := q.unpool(ctx, playerID); err != nil {
		return err
	}
	pipe := q.client.TxPipeline()
	pipe.HDel(ctx, queueEntriesKey(), string(playerID))
	pipe.Del(ctx, assignmentKey(playerID))
	_, err := pipe.Exec(ctx)
	return storage.Unavailable("queue leave", err)
}

// unpool removes the player from the sorted set named by their stored entry
func (q *Queue) unpool(ctx context.Context, playerID model.PlayerID) error {
	data, err := q.client.HGet(ctx, queueEntriesKey(), string(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return storage.Unavailable("queue lookup", err)
	}
	var entry model.QueueEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return err
	}
	return storage.Unavailable("queue leave",
		q.client.ZRem(ctx, queuePoolKey(entry.Mode, entry.Genre), string(playerID)).Err())
}

func (q *Queue) ClaimOpponent(ctx context.Context, self *model.QueueEntry, window int) (*model.QueueEntry, error) {
	poolKey := queuePoolKey(self.Mode, self.Genre)
	selfID := string(self.Player.ID)

	removed, err := q.client.ZRem(ctx, poolKey, selfID).Result()
	if err != nil {
		return nil, storage.Unavailable("queue claim", err)
	}
	if removed == 0 {
		return nil, storage.ErrNotQueued
	}

	opponent, err := q.claim(ctx, self, window)
	if err != nil || opponent == nil {
		// Put self back so others can still find us
		requeue := q.client.ZAdd(ctx, poolKey, redis.Z{Score: float64(self.Player.Rating), Member: selfID}).Err()
		if err != nil {
			return nil, err
		}
		return nil, storage.Unavailable("queue requeue", requeue)
	}

	if err := q.client.HDel(ctx, queueEntriesKey(), selfID, string(opponent.Player.ID)).Err(); err != nil {
		return nil, storage.Unavailable("queue claim", err)
	}
	return opponent, nil
}

// claim tries candidates in preference order until one ZREM succeeds
func (q *Queue) claim(ctx context.Context, self *model.QueueEntry, window int) (*model.QueueEntry, error) {
	poolKey := queuePoolKey(self.Mode, self.Genre)
	ids, err := q.client.ZRangeByScore(ctx, poolKey, &redis.ZRangeBy{
		Min: strconv.Itoa(self.Player.Rating - window),
		Max: strconv.Itoa(self.Player.Rating + window),
	}).Result()
	if err != nil {
		return nil, storage.Unavailable("queue scan", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	vals, err := q.client.HMGet(ctx, queueEntriesKey(), ids...).Result()
	if err != nil {
		return nil, storage.Unavailable("queue scan", err)
	}

	candidates := make([]*model.QueueEntry, 0, len(vals))
	for _, val := range vals {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var e model.QueueEntry
		if err := json.Unmarshal([]byte(str), &e); err != nil {
			continue
		}
		candidates = append(candidates, &e)
	}

	for _, c := range storage.RankOpponents(self, candidates, window) {
		n, err := q.client.ZRem(ctx, poolKey, string(c.Player.ID)).Result()
		if err != nil {
			return nil, storage.Unavailable("queue claim", err)
		}
		if n == 1 {
			return c, nil
		}
	}
	return nil, nil
}

func (q *Queue) Assign(ctx context.Context, playerID model.PlayerID, matchID model.MatchID) error {
	return storage.Unavailable("queue assign",
		q.client.Set(ctx, assignmentKey(playerID), string(matchID), q.cfg.AssignmentTTL).Err())
}

func (q *Queue) TakeAssignment(ctx context.Context, playerID model.PlayerID) (model.MatchID, bool, error) {
	id, err := q.client.GetDel(ctx, assignmentKey(playerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, storage.Unavailable("queue take assignment", err)
	}
	return model.MatchID(id), true, nil
}
