package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/storage"
	"github.com/mcoot/aicardgame-go/internal/storage/storagetest"
)

func newMiniClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mini, client
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.StorageSuite{
		NewStorage: func() storage.Storage {
			_, client := newMiniClient(t)
			return NewWithClient(client, DefaultConfig())
		},
	})
}

func TestQueueSuite(t *testing.T) {
	suite.Run(t, &storagetest.QueueSuite{
		NewQueue: func() storage.MatchQueue {
			_, client := newMiniClient(t)
			return NewQueue(client, DefaultConfig())
		},
	})
}

func TestGuestPlayerExpires(t *testing.T) {
	mini, client := newMiniClient(t)
	cfg := DefaultConfig()
	cfg.GuestPlayerTTL = time.Hour
	s := NewWithClient(client, cfg)
	ctx := context.Background()

	require.NoError(t, s.SavePlayer(ctx, &model.Player{ID: "guest", IsGuest: true}))
	require.NoError(t, s.SavePlayer(ctx, &model.Player{ID: "member"}))

	mini.FastForward(2 * time.Hour)

	_, err := s.GetPlayer(ctx, "guest")
	assert.ErrorIs(t, err, model.ErrPlayerNotFound)
	_, err = s.GetPlayer(ctx, "member")
	assert.NoError(t, err)
}

func TestGameStateUsesPrefixedKey(t *testing.T) {
	mini, client := newMiniClient(t)
	s := NewWithClient(client, DefaultConfig())

	require.NoError(t, s.SaveGameState(context.Background(), &model.GameState{UserID: "alice", Tokens: 10}))
	assert.True(t, mini.Exists("cardgame:game-state:alice"))
}

func TestAssignmentExpires(t *testing.T) {
	mini, client := newMiniClient(t)
	cfg := DefaultConfig()
	cfg.AssignmentTTL = time.Minute
	q := NewQueue(client, cfg)
	ctx := context.Background()

	require.NoError(t, q.Assign(ctx, "alice", "m1"))
	mini.FastForward(2 * time.Minute)

	_, ok, err := q.TakeAssignment(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBackendFailureIsUnavailable(t *testing.T) {
	mini, client := newMiniClient(t)
	s := NewWithClient(client, DefaultConfig())
	mini.Close()

	_, err := s.GetGameState(context.Background(), "alice")
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.NotErrorIs(t, err, model.ErrStateNotFound)
}
