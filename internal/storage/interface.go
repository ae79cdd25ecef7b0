package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcoot/aicardgame-go/internal/model"
)

// ErrUnavailable marks a persistence failure. Callers must treat it as fatal
// for the current operation, never as a gameplay rejection.
var ErrUnavailable = errors.New("storage unavailable")

// ErrNotQueued is returned by ClaimOpponent when the caller is no longer in
// the queue, usually because another player claimed them first
var ErrNotQueued = errors.New("player is not queued")

// UnavailableError wraps a backend failure so it matches ErrUnavailable
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is reports ErrUnavailable as a match
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// Unavailable wraps err as an UnavailableError. A nil err stays nil.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UnavailableError{Op: op, Err: err}
}

// Storage defines the interface for data persistence.
// Writes are last-write-wins per key.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)

	// Game state operations
	GetGameState(ctx context.Context, id model.PlayerID) (*model.GameState, error)
	SaveGameState(ctx context.Context, state *model.GameState) error
	ListGameStates(ctx context.Context) ([]*model.GameState, error)

	// Match history operations
	SaveMatch(ctx context.Context, match *model.PvPMatch) error
	GetMatch(ctx context.Context, id model.MatchID) (*model.PvPMatch, error)
	ListMatchesForPlayer(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.PvPMatch, error)

	// Ranking operations
	SaveRankingSnapshot(ctx context.Context, snapshot *model.RankingSnapshot) error
	GetRankingSnapshot(ctx context.Context) (*model.RankingSnapshot, error)
}

// MatchQueue is the shared live matchmaking queue. Its state is remote and
// may change between calls; only ClaimOpponent is atomic.
type MatchQueue interface {
	// Join adds or replaces the player's queue entry
	Join(ctx context.Context, entry *model.QueueEntry) error
	// Leave removes the player from the queue and drops any pending
	// assignment. Leaving twice is not an error.
	Leave(ctx context.Context, playerID model.PlayerID) error
	// ClaimOpponent removes self from the queue and claims the closest-rated
	// entry in the same mode and genre within window. If none is found self is re-queued
	// and nil is returned. Returns ErrNotQueued if self was already claimed.
	ClaimOpponent(ctx context.Context, self *model.QueueEntry, window int) (*model.QueueEntry, error)
	// Assign records the match a claimed player has been placed into
	Assign(ctx context.Context, playerID model.PlayerID, matchID model.MatchID) error
	// TakeAssignment returns and clears the player's pending match assignment
	TakeAssignment(ctx context.Context, playerID model.PlayerID) (model.MatchID, bool, error)
}
