package memory

import (
	"context"
	"sync"

	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/storage"
)

// Queue is an in-process live matchmaking queue
type Queue struct {
	mu          sync.Mutex
	entries     map[model.PlayerID]*model.QueueEntry
	assignments map[model.PlayerID]model.MatchID
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{
		entries:     make(map[model.PlayerID]*model.QueueEntry),
		assignments: make(map[model.PlayerID]model.MatchID),
	}
}

// Ensure Queue implements the interface
var _ storage.MatchQueue = (*Queue)(nil)

func (q *Queue) Join(ctx context.Context, entry *model.QueueEntry) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	cp := *entry
	q.entries[entry.Player.ID] = &cp
	return nil
}

func (q *Queue) Leave(ctx context.Context, playerID model.PlayerID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.entries, playerID)
	delete(q.assignments, playerID)
	return nil
}

func (q *Queue) ClaimOpponent(ctx context.Context, self *model.QueueEntry, window int) (*model.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.entries[self.Player.ID]; !ok {
		return nil, storage.ErrNotQueued
	}

	candidates := make([]*model.QueueEntry, 0, len(q.entries))
	for _, e := range q.entries {
		candidates = append(candidates, e)
	}
	ranked := storage.RankOpponents(self, candidates, window)
	if len(ranked) == 0 {
		return nil, nil
	}

	opponent := ranked[0]
	delete(q.entries, self.Player.ID)
	delete(q.entries, opponent.Player.ID)
	cp := *opponent
	return &cp, nil
}

func (q *Queue) Assign(ctx context.Context, playerID model.PlayerID, matchID model.MatchID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.assignments[playerID] = matchID
	return nil
}

func (q *Queue) TakeAssignment(ctx context.Context, playerID model.PlayerID) (model.MatchID, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	id, ok := q.assignments[playerID]
	if ok {
		delete(q.assignments, playerID)
	}
	return id, ok, nil
}

// Pending reports whether the player has an assignment waiting
func (q *Queue) Pending(playerID model.PlayerID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.assignments[playerID]
	return ok
}

// Len returns the number of queued players
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
