// Package ranking maintains the leaderboard read model.
package ranking

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/mcoot/aicardgame-go/internal/dependencies/clock"
	"github.com/mcoot/aicardgame-go/internal/dependencies/scheduler"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/notify"
	"github.com/mcoot/aicardgame-go/internal/storage"
)

// RefreshJobName names the periodic leaderboard rebuild
const RefreshJobName = "ranking-refresh"

// Service rebuilds and serves leaderboard snapshots
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	sink    notify.Sink
	logger  *slog.Logger
	season  int
}

// New creates a new ranking service
func New(storage storage.Storage, clock clock.Clock, sink notify.Sink, logger *slog.Logger, season int) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		sink:    sink,
		logger:  logger.With(slog.String("component", "ranking")),
		season:  season,
	}
}

// Season returns the current season number
func (s *Service) Season() int {
	return s.season
}

// BuildEntries ranks states by rating, then wins, then player ID
func BuildEntries(states []*model.GameState) []model.RankingEntry {
	sorted := append([]*model.GameState(nil), states...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if a.Stats.Wins != b.Stats.Wins {
			return a.Stats.Wins > b.Stats.Wins
		}
		return a.UserID < b.UserID
	})

	entries := make([]model.RankingEntry, len(sorted))
	for i, st := range sorted {
		entries[i] = model.RankingEntry{
			PlayerID:   st.UserID,
			PlayerName: st.Nickname,
			Rank:       i + 1,
			Rating:     st.Rating,
			Level:      st.Level,
			Wins:       st.Stats.Wins,
			Losses:     st.Stats.Losses,
			WinRate:    st.Stats.WinRate(),
		}
	}
	return entries
}

// Rebuild recomputes the leaderboard from every game state and stores it
func (s *Service) Rebuild(ctx context.Context) (*model.RankingSnapshot, error) {
	states, err := s.storage.ListGameStates(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &model.RankingSnapshot{
		Season:    s.season,
		Entries:   BuildEntries(states),
		UpdatedAt: s.clock.Now(),
	}
	if err := s.storage.SaveRankingSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}

	s.logger.Info("rankings rebuilt", slog.Int("entries", len(snapshot.Entries)))
	return snapshot, nil
}

// Snapshot returns the stored leaderboard, building it on first use
func (s *Service) Snapshot(ctx context.Context) (*model.RankingSnapshot, error) {
	snap, err := s.storage.GetRankingSnapshot(ctx)
	if errors.Is(err, model.ErrRankingNotFound) {
		return s.Rebuild(ctx)
	}
	return snap, err
}

// Top returns the first limit entries
func (s *Service) Top(ctx context.Context, limit int) ([]model.RankingEntry, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	entries := snap.Entries
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Standing is a player's position with tier and reward preview
type Standing struct {
	Entry  model.RankingEntry `json:"entry"`
	Ranked bool               `json:"ranked"`
	Tier   model.TierInfo     `json:"tier"`
	Reward model.RankReward   `json:"reward"`
}

// Standing returns the player's rank, tier and reward from the stored snapshot.
// Players missing from the snapshot are reported with their live rating.
func (s *Service) Standing(ctx context.Context, playerID model.PlayerID) (*Standing, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	entry, ok := FindMyRank(snap.Entries, playerID)
	if !ok {
		state, err := s.storage.GetGameState(ctx, playerID)
		if err != nil {
			return nil, err
		}
		entry = model.RankingEntry{PlayerID: playerID, PlayerName: state.Nickname, Rating: state.Rating, Level: state.Level}
	}

	st := &Standing{Entry: entry, Ranked: ok, Tier: GetRankTier(entry.Rating)}
	if ok {
		st.Reward = GetRewardForRank(entry.Rank, snap.Season)
	} else {
		st.Reward = model.RankReward{Season: snap.Season}
	}
	return st, nil
}

// Schedule registers the periodic rebuild
func (s *Service) Schedule(sched scheduler.Scheduler, every time.Duration) error {
	return sched.Every(RefreshJobName, every, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		snap, err := s.Rebuild(ctx)
		if err != nil {
			s.logger.Error("scheduled ranking rebuild failed", slog.String("error", err.Error()))
			return
		}
		now := s.clock.Now()
		for _, e := range snap.Entries {
			s.sink.Notify(model.Event{
				Type:      model.EventRankingUpdated,
				Timestamp: now,
				PlayerID:  e.PlayerID,
				Payload:   e,
			})
		}
	})
}
