// Package missions tracks daily mission progress and reward claims.
package missions

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/aicardgame-go/internal/dependencies/clock"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/notify"
	"github.com/mcoot/aicardgame-go/internal/services/gamestate"
)

// Mission IDs
const (
	DailyBattle  = "daily_battle"
	DailyWin     = "daily_win"
	DailyEnhance = "daily_enhance"
	DailyFuse    = "daily_fuse"
)

// Mission is a fixed daily objective
type Mission struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Target int    `json:"target"`
	Reward int    `json:"reward"`
}

// Table lists every daily mission
var Table = []Mission{
	{ID: DailyBattle, Title: "Fight a battle", Target: 1, Reward: 100},
	{ID: DailyWin, Title: "Win three battles", Target: 3, Reward: 300},
	{ID: DailyEnhance, Title: "Enhance a card", Target: 1, Reward: 100},
	{ID: DailyFuse, Title: "Fuse cards", Target: 1, Reward: 150},
}

// Lookup returns a mission by ID
func Lookup(id string) (Mission, bool) {
	for _, m := range Table {
		if m.ID == id {
			return m, true
		}
	}
	return Mission{}, false
}

// Status is a mission with the player's progress for today
type Status struct {
	Mission
	Progress  int  `json:"progress"`
	Completed bool `json:"completed"`
	Claimed   bool `json:"claimed"`
}

// Reset clears progress when the UTC day has changed
func Reset(state *model.GameState, now time.Time) {
	day := clock.DayKey(now)
	if state.DailyMissions.Date == day {
		if state.DailyMissions.Progress == nil {
			state.DailyMissions.Progress = map[string]int{}
		}
		if state.DailyMissions.Claimed == nil {
			state.DailyMissions.Claimed = map[string]bool{}
		}
		return
	}
	state.DailyMissions = model.DailyMissions{
		Date:     day,
		Progress: map[string]int{},
		Claimed:  map[string]bool{},
	}
}

// Advance adds n progress to a mission and returns it if this completed it
func Advance(state *model.GameState, now time.Time, id string, n int) (Mission, bool) {
	Reset(state, now)
	m, ok := Lookup(id)
	if !ok || n <= 0 {
		return Mission{}, false
	}
	before := state.DailyMissions.Progress[id]
	after := before + n
	if after > m.Target {
		after = m.Target
	}
	state.DailyMissions.Progress[id] = after
	return m, before < m.Target && after >= m.Target
}

// Statuses returns today's progress for every mission
func Statuses(state *model.GameState, now time.Time) []Status {
	dm := state.DailyMissions
	today := dm.Date == clock.DayKey(now)
	out := make([]Status, 0, len(Table))
	for _, m := range Table {
		st := Status{Mission: m}
		if today {
			st.Progress = dm.Progress[m.ID]
			st.Claimed = dm.Claimed[m.ID]
		}
		st.Completed = st.Progress >= m.Target
		out = append(out, st)
	}
	return out
}

// Service exposes mission progress and claims
type Service struct {
	state  *gamestate.Service
	clock  clock.Clock
	sink   notify.Sink
	logger *slog.Logger
}

// New creates a new missions service
func New(state *gamestate.Service, clock clock.Clock, sink notify.Sink, logger *slog.Logger) *Service {
	return &Service{
		state:  state,
		clock:  clock,
		sink:   sink,
		logger: logger.With(slog.String("component", "missions")),
	}
}

// List returns today's mission statuses
func (s *Service) List(ctx context.Context, userID model.PlayerID) ([]Status, error) {
	state, err := s.state.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Statuses(state, s.clock.Now()), nil
}

// Claim pays out a completed mission once per day
func (s *Service) Claim(ctx context.Context, userID model.PlayerID, missionID string) (*Status, *model.GameState, error) {
	m, ok := Lookup(missionID)
	if !ok {
		return nil, nil, model.ErrUnknownMission
	}

	now := s.clock.Now()
	state, err := s.state.Mutate(ctx, userID, func(state *model.GameState) error {
		Reset(state, now)
		dm := &state.DailyMissions
		if dm.Claimed[m.ID] {
			return model.ErrAlreadyClaimed
		}
		if dm.Progress[m.ID] < m.Target {
			return model.ErrNotReady
		}
		dm.Claimed[m.ID] = true
		state.Tokens += m.Reward
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("mission claimed",
		slog.String("player_id", string(userID)),
		slog.String("mission_id", m.ID),
		slog.Int("reward", m.Reward),
	)
	return &Status{Mission: m, Progress: m.Target, Completed: true, Claimed: true}, state, nil
}

// NotifyCompleted emits a mission_complete event for each mission
func NotifyCompleted(sink notify.Sink, userID model.PlayerID, now time.Time, completed []Mission) {
	for _, m := range completed {
		sink.Notify(model.Event{
			Type:      model.EventMissionComplete,
			Timestamp: now,
			PlayerID:  userID,
			Payload:   m,
		})
	}
}
