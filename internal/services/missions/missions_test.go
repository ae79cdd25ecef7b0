package missions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aicardgame-go/internal/catalog"
	"github.com/mcoot/aicardgame-go/internal/dependencies/mocks"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/notify"
	"github.com/mcoot/aicardgame-go/internal/services/gamestate"
	"github.com/mcoot/aicardgame-go/internal/storage/memory"
	"github.com/mcoot/aicardgame-go/internal/testutil"
)

type MissionsSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	state   *gamestate.Service
	service *Service
	ctx     context.Context
}

func TestMissionsSuite(t *testing.T) {
	suite.Run(t, new(MissionsSuite))
}

func (s *MissionsSuite) SetupTest() {
	s.clock = mocks.NewMockClock(testutil.Epoch)
	s.state = gamestate.New(memory.New(), catalog.MustDefault(), s.clock, testutil.NopLogger())
	s.service = New(s.state, s.clock, notify.Discard{}, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *MissionsSuite) progress(id string, n int) {
	_, err := s.state.Mutate(s.ctx, "alice", func(state *model.GameState) error {
		Advance(state, s.clock.Now(), id, n)
		return nil
	})
	s.Require().NoError(err)
}

func (s *MissionsSuite) TestAdvanceReportsCompletionOnce() {
	state := &model.GameState{}
	now := testutil.Epoch

	_, done := Advance(state, now, DailyWin, 2)
	s.False(done)
	m, done := Advance(state, now, DailyWin, 1)
	s.True(done)
	s.Equal(DailyWin, m.ID)
	_, done = Advance(state, now, DailyWin, 1)
	s.False(done)
	s.Equal(3, state.DailyMissions.Progress[DailyWin])
}

func (s *MissionsSuite) TestClaimBeforeCompleteIsNotReady() {
	_, _, err := s.service.Claim(s.ctx, "alice", DailyBattle)
	s.ErrorIs(err, model.ErrNotReady)
}

func (s *MissionsSuite) TestClaimPaysOnce() {
	s.progress(DailyBattle, 1)

	_, state, err := s.service.Claim(s.ctx, "alice", DailyBattle)
	s.Require().NoError(err)
	s.Equal(2100, state.Tokens)

	_, _, err = s.service.Claim(s.ctx, "alice", DailyBattle)
	s.ErrorIs(err, model.ErrAlreadyClaimed)
}

func (s *MissionsSuite) TestUnknownMission() {
	_, _, err := s.service.Claim(s.ctx, "alice", "weekly_raid")
	s.ErrorIs(err, model.ErrUnknownMission)
}

func (s *MissionsSuite) TestProgressResetsNextDay() {
	s.progress(DailyBattle, 1)
	_, _, err := s.service.Claim(s.ctx, "alice", DailyBattle)
	s.Require().NoError(err)

	s.clock.Advance(24 * time.Hour)

	statuses, err := s.service.List(s.ctx, "alice")
	s.Require().NoError(err)
	for _, st := range statuses {
		s.Zero(st.Progress)
		s.False(st.Claimed)
	}

	_, _, err = s.service.Claim(s.ctx, "alice", DailyBattle)
	s.ErrorIs(err, model.ErrNotReady)
}

func (s *MissionsSuite) TestListShowsProgress() {
	s.progress(DailyWin, 2)

	statuses, err := s.service.List(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(statuses, len(Table))
	for _, st := range statuses {
		if st.ID == DailyWin {
			s.Equal(2, st.Progress)
			s.False(st.Completed)
		}
	}
}
