package ranking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aicardgame-go/internal/dependencies/mocks"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/notify"
	"github.com/mcoot/aicardgame-go/internal/storage/memory"
	"github.com/mcoot/aicardgame-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	events  *notify.Recorder
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(testutil.Epoch)
	s.events = notify.NewRecorder()
	s.service = New(s.storage, s.clock, s.events, testutil.NopLogger(), 3)
	s.ctx = context.Background()
}

func (s *ServiceSuite) seed(id model.PlayerID, rating, wins, losses int) {
	s.Require().NoError(s.storage.SaveGameState(s.ctx, &model.GameState{
		UserID:   id,
		Nickname: string(id),
		Level:    1,
		Rating:   rating,
		Stats:    model.GameStats{TotalBattles: wins + losses, Wins: wins, Losses: losses},
	}))
}

func (s *ServiceSuite) TestGetRankTier() {
	cases := []struct {
		rating int
		tier   model.RankTier
		toNext int
	}{
		{0, model.TierBronze, 1200},
		{1000, model.TierBronze, 200},
		{1199, model.TierBronze, 1},
		{1200, model.TierSilver, 200},
		{1450, model.TierGold, 150},
		{1600, model.TierPlatinum, 200},
		{1999, model.TierDiamond, 1},
		{2000, model.TierMaster, 0},
		{2600, model.TierMaster, 0},
	}
	for _, c := range cases {
		info := GetRankTier(c.rating)
		s.Equal(c.tier, info.Tier, "rating %d", c.rating)
		s.Equal(c.toNext, info.RatingToNextTier, "rating %d", c.rating)
	}
	s.Empty(GetRankTier(2000).NextTier)
}

func (s *ServiceSuite) TestGetRewardForRank() {
	s.Equal("Grand Champion", GetRewardForRank(1, 3).Title)
	s.Equal("Champion", GetRewardForRank(2, 3).Title)
	s.Equal("Challenger", GetRewardForRank(3, 3).Title)
	s.Equal(1000, GetRewardForRank(4, 3).Coins)
	s.Equal(1000, GetRewardForRank(10, 3).Coins)
	s.Equal(500, GetRewardForRank(11, 3).Coins)
	s.Equal(200, GetRewardForRank(100, 3).Coins)
	s.True(GetRewardForRank(101, 3).IsEmpty())
	s.True(GetRewardForRank(0, 3).IsEmpty())
	s.Equal(3, GetRewardForRank(1, 3).Season)
}

func (s *ServiceSuite) TestRebuildOrdersEntries() {
	s.seed("carol", 1100, 2, 0)
	s.seed("alice", 1300, 5, 5)
	s.seed("bob", 1100, 4, 1)
	s.seed("dave", 1100, 4, 0)

	snap, err := s.service.Rebuild(s.ctx)
	s.Require().NoError(err)

	var order []model.PlayerID
	for _, e := range snap.Entries {
		order = append(order, e.PlayerID)
	}
	s.Equal([]model.PlayerID{"alice", "bob", "dave", "carol"}, order)
	s.Equal(1, snap.Entries[0].Rank)
	s.Equal(4, snap.Entries[3].Rank)
	s.InDelta(0.5, snap.Entries[0].WinRate, 1e-9)
	s.Equal(3, snap.Season)
}

func (s *ServiceSuite) TestStanding() {
	s.seed("alice", 1450, 3, 0)
	s.seed("bob", 1000, 0, 3)

	st, err := s.service.Standing(s.ctx, "bob")
	s.Require().NoError(err)
	s.True(st.Ranked)
	s.Equal(2, st.Entry.Rank)
	s.Equal("Champion", st.Reward.Title)
	s.Equal(model.TierBronze, st.Tier.Tier)
}

func (s *ServiceSuite) TestStandingForUnrankedPlayer() {
	s.seed("alice", 1450, 3, 0)
	_, err := s.service.Rebuild(s.ctx)
	s.Require().NoError(err)
	s.seed("newbie", 1000, 0, 0)

	st, err := s.service.Standing(s.ctx, "newbie")
	s.Require().NoError(err)
	s.False(st.Ranked)
	s.True(st.Reward.IsEmpty())
	s.Equal(200, st.Tier.RatingToNextTier)
}

func (s *ServiceSuite) TestScheduledRefresh() {
	sched := mocks.NewMockScheduler(s.clock)
	s.Require().NoError(s.service.Schedule(sched, time.Minute))

	s.seed("alice", 1450, 3, 0)
	s.True(sched.RunPeriodic(RefreshJobName))

	snap, err := s.storage.GetRankingSnapshot(s.ctx)
	s.Require().NoError(err)
	s.Len(snap.Entries, 1)
	s.Len(s.events.OfType("alice", model.EventRankingUpdated), 1)
}

func (s *ServiceSuite) TestTopLimits() {
	s.seed("a", 1000, 0, 0)
	s.seed("b", 1001, 0, 0)
	s.seed("c", 1002, 0, 0)

	top, err := s.service.Top(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(top, 2)
	s.Equal(model.PlayerID("c"), top[0].PlayerID)
}
