// Package storagetest holds conformance suites shared by every storage backend.
package storagetest

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/storage"
)

// StorageSuite checks the storage.Storage contract. Set NewStorage before running.
type StorageSuite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Store storage.Storage
	Ctx   context.Context
}

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (s *StorageSuite) SetupTest() {
	s.Store = s.NewStorage()
	s.Ctx = context.Background()
}

func sampleState(id model.PlayerID) *model.GameState {
	faction := model.FactionID("lumen")
	slots := model.EmptySlots()
	slots[0].FactionID = &faction
	return &model.GameState{
		UserID:           id,
		Nickname:         "Alice",
		Level:            3,
		TotalExperience:  250,
		Experience:       50,
		Tokens:           1200,
		Rating:           1100,
		UnlockedFactions: []model.FactionID{faction},
		Slots:            slots,
		Inventory: []*model.Card{{
			ID:         "card-1",
			TemplateID: "lumen-scribe",
			OwnerID:    id,
			Level:      2,
			Rarity:     model.RarityRare,
			Stats:      model.NewCardStats(10, 20, 30, 40, 50),
			AcquiredAt: epoch,
		}},
		DailyMissions: model.DailyMissions{
			Date:     "2024-01-01",
			Progress: map[string]int{"daily_battle": 1},
			Claimed:  map[string]bool{},
		},
		CreatedAt: epoch,
		LastSaved: epoch,
	}
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{ID: "player-1", DisplayName: "Alice", CreatedAt: epoch}
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, player))

	got, err := s.Store.GetPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("Alice", got.DisplayName)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.Store.GetPlayer(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestDeletePlayer() {
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, &model.Player{ID: "player-1"}))
	s.Require().NoError(s.Store.DeletePlayer(s.Ctx, "player-1"))

	_, err := s.Store.GetPlayer(s.Ctx, "player-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestRegisteredPlayerByUsername() {
	rp := &model.RegisteredPlayer{PlayerID: "player-1", Username: "alice", PasswordHash: "hash"}
	s.Require().NoError(s.Store.SaveRegisteredPlayer(s.Ctx, rp))

	got, err := s.Store.GetRegisteredPlayerByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), got.PlayerID)

	byID, err := s.Store.GetRegisteredPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("alice", byID.Username)

	_, err = s.Store.GetRegisteredPlayerByUsername(s.Ctx, "bob")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Game state tests

func (s *StorageSuite) TestSaveAndGetGameState() {
	s.Require().NoError(s.Store.SaveGameState(s.Ctx, sampleState("player-1")))

	got, err := s.Store.GetGameState(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(1200, got.Tokens)
	s.Equal(3, got.Level)
	s.Require().Len(got.Inventory, 1)
	s.Equal(150, got.Inventory[0].Stats.TotalPower)
	s.Require().Len(got.Slots, model.SlotCount)
	s.Require().NotNil(got.Slots[0].FactionID)
	s.Equal(model.FactionID("lumen"), *got.Slots[0].FactionID)
	s.Equal(1, got.DailyMissions.Progress["daily_battle"])
}

func (s *StorageSuite) TestGetGameStateNotFound() {
	_, err := s.Store.GetGameState(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrStateNotFound)
}

func (s *StorageSuite) TestSaveGameStateLastWriteWins() {
	first := sampleState("player-1")
	s.Require().NoError(s.Store.SaveGameState(s.Ctx, first))

	second := sampleState("player-1")
	second.Tokens = 5
	s.Require().NoError(s.Store.SaveGameState(s.Ctx, second))

	got, err := s.Store.GetGameState(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(5, got.Tokens)
}

func (s *StorageSuite) TestGameStateIsNotAliased() {
	state := sampleState("player-1")
	s.Require().NoError(s.Store.SaveGameState(s.Ctx, state))

	state.Tokens = 0
	state.Inventory[0].Level = 9

	got, err := s.Store.GetGameState(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(1200, got.Tokens)
	s.Equal(2, got.Inventory[0].Level)
}

func (s *StorageSuite) TestListGameStates() {
	s.Require().NoError(s.Store.SaveGameState(s.Ctx, sampleState("player-1")))
	s.Require().NoError(s.Store.SaveGameState(s.Ctx, sampleState("player-2")))

	states, err := s.Store.ListGameStates(s.Ctx)
	s.Require().NoError(err)
	s.Len(states, 2)
}

// Match tests

func sampleMatch(id model.MatchID, p1, p2 model.PlayerID, start time.Time) *model.PvPMatch {
	return &model.PvPMatch{
		ID:        id,
		Player1:   model.PvPPlayer{ID: p1, Name: string(p1), Rating: 1000},
		Player2:   model.PvPPlayer{ID: p2, Name: string(p2), Rating: 1000, IsBot: true},
		Status:    model.MatchCompleted,
		Mode:      model.ModeRanked,
		Genre:     model.GenreBalanced,
		StartTime: start,
		Result:    &model.BattleResult{Wins1: 3, Wins2: 1, Outcome: model.OutcomeWin},
	}
}

func (s *StorageSuite) TestSaveAndGetMatch() {
	s.Require().NoError(s.Store.SaveMatch(s.Ctx, sampleMatch("m1", "alice", "bot", epoch)))

	got, err := s.Store.GetMatch(s.Ctx, "m1")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("alice"), got.Player1.ID)
	s.True(got.Player2.IsBot)
	s.Require().NotNil(got.Result)
	s.Equal(model.OutcomeWin, got.Result.Outcome)
}

func (s *StorageSuite) TestGetMatchNotFound() {
	_, err := s.Store.GetMatch(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *StorageSuite) TestListMatchesForPlayer() {
	s.Require().NoError(s.Store.SaveMatch(s.Ctx, sampleMatch("m1", "alice", "bot", epoch)))
	s.Require().NoError(s.Store.SaveMatch(s.Ctx, sampleMatch("m2", "bob", "alice", epoch.Add(time.Minute))))
	s.Require().NoError(s.Store.SaveMatch(s.Ctx, sampleMatch("m3", "bob", "carol", epoch)))

	matches, err := s.Store.ListMatchesForPlayer(s.Ctx, "alice", 10)
	s.Require().NoError(err)
	s.Require().Len(matches, 2)
	s.Equal(model.MatchID("m2"), matches[0].ID)

	limited, err := s.Store.ListMatchesForPlayer(s.Ctx, "alice", 1)
	s.Require().NoError(err)
	s.Len(limited, 1)
}

// Ranking tests

func (s *StorageSuite) TestRankingSnapshot() {
	_, err := s.Store.GetRankingSnapshot(s.Ctx)
	s.ErrorIs(err, model.ErrRankingNotFound)

	snap := &model.RankingSnapshot{
		Season:    2,
		Entries:   []model.RankingEntry{{PlayerID: "alice", Rank: 1, Rating: 1500}},
		UpdatedAt: epoch,
	}
	s.Require().NoError(s.Store.SaveRankingSnapshot(s.Ctx, snap))

	got, err := s.Store.GetRankingSnapshot(s.Ctx)
	s.Require().NoError(err)
	s.Equal(2, got.Season)
	s.Require().Len(got.Entries, 1)
	s.Equal(1500, got.Entries[0].Rating)
}

// QueueSuite checks the storage.MatchQueue contract. Set NewQueue before running.
type QueueSuite struct {
	suite.Suite
	NewQueue func() storage.MatchQueue

	Queue storage.MatchQueue
	Ctx   context.Context
}

func (s *QueueSuite) SetupTest() {
	s.Queue = s.NewQueue()
	s.Ctx = context.Background()
}

func entry(id model.PlayerID, rating int, joined time.Time) *model.QueueEntry {
	return &model.QueueEntry{
		Player:   model.PvPPlayer{ID: id, Name: string(id), Rating: rating},
		Mode:     model.ModeRanked,
		Genre:    model.GenreBalanced,
		JoinedAt: joined,
	}
}

func (s *QueueSuite) TestClaimClosestOpponent() {
	alice := entry("alice", 1000, epoch)
	s.Require().NoError(s.Queue.Join(s.Ctx, alice))
	s.Require().NoError(s.Queue.Join(s.Ctx, entry("far", 1190, epoch)))
	s.Require().NoError(s.Queue.Join(s.Ctx, entry("near", 1050, epoch.Add(time.Second))))

	opp, err := s.Queue.ClaimOpponent(s.Ctx, alice, 200)
	s.Require().NoError(err)
	s.Require().NotNil(opp)
	s.Equal(model.PlayerID("near"), opp.Player.ID)

	// Both claimed entries are gone; far is still waiting
	_, err = s.Queue.ClaimOpponent(s.Ctx, alice, 200)
	s.ErrorIs(err, storage.ErrNotQueued)

	far := entry("far", 1190, epoch)
	_, err = s.Queue.ClaimOpponent(s.Ctx, far, 200)
	s.Require().NoError(err)
}

func (s *QueueSuite) TestClaimRespectsWindow() {
	alice := entry("alice", 1000, epoch)
	s.Require().NoError(s.Queue.Join(s.Ctx, alice))
	s.Require().NoError(s.Queue.Join(s.Ctx, entry("far", 1500, epoch)))

	opp, err := s.Queue.ClaimOpponent(s.Ctx, alice, 200)
	s.Require().NoError(err)
	s.Nil(opp)

	// Self stays queued after an unsuccessful claim
	opp, err = s.Queue.ClaimOpponent(s.Ctx, alice, 600)
	s.Require().NoError(err)
	s.Require().NotNil(opp)
	s.Equal(model.PlayerID("far"), opp.Player.ID)
}

func (s *QueueSuite) TestClaimIgnoresOtherModes() {
	alice := entry("alice", 1000, epoch)
	story := entry("story", 1000, epoch)
	story.Mode = model.ModeStory
	s.Require().NoError(s.Queue.Join(s.Ctx, alice))
	s.Require().NoError(s.Queue.Join(s.Ctx, story))

	opp, err := s.Queue.ClaimOpponent(s.Ctx, alice, 200)
	s.Require().NoError(err)
	s.Nil(opp)
}

func (s *QueueSuite) TestClaimIgnoresOtherGenres() {
	alice := entry("alice", 1000, epoch)
	alice.Genre = model.GenreCreative
	bob := entry("bob", 1000, epoch)
	bob.Genre = model.GenreAnalytical
	s.Require().NoError(s.Queue.Join(s.Ctx, alice))
	s.Require().NoError(s.Queue.Join(s.Ctx, bob))

	opp, err := s.Queue.ClaimOpponent(s.Ctx, alice, 200)
	s.Require().NoError(err)
	s.Nil(opp)

	carol := entry("carol", 1000, epoch)
	carol.Genre = model.GenreAnalytical
	s.Require().NoError(s.Queue.Join(s.Ctx, carol))
	opp, err = s.Queue.ClaimOpponent(s.Ctx, carol, 200)
	s.Require().NoError(err)
	s.Require().NotNil(opp)
	s.Equal(model.PlayerID("bob"), opp.Player.ID)
	s.Equal(model.GenreAnalytical, opp.Genre)
}

func (s *QueueSuite) TestRejoinMovesToNewPool() {
	bob := entry("bob", 1000, epoch)
	s.Require().NoError(s.Queue.Join(s.Ctx, bob))
	bob.Genre = model.GenreSpeed
	s.Require().NoError(s.Queue.Join(s.Ctx, bob))

	alice := entry("alice", 1000, epoch)
	s.Require().NoError(s.Queue.Join(s.Ctx, alice))
	opp, err := s.Queue.ClaimOpponent(s.Ctx, alice, 200)
	s.Require().NoError(err)
	s.Nil(opp)

	carol := entry("carol", 1000, epoch)
	carol.Genre = model.GenreSpeed
	s.Require().NoError(s.Queue.Join(s.Ctx, carol))
	opp, err = s.Queue.ClaimOpponent(s.Ctx, carol, 200)
	s.Require().NoError(err)
	s.Require().NotNil(opp)
	s.Equal(model.PlayerID("bob"), opp.Player.ID)
}

func (s *QueueSuite) TestLeave() {
	alice := entry("alice", 1000, epoch)
	s.Require().NoError(s.Queue.Join(s.Ctx, alice))
	s.Require().NoError(s.Queue.Leave(s.Ctx, "alice"))
	s.Require().NoError(s.Queue.Leave(s.Ctx, "alice"))

	_, err := s.Queue.ClaimOpponent(s.Ctx, alice, 200)
	s.True(errors.Is(err, storage.ErrNotQueued))
}

func (s *QueueSuite) TestAssignments() {
	_, ok, err := s.Queue.TakeAssignment(s.Ctx, "alice")
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.Queue.Assign(s.Ctx, "alice", "m1"))

	id, ok, err := s.Queue.TakeAssignment(s.Ctx, "alice")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(model.MatchID("m1"), id)

	_, ok, err = s.Queue.TakeAssignment(s.Ctx, "alice")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *QueueSuite) TestLeaveDropsAssignment() {
	s.Require().NoError(s.Queue.Join(s.Ctx, entry("alice", 1000, epoch)))
	s.Require().NoError(s.Queue.Assign(s.Ctx, "alice", "m1"))
	s.Require().NoError(s.Queue.Leave(s.Ctx, "alice"))

	_, ok, err := s.Queue.TakeAssignment(s.Ctx, "alice")
	s.Require().NoError(err)
	s.False(ok)
}
