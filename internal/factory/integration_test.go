package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/realtime"
	"github.com/mcoot/aicardgame-go/internal/services/matchmaking"
	"github.com/mcoot/aicardgame-go/internal/services/missions"
	"github.com/mcoot/aicardgame-go/internal/services/ranking"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.NoError(s.app.Close(s.ctx))
}

func (s *IntegrationSuite) guest(name string) model.PlayerID {
	session, err := s.app.Auth.CreateGuestPlayer(s.ctx, name)
	s.Require().NoError(err)
	return session.PlayerID
}

func (s *IntegrationSuite) deckFor(id model.PlayerID) []model.CardID {
	ids := make([]model.CardID, 0, model.DeckSize)
	for _, c := range s.app.Generator.Deck(id, 500) {
		card := c
		_, err := s.app.State.AddCard(s.ctx, id, &card)
		s.Require().NoError(err)
		ids = append(ids, card.ID)
	}
	return ids
}

func (s *IntegrationSuite) receive(c *realtime.Client, want model.EventType) model.Event {
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e, ok := <-c.Events():
			s.Require().True(ok, "client closed before %s", want)
			if e.Type == want {
				return e
			}
		case <-timeout:
			s.FailNow("timed out waiting for event", string(want))
		}
	}
}

// Test: a new guest can produce a card from the starter faction
func (s *IntegrationSuite) TestProductionFlow() {
	id := s.guest("Alice")
	client, unsubscribe := s.app.Hubs.Subscribe(id, "sse")
	defer unsubscribe()

	state, err := s.app.State.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(state.Inventory)
	s.Require().Len(state.UnlockedFactions, 1)
	starter := state.UnlockedFactions[0]

	slot, err := s.app.Production.PlaceFaction(s.ctx, id, starter, 0)
	s.Require().NoError(err)
	s.Equal(1, slot.SlotNumber)

	_, err = s.app.Production.Claim(s.ctx, id, slot.SlotNumber)
	s.ErrorIs(err, model.ErrNotReady)

	s.app.MockClock.Advance(30 * time.Minute)
	result, err := s.app.Production.Claim(s.ctx, id, slot.SlotNumber)
	s.Require().NoError(err)
	s.Equal(starter, result.Card.FactionID)

	event := s.receive(client, model.EventCardGenerated)
	s.Equal(result.Card.ID, event.Payload.(model.CardGeneratedPayload).Card.ID)

	state, err = s.app.State.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Len(state.Inventory, 1)
	s.Equal(result.Fragments, state.Fragments)
}

// Test: search, synthetic opponent, battle, mission claim and leaderboard
func (s *IntegrationSuite) TestBattleFlow() {
	id := s.guest("Alice")
	client, unsubscribe := s.app.Hubs.Subscribe(id, "websocket")
	defer unsubscribe()

	_, err := s.app.Matchmaking.StartSearch(s.ctx, id, matchmaking.SearchRequest{
		CardIDs: s.deckFor(id),
		Mode:    model.ModeRanked,
		Genre:   model.GenreBalanced,
	})
	s.Require().NoError(err)
	s.receive(client, model.EventSearchStarted)

	s.app.MockScheduler.Advance(2 * time.Second)
	s.Equal(model.SessionFound, s.app.Matchmaking.Status(id).State)
	s.receive(client, model.EventMatchFound)

	s.app.MockScheduler.Advance(3 * time.Second)
	sess := s.app.Matchmaking.Status(id)
	s.Require().Equal(model.SessionResult, sess.State)
	s.Require().NotNil(sess.Outcome)
	complete := s.receive(client, model.EventBattleComplete)
	s.Equal(sess.Outcome.NewRating, complete.Payload.(model.BattleCompletePayload).NewRating)

	history, err := s.app.Matchmaking.History(s.ctx, id, 10)
	s.Require().NoError(err)
	s.Len(history, 1)

	before, err := s.app.State.Get(s.ctx, id)
	s.Require().NoError(err)
	status, after, err := s.app.Missions.Claim(s.ctx, id, missions.DailyBattle)
	s.Require().NoError(err)
	s.True(status.Claimed)
	s.Equal(before.Tokens+status.Reward, after.Tokens)

	_, _, err = s.app.Missions.Claim(s.ctx, id, missions.DailyBattle)
	s.ErrorIs(err, model.ErrAlreadyClaimed)

	_, err = s.app.Ranking.Rebuild(s.ctx)
	s.Require().NoError(err)
	standing, err := s.app.Ranking.Standing(s.ctx, id)
	s.Require().NoError(err)
	s.True(standing.Ranked)
	s.Equal(1, standing.Entry.Rank)
	s.Equal(sess.Outcome.NewRating, standing.Entry.Rating)
}

// Test: enhancing and fusing cards share the player's token balance
func (s *IntegrationSuite) TestEnhanceThenFuse() {
	id := s.guest("Alice")
	ids := s.deckFor(id)

	res, err := s.app.Enhance.Enhance(s.ctx, id, ids[0])
	s.Require().NoError(err)
	s.Equal(2, res.Card.Level)
	s.Equal(model.StartingTokens-res.Cost, res.Tokens)

	_, err = s.app.State.SetCardLock(s.ctx, id, ids[1], true)
	s.Require().NoError(err)
	_, err = s.app.Fusion.Fuse(s.ctx, id, ids[1:4])
	s.ErrorIs(err, model.ErrCardLocked)

	state, err := s.app.State.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Len(state.Inventory, model.DeckSize)
	s.Equal(res.Tokens, state.Tokens)
}

// Test: Start registers the periodic jobs on the scheduler
func (s *IntegrationSuite) TestStartSchedulesJobs() {
	s.Require().NoError(s.app.Start())
	s.guest("Alice")

	s.True(s.app.MockScheduler.RunPeriodic(ranking.RefreshJobName))
	entries, err := s.app.Ranking.Top(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(entries, 1)

	s.True(s.app.MockScheduler.RunPeriodic(realtime.CleanupJobName))
}
