package matchmaking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aicardgame-go/internal/catalog"
	"github.com/mcoot/aicardgame-go/internal/dependencies/mocks"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/notify"
	"github.com/mcoot/aicardgame-go/internal/services/battle"
	"github.com/mcoot/aicardgame-go/internal/services/cards"
	"github.com/mcoot/aicardgame-go/internal/services/gamestate"
	"github.com/mcoot/aicardgame-go/internal/services/missions"
	"github.com/mcoot/aicardgame-go/internal/services/synergy"
	"github.com/mcoot/aicardgame-go/internal/storage/memory"
	"github.com/mcoot/aicardgame-go/internal/testutil"
)

// flakyQueue fails Leave once broken is set
type flakyQueue struct {
	*memory.Queue
	broken bool
}

func (q *flakyQueue) Leave(ctx context.Context, playerID model.PlayerID) error {
	if q.broken {
		return errors.New("queue offline")
	}
	return q.Queue.Leave(ctx, playerID)
}

type ServiceSuite struct {
	suite.Suite
	clock     *mocks.MockClock
	random    *mocks.MockRandom
	scheduler *mocks.MockScheduler
	events    *notify.Recorder
	storage   *memory.Storage
	queue     *memory.Queue
	state     *gamestate.Service
	generator *cards.Generator
	service   *Service
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	cat := catalog.MustDefault()
	s.clock = mocks.NewMockClock(testutil.Epoch)
	s.random = mocks.NewMockRandom()
	s.scheduler = mocks.NewMockScheduler(s.clock)
	s.events = notify.NewRecorder()
	s.storage = memory.New()
	s.queue = memory.NewQueue()
	s.state = gamestate.New(s.storage, cat, s.clock, testutil.NopLogger())
	s.generator = cards.NewGenerator(cat, s.clock, s.random)
	s.service = New(Deps{
		State:     s.state,
		Storage:   s.storage,
		Queue:     s.queue,
		Catalog:   cat,
		Battle:    battle.New(cat),
		Synergy:   synergy.New(cat),
		Generator: s.generator,
		Scheduler: s.scheduler,
		Sink:      s.events,
		Clock:     s.clock,
		Random:    s.random,
		Logger:    testutil.NopLogger(),
	}, DefaultConfig())
	s.ctx = context.Background()
}

// deckFor gives the player five cards and returns their IDs
func (s *ServiceSuite) deckFor(id model.PlayerID) []model.CardID {
	ids := make([]model.CardID, 0, model.DeckSize)
	for _, c := range s.generator.Deck(id, 500) {
		card := c
		_, err := s.state.AddCard(s.ctx, id, &card)
		s.Require().NoError(err)
		ids = append(ids, card.ID)
	}
	return ids
}

func (s *ServiceSuite) request(id model.PlayerID, live bool) SearchRequest {
	return SearchRequest{
		CardIDs: s.deckFor(id),
		Mode:    model.ModeRanked,
		Genre:   model.GenreBalanced,
		Live:    live,
	}
}

func (s *ServiceSuite) TestStatusIdleWithoutSession() {
	sess := s.service.Status("alice")
	s.Equal(model.SessionIdle, sess.State)
	s.Nil(sess.Match)
}

func (s *ServiceSuite) TestStartSearchSnapshotsPlayer() {
	sess, err := s.service.StartSearch(s.ctx, "alice", s.request("alice", false))
	s.Require().NoError(err)

	s.Equal(model.SessionSearching, sess.State)
	s.Require().NotNil(sess.Player)
	s.Equal(500, sess.Player.TotalPower)
	s.Equal(model.StartingRating, sess.Player.Rating)
	s.Len(sess.Player.Deck, model.DeckSize)
	s.Equal(1, s.scheduler.Pending())
	s.Len(s.events.OfType("alice", model.EventSearchStarted), 1)
}

func (s *ServiceSuite) TestStartSearchValidation() {
	req := s.request("alice", false)

	bad := req
	bad.Mode = "arcade"
	_, err := s.service.StartSearch(s.ctx, "alice", bad)
	s.ErrorIs(err, model.ErrInvalidMode)

	bad = req
	bad.Genre = "opera"
	_, err = s.service.StartSearch(s.ctx, "alice", bad)
	s.ErrorIs(err, model.ErrInvalidGenre)

	bad = req
	bad.CardIDs = req.CardIDs[:4]
	_, err = s.service.StartSearch(s.ctx, "alice", bad)
	s.ErrorIs(err, model.ErrInvalidDeck)

	bad = req
	bad.CardIDs = []model.CardID{req.CardIDs[0], req.CardIDs[0], req.CardIDs[1], req.CardIDs[2], req.CardIDs[3]}
	_, err = s.service.StartSearch(s.ctx, "alice", bad)
	s.ErrorIs(err, model.ErrInvalidDeck)

	s.Equal(model.SessionIdle, s.service.Status("alice").State)
	s.Zero(s.scheduler.Pending())
}

func (s *ServiceSuite) TestStartSearchTwiceRejected() {
	req := s.request("alice", false)
	_, err := s.service.StartSearch(s.ctx, "alice", req)
	s.Require().NoError(err)

	_, err = s.service.StartSearch(s.ctx, "alice", req)
	s.ErrorIs(err, model.ErrAlreadySearching)
}

func (s *ServiceSuite) TestSyntheticMatchFound() {
	_, err := s.service.StartSearch(s.ctx, "alice", s.request("alice", false))
	s.Require().NoError(err)

	// Empty random queue rolls the minimum delay
	s.scheduler.Advance(1999 * time.Millisecond)
	s.Equal(model.SessionSearching, s.service.Status("alice").State)

	s.scheduler.Advance(time.Millisecond)
	sess := s.service.Status("alice")
	s.Require().Equal(model.SessionFound, sess.State)
	s.Require().NotNil(sess.Match)

	bot := sess.Match.Player2
	s.True(bot.IsBot)
	s.Equal(1, bot.Level)
	s.Equal(model.StartingRating-100, bot.Rating)
	s.Equal(500*85/100, bot.TotalPower)
	s.Len(bot.Deck, model.DeckSize)

	found := s.events.OfType("alice", model.EventMatchFound)
	s.Require().Len(found, 1)
	payload := found[0].Payload.(model.MatchFoundPayload)
	s.Equal(bot.ID, payload.Opponent.ID)
	s.Nil(payload.Opponent.Deck)
}

func (s *ServiceSuite) TestSyntheticOpponentUpperBounds() {
	req := s.request("alice", false)
	// Minimum delay, then the top of the level, rating and power rolls
	s.random.QueueIntn(0, 99, 999, 999)
	_, err := s.service.StartSearch(s.ctx, "alice", req)
	s.Require().NoError(err)

	s.scheduler.Advance(2 * time.Second)
	sess := s.service.Status("alice")
	s.Require().Equal(model.SessionFound, sess.State)

	bot := sess.Match.Player2
	s.Equal(2, bot.Level)
	s.Equal(model.StartingRating+100, bot.Rating)
	s.Equal(500*115/100, bot.TotalPower)
	s.Equal(575, bot.TotalPower)
}

func (s *ServiceSuite) TestSyntheticBattleSettles() {
	_, err := s.service.StartSearch(s.ctx, "alice", s.request("alice", false))
	s.Require().NoError(err)

	s.scheduler.Advance(2 * time.Second)
	s.Equal(model.SessionFound, s.service.Status("alice").State)
	s.scheduler.Advance(3 * time.Second)

	sess := s.service.Status("alice")
	s.Require().Equal(model.SessionResult, sess.State)
	s.Empty(sess.Error)
	s.Require().NotNil(sess.Outcome)
	s.Equal(model.MatchCompleted, sess.Match.Status)
	s.Zero(s.scheduler.Pending())

	state, err := s.state.Get(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.StartingRating+sess.Outcome.RatingDelta, state.Rating)
	s.Equal(sess.Outcome.NewRating, state.Rating)
	s.Equal(model.StartingTokens+sess.Outcome.Coins, state.Tokens)
	s.Equal(sess.Outcome.Experience, state.TotalExperience)
	s.Equal(1, state.Stats.PvPMatches)
	s.Equal(1, state.Stats.TotalBattles)
	s.Equal(1, state.DailyMissions.Progress[missions.DailyBattle])

	history, err := s.service.History(s.ctx, "alice", 10)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(sess.Match.ID, history[0].ID)

	s.Len(s.events.OfType("alice", model.EventBattleStarted), 1)
	s.Len(s.events.OfType("alice", model.EventBattleComplete), 1)
	// daily_battle completes on the first battle; daily_win needs three
	s.Len(s.events.OfType("alice", model.EventMissionComplete), 1)
}

func (s *ServiceSuite) TestCancelWhileSearching() {
	_, err := s.service.StartSearch(s.ctx, "alice", s.request("alice", true))
	s.Require().NoError(err)
	s.Equal(1, s.queue.Len())

	s.Require().NoError(s.service.Cancel(s.ctx, "alice"))
	s.Equal(model.SessionIdle, s.service.Status("alice").State)
	s.Zero(s.queue.Len())
	s.Zero(s.scheduler.Pending())
	s.Len(s.events.OfType("alice", model.EventSearchCancelled), 1)

	// Nothing fires later
	s.scheduler.Advance(time.Minute)
	s.Empty(s.events.OfType("alice", model.EventMatchFound))
}

func (s *ServiceSuite) TestCancelGuards() {
	s.ErrorIs(s.service.Cancel(s.ctx, "alice"), model.ErrNotSearching)

	_, err := s.service.StartSearch(s.ctx, "alice", s.request("alice", false))
	s.Require().NoError(err)
	s.scheduler.Advance(2 * time.Second)

	s.ErrorIs(s.service.Cancel(s.ctx, "alice"), model.ErrCannotCancel)
	s.Equal(model.SessionFound, s.service.Status("alice").State)
}

func (s *ServiceSuite) TestAcknowledge() {
	_, err := s.service.Acknowledge("alice")
	s.ErrorIs(err, model.ErrNotSearching)

	req := s.request("alice", false)
	_, err = s.service.StartSearch(s.ctx, "alice", req)
	s.Require().NoError(err)
	_, err = s.service.Acknowledge("alice")
	s.ErrorIs(err, model.ErrAlreadySearching)

	s.scheduler.Advance(10 * time.Second)
	s.Require().Equal(model.SessionResult, s.service.Status("alice").State)

	sess, err := s.service.Acknowledge("alice")
	s.Require().NoError(err)
	s.Equal(model.SessionIdle, sess.State)
	s.Equal(model.SessionIdle, s.service.Status("alice").State)
}

func (s *ServiceSuite) TestSearchAgainFromResult() {
	req := s.request("alice", false)
	_, err := s.service.StartSearch(s.ctx, "alice", req)
	s.Require().NoError(err)
	s.scheduler.Advance(10 * time.Second)
	s.Require().Equal(model.SessionResult, s.service.Status("alice").State)

	sess, err := s.service.StartSearch(s.ctx, "alice", req)
	s.Require().NoError(err)
	s.Equal(model.SessionSearching, sess.State)
	s.Nil(sess.Outcome)
}

func (s *ServiceSuite) TestLivePlayersMatchEachOther() {
	_, err := s.service.StartSearch(s.ctx, "alice", s.request("alice", true))
	s.Require().NoError(err)
	_, err = s.service.StartSearch(s.ctx, "bob", s.request("bob", true))
	s.Require().NoError(err)
	s.Equal(2, s.queue.Len())

	s.scheduler.Advance(2 * time.Second)
	alice := s.service.Status("alice")
	bob := s.service.Status("bob")
	s.Require().Equal(model.SessionFound, alice.State)
	s.Require().Equal(model.SessionFound, bob.State)
	s.Equal(alice.Match.ID, bob.Match.ID)
	s.Equal(model.PlayerID("alice"), alice.Match.Player1.ID)
	s.False(alice.Match.Player2.IsBot)
	s.Zero(s.queue.Len())

	s.scheduler.Advance(3 * time.Second)
	alice = s.service.Status("alice")
	bob = s.service.Status("bob")
	s.Require().Equal(model.SessionResult, alice.State)
	s.Require().Equal(model.SessionResult, bob.State)
	s.Equal(alice.Outcome.Result, bob.Outcome.Result)
	s.Equal(alice.Outcome.Outcome.Invert(), bob.Outcome.Outcome)

	stored, err := s.storage.GetMatch(s.ctx, alice.Match.ID)
	s.Require().NoError(err)
	s.Equal(model.MatchCompleted, stored.Status)

	for _, id := range []model.PlayerID{"alice", "bob"} {
		history, err := s.service.History(s.ctx, id, 10)
		s.Require().NoError(err)
		s.Len(history, 1)
	}
}

func (s *ServiceSuite) TestLiveSearchKeepsGenreApart() {
	creative := s.request("alice", true)
	creative.Genre = model.GenreCreative
	analytical := s.request("bob", true)
	analytical.Genre = model.GenreAnalytical
	_, err := s.service.StartSearch(s.ctx, "alice", creative)
	s.Require().NoError(err)
	_, err = s.service.StartSearch(s.ctx, "bob", analytical)
	s.Require().NoError(err)

	s.scheduler.Advance(2 * time.Second)
	s.Equal(model.SessionSearching, s.service.Status("alice").State)
	s.Equal(model.SessionSearching, s.service.Status("bob").State)
	s.Equal(2, s.queue.Len())

	// A same-genre player pairs with bob under bob's genre
	carolReq := s.request("carol", true)
	carolReq.Genre = model.GenreAnalytical
	_, err = s.service.StartSearch(s.ctx, "carol", carolReq)
	s.Require().NoError(err)
	s.scheduler.Advance(2 * time.Second)

	bob := s.service.Status("bob")
	s.Require().Equal(model.SessionFound, bob.State)
	s.Equal(model.GenreAnalytical, bob.Match.Genre)
	s.Equal(model.SessionSearching, s.service.Status("alice").State)
}

func (s *ServiceSuite) TestCancelAfterClaimDropsAssignment() {
	_, err := s.service.StartSearch(s.ctx, "alice", s.request("alice", true))
	s.Require().NoError(err)
	s.scheduler.Advance(time.Second)
	_, err = s.service.StartSearch(s.ctx, "bob", s.request("bob", true))
	s.Require().NoError(err)

	// Alice's poll at 2s claims bob before bob's own poll at 3s
	s.scheduler.Advance(time.Second)
	alice := s.service.Status("alice")
	s.Require().Equal(model.SessionFound, alice.State)
	s.Equal(model.SessionSearching, s.service.Status("bob").State)
	s.True(s.queue.Pending("bob"))

	s.Require().NoError(s.service.Cancel(s.ctx, "bob"))
	s.False(s.queue.Pending("bob"))

	fresh := s.request("bob", true)
	_, err = s.service.StartSearch(s.ctx, "bob", fresh)
	s.Require().NoError(err)

	s.scheduler.Advance(2 * time.Second)
	bob := s.service.Status("bob")
	s.Equal(model.SessionSearching, bob.State)
	s.Nil(bob.Match)
	s.Empty(s.events.OfType("bob", model.EventMatchFound))

	// Alice's battle settles without touching bob
	s.scheduler.Advance(2 * time.Second)
	s.Equal(model.SessionResult, s.service.Status("alice").State)
	state, err := s.state.Get(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(model.StartingRating, state.Rating)
	s.Zero(state.Stats.PvPMatches)
}

func (s *ServiceSuite) TestPollIgnoresStaleAssignment() {
	req := s.request("bob", true)
	_, err := s.service.StartSearch(s.ctx, "bob", req)
	s.Require().NoError(err)
	started := s.clock.Now()

	assign := func(id model.MatchID, cards []model.CardID, at time.Time) {
		s.Require().NoError(s.storage.SaveMatch(s.ctx, &model.PvPMatch{
			ID:        id,
			Player1:   model.PvPPlayer{ID: "alice"},
			Player2:   model.PvPPlayer{ID: "bob", SelectedCards: cards},
			Status:    model.MatchFound,
			Mode:      req.Mode,
			Genre:     req.Genre,
			StartTime: at,
		}))
		s.Require().NoError(s.queue.Assign(s.ctx, "bob", id))
	}

	assign("old-deck", s.deckFor("bob"), started)
	s.scheduler.Advance(2 * time.Second)
	s.Equal(model.SessionSearching, s.service.Status("bob").State)

	assign("too-early", req.CardIDs, started.Add(-time.Second))
	s.scheduler.Advance(2 * time.Second)
	s.Equal(model.SessionSearching, s.service.Status("bob").State)

	assign("current", req.CardIDs, s.clock.Now())
	s.scheduler.Advance(2 * time.Second)
	bob := s.service.Status("bob")
	s.Require().Equal(model.SessionFound, bob.State)
	s.Equal(model.MatchID("current"), bob.Match.ID)
}

func (s *ServiceSuite) TestLiveSearchFallsBackToSynthetic() {
	_, err := s.service.StartSearch(s.ctx, "alice", s.request("alice", true))
	s.Require().NoError(err)

	s.scheduler.Advance(58 * time.Second)
	s.Equal(model.SessionSearching, s.service.Status("alice").State)

	// The poll at 60s times out and the synthetic opponent follows 2s later
	s.scheduler.Advance(4 * time.Second)
	sess := s.service.Status("alice")
	s.Require().Equal(model.SessionFound, sess.State)
	s.True(sess.Match.Player2.IsBot)
	s.Zero(s.queue.Len())
}

func (s *ServiceSuite) TestMatchRequiresParticipant() {
	_, err := s.service.StartSearch(s.ctx, "alice", s.request("alice", false))
	s.Require().NoError(err)
	s.scheduler.Advance(10 * time.Second)
	id := s.service.Status("alice").Match.ID

	match, err := s.service.Match(s.ctx, "alice", id)
	s.Require().NoError(err)
	s.Equal(id, match.ID)

	_, err = s.service.Match(s.ctx, "mallory", id)
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *ServiceSuite) TestShutdownStopsSessions() {
	_, err := s.service.StartSearch(s.ctx, "alice", s.request("alice", true))
	s.Require().NoError(err)

	s.service.Shutdown(s.ctx)
	s.Zero(s.scheduler.Pending())
	s.Zero(s.queue.Len())
	s.Equal(model.SessionIdle, s.service.Status("alice").State)
}

func (s *ServiceSuite) TestShutdownLogsLeaveFailure() {
	cat := catalog.MustDefault()
	queue := &flakyQueue{Queue: s.queue}
	logger, logs := testutil.BufferLogger()
	service := New(Deps{
		State:     s.state,
		Storage:   s.storage,
		Queue:     queue,
		Catalog:   cat,
		Battle:    battle.New(cat),
		Synergy:   synergy.New(cat),
		Generator: s.generator,
		Scheduler: s.scheduler,
		Sink:      s.events,
		Clock:     s.clock,
		Random:    s.random,
		Logger:    logger,
	}, DefaultConfig())

	_, err := service.StartSearch(s.ctx, "alice", s.request("alice", true))
	s.Require().NoError(err)

	queue.broken = true
	service.Shutdown(s.ctx)
	s.Zero(s.scheduler.Pending())
	s.Contains(logs.String(), `"msg":"failed to leave queue"`)
	s.Contains(logs.String(), `"error":"queue offline"`)
	s.Contains(logs.String(), `"level":"WARN"`)
}
