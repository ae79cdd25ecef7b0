// Package matchmaking drives the per-player PvP session state machine:
// idle -> searching -> found -> battling -> result.
package matchmaking

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/aicardgame-go/internal/catalog"
	"github.com/mcoot/aicardgame-go/internal/dependencies/clock"
	"github.com/mcoot/aicardgame-go/internal/dependencies/random"
	"github.com/mcoot/aicardgame-go/internal/dependencies/scheduler"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/notify"
	"github.com/mcoot/aicardgame-go/internal/services/battle"
	"github.com/mcoot/aicardgame-go/internal/services/cards"
	"github.com/mcoot/aicardgame-go/internal/services/gamestate"
	"github.com/mcoot/aicardgame-go/internal/services/missions"
	"github.com/mcoot/aicardgame-go/internal/services/rating"
	"github.com/mcoot/aicardgame-go/internal/services/synergy"
	"github.com/mcoot/aicardgame-go/internal/storage"
)

// Config holds matchmaking timings and constants
type Config struct {
	SyntheticDelayMin time.Duration
	SyntheticDelayMax time.Duration
	PollInterval      time.Duration
	LiveTimeout       time.Duration
	BattleDelay       time.Duration
	RatingWindow      int
	KFactor           int
	// CallbackTimeout bounds storage work done from timer callbacks
	CallbackTimeout time.Duration
}

// DefaultConfig returns the standard matchmaking timings
func DefaultConfig() Config {
	return Config{
		SyntheticDelayMin: 2 * time.Second,
		SyntheticDelayMax: 5 * time.Second,
		PollInterval:      2 * time.Second,
		LiveTimeout:       60 * time.Second,
		BattleDelay:       3 * time.Second,
		RatingWindow:      200,
		KFactor:           rating.DefaultKFactor,
		CallbackTimeout:   10 * time.Second,
	}
}

// SearchRequest starts a session
type SearchRequest struct {
	CardIDs []model.CardID   `json:"cardIds"`
	Mode    model.BattleMode `json:"mode"`
	Genre   model.Genre      `json:"genre"`
	Live    bool             `json:"live"`
}

// Outcome is what a finished battle did to the player
type Outcome = model.BattleCompletePayload

// Session is a snapshot of a player's matchmaking session
type Session struct {
	PlayerID  model.PlayerID     `json:"playerId"`
	State     model.SessionState `json:"state"`
	Mode      model.BattleMode   `json:"mode,omitempty"`
	Genre     model.Genre        `json:"genre,omitempty"`
	Live      bool               `json:"live"`
	Player    *model.PvPPlayer   `json:"player,omitempty"`
	Match     *model.PvPMatch    `json:"match,omitempty"`
	Outcome   *Outcome           `json:"outcome,omitempty"`
	LevelUp   *gamestate.LevelUp `json:"levelUp,omitempty"`
	StartedAt time.Time          `json:"startedAt,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// session is the live, mutable form of Session
type session struct {
	Session
	gen     int
	task    scheduler.Task
	inQueue bool
}

func (s *session) snapshot() *Session {
	cp := s.Session
	if s.Player != nil {
		p := *s.Player
		cp.Player = &p
	}
	if s.Match != nil {
		m := *s.Match
		cp.Match = &m
	}
	if s.Outcome != nil {
		o := *s.Outcome
		cp.Outcome = &o
	}
	if s.LevelUp != nil {
		l := *s.LevelUp
		cp.LevelUp = &l
	}
	return &cp
}

// Service owns every player's matchmaking session
type Service struct {
	state     *gamestate.Service
	storage   storage.Storage
	queue     storage.MatchQueue
	catalog   *catalog.Catalog
	battle    *battle.Engine
	synergy   *synergy.Engine
	generator *cards.Generator
	rating    *rating.Calculator
	scheduler scheduler.Scheduler
	sink      notify.Sink
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
	cfg       Config

	mu       sync.Mutex
	sessions map[model.PlayerID]*session
	gen      int
}

// Deps groups the collaborators of the matchmaking service
type Deps struct {
	State     *gamestate.Service
	Storage   storage.Storage
	Queue     storage.MatchQueue
	Catalog   *catalog.Catalog
	Battle    *battle.Engine
	Synergy   *synergy.Engine
	Generator *cards.Generator
	Scheduler scheduler.Scheduler
	Sink      notify.Sink
	Clock     clock.Clock
	Random    random.Random
	Logger    *slog.Logger
}

// New creates a new matchmaking service
func New(deps Deps, cfg Config) *Service {
	return &Service{
		state:     deps.State,
		storage:   deps.Storage,
		queue:     deps.Queue,
		catalog:   deps.Catalog,
		battle:    deps.Battle,
		synergy:   deps.Synergy,
		generator: deps.Generator,
		rating:    rating.New(cfg.KFactor),
		scheduler: deps.Scheduler,
		sink:      deps.Sink,
		clock:     deps.Clock,
		random:    deps.Random,
		logger:    deps.Logger.With(slog.String("component", "matchmaking")),
		cfg:       cfg,
		sessions:  make(map[model.PlayerID]*session),
	}
}

func (s *Service) notify(t model.EventType, playerID model.PlayerID, matchID model.MatchID, payload any) {
	s.sink.Notify(model.Event{
		Type:      t,
		Timestamp: s.clock.Now(),
		PlayerID:  playerID,
		MatchID:   matchID,
		Payload:   payload,
	})
}

func (s *Service) callbackContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.cfg.CallbackTimeout)
}

// active reports whether the session blocks a new search
func (s *session) active() bool {
	switch s.State {
	case model.SessionSearching, model.SessionFound, model.SessionBattling:
		return true
	default:
		return false
	}
}

// current returns the session if it still belongs to generation gen
func (s *Service) current(playerID model.PlayerID, gen int) *session {
	sess, ok := s.sessions[playerID]
	if !ok || sess.gen != gen {
		return nil
	}
	return sess
}

// StartSearch validates the deck and begins looking for an opponent
func (s *Service) StartSearch(ctx context.Context, userID model.PlayerID, req SearchRequest) (*Session, error) {
	if !req.Mode.Valid() {
		return nil, model.ErrInvalidMode
	}
	if _, ok := s.catalog.Weights(req.Genre); !ok {
		return nil, model.ErrInvalidGenre
	}

	s.mu.Lock()
	if sess, ok := s.sessions[userID]; ok && sess.active() {
		s.mu.Unlock()
		return nil, model.ErrAlreadySearching
	}
	s.mu.Unlock()

	state, err := s.state.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	deck, err := battle.ValidateDeck(state, req.CardIDs)
	if err != nil {
		return nil, err
	}

	player := model.PvPPlayer{
		ID:            userID,
		Name:          state.Nickname,
		Level:         state.Level,
		Rating:        state.Rating,
		SelectedCards: append([]model.CardID(nil), req.CardIDs...),
		Deck:          deck,
		SynergyBonus:  s.synergy.Calculate(state.Slots).PowerBonus,
	}
	for _, c := range deck {
		player.TotalPower += c.TotalPower()
	}

	now := s.clock.Now()
	s.mu.Lock()
	if sess, ok := s.sessions[userID]; ok && sess.active() {
		s.mu.Unlock()
		return nil, model.ErrAlreadySearching
	}
	s.gen++
	sess := &session{
		Session: Session{
			PlayerID:  userID,
			State:     model.SessionSearching,
			Mode:      req.Mode,
			Genre:     req.Genre,
			Live:      req.Live,
			Player:    &player,
			StartedAt: now,
		},
		gen: s.gen,
	}
	s.sessions[userID] = sess
	s.mu.Unlock()

	if req.Live {
		// Leave first so an assignment from an earlier search cannot be adopted
		err = s.queue.Leave(ctx, userID)
		if err == nil {
			err = s.queue.Join(ctx, &model.QueueEntry{Player: player, Mode: req.Mode, Genre: req.Genre, JoinedAt: now})
		}
		if err != nil {
			s.mu.Lock()
			if s.current(userID, sess.gen) != nil {
				delete(s.sessions, userID)
			}
			s.mu.Unlock()
			return nil, err
		}
		s.mu.Lock()
		sess.inQueue = true
		s.scheduleLocked(sess, s.cfg.PollInterval, s.poll)
		s.mu.Unlock()
	} else {
		s.mu.Lock()
		s.scheduleSyntheticLocked(sess)
		s.mu.Unlock()
	}

	s.logger.Info("search started",
		slog.String("player_id", string(userID)),
		slog.String("mode", string(req.Mode)),
		slog.Bool("live", req.Live),
		slog.Int("total_power", player.TotalPower),
	)
	s.notify(model.EventSearchStarted, userID, "", nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	return sess.snapshot(), nil
}

// scheduleLocked arms the session's single pending task. Caller holds s.mu.
func (s *Service) scheduleLocked(sess *session, d time.Duration, fn func(model.PlayerID, int)) {
	playerID, gen := sess.PlayerID, sess.gen
	task, err := s.scheduler.AfterFunc(d, func() { fn(playerID, gen) })
	if err != nil {
		s.logger.Error("failed to schedule matchmaking step",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		sess.State = model.SessionResult
		sess.Error = err.Error()
		return
	}
	sess.task = task
}

func (s *Service) scheduleSyntheticLocked(sess *session) {
	ms := random.Between(s.random,
		int(s.cfg.SyntheticDelayMin/time.Millisecond),
		int(s.cfg.SyntheticDelayMax/time.Millisecond),
	)
	s.scheduleLocked(sess, time.Duration(ms)*time.Millisecond, s.synthetic)
}

// synthetic builds a bot opponent for a session still searching
func (s *Service) synthetic(playerID model.PlayerID, gen int) {
	s.mu.Lock()
	sess := s.current(playerID, gen)
	if sess == nil || sess.State != model.SessionSearching {
		s.mu.Unlock()
		return
	}
	leaveQueue := sess.inQueue
	sess.inQueue = false
	player := *sess.Player
	mode, genre := sess.Mode, sess.Genre
	s.mu.Unlock()

	if leaveQueue {
		ctx, cancel := s.callbackContext()
		if err := s.queue.Leave(ctx, playerID); err != nil {
			s.logger.Warn("failed to leave queue", slog.String("player_id", string(playerID)), slog.String("error", err.Error()))
		}
		cancel()
	}

	match := &model.PvPMatch{
		ID:        newMatchID(),
		Player1:   player,
		Player2:   s.syntheticOpponent(&player),
		Status:    model.MatchFound,
		Mode:      mode,
		Genre:     genre,
		StartTime: s.clock.Now(),
	}
	s.found(playerID, gen, match)
}

// syntheticOpponent rolls a bot near the player's level, rating and power
func (s *Service) syntheticOpponent(p *model.PvPPlayer) model.PvPPlayer {
	level := p.Level + random.Between(s.random, -1, 1)
	if level < 1 {
		level = 1
	}
	r := p.Rating + random.Between(s.random, -100, 100)
	if r < rating.MinRating {
		r = rating.MinRating
	}
	power := p.TotalPower * random.Between(s.random, 85, 115) / 100

	id := model.PlayerID("bot-" + uuid.NewString())
	deck := s.generator.Deck(id, power)
	ids := make([]model.CardID, len(deck))
	total := 0
	for i, c := range deck {
		ids[i] = c.ID
		total += c.TotalPower()
	}
	return model.PvPPlayer{
		ID:            id,
		Name:          botName(s.random),
		Level:         level,
		Rating:        r,
		SelectedCards: ids,
		Deck:          deck,
		TotalPower:    total,
		IsBot:         true,
	}
}

var botNames = []string{"Rogue Model", "Shadow Agent", "Echo Drone", "Prompt Wraith", "Null Oracle", "Glitch Muse"}

func botName(r random.Random) string {
	return botNames[r.Intn(len(botNames))]
}

func newMatchID() model.MatchID {
	return model.MatchID(uuid.NewString())
}

// poll checks for an assignment from another claimer, then tries to claim
// an opponent. Falls back to a synthetic opponent after LiveTimeout.
func (s *Service) poll(playerID model.PlayerID, gen int) {
	s.mu.Lock()
	sess := s.current(playerID, gen)
	if sess == nil || sess.State != model.SessionSearching {
		s.mu.Unlock()
		return
	}
	entry := &model.QueueEntry{Player: *sess.Player, Mode: sess.Mode, Genre: sess.Genre, JoinedAt: sess.StartedAt}
	elapsed := s.clock.Now().Sub(sess.StartedAt)
	s.mu.Unlock()

	ctx, cancel := s.callbackContext()
	defer cancel()

	matchID, ok, err := s.queue.TakeAssignment(ctx, playerID)
	if err != nil {
		s.logger.Warn("assignment check failed", slog.String("player_id", string(playerID)), slog.String("error", err.Error()))
	} else if ok {
		match, err := s.storage.GetMatch(ctx, matchID)
		switch {
		case err != nil:
			s.logger.Warn("assigned match missing", slog.String("match_id", string(matchID)), slog.String("error", err.Error()))
		case !assignedTo(match, entry):
			s.logger.Warn("stale assignment ignored",
				slog.String("player_id", string(playerID)),
				slog.String("match_id", string(matchID)))
		default:
			s.mu.Lock()
			if sess := s.current(playerID, gen); sess != nil {
				sess.inQueue = false
			}
			s.mu.Unlock()
			s.found(playerID, gen, match)
			return
		}
	}

	if elapsed >= s.cfg.LiveTimeout {
		s.logger.Info("live search timed out", slog.String("player_id", string(playerID)))
		if err := s.queue.Leave(ctx, playerID); err != nil {
			s.logger.Warn("failed to leave queue", slog.String("player_id", string(playerID)), slog.String("error", err.Error()))
		}
		s.mu.Lock()
		if sess := s.current(playerID, gen); sess != nil && sess.State == model.SessionSearching {
			sess.inQueue = false
			s.scheduleSyntheticLocked(sess)
		}
		s.mu.Unlock()
		return
	}

	opp, err := s.queue.ClaimOpponent(ctx, entry, s.cfg.RatingWindow)
	if err != nil && !errors.Is(err, storage.ErrNotQueued) {
		s.logger.Warn("queue claim failed", slog.String("player_id", string(playerID)), slog.String("error", err.Error()))
	}
	if opp != nil {
		s.claimed(ctx, playerID, gen, entry, opp)
		return
	}

	s.mu.Lock()
	if sess := s.current(playerID, gen); sess != nil && sess.State == model.SessionSearching {
		s.scheduleLocked(sess, s.cfg.PollInterval, s.poll)
	}
	s.mu.Unlock()
}

// assignedTo reports whether match was formed from this queue entry: same
// deck, mode and genre, and no earlier than the entry joined
func assignedTo(match *model.PvPMatch, self *model.QueueEntry) bool {
	side, _ := match.Side(self.Player.ID)
	if side == nil || match.StartTime.Before(self.JoinedAt) {
		return false
	}
	return match.Mode == self.Mode && match.Genre == self.Genre &&
		slices.Equal(side.SelectedCards, self.Player.SelectedCards)
}

// claimed creates a match against a claimed queue entry and hands it to the opponent
func (s *Service) claimed(ctx context.Context, playerID model.PlayerID, gen int, self, opp *model.QueueEntry) {
	match := &model.PvPMatch{
		ID:        newMatchID(),
		Player1:   self.Player,
		Player2:   opp.Player,
		Status:    model.MatchFound,
		Mode:      self.Mode,
		Genre:     self.Genre,
		StartTime: s.clock.Now(),
	}

	if err := s.storage.SaveMatch(ctx, match); err != nil {
		s.logger.Error("failed to save live match", slog.String("match_id", string(match.ID)), slog.String("error", err.Error()))
		// Opponent keeps polling and will fall back on its own
		s.mu.Lock()
		if sess := s.current(playerID, gen); sess != nil && sess.State == model.SessionSearching {
			s.scheduleSyntheticLocked(sess)
		}
		s.mu.Unlock()
		return
	}
	if err := s.queue.Assign(ctx, opp.Player.ID, match.ID); err != nil {
		s.logger.Warn("failed to assign opponent", slog.String("player_id", string(opp.Player.ID)), slog.String("error", err.Error()))
	}

	s.mu.Lock()
	if sess := s.current(playerID, gen); sess != nil {
		sess.inQueue = false
	}
	s.mu.Unlock()
	s.found(playerID, gen, match)
}

// found moves a searching session to found and arms the battle
func (s *Service) found(playerID model.PlayerID, gen int, match *model.PvPMatch) {
	s.mu.Lock()
	sess := s.current(playerID, gen)
	if sess == nil || sess.State != model.SessionSearching {
		s.mu.Unlock()
		return
	}
	sess.State = model.SessionFound
	sess.Match = match
	s.scheduleLocked(sess, s.cfg.BattleDelay, s.fight)
	opponent := *match.Opponent(playerID)
	s.mu.Unlock()

	opponent.Deck = nil
	s.logger.Info("match found",
		slog.String("player_id", string(playerID)),
		slog.String("match_id", string(match.ID)),
		slog.Bool("bot", opponent.IsBot),
	)
	s.notify(model.EventMatchFound, playerID, match.ID, model.MatchFoundPayload{
		Opponent: opponent,
		Mode:     match.Mode,
		Genre:    match.Genre,
	})
}

// fight resolves the battle and applies its results to the player
func (s *Service) fight(playerID model.PlayerID, gen int) {
	s.mu.Lock()
	sess := s.current(playerID, gen)
	if sess == nil || sess.State != model.SessionFound {
		s.mu.Unlock()
		return
	}
	sess.State = model.SessionBattling
	sess.Match.Status = model.MatchBattling
	match := *sess.Match
	s.mu.Unlock()

	s.notify(model.EventBattleStarted, playerID, match.ID, nil)

	ctx, cancel := s.callbackContext()
	defer cancel()

	outcome, up, err := s.settle(ctx, playerID, &match)

	s.mu.Lock()
	if sess := s.current(playerID, gen); sess != nil {
		sess.State = model.SessionResult
		sess.Match = &match
		sess.task = nil
		if err != nil {
			sess.Error = err.Error()
		} else {
			sess.Outcome = outcome
			if up.Gained() {
				sess.LevelUp = &up
			}
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to settle battle",
			slog.String("player_id", string(playerID)),
			slog.String("match_id", string(match.ID)),
			slog.String("error", err.Error()),
		)
		return
	}

	s.notify(model.EventBattleComplete, playerID, match.ID, *outcome)
	if up.Gained() {
		s.notify(model.EventLevelUp, playerID, "", model.LevelUpPayload{
			OldLevel: up.OldLevel, NewLevel: up.NewLevel, Tokens: up.Tokens, BonusCards: up.BonusCards,
		})
	}
}

// settle resolves the match deterministically and applies the player's side of it.
// Player1 (or the only human side) stores the completed match.
func (s *Service) settle(ctx context.Context, playerID model.PlayerID, match *model.PvPMatch) (*Outcome, gamestate.LevelUp, error) {
	result, err := s.battle.Resolve(match.Mode, match.Genre, battle.SideOf(&match.Player1), battle.SideOf(&match.Player2))
	if err != nil {
		return nil, gamestate.LevelUp{}, err
	}
	now := s.clock.Now()
	match.Result = result
	match.Status = model.MatchCompleted
	match.CompletedAt = &now

	outcome := match.OutcomeFor(playerID)
	opponent := match.Opponent(playerID)

	var (
		up        gamestate.LevelUp
		delta     int
		newRating int
		rewards   rating.Rewards
		completed []missions.Mission
	)
	_, err = s.state.Mutate(ctx, playerID, func(state *model.GameState) error {
		completed = nil
		newRating, delta = s.rating.Apply(state.Rating, opponent.Rating, outcome)
		state.Rating = newRating

		rewards = rating.RewardsFor(outcome, state.Level, opponent.Level)
		state.Tokens += rewards.Coins
		var err error
		if up, err = gamestate.ApplyExperience(state, rewards.Experience); err != nil {
			return err
		}

		gamestate.ApplyBattleResult(state, outcome)
		state.Stats.PvPMatches++

		if m, done := missions.Advance(state, now, missions.DailyBattle, 1); done {
			completed = append(completed, m)
		}
		if outcome == model.OutcomeWin {
			if m, done := missions.Advance(state, now, missions.DailyWin, 1); done {
				completed = append(completed, m)
			}
		}
		return nil
	})
	if err != nil {
		return nil, gamestate.LevelUp{}, err
	}

	if match.Player1.ID == playerID || opponent.IsBot {
		if err := s.storage.SaveMatch(ctx, match); err != nil {
			s.logger.Error("failed to save match history", slog.String("match_id", string(match.ID)), slog.String("error", err.Error()))
		}
	}
	missions.NotifyCompleted(s.sink, playerID, now, completed)

	s.logger.Info("battle complete",
		slog.String("player_id", string(playerID)),
		slog.String("match_id", string(match.ID)),
		slog.String("outcome", string(outcome)),
		slog.Int("rating_delta", delta),
	)
	return &Outcome{
		Outcome:     outcome,
		RatingDelta: delta,
		NewRating:   newRating,
		Coins:       rewards.Coins,
		Experience:  rewards.Experience,
		Result:      *result,
	}, up, nil
}

// Cancel stops a search that has not yet found an opponent
func (s *Service) Cancel(ctx context.Context, userID model.PlayerID) error {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok || !sess.active() {
		s.mu.Unlock()
		return model.ErrNotSearching
	}
	if sess.State != model.SessionSearching {
		s.mu.Unlock()
		return model.ErrCannotCancel
	}
	if sess.task != nil {
		sess.task.Stop()
	}
	live := sess.Live
	delete(s.sessions, userID)
	s.mu.Unlock()

	// A live player may already be claimed; Leave also drops that assignment
	if live {
		if err := s.queue.Leave(ctx, userID); err != nil {
			s.logger.Warn("failed to leave queue", slog.String("player_id", string(userID)), slog.String("error", err.Error()))
		}
	}

	s.logger.Info("search cancelled", slog.String("player_id", string(userID)))
	s.notify(model.EventSearchCancelled, userID, "", nil)
	return nil
}

// Status returns the player's current session. Players without one are idle.
func (s *Service) Status(userID model.PlayerID) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return &Session{PlayerID: userID, State: model.SessionIdle}
	}
	return sess.snapshot()
}

// Acknowledge clears a finished session, returning the player to idle
func (s *Service) Acknowledge(userID model.PlayerID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, model.ErrNotSearching
	}
	if sess.active() {
		return nil, model.ErrAlreadySearching
	}
	delete(s.sessions, userID)
	return &Session{PlayerID: userID, State: model.SessionIdle}, nil
}

// History returns the player's most recent matches
func (s *Service) History(ctx context.Context, userID model.PlayerID, limit int) ([]*model.PvPMatch, error) {
	return s.storage.ListMatchesForPlayer(ctx, userID, limit)
}

// Match returns a stored match the player took part in
func (s *Service) Match(ctx context.Context, userID model.PlayerID, matchID model.MatchID) (*model.PvPMatch, error) {
	match, err := s.storage.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if p, _ := match.Side(userID); p == nil {
		return nil, model.ErrMatchNotFound
	}
	return match, nil
}

// Shutdown stops every pending task and removes queued players
func (s *Service) Shutdown(ctx context.Context) {
	s.mu.Lock()
	var queued []model.PlayerID
	for id, sess := range s.sessions {
		if sess.task != nil {
			sess.task.Stop()
		}
		if sess.Live {
			queued = append(queued, id)
		}
	}
	s.sessions = make(map[model.PlayerID]*session)
	s.mu.Unlock()

	for _, id := range queued {
		if err := s.queue.Leave(ctx, id); err != nil {
			s.logger.Warn("failed to leave queue", slog.String("player_id", string(id)), slog.String("error", err.Error()))
		}
	}
}
