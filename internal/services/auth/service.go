package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/aicardgame-go/internal/dependencies/clock"
	"github.com/mcoot/aicardgame-go/internal/dependencies/scheduler"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/services/gamestate"
	"github.com/mcoot/aicardgame-go/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidName        = errors.New("display name must be 1-32 characters")
)

// MaxDisplayNameLength bounds display names and nicknames
const MaxDisplayNameLength = 32

// CleanupJobName is the periodic job that drops expired sessions
const CleanupJobName = "session-cleanup"

// Session represents an authenticated session
type Session struct {
	Token     string         `json:"token"`
	PlayerID  model.PlayerID `json:"playerId"`
	Player    model.Player   `json:"player"`
	CreatedAt time.Time      `json:"createdAt"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
	CleanupInterval time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
		CleanupInterval: time.Hour,
	}
}

// Service creates players, seeds their game state and tracks sessions
type Service struct {
	storage storage.Storage
	state   *gamestate.Service
	clock   clock.Clock
	logger  *slog.Logger
	cfg     Config

	mu       sync.RWMutex
	sessions map[string]*Session
}

// New creates a new auth service
func New(storage storage.Storage, state *gamestate.Service, clock clock.Clock, logger *slog.Logger, cfg Config) *Service {
	defaults := DefaultConfig()
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = defaults.SessionDuration
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = defaults.CleanupInterval
	}
	return &Service{
		storage:  storage,
		state:    state,
		clock:    clock,
		logger:   logger.With(slog.String("component", "auth")),
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > MaxDisplayNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

// CreateGuestPlayer creates an anonymous player, their starting game state and a session
func (s *Service) CreateGuestPlayer(ctx context.Context, displayName string) (*Session, error) {
	name, err := validName(displayName)
	if err != nil {
		return nil, err
	}

	player := &model.Player{
		ID:          newPlayerID(),
		DisplayName: name,
		IsGuest:     true,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	if _, err := s.state.Init(ctx, player.ID, name); err != nil {
		return nil, fmt.Errorf("init game state: %w", err)
	}

	s.logger.Info("guest created", slog.String("player_id", string(player.ID)))
	return s.createSession(player), nil
}

// RegisterPlayer creates a registered account, its starting game state and a session
func (s *Service) RegisterPlayer(ctx context.Context, username, password, displayName string) (*Session, error) {
	name, err := validName(displayName)
	if err != nil {
		return nil, err
	}
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	_, err = s.storage.GetRegisteredPlayerByUsername(ctx, username)
	if err == nil {
		return nil, ErrUsernameExists
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now()
	player := &model.Player{
		ID:          newPlayerID(),
		DisplayName: name,
		CreatedAt:   now,
	}
	rp := &model.RegisteredPlayer{
		PlayerID:     player.ID,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	if err := s.storage.SaveRegisteredPlayer(ctx, rp); err != nil {
		return nil, err
	}
	if _, err := s.state.Init(ctx, player.ID, name); err != nil {
		return nil, fmt.Errorf("init game state: %w", err)
	}

	s.logger.Info("player registered",
		slog.String("player_id", string(player.ID)),
		slog.String("username", username),
	)
	return s.createSession(player), nil
}

// Login authenticates a registered player and creates a session
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	rp, err := s.storage.GetRegisteredPlayerByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rp.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("login rejected", slog.String("username", username))
		return nil, ErrInvalidCredentials
	}

	player, err := s.storage.GetPlayer(ctx, rp.PlayerID)
	if err != nil {
		return nil, err
	}
	return s.createSession(player), nil
}

// Rename changes the player's display name and game state nickname
func (s *Service) Rename(ctx context.Context, token, displayName string) (*Session, error) {
	session, err := s.ValidateSession(token)
	if err != nil {
		return nil, err
	}
	name, err := validName(displayName)
	if err != nil {
		return nil, err
	}

	player, err := s.storage.GetPlayer(ctx, session.PlayerID)
	if err != nil {
		return nil, err
	}
	player.DisplayName = name
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	if _, err := s.state.SetNickname(ctx, player.ID, name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.PlayerID == player.ID {
			sess.Player.DisplayName = name
		}
	}
	cp := *session
	cp.Player.DisplayName = name
	return &cp, nil
}

// ValidateSession checks if a session token is valid and returns a copy of the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	var cp Session
	if ok {
		cp = *session
	}
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(cp.ExpiresAt) {
		s.InvalidateSession(token)
		return nil, ErrInvalidSession
	}
	return &cp, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// GetPlayer returns the player for a session token
func (s *Service) GetPlayer(token string) (*model.Player, error) {
	session, err := s.ValidateSession(token)
	if err != nil {
		return nil, err
	}
	return &session.Player, nil
}

func (s *Service) createSession(player *model.Player) *Session {
	now := s.clock.Now()
	session := &Session{
		Token:     newToken(),
		PlayerID:  player.ID,
		Player:    *player,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionDuration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	cp := *session
	return &cp
}

func newPlayerID() model.PlayerID {
	return model.PlayerID("p_" + uuid.NewString())
}

// newToken returns an unguessable session token
func newToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return "sess_" + base64.RawURLEncoding.EncodeToString(b)
}

// CleanExpiredSessions removes expired sessions and returns how many were dropped
func (s *Service) CleanExpiredSessions() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			n++
		}
	}
	return n
}

// Schedule registers periodic session cleanup
func (s *Service) Schedule(sched scheduler.Scheduler) error {
	return sched.Every(CleanupJobName, s.cfg.CleanupInterval, func() {
		if n := s.CleanExpiredSessions(); n > 0 {
			s.logger.Debug("expired sessions removed", slog.Int("count", n))
		}
	})
}
