package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/aicardgame-go/internal/api"
	"github.com/mcoot/aicardgame-go/internal/api/apierr"
	"github.com/mcoot/aicardgame-go/internal/api/response"
	"github.com/mcoot/aicardgame-go/internal/factory"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/services/enhance"
	"github.com/mcoot/aicardgame-go/internal/services/matchmaking"
	"github.com/mcoot/aicardgame-go/internal/services/ranking"
	"github.com/mcoot/aicardgame-go/internal/testutil"
)

// testServer wires the router onto a test app with mocked time and scheduling
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close(t.Context()) })

	router := api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		Storage:     app.Storage,
		Catalog:     app.Catalog,
		Hubs:        app.Hubs,
		Auth:        app.Auth,
		State:       app.State,
		Enhance:     app.Enhance,
		Fusion:      app.Fusion,
		Synergy:     app.Synergy,
		Production:  app.Production,
		Matchmaking: app.Matchmaking,
		Ranking:     app.Ranking,
		Missions:    app.Missions,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// createGuestPlayer creates a guest and returns its session token and player ID
func createGuestPlayer(t *testing.T, ts *testServer, name string) (string, model.PlayerID) {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{"display_name": name}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.SessionToken, model.PlayerID(resp.Player.ID)
}

// giveDeck adds five cards directly to the player's inventory
func giveDeck(t *testing.T, ts *testServer, id model.PlayerID) []string {
	t.Helper()

	ids := make([]string, 0, model.DeckSize)
	for _, c := range ts.app.Generator.Deck(id, 500) {
		card := c
		_, err := ts.app.State.AddCard(t.Context(), id, &card)
		require.NoError(t, err)
		ids = append(ids, string(card.ID))
	}
	return ids
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Health
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestCreateGuestPlayer(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{"display_name": "Alice"}, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Alice", resp.Player.DisplayName)
	assert.True(t, resp.Player.IsGuest)
	assert.NotEmpty(t, resp.SessionToken)
}

func TestCreateGuestRejectsBadBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/players/guest", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	registerBody := map[string]string{
		"username":     "alice",
		"password":     "secret123",
		"display_name": "Alice",
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/register", registerBody, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	var registerResp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registerResp))
	assert.False(t, registerResp.Player.IsGuest)

	rr = ts.request(http.MethodPost, "/api/v1/players/register", registerBody, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeUsernameExists, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{"username": "alice", "password": "secret123"}, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var loginResp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &loginResp))
	assert.Equal(t, registerResp.Player.ID, loginResp.Player.ID)

	rr = ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{"username": "alice", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, decodeError(t, rr).Code)
}

func TestMeRenameAndLogout(t *testing.T) {
	ts := newTestServer(t)
	token, _ := createGuestPlayer(t, ts, "Bob")

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPatch, "/api/v1/players/me", map[string]string{"display_name": "Robert"}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var me response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, "Robert", me.DisplayName)

	rr = ts.request(http.MethodGet, "/api/v1/state", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var state response.State
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Equal(t, "Robert", state.State.Nickname)

	rr = ts.request(http.MethodPost, "/api/v1/players/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/v1/players/me", "/api/v1/state", "/api/v1/pvp/session", "/api/v1/events"} {
		rr := ts.request(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
		assert.Equal(t, apierr.CodeUnauthorized, decodeError(t, rr).Code, path)
	}
}

func TestTokenQueryParameter(t *testing.T) {
	ts := newTestServer(t)
	token, _ := createGuestPlayer(t, ts, "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/state?token="+token, nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGetStateStartsWithDefaults(t *testing.T) {
	ts := newTestServer(t)
	token, id := createGuestPlayer(t, ts, "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/state", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.State
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.State.UserID)
	assert.Equal(t, model.StartingTokens, resp.State.Tokens)
	assert.Equal(t, model.StartingRating, resp.State.Rating)
	assert.Equal(t, 1, resp.State.Level)
	assert.Zero(t, resp.WinRate)

	rr = ts.request(http.MethodGet, "/api/v1/synergy", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCardEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token, id := createGuestPlayer(t, ts, "Alice")
	ids := giveDeck(t, ts, id)

	rr := ts.request(http.MethodGet, "/api/v1/cards", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var cards response.Cards
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cards))
	assert.Equal(t, model.DeckSize, cards.Count)

	rr = ts.request(http.MethodPost, "/api/v1/cards/"+ids[0]+"/enhance", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var enhanced enhance.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &enhanced))
	assert.Equal(t, 2, enhanced.Card.Level)
	assert.Equal(t, model.StartingTokens-enhance.Cost(1), enhanced.Tokens)

	rr = ts.request(http.MethodPost, "/api/v1/cards/missing/enhance", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeCardNotFound, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/cards/"+ids[1]+"/lock", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var locked response.Card
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &locked))
	assert.True(t, locked.Card.IsLocked)

	rr = ts.request(http.MethodPost, "/api/v1/cards/fuse", map[string][]string{"card_ids": ids[1:4]}, token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeCardLocked, decodeError(t, rr).Code)

	rr = ts.request(http.MethodDelete, "/api/v1/cards/"+ids[1]+"/lock", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/cards/fuse", map[string][]string{"card_ids": ids[1:3]}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidMaterials, decodeError(t, rr).Code)
}

func TestFactionEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token, _ := createGuestPlayer(t, ts, "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/factions", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var factions response.Factions
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &factions))
	require.NotEmpty(t, factions.Factions)
	starter := factions.Factions[0]
	assert.True(t, starter.Unlocked)
	assert.False(t, starter.Placed)

	rr = ts.request(http.MethodPost, "/api/v1/factions/"+string(starter.ID)+"/unlock", nil, token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeAlreadyUnlocked, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/factions/nowhere/unlock", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/slots", map[string]any{"faction_id": starter.ID}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var placed response.Slot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &placed))
	assert.Equal(t, 1, placed.Slot.SlotNumber)

	rr = ts.request(http.MethodPost, "/api/v1/slots/1/claim", nil, token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeNotReady, decodeError(t, rr).Code)

	ts.app.MockClock.Advance(time.Duration(starter.GenerationMinutes) * time.Minute)
	rr = ts.request(http.MethodPost, "/api/v1/slots/1/claim", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/v1/slots/abc", nil, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/v1/slots/1", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/v1/slots/1", nil, token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeSlotEmpty, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/bonus-cards/claim", nil, token)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestPvPFlow(t *testing.T) {
	ts := newTestServer(t)
	token, id := createGuestPlayer(t, ts, "Alice")
	otherToken, _ := createGuestPlayer(t, ts, "Bob")
	search := map[string]any{
		"card_ids": giveDeck(t, ts, id),
		"mode":     "ranked",
		"genre":    "balanced",
	}

	rr := ts.request(http.MethodPost, "/api/v1/pvp/search", search, token)
	require.Equal(t, http.StatusAccepted, rr.Code)
	var sess matchmaking.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sess))
	assert.Equal(t, model.SessionSearching, sess.State)

	rr = ts.request(http.MethodPost, "/api/v1/pvp/search", search, token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeAlreadySearching, decodeError(t, rr).Code)

	ts.app.MockScheduler.Advance(5 * time.Second)

	rr = ts.request(http.MethodGet, "/api/v1/pvp/session", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sess))
	require.Equal(t, model.SessionResult, sess.State)
	require.NotNil(t, sess.Match)

	rr = ts.request(http.MethodDelete, "/api/v1/pvp/search", nil, token)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/pvp/matches", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var matches response.Matches
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &matches))
	assert.Len(t, matches.Matches, 1)

	rr = ts.request(http.MethodGet, "/api/v1/pvp/matches?limit=0", nil, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	path := "/api/v1/pvp/matches/" + string(sess.Match.ID)
	rr = ts.request(http.MethodGet, path, nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodGet, path, nil, otherToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeMatchNotFound, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/pvp/session/ack", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sess))
	assert.Equal(t, model.SessionIdle, sess.State)
}

func TestPvPSearchValidation(t *testing.T) {
	ts := newTestServer(t)
	token, id := createGuestPlayer(t, ts, "Alice")
	deck := giveDeck(t, ts, id)

	rr := ts.request(http.MethodPost, "/api/v1/pvp/search", map[string]any{"card_ids": deck[:3], "mode": "ranked", "genre": "balanced"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidDeck, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/pvp/search", map[string]any{"card_ids": deck, "mode": "arcade", "genre": "balanced"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidMode, decodeError(t, rr).Code)

	rr = ts.request(http.MethodDelete, "/api/v1/pvp/search", nil, token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeNotSearching, decodeError(t, rr).Code)
}

func TestRankingEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token, id := createGuestPlayer(t, ts, "Alice")
	createGuestPlayer(t, ts, "Bob")

	_, err := ts.app.Ranking.Rebuild(t.Context())
	require.NoError(t, err)

	rr := ts.request(http.MethodGet, "/api/v1/rankings?limit=1", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var rankings response.Rankings
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rankings))
	assert.Equal(t, 1, rankings.Season)
	assert.Len(t, rankings.Entries, 1)

	rr = ts.request(http.MethodGet, "/api/v1/rankings/me", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var standing ranking.Standing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &standing))
	assert.True(t, standing.Ranked)
	assert.Equal(t, id, standing.Entry.PlayerID)
	assert.Equal(t, model.TierBronze, standing.Tier.Tier)
}

func TestMissionEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token, _ := createGuestPlayer(t, ts, "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/missions", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var list response.Missions
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list.Missions, 4)

	rr = ts.request(http.MethodPost, "/api/v1/missions/daily_battle/claim", nil, token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeNotReady, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/missions/daily_nap/claim", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeUnknownMission, decodeError(t, rr).Code)
}
