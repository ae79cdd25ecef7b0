package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/services/auth"
	"github.com/mcoot/aicardgame-go/internal/storage"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError. Success is always false.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotFound           = "NOT_FOUND"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidName        = "INVALID_NAME"
	CodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	CodeInvalidAmount      = "INVALID_AMOUNT"
	CodeCardNotFound       = "CARD_NOT_FOUND"
	CodeCardLocked         = "CARD_LOCKED"
	CodeMaxLevelReached    = "MAX_LEVEL_REACHED"
	CodeInvalidMaterials   = "INVALID_MATERIAL_COUNT"
	CodeRarityMismatch     = "RARITY_MISMATCH"
	CodeMaxRarityReached   = "MAX_RARITY_REACHED"
	CodeUnknownFaction     = "UNKNOWN_FACTION"
	CodeAlreadyUnlocked    = "ALREADY_UNLOCKED"
	CodeFactionLocked      = "FACTION_LOCKED"
	CodeFactionPlaced      = "FACTION_ALREADY_PLACED"
	CodeInvalidSlot        = "INVALID_SLOT"
	CodeSlotOccupied       = "SLOT_OCCUPIED"
	CodeSlotEmpty          = "SLOT_EMPTY"
	CodeNoEmptySlot        = "NO_EMPTY_SLOT"
	CodeNotReady           = "NOT_READY"
	CodeUnknownMission     = "UNKNOWN_MISSION"
	CodeAlreadyClaimed     = "ALREADY_CLAIMED"
	CodeInvalidDeck        = "INVALID_DECK"
	CodeInvalidMode        = "INVALID_MODE"
	CodeInvalidGenre       = "INVALID_GENRE"
	CodeAlreadySearching   = "ALREADY_SEARCHING"
	CodeNotSearching       = "NOT_SEARCHING"
	CodeCannotCancel       = "CANNOT_CANCEL"
	CodeMatchNotFound      = "MATCH_NOT_FOUND"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

type mapping struct {
	err    error
	status int
	code   string
}

// mappings is checked in order; the message is the sentinel's own text
var mappings = []mapping{
	// Persistence failures are never a client problem
	{storage.ErrUnavailable, http.StatusServiceUnavailable, CodeStoreUnavailable},

	{auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
	{auth.ErrInvalidSession, http.StatusUnauthorized, CodeUnauthorized},
	{auth.ErrUsernameExists, http.StatusConflict, CodeUsernameExists},
	{auth.ErrInvalidName, http.StatusBadRequest, CodeInvalidName},

	{model.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound},
	{model.ErrStateNotFound, http.StatusNotFound, CodePlayerNotFound},
	{model.ErrCardNotFound, http.StatusNotFound, CodeCardNotFound},
	{model.ErrMatchNotFound, http.StatusNotFound, CodeMatchNotFound},
	{model.ErrUnknownFaction, http.StatusNotFound, CodeUnknownFaction},
	{model.ErrUnknownMission, http.StatusNotFound, CodeUnknownMission},
	{model.ErrRankingNotFound, http.StatusNotFound, CodeNotFound},

	{model.ErrInsufficientFunds, http.StatusUnprocessableEntity, CodeInsufficientFunds},
	{model.ErrInvalidAmount, http.StatusBadRequest, CodeInvalidAmount},
	{model.ErrCardLocked, http.StatusConflict, CodeCardLocked},
	{model.ErrMaxLevelReached, http.StatusConflict, CodeMaxLevelReached},
	{model.ErrInvalidMaterialCount, http.StatusBadRequest, CodeInvalidMaterials},
	{model.ErrRarityMismatch, http.StatusBadRequest, CodeRarityMismatch},
	{model.ErrMaxRarityReached, http.StatusConflict, CodeMaxRarityReached},

	{model.ErrAlreadyUnlocked, http.StatusConflict, CodeAlreadyUnlocked},
	{model.ErrFactionLocked, http.StatusForbidden, CodeFactionLocked},
	{model.ErrFactionAlreadyPlaced, http.StatusConflict, CodeFactionPlaced},
	{model.ErrInvalidSlot, http.StatusBadRequest, CodeInvalidSlot},
	{model.ErrSlotOccupied, http.StatusConflict, CodeSlotOccupied},
	{model.ErrSlotEmpty, http.StatusConflict, CodeSlotEmpty},
	{model.ErrNoEmptySlot, http.StatusConflict, CodeNoEmptySlot},
	{model.ErrNotReady, http.StatusConflict, CodeNotReady},
	{model.ErrAlreadyClaimed, http.StatusConflict, CodeAlreadyClaimed},

	{model.ErrInvalidDeck, http.StatusBadRequest, CodeInvalidDeck},
	{model.ErrInvalidMode, http.StatusBadRequest, CodeInvalidMode},
	{model.ErrInvalidGenre, http.StatusBadRequest, CodeInvalidGenre},
	{model.ErrAlreadySearching, http.StatusConflict, CodeAlreadySearching},
	{model.ErrNotSearching, http.StatusConflict, CodeNotSearching},
	{model.ErrCannotCancel, http.StatusConflict, CodeCannotCancel},
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return &httpError{m.status, APIError{m.code, m.err.Error()}}
		}
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
