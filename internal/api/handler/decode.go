package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/aicardgame-go/internal/api/apierr"
)

// maxLimit caps list endpoints
const maxLimit = 100

// decode reads a JSON request body into dst
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apierr.NewInvalidRequestError("invalid request body")
	}
	return nil
}

// pathInt reads an integer path variable
func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, apierr.NewInvalidRequestError(name + " must be an integer")
	}
	return n, nil
}

// queryLimit reads ?limit=, falling back to def and clamping to maxLimit
func queryLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apierr.NewInvalidRequestError("limit must be a positive integer")
	}
	return min(n, maxLimit), nil
}
