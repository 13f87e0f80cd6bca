// ABOUTME: JSON response and request helpers shared by all handlers
// ABOUTME: Maps domain sentinel errors onto HTTP status codes

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/techguides/techhub/internal/content"
	"github.com/techguides/techhub/internal/dispatch"
	"github.com/techguides/techhub/internal/store"
	"github.com/techguides/techhub/internal/tools"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// decodeJSON reads the request body into dst, rejecting unknown garbage
// with a 400. Returns false when the response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeDomainError maps sentinel errors from the lower layers onto status
// codes; anything unmatched is a 500 with a generic message.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dispatch.ErrNotEntitled):
		writeError(w, http.StatusForbidden, "external tools access denied")
	case errors.Is(err, content.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, dispatch.ErrToolNotFound),
		errors.Is(err, tools.ErrUnknownTool),
		errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, tools.ErrMisconfiguredTool),
		errors.Is(err, dispatch.ErrUnknownToolType):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, tools.ErrDuplicateID),
		errors.Is(err, store.ErrDuplicateTool),
		errors.Is(err, store.ErrDuplicateUser):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, tools.ErrLimitExceeded),
		errors.Is(err, tools.ErrUserToolsDisabled):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
