package api

import (
	"net/http"
	"strings"
)

// FixtureHandler serves the per-user fixture view.
type FixtureHandler struct {
	deps Dependencies
}

// NewFixtureHandler creates a new fixture handler.
func NewFixtureHandler(deps Dependencies) *FixtureHandler {
	return &FixtureHandler{deps: deps}
}

// HandleGetFixture handles GET /fixture?user_id= requests.
func (h *FixtureHandler) HandleGetFixture(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingUserID)
		return
	}

	view, err := h.deps.Fixture(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
