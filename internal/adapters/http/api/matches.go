package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MatchesHandler lists the fixture and records final scores.
type MatchesHandler struct {
	deps Dependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps Dependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

type resultRequest struct {
	HomeGoals *int `json:"home_goals"`
	AwayGoals *int `json:"away_goals"`
}

// HandleListMatches handles GET /matches requests.
func (h *MatchesHandler) HandleListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.deps.Matches(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// HandlePutResult handles PUT /matches/{matchID}/result requests.
func (h *MatchesHandler) HandlePutResult(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	var req resultRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.HomeGoals == nil || req.AwayGoals == nil || *req.HomeGoals < 0 || *req.AwayGoals < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	if err := h.deps.RecordResult(r.Context(), matchID, *req.HomeGoals, *req.AwayGoals); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}
