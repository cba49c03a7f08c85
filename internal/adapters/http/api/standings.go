package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// StandingsHandler serves global and pool-scoped rankings.
type StandingsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewStandingsHandler creates a new standings handler.
func NewStandingsHandler(deps Dependencies, maxLimit int) *StandingsHandler {
	return &StandingsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetStandings handles GET /standings?limit= requests.
func (h *StandingsHandler) HandleGetStandings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		limit = n
	}
	if limit == 0 || limit > h.maxLimit {
		limit = h.maxLimit
	}

	rows, err := h.deps.GlobalStandings(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleGetPoolStandings handles GET /pools/{poolID}/standings requests.
func (h *StandingsHandler) HandleGetPoolStandings(w http.ResponseWriter, r *http.Request) {
	poolID := chi.URLParam(r, "poolID")

	pool, rows, err := h.deps.PoolStandings(r.Context(), poolID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pool":      pool,
		"standings": rows,
	})
}
