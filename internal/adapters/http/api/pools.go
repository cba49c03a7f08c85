package api

import (
	"net/http"
	"strings"
)

// PoolsHandler handles pool creation, joining, and listing.
type PoolsHandler struct {
	deps Dependencies
}

// NewPoolsHandler creates a new pools handler.
func NewPoolsHandler(deps Dependencies) *PoolsHandler {
	return &PoolsHandler{deps: deps}
}

type createPoolRequest struct {
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

type joinPoolRequest struct {
	Code   string `json:"code"`
	UserID string `json:"user_id"`
}

// HandleCreatePool handles POST /pools requests.
func (h *PoolsHandler) HandleCreatePool(w http.ResponseWriter, r *http.Request) {
	var req createPoolRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pool, err := h.deps.CreatePool(r.Context(), req.Name, req.OwnerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pool)
}

// HandleJoinPool handles POST /pools/join requests. Re-joining a pool
// the user already belongs to succeeds with joined=false.
func (h *PoolsHandler) HandleJoinPool(w http.ResponseWriter, r *http.Request) {
	var req joinPoolRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pool, joined, err := h.deps.JoinPool(r.Context(), req.Code, req.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pool":   pool,
		"joined": joined,
	})
}

// HandleListPools handles GET /pools?user_id= requests.
func (h *PoolsHandler) HandleListPools(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingUserID)
		return
	}

	memberships, err := h.deps.Pools(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, memberships)
}
