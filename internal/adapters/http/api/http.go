// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/prode/internal/adapters/repository"
	service "github.com/okian/prode/internal/app"
	"github.com/okian/prode/internal/domain/model"
	"github.com/okian/prode/internal/domain/standings"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// User operations.
	CreateUser(ctx context.Context, name string) (model.User, error)
	Users(ctx context.Context) ([]model.User, error)

	// Fixture and prediction operations.
	Fixture(ctx context.Context, userID string) (FixtureView, error)
	SubmitPrediction(ctx context.Context, matchID, userID, homePred, awayPred string) (model.Prediction, error)
	Matches(ctx context.Context) ([]model.Match, error)
	RecordResult(ctx context.Context, matchID string, home, away int) error

	// Standings operations.
	GlobalStandings(ctx context.Context, limit int) ([]standings.Row, error)
	PoolStandings(ctx context.Context, poolID string) (model.Pool, []standings.Row, error)

	// Pool operations.
	CreatePool(ctx context.Context, name, ownerID string) (model.Pool, error)
	JoinPool(ctx context.Context, code, userID string) (model.Pool, bool, error)
	Pools(ctx context.Context, userID string) ([]repository.PoolMembership, error)
}

// FixtureView mirrors the read shape returned by fixture queries.
type FixtureView = service.FixtureView

// Server wires HTTP routes for the business API.
type Server struct {
	maxStandingsLimit int

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	usersHandler       *UsersHandler
	fixtureHandler     *FixtureHandler
	predictionsHandler *PredictionsHandler
	standingsHandler   *StandingsHandler
	poolsHandler       *PoolsHandler
	matchesHandler     *MatchesHandler
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxStandingsLimit caps the largest accepted ?limit= value.
func WithMaxStandingsLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxStandingsLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxStandingsLimit: 100,
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.usersHandler = NewUsersHandler(deps)
	s.fixtureHandler = NewFixtureHandler(deps)
	s.predictionsHandler = NewPredictionsHandler(deps)
	s.standingsHandler = NewStandingsHandler(deps, s.maxStandingsLimit)
	s.poolsHandler = NewPoolsHandler(deps)
	s.matchesHandler = NewMatchesHandler(deps)
	return s
}

// Router builds the chi router with all routes and shared middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Post("/users", MetricsMiddleware(s.usersHandler.HandleCreateUser, "users"))
	r.Get("/users", MetricsMiddleware(s.usersHandler.HandleListUsers, "users"))

	r.Get("/fixture", MetricsMiddleware(s.fixtureHandler.HandleGetFixture, "fixture"))

	r.Get("/matches", MetricsMiddleware(s.matchesHandler.HandleListMatches, "matches"))
	r.Put("/matches/{matchID}/result", MetricsMiddleware(s.matchesHandler.HandlePutResult, "result"))
	r.Put("/matches/{matchID}/prediction", MetricsMiddleware(s.predictionsHandler.HandlePutPrediction, "prediction"))

	r.Get("/standings", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))

	r.Post("/pools", MetricsMiddleware(s.poolsHandler.HandleCreatePool, "pools"))
	r.Post("/pools/join", MetricsMiddleware(s.poolsHandler.HandleJoinPool, "pools_join"))
	r.Get("/pools", MetricsMiddleware(s.poolsHandler.HandleListPools, "pools"))
	r.Get("/pools/{poolID}/standings", MetricsMiddleware(s.standingsHandler.HandleGetPoolStandings, "pool_standings"))

	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates service and repository errors to HTTP.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrEmptyName), errors.Is(err, service.ErrBadScore):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return false
	}
	return true
}
