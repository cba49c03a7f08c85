// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/okian/prode/internal/adapters/fixture"
	"github.com/okian/prode/internal/adapters/repository"
	"github.com/okian/prode/internal/config"
	"github.com/okian/prode/internal/domain/model"
	"github.com/okian/prode/internal/domain/points"
	"github.com/okian/prode/internal/domain/standings"
	"github.com/okian/prode/pkg/logger"
	"github.com/okian/prode/pkg/metrics"
)

// codeAlphabet is the character set for generated pool join codes.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// codeAttempts bounds the retry loop on join-code collisions.
const codeAttempts = 10

// FixtureRow is one match of the fixture as seen by a user: the match,
// the user's prediction if any, and the points it earned so far.
type FixtureRow struct {
	Match         model.Match `json:"match"`
	HomePred      string      `json:"home_pred,omitempty"`
	AwayPred      string      `json:"away_pred,omitempty"`
	HasPrediction bool        `json:"has_prediction"`
	// Points is only meaningful when Scored is true; a played match with
	// no prediction or an unplayed match stays unscored.
	Points int  `json:"points"`
	Scored bool `json:"scored"`
}

// FixtureStats is the progress block shown with a user's fixture.
type FixtureStats struct {
	Matches       int `json:"n_matches"`
	Predicted     int `json:"n_predicted"`
	Played        int `json:"n_played"`
	Scored        int `json:"n_scored"`
	CompletionPct int `json:"completion_pct"`
}

// FixtureView is a user's fixture with progress stats.
type FixtureView struct {
	User  model.User   `json:"user"`
	Rows  []FixtureRow `json:"rows"`
	Stats FixtureStats `json:"stats"`
}

// Service implements the API dependencies for the prode tracker.
type Service struct {
	mu sync.RWMutex

	store repository.Store

	// Configuration
	storeDriver string
	dsn         string
	fixtureCSV  string
	codeLength  int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStoreDriver selects the storage backend, "sqlite" or "memory".
func WithStoreDriver(driver string) Option {
	return func(s *Service) {
		if driver != "" {
			s.storeDriver = driver
		}
	}
}

// WithDSN sets the SQLite data source name.
func WithDSN(dsn string) Option {
	return func(s *Service) {
		s.dsn = dsn
	}
}

// WithFixtureCSV sets the fixture file loaded when the store is empty.
func WithFixtureCSV(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.fixtureCSV = path
		}
	}
}

// WithPoolCodeLength sets the length of generated pool join codes.
func WithPoolCodeLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.codeLength = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore injects a pre-built store, bypassing the driver selection.
// Used by tests and embedders.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeDriver: config.StoreSQLite,
		fixtureCSV:  "fixture_2026.csv",
		codeLength:  6,
		logger:      nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store and seeds the fixture on first boot.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting prode service...")

	if s.store == nil {
		switch s.storeDriver {
		case config.StoreMemory:
			s.store = repository.NewMemoryStore()
			s.logger.Info(ctx, "using memory store")
		default:
			store, err := repository.OpenSQLite(ctx, s.dsn)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			s.store = store
			s.logger.Info(ctx, "using sqlite store")
		}
	}

	if err := s.seedFixture(ctx); err != nil {
		return err
	}

	s.started = true
	s.logger.Info(ctx, "prode service started",
		logger.String("store", s.storeDriver),
		logger.Int("codeLength", s.codeLength),
	)
	return nil
}

// seedFixture loads the fixture CSV on an empty matches table.
func (s *Service) seedFixture(ctx context.Context) error {
	existing, err := s.store.ListMatches(ctx)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	matches, err := fixture.Load(s.fixtureCSV)
	if err != nil {
		return fmt.Errorf("load fixture: %w", err)
	}
	if err := s.store.AddMatches(ctx, matches); err != nil {
		return fmt.Errorf("seed fixture: %w", err)
	}
	s.logger.Info(ctx, "fixture seeded",
		logger.String("source", s.fixtureCSV),
		logger.Int("matches", len(matches)),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping prode service...")
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "store close failed", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(ctx, "prode service stopped")
}

// CreateUser finds or creates a user by display name.
func (s *Service) CreateUser(ctx context.Context, name string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, ErrEmptyName
	}
	return s.store.CreateUser(ctx, name)
}

// Users lists all users ordered by name.
func (s *Service) Users(ctx context.Context) ([]model.User, error) {
	return s.store.ListUsers(ctx)
}

// Fixture returns the fixture as seen by one user, with per-match
// points where available and the progress stats block.
func (s *Service) Fixture(ctx context.Context, userID string) (FixtureView, error) {
	user, err := s.store.User(ctx, userID)
	if err != nil {
		return FixtureView{}, err
	}
	matches, err := s.store.ListMatches(ctx)
	if err != nil {
		return FixtureView{}, err
	}
	preds, err := s.store.PredictionsFor(ctx, userID)
	if err != nil {
		return FixtureView{}, err
	}

	view := FixtureView{User: user, Rows: make([]FixtureRow, 0, len(matches))}
	for _, m := range matches {
		row := FixtureRow{Match: m}
		if p, ok := preds[m.ID]; ok {
			row.HasPrediction = true
			row.HomePred = p.HomePred
			row.AwayPred = p.AwayPred
			row.Points, row.Scored = points.Score(p.HomePred, p.AwayPred, m.Result)
		}

		view.Stats.Matches++
		if row.HasPrediction {
			view.Stats.Predicted++
		}
		if m.Result.Played {
			view.Stats.Played++
		}
		if row.Scored {
			view.Stats.Scored++
		}
		view.Rows = append(view.Rows, row)
	}
	if view.Stats.Matches > 0 {
		view.Stats.CompletionPct = (100*view.Stats.Predicted + view.Stats.Matches/2) / view.Stats.Matches
	}
	return view, nil
}

// SubmitPrediction upserts a user's forecast for a match. Both scores
// must parse as integers; the stored digits keep their submitted form.
func (s *Service) SubmitPrediction(ctx context.Context, matchID, userID, homePred, awayPred string) (model.Prediction, error) {
	homePred = strings.TrimSpace(homePred)
	awayPred = strings.TrimSpace(awayPred)
	if _, err := strconv.Atoi(homePred); err != nil {
		return model.Prediction{}, ErrBadScore
	}
	if _, err := strconv.Atoi(awayPred); err != nil {
		return model.Prediction{}, ErrBadScore
	}

	if _, err := s.store.User(ctx, userID); err != nil {
		return model.Prediction{}, err
	}
	if _, err := s.store.Match(ctx, matchID); err != nil {
		return model.Prediction{}, err
	}

	p, err := s.store.UpsertPrediction(ctx, matchID, userID, homePred, awayPred)
	if err != nil {
		return model.Prediction{}, err
	}
	metrics.RecordPredictionUpserted()
	return p, nil
}

// GlobalStandings computes the global ranking. A positive limit caps
// the number of returned rows.
func (s *Service) GlobalStandings(ctx context.Context, limit int) ([]standings.Row, error) {
	entries, err := s.store.StandingEntries(ctx)
	if err != nil {
		return nil, err
	}
	metrics.RecordStandingsRequest(metrics.ScopeGlobal)
	return capRows(standings.Rank(entries), limit), nil
}

// PoolStandings computes the ranking restricted to one pool's members.
func (s *Service) PoolStandings(ctx context.Context, poolID string) (model.Pool, []standings.Row, error) {
	pool, err := s.store.Pool(ctx, poolID)
	if err != nil {
		return model.Pool{}, nil, err
	}
	entries, err := s.store.PoolStandingEntries(ctx, poolID)
	if err != nil {
		return model.Pool{}, nil, err
	}
	metrics.RecordStandingsRequest(metrics.ScopePool)
	return pool, standings.Rank(entries), nil
}

func capRows(rows []standings.Row, limit int) []standings.Row {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

// CreatePool creates a pool owned by the given user, allocating a
// fresh join code.
func (s *Service) CreatePool(ctx context.Context, name, ownerID string) (model.Pool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Pool{}, ErrEmptyName
	}
	if _, err := s.store.User(ctx, ownerID); err != nil {
		return model.Pool{}, err
	}

	for i := 0; i < codeAttempts; i++ {
		code, err := newPoolCode(s.codeLength)
		if err != nil {
			return model.Pool{}, err
		}
		pool, err := s.store.CreatePool(ctx, name, code, ownerID)
		if errors.Is(err, repository.ErrCodeTaken) {
			continue
		}
		if err != nil {
			return model.Pool{}, err
		}
		metrics.RecordPoolCreated()
		return pool, nil
	}
	return model.Pool{}, ErrCodeExhausted
}

// JoinPool enrolls a user in the pool with the given join code. The
// second return value is false when the user was already a member,
// which is not an error.
func (s *Service) JoinPool(ctx context.Context, code, userID string) (model.Pool, bool, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	pool, err := s.store.PoolByCode(ctx, code)
	if err != nil {
		return model.Pool{}, false, err
	}
	if _, err := s.store.User(ctx, userID); err != nil {
		return model.Pool{}, false, err
	}

	err = s.store.AddMember(ctx, pool.ID, userID, model.RoleMember)
	if errors.Is(err, repository.ErrAlreadyMember) {
		return pool, false, nil
	}
	if err != nil {
		return model.Pool{}, false, err
	}
	metrics.RecordPoolJoined()
	return pool, true, nil
}

// Pools lists the pools a user belongs to.
func (s *Service) Pools(ctx context.Context, userID string) ([]repository.PoolMembership, error) {
	if _, err := s.store.User(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.PoolsFor(ctx, userID)
}

// Matches lists the fixture for the admin result view.
func (s *Service) Matches(ctx context.Context) ([]model.Match, error) {
	return s.store.ListMatches(ctx)
}

// RecordResult stores a match's final score.
func (s *Service) RecordResult(ctx context.Context, matchID string, home, away int) error {
	if err := s.store.RecordResult(ctx, matchID, home, away); err != nil {
		return err
	}
	metrics.RecordResultRecorded()
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"store":   s.storeDriver,
	}

	if s.started {
		counts, err := s.store.Counts(context.Background())
		if err == nil {
			stats["users"] = counts.Users
			stats["matches"] = counts.Matches
			stats["predictions"] = counts.Predictions
			metrics.UpdateTotals(counts.Users, counts.Matches, counts.Predictions)
		}
	}

	return stats
}

// newPoolCode draws a random uppercase alphanumeric code.
func newPoolCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate pool code: %w", err)
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf), nil
}
