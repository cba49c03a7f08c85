// Package repository defines the storage contract for prode records and
// its SQLite and in-memory implementations.
package repository

import (
	"context"

	"github.com/okian/prode/internal/domain/model"
	"github.com/okian/prode/internal/domain/standings"
)

// Counts is the dashboard totals snapshot.
type Counts struct {
	Users       int `json:"users"`
	Matches     int `json:"matches"`
	Predictions int `json:"predictions"`
}

// PoolMembership is a pool paired with the member's role in it.
type PoolMembership struct {
	Pool model.Pool `json:"pool"`
	Role string     `json:"role"`
}

// Store provides read/write access to users, matches, predictions and
// pools. Implementations own the uniqueness invariants the scoring core
// relies on: one prediction per (match, user), one membership per
// (pool, user), unique user names and unique pool codes.
type Store interface {
	// CreateUser finds or creates a user by its unique display name.
	CreateUser(ctx context.Context, name string) (model.User, error)
	// User returns a user by id. Returns ErrNotFound if unknown.
	User(ctx context.Context, id string) (model.User, error)
	// ListUsers returns all users ordered by name.
	ListUsers(ctx context.Context) ([]model.User, error)

	// AddMatches inserts fixture matches, assigning ids where missing.
	AddMatches(ctx context.Context, matches []model.Match) error
	// Match returns a match by id. Returns ErrNotFound if unknown.
	Match(ctx context.Context, id string) (model.Match, error)
	// ListMatches returns the fixture ordered by kickoff, then id.
	ListMatches(ctx context.Context) ([]model.Match, error)
	// RecordResult stores the final score of a match.
	RecordResult(ctx context.Context, id string, home, away int) error

	// UpsertPrediction inserts or replaces the user's prediction for a
	// match, atomically on the (match, user) key.
	UpsertPrediction(ctx context.Context, matchID, userID, homePred, awayPred string) (model.Prediction, error)
	// PredictionsFor returns the user's predictions keyed by match id.
	PredictionsFor(ctx context.Context, userID string) (map[string]model.Prediction, error)

	// StandingEntries returns every prediction joined to its author and
	// match result, the feed for the global ranking.
	StandingEntries(ctx context.Context) ([]standings.Entry, error)
	// PoolStandingEntries returns the same join restricted to members of
	// one pool. Returns ErrNotFound for an unknown pool.
	PoolStandingEntries(ctx context.Context, poolID string) ([]standings.Entry, error)

	// CreatePool creates a pool with the given join code and enrolls the
	// owner. Returns ErrCodeTaken if the code is already in use.
	CreatePool(ctx context.Context, name, code, ownerID string) (model.Pool, error)
	// Pool returns a pool by id. Returns ErrNotFound if unknown.
	Pool(ctx context.Context, id string) (model.Pool, error)
	// PoolByCode returns a pool by join code. Returns ErrNotFound if unknown.
	PoolByCode(ctx context.Context, code string) (model.Pool, error)
	// AddMember enrolls a user in a pool. Returns ErrAlreadyMember if the
	// user is already enrolled.
	AddMember(ctx context.Context, poolID, userID, role string) error
	// PoolsFor returns the pools a user belongs to, with roles, ordered
	// by pool creation time.
	PoolsFor(ctx context.Context, userID string) ([]PoolMembership, error)

	// Counts returns dashboard totals.
	Counts(ctx context.Context) (Counts, error)

	// Close releases the underlying storage.
	Close() error
}
