package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // driver: sqlite

	"github.com/okian/prode/internal/domain/model"
	"github.com/okian/prode/internal/domain/standings"
)

// defaultDSN keeps the database in the working directory, matching the
// single-file deployment the service is built for.
const defaultDSN = "file:prode.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

const schema = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS users (
  id         TEXT PRIMARY KEY,
  name       TEXT NOT NULL UNIQUE,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS matches (
  id         TEXT PRIMARY KEY,
  group_name TEXT NOT NULL DEFAULT '',
  stage      TEXT NOT NULL DEFAULT '',
  kickoff    TEXT NOT NULL,
  home_team  TEXT NOT NULL,
  away_team  TEXT NOT NULL,
  home_score INTEGER,
  away_score INTEGER
);

CREATE TABLE IF NOT EXISTS predictions (
  id         TEXT PRIMARY KEY,
  match_id   TEXT NOT NULL REFERENCES matches(id),
  user_id    TEXT NOT NULL REFERENCES users(id),
  home_pred  TEXT NOT NULL,
  away_pred  TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  UNIQUE(match_id, user_id)
);

CREATE TABLE IF NOT EXISTS pools (
  id         TEXT PRIMARY KEY,
  name       TEXT NOT NULL,
  code       TEXT NOT NULL UNIQUE,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pool_members (
  pool_id    TEXT NOT NULL REFERENCES pools(id),
  user_id    TEXT NOT NULL REFERENCES users(id),
  role       TEXT NOT NULL DEFAULT 'member',
  created_at INTEGER NOT NULL,
  PRIMARY KEY(pool_id, user_id)
);
`

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the database and ensures the
// schema exists. An empty dsn falls back to a local prode.db file.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateUser(ctx context.Context, name string) (model.User, error) {
	// Insert-or-ignore keeps the unique-name invariant; the follow-up
	// select serves both the created and the pre-existing case.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		uuid.NewString(), name, time.Now().Unix())
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return s.userBy(ctx, "name", name)
}

func (s *SQLiteStore) User(ctx context.Context, id string) (model.User, error) {
	return s.userBy(ctx, "id", id)
}

func (s *SQLiteStore) userBy(ctx context.Context, col, val string) (model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM users WHERE `+col+` = ?`, val)
	var u model.User
	var created int64
	if err := row.Scan(&u.ID, &u.Name, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	u.CreatedAt = time.Unix(created, 0)
	return u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM users ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var created int64
		if err := rows.Scan(&u.ID, &u.Name, &created); err != nil {
			return nil, err
		}
		u.CreatedAt = time.Unix(created, 0)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) AddMatches(ctx context.Context, matches []model.Match) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range matches {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO matches (id, group_name, stage, kickoff, home_team, away_team)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID, m.Group, m.Stage, m.Kickoff, m.HomeTeam, m.AwayTeam); err != nil {
			return fmt.Errorf("insert match: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Match(ctx context.Context, id string) (model.Match, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, group_name, stage, kickoff, home_team, away_team, home_score, away_score
		 FROM matches WHERE id = ?`, id)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Match{}, ErrNotFound
	}
	return m, err
}

func (s *SQLiteStore) ListMatches(ctx context.Context) ([]model.Match, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_name, stage, kickoff, home_team, away_team, home_score, away_score
		 FROM matches ORDER BY kickoff, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(sc scanner) (model.Match, error) {
	var m model.Match
	var home, away sql.NullInt64
	if err := sc.Scan(&m.ID, &m.Group, &m.Stage, &m.Kickoff,
		&m.HomeTeam, &m.AwayTeam, &home, &away); err != nil {
		return model.Match{}, err
	}
	// Unplayed is both columns NULL; the admin path only ever writes the
	// pair together.
	if home.Valid && away.Valid {
		m.Result = model.FinalScore(int(home.Int64), int(away.Int64))
	}
	return m, nil
}

func (s *SQLiteStore) RecordResult(ctx context.Context, id string, home, away int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE matches SET home_score = ?, away_score = ? WHERE id = ?`,
		home, away, id)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) UpsertPrediction(ctx context.Context, matchID, userID, homePred, awayPred string) (model.Prediction, error) {
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO predictions (id, match_id, user_id, home_pred, away_pred, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(match_id, user_id) DO UPDATE SET
		   home_pred = excluded.home_pred,
		   away_pred = excluded.away_pred,
		   created_at = excluded.created_at`,
		uuid.NewString(), matchID, userID, homePred, awayPred, now.Unix())
	if err != nil {
		return model.Prediction{}, fmt.Errorf("upsert prediction: %w", err)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, match_id, user_id, home_pred, away_pred, created_at
		 FROM predictions WHERE match_id = ? AND user_id = ?`, matchID, userID)
	return scanPrediction(row)
}

func scanPrediction(sc scanner) (model.Prediction, error) {
	var p model.Prediction
	var created int64
	if err := sc.Scan(&p.ID, &p.MatchID, &p.UserID, &p.HomePred, &p.AwayPred, &created); err != nil {
		return model.Prediction{}, err
	}
	p.CreatedAt = time.Unix(created, 0)
	return p, nil
}

func (s *SQLiteStore) PredictionsFor(ctx context.Context, userID string) (map[string]model.Prediction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, match_id, user_id, home_pred, away_pred, created_at
		 FROM predictions WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	preds := make(map[string]model.Prediction)
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		preds[p.MatchID] = p
	}
	return preds, rows.Err()
}

func (s *SQLiteStore) StandingEntries(ctx context.Context) ([]standings.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.name, p.home_pred, p.away_pred, m.home_score, m.away_score
		 FROM predictions p
		 JOIN users u ON u.id = p.user_id
		 JOIN matches m ON m.id = p.match_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *SQLiteStore) PoolStandingEntries(ctx context.Context, poolID string) ([]standings.Entry, error) {
	if _, err := s.Pool(ctx, poolID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.name, p.home_pred, p.away_pred, m.home_score, m.away_score
		 FROM pool_members pm
		 JOIN users u ON u.id = pm.user_id
		 JOIN predictions p ON p.user_id = u.id
		 JOIN matches m ON m.id = p.match_id
		 WHERE pm.pool_id = ?`, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]standings.Entry, error) {
	var entries []standings.Entry
	for rows.Next() {
		var e standings.Entry
		var home, away sql.NullInt64
		if err := rows.Scan(&e.UserID, &e.UserName, &e.HomePred, &e.AwayPred, &home, &away); err != nil {
			return nil, err
		}
		if home.Valid && away.Valid {
			e.Result = model.FinalScore(int(home.Int64), int(away.Int64))
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) CreatePool(ctx context.Context, name, code, ownerID string) (model.Pool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Pool{}, err
	}
	defer func() { _ = tx.Rollback() }()

	p := model.Pool{ID: uuid.NewString(), Name: name, Code: code, CreatedAt: time.Now()}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO pools (id, name, code, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(code) DO NOTHING`,
		p.ID, p.Name, p.Code, p.CreatedAt.Unix())
	if err != nil {
		return model.Pool{}, fmt.Errorf("create pool: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Pool{}, err
	} else if n == 0 {
		return model.Pool{}, ErrCodeTaken
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO pool_members (pool_id, user_id, role, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, ownerID, model.RoleOwner, time.Now().Unix()); err != nil {
		return model.Pool{}, fmt.Errorf("enroll owner: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Pool{}, err
	}
	return p, nil
}

func (s *SQLiteStore) Pool(ctx context.Context, id string) (model.Pool, error) {
	return s.poolBy(ctx, "id", id)
}

func (s *SQLiteStore) PoolByCode(ctx context.Context, code string) (model.Pool, error) {
	return s.poolBy(ctx, "code", code)
}

func (s *SQLiteStore) poolBy(ctx context.Context, col, val string) (model.Pool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, code, created_at FROM pools WHERE `+col+` = ?`, val)
	var p model.Pool
	var created int64
	if err := row.Scan(&p.ID, &p.Name, &p.Code, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Pool{}, ErrNotFound
		}
		return model.Pool{}, err
	}
	p.CreatedAt = time.Unix(created, 0)
	return p, nil
}

func (s *SQLiteStore) AddMember(ctx context.Context, poolID, userID, role string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO pool_members (pool_id, user_id, role, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(pool_id, user_id) DO NOTHING`,
		poolID, userID, role, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyMember
	}
	return nil
}

func (s *SQLiteStore) PoolsFor(ctx context.Context, userID string) ([]PoolMembership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.name, p.code, p.created_at, pm.role
		 FROM pools p
		 JOIN pool_members pm ON pm.pool_id = p.id
		 WHERE pm.user_id = ?
		 ORDER BY p.created_at, p.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []PoolMembership
	for rows.Next() {
		var m PoolMembership
		var created int64
		if err := rows.Scan(&m.Pool.ID, &m.Pool.Name, &m.Pool.Code, &created, &m.Role); err != nil {
			return nil, err
		}
		m.Pool.CreatedAt = time.Unix(created, 0)
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (s *SQLiteStore) Counts(ctx context.Context) (Counts, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM users),
		   (SELECT COUNT(*) FROM matches),
		   (SELECT COUNT(*) FROM predictions)`)
	var c Counts
	if err := row.Scan(&c.Users, &c.Matches, &c.Predictions); err != nil {
		return Counts{}, err
	}
	return c, nil
}
