package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/prode/internal/domain/model"
	"github.com/okian/prode/internal/domain/standings"
)

// MemoryStore implements Store with in-process maps. It enforces the
// same uniqueness invariants as the SQLite store and backs unit tests
// and the "memory" dev mode.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]model.User       // by id
	userNames   map[string]string           // name -> id
	matches     map[string]model.Match      // by id
	matchOrder  []string                    // insertion order, sorted on read
	predictions map[string]model.Prediction // by (matchID|userID) key
	pools       map[string]model.Pool       // by id
	poolCodes   map[string]string           // code -> id
	members     map[string][]model.Membership
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]model.User),
		userNames:   make(map[string]string),
		matches:     make(map[string]model.Match),
		predictions: make(map[string]model.Prediction),
		pools:       make(map[string]model.Pool),
		poolCodes:   make(map[string]string),
		members:     make(map[string][]model.Membership),
	}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

func predKey(matchID, userID string) string { return matchID + "|" + userID }

func (s *MemoryStore) CreateUser(_ context.Context, name string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.userNames[name]; ok {
		return s.users[id], nil
	}
	u := model.User{ID: uuid.NewString(), Name: name, CreatedAt: time.Now()}
	s.users[u.ID] = u
	s.userNames[name] = u.ID
	return u, nil
}

func (s *MemoryStore) User(_ context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (s *MemoryStore) AddMatches(_ context.Context, matches []model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range matches {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		s.matches[m.ID] = m
		s.matchOrder = append(s.matchOrder, m.ID)
	}
	return nil
}

func (s *MemoryStore) Match(_ context.Context, id string) (model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return model.Match{}, ErrNotFound
	}
	return m, nil
}

func (s *MemoryStore) ListMatches(_ context.Context) ([]model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]model.Match, 0, len(s.matches))
	for _, id := range s.matchOrder {
		matches = append(matches, s.matches[id])
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Kickoff != matches[j].Kickoff {
			return matches[i].Kickoff < matches[j].Kickoff
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

func (s *MemoryStore) RecordResult(_ context.Context, id string, home, away int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[id]
	if !ok {
		return ErrNotFound
	}
	m.Result = model.FinalScore(home, away)
	s.matches[id] = m
	return nil
}

func (s *MemoryStore) UpsertPrediction(_ context.Context, matchID, userID, homePred, awayPred string) (model.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := predKey(matchID, userID)
	p, ok := s.predictions[key]
	if !ok {
		p = model.Prediction{ID: uuid.NewString(), MatchID: matchID, UserID: userID}
	}
	p.HomePred = homePred
	p.AwayPred = awayPred
	p.CreatedAt = time.Now()
	s.predictions[key] = p
	return p, nil
}

func (s *MemoryStore) PredictionsFor(_ context.Context, userID string) (map[string]model.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	preds := make(map[string]model.Prediction)
	for _, p := range s.predictions {
		if p.UserID == userID {
			preds[p.MatchID] = p
		}
	}
	return preds, nil
}

func (s *MemoryStore) StandingEntries(_ context.Context) ([]standings.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entriesLocked(nil), nil
}

func (s *MemoryStore) PoolStandingEntries(_ context.Context, poolID string) ([]standings.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.pools[poolID]; !ok {
		return nil, ErrNotFound
	}
	memberSet := make(map[string]struct{}, len(s.members[poolID]))
	for _, m := range s.members[poolID] {
		memberSet[m.UserID] = struct{}{}
	}
	return s.entriesLocked(memberSet), nil
}

// entriesLocked joins predictions to users and matches; a non-nil
// memberSet restricts the authors. Callers hold at least a read lock.
func (s *MemoryStore) entriesLocked(memberSet map[string]struct{}) []standings.Entry {
	var entries []standings.Entry
	for _, p := range s.predictions {
		if memberSet != nil {
			if _, ok := memberSet[p.UserID]; !ok {
				continue
			}
		}
		u, ok := s.users[p.UserID]
		if !ok {
			continue
		}
		m, ok := s.matches[p.MatchID]
		if !ok {
			continue
		}
		entries = append(entries, standings.Entry{
			UserID:   u.ID,
			UserName: u.Name,
			HomePred: p.HomePred,
			AwayPred: p.AwayPred,
			Result:   m.Result,
		})
	}
	return entries
}

func (s *MemoryStore) CreatePool(_ context.Context, name, code, ownerID string) (model.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.poolCodes[code]; ok {
		return model.Pool{}, ErrCodeTaken
	}
	p := model.Pool{ID: uuid.NewString(), Name: name, Code: code, CreatedAt: time.Now()}
	s.pools[p.ID] = p
	s.poolCodes[code] = p.ID
	s.members[p.ID] = append(s.members[p.ID], model.Membership{
		PoolID: p.ID, UserID: ownerID, Role: model.RoleOwner, CreatedAt: time.Now(),
	})
	return p, nil
}

func (s *MemoryStore) Pool(_ context.Context, id string) (model.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pools[id]
	if !ok {
		return model.Pool{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) PoolByCode(_ context.Context, code string) (model.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.poolCodes[code]
	if !ok {
		return model.Pool{}, ErrNotFound
	}
	return s.pools[id], nil
}

func (s *MemoryStore) AddMember(_ context.Context, poolID, userID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pools[poolID]; !ok {
		return ErrNotFound
	}
	for _, m := range s.members[poolID] {
		if m.UserID == userID {
			return ErrAlreadyMember
		}
	}
	s.members[poolID] = append(s.members[poolID], model.Membership{
		PoolID: poolID, UserID: userID, Role: role, CreatedAt: time.Now(),
	})
	return nil
}

func (s *MemoryStore) PoolsFor(_ context.Context, userID string) ([]PoolMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var memberships []PoolMembership
	for poolID, members := range s.members {
		for _, m := range members {
			if m.UserID == userID {
				memberships = append(memberships, PoolMembership{Pool: s.pools[poolID], Role: m.Role})
			}
		}
	}
	sort.Slice(memberships, func(i, j int) bool {
		if !memberships[i].Pool.CreatedAt.Equal(memberships[j].Pool.CreatedAt) {
			return memberships[i].Pool.CreatedAt.Before(memberships[j].Pool.CreatedAt)
		}
		return memberships[i].Pool.ID < memberships[j].Pool.ID
	})
	return memberships, nil
}

func (s *MemoryStore) Counts(_ context.Context) (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Counts{
		Users:       len(s.users),
		Matches:     len(s.matches),
		Predictions: len(s.predictions),
	}, nil
}
