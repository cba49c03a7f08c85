// Package model contains domain models passed between layers.
package model

import "time"

// User is a participant identified by a unique display name.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Result is a match's recorded final score. Unplayed matches have no
// result at all; HomeGoals/AwayGoals are only meaningful when Played is
// true, so the two scores can never be present independently.
type Result struct {
	Played    bool `json:"played"`
	HomeGoals int  `json:"home_goals"`
	AwayGoals int  `json:"away_goals"`
}

// FinalScore builds a played result.
func FinalScore(home, away int) Result {
	return Result{Played: true, HomeGoals: home, AwayGoals: away}
}

// Match is one fixture entry. Result is zero-valued until an admin
// records the final score.
type Match struct {
	ID       string `json:"id"`
	Group    string `json:"group_name"` // e.g. "Group A"; empty for knockout games
	Stage    string `json:"stage"`      // e.g. "Group Stage", "Final"
	Kickoff  string `json:"kickoff"`    // scheduled kickoff, as provided by the fixture source
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Result   Result `json:"result"`
}

// Prediction is a user's forecast for one match. The scores are kept as
// the raw digits submitted by the client; normalization happens at
// scoring time.
type Prediction struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	UserID    string    `json:"user_id"`
	HomePred  string    `json:"home_pred"`
	AwayPred  string    `json:"away_pred"`
	CreatedAt time.Time `json:"created_at"`
}

// Pool is a private league joinable by code.
type Pool struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// Membership roles.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Membership ties a user to a pool.
type Membership struct {
	PoolID    string
	UserID    string
	Role      string
	CreatedAt time.Time
}
