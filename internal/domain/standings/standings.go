// Package standings aggregates scored predictions into an ordered
// ranking, either globally or restricted to one pool's members.
package standings

import (
	"sort"

	"github.com/okian/prode/internal/domain/model"
	"github.com/okian/prode/internal/domain/points"
)

// Entry is one prediction joined to its match result and author, the
// shape the storage layer feeds into Rank.
type Entry struct {
	UserID   string
	UserName string
	HomePred string
	AwayPred string
	Result   model.Result
}

// Row is one line of a computed ranking.
type Row struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Points   int    `json:"points"`
}

// Rank scores every entry and returns per-user totals ordered by points
// descending, then user name ascending.
//
// Pending matches contribute nothing, so a user whose predictions are
// all unscored does not appear at all. Entries without a user id are
// skipped: assembling complete rows is the caller's job, and one
// incomplete row must not abort the whole ranking. The returned slice is
// freshly allocated on every call.
func Rank(entries []Entry) []Row {
	totals := make(map[string]*Row, len(entries))
	for _, e := range entries {
		if e.UserID == "" {
			continue
		}
		pts, ok := points.Score(e.HomePred, e.AwayPred, e.Result)
		if !ok {
			continue
		}
		row, seen := totals[e.UserID]
		if !seen {
			row = &Row{UserID: e.UserID, UserName: e.UserName}
			totals[e.UserID] = row
		}
		row.Points += pts
	}

	rows := make([]Row, 0, len(totals))
	for _, row := range totals {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].UserName < rows[j].UserName
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
