// Package fixture loads the tournament fixture from a CSV source.
package fixture

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/okian/prode/internal/domain/model"
)

// defaultStage is assumed when a CSV row leaves the stage blank.
const defaultStage = "Group Stage"

// Load reads matches from the CSV file at path. A missing file is not
// an error: the built-in sample fixture is returned instead so a fresh
// deployment always has something to predict on.
func Load(path string) ([]model.Match, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Sample(), nil
		}
		return nil, fmt.Errorf("open fixture csv: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads matches from CSV content with a header row of
// group_name,stage,kickoff,home_team,away_team. Rows missing a kickoff
// or either team are dropped.
func Parse(r io.Reader) ([]model.Match, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read fixture header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var matches []model.Match
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read fixture row: %w", err)
		}

		m := model.Match{
			Group:    field(record, "group_name"),
			Stage:    field(record, "stage"),
			Kickoff:  field(record, "kickoff"),
			HomeTeam: field(record, "home_team"),
			AwayTeam: field(record, "away_team"),
		}
		if m.Stage == "" {
			m.Stage = defaultStage
		}
		if m.Kickoff == "" || m.HomeTeam == "" || m.AwayTeam == "" {
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Sample is the fallback fixture used when no CSV is available.
func Sample() []model.Match {
	return []model.Match{
		{Group: "Group A", Stage: defaultStage, Kickoff: "2026-06-11 16:00", HomeTeam: "Mexico", AwayTeam: "South Africa"},
		{Group: "Group A", Stage: defaultStage, Kickoff: "2026-06-11 23:00", HomeTeam: "South Korea", AwayTeam: "TBD"},
		{Group: "Group J", Stage: defaultStage, Kickoff: "2026-06-16 22:00", HomeTeam: "Argentina", AwayTeam: "Algeria"},
	}
}
