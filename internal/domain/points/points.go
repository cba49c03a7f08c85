// Package points implements the prode point rule: how one prediction
// measures up against one final score.
package points

import (
	"strconv"
	"strings"

	"github.com/okian/prode/internal/domain/model"
)

// Point values, in precedence order. An exact scoreline beats a correct
// margin, which beats a correct outcome.
const (
	Exact    = 5 // predicted the exact scoreline
	Margin   = 4 // correct outcome and goal differential, not exact
	Tendency = 3 // correct outcome only
	Miss     = 0 // wrong outcome, or unparseable prediction
)

// Outcome is the winner side derived from a scoreline.
type Outcome byte

// Outcome values.
const (
	HomeWin Outcome = 'H'
	AwayWin Outcome = 'A'
	Draw    Outcome = 'D'
)

// outcomeOf derives the outcome from a scoreline.
func outcomeOf(home, away int) Outcome {
	switch {
	case home > away:
		return HomeWin
	case home < away:
		return AwayWin
	default:
		return Draw
	}
}

// Score awards points for a prediction against a match result.
//
// The second return value reports whether the match is scoreable at all:
// it is false while the match has no recorded result, and such pending
// awards must never be summed into a total. Predictions arrive as raw
// digits from client input; once the match has been played, digits that
// do not parse as integers score Miss rather than turning the match
// pending again.
func Score(homePred, awayPred string, res model.Result) (int, bool) {
	if !res.Played {
		return 0, false
	}

	hp, err := strconv.Atoi(strings.TrimSpace(homePred))
	if err != nil {
		return Miss, true
	}
	ap, err := strconv.Atoi(strings.TrimSpace(awayPred))
	if err != nil {
		return Miss, true
	}

	hs, as := res.HomeGoals, res.AwayGoals

	if hp == hs && ap == as {
		return Exact, true
	}
	if outcomeOf(hp, ap) == outcomeOf(hs, as) {
		if hs-as == hp-ap {
			return Margin, true
		}
		return Tendency, true
	}
	return Miss, true
}
