// Package scoring holds the pure rules behind a round: totals, the winner, per-hole labels,
// player statistics, the leaderboard and the round history filters.
//
// Nothing in this package talks to the database. Callers fetch rounds and profiles first and
// hand them in.
package scoring

import "errors"

// ErrNoPlayers is returned by Winner when there is nobody to pick from.
var ErrNoPlayers = errors.New("round has no players")

// Total sums a per-hole stroke array. Unentered (0) holes add nothing, so an incomplete
// round reports a lower total than it will once finished.
func Total(strokes []int) int {
	total := 0
	for _, s := range strokes {
		total += max(s, 0)
	}
	return total
}

// Complete reports whether every hole has a stroke count.
func Complete(strokes []int) bool {
	if len(strokes) == 0 {
		return false
	}
	for _, s := range strokes {
		if s <= 0 {
			return false
		}
	}
	return true
}

// PlayerTotal pairs a player with their round total.
type PlayerTotal struct {
	PlayerID string `json:"player_id"`
	Total    int    `json:"total"`
	Complete bool   `json:"complete"`
}

// Totals returns one PlayerTotal per player, in the order given.
func Totals(players []string, scores map[string][]int) []PlayerTotal {
	out := make([]PlayerTotal, 0, len(players))
	for _, p := range players {
		out = append(out, PlayerTotal{
			PlayerID: p,
			Total:    Total(scores[p]),
			Complete: Complete(scores[p]),
		})
	}
	return out
}

// Winner returns the player with the lowest total. On a tie the player that comes first in
// players wins; no tie is reported.
func Winner(players []string, scores map[string][]int) (string, error) {
	if len(players) == 0 {
		return "", ErrNoPlayers
	}
	winner := players[0]
	best := Total(scores[winner])
	for _, p := range players[1:] {
		if t := Total(scores[p]); t < best {
			winner, best = p, t
		}
	}
	return winner, nil
}

// Label is the scorecard name of a single hole result.
type Label string

const (
	LabelHoleInOne          Label = "hole in one"
	LabelEagle              Label = "eagle"
	LabelBirdie             Label = "birdie"
	LabelPar                Label = "par"
	LabelBogey              Label = "bogey"
	LabelDoubleBogeyOrWorse Label = "double bogey or worse"
	LabelNone               Label = "no label"
)

// AssumedHolePar is the par every hole is compared against. Courses only store a whole-course
// par, so individual holes are labelled as if they were par 4.
const AssumedHolePar = 4

// HoleLabel classifies a stroke count against AssumedHolePar.
func HoleLabel(strokes int) Label {
	switch {
	case strokes <= 0:
		return LabelNone
	case strokes == 1:
		return LabelHoleInOne
	case strokes == AssumedHolePar-2:
		return LabelEagle
	case strokes == AssumedHolePar-1:
		return LabelBirdie
	case strokes == AssumedHolePar:
		return LabelPar
	case strokes == AssumedHolePar+1:
		return LabelBogey
	default:
		return LabelDoubleBogeyOrWorse
	}
}

// HoleLabels labels every entry of strokes.
func HoleLabels(strokes []int) []Label {
	out := make([]Label, len(strokes))
	for i, s := range strokes {
		out[i] = HoleLabel(s)
	}
	return out
}

// CountLabel counts the holes in strokes that carry label.
func CountLabel(strokes []int, label Label) int {
	n := 0
	for _, s := range strokes {
		if HoleLabel(s) == label {
			n++
		}
	}
	return n
}
