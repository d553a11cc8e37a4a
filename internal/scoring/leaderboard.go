package scoring

import (
	"slices"

	"github.com/becketmccurdy/buddiesgolf/internal/models"
)

// LeaderboardSize is how many profiles the dashboard leaderboard shows.
const LeaderboardSize = 5

// Standing is one leaderboard row.
type Standing struct {
	Rank    int            `json:"rank"`
	Profile models.Profile `json:"-"`
}

// Leaderboard orders profiles by wins, most first, and keeps the first n.
// The sort is stable: profiles with equal wins stay in the order they were passed in.
// The store returns profiles ordered by display name, which makes ties alphabetical.
func Leaderboard(profiles []models.Profile, n int) []Standing {
	ranked := slices.Clone(profiles)
	slices.SortStableFunc(ranked, func(a, b models.Profile) int {
		return b.Stats.Wins - a.Stats.Wins
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}

	out := make([]Standing, len(ranked))
	for i, p := range ranked {
		out[i] = Standing{Rank: i + 1, Profile: p}
	}
	return out
}
