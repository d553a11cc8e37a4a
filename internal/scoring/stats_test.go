package scoring

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/becketmccurdy/buddiesgolf/internal/models"
)

func round(winner string, scores map[string][]int, players ...string) models.Round {
	r := models.Round{}
	r.SetScores(players, scores)
	if winner != "" {
		r.WinnerID = &winner
	}
	return r
}

func TestComputeStats(t *testing.T) {
	rounds := []models.Round{
		round("alice", map[string][]int{"alice": {3, 4, 4}, "bob": {5, 5, 5}}, "alice", "bob"),
		round("bob", map[string][]int{"alice": {6, 3, 0}, "bob": {4, 4, 4}}, "alice", "bob"),
		round("carol", map[string][]int{"carol": {4, 4, 4}}, "carol"),
		round("alice", map[string][]int{"alice": {4, 4, 5}}, "alice"),
	}

	got := ComputeStats("alice", rounds)
	want := models.Stats{
		Wins:         2,
		Birdies:      2,
		BestScore:    11,
		AverageScore: 12, // (11 + 13) / 2; the incomplete round is ignored
		RoundsPlayed: 3,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeStatsNoRounds(t *testing.T) {
	got := ComputeStats("nobody", nil)
	if diff := cmp.Diff(models.NewStats(), got); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
	if HasBestScore(got) {
		t.Fatal("expected sentinel best score")
	}
}

func TestRates(t *testing.T) {
	s := models.Stats{Wins: 1, Birdies: 6, RoundsPlayed: 4}
	if got := WinRate(s); got != 0.25 {
		t.Fatalf("expected win rate 0.25, got %v", got)
	}
	if got := BirdiesPerRound(s); got != 1.5 {
		t.Fatalf("expected 1.5 birdies per round, got %v", got)
	}
	if WinRate(models.Stats{}) != 0 || BirdiesPerRound(models.Stats{}) != 0 {
		t.Fatal("expected zero rates with no rounds")
	}
}
