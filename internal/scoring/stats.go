package scoring

import "github.com/becketmccurdy/buddiesgolf/internal/models"

// ComputeStats rebuilds a player's statistics from every round they played.
//
// Best and average score only consider rounds where the player entered every hole, because
// Total under-reports unfinished cards. Birdies are counted with HoleLabel.
func ComputeStats(playerID string, rounds []models.Round) models.Stats {
	stats := models.NewStats()
	completeTotal, completeRounds := 0, 0

	for i := range rounds {
		r := &rounds[i]
		if !r.HasPlayer(playerID) {
			continue
		}
		stats.RoundsPlayed++
		if r.WinnerID != nil && *r.WinnerID == playerID {
			stats.Wins++
		}

		strokes := r.ScoreMap()[playerID]
		stats.Birdies += CountLabel(strokes, LabelBirdie)

		if !Complete(strokes) {
			continue
		}
		total := Total(strokes)
		completeTotal += total
		completeRounds++
		stats.BestScore = min(stats.BestScore, total)
	}

	if completeRounds > 0 {
		stats.AverageScore = float64(completeTotal) / float64(completeRounds)
	}
	return stats
}

// WinRate is wins per round played, 0 when no rounds were played.
func WinRate(s models.Stats) float64 {
	if s.RoundsPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.RoundsPlayed)
}

// BirdiesPerRound is birdies per round played, 0 when no rounds were played.
func BirdiesPerRound(s models.Stats) float64 {
	if s.RoundsPlayed == 0 {
		return 0
	}
	return float64(s.Birdies) / float64(s.RoundsPlayed)
}

// HasBestScore reports whether s.BestScore holds a real score rather than the sentinel.
func HasBestScore(s models.Stats) bool {
	return s.BestScore != models.NoBestScore
}
