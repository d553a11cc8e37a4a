package scoring

import (
	"slices"
	"strings"

	"github.com/becketmccurdy/buddiesgolf/internal/models"
)

// HistoryFilter narrows a fetched list of rounds. Zero-valued fields are not applied;
// set fields are combined with AND.
type HistoryFilter struct {
	Course string       // Case-insensitive substring of the course name
	Player string       // Case-insensitive substring of a player's display name
	Date   *models.Date // Exact calendar date
}

// IsZero reports whether no filter is set.
func (f HistoryFilter) IsZero() bool {
	return f.Course == "" && f.Player == "" && f.Date == nil
}

// ResolvePlayer returns the ID of the first profile whose display name contains search,
// ignoring case.
func ResolvePlayer(profiles []models.Profile, search string) (string, bool) {
	needle := strings.ToLower(search)
	for _, p := range profiles {
		if strings.Contains(strings.ToLower(p.DisplayName), needle) {
			return p.ID, true
		}
	}
	return "", false
}

// FilterRounds applies f to rounds. profiles is used to turn a player name search into an
// ID; a name search that matches no profile matches no rounds.
func FilterRounds(rounds []models.Round, profiles []models.Profile, f HistoryFilter) []models.Round {
	if f.IsZero() {
		return rounds
	}

	var playerID string
	if f.Player != "" {
		id, ok := ResolvePlayer(profiles, f.Player)
		if !ok {
			return []models.Round{}
		}
		playerID = id
	}
	course := strings.ToLower(f.Course)

	out := make([]models.Round, 0, len(rounds))
	for _, r := range rounds {
		if course != "" && !strings.Contains(strings.ToLower(r.Course().Name()), course) {
			continue
		}
		if playerID != "" && !r.HasPlayer(playerID) {
			continue
		}
		if f.Date != nil && !r.Date.Equal(*f.Date) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// UniqueCourseNames lists course names in the order they first appear.
func UniqueCourseNames(rounds []models.Round) []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, r := range rounds {
		name := r.Course().Name()
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// UniqueDates lists the distinct round dates, newest first.
func UniqueDates(rounds []models.Round) []models.Date {
	seen := make(map[string]bool)
	dates := []models.Date{}
	for _, r := range rounds {
		key := r.Date.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		dates = append(dates, r.Date)
	}
	slices.SortFunc(dates, func(a, b models.Date) int {
		return b.Compare(a.Time)
	})
	return dates
}
