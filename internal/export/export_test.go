package export

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/becketmccurdy/buddiesgolf/internal/models"
)

func TestRoundHistory(t *testing.T) {
	alice := &models.Profile{ID: "alice", DisplayName: "Alice", Stats: models.Stats{
		Wins: 1, RoundsPlayed: 2, BestScore: 38, AverageScore: 38, Birdies: 3,
	}}
	course := &models.Course{ID: uuid.New(), Name: "Pine Valley", Holes: 9, Par: 36}

	won := models.Round{ID: uuid.New(), Date: mustDate(t, "2024-05-04")}
	won.SetCourse(models.SnapshotOf(course))
	won.SetScores([]string{"alice", "bob"}, map[string][]int{
		"alice": {4, 4, 4, 4, 4, 4, 4, 5, 5},
		"bob":   {5, 5, 5, 5, 5, 5, 5, 5, 5},
	})
	winner := "alice"
	won.WinnerID = &winner

	legacy := models.Round{ID: uuid.New(), Date: mustDate(t, "2023-09-01")}
	legacy.SetCourse(models.LegacyCourse("Old Muni"))
	legacy.SetScores([]string{"bob", "alice"}, map[string][]int{
		"bob":   {3, 3, 3},
		"alice": {4, 0, 4},
	})
	loser := "bob"
	legacy.WinnerID = &loser

	var buf bytes.Buffer
	err := RoundHistory(&buf, alice, []models.Round{won, legacy}, map[string]string{"alice": "Alice", "bob": "Bob"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{RoundsSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(RoundsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, []string{"2024-05-04", "Pine Valley", "9", "36", "38", "+2", "TRUE", "Won", "Alice", "Alice, Bob"}, rows[1])
	assert.Equal(t, []string{"2023-09-01", "Old Muni", "3", "", "8", "", "FALSE", "", "Bob", "Bob, Alice"}, rows[2])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Player", "Alice"}, summary[0])
	assert.Equal(t, []string{"Win rate", "0.5"}, summary[3])
	assert.Equal(t, []string{"Best score", "38"}, summary[4])
}

func TestRoundHistoryNoBestScore(t *testing.T) {
	p := &models.Profile{ID: "p", DisplayName: "New", Stats: models.NewStats()}

	var buf bytes.Buffer
	require.NoError(t, RoundHistory(&buf, p, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(RoundsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	row := summary[4]
	assert.Equal(t, "Best score", row[0])
	if len(row) > 1 {
		assert.Empty(t, row[1])
	}
}

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}
