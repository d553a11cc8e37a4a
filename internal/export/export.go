// Package export writes a player's round history as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/becketmccurdy/buddiesgolf/internal/models"
	"github.com/becketmccurdy/buddiesgolf/internal/scoring"
)

const (
	RoundsSheet  = "Rounds"
	SummarySheet = "Summary"

	// ContentType is the MIME type of the written workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var roundsHeader = []any{"Date", "Course", "Holes", "Par", "Score", "To Par", "Complete", "Result", "Winner", "Players"}

// RoundHistory writes two sheets: one row per round from player's point of view, and a
// summary of player's stored statistics. names maps player IDs to display names; unknown
// IDs are written as-is.
func RoundHistory(w io.Writer, player *models.Profile, rounds []models.Round, names map[string]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), RoundsSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := writeRow(f, RoundsSheet, 1, roundsHeader); err != nil {
		return err
	}

	display := func(id string) string {
		if n, ok := names[id]; ok && n != "" {
			return n
		}
		return id
	}

	for i := range rounds {
		r := &rounds[i]
		course := r.Course()
		strokes := r.ScoreMap()[player.ID]
		total := scoring.Total(strokes)

		toPar := ""
		if course.Snapshot != nil && scoring.Complete(strokes) {
			toPar = fmt.Sprintf("%+d", total-course.Snapshot.Par)
		}
		par := any("")
		if course.Snapshot != nil {
			par = course.Snapshot.Par
		}

		result, winner := "", ""
		if r.WinnerID != nil {
			winner = display(*r.WinnerID)
			if *r.WinnerID == player.ID {
				result = "Won"
			}
		}

		players := r.PlayerIDs()
		for j, id := range players {
			players[j] = display(id)
		}

		row := []any{
			r.Date.String(), course.Name(), r.HoleCount(), par, total, toPar,
			scoring.Complete(strokes), result, winner, strings.Join(players, ", "),
		}
		if err := writeRow(f, RoundsSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	s := player.Stats
	best := any("")
	if scoring.HasBestScore(s) {
		best = s.BestScore
	}
	summary := [][]any{
		{"Player", player.DisplayName},
		{"Rounds played", s.RoundsPlayed},
		{"Wins", s.Wins},
		{"Win rate", scoring.WinRate(s)},
		{"Best score", best},
		{"Average score", s.AverageScore},
		{"Birdies", s.Birdies},
		{"Birdies per round", scoring.BirdiesPerRound(s)},
	}
	for i, row := range summary {
		if err := writeRow(f, SummarySheet, i+1, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
