package service

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/dayline/dayline/internal/domain"
)

// BuildCSV renders records as a CSV document, oldest day first.
func BuildCSV(records []domain.DailyRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"day", "sleep_hours", "activity_hours", "aggression", "mood", "wellness_score"}); err != nil {
		return nil, err
	}

	// Recent windows arrive newest first; exports read better chronologically.
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		row := []string{
			r.Day,
			strconv.FormatFloat(r.SleepHours, 'f', -1, 64),
			strconv.FormatFloat(r.ActivityHours, 'f', -1, 64),
			strconv.Itoa(r.Aggression),
			strconv.Itoa(r.Mood),
			strconv.FormatFloat(r.WellnessScore(), 'f', 1, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
