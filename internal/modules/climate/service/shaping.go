package service

import (
	"fmt"
	"strconv"
	"time"

	"climate-server/internal/modules/climate/types"
)

const dateLayout = "2006-01-02"

// precipitationFold is the accumulator of FoldPrecipitation.
type precipitationFold struct {
	entries  []types.PrecipitationEntry
	lastDate string
}

func (f precipitationFold) step(row types.Precipitation) precipitationFold {
	entry := types.PrecipitationEntry{Prcp: map[string]*float64{row.Station: row.Prcp}}
	if row.Date != f.lastDate {
		entry.Date = row.Date
	}
	return precipitationFold{entries: append(f.entries, entry), lastDate: row.Date}
}

// FoldPrecipitation emits one entry per row, in order. Only the first entry of
// each run of equal dates carries the date.
func FoldPrecipitation(rows []types.Precipitation) []types.PrecipitationEntry {
	acc := precipitationFold{entries: make([]types.PrecipitationEntry, 0, len(rows))}
	for _, row := range rows {
		acc = acc.step(row)
	}
	return acc.entries
}

// OneYearEarlier returns the same month and day one year before date.
// Feb 29 maps to Feb 28 since the target year is never a leap year.
func OneYearEarlier(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", date, err)
	}
	day := t.Day()
	if t.Month() == time.February && day == 29 {
		day = 28
	}
	return time.Date(t.Year()-1, t.Month(), day, 0, 0, 0, 0, time.UTC).Format(dateLayout), nil
}

// RoundTo2 rounds the exact binary value to two decimals, ties to even
// (70.125 becomes 70.12). nil stays nil.
func RoundTo2(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(*v, 'f', 2, 64), 64)
	if err != nil {
		r = *v
	}
	return &r
}
