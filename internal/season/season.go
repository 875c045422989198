// Package season derives the weekly season codes that partition game scores.
package season

import (
	"fmt"
	"strings"
	"time"
)

// Code returns the season code for the given instant.
//
// The format is W<NN>-<YYYY>-<MON>: NN is the 1-based week-of-month bucket
// (ceil(day/7), so 1-5), YYYY the year and MON the uppercase 3-letter month.
// Example: 2025-01-03 -> "W01-2025-JAN". The bucket index restarts every
// month, so codes are only unique together with month and year.
func Code(t time.Time) string {
	week := (t.Day() + 6) / 7
	month := strings.ToUpper(t.Month().String()[:3])
	return fmt.Sprintf("W%02d-%d-%s", week, t.Year(), month)
}

// Current returns the season code for the current wall-clock time in loc.
// A nil location defaults to UTC.
func Current(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return Code(time.Now().In(loc))
}
