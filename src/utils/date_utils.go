package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const ISODateFormat = "2006-01-02"

// ParseFlexibleDate parses a statement date cell. ISO format is tried first;
// on failure the value is reinterpreted as DD/MM/YYYY.
func ParseFlexibleDate(dateStr string) (time.Time, error) {
	s := strings.TrimSpace(dateStr)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if t, err := time.Parse(ISODateFormat, s); err == nil {
		return t, nil
	}

	parts := strings.Split(s, "/")
	if len(parts) == 3 {
		day, errD := strconv.Atoi(strings.TrimSpace(parts[0]))
		month, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
		year, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
		if errD == nil && errM == nil && errY == nil && month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			// Reject rollovers like 31/02/2025.
			if t.Day() == day {
				return t, nil
			}
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", dateStr)
}

// MonthKey returns the YYYY-MM bucket key for a date. Lexicographic order of
// these keys matches chronological order.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
