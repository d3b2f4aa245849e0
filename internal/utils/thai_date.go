package utils

import (
	"fmt"
	"strings"
	"time"
)

// BuddhistEraOffset converts Gregorian years to the Thai Buddhist calendar
const BuddhistEraOffset = 543

// DateLayout is the ISO date format used for every stored date
const DateLayout = "2006-01-02"

// ToBuddhistYear converts a Gregorian year (2026) to Buddhist Era (2569)
func ToBuddhistYear(gregorian int) int {
	return gregorian + BuddhistEraOffset
}

// ToGregorianYear converts a Buddhist Era year to Gregorian
func ToGregorianYear(buddhist int) int {
	return buddhist - BuddhistEraOffset
}

// ShortBuddhistYear returns the two-digit Buddhist Era year of t ("69" for 2026)
func ShortBuddhistYear(t time.Time) string {
	return fmt.Sprintf("%02d", ToBuddhistYear(t.Year())%100)
}

// ParseDate parses a YYYY-MM-DD date in local time. A longer timestamp is
// accepted and truncated to its date part.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// YearOf returns the leading four-digit year of a YYYY-MM-DD string, or 0
func YearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year := 0
	for _, c := range date[:4] {
		if c < '0' || c > '9' {
			return 0
		}
		year = year*10 + int(c-'0')
	}
	return year
}
