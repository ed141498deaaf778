package scheduler

import "time"

// DateLayout is the ISO calendar date format used throughout the API
const DateLayout = "2006-01-02"

// MaxRangeDays is the longest inclusive date range a single generation may cover
const MaxRangeDays = 371

// ParseDate parses a strict YYYY-MM-DD date in UTC
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// IsDate reports whether s is a valid YYYY-MM-DD date
func IsDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// DaysInRange lists every date from start to end inclusive.
// It returns nil when either bound is invalid or end precedes start.
func DaysInRange(start, end string) []string {
	s, err := ParseDate(start)
	if err != nil {
		return nil
	}
	e, err := ParseDate(end)
	if err != nil {
		return nil
	}
	if e.Before(s) {
		return nil
	}

	var out []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(DateLayout))
	}
	return out
}

// daysBetween is the whole-day difference end - start
func daysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}
