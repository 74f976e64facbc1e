package model

import "time"

// DateLayout is the fixed-width ISO calendar date used for every
// orderable field.
const DateLayout = "2006-01-02"

// FormatDate renders t's calendar date in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses an ISO date at midnight UTC.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsDate reports whether s is a well-formed ISO date.
func IsDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}

// Today returns now's calendar date in loc. Callers compute it once per
// request and pass it down so every comparison uses the same instant.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return FormatDate(now.In(loc))
}

// AddDays shifts an ISO date by n days. Malformed input is returned as is.
func AddDays(date string, n int) string {
	t, ok := ParseDate(date)
	if !ok {
		return date
	}
	return FormatDate(t.AddDate(0, 0, n))
}
