package utils

import (
	"time"

	"cloud.google.com/go/civil"
)

// Today returns the calendar date in loc at the moment now.
func Today(now time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.UTC
	}
	return civil.DateOf(now.In(loc))
}

// TodayFunc binds Today to the wall clock and a fixed zone.
func TodayFunc(loc *time.Location) func() civil.Date {
	return func() civil.Date {
		return Today(time.Now(), loc)
	}
}
