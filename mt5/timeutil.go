package mt5

import (
	"fmt"
	"time"
)

// Wire timestamp layouts.
const (
	barTimeLayout  = "2006.01.02 15:04"
	wireTimeLayout = "2006-01-02 15:04:05"
)

// DefaultLocation is the venue trading-day timezone used when none is
// configured.
var DefaultLocation = mustLocation("Asia/Shanghai")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// stampLocal interprets naive epoch seconds as venue-local wall-clock time
// and attaches the venue location. Zero stays the zero time.
func stampLocal(sec int64, loc *time.Location) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	t := time.Unix(sec, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

// parseBarTime parses a bar reply timestamp, which the venue writes as naive
// UTC, and converts it into the venue location.
func parseBarTime(s string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(barTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse bar time %q: %w", s, err)
	}
	return t.UTC().In(loc), nil
}

// formatWireTime renders a query bound as the naive UTC string the venue
// expects.
func formatWireTime(t time.Time) string {
	return t.UTC().Format(wireTimeLayout)
}
