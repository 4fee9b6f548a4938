package utils

import (
	"time"
)

// StartOfDay truncates t to midnight in its location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// UntilNext returns the wait before the next multiple of interval counted
// from midnight. Used to align the daily maintenance job.
func UntilNext(now time.Time, interval time.Duration) time.Duration {
	if interval <= 0 {
		return 0
	}
	elapsed := now.Sub(StartOfDay(now))
	next := (elapsed/interval + 1) * interval
	return next - elapsed
}
