// Package projection turns static snapshot values plus a wall-clock instant
// into continuously advancing display labels. Every function is total: any
// input degrades to the best available fallback string, never an error.
package projection

import (
	"fmt"
	"time"

	"rentdash/internal/snapshot"
)

// Remaining computes how much rental time is left at now. It reports false
// when no countdown can be computed (absent start, absent or non-positive
// duration); otherwise the remaining duration clamped at zero.
func Remaining(start *time.Time, minutes *int, now time.Time) (time.Duration, bool) {
	if start == nil || minutes == nil || *minutes <= 0 {
		return 0, false
	}
	end := start.Add(time.Duration(*minutes) * time.Minute)
	remaining := end.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// Countdown renders the remaining rental time as "<h> h <m> m <s> s",
// holding at zero once the deadline passes. When no countdown can be
// computed it returns fallback verbatim.
func Countdown(start *time.Time, minutes *int, fallback string, now time.Time) string {
	remaining, ok := Remaining(start, minutes, now)
	if !ok {
		return fallback
	}
	return FormatCountdown(remaining)
}

// FormatCountdown renders a non-negative duration as "<h> h <m> m <s> s".
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%d h %d m %d s", total/3600, total%3600/60, total%60)
}

// MatchClock renders the elapsed in-match time for a rental, extrapolated
// from the instant the snapshot value was observed. Unparseable source values
// are echoed unchanged; a parsed value with no observation instant is
// rendered as-is.
func MatchClock(row snapshot.RentalRow, now time.Time) string {
	if row.MatchSeconds == nil {
		return row.MatchTimeRaw
	}

	seconds := *row.MatchSeconds
	if !row.ObservedAt.IsZero() {
		if elapsed := now.Sub(row.ObservedAt); elapsed > 0 {
			// floor, not round
			seconds += int64(elapsed / time.Second)
		}
	}
	if seconds < 0 {
		seconds = 0
	}
	return FormatClock(seconds)
}

// FormatClock renders elapsed seconds as H:MM:SS when at least an hour has
// passed, else M:SS.
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
