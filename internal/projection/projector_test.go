package projection

import (
	"testing"
	"time"

	"rentdash/internal/snapshot"

	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }
func intPtr(n int) *int              { return &n }

func TestCountdown(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		now     time.Time
		minutes int
		want    string
	}{
		{"full duration left", start, 125, "2 h 5 m 0 s"},
		{"mid rental", start.Add(30*time.Minute + 30*time.Second), 60, "0 h 29 m 30 s"},
		{"exactly at deadline", start.Add(60 * time.Minute), 60, "0 h 0 m 0 s"},
		{"past deadline clamps at zero", start.Add(61 * time.Minute), 60, "0 h 0 m 0 s"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Countdown(timePtr(start), intPtr(tc.minutes), "-", tc.now)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestCountdownFallback(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.Equal(t, "3 h left", Countdown(nil, intPtr(60), "3 h left", now))
	require.Equal(t, "-", Countdown(timePtr(now), nil, "-", now))
	require.Equal(t, "-", Countdown(timePtr(now), intPtr(0), "-", now))
	require.Equal(t, "-", Countdown(timePtr(now), intPtr(-30), "-", now))
}

func TestMatchClockExtrapolates(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	seconds := int64(330) // "5:30"
	row := snapshot.RentalRow{MatchTimeRaw: "5:30", MatchSeconds: &seconds, ObservedAt: t0}

	require.Equal(t, "5:30", MatchClock(row, t0))
	require.Equal(t, "5:42", MatchClock(row, t0.Add(12*time.Second)))
	// floor, not round
	require.Equal(t, "5:42", MatchClock(row, t0.Add(12900*time.Millisecond)))
	// clock never runs backwards past the observed value
	require.Equal(t, "5:30", MatchClock(row, t0.Add(-5*time.Second)))
}

func TestMatchClockHourRollover(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	seconds := int64(3590)
	row := snapshot.RentalRow{MatchTimeRaw: "59:50", MatchSeconds: &seconds, ObservedAt: t0}

	require.Equal(t, "59:50", MatchClock(row, t0))
	require.Equal(t, "1:00:10", MatchClock(row, t0.Add(20*time.Second)))
}

func TestMatchClockEchoesUnparseable(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for _, raw := range []string{"-", "none", ""} {
		row := snapshot.RentalRow{MatchTimeRaw: raw, ObservedAt: t0}
		require.Equal(t, raw, MatchClock(row, t0.Add(time.Hour)))
	}
}

func TestMatchClockWithoutObservationInstant(t *testing.T) {
	seconds := int64(95)
	row := snapshot.RentalRow{MatchTimeRaw: "1:35", MatchSeconds: &seconds}
	require.Equal(t, "1:35", MatchClock(row, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
}

func TestMatchClockMonotonic(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	seconds := int64(330)
	row := snapshot.RentalRow{MatchTimeRaw: "5:30", MatchSeconds: &seconds, ObservedAt: t0}

	previous := int64(-1)
	for offset := time.Duration(0); offset <= 2*time.Minute; offset += 700 * time.Millisecond {
		label := MatchClock(row, t0.Add(offset))
		elapsed, ok := snapshot.ParseDurationSeconds(label)
		require.True(t, ok, "label %q", label)
		require.GreaterOrEqual(t, elapsed, previous)
		previous = elapsed
	}
}

func TestFormatClock(t *testing.T) {
	require.Equal(t, "0:00", FormatClock(0))
	require.Equal(t, "0:09", FormatClock(9))
	require.Equal(t, "59:59", FormatClock(3599))
	require.Equal(t, "1:00:00", FormatClock(3600))
	require.Equal(t, "2:05:07", FormatClock(7507))
	require.Equal(t, "0:00", FormatClock(-10))
}

func TestFormatCountdown(t *testing.T) {
	require.Equal(t, "0 h 0 m 0 s", FormatCountdown(0))
	require.Equal(t, "1 h 15 m 0 s", FormatCountdown(75*time.Minute))
	require.Equal(t, "0 h 0 m 59 s", FormatCountdown(59*time.Second))
}
