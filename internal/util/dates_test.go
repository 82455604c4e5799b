package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOrdinalSuffix(t *testing.T) {
	cases := map[int]string{
		1:  "st",
		2:  "nd",
		3:  "rd",
		4:  "th",
		10: "th",
		11: "th",
		12: "th",
		13: "th",
		21: "st",
		22: "nd",
		23: "rd",
		30: "th",
		31: "st",
	}

	for day, expected := range cases {
		require.Equal(t, expected, OrdinalSuffix(day), "day %d", day)
	}
}

func TestFormatPhotoLabel(t *testing.T) {
	ts, err := time.Parse(time.RFC3339, "2025-11-11T10:00:00Z")
	require.NoError(t, err)
	require.Equal(t, "November 11th, 2025", FormatPhotoLabel(ts))

	ts, err = time.Parse(time.RFC3339, "2026-03-01T00:00:00Z")
	require.NoError(t, err)
	require.Equal(t, "March 1st, 2026", FormatPhotoLabel(ts))

	ts, err = time.Parse(time.RFC3339, "2026-08-22T23:59:59Z")
	require.NoError(t, err)
	require.Equal(t, "August 22nd, 2026", FormatPhotoLabel(ts))
}

func TestFormatPhotoLabelNormalizesZone(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC
	loc := time.FixedZone("UTC-5", -5*60*60)
	ts := time.Date(2025, time.December, 31, 23, 30, 0, 0, loc)

	require.Equal(t, "January 1st, 2026", FormatPhotoLabel(ts))
}

func TestMonthStart(t *testing.T) {
	ts := time.Date(2026, time.August, 29, 15, 4, 5, 0, time.UTC)
	start := MonthStart(ts)

	require.Equal(t, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), start)
	require.True(t, start.Before(ts))

	// First instant of the month is its own start
	require.Equal(t, start, MonthStart(start))
}

func TestRemainingQuota(t *testing.T) {
	require.Equal(t, 2, RemainingQuota(0, 2))
	require.Equal(t, 1, RemainingQuota(1, 2))
	require.Equal(t, 0, RemainingQuota(2, 2))
	require.Equal(t, 0, RemainingQuota(5, 2), "over-limit never goes negative")
}
