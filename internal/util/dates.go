package util

import (
	"fmt"
	"time"
)

// OrdinalSuffix returns the english suffix for a day of month.
// 11, 12 and 13 take "th" despite ending in 1, 2 and 3.
func OrdinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}

	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// FormatPhotoLabel renders an upload timestamp as e.g. "November 11th, 2025".
func FormatPhotoLabel(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s %d%s, %d", t.Month().String(), t.Day(), OrdinalSuffix(t.Day()), t.Year())
}

// MonthStart returns midnight UTC on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// RemainingQuota clamps at zero so an over-limit count never goes negative.
func RemainingQuota(uploaded int, limit int) int {
	if uploaded >= limit {
		return 0
	}
	return limit - uploaded
}
