// Package analytics derives display view models from raw study analytics payloads.
package analytics

import (
	"math"
	"strconv"
	"strings"
)

const (
	zeroDuration  = "0분"
	weekdaySuffix = "요일"
)

// FormatMinutes renders a minute count as "<h>시간 <m>분", "<m>분" or "0분".
// The minute remainder is rounded to the nearest whole minute.
func FormatMinutes(minutes float64) string {
	h, rem := splitMinutes(minutes)
	return formatHoursMinutes(h, int64(math.Round(rem)))
}

// FormatMinutesExact is FormatMinutes with the minute remainder truncated instead of rounded.
func FormatMinutesExact(minutes float64) string {
	h, rem := splitMinutes(minutes)
	return formatHoursMinutes(h, int64(math.Trunc(rem)))
}

func splitMinutes(minutes float64) (int64, float64) {
	minutes = nonNegative(minutes)
	h := math.Floor(minutes / 60)
	return int64(h), math.Mod(minutes, 60)
}

func formatHoursMinutes(h, m int64) string {
	switch {
	case h > 0:
		return strconv.FormatInt(h, 10) + "시간 " + strconv.FormatInt(m, 10) + "분"
	case m > 0:
		return strconv.FormatInt(m, 10) + "분"
	default:
		return zeroDuration
	}
}

// FormatMonthDay extracts "MM/DD" from a "YYYY-MM-DD" date. Empty or malformed input yields "".
func FormatMonthDay(date string) string {
	parts := strings.Split(strings.TrimSpace(date), "-")
	if len(parts) < 3 || parts[1] == "" || parts[2] == "" {
		return ""
	}
	return parts[1] + "/" + parts[2]
}

// ShortWeekday strips the weekday suffix for compact labels ("월요일" -> "월").
func ShortWeekday(label string) string {
	before, _, _ := strings.Cut(label, weekdaySuffix)
	return before
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
