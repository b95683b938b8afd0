package analytics

import "strconv"

const noData = "정보없음"

// Golden window labels, earliest first.
const (
	WindowDawn         = "새벽 골든타임"
	WindowEarlyMorning = "이른 오전 골든타임"
	WindowMorning      = "오전 골든타임"
	WindowLunch        = "점심 시간대 골든타임"
	WindowAfternoon    = "오후 골든타임"
	WindowEvening      = "저녁 골든타임"
	WindowLateNight    = "늦은 밤 골든타임"
)

// GoldenWindow names the block of the day an hour falls in.
// A nil or negative hour has no label; hours past 21 (including out-of-range values) are late night.
func GoldenWindow(hour *int) string {
	if hour == nil || *hour < 0 {
		return ""
	}
	h := *hour
	switch {
	case h <= 4:
		return WindowDawn
	case h <= 8:
		return WindowEarlyMorning
	case h <= 11:
		return WindowMorning
	case h <= 13:
		return WindowLunch
	case h <= 17:
		return WindowAfternoon
	case h <= 21:
		return WindowEvening
	default:
		return WindowLateNight
	}
}

// BestHourLabel renders the best focus hour as "N시".
func BestHourLabel(hour *int) string {
	if hour == nil || *hour < 0 {
		return noData
	}
	return strconv.Itoa(*hour) + "시"
}
