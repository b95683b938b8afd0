// Package model defines shared data structures.
package model

import (
	"strconv"
	"time"
)

// Config defines dashboard settings resolved from flags and the config file.
type Config struct {
	BaseURL  string
	MemberID int64
	Session  string
	Rate     float64
	Mode     string
	Offline  bool
}

// Mode values for the study summary window.
const (
	ModeWeek  = "week"
	ModeMonth = "month"
)

// TrendSignal is the week-over-week focus trend reported upstream.
type TrendSignal string

// Trend values. Upstream reports "flat" for neutral; any other value is neutral too.
const (
	TrendIncrease TrendSignal = "increase"
	TrendDecrease TrendSignal = "decrease"
	TrendNeutral  TrendSignal = "flat"
)

// SeatType is the seat category assigned by the backend.
type SeatType string

// Known seat categories.
const (
	SeatWindow   SeatType = "창가석"
	SeatCorner   SeatType = "코너석"
	SeatIsolated SeatType = "고립석"
	SeatAisle    SeatType = "통로석"
	SeatCenter   SeatType = "중앙석"
	SeatBeverage SeatType = "음료바근처"
	SeatGeneral  SeatType = "일반석"
)

// MetricKind is the unit a challenge is measured in.
type MetricKind string

// Challenge metric kinds.
const (
	MetricTime  MetricKind = "time"
	MetricCount MetricKind = "count"
)

// Message carries the backend's analysis and coaching sentences.
type Message struct {
	Analysis string `json:"analysis"`
	Coaching string `json:"coaching"`
}

// StudyPeriodSummary aggregates one window (week or month).
type StudyPeriodSummary struct {
	TotalUsageMinutes float64 `json:"total_usage_minute"`
	FocusTimeMinutes  float64 `json:"focus_time_minute"`
	FocusRatio        float64 `json:"focus_ratio"`
}

// StudyDaySample is one day of the study chart.
type StudyDaySample struct {
	Date         string  `json:"date"`
	Weekday      string  `json:"weekday"`
	UsageMinutes float64 `json:"usage_minute"`
	FocusMinutes float64 `json:"focus_minute"`
}

// StudyStats is the /times payload.
type StudyStats struct {
	Weekly  StudyPeriodSummary `json:"weekly"`
	Monthly StudyPeriodSummary `json:"monthly"`
	Days    []StudyDaySample   `json:"days"`
}

// BestRecord is the longest single focus run.
type BestRecord struct {
	Minutes float64 `json:"minute"`
	Date    string  `json:"date"`
}

// WeeklyChange compares this week's focus to last week's.
type WeeklyChange struct {
	DifferenceMinutes float64     `json:"difference_minute"`
	Trend             TrendSignal `json:"trend"`
}

// FocusSnapshot is the /seat/analysis payload.
type FocusSnapshot struct {
	AverageFocusMinutes float64      `json:"average_focus_minute"`
	BestRecord          *BestRecord  `json:"best_record"`
	WeeklyChange        WeeklyChange `json:"weekly_change"`
	Message             Message      `json:"message"`
}

// FocusDay is the weekday with the best focus ratio.
type FocusDay struct {
	Day        string  `json:"day"`
	FocusRatio float64 `json:"focus_ratio"`
}

// FocusHour is the hour of day with the most focus.
type FocusHour struct {
	Hour              *int    `json:"hour"`
	TotalFocusMinutes float64 `json:"total_focus_minute"`
}

// FocusPattern is the /seat/pattern payload.
type FocusPattern struct {
	TopFocusDay          *FocusDay  `json:"top_focus_day"`
	TopFocusHour         *FocusHour `json:"top_focus_hour"`
	AvgDailyFocusMinutes float64    `json:"avg_daily_focus_minute"`
	LongestStreakDays    int        `json:"longest_streak_days"`
}

// SeatUsageRecord is one entry of the ranked seat list.
type SeatUsageRecord struct {
	SeatID      int64    `json:"seat_id"`
	SeatType    SeatType `json:"seat_type"`
	UsedMinutes float64  `json:"seat_use_time"`
}

// SeatPreference is the share of usage for one seat category.
type SeatPreference struct {
	SeatType SeatType `json:"seat_type"`
	Ratio    float64  `json:"ratio"`
}

// SeatStats is the /seats payload.
type SeatStats struct {
	FrequentSeats []SeatUsageRecord `json:"frequently_seat_use"`
	Preferences   []SeatPreference  `json:"seat_attr"`
	Message       *Message          `json:"message"`
}

// Challenge is a monthly goal ("todo") the member tracks to completion.
type Challenge struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Kind         MetricKind `json:"kind"`
	TargetValue  float64    `json:"target_value"`
	CurrentValue float64    `json:"current_value"`
	IsAchieved   bool       `json:"is_achieved"`
}

// SessionKey identifies one challenge session. The current challenge arrives without
// an id, so the definition is part of the key.
func (c Challenge) SessionKey() string {
	return strconv.FormatInt(c.ID, 10) + "|" + c.Title + "|" + string(c.Kind) + "|" +
		strconv.FormatFloat(c.TargetValue, 'f', -1, 64)
}

// Dashboard bundles every payload needed for one render cycle.
type Dashboard struct {
	MemberID   int64
	FetchedAt  time.Time
	Study      StudyStats
	Focus      FocusSnapshot
	Pattern    FocusPattern
	Seats      SeatStats
	Challenge  *Challenge
	Candidates []Challenge
}

// ChallengeSelection records a submitted challenge choice.
type ChallengeSelection struct {
	MemberID    int64
	ChallengeID int64
	RequestID   string
	SelectedAt  time.Time
	SubmittedAt *time.Time
}
