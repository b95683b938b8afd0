package analytics

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/studydash/internal/model"
)

const (
	dayLimit       = 4
	missingDate    = "-"
	streakUnit     = "일"
	minutesPerHour = 60.0
)

// DashboardOptions controls how payloads are turned into a view.
type DashboardOptions struct {
	Mode    string
	Latched bool
}

// DayView is one column of the study chart.
type DayView struct {
	DateLabel    string  `json:"date_label"`
	Weekday      string  `json:"weekday"`
	ShortWeekday string  `json:"short_weekday"`
	UsageLabel   string  `json:"usage_label"`
	FocusLabel   string  `json:"focus_label"`
	UsageHours   float64 `json:"usage_hours"`
	FocusHours   float64 `json:"focus_hours"`
}

// StudyView summarizes study time for the selected window.
type StudyView struct {
	Mode              string    `json:"mode"`
	TotalLabel        string    `json:"total_label"`
	FocusLabel        string    `json:"focus_label"`
	FocusPercent      int       `json:"focus_percent"`
	FocusPercentLabel string    `json:"focus_percent_label"`
	Days              []DayView `json:"days"`
}

// FocusView is the focus analysis card.
type FocusView struct {
	AverageLabel  string         `json:"average_label"`
	BestLabel     string         `json:"best_label"`
	BestDateLabel string         `json:"best_date_label"`
	Trend         VisualCategory `json:"trend"`
	Analysis      string         `json:"analysis"`
	Coaching      string         `json:"coaching"`
}

// PatternView is the focus pattern card.
type PatternView struct {
	BestDay      string `json:"best_day"`
	FocusScore   string `json:"focus_score"`
	BestHour     string `json:"best_hour"`
	GoldenWindow string `json:"golden_window"`
	DailyAverage string `json:"daily_average"`
	Streak       string `json:"streak"`
}

// SeatView is the seat preference card.
type SeatView struct {
	Board       SeatBoard       `json:"board"`
	Preferences []PreferenceBar `json:"preferences"`
}

// DashboardView is everything the presentation layer renders for one cycle.
type DashboardView struct {
	MemberID   int64             `json:"member_id"`
	Study      StudyView         `json:"study"`
	Focus      FocusView         `json:"focus"`
	Pattern    PatternView       `json:"pattern"`
	Seats      SeatView          `json:"seats"`
	Challenge  ChallengeView     `json:"challenge"`
	Candidates []model.Challenge `json:"candidates"`
}

// BuildDashboard derives the dashboard view and returns the evaluated challenge progress
// so the caller can persist its latch.
func BuildDashboard(d model.Dashboard, opts DashboardOptions) (DashboardView, ChallengeProgress) {
	progress, challenge := NewChallengeProgress(d.Challenge, opts.Latched).Evaluate()
	view := DashboardView{
		MemberID:   d.MemberID,
		Study:      BuildStudyView(d.Study, opts.Mode),
		Focus:      BuildFocusView(d.Focus),
		Pattern:    BuildPatternView(d.Pattern),
		Seats:      BuildSeatView(d.Seats),
		Challenge:  challenge,
		Candidates: d.Candidates,
	}
	return view, progress
}

// BuildStudyView formats the weekly or monthly summary and the daily samples.
func BuildStudyView(s model.StudyStats, mode string) StudyView {
	summary := s.Weekly
	if mode == model.ModeMonth {
		summary = s.Monthly
	} else {
		mode = model.ModeWeek
	}
	pct := PercentFromFraction(summary.FocusTimeMinutes, summary.TotalUsageMinutes)
	return StudyView{
		Mode:              mode,
		TotalLabel:        FormatMinutes(summary.TotalUsageMinutes),
		FocusLabel:        FormatMinutes(summary.FocusTimeMinutes),
		FocusPercent:      pct,
		FocusPercentLabel: PercentLabel(pct),
		Days:              BuildDays(s.Days),
	}
}

// BuildDays formats each day independently; order follows the input.
func BuildDays(days []model.StudyDaySample) []DayView {
	out := make([]DayView, len(days))
	var g errgroup.Group
	g.SetLimit(dayLimit)
	for i, d := range days {
		i, d := i, d
		g.Go(func() error {
			out[i] = buildDay(d)
			return nil
		})
	}
	// Workers never fail; Wait is only a barrier.
	_ = g.Wait()
	return out
}

func buildDay(d model.StudyDaySample) DayView {
	date := FormatMonthDay(d.Date)
	if date == "" {
		date = missingDate
	}
	return DayView{
		DateLabel:    date,
		Weekday:      d.Weekday,
		ShortWeekday: ShortWeekday(d.Weekday),
		UsageLabel:   FormatMinutes(d.UsageMinutes),
		FocusLabel:   FormatMinutes(d.FocusMinutes),
		UsageHours:   nonNegative(d.UsageMinutes) / minutesPerHour,
		FocusHours:   nonNegative(d.FocusMinutes) / minutesPerHour,
	}
}

// BuildFocusView formats the focus snapshot.
func BuildFocusView(f model.FocusSnapshot) FocusView {
	var best model.BestRecord
	if f.BestRecord != nil {
		best = *f.BestRecord
	}
	return FocusView{
		AverageLabel:  FormatMinutes(f.AverageFocusMinutes),
		BestLabel:     FormatMinutes(best.Minutes),
		BestDateLabel: FormatMonthDay(best.Date),
		Trend:         ClassifyTrend(f.WeeklyChange.Trend),
		Analysis:      f.Message.Analysis,
		Coaching:      f.Message.Coaching,
	}
}

// BuildPatternView formats the focus pattern.
func BuildPatternView(p model.FocusPattern) PatternView {
	view := PatternView{
		BestDay:      noData,
		BestHour:     noData,
		DailyAverage: FormatMinutes(p.AvgDailyFocusMinutes),
		Streak:       fmt.Sprintf("%d%s", max(0, p.LongestStreakDays), streakUnit),
	}
	if p.TopFocusDay != nil {
		if p.TopFocusDay.Day != "" {
			view.BestDay = p.TopFocusDay.Day
		}
		view.FocusScore = FocusScoreLabel(p.TopFocusDay.FocusRatio)
	}
	if p.TopFocusHour != nil {
		view.BestHour = BestHourLabel(p.TopFocusHour.Hour)
		view.GoldenWindow = GoldenWindow(p.TopFocusHour.Hour)
	}
	return view
}

// BuildSeatView ranks seats and builds preference bars.
func BuildSeatView(s model.SeatStats) SeatView {
	board := RankSeats(s.FrequentSeats)
	board.Message = SeatMessage(board, s.Message)
	return SeatView{
		Board:       board,
		Preferences: PreferenceBars(s.Preferences),
	}
}
