package analytics

import (
	"testing"

	"github.com/verte-zerg/studydash/internal/model"
)

func sampleDashboard() model.Dashboard {
	return model.Dashboard{
		MemberID: 5,
		Study: model.StudyStats{
			Weekly:  model.StudyPeriodSummary{TotalUsageMinutes: 125, FocusTimeMinutes: 40},
			Monthly: model.StudyPeriodSummary{TotalUsageMinutes: 600, FocusTimeMinutes: 300},
			Days: []model.StudyDaySample{
				{Date: "2025-05-19", Weekday: "월요일", UsageMinutes: 60, FocusMinutes: 30},
				{Date: "2025-05-20", Weekday: "화요일", UsageMinutes: 90, FocusMinutes: 45},
				{Date: "bad", Weekday: "수요일", UsageMinutes: -10},
			},
		},
		Focus: model.FocusSnapshot{
			AverageFocusMinutes: 50,
			BestRecord:          &model.BestRecord{Minutes: 90, Date: "2025-05-18"},
			WeeklyChange:        model.WeeklyChange{Trend: model.TrendIncrease},
			Message:             model.Message{Analysis: "a", Coaching: "c"},
		},
		Pattern: model.FocusPattern{
			TopFocusDay:          &model.FocusDay{Day: "화요일", FocusRatio: 0.8},
			TopFocusHour:         &model.FocusHour{Hour: intPtr(0)},
			AvgDailyFocusMinutes: 45,
			LongestStreakDays:    3,
		},
	}
}

func TestBuildStudyViewWeek(t *testing.T) {
	view := BuildStudyView(sampleDashboard().Study, "")
	if view.Mode != model.ModeWeek {
		t.Fatalf("expected week mode, got %q", view.Mode)
	}
	if view.TotalLabel != "2시간 5분" || view.FocusLabel != "40분" || view.FocusPercentLabel != "32%" {
		t.Fatalf("unexpected labels: %+v", view)
	}
}

func TestBuildStudyViewMonth(t *testing.T) {
	view := BuildStudyView(sampleDashboard().Study, model.ModeMonth)
	if view.TotalLabel != "10시간 0분" || view.FocusPercent != 50 {
		t.Fatalf("unexpected month view: %+v", view)
	}
}

func TestBuildDaysKeepsOrder(t *testing.T) {
	days := BuildDays(sampleDashboard().Study.Days)
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	if days[0].DateLabel != "05/19" || days[0].ShortWeekday != "월" || days[0].UsageLabel != "1시간 0분" || days[0].UsageHours != 1 {
		t.Fatalf("unexpected first day: %+v", days[0])
	}
	if days[1].DateLabel != "05/20" || days[1].FocusLabel != "45분" {
		t.Fatalf("unexpected second day: %+v", days[1])
	}
	if days[2].DateLabel != missingDate || days[2].UsageLabel != "0분" || days[2].UsageHours != 0 {
		t.Fatalf("unexpected malformed day: %+v", days[2])
	}
}

func TestBuildFocusView(t *testing.T) {
	view := BuildFocusView(sampleDashboard().Focus)
	if view.AverageLabel != "50분" || view.BestLabel != "1시간 30분" || view.BestDateLabel != "05/18" {
		t.Fatalf("unexpected focus view: %+v", view)
	}
	if view.Trend.Kind != TrendImproving || view.Analysis != "a" || view.Coaching != "c" {
		t.Fatalf("unexpected trend or messages: %+v", view)
	}
	empty := BuildFocusView(model.FocusSnapshot{})
	if empty.BestLabel != "0분" || empty.BestDateLabel != "" || empty.Trend.Kind != TrendNeutral {
		t.Fatalf("unexpected empty focus view: %+v", empty)
	}
}

func TestBuildPatternView(t *testing.T) {
	view := BuildPatternView(sampleDashboard().Pattern)
	if view.BestDay != "화요일" || view.FocusScore != "집중도 80점" {
		t.Fatalf("unexpected best day: %+v", view)
	}
	if view.BestHour != "0시" || view.GoldenWindow != WindowDawn {
		t.Fatalf("hour 0 must be a real hour: %+v", view)
	}
	if view.DailyAverage != "45분" || view.Streak != "3일" {
		t.Fatalf("unexpected averages: %+v", view)
	}

	empty := BuildPatternView(model.FocusPattern{LongestStreakDays: -1})
	if empty.BestDay != noData || empty.BestHour != noData || empty.GoldenWindow != "" || empty.Streak != "0일" {
		t.Fatalf("unexpected empty pattern view: %+v", empty)
	}
}

func TestBuildDashboard(t *testing.T) {
	d := sampleDashboard()
	d.Challenge = &model.Challenge{ID: 4, Title: "30시간", Kind: model.MetricTime, TargetValue: 1800, CurrentValue: 720}
	view, progress := BuildDashboard(d, DashboardOptions{Mode: model.ModeWeek})
	if view.MemberID != 5 || view.Challenge.Percent != 40 || view.Challenge.State != StateInProgress {
		t.Fatalf("unexpected dashboard: %+v", view.Challenge)
	}
	if progress.Achieved() {
		t.Fatalf("did not expect latch")
	}
	if !view.Seats.Board.Insufficient || view.Seats.Board.Message.Analysis == "" {
		t.Fatalf("expected insufficient seat board: %+v", view.Seats.Board)
	}

	_, progress = BuildDashboard(d, DashboardOptions{Latched: true})
	if !progress.Achieved() {
		t.Fatalf("expected persisted latch to carry through")
	}
}
