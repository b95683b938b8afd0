package analytics

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/studydash/internal/model"
)

// Source provides cached payloads and the persisted achievement latch.
type Source interface {
	LoadDashboard(ctx context.Context, memberID int64) (model.Dashboard, error)
	ChallengeLatched(ctx context.Context, memberID int64, sessionKey string) (bool, error)
	LatchChallenge(ctx context.Context, memberID int64, sessionKey string) error
}

// Report contains the payloads and derived view for one render cycle.
type Report struct {
	Dashboard model.Dashboard
	View      DashboardView
	Progress  ChallengeProgress
}

// BuildReport loads payloads from src, derives the view and persists a newly set latch.
func BuildReport(ctx context.Context, src Source, memberID int64, mode string) (Report, error) {
	d, err := src.LoadDashboard(ctx, memberID)
	if err != nil {
		return Report{}, err
	}
	return EvaluateDashboard(ctx, src, d, mode)
}

// EvaluateDashboard derives the view for already loaded payloads.
func EvaluateDashboard(ctx context.Context, src Source, d model.Dashboard, mode string) (Report, error) {
	latched := false
	if d.Challenge != nil {
		var err error
		latched, err = src.ChallengeLatched(ctx, d.MemberID, d.Challenge.SessionKey())
		if err != nil {
			return Report{}, fmt.Errorf("failed to read challenge latch: %w", err)
		}
	}
	view, progress := BuildDashboard(d, DashboardOptions{Mode: mode, Latched: latched})
	if d.Challenge != nil && progress.Achieved() && !latched {
		if err := src.LatchChallenge(ctx, d.MemberID, d.Challenge.SessionKey()); err != nil {
			return Report{}, fmt.Errorf("failed to persist challenge latch: %w", err)
		}
	}
	return Report{Dashboard: d, View: view, Progress: progress}, nil
}

// RenderReport prints the dashboard as plain text.
func RenderReport(w io.Writer, view DashboardView, width int, useColor bool) error {
	if err := renderStudy(w, view.Study, width, useColor); err != nil {
		return err
	}
	if err := renderFocus(w, view.Focus, view.Pattern); err != nil {
		return err
	}
	if err := renderSeats(w, view.Seats); err != nil {
		return err
	}
	return renderChallenge(w, view.Challenge, width)
}

func renderStudy(w io.Writer, s StudyView, width int, useColor bool) error {
	title := "Study Time (week)"
	if s.Mode == model.ModeMonth {
		title = "Study Time (month)"
	}
	lines := formatTable(
		[]string{"Total", "Focus", "Focus %"},
		[][]string{{s.TotalLabel, s.FocusLabel, s.FocusPercentLabel}},
		map[int]bool{2: true},
	)
	if err := writeSection(w, title, lines); err != nil {
		return err
	}
	if err := RenderDayBars(w, s.Days, width, useColor); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func renderFocus(w io.Writer, f FocusView, p PatternView) error {
	best := f.BestLabel
	if f.BestDateLabel != "" {
		best += " (" + f.BestDateLabel + ")"
	}
	bestDay := p.BestDay
	if p.FocusScore != "" {
		bestDay += " · " + p.FocusScore
	}
	bestHour := p.BestHour
	if p.GoldenWindow != "" {
		bestHour += " · " + p.GoldenWindow
	}
	lines := formatTable(nil, [][]string{
		{"Average focus", f.AverageLabel},
		{"Best record", best},
		{"Trend", f.Trend.Kind.String()},
		{"Best day", bestDay},
		{"Best hour", bestHour},
		{"Daily average", p.DailyAverage},
		{"Longest streak", p.Streak},
	}, nil)
	for _, msg := range []string{f.Analysis, f.Coaching} {
		if msg != "" {
			lines = append(lines, msg)
		}
	}
	return writeSection(w, "Focus", lines)
}

func renderSeats(w io.Writer, s SeatView) error {
	if s.Board.Insufficient {
		return writeSection(w, "Seats", []string{
			s.Board.Title,
			s.Board.Message.Analysis,
			s.Board.Message.Coaching,
		})
	}
	rows := make([][]string, 0, len(s.Board.Entries))
	for _, e := range s.Board.Entries {
		rows = append(rows, []string{fmt.Sprintf("#%d", e.Rank), e.SeatLabel, string(e.SeatType), e.UsageLabel})
	}
	lines := formatTable([]string{"Rank", "Seat", "Type", "Usage"}, rows, map[int]bool{3: true})
	if len(s.Preferences) > 0 {
		lines = append(lines, "")
		prefRows := make([][]string, 0, len(s.Preferences))
		for _, p := range s.Preferences {
			prefRows = append(prefRows, []string{string(p.SeatType), Bar(p.Percent, 20), p.Label})
		}
		lines = append(lines, formatTable(nil, prefRows, map[int]bool{2: true})...)
	}
	for _, msg := range []string{s.Board.Message.Analysis, s.Board.Message.Coaching} {
		if msg != "" {
			lines = append(lines, msg)
		}
	}
	return writeSection(w, "Seats", lines)
}

func renderChallenge(w io.Writer, c ChallengeView, width int) error {
	if c.State == StateNone {
		return writeSection(w, "Challenge", []string{c.Heading, c.Title})
	}
	title := c.Title
	if c.Completed {
		title += " [완료]"
	}
	barWidth := max(minBarWidth, min(40, width/2))
	lines := []string{
		title,
		fmt.Sprintf("%s %s", Bar(c.Percent, barWidth), PercentLabel(c.Percent)),
		fmt.Sprintf("누적: %s  목표: %s", c.CurrentLabel, c.TargetLabel),
	}
	return writeSection(w, "Challenge", lines)
}

func writeSection(w io.Writer, title string, lines []string) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", displayWidth(title))); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
