package analytics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestBar(t *testing.T) {
	if got := Bar(50, 10); got != strings.Repeat(barFull, 5)+strings.Repeat(barEmpty, 5) {
		t.Fatalf("unexpected half bar: %q", got)
	}
	if got := Bar(150, 4); got != strings.Repeat(barFull, 4) {
		t.Fatalf("expected full bar, got %q", got)
	}
	if got := Bar(-10, 3); got != strings.Repeat(barEmpty, 3) {
		t.Fatalf("expected empty bar, got %q", got)
	}
	if Bar(50, 0) != "" {
		t.Fatalf("expected empty string for zero width")
	}
}

func TestSparkline(t *testing.T) {
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
	if got := Sparkline([]float64{2, 2, 2}); len(got) != 3 || got[0] != got[2] {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
	got := Sparkline([]float64{0, 10})
	if got[0] != sparkChars[0] || got[1] != sparkChars[len(sparkChars)-1] {
		t.Fatalf("unexpected sparkline: %q", got)
	}
}

func TestRenderDayBarsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderDayBars(&buf, nil, 80, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No daily samples.\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRenderDayBars(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	days := []DayView{
		{DateLabel: "05/19", ShortWeekday: "월", UsageLabel: "2시간 0분", FocusLabel: "1시간 0분", UsageHours: 2, FocusHours: 1},
		{DateLabel: "05/20", ShortWeekday: "화", UsageLabel: "1시간 0분", FocusLabel: "0분", UsageHours: 1},
	}
	var buf bytes.Buffer
	if err := RenderDayBars(&buf, days, 80, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 2 rows and a legend, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "05/19 월") || !strings.Contains(lines[0], "2시간 0분 / 1시간 0분") {
		t.Fatalf("unexpected first row: %q", lines[0])
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("did not expect color codes for a buffer")
	}
	if !strings.HasPrefix(lines[2], "Legend:") {
		t.Fatalf("expected legend, got %q", lines[2])
	}
}

func TestFormatTableAlignsWideRunes(t *testing.T) {
	lines := formatTable(
		[]string{"Seat", "Usage"},
		[][]string{{"창가석", "2시간 5분"}, {"A", "40분"}},
		map[int]bool{1: true},
	)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	want := runewidth.StringWidth(lines[1])
	if got := runewidth.StringWidth(lines[2]); got != want {
		t.Fatalf("rows differ in cell width: %d vs %d\n%s\n%s", got, want, lines[1], lines[2])
	}
	if !strings.HasSuffix(lines[2], "40분") {
		t.Fatalf("expected right aligned usage, got %q", lines[2])
	}
	if formatTable(nil, nil, nil) != nil {
		t.Fatalf("expected nil for an empty table")
	}
}
