package analytics

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	sparkChars          = " .:-=+*#%@"
	barFull             = "█"
	barEmpty            = "░"
	minBarWidth         = 10
	barLabelWidth       = 12
	terminalWidthBackup = 80
	colorReset          = "\x1b[0m"
	colorUsage          = "\x1b[34m"
	colorFocus          = "\x1b[35m"
)

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Bar renders a horizontal bar of the given cell width filled to percent.
func Bar(percent, width int) string {
	if width <= 0 {
		return ""
	}
	filled := ClampPercent(percent) * width / 100
	return strings.Repeat(barFull, filled) + strings.Repeat(barEmpty, width-filled)
}

// RenderDayBars prints usage and focus bars for each day, scaled to the busiest day.
func RenderDayBars(w io.Writer, days []DayView, totalWidth int, forceColor bool) error {
	if len(days) == 0 {
		_, err := fmt.Fprintln(w, "No daily samples.")
		return err
	}
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}
	width := max(minBarWidth, (totalWidth-barLabelWidth)/2-barLabelWidth/2)
	peak := 0.0
	for _, d := range days {
		peak = math.Max(peak, math.Max(d.UsageHours, d.FocusHours))
	}
	useColor := shouldUseColor(w, forceColor)
	for _, d := range days {
		label := fmt.Sprintf("%s %s", d.DateLabel, d.ShortWeekday)
		usage := colorize(Bar(PercentFromFraction(d.UsageHours, peak), width), colorUsage, useColor)
		focus := colorize(Bar(PercentFromFraction(d.FocusHours, peak), width), colorFocus, useColor)
		if _, err := fmt.Fprintf(w, "%s %s %s  %s / %s\n", padCell(label, barLabelWidth, false), usage, focus, d.UsageLabel, d.FocusLabel); err != nil {
			return err
		}
	}
	legend := fmt.Sprintf("Legend: %s usage  %s focus",
		colorize(barFull, colorUsage, useColor),
		colorize(barFull, colorFocus, useColor))
	_, err := fmt.Fprintln(w, legend)
	return err
}

func colorize(s, code string, useColor bool) string {
	if !useColor {
		return s
	}
	return code + s + colorReset
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
