package analytics

import (
	"fmt"
	"math"
)

// PercentFromRatio converts a [0,1] ratio into a rounded whole percentage.
func PercentFromRatio(ratio float64) int {
	return roundPercent(ratio * 100)
}

// PercentFromFraction returns round(100*num/den), or 0 when den is zero.
// Values above 100 are kept; focus can exceed usage upstream.
func PercentFromFraction(num, den float64) int {
	if den == 0 {
		return 0
	}
	return roundPercent(100 * num / den)
}

// PercentLabel renders a percentage as "N%".
func PercentLabel(p int) string {
	return fmt.Sprintf("%d%%", p)
}

// FocusScoreLabel renders a focus ratio as a score label. A zero ratio renders nothing.
func FocusScoreLabel(ratio float64) string {
	if ratio == 0 {
		return ""
	}
	return fmt.Sprintf("집중도 %d점", PercentFromRatio(ratio))
}

func roundPercent(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return int(math.Round(v))
}
