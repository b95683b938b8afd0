package analytics

import "github.com/verte-zerg/studydash/internal/model"

// TrendKind is the semantic category of a focus trend.
type TrendKind int

// Trend categories.
const (
	TrendNeutral TrendKind = iota
	TrendImproving
	TrendDeclining
)

// ColorToken is a symbolic color; the presentation layer maps it to real styling.
type ColorToken string

// Color tokens shared by trend categories and seat types.
const (
	ColorPositiveSubtle ColorToken = "positive.subtle"
	ColorPositiveBorder ColorToken = "positive.border"
	ColorPositiveText   ColorToken = "positive.text"
	ColorNegativeSubtle ColorToken = "negative.subtle"
	ColorNegativeBorder ColorToken = "negative.border"
	ColorNegativeText   ColorToken = "negative.text"
	ColorNeutralSubtle  ColorToken = "neutral.subtle"
	ColorNeutralBorder  ColorToken = "neutral.border"
	ColorNeutralText    ColorToken = "neutral.text"
)

// VisualCategory is the fixed styling triple for a trend.
type VisualCategory struct {
	Kind       TrendKind  `json:"kind"`
	Background ColorToken `json:"background"`
	Border     ColorToken `json:"border"`
	Foreground ColorToken `json:"foreground"`
}

// ClassifyTrend maps a trend signal to its visual category. Unknown signals are neutral.
func ClassifyTrend(trend model.TrendSignal) VisualCategory {
	switch trend {
	case model.TrendIncrease:
		return VisualCategory{
			Kind:       TrendImproving,
			Background: ColorPositiveSubtle,
			Border:     ColorPositiveBorder,
			Foreground: ColorPositiveText,
		}
	case model.TrendDecrease:
		return VisualCategory{
			Kind:       TrendDeclining,
			Background: ColorNegativeSubtle,
			Border:     ColorNegativeBorder,
			Foreground: ColorNegativeText,
		}
	default:
		return VisualCategory{
			Kind:       TrendNeutral,
			Background: ColorNeutralSubtle,
			Border:     ColorNeutralBorder,
			Foreground: ColorNeutralText,
		}
	}
}

func (k TrendKind) String() string {
	switch k {
	case TrendImproving:
		return "improving"
	case TrendDeclining:
		return "declining"
	default:
		return "neutral"
	}
}

// MarshalText encodes the kind by name.
func (k TrendKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
