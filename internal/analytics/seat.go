package analytics

import (
	"fmt"

	"github.com/verte-zerg/studydash/internal/model"
)

// Seat colors, one per known seat category.
const (
	ColorSeatWindow   ColorToken = "seat.blue"
	ColorSeatCorner   ColorToken = "seat.purple"
	ColorSeatIsolated ColorToken = "seat.pink"
	ColorSeatAisle    ColorToken = "seat.orange"
	ColorSeatCenter   ColorToken = "seat.green"
	ColorSeatBeverage ColorToken = "seat.cyan"
	ColorSeatDefault  ColorToken = "seat.gray"
)

const (
	insufficientTitle    = "이용기록이 부족해요"
	insufficientAnalysis = "아직 사용량이 적어 좌석을 제시해드릴 수 없어요"
	insufficientCoaching = "더 많은 사용을 통해 취향에 맞는 좌석을 추천해드릴께요"
)

// ColorFor returns the color token for a seat type. Unknown types get ColorSeatDefault.
func ColorFor(seatType model.SeatType) ColorToken {
	switch seatType {
	case model.SeatWindow:
		return ColorSeatWindow
	case model.SeatCorner:
		return ColorSeatCorner
	case model.SeatIsolated:
		return ColorSeatIsolated
	case model.SeatAisle:
		return ColorSeatAisle
	case model.SeatCenter:
		return ColorSeatCenter
	case model.SeatBeverage:
		return ColorSeatBeverage
	default:
		return ColorSeatDefault
	}
}

// RankedSeat is one seat card.
type RankedSeat struct {
	Rank       int            `json:"rank"`
	SeatID     int64          `json:"seat_id"`
	SeatLabel  string         `json:"seat_label"`
	SeatType   model.SeatType `json:"seat_type"`
	UsageLabel string         `json:"usage_label"`
	Color      ColorToken     `json:"color"`
}

// SeatBoard is the ranked seat list. Insufficient is set when there is nothing to rank.
type SeatBoard struct {
	Insufficient bool          `json:"insufficient"`
	Title        string        `json:"title"`
	Entries      []RankedSeat  `json:"entries"`
	Message      model.Message `json:"message"`
}

// PreferenceBar is one seat-category bar.
type PreferenceBar struct {
	SeatType model.SeatType `json:"seat_type"`
	Percent  int            `json:"percent"`
	Label    string         `json:"label"`
	Color    ColorToken     `json:"color"`
}

// RankSeats annotates records with 1-based ranks in the order given.
func RankSeats(records []model.SeatUsageRecord) SeatBoard {
	if len(records) == 0 {
		return SeatBoard{Insufficient: true, Title: insufficientTitle}
	}
	entries := make([]RankedSeat, len(records))
	for i, r := range records {
		entries[i] = RankedSeat{
			Rank:       i + 1,
			SeatID:     r.SeatID,
			SeatLabel:  fmt.Sprintf("%d번 좌석", r.SeatID),
			SeatType:   r.SeatType,
			UsageLabel: FormatMinutes(r.UsedMinutes),
			Color:      ColorFor(r.SeatType),
		}
	}
	return SeatBoard{Entries: entries}
}

// PercentForPreference converts a preference ratio to a whole percentage.
func PercentForPreference(p model.SeatPreference) int {
	return PercentFromRatio(p.Ratio)
}

// PreferenceBars builds the bar list for seat preferences, keeping caller order.
func PreferenceBars(prefs []model.SeatPreference) []PreferenceBar {
	bars := make([]PreferenceBar, 0, len(prefs))
	for _, p := range prefs {
		pct := PercentForPreference(p)
		bars = append(bars, PreferenceBar{
			SeatType: p.SeatType,
			Percent:  pct,
			Label:    PercentLabel(pct),
			Color:    ColorFor(p.SeatType),
		})
	}
	return bars
}

// SeatMessage picks the backend message, falling back to the guidance text when the board is empty.
func SeatMessage(board SeatBoard, msg *model.Message) model.Message {
	var out model.Message
	if msg != nil {
		out = *msg
	}
	if board.Insufficient {
		if out.Analysis == "" {
			out.Analysis = insufficientAnalysis
		}
		if out.Coaching == "" {
			out.Coaching = insufficientCoaching
		}
	}
	return out
}
