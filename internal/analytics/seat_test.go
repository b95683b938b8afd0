package analytics

import (
	"testing"

	"github.com/verte-zerg/studydash/internal/model"
)

func TestColorForIsDistinctPerKnownType(t *testing.T) {
	known := []model.SeatType{
		model.SeatWindow, model.SeatCorner, model.SeatIsolated,
		model.SeatAisle, model.SeatCenter, model.SeatBeverage,
	}
	seen := map[ColorToken]model.SeatType{}
	for _, st := range known {
		c := ColorFor(st)
		if c == ColorSeatDefault {
			t.Fatalf("%s mapped to the default color", st)
		}
		if prev, ok := seen[c]; ok {
			t.Fatalf("%s and %s share color %s", st, prev, c)
		}
		seen[c] = st
	}
	if ColorFor("") != ColorFor(model.SeatGeneral) || ColorFor("vip") != ColorSeatDefault {
		t.Fatalf("unknown seat types must use the default color")
	}
}

func TestRankSeats(t *testing.T) {
	board := RankSeats([]model.SeatUsageRecord{
		{SeatID: 12, SeatType: model.SeatWindow, UsedMinutes: 125},
		{SeatID: 3, SeatType: "vip", UsedMinutes: 30},
	})
	if board.Insufficient || len(board.Entries) != 2 {
		t.Fatalf("unexpected board: %+v", board)
	}
	first := board.Entries[0]
	if first.Rank != 1 || first.SeatLabel != "12번 좌석" || first.UsageLabel != "2시간 5분" || first.Color != ColorSeatWindow {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if board.Entries[1].Rank != 2 || board.Entries[1].Color != ColorSeatDefault {
		t.Fatalf("unexpected second entry: %+v", board.Entries[1])
	}
}

func TestRankSeatsEmpty(t *testing.T) {
	board := RankSeats(nil)
	if !board.Insufficient || board.Title == "" || len(board.Entries) != 0 {
		t.Fatalf("expected insufficient board, got %+v", board)
	}
	msg := SeatMessage(board, nil)
	if msg.Analysis == "" || msg.Coaching == "" {
		t.Fatalf("expected default guidance, got %+v", msg)
	}
	custom := SeatMessage(board, &model.Message{Analysis: "a"})
	if custom.Analysis != "a" || custom.Coaching == "" {
		t.Fatalf("expected backend analysis with default coaching, got %+v", custom)
	}
}

func TestSeatMessageKeepsBackendText(t *testing.T) {
	board := RankSeats([]model.SeatUsageRecord{{SeatID: 1}})
	if msg := SeatMessage(board, nil); msg.Analysis != "" || msg.Coaching != "" {
		t.Fatalf("expected empty message for a ranked board, got %+v", msg)
	}
}

func TestPreferenceBars(t *testing.T) {
	bars := PreferenceBars([]model.SeatPreference{
		{SeatType: model.SeatCorner, Ratio: 0.62},
		{SeatType: model.SeatCenter, Ratio: 0.38},
	})
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Percent != 62 || bars[0].Label != "62%" || bars[0].Color != ColorSeatCorner {
		t.Fatalf("unexpected first bar: %+v", bars[0])
	}
	if PercentForPreference(model.SeatPreference{Ratio: 1.2}) != 120 {
		t.Fatalf("expected percent above 100 to be kept")
	}
}
