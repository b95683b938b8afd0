package analytics

import (
	"errors"
	"testing"

	"github.com/verte-zerg/studydash/internal/model"
)

func TestComputePercent(t *testing.T) {
	cases := []struct {
		name string
		ch   model.Challenge
		want int
	}{
		{"half", model.Challenge{TargetValue: 20, CurrentValue: 10}, 50},
		{"floor", model.Challenge{TargetValue: 3, CurrentValue: 2}, 66},
		{"exact decimal", model.Challenge{TargetValue: 100, CurrentValue: 29}, 29},
		{"over target", model.Challenge{TargetValue: 100, CurrentValue: 150}, 150},
		{"zero target", model.Challenge{TargetValue: 0, CurrentValue: 5}, 500},
		{"negative current", model.Challenge{TargetValue: 10, CurrentValue: -3}, 0},
	}
	for _, tc := range cases {
		if got := ComputePercent(tc.ch); got != tc.want {
			t.Fatalf("%s: ComputePercent = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestClampPercent(t *testing.T) {
	for in, want := range map[int]int{-5: 0, 0: 0, 55: 55, 100: 100, 150: 100} {
		if got := ClampPercent(in); got != want {
			t.Fatalf("ClampPercent(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestMetricLabel(t *testing.T) {
	if got := MetricLabel(model.MetricTime, 125.9); got != "2시간 5분" {
		t.Fatalf("unexpected time label: %q", got)
	}
	if got := MetricLabel(model.MetricCount, 20); got != "20일" {
		t.Fatalf("unexpected count label: %q", got)
	}
	if got := MetricLabel("streak", 3); got != "3일" {
		t.Fatalf("unexpected fallback label: %q", got)
	}
}

func TestEvaluateNoneState(t *testing.T) {
	p, view := NewChallengeProgress(nil, false).Evaluate()
	if p.Selected() || p.State() != StateNone {
		t.Fatalf("expected none state, got %v", p.State())
	}
	if view.State != StateNone || view.Percent != 0 || view.Heading == "" || view.Title == "" {
		t.Fatalf("unexpected none view: %+v", view)
	}
}

func TestEvaluateLatchesAboveHundred(t *testing.T) {
	ch := model.Challenge{ID: 1, Title: "공부", Kind: model.MetricTime, TargetValue: 100, CurrentValue: 150}
	p, view := NewChallengeProgress(&ch, false).Evaluate()
	if view.RawPercent != 150 || view.Percent != 100 {
		t.Fatalf("expected raw 150 and display 100, got %d/%d", view.RawPercent, view.Percent)
	}
	if !p.Achieved() || !view.Achieved || !view.Completed || view.State != StateAchieved {
		t.Fatalf("expected achieved view: %+v", view)
	}
}

func TestEvaluateExactlyHundredDoesNotLatch(t *testing.T) {
	ch := model.Challenge{ID: 1, TargetValue: 20, CurrentValue: 20}
	p, view := NewChallengeProgress(&ch, false).Evaluate()
	if p.Achieved() || view.Achieved {
		t.Fatalf("100%% must not latch")
	}
	if !view.Completed {
		t.Fatalf("100%% should render as completed")
	}
	if view.State != StateInProgress {
		t.Fatalf("expected in progress, got %v", view.State)
	}
}

func TestLatchIsMonotonic(t *testing.T) {
	ch := model.Challenge{ID: 7, TargetValue: 10, CurrentValue: 12}
	p, _ := NewChallengeProgress(&ch, false).Evaluate()
	if !p.Achieved() {
		t.Fatalf("expected latch")
	}

	ch.CurrentValue = 3
	p, view := NewChallengeProgress(&ch, p.Achieved()).Evaluate()
	if !p.Achieved() || !view.Completed || view.Percent != 30 {
		t.Fatalf("latch must survive lower progress: %+v", view)
	}
	p, view = p.Evaluate()
	if !p.Achieved() || view.State != StateAchieved {
		t.Fatalf("re-evaluating must not revert the latch: %+v", view)
	}
}

func TestPersistedLatchAndBackendFlag(t *testing.T) {
	ch := model.Challenge{ID: 2, TargetValue: 10, CurrentValue: 1}
	if p := NewChallengeProgress(&ch, true); !p.Achieved() {
		t.Fatalf("expected persisted latch to apply")
	}
	ch.IsAchieved = true
	_, view := NewChallengeProgress(&ch, false).Evaluate()
	if !view.Achieved || !view.Completed {
		t.Fatalf("expected backend achievement to apply: %+v", view)
	}
}

func TestEvaluateLabels(t *testing.T) {
	ch := model.Challenge{ID: 3, Title: "출석", Description: "20일 출석", Kind: model.MetricCount, TargetValue: 20, CurrentValue: 5}
	_, view := NewChallengeProgress(&ch, false).Evaluate()
	if view.CurrentLabel != "5일" || view.TargetLabel != "20일" || view.Percent != 25 {
		t.Fatalf("unexpected labels: %+v", view)
	}
	if view.ChallengeID != 3 || view.Description != "20일 출석" {
		t.Fatalf("unexpected identity: %+v", view)
	}
}

func TestChallengeSelection(t *testing.T) {
	sel := NewChallengeSelection([]model.Challenge{{ID: 1}, {ID: 2}})
	if _, err := sel.Ready(); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if err := sel.Choose(9); !errors.Is(err, ErrUnknownChallenge) {
		t.Fatalf("expected ErrUnknownChallenge, got %v", err)
	}
	if err := sel.Choose(2); err != nil {
		t.Fatalf("choose: %v", err)
	}
	id, err := sel.Ready()
	if err != nil || id != 2 {
		t.Fatalf("expected ready with 2, got %d %v", id, err)
	}
	if err := sel.Choose(1); err != nil {
		t.Fatalf("choose again: %v", err)
	}
	if c, ok := sel.Chosen(); !ok || c.ID != 1 {
		t.Fatalf("expected re-choice to replace the previous one, got %+v", c)
	}
	empty := NewChallengeSelection(nil)
	if err := empty.Choose(1); !errors.Is(err, ErrUnknownChallenge) {
		t.Fatalf("expected ErrUnknownChallenge on empty list, got %v", err)
	}
}
