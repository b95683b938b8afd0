package analytics

import (
	"errors"
	"math"
	"strconv"

	"github.com/verte-zerg/studydash/internal/model"
)

var (
	// ErrNoSelection is returned when a selection is submitted before a challenge was chosen.
	ErrNoSelection = errors.New("no challenge selected")
	// ErrUnknownChallenge is returned when choosing an id outside the candidate list.
	ErrUnknownChallenge = errors.New("unknown challenge")
)

const (
	challengeActiveHeading = "현재 도전중인 도전과제"
	challengePromptHeading = "도전과제를 선택하세요"
	challengeNoneTitle     = "현재 도전중인 도전과제가 없습니다"
	countUnit              = "일"
)

// ProgressState is the lifecycle position of the member's challenge.
type ProgressState int

// Progress states. StateNone means nothing is selected, which is not the same as zero progress.
const (
	StateNone ProgressState = iota
	StateInProgress
	StateAchieved
)

func (s ProgressState) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateAchieved:
		return "achieved"
	default:
		return "none"
	}
}

// MarshalText encodes the state by name.
func (s ProgressState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ChallengeView is the display form of a challenge's progress.
type ChallengeView struct {
	State        ProgressState `json:"state"`
	ChallengeID  int64         `json:"challenge_id"`
	Heading      string        `json:"heading"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	RawPercent   int           `json:"raw_percent"`
	Percent      int           `json:"percent"`
	Achieved     bool          `json:"achieved"`
	Completed    bool          `json:"completed"`
	CurrentLabel string        `json:"current_label"`
	TargetLabel  string        `json:"target_label"`
}

// ChallengeProgress tracks one challenge and its achievement latch.
// It is a value: Evaluate returns the next value and the caller persists Achieved between cycles.
type ChallengeProgress struct {
	challenge *model.Challenge
	achieved  bool
}

// NewChallengeProgress starts a progress session. A nil challenge yields the nothing-selected state.
// latched carries an achievement persisted from an earlier cycle.
func NewChallengeProgress(ch *model.Challenge, latched bool) ChallengeProgress {
	if ch == nil {
		return ChallengeProgress{}
	}
	c := *ch
	return ChallengeProgress{challenge: &c, achieved: c.IsAchieved || latched}
}

// Selected reports whether a challenge is present.
func (p ChallengeProgress) Selected() bool {
	return p.challenge != nil
}

// Achieved reports the latch value.
func (p ChallengeProgress) Achieved() bool {
	return p.achieved
}

// State reports the lifecycle state.
func (p ChallengeProgress) State() ProgressState {
	switch {
	case p.challenge == nil:
		return StateNone
	case p.achieved:
		return StateAchieved
	default:
		return StateInProgress
	}
}

// Evaluate computes the view for the current snapshot and latches achievement when the
// unclamped percent exceeds 100.
func (p ChallengeProgress) Evaluate() (ChallengeProgress, ChallengeView) {
	if p.challenge == nil {
		return p, ChallengeView{
			State:   StateNone,
			Heading: challengePromptHeading,
			Title:   challengeNoneTitle,
		}
	}
	ch := *p.challenge
	raw := ComputePercent(ch)
	next := p
	if raw > 100 && !next.achieved {
		next.achieved = true
	}
	percent := ClampPercent(raw)
	return next, ChallengeView{
		State:        next.State(),
		ChallengeID:  ch.ID,
		Heading:      challengeActiveHeading,
		Title:        ch.Title,
		Description:  ch.Description,
		RawPercent:   raw,
		Percent:      percent,
		Achieved:     next.achieved,
		Completed:    next.achieved || percent >= 100,
		CurrentLabel: MetricLabel(ch.Kind, ch.CurrentValue),
		TargetLabel:  MetricLabel(ch.Kind, ch.TargetValue),
	}
}

// ComputePercent returns floor(100*current/max(1,target)) without clamping the upper bound.
// Non-finite or negative results are 0.
func ComputePercent(ch model.Challenge) int {
	den := math.Max(1, ch.TargetValue)
	raw := math.Floor(ch.CurrentValue * 100 / den)
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw < 0 {
		return 0
	}
	if raw > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(raw)
}

// ClampPercent bounds a percent to [0,100] for progress bars.
func ClampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// MetricLabel formats a challenge value by its metric kind. Time values use the truncating
// formatter; every other kind is a day count.
func MetricLabel(kind model.MetricKind, value float64) string {
	if kind == model.MetricTime {
		return FormatMinutesExact(value)
	}
	return strconv.FormatFloat(nonNegative(value), 'f', -1, 64) + countUnit
}

// ChallengeSelection holds the candidate list and the member's pending choice.
type ChallengeSelection struct {
	candidates []model.Challenge
	chosen     int
}

// NewChallengeSelection builds a selection over the given candidates.
func NewChallengeSelection(candidates []model.Challenge) *ChallengeSelection {
	return &ChallengeSelection{
		candidates: append([]model.Challenge(nil), candidates...),
		chosen:     -1,
	}
}

// Candidates returns the selectable challenges in caller order.
func (s *ChallengeSelection) Candidates() []model.Challenge {
	return s.candidates
}

// Choose marks a candidate as chosen.
func (s *ChallengeSelection) Choose(id int64) error {
	for i, c := range s.candidates {
		if c.ID == id {
			s.chosen = i
			return nil
		}
	}
	return ErrUnknownChallenge
}

// Chosen returns the chosen candidate, if any.
func (s *ChallengeSelection) Chosen() (model.Challenge, bool) {
	if s.chosen < 0 || s.chosen >= len(s.candidates) {
		return model.Challenge{}, false
	}
	return s.candidates[s.chosen], true
}

// Ready returns the chosen challenge id once a choice was made.
func (s *ChallengeSelection) Ready() (int64, error) {
	c, ok := s.Chosen()
	if !ok {
		return 0, ErrNoSelection
	}
	return c.ID, nil
}
