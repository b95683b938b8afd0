package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/verte-zerg/studydash/internal/analytics"
	"github.com/verte-zerg/studydash/internal/client"
	"github.com/verte-zerg/studydash/internal/model"
	"github.com/verte-zerg/studydash/internal/store"
)

type fakeService struct {
	dashboard model.Dashboard
	err       error
	pingErr   error
	modes     []string
	selected  []int64
	selectErr error
}

func (f *fakeService) Dashboard(context.Context) (model.Dashboard, error) {
	return f.dashboard, f.err
}

func (f *fakeService) Report(_ context.Context, mode string) (analytics.Report, error) {
	f.modes = append(f.modes, mode)
	if f.err != nil {
		return analytics.Report{}, f.err
	}
	view, progress := analytics.BuildDashboard(f.dashboard, analytics.DashboardOptions{Mode: mode})
	return analytics.Report{Dashboard: f.dashboard, View: view, Progress: progress}, nil
}

func (f *fakeService) SelectChallenge(_ context.Context, d model.Dashboard, id int64) (model.ChallengeSelection, error) {
	if f.selectErr != nil {
		return model.ChallengeSelection{}, f.selectErr
	}
	if err := analytics.NewChallengeSelection(d.Candidates).Choose(id); err != nil {
		return model.ChallengeSelection{}, err
	}
	f.selected = append(f.selected, id)
	at := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	return model.ChallengeSelection{MemberID: d.MemberID, ChallengeID: id, RequestID: "req-1", SelectedAt: at, SubmittedAt: &at}, nil
}

func (f *fakeService) Ping(context.Context) error {
	return f.pingErr
}

func sampleDashboard() model.Dashboard {
	return model.Dashboard{
		MemberID: 4,
		Study: model.StudyStats{
			Weekly:  model.StudyPeriodSummary{TotalUsageMinutes: 125, FocusTimeMinutes: 40},
			Monthly: model.StudyPeriodSummary{TotalUsageMinutes: 600, FocusTimeMinutes: 300},
		},
		Focus:      model.FocusSnapshot{WeeklyChange: model.WeeklyChange{Trend: model.TrendIncrease}},
		Candidates: []model.Challenge{{ID: 7, Title: "출석 20일", Kind: model.MetricCount, TargetValue: 20}},
	}
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDashboardEndpoint(t *testing.T) {
	svc := &fakeService{dashboard: sampleDashboard()}
	srv := New(svc, nil, nil)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var view analytics.DashboardView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "2시간 5분", view.Study.TotalLabel)
	assert.Equal(t, "40분", view.Study.FocusLabel)
	assert.Equal(t, "32%", view.Study.FocusPercentLabel)
	assert.Equal(t, []string{model.ModeWeek}, svc.modes)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	challenge := raw["challenge"].(map[string]any)
	assert.Equal(t, "none", challenge["state"])
	focus := raw["focus"].(map[string]any)
	assert.Equal(t, "improving", focus["trend"].(map[string]any)["kind"])
}

func TestDashboardMonthMode(t *testing.T) {
	svc := &fakeService{dashboard: sampleDashboard()}
	rec := do(t, New(svc, nil, nil).Handler(), http.MethodGet, "/api/dashboard?mode=month", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view analytics.DashboardView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "10시간 0분", view.Study.TotalLabel)
	assert.Equal(t, "50%", view.Study.FocusPercentLabel)
}

func TestDashboardRejectsBadMode(t *testing.T) {
	rec := do(t, New(&fakeService{}, nil, nil).Handler(), http.MethodGet, "/api/dashboard?mode=year", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardErrorStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unauthorized", client.ErrUnauthorized, http.StatusUnauthorized},
		{"not cached", store.ErrNotCached, http.StatusNotFound},
		{"upstream", &client.StatusError{Path: "/x", Status: 500}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, New(&fakeService{err: tc.err}, nil, nil).Handler(), http.MethodGet, "/api/dashboard", "")
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestSelectChallengeEndpoint(t *testing.T) {
	svc := &fakeService{dashboard: sampleDashboard()}
	h := New(svc, nil, nil).Handler()

	rec := do(t, h, http.MethodPost, "/api/challenge/select", `{"challenge_id":7}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp selectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.ChallengeID)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.NotNil(t, resp.SubmittedAt)
	assert.Equal(t, []int64{7}, svc.selected)

	rec = do(t, h, http.MethodPost, "/api/challenge/select", `{"challenge_id":99}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/challenge/select", `{"todo":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/challenge/select", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectChallengeConflictWhenSelected(t *testing.T) {
	d := sampleDashboard()
	d.Challenge = &model.Challenge{ID: 1, Title: "진행중"}
	svc := &fakeService{dashboard: d}
	rec := do(t, New(svc, nil, nil).Handler(), http.MethodPost, "/api/challenge/select", `{"challenge_id":7}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, svc.selected)
}

func TestSelectChallengeMethodNotAllowed(t *testing.T) {
	rec := do(t, New(&fakeService{}, nil, nil).Handler(), http.MethodGet, "/api/challenge/select", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := do(t, New(&fakeService{}, nil, nil).Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, New(&fakeService{pingErr: errors.New("down")}, nil, nil).Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsRecorded(t *testing.T) {
	metrics := NewMetrics()
	h := New(&fakeService{dashboard: sampleDashboard()}, nil, metrics).Handler()
	do(t, h, http.MethodGet, "/api/dashboard", "")
	do(t, h, http.MethodGet, "/api/dashboard", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `studydash_http_requests_total{method="GET",route="/api/dashboard",status="200"} 2`)
	assert.Contains(t, body, `studydash_challenge_evaluations_total{state="none"} 2`)
}

func TestRateLimit(t *testing.T) {
	srv := New(&fakeService{dashboard: sampleDashboard()}, nil, nil)
	srv.limiter = rate.NewLimiter(0, 1)
	h := srv.Handler()
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/dashboard", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/api/dashboard", "").Code)
}
