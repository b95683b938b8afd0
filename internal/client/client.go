// Package client retrieves analytics payloads from the study-cafe backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/verte-zerg/studydash/internal/model"
)

const (
	sessionCookie    = "access_token"
	requestIDHeader  = "X-Request-ID"
	defaultTimeout   = 15 * time.Second
	maxErrorBodySize = 4 << 10
)

// Backend endpoints.
const (
	pathMember     = "/api/web/mypage"
	pathCandidates = "/api/web/mypage/todo/selected"
	pathSelect     = "/api/web/mypage/todo/select"
	pathTimes      = "/api/statics/times"
	pathAnalysis   = "/api/statics/seat/analysis"
	pathPattern    = "/api/statics/seat/pattern"
	pathSeats      = "/api/statics/seats"
)

// ErrUnauthorized means the session cookie is missing or expired.
var ErrUnauthorized = errors.New("session expired or missing; set STUDYDASH_SESSION")

// StatusError is a non-2xx backend response.
type StatusError struct {
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Path, e.Status, e.Message)
}

// Member is the logged-in member and their current challenge.
type Member struct {
	ID        int64
	Name      string
	Challenge *model.Challenge
}

// Client talks to the backend over HTTP.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	session string
	limiter *rate.Limiter
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithSession sets the access token cookie sent with every request.
func WithSession(token string) Option {
	return func(c *Client) {
		c.session = strings.TrimSpace(token)
	}
}

// WithRate limits requests per second. Zero or negative disables the limit.
func WithRate(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	}
}

// New builds a client for the given backend base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("api base url is empty")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Inf, 0),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type todoWire struct {
	TodoID       int64   `json:"todo_id"`
	Name         string  `json:"todo_name"`
	TargetValue  float64 `json:"target_value"`
	CurrentValue float64 `json:"current_value"`
	Type         string  `json:"todo_type"`
	IsAchieved   bool    `json:"is_achieved"`
}

type memberWire struct {
	User struct {
		MemberID int64  `json:"member_id"`
		Name     string `json:"name"`
	} `json:"user"`
	Todo *todoWire `json:"todo"`
}

type candidateWire struct {
	TodoID  int64   `json:"todo_id"`
	Title   string  `json:"todo_title"`
	Content string  `json:"todo_content"`
	Type    string  `json:"todo_type"`
	Value   float64 `json:"todo_value"`
}

type selectRequest struct {
	TodoID int64 `json:"todo_id"`
}

// Member returns the logged-in member and the challenge selected this month, if any.
func (c *Client) Member(ctx context.Context) (Member, error) {
	var wire memberWire
	if err := c.getJSON(ctx, pathMember, nil, &wire); err != nil {
		return Member{}, err
	}
	m := Member{ID: wire.User.MemberID, Name: wire.User.Name}
	if wire.Todo != nil {
		m.Challenge = &model.Challenge{
			ID:           wire.Todo.TodoID,
			Title:        wire.Todo.Name,
			Kind:         model.MetricKind(wire.Todo.Type),
			TargetValue:  wire.Todo.TargetValue,
			CurrentValue: wire.Todo.CurrentValue,
			IsAchieved:   wire.Todo.IsAchieved,
		}
	}
	return m, nil
}

// StudyStats fetches weekly, monthly and daily study time.
func (c *Client) StudyStats(ctx context.Context, memberID int64) (model.StudyStats, error) {
	var out model.StudyStats
	err := c.getJSON(ctx, pathTimes, memberQuery(memberID), &out)
	return out, err
}

// FocusSnapshot fetches the focus analysis.
func (c *Client) FocusSnapshot(ctx context.Context, memberID int64) (model.FocusSnapshot, error) {
	var out model.FocusSnapshot
	err := c.getJSON(ctx, pathAnalysis, memberQuery(memberID), &out)
	return out, err
}

// FocusPattern fetches the focus pattern.
func (c *Client) FocusPattern(ctx context.Context, memberID int64) (model.FocusPattern, error) {
	var out model.FocusPattern
	err := c.getJSON(ctx, pathPattern, memberQuery(memberID), &out)
	return out, err
}

// SeatStats fetches ranked seats and seat preferences.
func (c *Client) SeatStats(ctx context.Context, memberID int64) (model.SeatStats, error) {
	var out model.SeatStats
	err := c.getJSON(ctx, pathSeats, memberQuery(memberID), &out)
	return out, err
}

// Candidates fetches the challenges selectable this month.
func (c *Client) Candidates(ctx context.Context) ([]model.Challenge, error) {
	var wire []candidateWire
	if err := c.getJSON(ctx, pathCandidates, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]model.Challenge, 0, len(wire))
	for _, w := range wire {
		out = append(out, model.Challenge{
			ID:          w.TodoID,
			Title:       w.Title,
			Description: w.Content,
			Kind:        model.MetricKind(w.Type),
			TargetValue: w.Value,
		})
	}
	return out, nil
}

// SelectChallenge submits the member's challenge choice.
func (c *Client) SelectChallenge(ctx context.Context, challengeID int64, requestID string) error {
	body, err := json.Marshal(selectRequest{TodoID: challengeID})
	if err != nil {
		return fmt.Errorf("failed to encode selection: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, pathSelect, nil, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set(requestIDHeader, requestID)
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer closeBody(resp.Body)
	return checkStatus(pathSelect, resp)
}

// FetchDashboard loads the member, then every analytics payload concurrently.
// Candidates are fetched only when no challenge is selected.
func (c *Client) FetchDashboard(ctx context.Context) (model.Dashboard, error) {
	member, err := c.Member(ctx)
	if err != nil {
		return model.Dashboard{}, fmt.Errorf("failed to load member: %w", err)
	}
	d := model.Dashboard{MemberID: member.ID, Challenge: member.Challenge}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Study, err = c.StudyStats(gctx, member.ID)
		return wrap("study stats", err)
	})
	g.Go(func() error {
		var err error
		d.Focus, err = c.FocusSnapshot(gctx, member.ID)
		return wrap("focus analysis", err)
	})
	g.Go(func() error {
		var err error
		d.Pattern, err = c.FocusPattern(gctx, member.ID)
		return wrap("focus pattern", err)
	})
	g.Go(func() error {
		var err error
		d.Seats, err = c.SeatStats(gctx, member.ID)
		return wrap("seat stats", err)
	})
	if member.Challenge == nil {
		g.Go(func() error {
			var err error
			d.Candidates, err = c.Candidates(gctx)
			return wrap("challenge candidates", err)
		})
	}
	if err := g.Wait(); err != nil {
		return model.Dashboard{}, err
	}
	d.FetchedAt = c.now()
	return d, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer closeBody(resp.Body)
	if err := checkStatus(path, resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: c.session})
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s failed: %w", req.URL.Path, err)
	}
	return resp, nil
}

func checkStatus(path string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	return &StatusError{Path: path, Status: resp.StatusCode, Message: errorMessage(raw)}
}

func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Detail  any    `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if body.Message != "" {
		return body.Message
	}
	if s, ok := body.Detail.(string); ok {
		return s
	}
	return ""
}

func memberQuery(memberID int64) url.Values {
	return url.Values{"member_id": []string{strconv.FormatInt(memberID, 10)}}
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

func closeBody(body io.Closer) {
	if err := body.Close(); err != nil {
		// Best-effort close.
		_ = err
	}
}
