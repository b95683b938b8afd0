// Package server exposes the derived dashboard over HTTP with Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/verte-zerg/studydash/internal/analytics"
	"github.com/verte-zerg/studydash/internal/client"
	"github.com/verte-zerg/studydash/internal/model"
	"github.com/verte-zerg/studydash/internal/service"
	"github.com/verte-zerg/studydash/internal/store"
)

const (
	requestTimeout  = 20 * time.Second
	shutdownTimeout = 10 * time.Second
	maxBodyBytes    = 1 << 16
)

// Service is what the HTTP layer needs from the dashboard service.
type Service interface {
	Dashboard(ctx context.Context) (model.Dashboard, error)
	Report(ctx context.Context, mode string) (analytics.Report, error)
	SelectChallenge(ctx context.Context, d model.Dashboard, challengeID int64) (model.ChallengeSelection, error)
	Ping(ctx context.Context) error
}

// Server serves the dashboard JSON API.
type Server struct {
	svc     Service
	logger  *log.Logger
	metrics *Metrics
	limiter *rate.Limiter
	handler http.Handler
}

// NewLogger returns the server logger.
func NewLogger(w io.Writer) *log.Logger {
	return log.New(w, "[studydash] ", log.LstdFlags|log.LUTC)
}

// New builds the router and middleware chain.
func New(svc Service, logger *log.Logger, metrics *Metrics) *Server {
	if logger == nil {
		logger = NewLogger(io.Discard)
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	s := &Server{
		svc:     svc,
		logger:  logger,
		metrics: metrics,
		limiter: rate.NewLimiter(5, 30),
	}

	r := mux.NewRouter()
	r.Use(metrics.Middleware)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.rateLimit)
	api.HandleFunc("/dashboard", s.dashboard).Methods(http.MethodGet)
	api.HandleFunc("/challenge/select", s.selectChallenge).Methods(http.MethodPost)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	s.handler = handlers.LoggingHandler(logger.Writer(), cors(r))
	return s
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Printf("server stopped")
	return <-errCh
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			respondWithError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.svc.Ping(ctx); err != nil {
		s.logger.Printf("health check failed: %v", err)
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	mode := strings.TrimSpace(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = model.ModeWeek
	}
	if mode != model.ModeWeek && mode != model.ModeMonth {
		respondWithError(w, http.StatusBadRequest, "mode must be week or month")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rep, err := s.svc.Report(ctx, mode)
	if err != nil {
		s.fail(w, "load dashboard", err)
		return
	}
	s.metrics.challengeStates.WithLabelValues(rep.View.Challenge.State.String()).Inc()
	respondWithJSON(w, http.StatusOK, rep.View)
}

type selectRequest struct {
	ChallengeID int64 `json:"challenge_id"`
}

type selectResponse struct {
	ChallengeID int64      `json:"challenge_id"`
	RequestID   string     `json:"request_id"`
	SelectedAt  time.Time  `json:"selected_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

func (s *Server) selectChallenge(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ChallengeID <= 0 {
		respondWithError(w, http.StatusBadRequest, "challenge_id is required")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	d, err := s.svc.Dashboard(ctx)
	if err != nil {
		s.fail(w, "load dashboard", err)
		return
	}
	if d.Challenge != nil {
		s.metrics.selections.WithLabelValues("conflict").Inc()
		respondWithError(w, http.StatusConflict, "a challenge is already selected")
		return
	}
	sel, err := s.svc.SelectChallenge(ctx, d, req.ChallengeID)
	if err != nil {
		s.metrics.selections.WithLabelValues("error").Inc()
		s.fail(w, "select challenge", err)
		return
	}
	s.metrics.selections.WithLabelValues("submitted").Inc()
	respondWithJSON(w, http.StatusCreated, selectResponse{
		ChallengeID: sel.ChallengeID,
		RequestID:   sel.RequestID,
		SelectedAt:  sel.SelectedAt,
		SubmittedAt: sel.SubmittedAt,
	})
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Printf("%s: %v", op, err)
	}
	respondWithError(w, status, err.Error())
}

func statusFor(err error) int {
	var se *client.StatusError
	switch {
	case errors.Is(err, analytics.ErrUnknownChallenge), errors.Is(err, analytics.ErrNoSelection):
		return http.StatusBadRequest
	case errors.Is(err, client.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrNotCached):
		return http.StatusNotFound
	case errors.Is(err, service.ErrOffline):
		return http.StatusConflict
	case errors.As(err, &se):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Best-effort write; the status line is already sent.
		_ = err
	}
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, map[string]string{"error": message})
}
