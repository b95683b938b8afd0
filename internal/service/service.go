// Package service ties backend retrieval, the payload cache and view derivation together.
package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/studydash/internal/analytics"
	"github.com/verte-zerg/studydash/internal/model"
	"github.com/verte-zerg/studydash/internal/store"
)

// ErrOffline is returned for operations that need the backend while running offline.
var ErrOffline = errors.New("backend is not available in offline mode")

// Backend is the subset of the retrieval client the service needs.
type Backend interface {
	FetchDashboard(ctx context.Context) (model.Dashboard, error)
	SelectChallenge(ctx context.Context, challengeID int64, requestID string) error
}

// Service loads dashboards online or from the cache and submits challenge selections.
type Service struct {
	store    *store.Store
	backend  Backend
	memberID int64
	now      func() time.Time
	newID    func() string
}

// New builds a service. A nil backend means offline: payloads come from the cache only.
func New(st *store.Store, backend Backend, memberID int64) *Service {
	return &Service{
		store:    st,
		backend:  backend,
		memberID: memberID,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Offline reports whether the service runs without a backend.
func (s *Service) Offline() bool {
	return s.backend == nil
}

// Dashboard returns fresh payloads and caches them, or the cached payloads when offline.
func (s *Service) Dashboard(ctx context.Context) (model.Dashboard, error) {
	if s.backend == nil {
		return s.cached(ctx)
	}
	d, err := s.backend.FetchDashboard(ctx)
	if err != nil {
		return model.Dashboard{}, err
	}
	if err := s.store.SaveDashboard(ctx, d); err != nil {
		return model.Dashboard{}, fmt.Errorf("failed to cache payloads: %w", err)
	}
	s.memberID = d.MemberID
	return d, nil
}

func (s *Service) cached(ctx context.Context) (model.Dashboard, error) {
	memberID := s.memberID
	if memberID == 0 {
		latest, err := s.store.LatestMemberID(ctx)
		if err != nil {
			return model.Dashboard{}, err
		}
		memberID = latest
	}
	return s.store.LoadDashboard(ctx, memberID)
}

// Report loads payloads and derives the view for the given mode.
func (s *Service) Report(ctx context.Context, mode string) (analytics.Report, error) {
	d, err := s.Dashboard(ctx)
	if err != nil {
		return analytics.Report{}, err
	}
	return analytics.EvaluateDashboard(ctx, s.store, d, mode)
}

// SelectChallenge validates the choice against the candidates, records it and submits it upstream.
func (s *Service) SelectChallenge(ctx context.Context, d model.Dashboard, challengeID int64) (model.ChallengeSelection, error) {
	if s.backend == nil {
		return model.ChallengeSelection{}, ErrOffline
	}
	picker := analytics.NewChallengeSelection(d.Candidates)
	if err := picker.Choose(challengeID); err != nil {
		return model.ChallengeSelection{}, err
	}
	id, err := picker.Ready()
	if err != nil {
		return model.ChallengeSelection{}, err
	}

	sel := model.ChallengeSelection{
		MemberID:    d.MemberID,
		ChallengeID: id,
		RequestID:   s.newID(),
		SelectedAt:  s.now(),
	}
	if _, err := s.store.InsertSelection(ctx, sel); err != nil {
		return model.ChallengeSelection{}, fmt.Errorf("failed to record selection: %w", err)
	}
	if err := s.backend.SelectChallenge(ctx, id, sel.RequestID); err != nil {
		return sel, fmt.Errorf("failed to submit selection: %w", err)
	}
	at := s.now()
	if err := s.store.MarkSelectionSubmitted(ctx, sel.RequestID, at); err != nil {
		return sel, fmt.Errorf("failed to mark selection submitted: %w", err)
	}
	sel.SubmittedAt = &at
	// A new session starts; earlier achievements no longer apply.
	if err := s.store.ClearLatches(ctx, d.MemberID); err != nil {
		return sel, fmt.Errorf("failed to reset challenge latch: %w", err)
	}
	return sel, nil
}

// Selections lists the recorded selections of the current member, or of the
// most recently cached member when none is configured.
func (s *Service) Selections(ctx context.Context) ([]model.ChallengeSelection, error) {
	memberID := s.memberID
	if memberID == 0 {
		latest, err := s.store.LatestMemberID(ctx)
		if errors.Is(err, store.ErrNotCached) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		memberID = latest
	}
	return s.store.ListSelections(ctx, memberID)
}

// Ping checks that the cache is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ImportDir caches payload files named after their kind (times.json, seats.json, ...) from dir.
// It returns the kinds that were imported.
func (s *Service) ImportDir(ctx context.Context, memberID int64, dir string) ([]string, error) {
	if memberID <= 0 {
		return nil, fmt.Errorf("member id must be positive")
	}
	fetchedAt := s.now()
	var imported []string
	for _, kind := range store.Kinds() {
		body, err := os.ReadFile(filepath.Join(dir, kind+".json"))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return imported, fmt.Errorf("failed to read %s payload: %w", kind, err)
		}
		if err := s.store.SavePayload(ctx, memberID, kind, fetchedAt, body); err != nil {
			return imported, fmt.Errorf("failed to import %s payload: %w", kind, err)
		}
		imported = append(imported, kind)
	}
	if len(imported) == 0 {
		return nil, fmt.Errorf("no payload files found in %s", dir)
	}
	return imported, nil
}
