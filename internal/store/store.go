// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/verte-zerg/studydash/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotCached is returned when no payloads were cached for a member.
var ErrNotCached = errors.New("no cached payloads")

// Payload kinds stored in the cache.
const (
	KindTimes      = "times"
	KindAnalysis   = "analysis"
	KindPattern    = "pattern"
	KindSeats      = "seats"
	KindChallenge  = "challenge"
	KindCandidates = "candidates"
)

// Kinds lists every payload kind in load order.
func Kinds() []string {
	return []string{KindTimes, KindAnalysis, KindPattern, KindSeats, KindChallenge, KindCandidates}
}

// Store wraps SQLite access for cached payloads and challenge state.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS payloads (
			member_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			fetched_at TEXT NOT NULL,
			body TEXT NOT NULL,
			PRIMARY KEY (member_id, kind)
		);`,
		`CREATE TABLE IF NOT EXISTS challenge_latches (
			member_id INTEGER NOT NULL,
			session_key TEXT NOT NULL,
			achieved_at TEXT NOT NULL,
			PRIMARY KEY (member_id, session_key)
		);`,
		`CREATE TABLE IF NOT EXISTS challenge_selections (
			id INTEGER PRIMARY KEY,
			member_id INTEGER NOT NULL,
			challenge_id INTEGER NOT NULL,
			request_id TEXT NOT NULL UNIQUE,
			selected_at TEXT NOT NULL,
			submitted_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_payloads_fetched_at ON payloads(fetched_at);`,
		`CREATE INDEX IF NOT EXISTS idx_challenge_selections_member ON challenge_selections(member_id, selected_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveDashboard caches every payload of a dashboard in one transaction.
func (s *Store) SaveDashboard(ctx context.Context, d model.Dashboard) (err error) {
	fetchedAt := d.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	sections := map[string]any{
		KindTimes:      d.Study,
		KindAnalysis:   d.Focus,
		KindPattern:    d.Pattern,
		KindSeats:      d.Seats,
		KindChallenge:  d.Challenge,
		KindCandidates: d.Candidates,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO payloads (member_id, kind, fetched_at, body) VALUES (?, ?, ?, ?)
		 ON CONFLICT(member_id, kind) DO UPDATE SET fetched_at = excluded.fetched_at, body = excluded.body`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for kind, section := range sections {
		body, merr := json.Marshal(section)
		if merr != nil {
			err = fmt.Errorf("failed to encode %s payload: %w", kind, merr)
			return err
		}
		if _, err = stmt.ExecContext(ctx, d.MemberID, kind, fetchedAt.Format(time.RFC3339Nano), string(body)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SavePayload caches one raw payload body.
func (s *Store) SavePayload(ctx context.Context, memberID int64, kind string, fetchedAt time.Time, body []byte) error {
	if !slices.Contains(Kinds(), kind) {
		return fmt.Errorf("unknown payload kind %q", kind)
	}
	if !json.Valid(body) {
		return fmt.Errorf("payload %s is not valid JSON", kind)
	}
	var probe model.Dashboard
	if err := decodeSection(&probe, kind, body); err != nil {
		return fmt.Errorf("payload %s has unexpected shape: %w", kind, err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payloads (member_id, kind, fetched_at, body) VALUES (?, ?, ?, ?)
		 ON CONFLICT(member_id, kind) DO UPDATE SET fetched_at = excluded.fetched_at, body = excluded.body`,
		memberID, kind, fetchedAt.Format(time.RFC3339Nano), string(body))
	return err
}

// LoadDashboard rebuilds a dashboard from cached payloads. Missing sections stay zero.
func (s *Store) LoadDashboard(ctx context.Context, memberID int64) (model.Dashboard, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, fetched_at, body FROM payloads WHERE member_id = ?`, memberID)
	if err != nil {
		return model.Dashboard{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	d := model.Dashboard{MemberID: memberID}
	found := 0
	for rows.Next() {
		var kind, fetchedAt, body string
		if err := rows.Scan(&kind, &fetchedAt, &body); err != nil {
			return model.Dashboard{}, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, fetchedAt)
		if err != nil {
			return model.Dashboard{}, err
		}
		if parsed.After(d.FetchedAt) {
			d.FetchedAt = parsed
		}
		if err := decodeSection(&d, kind, []byte(body)); err != nil {
			return model.Dashboard{}, fmt.Errorf("failed to decode cached %s payload: %w", kind, err)
		}
		found++
	}
	if err := rows.Err(); err != nil {
		return model.Dashboard{}, err
	}
	if found == 0 {
		return model.Dashboard{}, ErrNotCached
	}
	return d, nil
}

func decodeSection(d *model.Dashboard, kind string, body []byte) error {
	switch kind {
	case KindTimes:
		return json.Unmarshal(body, &d.Study)
	case KindAnalysis:
		return json.Unmarshal(body, &d.Focus)
	case KindPattern:
		return json.Unmarshal(body, &d.Pattern)
	case KindSeats:
		return json.Unmarshal(body, &d.Seats)
	case KindChallenge:
		return json.Unmarshal(body, &d.Challenge)
	case KindCandidates:
		return json.Unmarshal(body, &d.Candidates)
	default:
		return nil
	}
}

// LatestMemberID returns the member with the most recently cached payloads.
func (s *Store) LatestMemberID(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT member_id FROM payloads ORDER BY fetched_at DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotCached
	}
	return id, err
}

// ChallengeLatched reports whether a challenge session was already recorded as achieved.
func (s *Store) ChallengeLatched(ctx context.Context, memberID int64, sessionKey string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM challenge_latches WHERE member_id = ? AND session_key = ?`,
		memberID, sessionKey).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LatchChallenge records a challenge session as achieved. Repeated calls keep the first timestamp.
func (s *Store) LatchChallenge(ctx context.Context, memberID int64, sessionKey string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO challenge_latches (member_id, session_key, achieved_at) VALUES (?, ?, ?)
		 ON CONFLICT(member_id, session_key) DO NOTHING`,
		memberID, sessionKey, time.Now().Format(time.RFC3339Nano))
	return err
}

// ClearLatches drops every recorded achievement of a member.
func (s *Store) ClearLatches(ctx context.Context, memberID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM challenge_latches WHERE member_id = ?`, memberID)
	return err
}

// InsertSelection records a challenge choice before it is submitted upstream.
func (s *Store) InsertSelection(ctx context.Context, sel model.ChallengeSelection) (int64, error) {
	selectedAt := sel.SelectedAt
	if selectedAt.IsZero() {
		selectedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO challenge_selections (member_id, challenge_id, request_id, selected_at) VALUES (?, ?, ?, ?)`,
		sel.MemberID, sel.ChallengeID, sel.RequestID, selectedAt.Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// MarkSelectionSubmitted stamps a selection as accepted upstream.
func (s *Store) MarkSelectionSubmitted(ctx context.Context, requestID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE challenge_selections SET submitted_at = ? WHERE request_id = ?`,
		at.Format(time.RFC3339Nano), requestID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("selection %s not found", requestID)
	}
	return nil
}

// ListSelections returns a member's recorded selections, oldest first.
func (s *Store) ListSelections(ctx context.Context, memberID int64) ([]model.ChallengeSelection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT member_id, challenge_id, request_id, selected_at, submitted_at
		 FROM challenge_selections WHERE member_id = ? ORDER BY selected_at ASC, id ASC`, memberID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ChallengeSelection
	for rows.Next() {
		var sel model.ChallengeSelection
		var selectedAt string
		var submittedAt sql.NullString
		if err := rows.Scan(&sel.MemberID, &sel.ChallengeID, &sel.RequestID, &selectedAt, &submittedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, selectedAt)
		if err != nil {
			return nil, err
		}
		sel.SelectedAt = parsed
		if submittedAt.Valid {
			at, err := time.Parse(time.RFC3339Nano, submittedAt.String)
			if err != nil {
				return nil, err
			}
			sel.SubmittedAt = &at
		}
		result = append(result, sel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
