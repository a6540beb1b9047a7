package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateSession opens a new active session for userID on situationID.
func (s *Store) CreateSession(ctx context.Context, userID string, situationID int64) (RoleplaySession, error) {
	const q = `
		INSERT INTO roleplay_sessions (id, user_id, situation_id, status)
		VALUES ($1, $2, $3, 'active')
		RETURNING id, user_id, situation_id, status, started_at, ended_at, session_duration`

	rows, err := s.pool.Query(ctx, q, uuid.NewString(), userID, situationID)
	if err != nil {
		return RoleplaySession{}, fmt.Errorf("store: create session: %w", err)
	}

	session, err := pgx.CollectOneRow(rows, scanSession)
	if err != nil {
		return RoleplaySession{}, fmt.Errorf("store: create session: %w", err)
	}
	return session, nil
}

// GetSession returns the session with the given id.
func (s *Store) GetSession(ctx context.Context, id string) (RoleplaySession, error) {
	const q = `
		SELECT id, user_id, situation_id, status, started_at, ended_at, session_duration
		FROM   roleplay_sessions
		WHERE  id = $1`

	rows, err := s.pool.Query(ctx, q, id)
	if err != nil {
		return RoleplaySession{}, fmt.Errorf("store: get session: %w", err)
	}

	session, err := pgx.CollectOneRow(rows, scanSession)
	if errors.Is(err, pgx.ErrNoRows) {
		return RoleplaySession{}, fmt.Errorf("store: session %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return RoleplaySession{}, fmt.Errorf("store: get session: %w", err)
	}
	return session, nil
}

// EndSession marks the session completed, stamps the end time, and records
// the wall-clock duration in seconds. The duration is clamped to zero to
// guard against clock skew between started_at and now(). Ending an already
// completed session is a no-op that returns the stored row.
func (s *Store) EndSession(ctx context.Context, id string) (RoleplaySession, error) {
	const q = `
		UPDATE roleplay_sessions
		SET    status = 'completed',
		       ended_at = now(),
		       session_duration = GREATEST(0, EXTRACT(EPOCH FROM (now() - started_at))::int)
		WHERE  id = $1 AND status = 'active'
		RETURNING id, user_id, situation_id, status, started_at, ended_at, session_duration`

	rows, err := s.pool.Query(ctx, q, id)
	if err != nil {
		return RoleplaySession{}, fmt.Errorf("store: end session: %w", err)
	}

	session, err := pgx.CollectOneRow(rows, scanSession)
	if errors.Is(err, pgx.ErrNoRows) {
		// Not active: either already completed or missing.
		return s.GetSession(ctx, id)
	}
	if err != nil {
		return RoleplaySession{}, fmt.Errorf("store: end session: %w", err)
	}
	return session, nil
}

func scanSession(row pgx.CollectableRow) (RoleplaySession, error) {
	var sess RoleplaySession
	err := row.Scan(
		&sess.ID,
		&sess.UserID,
		&sess.SituationID,
		&sess.Status,
		&sess.StartedAt,
		&sess.EndedAt,
		&sess.DurationSeconds,
	)
	return sess, err
}
