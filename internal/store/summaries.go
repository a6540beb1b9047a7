package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertSummary persists the feedback report for a session. A second insert
// for the same session replaces the stored report so a retried end-of-session
// analysis never fails on the unique constraint.
func (s *Store) InsertSummary(ctx context.Context, summary SessionSummary) (SessionSummary, error) {
	const q = `
		INSERT INTO session_summaries
		    (id, session_id, performance_score, feedback_text, strengths, improvement_areas, key_insights)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) DO UPDATE
		SET performance_score = EXCLUDED.performance_score,
		    feedback_text     = EXCLUDED.feedback_text,
		    strengths         = EXCLUDED.strengths,
		    improvement_areas = EXCLUDED.improvement_areas,
		    key_insights      = EXCLUDED.key_insights
		RETURNING id, session_id, performance_score, feedback_text, strengths, improvement_areas, key_insights, created_at`

	rows, err := s.pool.Query(ctx, q,
		uuid.NewString(),
		summary.SessionID,
		summary.Score,
		summary.Overview,
		summary.Strengths,
		summary.Improvements,
		summary.Insights,
	)
	if err != nil {
		return SessionSummary{}, fmt.Errorf("store: insert summary: %w", err)
	}

	inserted, err := pgx.CollectOneRow(rows, scanSummary)
	if err != nil {
		return SessionSummary{}, fmt.Errorf("store: insert summary: %w", err)
	}
	return inserted, nil
}

// GetSummary returns the feedback report stored for a session.
func (s *Store) GetSummary(ctx context.Context, sessionID string) (SessionSummary, error) {
	const q = `
		SELECT id, session_id, performance_score, feedback_text, strengths, improvement_areas, key_insights, created_at
		FROM   session_summaries
		WHERE  session_id = $1`

	rows, err := s.pool.Query(ctx, q, sessionID)
	if err != nil {
		return SessionSummary{}, fmt.Errorf("store: get summary: %w", err)
	}

	summary, err := pgx.CollectOneRow(rows, scanSummary)
	if errors.Is(err, pgx.ErrNoRows) {
		return SessionSummary{}, fmt.Errorf("store: summary for session %q: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return SessionSummary{}, fmt.Errorf("store: get summary: %w", err)
	}
	return summary, nil
}

func scanSummary(row pgx.CollectableRow) (SessionSummary, error) {
	var sum SessionSummary
	err := row.Scan(
		&sum.ID,
		&sum.SessionID,
		&sum.Score,
		&sum.Overview,
		&sum.Strengths,
		&sum.Improvements,
		&sum.Insights,
		&sum.CreatedAt,
	)
	return sum, err
}
