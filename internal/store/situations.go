package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ListSituations returns all active situations ordered by category,
// difficulty, and title.
func (s *Store) ListSituations(ctx context.Context) ([]Situation, error) {
	const q = `
		SELECT id, title, description, persona_script, difficulty_level, category, is_active, created_at
		FROM   situations
		WHERE  is_active
		ORDER  BY category, difficulty_level, title`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: list situations: %w", err)
	}

	situations, err := pgx.CollectRows(rows, scanSituation)
	if err != nil {
		return nil, fmt.Errorf("store: scan situations: %w", err)
	}
	if situations == nil {
		situations = []Situation{}
	}
	return situations, nil
}

// GetSituation returns the situation with the given id, active or not.
func (s *Store) GetSituation(ctx context.Context, id int64) (Situation, error) {
	const q = `
		SELECT id, title, description, persona_script, difficulty_level, category, is_active, created_at
		FROM   situations
		WHERE  id = $1`

	rows, err := s.pool.Query(ctx, q, id)
	if err != nil {
		return Situation{}, fmt.Errorf("store: get situation: %w", err)
	}

	situation, err := pgx.CollectOneRow(rows, scanSituation)
	if errors.Is(err, pgx.ErrNoRows) {
		return Situation{}, fmt.Errorf("store: situation %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Situation{}, fmt.Errorf("store: get situation: %w", err)
	}
	return situation, nil
}

// CreateSituation inserts a new situation and returns it with its assigned id.
func (s *Store) CreateSituation(ctx context.Context, sit Situation) (Situation, error) {
	const q = `
		INSERT INTO situations (title, description, persona_script, difficulty_level, category, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, description, persona_script, difficulty_level, category, is_active, created_at`

	rows, err := s.pool.Query(ctx, q,
		sit.Title, sit.Description, sit.PersonaScript, sit.Difficulty, sit.Category, sit.Active)
	if err != nil {
		return Situation{}, fmt.Errorf("store: create situation: %w", err)
	}

	created, err := pgx.CollectOneRow(rows, scanSituation)
	if err != nil {
		return Situation{}, fmt.Errorf("store: create situation: %w", err)
	}
	return created, nil
}

func scanSituation(row pgx.CollectableRow) (Situation, error) {
	var sit Situation
	err := row.Scan(
		&sit.ID,
		&sit.Title,
		&sit.Description,
		&sit.PersonaScript,
		&sit.Difficulty,
		&sit.Category,
		&sit.Active,
		&sit.CreatedAt,
	)
	return sit, err
}
