package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateOrGetUser returns the user identified by sessionUUID, creating it if
// it does not exist. An empty sessionUUID always creates a fresh anonymous
// user with a newly generated UUID.
func (s *Store) CreateOrGetUser(ctx context.Context, sessionUUID string) (User, error) {
	if sessionUUID != "" {
		const q = `
			SELECT id, session_uuid, created_at, last_active
			FROM   users
			WHERE  session_uuid = $1`

		var u User
		err := s.pool.QueryRow(ctx, q, sessionUUID).Scan(&u.ID, &u.SessionUUID, &u.CreatedAt, &u.LastActive)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("store: get user: %w", err)
		}
	} else {
		sessionUUID = uuid.NewString()
	}

	const q = `
		INSERT INTO users (id, session_uuid)
		VALUES ($1, $2)
		RETURNING id, session_uuid, created_at, last_active`

	var u User
	err := s.pool.QueryRow(ctx, q, uuid.NewString(), sessionUUID).Scan(&u.ID, &u.SessionUUID, &u.CreatedAt, &u.LastActive)
	if err != nil {
		return User{}, fmt.Errorf("store: create user: %w", err)
	}
	return u, nil
}

// TouchUser refreshes the user's last-active timestamp.
func (s *Store) TouchUser(ctx context.Context, userID string) error {
	const q = `UPDATE users SET last_active = now() WHERE id = $1`

	tag, err := s.pool.Exec(ctx, q, userID)
	if err != nil {
		return fmt.Errorf("store: touch user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("store: touch user %q: %w", userID, ErrNotFound)
	}
	return nil
}
