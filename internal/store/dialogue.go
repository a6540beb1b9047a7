package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AppendMessage persists a conversation turn at the next free position in the
// session. Position assignment happens inside the INSERT so concurrent
// appends to the same session cannot produce duplicate positions (one of
// them fails the unique constraint and surfaces the error).
func (s *Store) AppendMessage(ctx context.Context, sessionID, role, content string) (DialogueMessage, error) {
	const q = `
		INSERT INTO dialogue_messages (id, session_id, message_type, content, message_order)
		SELECT $1, $2, $3, $4, COALESCE(MAX(message_order) + 1, 0)
		FROM   dialogue_messages
		WHERE  session_id = $2
		RETURNING id, session_id, message_type, content, message_order, timestamp`

	rows, err := s.pool.Query(ctx, q, uuid.NewString(), sessionID, role, content)
	if err != nil {
		return DialogueMessage{}, fmt.Errorf("store: append message: %w", err)
	}

	msg, err := pgx.CollectOneRow(rows, scanMessage)
	if err != nil {
		return DialogueMessage{}, fmt.Errorf("store: append message: %w", err)
	}
	return msg, nil
}

// ListMessages returns all messages of a session in conversation order.
func (s *Store) ListMessages(ctx context.Context, sessionID string) ([]DialogueMessage, error) {
	const q = `
		SELECT id, session_id, message_type, content, message_order, timestamp
		FROM   dialogue_messages
		WHERE  session_id = $1
		ORDER  BY message_order`

	rows, err := s.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: list messages: %w", err)
	}

	messages, err := pgx.CollectRows(rows, scanMessage)
	if err != nil {
		return nil, fmt.Errorf("store: scan messages: %w", err)
	}
	if messages == nil {
		messages = []DialogueMessage{}
	}
	return messages, nil
}

// CountMessages returns the number of messages in a session.
func (s *Store) CountMessages(ctx context.Context, sessionID string) (int, error) {
	const q = `SELECT count(*) FROM dialogue_messages WHERE session_id = $1`

	var n int
	if err := s.pool.QueryRow(ctx, q, sessionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count messages: %w", err)
	}
	return n, nil
}

func scanMessage(row pgx.CollectableRow) (DialogueMessage, error) {
	var msg DialogueMessage
	err := row.Scan(
		&msg.ID,
		&msg.SessionID,
		&msg.Role,
		&msg.Content,
		&msg.Position,
		&msg.Timestamp,
	)
	return msg, err
}
