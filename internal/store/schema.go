package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlUsers = `
CREATE TABLE IF NOT EXISTS users (
    id           TEXT         PRIMARY KEY,
    session_uuid TEXT         NOT NULL UNIQUE,
    created_at   TIMESTAMPTZ  NOT NULL DEFAULT now(),
    last_active  TIMESTAMPTZ  NOT NULL DEFAULT now()
);
`

const ddlSituations = `
CREATE TABLE IF NOT EXISTS situations (
    id               BIGSERIAL    PRIMARY KEY,
    title            TEXT         NOT NULL,
    description      TEXT         NOT NULL,
    persona_script   TEXT         NOT NULL,
    difficulty_level TEXT         NOT NULL DEFAULT 'beginner',
    category         TEXT         NOT NULL DEFAULT 'other',
    is_active        BOOLEAN      NOT NULL DEFAULT TRUE,
    created_at       TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_situations_active
    ON situations (is_active);
`

const ddlSessions = `
CREATE TABLE IF NOT EXISTS roleplay_sessions (
    id               TEXT         PRIMARY KEY,
    user_id          TEXT         NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    situation_id     BIGINT       NOT NULL REFERENCES situations (id),
    status           TEXT         NOT NULL DEFAULT 'active',
    started_at       TIMESTAMPTZ  NOT NULL DEFAULT now(),
    ended_at         TIMESTAMPTZ,
    session_duration INTEGER      NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_sessions_user_id
    ON roleplay_sessions (user_id);
`

const ddlMessages = `
CREATE TABLE IF NOT EXISTS dialogue_messages (
    id            TEXT         PRIMARY KEY,
    session_id    TEXT         NOT NULL REFERENCES roleplay_sessions (id) ON DELETE CASCADE,
    message_type  TEXT         NOT NULL CHECK (message_type IN ('user', 'persona')),
    content       TEXT         NOT NULL,
    message_order INTEGER      NOT NULL,
    timestamp     TIMESTAMPTZ  NOT NULL DEFAULT now(),
    UNIQUE (session_id, message_order)
);

CREATE INDEX IF NOT EXISTS idx_messages_session_order
    ON dialogue_messages (session_id, message_order);
`

const ddlSummaries = `
CREATE TABLE IF NOT EXISTS session_summaries (
    id                TEXT         PRIMARY KEY,
    session_id        TEXT         NOT NULL UNIQUE REFERENCES roleplay_sessions (id) ON DELETE CASCADE,
    performance_score INTEGER      NOT NULL,
    feedback_text     TEXT         NOT NULL DEFAULT '',
    strengths         TEXT         NOT NULL DEFAULT '',
    improvement_areas TEXT         NOT NULL DEFAULT '',
    key_insights      TEXT         NOT NULL DEFAULT '',
    created_at        TIMESTAMPTZ  NOT NULL DEFAULT now()
);
`

// Migrate creates or ensures all required database tables exist. It is
// idempotent (CREATE TABLE IF NOT EXISTS / CREATE INDEX IF NOT EXISTS) and
// safe to call on every application start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		ddlUsers,
		ddlSituations,
		ddlSessions,
		ddlMessages,
		ddlSummaries,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("store migrate: %w", err)
		}
	}
	return nil
}
