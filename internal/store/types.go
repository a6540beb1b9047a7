package store

import "time"

// SessionStatus is the lifecycle state of a roleplay session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// User is an anonymous trainee identified by a client-held session UUID.
type User struct {
	ID          string
	SessionUUID string
	CreatedAt   time.Time
	LastActive  time.Time
}

// Situation is an authored roleplay scenario definition.
type Situation struct {
	ID            int64
	Title         string
	Description   string
	PersonaScript string
	Difficulty    string
	Category      string
	Active        bool
	CreatedAt     time.Time
}

// RoleplaySession is one trainee's run through a situation.
type RoleplaySession struct {
	ID          string
	UserID      string
	SituationID int64
	Status      SessionStatus
	StartedAt   time.Time

	// EndedAt is nil while the session is active.
	EndedAt *time.Time

	// DurationSeconds is the wall-clock session length, set when the
	// session ends. Never negative.
	DurationSeconds int
}

// DialogueMessage is one persisted conversation turn.
type DialogueMessage struct {
	ID        string
	SessionID string

	// Role is "user" or "persona".
	Role string

	Content   string
	Position  int
	Timestamp time.Time
}

// SessionSummary is the persisted feedback report for a completed session.
type SessionSummary struct {
	ID           string
	SessionID    string
	Score        int
	Overview     string
	Strengths    string
	Improvements string
	Insights     string
	CreatedAt    time.Time
}
