package server

import (
	"time"

	"github.com/parleyhq/parley/internal/store"
	"github.com/parleyhq/parley/internal/trainer"
)

// Message roles on the wire match the dialogue_messages.message_type values.
const (
	roleUser    = "user"
	rolePersona = "persona"
)

type createUserRequest struct {
	SessionUUID string `json:"session_uuid,omitempty"`
}

type userResponse struct {
	ID          string    `json:"id"`
	SessionUUID string    `json:"session_uuid"`
	CreatedAt   time.Time `json:"created_at"`
	LastActive  time.Time `json:"last_active"`
}

type situationResponse struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	PersonaScript string    `json:"persona_script"`
	Difficulty    string    `json:"difficulty_level"`
	Category      string    `json:"category"`
	Active        bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

type createSessionRequest struct {
	UserID      string `json:"user_id"`
	SituationID int64  `json:"situation_id"`
}

type sessionResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	SituationID     int64      `json:"situation_id"`
	Status          string     `json:"status"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationSeconds int        `json:"session_duration"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"message_type"`
	Content   string    `json:"content"`
	Position  int       `json:"message_order"`
	Timestamp time.Time `json:"timestamp"`
}

type summaryResponse struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	Score        int       `json:"performance_score"`
	Overview     string    `json:"feedback_text"`
	Strengths    string    `json:"strengths"`
	Improvements string    `json:"improvement_areas"`
	Insights     string    `json:"key_insights"`
	CreatedAt    time.Time `json:"created_at"`
}

type sessionDetailResponse struct {
	sessionResponse
	Situation situationResponse `json:"situation"`
	Messages  []messageResponse `json:"messages"`
	Summary   *summaryResponse  `json:"summary,omitempty"`
}

type endSessionResponse struct {
	Session sessionResponse  `json:"session"`
	Summary *summaryResponse `json:"summary,omitempty"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// ── Store → wire conversions ─────────────────────────────────────────────────

func toUserResponse(u store.User) userResponse {
	return userResponse{
		ID:          u.ID,
		SessionUUID: u.SessionUUID,
		CreatedAt:   u.CreatedAt,
		LastActive:  u.LastActive,
	}
}

func toSituationResponse(sit store.Situation) situationResponse {
	return situationResponse{
		ID:            sit.ID,
		Title:         sit.Title,
		Description:   sit.Description,
		PersonaScript: sit.PersonaScript,
		Difficulty:    sit.Difficulty,
		Category:      sit.Category,
		Active:        sit.Active,
		CreatedAt:     sit.CreatedAt,
	}
}

func toSessionResponse(sess store.RoleplaySession) sessionResponse {
	return sessionResponse{
		ID:              sess.ID,
		UserID:          sess.UserID,
		SituationID:     sess.SituationID,
		Status:          string(sess.Status),
		StartedAt:       sess.StartedAt,
		EndedAt:         sess.EndedAt,
		DurationSeconds: sess.DurationSeconds,
	}
}

func toMessageResponse(msg store.DialogueMessage) messageResponse {
	return messageResponse{
		ID:        msg.ID,
		SessionID: msg.SessionID,
		Role:      msg.Role,
		Content:   msg.Content,
		Position:  msg.Position,
		Timestamp: msg.Timestamp,
	}
}

func toMessageResponses(messages []store.DialogueMessage) []messageResponse {
	out := make([]messageResponse, 0, len(messages))
	for _, msg := range messages {
		out = append(out, toMessageResponse(msg))
	}
	return out
}

func toSummaryResponse(sum store.SessionSummary) summaryResponse {
	return summaryResponse{
		ID:           sum.ID,
		SessionID:    sum.SessionID,
		Score:        sum.Score,
		Overview:     sum.Overview,
		Strengths:    sum.Strengths,
		Improvements: sum.Improvements,
		Insights:     sum.Insights,
		CreatedAt:    sum.CreatedAt,
	}
}

// ── Store → engine conversions ───────────────────────────────────────────────

func toScenario(sit store.Situation) trainer.Scenario {
	return trainer.Scenario{
		Title:         sit.Title,
		Description:   sit.Description,
		PersonaScript: sit.PersonaScript,
		Difficulty:    sit.Difficulty,
		Category:      trainer.ParseCategory(sit.Category),
	}
}

func toHistory(messages []store.DialogueMessage) []trainer.Message {
	history := make([]trainer.Message, 0, len(messages))
	for _, msg := range messages {
		role := trainer.RolePersona
		if msg.Role == roleUser {
			role = trainer.RoleUser
		}
		history = append(history, trainer.Message{
			Role:      role,
			Content:   msg.Content,
			Position:  msg.Position,
			Timestamp: msg.Timestamp,
		})
	}
	return history
}
