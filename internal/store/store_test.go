package store_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parleyhq/parley/internal/store"
)

// testDSN returns the test database DSN from the environment, or skips the
// test if PARLEY_TEST_POSTGRES_DSN is not set.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("PARLEY_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PARLEY_TEST_POSTGRES_DSN not set, skipping PostgreSQL integration tests")
	}
	return dsn
}

// newTestStore creates a fresh [store.Store] with a clean schema.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := testDSN(t)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		DROP TABLE IF EXISTS session_summaries, dialogue_messages, roleplay_sessions, situations, users CASCADE`)
	if err != nil {
		t.Fatalf("drop schema: %v", err)
	}

	s, err := store.NewStore(ctx, dsn)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func seedSituation(t *testing.T, s *store.Store) store.Situation {
	t.Helper()
	sit, err := s.CreateSituation(context.Background(), store.Situation{
		Title:         "Mock Interview",
		Description:   "A software engineering interview.",
		PersonaScript: "You are Jordan, a hiring manager.",
		Difficulty:    "beginner",
		Category:      "career",
		Active:        true,
	})
	if err != nil {
		t.Fatalf("CreateSituation: %v", err)
	}
	return sit
}

func TestUsers_CreateGetTouch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateOrGetUser(ctx, "")
	if err != nil {
		t.Fatalf("CreateOrGetUser: %v", err)
	}
	if created.ID == "" || created.SessionUUID == "" {
		t.Fatalf("user missing ids: %+v", created)
	}

	// Same session UUID returns the same user.
	again, err := s.CreateOrGetUser(ctx, created.SessionUUID)
	if err != nil {
		t.Fatalf("CreateOrGetUser (existing): %v", err)
	}
	if again.ID != created.ID {
		t.Errorf("ids differ: %q vs %q", again.ID, created.ID)
	}

	if err := s.TouchUser(ctx, created.ID); err != nil {
		t.Errorf("TouchUser: %v", err)
	}
	if err := s.TouchUser(ctx, "no-such-user"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("TouchUser on missing user: err = %v, want ErrNotFound", err)
	}
}

func TestSituations_ListAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sit := seedSituation(t, s)
	inactive, err := s.CreateSituation(ctx, store.Situation{
		Title: "Retired", Description: "d", PersonaScript: "p",
		Difficulty: "beginner", Category: "social", Active: false,
	})
	if err != nil {
		t.Fatalf("CreateSituation: %v", err)
	}

	list, err := s.ListSituations(ctx)
	if err != nil {
		t.Fatalf("ListSituations: %v", err)
	}
	if len(list) != 1 || list[0].ID != sit.ID {
		t.Errorf("list = %+v, want only the active situation", list)
	}

	// Inactive situations remain fetchable by id.
	got, err := s.GetSituation(ctx, inactive.ID)
	if err != nil {
		t.Fatalf("GetSituation (inactive): %v", err)
	}
	if got.Active {
		t.Error("inactive situation reported active")
	}

	if _, err := s.GetSituation(ctx, 99999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetSituation missing: err = %v, want ErrNotFound", err)
	}
}

func TestSessions_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateOrGetUser(ctx, "")
	if err != nil {
		t.Fatalf("CreateOrGetUser: %v", err)
	}
	sit := seedSituation(t, s)

	session, err := s.CreateSession(ctx, user.ID, sit.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.Status != store.SessionActive || session.EndedAt != nil {
		t.Errorf("new session = %+v", session)
	}

	ended, err := s.EndSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if ended.Status != store.SessionCompleted || ended.EndedAt == nil {
		t.Errorf("ended session = %+v", ended)
	}
	if ended.DurationSeconds < 0 {
		t.Errorf("duration = %d, want >= 0", ended.DurationSeconds)
	}

	// Ending again is a no-op returning the stored row.
	again, err := s.EndSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("EndSession (repeat): %v", err)
	}
	if again.Status != store.SessionCompleted {
		t.Errorf("repeat end = %+v", again)
	}

	if _, err := s.EndSession(ctx, "no-such-session"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("EndSession missing: err = %v, want ErrNotFound", err)
	}
}

func TestMessages_AppendAssignsContiguousPositions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, _ := s.CreateOrGetUser(ctx, "")
	sit := seedSituation(t, s)
	session, err := s.CreateSession(ctx, user.ID, sit.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	for i, turn := range []struct{ role, content string }{
		{"persona", "Welcome! Tell me about yourself."},
		{"user", "I'm a backend engineer."},
		{"persona", "What drew you to this role?"},
	} {
		msg, err := s.AppendMessage(ctx, session.ID, turn.role, turn.content)
		if err != nil {
			t.Fatalf("AppendMessage %d: %v", i, err)
		}
		if msg.Position != i {
			t.Errorf("message %d position = %d", i, msg.Position)
		}
	}

	messages, err := s.ListMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(messages))
	}
	for i, msg := range messages {
		if msg.Position != i {
			t.Errorf("message %d out of order: position %d", i, msg.Position)
		}
	}

	n, err := s.CountMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("CountMessages: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestSummaries_InsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, _ := s.CreateOrGetUser(ctx, "")
	sit := seedSituation(t, s)
	session, err := s.CreateSession(ctx, user.ID, sit.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	inserted, err := s.InsertSummary(ctx, store.SessionSummary{
		SessionID:    session.ID,
		Score:        78,
		Overview:     "Solid engagement.",
		Strengths:    "Clear answers",
		Improvements: "Ask more questions",
		Insights:     "Practice helps",
	})
	if err != nil {
		t.Fatalf("InsertSummary: %v", err)
	}
	if inserted.Score != 78 {
		t.Errorf("score = %d", inserted.Score)
	}

	// Re-inserting replaces the report instead of failing.
	replaced, err := s.InsertSummary(ctx, store.SessionSummary{
		SessionID: session.ID,
		Score:     81,
		Overview:  "Revised.",
	})
	if err != nil {
		t.Fatalf("InsertSummary (replace): %v", err)
	}
	if replaced.Score != 81 {
		t.Errorf("replaced score = %d", replaced.Score)
	}

	got, err := s.GetSummary(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if got.Score != 81 || got.Overview != "Revised." {
		t.Errorf("summary = %+v", got)
	}

	if _, err := s.GetSummary(ctx, "no-such-session"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetSummary missing: err = %v, want ErrNotFound", err)
	}
}
