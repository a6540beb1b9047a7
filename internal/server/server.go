// Package server provides the HTTP API for Parley: user bootstrap, situation
// catalogue, roleplay session lifecycle, and feedback retrieval.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parleyhq/parley/internal/health"
	"github.com/parleyhq/parley/internal/observe"
	"github.com/parleyhq/parley/internal/store"
	"github.com/parleyhq/parley/internal/trainer"
)

// Records is the slice of the record store the HTTP layer depends on.
// *store.Store satisfies it; tests substitute an in-memory fake.
type Records interface {
	CreateOrGetUser(ctx context.Context, sessionUUID string) (store.User, error)
	TouchUser(ctx context.Context, userID string) error
	ListSituations(ctx context.Context) ([]store.Situation, error)
	GetSituation(ctx context.Context, id int64) (store.Situation, error)
	CreateSession(ctx context.Context, userID string, situationID int64) (store.RoleplaySession, error)
	GetSession(ctx context.Context, id string) (store.RoleplaySession, error)
	EndSession(ctx context.Context, id string) (store.RoleplaySession, error)
	ListMessages(ctx context.Context, sessionID string) ([]store.DialogueMessage, error)
	CountMessages(ctx context.Context, sessionID string) (int, error)
	AppendMessage(ctx context.Context, sessionID, role, content string) (store.DialogueMessage, error)
	InsertSummary(ctx context.Context, summary store.SessionSummary) (store.SessionSummary, error)
	GetSummary(ctx context.Context, sessionID string) (store.SessionSummary, error)
}

// Responder produces persona utterances. *trainer.ResponseEngine satisfies it.
type Responder interface {
	Respond(ctx context.Context, scenario trainer.Scenario, history []trainer.Message) string
}

// Analyzer produces session feedback reports. *trainer.FeedbackEngine
// satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, scenario trainer.Scenario, history []trainer.Message) *trainer.FeedbackReport
}

// Server holds the handler dependencies and builds the router.
type Server struct {
	records   Records
	responder Responder
	analyzer  Analyzer
	health    *health.Handler
	metrics   *observe.Metrics
	log       *slog.Logger
}

// Option configures a [Server].
type Option func(*Server)

// WithHealthHandler sets the handler backing /healthz and /readyz.
func WithHealthHandler(h *health.Handler) Option {
	return func(s *Server) { s.health = h }
}

// WithMetrics overrides the metrics sink.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger overrides the server logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a Server.
func New(records Records, responder Responder, analyzer Analyzer, opts ...Option) *Server {
	s := &Server{
		records:   records,
		responder: responder,
		analyzer:  analyzer,
		health:    health.New(),
		metrics:   observe.DefaultMetrics(),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router assembles the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(observe.Middleware(s.metrics))

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", s.handleCreateUser)
		r.Get("/situations", s.handleListSituations)
		r.Get("/situations/{id}", s.handleGetSituation)
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Post("/sessions/{id}/messages", s.handleSendMessage)
		r.Post("/sessions/{id}/end", s.handleEndSession)
		r.Get("/sessions/{id}/feedback", s.handleGetFeedback)
	})

	r.Get("/healthz", s.health.Healthz)
	r.Get("/readyz", s.health.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
