package trainer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/parleyhq/parley/internal/observe"
	"github.com/parleyhq/parley/pkg/provider/llm"
)

// FeedbackEngine produces the performance report for a completed session.
// The generative backend analyses the transcript on the primary path; the
// deterministic analyzer covers every backend failure. Analyze never returns
// an error.
type FeedbackEngine struct {
	provider llm.Provider
	cfg      GenerationConfig
	metrics  *observe.Metrics
	log      *slog.Logger
}

// FeedbackOption configures a [FeedbackEngine].
type FeedbackOption func(*FeedbackEngine)

// WithFeedbackGenerationConfig overrides the default sampling parameters.
func WithFeedbackGenerationConfig(cfg GenerationConfig) FeedbackOption {
	return func(e *FeedbackEngine) { e.cfg = cfg }
}

// WithFeedbackMetrics overrides the metrics sink.
func WithFeedbackMetrics(m *observe.Metrics) FeedbackOption {
	return func(e *FeedbackEngine) { e.metrics = m }
}

// WithFeedbackLogger overrides the engine logger.
func WithFeedbackLogger(log *slog.Logger) FeedbackOption {
	return func(e *FeedbackEngine) { e.log = log }
}

// NewFeedbackEngine creates a feedback engine. provider may be nil, in which
// case every report comes from the deterministic analyzer.
func NewFeedbackEngine(provider llm.Provider, opts ...FeedbackOption) *FeedbackEngine {
	e := &FeedbackEngine{
		provider: provider,
		cfg:      DefaultGenerationConfig(),
		metrics:  observe.DefaultMetrics(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze produces the feedback report for a session. A session with no
// messages has nothing to review and yields nil; every other input yields a
// complete report.
func (e *FeedbackEngine) Analyze(ctx context.Context, scenario Scenario, history []Message) (report *FeedbackReport) {
	defer func() {
		if r := recover(); r != nil {
			e.log.ErrorContext(ctx, "feedback analysis panicked", slog.Any("panic", r))
			fallback := analyzeConversation(scenario, history)
			report = &fallback
		}
	}()

	if len(history) == 0 {
		return nil
	}

	if e.provider == nil {
		return e.fallbackReport(ctx, scenario, history)
	}

	req := llm.CompletionRequest{
		Messages:    []llm.Message{{Role: "user", Content: feedbackPrompt(scenario, history)}},
		Temperature: e.cfg.FeedbackTemperature,
		MaxTokens:   e.cfg.FeedbackMaxTokens,
	}

	start := time.Now()
	resp, err := e.provider.Complete(ctx, req)
	e.metrics.FeedbackDuration.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		// Unlike the conversational path there is no user waiting on a
		// reply, so even a rate limit falls through to the analyzer.
		status := "error"
		if errors.Is(err, llm.ErrRateLimited) {
			status = "rate_limited"
		}
		e.log.WarnContext(ctx, "feedback backend failed, using analyzer",
			slog.String("status", status), slog.String("error", err.Error()))
		e.recordProviderRequest(ctx, status)
		return e.fallbackReport(ctx, scenario, history)
	}

	var content string
	if resp != nil {
		content = strings.TrimSpace(resp.Content)
	}
	if content == "" {
		e.log.WarnContext(ctx, "feedback backend returned empty analysis, using analyzer")
		e.recordProviderRequest(ctx, "invalid")
		return e.fallbackReport(ctx, scenario, history)
	}

	e.recordProviderRequest(ctx, "ok")
	parsed := parseFeedback(content, scenario, history)
	return &parsed
}

func (e *FeedbackEngine) fallbackReport(ctx context.Context, scenario Scenario, history []Message) *FeedbackReport {
	e.metrics.FallbackResponses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", "feedback"),
		attribute.String("category", string(scenario.Category)),
	))
	report := analyzeConversation(scenario, history)
	return &report
}

func (e *FeedbackEngine) recordProviderRequest(ctx context.Context, status string) {
	e.metrics.ProviderRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", "feedback"),
		attribute.String("status", status),
	))
}
