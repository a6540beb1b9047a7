package trainer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/parleyhq/parley/internal/observe"
	"github.com/parleyhq/parley/pkg/provider/llm"
)

const (
	// safeUtterance is returned when every other path fails. It must never
	// be empty so the conversation can always continue.
	safeUtterance = "I understand. Please continue."

	// rateLimitedUtterance is the holding line returned when the backend is
	// rate limited. Rate limits are transient, so the trainee is asked to
	// retry instead of being handed a rule-engine reply.
	rateLimitedUtterance = "I need a moment to think. Could you please rephrase that or try again in a moment?"

	// listeningPrompt is returned when the history has turns but none of
	// them is a user turn, leaving the rule engine nothing to react to.
	listeningPrompt = "I'm listening. Please go ahead."

	// minResponseLength is the minimum character count for a generated
	// reply to be considered usable.
	minResponseLength = 10

	// maxResponseLength caps replies for the conversation UI. Longer
	// generations are truncated to truncatedLength characters plus an
	// ellipsis.
	maxResponseLength = 500
	truncatedLength   = 497
)

// GenerationConfig carries the sampling parameters for both engines.
type GenerationConfig struct {
	// MaxTokens bounds persona reply generation.
	MaxTokens int

	// Temperature is the persona sampling temperature.
	Temperature float64

	// PresencePenalty nudges generation toward varied replies.
	PresencePenalty float64

	// FrequencyPenalty reduces repeated phrasing across turns.
	FrequencyPenalty float64

	// FeedbackMaxTokens bounds feedback analysis generation.
	FeedbackMaxTokens int

	// FeedbackTemperature is deliberately low so repeated analyses of the
	// same transcript stay consistent.
	FeedbackTemperature float64
}

// DefaultGenerationConfig returns the standard sampling parameters.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		MaxTokens:           150,
		Temperature:         0.8,
		PresencePenalty:     0.6,
		FrequencyPenalty:    0.3,
		FeedbackMaxTokens:   400,
		FeedbackTemperature: 0.3,
	}
}

// ResponseEngine produces the persona's next utterance for a session. The
// generative backend is the primary path; the deterministic rule engine
// covers backend failures and unusable output. Respond never returns an
// error.
type ResponseEngine struct {
	provider llm.Provider
	rules    *fallbackGenerator
	cfg      GenerationConfig
	metrics  *observe.Metrics
	log      *slog.Logger
}

// ResponseOption configures a [ResponseEngine].
type ResponseOption func(*ResponseEngine)

// WithGenerationConfig overrides the default sampling parameters.
func WithGenerationConfig(cfg GenerationConfig) ResponseOption {
	return func(e *ResponseEngine) { e.cfg = cfg }
}

// WithChooser injects the rule engine's pool selector. Tests use this to
// make template selection deterministic.
func WithChooser(pick func(n int) int) ResponseOption {
	return func(e *ResponseEngine) { e.rules = newFallbackGenerator(pick) }
}

// WithMetrics overrides the metrics sink.
func WithMetrics(m *observe.Metrics) ResponseOption {
	return func(e *ResponseEngine) { e.metrics = m }
}

// WithLogger overrides the engine logger.
func WithLogger(log *slog.Logger) ResponseOption {
	return func(e *ResponseEngine) { e.log = log }
}

// NewResponseEngine creates a response engine. provider may be nil, in which
// case every reply comes from the rule engine.
func NewResponseEngine(provider llm.Provider, opts ...ResponseOption) *ResponseEngine {
	e := &ResponseEngine{
		provider: provider,
		rules:    newFallbackGenerator(nil),
		cfg:      DefaultGenerationConfig(),
		metrics:  observe.DefaultMetrics(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Respond produces the persona's next utterance. The returned string is
// always non-empty and at most maxResponseLength characters.
func (e *ResponseEngine) Respond(ctx context.Context, scenario Scenario, history []Message) (reply string) {
	// Last line of defence: a panic anywhere below still yields a usable
	// utterance for the trainee.
	defer func() {
		if r := recover(); r != nil {
			e.log.ErrorContext(ctx, "response generation panicked", slog.Any("panic", r))
			reply = safeUtterance
		}
	}()

	if e.provider == nil {
		return e.fallbackReply(ctx, scenario, history)
	}

	start := time.Now()
	resp, err := e.provider.Complete(ctx, e.buildRequest(scenario, history))
	e.metrics.ResponseDuration.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, llm.ErrRateLimited) {
			e.log.WarnContext(ctx, "persona backend rate limited", slog.String("error", err.Error()))
			e.recordProviderRequest(ctx, "rate_limited")
			return rateLimitedUtterance
		}
		e.log.WarnContext(ctx, "persona backend failed, using rule engine", slog.String("error", err.Error()))
		e.recordProviderRequest(ctx, "error")
		return e.fallbackReply(ctx, scenario, history)
	}

	var content string
	if resp != nil {
		content = strings.TrimSpace(resp.Content)
	}
	if utf8.RuneCountInString(content) < minResponseLength {
		e.log.WarnContext(ctx, "persona backend reply unusable, using rule engine",
			slog.Int("length", utf8.RuneCountInString(content)))
		e.recordProviderRequest(ctx, "invalid")
		return e.fallbackReply(ctx, scenario, history)
	}

	e.recordProviderRequest(ctx, "ok")
	return truncateReply(content)
}

// buildRequest maps the scenario and history onto a completion request. User
// turns become "user" messages and persona turns become "assistant" messages
// so the backend sees its own prior lines as its own.
func (e *ResponseEngine) buildRequest(scenario Scenario, history []Message) llm.CompletionRequest {
	messages := make([]llm.Message, 0, len(history))
	for _, msg := range history {
		role := "assistant"
		if msg.Role == RoleUser {
			role = "user"
		}
		messages = append(messages, llm.Message{Role: role, Content: msg.Content})
	}
	return llm.CompletionRequest{
		Messages:         messages,
		SystemPrompt:     systemPrompt(scenario),
		Temperature:      e.cfg.Temperature,
		MaxTokens:        e.cfg.MaxTokens,
		PresencePenalty:  e.cfg.PresencePenalty,
		FrequencyPenalty: e.cfg.FrequencyPenalty,
	}
}

func (e *ResponseEngine) fallbackReply(ctx context.Context, scenario Scenario, history []Message) string {
	e.metrics.FallbackResponses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", "response"),
		attribute.String("category", string(scenario.Category)),
	))
	return e.rules.Reply(scenario, history)
}

func (e *ResponseEngine) recordProviderRequest(ctx context.Context, status string) {
	e.metrics.ProviderRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", "response"),
		attribute.String("status", status),
	))
}

// truncateReply enforces the UI length cap, counting characters rather than
// bytes so multi-byte text is not split mid-rune.
func truncateReply(content string) string {
	runes := []rune(content)
	if len(runes) <= maxResponseLength {
		return content
	}
	return string(runes[:truncatedLength]) + "..."
}
