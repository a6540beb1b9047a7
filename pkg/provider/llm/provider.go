// Package llm defines the Provider interface for generative text backends.
//
// A provider wraps a remote or local chat-completion API (e.g. OpenAI,
// Anthropic via any-llm, or a local Ollama instance) and exposes a uniform
// interface so the trainer engines can request persona utterances and
// feedback analyses without coupling to any specific SDK.
//
// Implementors must be safe for concurrent use and must propagate context
// cancellation promptly.
package llm

import (
	"context"
	"errors"
)

// ErrRateLimited indicates the backend refused the request because of rate
// limiting (HTTP 429 or an SDK-specific equivalent). Callers treat this
// differently from other failures: the condition is transient, so an
// immediate retry would most likely fail again. Implementations must wrap
// this sentinel so that errors.Is(err, ErrRateLimited) holds.
var ErrRateLimited = errors.New("llm: rate limited")

// Usage holds token accounting information returned by the backend.
// Counts are in the model's native token unit and may differ between
// providers for the same textual content.
type Usage struct {
	// PromptTokens is the number of tokens consumed by the input messages
	// and system prompt.
	PromptTokens int

	// CompletionTokens is the number of tokens generated in the response.
	CompletionTokens int

	// TotalTokens is PromptTokens + CompletionTokens.
	TotalTokens int
}

// CompletionRequest carries everything the backend needs to produce a
// response. A zero-value request is invalid; at minimum Messages must be
// non-empty.
type CompletionRequest struct {
	// Messages is the ordered conversation history. The last message is
	// typically from the "user" role and drives the response.
	Messages []Message

	// SystemPrompt is an optional high-priority instruction injected before
	// the conversation history. Providers without a dedicated system slot
	// prepend it as a "system"-role message.
	SystemPrompt string

	// Temperature controls output randomness in [0.0, 2.0]. Lower values
	// produce more deterministic output.
	Temperature float64

	// MaxTokens caps the number of completion tokens the model may generate.
	// Zero means use the provider default.
	MaxTokens int

	// PresencePenalty discourages the model from reusing tokens that already
	// appear in the context. Range [-2.0, 2.0]; zero means no penalty.
	// Providers that do not support it ignore this field.
	PresencePenalty float64

	// FrequencyPenalty discourages the model from repeating tokens in
	// proportion to how often they already occurred. Same range and
	// provider-support caveat as PresencePenalty.
	FrequencyPenalty float64
}

// CompletionResponse is returned by Complete.
type CompletionResponse struct {
	// Content is the full text of the model's reply.
	Content string

	// Usage contains token accounting for this request/response pair.
	Usage Usage
}

// Provider is the abstraction over any generative text backend.
//
// Implementations must be safe for concurrent use from multiple goroutines.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	//
	// Rate-limit failures are reported as errors wrapping [ErrRateLimited];
	// every other failure is an ordinary provider error. Returns an error if
	// ctx is cancelled before the completion arrives.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// CountTokens estimates how many tokens messages would consume in the
	// model's context window. The result need not be exact but should not
	// undercount.
	CountTokens(messages []Message) (int, error)

	// Capabilities returns static metadata about the underlying model. The
	// result is assumed constant for the lifetime of the Provider instance.
	Capabilities() ModelCapabilities
}
