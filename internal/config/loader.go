package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known generative backend names.
// Used by [Validate] to warn about unrecognised names.
var ValidProviderNames = []string{
	"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq",
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// A blank database.postgres_dsn falls back to the DATABASE_URL environment
// variable before validation. Useful in tests where configs are constructed
// from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if cfg.Database.PostgresDSN == "" {
		cfg.Database.PostgresDSN = os.Getenv("DATABASE_URL")
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Backends
	validateProviderName("providers.primary", cfg.Providers.Primary.Name)
	if cfg.Providers.Primary.Name != "" && cfg.Providers.Primary.Model == "" {
		errs = append(errs, errors.New("providers.primary.model is required when providers.primary.name is set"))
	}
	if cfg.Providers.Primary.Name == "" {
		slog.Warn("no primary backend configured; all replies and feedback will come from the rule engine")
	}
	if cfg.Providers.Fallback != nil {
		validateProviderName("providers.fallback", cfg.Providers.Fallback.Name)
		if cfg.Providers.Fallback.Name == "" {
			errs = append(errs, errors.New("providers.fallback.name is required when providers.fallback is set"))
		}
		if cfg.Providers.Fallback.Model == "" {
			errs = append(errs, errors.New("providers.fallback.model is required when providers.fallback is set"))
		}
		if cfg.Providers.Primary.Name == "" {
			errs = append(errs, errors.New("providers.fallback is set but providers.primary is not"))
		}
	}

	// Generation
	if cfg.Generation.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("generation.max_tokens %d must not be negative", cfg.Generation.MaxTokens))
	}
	if cfg.Generation.FeedbackMaxTokens < 0 {
		errs = append(errs, fmt.Errorf("generation.feedback_max_tokens %d must not be negative", cfg.Generation.FeedbackMaxTokens))
	}
	if cfg.Generation.Temperature < 0 || cfg.Generation.Temperature > 2 {
		errs = append(errs, fmt.Errorf("generation.temperature %.2f is out of range [0, 2]", cfg.Generation.Temperature))
	}
	if cfg.Generation.FeedbackTemperature < 0 || cfg.Generation.FeedbackTemperature > 2 {
		errs = append(errs, fmt.Errorf("generation.feedback_temperature %.2f is out of range [0, 2]", cfg.Generation.FeedbackTemperature))
	}
	if cfg.Generation.PresencePenalty < -2 || cfg.Generation.PresencePenalty > 2 {
		errs = append(errs, fmt.Errorf("generation.presence_penalty %.2f is out of range [-2, 2]", cfg.Generation.PresencePenalty))
	}
	if cfg.Generation.FrequencyPenalty < -2 || cfg.Generation.FrequencyPenalty > 2 {
		errs = append(errs, fmt.Errorf("generation.frequency_penalty %.2f is out of range [-2, 2]", cfg.Generation.FrequencyPenalty))
	}

	// Database
	if cfg.Database.PostgresDSN == "" {
		errs = append(errs, errors.New("database.postgres_dsn is required"))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// [ValidProviderNames].
func validateProviderName(field, name string) {
	if name == "" || slices.Contains(ValidProviderNames, name) {
		return
	}
	slog.Warn("unknown backend name, may be a typo or third-party backend",
		"field", field,
		"name", name,
		"known", ValidProviderNames,
	)
}
