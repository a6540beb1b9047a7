// Command parley is the main entry point for the Parley roleplay training server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"golang.org/x/sync/errgroup"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/health"
	"github.com/parleyhq/parley/internal/observe"
	"github.com/parleyhq/parley/internal/resilience"
	"github.com/parleyhq/parley/internal/server"
	"github.com/parleyhq/parley/internal/store"
	"github.com/parleyhq/parley/internal/trainer"
	"github.com/parleyhq/parley/pkg/provider/llm"
	"github.com/parleyhq/parley/pkg/provider/llm/anyllm"
	"github.com/parleyhq/parley/pkg/provider/llm/openai"
)

const (
	defaultListenAddr = ":8080"
	shutdownTimeout   = 10 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// .env is optional and only used for local development.
	_ = godotenv.Load()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "parley: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "parley: %v\n", err)
		}
		return 1
	}
	applyEnvOverrides(cfg)

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	listenAddr := cfg.Server.ListenAddr
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	slog.Info("parley starting",
		"config", *configPath,
		"listen_addr", listenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Metrics ───────────────────────────────────────────────────────────────
	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "parley"})
	if err != nil {
		slog.Error("failed to initialise metrics", "err", err)
		return 1
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			slog.Warn("metrics shutdown error", "err", err)
		}
	}()

	// ── Record store ──────────────────────────────────────────────────────────
	records, err := store.NewStore(ctx, cfg.Database.PostgresDSN)
	if err != nil {
		slog.Error("failed to open record store", "err", err)
		return 1
	}
	defer records.Close()

	// ── Generative backend ────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinBackends(reg)

	provider, err := buildProvider(cfg.Providers, reg)
	if err != nil {
		slog.Error("failed to build generative backend", "err", err)
		return 1
	}

	// ── Engines ───────────────────────────────────────────────────────────────
	gen := generationConfig(cfg.Generation)
	responder := trainer.NewResponseEngine(provider,
		trainer.WithGenerationConfig(gen),
		trainer.WithLogger(logger),
	)
	analyzer := trainer.NewFeedbackEngine(provider,
		trainer.WithFeedbackGenerationConfig(gen),
		trainer.WithFeedbackLogger(logger),
	)

	// ── HTTP server ───────────────────────────────────────────────────────────
	checks := health.New(
		health.DatabaseChecker(records),
		health.ProviderChecker(provider),
	)
	srv := server.New(records, responder, analyzer,
		server.WithHealthHandler(checks),
		server.WithLogger(logger),
	)

	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server ready — press Ctrl+C to shut down", "addr", listenAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, stopping…")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Backend wiring ────────────────────────────────────────────────────────────

// registerBuiltinBackends wires all built-in generative backend factories into
// reg. Each factory receives a config.ProviderEntry and constructs the backend
// from the real implementation packages.
func registerBuiltinBackends(reg *config.Registry) {
	// The native OpenAI backend carries the full sampling surface
	// (presence/frequency penalties), so it gets the dedicated SDK client.
	reg.Register("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		apiKey := entry.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		var opts []openai.Option
		if entry.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(entry.BaseURL))
		}
		return openai.New(apiKey, entry.Model, opts...)
	})

	// anthropic, gemini, deepseek, mistral and groq all share the same
	// pattern: optional APIKey + optional BaseURL.
	for _, providerName := range []string{"anthropic", "gemini", "deepseek", "mistral", "groq"} {
		reg.Register(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.Register("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})
}

// buildProvider instantiates the configured backend chain. With no primary
// configured it returns nil and the engines run on the rule engine alone.
func buildProvider(cfg config.ProvidersConfig, reg *config.Registry) (llm.Provider, error) {
	if cfg.Primary.Name == "" {
		slog.Warn("no generative backend configured — serving deterministic responses only")
		return nil, nil
	}

	primary, err := reg.Create(cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("create primary backend %q: %w", cfg.Primary.Name, err)
	}
	slog.Info("backend created", "role", "primary", "name", cfg.Primary.Name, "model", cfg.Primary.Model)

	if cfg.Fallback == nil {
		return primary, nil
	}

	secondary, err := reg.Create(*cfg.Fallback)
	if err != nil {
		return nil, fmt.Errorf("create fallback backend %q: %w", cfg.Fallback.Name, err)
	}
	slog.Info("backend created", "role", "fallback", "name", cfg.Fallback.Name, "model", cfg.Fallback.Model)

	group := resilience.NewLLMFallback(primary, cfg.Primary.Name, resilience.FallbackConfig{})
	group.AddFallback(cfg.Fallback.Name, secondary)
	return group, nil
}

// ── Configuration helpers ─────────────────────────────────────────────────────

// applyEnvOverrides fills secrets the YAML file leaves blank from the
// conventional environment variables. The database DSN falls back to
// DATABASE_URL inside the loader because validation needs it.
func applyEnvOverrides(cfg *config.Config) {
	if cfg.Providers.Primary.APIKey == "" {
		cfg.Providers.Primary.APIKey = os.Getenv("PARLEY_PRIMARY_API_KEY")
	}
	if cfg.Providers.Fallback != nil && cfg.Providers.Fallback.APIKey == "" {
		cfg.Providers.Fallback.APIKey = os.Getenv("PARLEY_FALLBACK_API_KEY")
	}
}

// generationConfig merges the YAML sampling block over the engine defaults.
// Zero values keep the defaults.
func generationConfig(cfg config.GenerationConfig) trainer.GenerationConfig {
	gen := trainer.DefaultGenerationConfig()
	if cfg.MaxTokens > 0 {
		gen.MaxTokens = cfg.MaxTokens
	}
	if cfg.Temperature != 0 {
		gen.Temperature = cfg.Temperature
	}
	if cfg.PresencePenalty != 0 {
		gen.PresencePenalty = cfg.PresencePenalty
	}
	if cfg.FrequencyPenalty != 0 {
		gen.FrequencyPenalty = cfg.FrequencyPenalty
	}
	if cfg.FeedbackMaxTokens > 0 {
		gen.FeedbackMaxTokens = cfg.FeedbackMaxTokens
	}
	if cfg.FeedbackTemperature != 0 {
		gen.FeedbackTemperature = cfg.FeedbackTemperature
	}
	return gen
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
