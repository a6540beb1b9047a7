package health

import (
	"context"
	"errors"

	"github.com/parleyhq/parley/pkg/provider/llm"
)

// Pinger is the connectivity probe the database checker depends on.
// *store.Store satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseChecker reports ready when the record store answers a ping.
func DatabaseChecker(db Pinger) Checker {
	return Checker{
		Name: "database",
		Check: func(ctx context.Context) error {
			return db.Ping(ctx)
		},
	}
}

// ProviderChecker reports ready when the generative backend exposes sane
// capabilities. This is a local sanity check, not a remote probe: burning a
// completion request on every readiness poll would waste quota, and an
// unreachable backend degrades to the rule engine rather than making the
// server unready.
func ProviderChecker(provider llm.Provider) Checker {
	return Checker{
		Name: "provider",
		Check: func(ctx context.Context) error {
			if provider == nil {
				// Rule-engine-only deployments are valid.
				return nil
			}
			if provider.Capabilities().ContextWindow <= 0 {
				return errors.New("provider reports no context window")
			}
			return nil
		},
	}
}
