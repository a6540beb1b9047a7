// Package health serves the probes that gate traffic to a Parley instance.
//
// /healthz is liveness: a process that can answer HTTP is alive, so it is
// always 200. /readyz is readiness over the trainer's dependencies — the
// record store and the generative backend — each wrapped in a named
// [Checker]. An instance without a ready database cannot run sessions, so a
// failing check answers 503 and the body names the broken dependency using
// the same {"error": ...} convention as the API handlers.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// probeTimeout bounds each readiness check. Probes are polled frequently, so
// a hung dependency should fail the probe rather than stall it.
const probeTimeout = 3 * time.Second

// Checker is a named readiness probe for one dependency. Check returns nil
// when the dependency can serve and a descriptive error otherwise, and must
// respect context cancellation.
type Checker struct {
	// Name identifies the dependency in the response body ("database",
	// "provider").
	Name string

	// Check probes the dependency.
	Check func(ctx context.Context) error
}

// readiness is the JSON body for both probe endpoints.
type readiness struct {
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler serves the probe endpoints. The checker set is fixed at
// construction, so the zero overhead of sharing one Handler across requests
// needs no locking.
type Handler struct {
	checkers []Checker
}

// New creates a [Handler] evaluating the given checkers, in order, on each
// /readyz request.
func New(checkers ...Checker) *Handler {
	c := make([]Checker, len(checkers))
	copy(c, checkers)
	return &Handler{checkers: c}
}

// Healthz always answers 200.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, readiness{Status: "ok"})
}

// Readyz answers 200 only when every checker passes. Each check runs under a
// [probeTimeout] deadline derived from the request context; failures are
// reported per dependency, and the top-level error field lists the broken
// ones so an operator reading the probe output doesn't have to scan the map.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.checkers))
	var failed []string

	for _, c := range h.checkers {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		err := c.Check(ctx)
		cancel()

		if err != nil {
			checks[c.Name] = err.Error()
			failed = append(failed, c.Name)
		} else {
			checks[c.Name] = "ok"
		}
	}

	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, readiness{
			Status: "unavailable",
			Error:  "not ready: " + strings.Join(failed, ", "),
			Checks: checks,
		})
		return
	}
	writeJSON(w, http.StatusOK, readiness{Status: "ok", Checks: checks})
}

func writeJSON(w http.ResponseWriter, status int, body readiness) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing useful is left to do on encode
	// failure.
	_ = json.NewEncoder(w).Encode(body)
}
