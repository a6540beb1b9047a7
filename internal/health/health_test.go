package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func probe(t *testing.T, serve func(http.ResponseWriter, *http.Request)) (int, readiness) {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	serve(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var body readiness
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return rec.Code, body
}

func passing(name string) Checker {
	return Checker{Name: name, Check: func(context.Context) error { return nil }}
}

func failing(name, msg string) Checker {
	return Checker{Name: name, Check: func(context.Context) error { return errors.New(msg) }}
}

func TestHealthz_AlwaysOK(t *testing.T) {
	h := New(failing("database", "connection refused"))

	code, body := probe(t, h.Healthz)
	if code != http.StatusOK {
		t.Errorf("status = %d, want %d (liveness ignores dependencies)", code, http.StatusOK)
	}
	if body.Status != "ok" || body.Error != "" {
		t.Errorf("body = %+v", body)
	}
}

func TestReadyz_AllDependenciesUp(t *testing.T) {
	h := New(passing("database"), passing("provider"))

	code, body := probe(t, h.Readyz)
	if code != http.StatusOK {
		t.Errorf("status = %d, want %d", code, http.StatusOK)
	}
	if body.Status != "ok" || body.Error != "" {
		t.Errorf("body = %+v", body)
	}
	if body.Checks["database"] != "ok" || body.Checks["provider"] != "ok" {
		t.Errorf("checks = %v", body.Checks)
	}
}

func TestReadyz_DatabaseDown(t *testing.T) {
	h := New(failing("database", "connection refused"), passing("provider"))

	code, body := probe(t, h.Readyz)
	if code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", code, http.StatusServiceUnavailable)
	}
	if body.Status != "unavailable" {
		t.Errorf("status field = %q", body.Status)
	}
	if body.Error != "not ready: database" {
		t.Errorf("error = %q, want the failing dependency named", body.Error)
	}
	if body.Checks["database"] != "connection refused" {
		t.Errorf("database check = %q", body.Checks["database"])
	}
	if body.Checks["provider"] != "ok" {
		t.Errorf("provider check = %q", body.Checks["provider"])
	}
}

func TestReadyz_EveryDependencyDown(t *testing.T) {
	h := New(
		failing("database", "timeout"),
		failing("provider", "no context window"),
	)

	code, body := probe(t, h.Readyz)
	if code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", code, http.StatusServiceUnavailable)
	}
	for _, name := range []string{"database", "provider"} {
		if !strings.Contains(body.Error, name) {
			t.Errorf("error %q does not name %q", body.Error, name)
		}
	}
	if body.Checks["database"] != "timeout" || body.Checks["provider"] != "no context window" {
		t.Errorf("checks = %v", body.Checks)
	}
}

func TestReadyz_NoCheckersIsReady(t *testing.T) {
	h := New()

	code, body := probe(t, h.Readyz)
	if code != http.StatusOK || body.Status != "ok" {
		t.Errorf("code = %d, body = %+v", code, body)
	}
}

func TestReadyz_RespectsContextCancellation(t *testing.T) {
	h := New(Checker{Name: "slow", Check: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest("GET", "/readyz", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.Readyz(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}
