package health

import (
	"context"
	"errors"
	"testing"

	"github.com/parleyhq/parley/pkg/provider/llm"
	"github.com/parleyhq/parley/pkg/provider/llm/mock"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestDatabaseChecker(t *testing.T) {
	c := DatabaseChecker(fakePinger{})
	if c.Name != "database" {
		t.Errorf("name = %q", c.Name)
	}
	if err := c.Check(context.Background()); err != nil {
		t.Errorf("healthy ping: %v", err)
	}

	c = DatabaseChecker(fakePinger{err: errors.New("connection refused")})
	if err := c.Check(context.Background()); err == nil {
		t.Error("failing ping should report unready")
	}
}

func TestProviderChecker(t *testing.T) {
	tests := []struct {
		name     string
		provider llm.Provider
		wantErr  bool
	}{
		{"nil provider is ready", nil, false},
		{
			"sane capabilities",
			&mock.Provider{ModelCapabilities: llm.ModelCapabilities{ContextWindow: 128000}},
			false,
		},
		{
			"zero context window",
			&mock.Provider{},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ProviderChecker(tt.provider)
			err := c.Check(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}
