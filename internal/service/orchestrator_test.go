package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Harshitk-cp/concord/internal/domain"
	"github.com/Harshitk-cp/concord/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type invokerFunc func(ctx context.Context, agent domain.AgentConfig, query domain.Query) (string, error)

func (f invokerFunc) Invoke(ctx context.Context, agent domain.AgentConfig, query domain.Query) (string, error) {
	return f(ctx, agent, query)
}

func agents(ids ...string) []domain.AgentConfig {
	out := make([]domain.AgentConfig, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.AgentConfig{ID: id, Provider: "mock", Weight: 1})
	}
	return out
}

func TestOrchestrator_Run_KeepsDispatchOrder(t *testing.T) {
	mock := llm.NewMockInvoker()
	mock.Delays["a1"] = 60 * time.Millisecond
	mock.Delays["a2"] = 30 * time.Millisecond
	mock.Responses["a3"] = `{"verdict":"VULNERABLE","confidence":0.8,"findings":["XSS in search"]}`

	o := NewOrchestrator(mock, testProfiles(), zap.NewNop())
	set, err := o.Run(context.Background(), "review this handler", agents("a1", "a2", "a3"), "security", time.Second)
	require.NoError(t, err)

	assert.NotEmpty(t, set.RunID)
	assert.Equal(t, "security", set.Domain)
	assert.Equal(t, 3, set.Dispatched)
	assert.False(t, set.Cancelled)
	require.Len(t, set.Results, 3)
	for i, id := range []string{"a1", "a2", "a3"} {
		assert.Equal(t, id, set.Results[i].AgentID)
		assert.Equal(t, i, set.Results[i].DispatchIndex)
		assert.Equal(t, 1.0, set.Results[i].Weight)
	}
	assert.Equal(t, domain.Verdict("SAFE"), set.Results[0].Verdict)
	assert.Equal(t, domain.Verdict("VULNERABLE"), set.Results[2].Verdict)
	assert.Equal(t, []string{"XSS in search"}, set.Results[2].Findings)
	assert.ElementsMatch(t, []string{"a1", "a2", "a3"}, mock.Calls())
}

func TestOrchestrator_Run_IsolatesFailures(t *testing.T) {
	mock := llm.NewMockInvoker()
	mock.Delays["slow"] = 2 * time.Second
	mock.Errors["broken"] = errors.New("provider error: 503 service unavailable")
	mock.Responses["garbled"] = "sorry, I cannot help with that"

	panicky := invokerFunc(func(ctx context.Context, agent domain.AgentConfig, query domain.Query) (string, error) {
		if agent.ID == "panics" {
			panic("nil map write")
		}
		return mock.Invoke(ctx, agent, query)
	})

	o := NewOrchestrator(panicky, testProfiles(), zap.NewNop())
	start := time.Now()
	set, err := o.Run(context.Background(), "q", agents("ok", "slow", "broken", "garbled", "panics"), "security", 50*time.Millisecond)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)

	byID := make(map[string]domain.AgentResult)
	for _, r := range set.Results {
		byID[r.AgentID] = r
	}
	require.Len(t, byID, 5)

	assert.True(t, byID["ok"].Valid())
	assert.Equal(t, "timeout", byID["slow"].Error)
	assert.Equal(t, "provider error: 503 service unavailable", byID["broken"].Error)
	assert.Contains(t, byID["garbled"].Error, "malformed output")
	assert.Contains(t, byID["panics"].Error, "invoker panic")

	for _, id := range []string{"slow", "broken", "garbled", "panics"} {
		assert.Equal(t, domain.VerdictError, byID[id].Verdict, id)
		assert.Zero(t, byID[id].Confidence, id)
	}
	assert.Len(t, set.Valid(), 1)
}

func TestOrchestrator_Run_Cancelled(t *testing.T) {
	mock := llm.NewMockInvoker()
	mock.Delays["slow"] = 5 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	o := NewOrchestrator(mock, testProfiles(), zap.NewNop())
	start := time.Now()
	set, err := o.Run(ctx, "q", agents("fast", "slow"), "security", 10*time.Second)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	assert.True(t, set.Cancelled)
	require.Len(t, set.Results, 2)
	assert.True(t, set.Results[0].Valid())
	assert.Equal(t, "cancelled", set.Results[1].Error)
	assert.Equal(t, "slow", set.Results[1].AgentID)
}

func TestOrchestrator_Run_BoundedConcurrency(t *testing.T) {
	var inFlight, peak int32
	var mu sync.Mutex
	inv := invokerFunc(func(ctx context.Context, agent domain.AgentConfig, query domain.Query) (string, error) {
		cur := atomic.AddInt32(&inFlight, 1)
		mu.Lock()
		if cur > peak {
			peak = cur
		}
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return `{"verdict":"SAFE","confidence":0.5}`, nil
	})

	o := NewOrchestrator(inv, testProfiles(), zap.NewNop())
	o.MaxConcurrency = 2
	set, err := o.Run(context.Background(), "q", agents("a", "b", "c", "d", "e"), "security", time.Second)
	require.NoError(t, err)
	assert.Len(t, set.Valid(), 5)

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, int32(2))
}

func TestOrchestrator_Validate(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		agents []domain.AgentConfig
		domain string
	}{
		{"empty query", "  ", agents("a"), "security"},
		{"no agents", "q", nil, "security"},
		{"duplicate id", "q", agents("a", "a"), "security"},
		{"missing id", "q", []domain.AgentConfig{{Provider: "mock", Weight: 1}}, "security"},
		{"missing provider", "q", []domain.AgentConfig{{ID: "a", Weight: 1}}, "security"},
		{"zero weight", "q", []domain.AgentConfig{{ID: "a", Provider: "mock"}}, "security"},
		{"negative weight", "q", []domain.AgentConfig{{ID: "a", Provider: "mock", Weight: -1}}, "security"},
		{"unknown domain", "q", agents("a"), "astrology"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockInvoker()
			o := NewOrchestrator(mock, testProfiles(), zap.NewNop())

			set, err := o.Run(context.Background(), tt.query, tt.agents, tt.domain, time.Second)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
			assert.Nil(t, set)
			assert.Empty(t, mock.Calls())
		})
	}
}
