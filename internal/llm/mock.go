package llm

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Harshitk-cp/concord/internal/domain"
)

// MockInvoker is a configurable invoker for tests and dry runs.
// Responses, errors and delays are keyed by agent id. Script the maps before
// the first Invoke; use Reset to rescript while calls may be in flight.
type MockInvoker struct {
	Responses map[string]string
	Errors    map[string]error
	Delays    map[string]time.Duration

	mu    sync.Mutex
	calls []string
}

// NewMockInvoker creates a mock with no scripted behaviour. Unscripted agents
// answer with the first verdict the query allows.
func NewMockInvoker() *MockInvoker {
	return &MockInvoker{
		Responses: make(map[string]string),
		Errors:    make(map[string]error),
		Delays:    make(map[string]time.Duration),
	}
}

func (m *MockInvoker) Invoke(ctx context.Context, agent domain.AgentConfig, query domain.Query) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, agent.ID)
	d := m.Delays[agent.ID]
	scriptedErr := m.Errors[agent.ID]
	resp, ok := m.Responses[agent.ID]
	m.mu.Unlock()

	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if scriptedErr != nil {
		return "", scriptedErr
	}
	if ok {
		return resp, nil
	}
	return defaultMockOutput(query), nil
}

// Calls returns the agent ids invoked so far, in call order.
func (m *MockInvoker) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Reset clears all recorded calls and scripted behaviour.
func (m *MockInvoker) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = make(map[string]string)
	m.Errors = make(map[string]error)
	m.Delays = make(map[string]time.Duration)
	m.calls = nil
}

func defaultMockOutput(query domain.Query) string {
	out := domain.AgentOutput{
		Confidence: 0.5,
		Findings:   []string{},
		Reasoning:  "mock analysis",
	}
	if len(query.Verdicts) > 0 {
		out.Verdict = string(query.Verdicts[0])
	}
	b, _ := json.Marshal(out)
	return string(b)
}
