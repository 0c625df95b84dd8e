package domain

import "context"

// AgentInvoker sends a query to one agent and returns its raw output.
// Implementations must honour ctx cancellation.
type AgentInvoker interface {
	Invoke(ctx context.Context, agent AgentConfig, query Query) (string, error)
}
