package domain

// AgentConfig describes one reasoning agent taking part in a consensus run.
// It is supplied by the caller and never mutated by the engine.
type AgentConfig struct {
	ID       string  `json:"id"`
	Provider string  `json:"provider"`
	Model    string  `json:"model,omitempty"`
	Role     string  `json:"role,omitempty"`
	Weight   float64 `json:"weight"`
}

// AgentOutput is the structured payload an agent is asked to return.
// Invokers use it to describe the expected response format.
type AgentOutput struct {
	Verdict    string   `json:"verdict" jsonschema:"description=One of the allowed verdict labels"`
	Confidence float64  `json:"confidence" jsonschema:"minimum=0,maximum=1"`
	Findings   []string `json:"findings" jsonschema:"description=Concrete findings supporting the verdict"`
	Reasoning  string   `json:"reasoning"`
}

// Query is what an invoker sends to a single agent.
type Query struct {
	Text     string    `json:"text"`
	Domain   string    `json:"domain"`
	Verdicts []Verdict `json:"verdicts"`
}
