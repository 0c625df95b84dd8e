package domain

type Verdict string

const (
	VerdictError             Verdict = "ERROR"
	VerdictNoConsensus       Verdict = "NO_CONSENSUS"
	VerdictNoForcedConsensus Verdict = "NO_FORCED_CONSENSUS"
)

// AgentResult is the normalized outcome of one agent call.
// A non-empty Error always comes with VerdictError.
type AgentResult struct {
	AgentID       string   `json:"agent_id"`
	Provider      string   `json:"provider"`
	Weight        float64  `json:"weight"`
	Verdict       Verdict  `json:"verdict"`
	Confidence    float64  `json:"confidence"`
	Findings      []string `json:"findings"`
	Reasoning     string   `json:"reasoning"`
	Error         string   `json:"error,omitempty"`
	DispatchIndex int      `json:"dispatch_index"`
	DurationMS    int64    `json:"duration_ms"`
}

// Valid reports whether the result carries a usable vote.
func (r AgentResult) Valid() bool {
	return r.Error == "" && r.Verdict != VerdictError
}

// ErrorResult builds an error-flagged result for an agent.
func ErrorResult(agentID, provider, msg string) AgentResult {
	return AgentResult{
		AgentID:    agentID,
		Provider:   provider,
		Verdict:    VerdictError,
		Confidence: 0,
		Findings:   []string{},
		Error:      msg,
	}
}

// AgentResultSet is the fan-in of a single orchestrated run.
// Results are kept in dispatch order regardless of completion order.
type AgentResultSet struct {
	RunID      string        `json:"run_id"`
	Query      string        `json:"query"`
	Domain     string        `json:"domain"`
	Results    []AgentResult `json:"agent_results"`
	Dispatched int           `json:"dispatched"`
	Cancelled  bool          `json:"cancelled"`
}

// Valid returns the results that carry a usable vote, in dispatch order.
func (s *AgentResultSet) Valid() []AgentResult {
	var out []AgentResult
	for _, r := range s.Results {
		if r.Valid() {
			out = append(out, r)
		}
	}
	return out
}
