package domain

// ConsensusRequest is the engine input accepted on stdin and over HTTP.
type ConsensusRequest struct {
	Query          string        `json:"query"`
	Agents         []AgentConfig `json:"agents"`
	Domain         string        `json:"domain"`
	Threshold      *float64      `json:"threshold,omitempty"`
	Mode           ConsensusMode `json:"mode,omitempty"`
	TimeoutSeconds float64       `json:"timeout_seconds,omitempty"`
}

// ConsensusResponse is the engine output. An orchestrate-only response
// carries AgentResults and may be fed back as input to the aggregate stage.
type ConsensusResponse struct {
	RunID        string           `json:"run_id"`
	Query        string           `json:"query"`
	Domain       string           `json:"domain"`
	Mode         ConsensusMode    `json:"mode,omitempty"`
	Threshold    *float64         `json:"threshold,omitempty"`
	Cancelled    bool             `json:"cancelled"`
	Dispatched   int              `json:"dispatched"`
	AgentResults []AgentResult    `json:"agent_results"`
	Consensus    *ConsensusResult `json:"consensus,omitempty"`
	AgreementMap *AgreementMap    `json:"agreement_map,omitempty"`
	Statistics   *Statistics      `json:"statistics,omitempty"`
}

// ResultSet rebuilds the orchestrator fan-in from a response.
func (r *ConsensusResponse) ResultSet() *AgentResultSet {
	dispatched := r.Dispatched
	if dispatched < len(r.AgentResults) {
		dispatched = len(r.AgentResults)
	}
	return &AgentResultSet{
		RunID:      r.RunID,
		Query:      r.Query,
		Domain:     r.Domain,
		Results:    r.AgentResults,
		Dispatched: dispatched,
		Cancelled:  r.Cancelled,
	}
}
