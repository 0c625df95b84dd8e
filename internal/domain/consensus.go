package domain

import "fmt"

// ConsensusMode selects how agent verdicts are reduced to one result.
type ConsensusMode string

const (
	ModeMajority     ConsensusMode = "majority"
	ModeConservative ConsensusMode = "conservative"
	ModeUnion        ConsensusMode = "union"
	ModeDiversity    ConsensusMode = "diversity"
)

var validModes = map[ConsensusMode]bool{
	ModeMajority:     true,
	ModeConservative: true,
	ModeUnion:        true,
	ModeDiversity:    true,
}

func (m ConsensusMode) IsValid() bool {
	return validModes[m]
}

func ParseConsensusMode(s string) (ConsensusMode, error) {
	m := ConsensusMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: unknown consensus mode %q (valid options: majority, conservative, union, diversity)", ErrInvalidConfig, s)
	}
	return m, nil
}

type AgentVerdict struct {
	AgentID    string  `json:"agent_id"`
	Verdict    Verdict `json:"verdict"`
	Confidence float64 `json:"confidence"`
}

type ConsensusResult struct {
	Verdict            Verdict          `json:"verdict"`
	Confidence         float64          `json:"confidence"`
	Method             ConsensusMode    `json:"method"`
	EscalationTriggers int              `json:"escalation_triggers"`
	QuorumPenalty      bool             `json:"quorum_penalty"`
	AgentVerdicts      []AgentVerdict   `json:"agent_verdicts,omitempty"`
	Findings           []FindingCluster `json:"findings"`
}
