package render

import (
	"bytes"
	"testing"

	"github.com/Harshitk-cp/concord/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	cluster := domain.FindingCluster{
		CanonicalText: "SQL injection in the login form",
		Members: []domain.ClusterMember{
			{AgentID: "claude", OriginalText: "SQL injection in login form", Confidence: 0.9},
			{AgentID: "gpt", OriginalText: "SQL injection in the login form", Confidence: 0.8},
		},
		SourceCount: 2,
	}
	resp := &domain.ConsensusResponse{
		RunID:  "run-42",
		Domain: "security",
		AgentResults: []domain.AgentResult{
			{AgentID: "claude", Provider: "anthropic", Verdict: "VULNERABLE", Confidence: 0.9},
			{AgentID: "gpt", Provider: "openai", Verdict: "VULNERABLE", Confidence: 0.8},
			domain.ErrorResult("gemini", "gemini", "timeout"),
		},
		Consensus: &domain.ConsensusResult{
			Verdict:       "VULNERABLE",
			Confidence:    0.5,
			Method:        domain.ModeMajority,
			QuorumPenalty: true,
		},
		AgreementMap: &domain.AgreementMap{Agreed: []domain.FindingCluster{cluster}},
		Statistics:   &domain.Statistics{TotalAgents: 3, ValidVotes: 2, ErrorAgents: 1, TotalFindings: 2, FindingClusters: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, resp))
	out := buf.String()

	assert.Contains(t, out, "VULNERABLE")
	assert.Contains(t, out, "confidence=0.50")
	assert.Contains(t, out, "quorum penalty")
	assert.Contains(t, out, "run-42")
	assert.Contains(t, out, "timeout")
	assert.Contains(t, out, "SQL injection in the login form")
	assert.Contains(t, out, "claude, gpt")
	assert.Contains(t, out, "3 agents, 2 valid, 1 errored")
}

func TestSummary_OrchestrateOnly(t *testing.T) {
	resp := &domain.ConsensusResponse{
		Domain: "general",
		AgentResults: []domain.AgentResult{
			{AgentID: "a", Provider: "mock", Verdict: "PASS", Confidence: 0.5},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, resp))
	assert.Contains(t, buf.String(), "PASS")
	assert.NotContains(t, buf.String(), "Agreed")
}
