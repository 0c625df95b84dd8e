package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() *DomainWeightProfile {
	return &DomainWeightProfile{
		Name:        "security",
		Verdicts:    []Verdict{"SAFE", "VULNERABLE", "CRITICAL_RISK"},
		Severity:    []Verdict{"SAFE", "VULNERABLE", "CRITICAL_RISK"},
		EscalateAt:  "CRITICAL_RISK",
		Multipliers: map[string]float64{"anthropic": 1.2},
		DefaultMode: ModeConservative,
		Threshold:   0.5,
	}
}

func TestDomainWeightProfile_Validate(t *testing.T) {
	require.NoError(t, validProfile().Validate())

	tests := []struct {
		name   string
		mutate func(*DomainWeightProfile)
	}{
		{"missing name", func(p *DomainWeightProfile) { p.Name = "" }},
		{"no verdicts", func(p *DomainWeightProfile) { p.Verdicts = nil }},
		{"reserved verdict", func(p *DomainWeightProfile) { p.Verdicts = append(p.Verdicts, VerdictError) }},
		{"severity outside verdicts", func(p *DomainWeightProfile) { p.Severity = append(p.Severity, "UNKNOWN") }},
		{"escalate_at unranked", func(p *DomainWeightProfile) { p.Severity = p.Severity[:2] }},
		{"non-positive multiplier", func(p *DomainWeightProfile) { p.Multipliers["openai"] = 0 }},
		{"bad default mode", func(p *DomainWeightProfile) { p.DefaultMode = "loudest" }},
		{"threshold above one", func(p *DomainWeightProfile) { p.Threshold = 1.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidConfig)
		})
	}
}

func TestDomainWeightProfile_Multiplier(t *testing.T) {
	p := validProfile()
	assert.Equal(t, 1.2, p.Multiplier("Anthropic"))
	assert.Equal(t, 1.0, p.Multiplier("openai"))

	var nilProfile *DomainWeightProfile
	assert.Equal(t, 1.0, nilProfile.Multiplier("anthropic"))
}

func TestDomainWeightProfile_Rank(t *testing.T) {
	p := validProfile()
	assert.Equal(t, 0, p.Rank("SAFE"))
	assert.Equal(t, 2, p.Rank("CRITICAL_RISK"))
	assert.Equal(t, -1, p.Rank("MAYBE"))
	assert.True(t, p.Allows("VULNERABLE"))
	assert.False(t, p.Allows("vulnerable"))
}

func TestParseConsensusMode(t *testing.T) {
	m, err := ParseConsensusMode("diversity")
	require.NoError(t, err)
	assert.Equal(t, ModeDiversity, m)

	_, err = ParseConsensusMode("Majority")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAgentResult_Valid(t *testing.T) {
	assert.True(t, AgentResult{Verdict: "SAFE"}.Valid())
	assert.False(t, ErrorResult("a", "openai", "timeout").Valid())
	assert.False(t, AgentResult{Verdict: "SAFE", Error: "boom"}.Valid())
}
