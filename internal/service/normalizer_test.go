package service

import (
	"strings"
	"testing"

	"github.com/Harshitk-cp/concord/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer(securityProfile())
	agent := domain.AgentConfig{ID: "a1", Provider: "openai"}

	tests := []struct {
		name        string
		raw         string
		wantVerdict domain.Verdict
		wantConf    float64
		wantFinds   []string
		wantErr     string
	}{
		{
			name:        "plain json",
			raw:         `{"verdict":"VULNERABLE","confidence":0.9,"findings":["SQL injection in login"],"reasoning":"unsanitized input"}`,
			wantVerdict: "VULNERABLE",
			wantConf:    0.9,
			wantFinds:   []string{"SQL injection in login"},
		},
		{
			name:        "markdown fences and prose",
			raw:         "Here is my analysis:\n```json\n{\"verdict\":\"safe\",\"confidence\":\"0.7\",\"findings\":[]}\n```",
			wantVerdict: "SAFE",
			wantConf:    0.7,
			wantFinds:   []string{},
		},
		{
			name:        "finding objects and nested result",
			raw:         `{"result":{"verdict":"critical risk","confidence":1.005},"findings":[{"description":"RCE via upload"},{"title":"Weak TLS"},"  ",42]}`,
			wantVerdict: "CRITICAL_RISK",
			wantConf:    1,
			wantFinds:   []string{"RCE via upload", "Weak TLS"},
		},
		{
			name:    "not json",
			raw:     "I think it is fine.",
			wantErr: "no JSON object",
		},
		{
			name:    "missing verdict",
			raw:     `{"confidence":0.5}`,
			wantErr: "missing verdict",
		},
		{
			name:    "missing confidence",
			raw:     `{"verdict":"SAFE"}`,
			wantErr: "missing confidence",
		},
		{
			name:    "confidence out of range",
			raw:     `{"verdict":"SAFE","confidence":85}`,
			wantErr: "outside [0,1]",
		},
		{
			name:    "verdict outside domain",
			raw:     `{"verdict":"MAYBE","confidence":0.5}`,
			wantErr: "not allowed",
		},
		{
			name:    "truncated json",
			raw:     `{"verdict":"SAFE","confidence":0.5,"findings":["a"}`,
			wantErr: "no JSON object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(agent, tt.raw)
			assert.Equal(t, "a1", got.AgentID)
			assert.Equal(t, "openai", got.Provider)

			if tt.wantErr != "" {
				assert.Equal(t, domain.VerdictError, got.Verdict)
				assert.Zero(t, got.Confidence)
				assert.True(t, strings.HasPrefix(got.Error, "malformed output"), got.Error)
				assert.Contains(t, got.Error, tt.wantErr)
				assert.False(t, got.Valid())
				return
			}
			assert.Empty(t, got.Error)
			assert.Equal(t, tt.wantVerdict, got.Verdict)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
			assert.Equal(t, tt.wantFinds, got.Findings)
		})
	}
}

func TestNormalizer_ReasoningAliases(t *testing.T) {
	n := NewNormalizer(securityProfile())
	got := n.Normalize(domain.AgentConfig{ID: "a"}, `{"verdict":"SAFE","confidence":0.4,"rationale":"  looks fine "}`)
	assert.Equal(t, "looks fine", got.Reasoning)
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, ClampConfidence(-0.2))
	assert.Equal(t, 1.0, ClampConfidence(1.2))
	assert.Equal(t, 0.3, ClampConfidence(0.3))
}
