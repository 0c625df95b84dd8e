package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Harshitk-cp/concord/internal/domain"
	"github.com/Harshitk-cp/concord/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func clearProviderKeys(t *testing.T) {
	for _, key := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "CEREBRAS_API_KEY", "DOMAIN_PROFILES_PATH"} {
		t.Setenv(key, "")
	}
}

func TestBuild_MockOnly(t *testing.T) {
	clearProviderKeys(t)

	c, err := Build(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{llm.ProviderMock}, c.Invokers.Providers())
	assert.Contains(t, c.Profiles.Names(), "security")

	resp, err := c.Engine.Evaluate(context.Background(), &domain.ConsensusRequest{
		Query:  "dry run",
		Domain: "code_review",
		Agents: []domain.AgentConfig{
			{ID: "a", Provider: "mock", Weight: 1},
			{ID: "b", Provider: "MOCK", Weight: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Verdict("APPROVE"), resp.Consensus.Verdict)
	assert.Equal(t, 1.0, resp.Consensus.Confidence)
}

func TestBuild_ProfileOverlayAndKeys(t *testing.T) {
	clearProviderKeys(t)
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
profiles:
  - name: compliance
    verdicts: [COMPLIANT, NON_COMPLIANT]
    default_mode: conservative
`), 0o600))
	t.Setenv("DOMAIN_PROFILES_PATH", path)
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	c, err := Build(zap.NewNop())
	require.NoError(t, err)
	assert.Contains(t, c.Profiles.Names(), "compliance")
	assert.Equal(t, []string{llm.ProviderAnthropic, llm.ProviderMock}, c.Invokers.Providers())
}

func TestBuild_InvalidOverlay(t *testing.T) {
	clearProviderKeys(t)
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  - name: broken\n"), 0o600))
	t.Setenv("DOMAIN_PROFILES_PATH", path)

	_, err := Build(zap.NewNop())
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
