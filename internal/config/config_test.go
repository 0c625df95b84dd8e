package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "AGENT_TIMEOUT", "MAX_CONCURRENT_AGENTS", "SIMILARITY_THRESHOLD", "AGREEMENT_THRESHOLD", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	assert.Equal(t, ":8080", ServerAddr())
	assert.Equal(t, 120*time.Second, AgentTimeout())
	assert.Equal(t, 8, MaxConcurrentAgents())
	assert.Equal(t, 0.85, SimilarityThreshold())
	assert.Equal(t, 0.5, AgreementThreshold())
	assert.Equal(t, "info", LogLevel())
}

func TestOverrides(t *testing.T) {
	t.Setenv("AGENT_TIMEOUT", "15s")
	t.Setenv("SIMILARITY_THRESHOLD", "0.9")
	t.Setenv("MAX_CONCURRENT_AGENTS", "3")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	assert.Equal(t, 15*time.Second, AgentTimeout())
	assert.Equal(t, 0.9, SimilarityThreshold())
	assert.Equal(t, 3, MaxConcurrentAgents())
	assert.Equal(t, "gpt-4o", ProviderModel("openai"))
	assert.Equal(t, "", ProviderModel("mock"))
}

func TestOutOfRangeThresholdFallsBack(t *testing.T) {
	t.Setenv("AGREEMENT_THRESHOLD", "1.5")
	assert.Equal(t, 0.5, AgreementThreshold())
}

func TestLoadReadsEnvFileAndSecret(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("LOG_LEVEL=debug\n"), 0o600))
	require.NoError(t, os.WriteFile(envFile+".secret", []byte("ANTHROPIC_API_KEY=sk-test\n"), 0o600))

	t.Setenv("CONCORD_ENV", envFile)
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("ANTHROPIC_API_KEY")
	t.Cleanup(func() {
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("ANTHROPIC_API_KEY")
	})

	require.NoError(t, Load())
	assert.Equal(t, "debug", LogLevel())
	assert.Equal(t, "sk-test", APIKeyFor("anthropic"))
}

func TestLoadSkipsMissingFiles(t *testing.T) {
	t.Setenv("CONCORD_ENV", filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, Load())
}

func TestLoadRejectsMalformedEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "bad.env")
	require.NoError(t, os.WriteFile(envFile, []byte("BAD-KEY=1\n"), 0o600))
	t.Setenv("CONCORD_ENV", envFile)

	err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), envFile)
}
