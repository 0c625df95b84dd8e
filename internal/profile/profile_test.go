package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Harshitk-cp/concord/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinProfilesValidate(t *testing.T) {
	r, err := NewRegistry(Builtin()...)
	require.NoError(t, err)
	assert.Equal(t, []string{"architecture", "code_review", "general", "research", "security"}, r.Names())

	sec, ok := r.Get("Security")
	require.True(t, ok)
	assert.Equal(t, domain.ModeConservative, sec.DefaultMode)
	assert.Equal(t, 1.2, sec.Multiplier("Anthropic"))
	assert.Equal(t, 1.0, sec.Multiplier("unknown"))
}

func TestGetReturnsCopy(t *testing.T) {
	r, err := NewRegistry(Builtin()...)
	require.NoError(t, err)

	p, _ := r.Get("security")
	p.Multipliers["openai"] = 99
	p.Verdicts[0] = "MUTATED"

	again, _ := r.Get("security")
	assert.Equal(t, 1.0, again.Multiplier("openai"))
	assert.Equal(t, domain.Verdict("SAFE"), again.Verdicts[0])
}

func TestLoadOverlay(t *testing.T) {
	doc := `
profiles:
  - name: Security
    verdicts: [safe, vulnerable, critical_risk]
    severity: [safe, vulnerable, critical_risk]
    escalate_at: critical_risk
    multipliers:
      OpenAI: 1.5
    default_mode: majority
  - name: legal
    verdicts: [COMPLIANT, NON_COMPLIANT]
`
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	r, err := Load(path)
	require.NoError(t, err)

	sec, ok := r.Get("security")
	require.True(t, ok)
	assert.Equal(t, domain.ModeMajority, sec.DefaultMode)
	assert.Equal(t, 1.5, sec.Multiplier("openai"))
	assert.Equal(t, domain.Verdict("CRITICAL_RISK"), sec.EscalateAt)

	legal, ok := r.Get("legal")
	require.True(t, ok)
	assert.Equal(t, domain.ModeMajority, legal.DefaultMode)
	assert.True(t, legal.Allows("COMPLIANT"))
}

func TestLoadMissingFileUsesBuiltins(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	_, ok := r.Get(DefaultDomain)
	assert.True(t, ok)
}

func TestInvalidProfileRejected(t *testing.T) {
	_, err := NewRegistry(domain.DomainWeightProfile{
		Name:     "bad",
		Verdicts: []domain.Verdict{"OK", "ERROR"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = NewRegistry(domain.DomainWeightProfile{
		Name:       "bad",
		Verdicts:   []domain.Verdict{"OK", "NOT_OK"},
		Severity:   []domain.Verdict{"OK", "NOT_OK"},
		EscalateAt: "MISSING",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = NewRegistry(domain.DomainWeightProfile{
		Name:        "bad",
		Verdicts:    []domain.Verdict{"OK"},
		Multipliers: map[string]float64{"openai": 0},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
