package profile

import "github.com/Harshitk-cp/concord/internal/domain"

// Builtin returns the default domain table. Multipliers reflect observed
// provider strength per domain; anything unlisted votes at 1.0.
func Builtin() []domain.DomainWeightProfile {
	return []domain.DomainWeightProfile{
		{
			Name:               "security",
			Verdicts:           []domain.Verdict{"SAFE", "LOW_RISK", "VULNERABLE", "CRITICAL_RISK"},
			Severity:           []domain.Verdict{"SAFE", "LOW_RISK", "VULNERABLE", "CRITICAL_RISK"},
			EscalateAt:         "CRITICAL_RISK",
			EscalationKeywords: []string{"critical", "remote code execution", "rce"},
			Multipliers: map[string]float64{
				"anthropic": 1.2,
				"openai":    1.0,
				"gemini":    0.9,
				"cerebras":  0.8,
			},
			DefaultMode: domain.ModeConservative,
			Threshold:   0.5,
		},
		{
			Name:     "code_review",
			Verdicts: []domain.Verdict{"APPROVE", "NEEDS_CHANGES", "REJECT"},
			Severity: []domain.Verdict{"APPROVE", "NEEDS_CHANGES", "REJECT"},
			Multipliers: map[string]float64{
				"anthropic": 1.1,
				"openai":    1.1,
				"gemini":    1.0,
				"cerebras":  0.9,
			},
			DefaultMode: domain.ModeMajority,
			Threshold:   0.5,
		},
		{
			Name:     "research",
			Verdicts: []domain.Verdict{"SUPPORTED", "PARTIALLY_SUPPORTED", "UNSUPPORTED", "INCONCLUSIVE"},
			Multipliers: map[string]float64{
				"gemini": 1.1,
				"openai": 1.0,
			},
			DefaultMode: domain.ModeUnion,
			Threshold:   0.5,
		},
		{
			Name:        "architecture",
			Verdicts:    []domain.Verdict{"SOUND", "ACCEPTABLE", "RISKY", "UNSOUND"},
			Severity:    []domain.Verdict{"SOUND", "ACCEPTABLE", "RISKY", "UNSOUND"},
			DefaultMode: domain.ModeDiversity,
			Threshold:   0.6,
		},
		{
			Name:        DefaultDomain,
			Verdicts:    []domain.Verdict{"PASS", "WARN", "FAIL"},
			Severity:    []domain.Verdict{"PASS", "WARN", "FAIL"},
			DefaultMode: domain.ModeMajority,
			Threshold:   0.5,
		},
	}
}
