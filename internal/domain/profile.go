package domain

import (
	"fmt"
	"strings"
)

// DomainWeightProfile scales provider votes for one analysis domain and
// describes the verdict vocabulary of that domain.
// Profiles are loaded once at startup and treated as read-only.
type DomainWeightProfile struct {
	Name string `json:"name" yaml:"name"`
	// Verdicts lists the allowed verdict labels.
	Verdicts []Verdict `json:"verdicts" yaml:"verdicts"`
	// Severity orders verdicts from least to most severe. Verdicts missing
	// from the list rank below every listed one.
	Severity []Verdict `json:"severity" yaml:"severity"`
	// EscalateAt is the lowest severity that forces escalation in
	// conservative mode. Empty disables escalation.
	EscalateAt         Verdict            `json:"escalate_at,omitempty" yaml:"escalate_at"`
	EscalationKeywords []string           `json:"escalation_keywords,omitempty" yaml:"escalation_keywords"`
	Multipliers        map[string]float64 `json:"multipliers" yaml:"multipliers"`
	DefaultMode        ConsensusMode      `json:"default_mode" yaml:"default_mode"`
	Threshold          float64            `json:"threshold" yaml:"threshold"`
}

// Multiplier returns the provider weight multiplier, defaulting to 1.
func (p *DomainWeightProfile) Multiplier(provider string) float64 {
	if p == nil {
		return 1
	}
	if m, ok := p.Multipliers[strings.ToLower(provider)]; ok && m > 0 {
		return m
	}
	return 1
}

func (p *DomainWeightProfile) Allows(v Verdict) bool {
	for _, allowed := range p.Verdicts {
		if allowed == v {
			return true
		}
	}
	return false
}

// Rank returns the severity rank of v, or -1 when v is unranked.
func (p *DomainWeightProfile) Rank(v Verdict) int {
	for i, s := range p.Severity {
		if s == v {
			return i
		}
	}
	return -1
}

// Validate checks the internal consistency of the profile.
func (p *DomainWeightProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: profile name is required", ErrInvalidConfig)
	}
	if len(p.Verdicts) == 0 {
		return fmt.Errorf("%w: profile %s: at least one verdict is required", ErrInvalidConfig, p.Name)
	}
	for _, v := range p.Verdicts {
		switch v {
		case VerdictError, VerdictNoConsensus, VerdictNoForcedConsensus, "":
			return fmt.Errorf("%w: profile %s: reserved verdict %q", ErrInvalidConfig, p.Name, v)
		}
	}
	for _, s := range p.Severity {
		if !p.Allows(s) {
			return fmt.Errorf("%w: profile %s: severity entry %q is not an allowed verdict", ErrInvalidConfig, p.Name, s)
		}
	}
	if p.EscalateAt != "" && p.Rank(p.EscalateAt) < 0 {
		return fmt.Errorf("%w: profile %s: escalate_at %q must appear in severity", ErrInvalidConfig, p.Name, p.EscalateAt)
	}
	for provider, m := range p.Multipliers {
		if m <= 0 {
			return fmt.Errorf("%w: profile %s: multiplier for %s must be > 0", ErrInvalidConfig, p.Name, provider)
		}
	}
	if p.DefaultMode != "" && !p.DefaultMode.IsValid() {
		return fmt.Errorf("%w: profile %s: unknown default_mode %q", ErrInvalidConfig, p.Name, p.DefaultMode)
	}
	if p.Threshold < 0 || p.Threshold > 1 {
		return fmt.Errorf("%w: profile %s: threshold must be within [0,1]", ErrInvalidConfig, p.Name)
	}
	return nil
}

// ProfileSource resolves a domain name to its weight profile.
type ProfileSource interface {
	Get(domain string) (*DomainWeightProfile, bool)
	Names() []string
}
