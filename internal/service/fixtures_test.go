package service

import (
	"github.com/Harshitk-cp/concord/internal/domain"
)

func securityProfile() *domain.DomainWeightProfile {
	return &domain.DomainWeightProfile{
		Name:               "security",
		Verdicts:           []domain.Verdict{"SAFE", "VULNERABLE", "CRITICAL_RISK"},
		Severity:           []domain.Verdict{"SAFE", "VULNERABLE", "CRITICAL_RISK"},
		EscalateAt:         "CRITICAL_RISK",
		EscalationKeywords: []string{"critical", "rce"},
		DefaultMode:        domain.ModeConservative,
		Threshold:          0.5,
	}
}

type profileTable map[string]*domain.DomainWeightProfile

func (t profileTable) Get(name string) (*domain.DomainWeightProfile, bool) {
	p, ok := t[name]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

func (t profileTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	return names
}

func testProfiles() profileTable {
	return profileTable{"security": securityProfile()}
}

func vote(id string, weight float64, verdict domain.Verdict, confidence float64, findings ...string) domain.AgentResult {
	if findings == nil {
		findings = []string{}
	}
	return domain.AgentResult{
		AgentID:    id,
		Provider:   "mock",
		Weight:     weight,
		Verdict:    verdict,
		Confidence: confidence,
		Findings:   findings,
	}
}

func failed(id string) domain.AgentResult {
	r := domain.ErrorResult(id, "mock", "timeout")
	r.Weight = 1
	return r
}
