package service

import (
	"strings"

	"github.com/Harshitk-cp/concord/internal/domain"
)

// ReportBuilder partitions clusters into an agreement map and computes
// run statistics.
type ReportBuilder struct{}

// NewReportBuilder creates a stateless report builder.
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{}
}

func (b *ReportBuilder) Build(results []domain.AgentResult, clusters []domain.FindingCluster, threshold float64) (domain.AgreementMap, domain.Statistics) {
	verdicts := make(map[string]domain.Verdict, len(results))
	stats := domain.Statistics{TotalAgents: len(results)}
	for _, r := range results {
		if !r.Valid() {
			continue
		}
		stats.ValidVotes++
		verdicts[r.AgentID] = r.Verdict
		for _, f := range r.Findings {
			if strings.TrimSpace(f) != "" {
				stats.TotalFindings++
			}
		}
	}
	stats.ErrorAgents = stats.TotalAgents - stats.ValidVotes

	required := RequiredSources(stats.ValidVotes, threshold)
	am := domain.AgreementMap{
		Agreed:   []domain.FindingCluster{},
		Disputed: []domain.FindingCluster{},
		Unique:   []domain.FindingCluster{},
	}
	for _, c := range clusters {
		switch {
		case c.SourceCount < required:
			am.Unique = append(am.Unique, c)
		case sameVerdict(c, verdicts):
			am.Agreed = append(am.Agreed, c)
		default:
			am.Disputed = append(am.Disputed, c)
		}
	}

	stats.FindingClusters = len(clusters)
	stats.AgreedFindings = len(am.Agreed)
	stats.DisputedFindings = len(am.Disputed)
	stats.UniqueFindings = len(am.Unique)
	return am, stats
}

func sameVerdict(c domain.FindingCluster, verdicts map[string]domain.Verdict) bool {
	var first domain.Verdict
	for i, m := range c.Members {
		v := verdicts[m.AgentID]
		if i == 0 {
			first = v
			continue
		}
		if v != first {
			return false
		}
	}
	return true
}
