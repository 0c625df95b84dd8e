package domain

// ClusterMember is one original finding folded into a cluster.
type ClusterMember struct {
	AgentID      string  `json:"agent_id"`
	OriginalText string  `json:"original_text"`
	Confidence   float64 `json:"confidence"`
}

// FindingCluster groups near-duplicate findings reported across agents.
type FindingCluster struct {
	CanonicalText string          `json:"canonical_text"`
	Members       []ClusterMember `json:"member_findings"`
	SourceCount   int             `json:"source_count"`
	AvgConfidence float64         `json:"avg_confidence"`
}

// AgentIDs returns the distinct contributing agents in member order.
func (c FindingCluster) AgentIDs() []string {
	seen := make(map[string]bool, len(c.Members))
	var ids []string
	for _, m := range c.Members {
		if !seen[m.AgentID] {
			seen[m.AgentID] = true
			ids = append(ids, m.AgentID)
		}
	}
	return ids
}

// AgreementMap partitions clusters by corroboration and verdict consistency.
type AgreementMap struct {
	Agreed   []FindingCluster `json:"agreed"`
	Disputed []FindingCluster `json:"disputed"`
	Unique   []FindingCluster `json:"unique"`
}

type Statistics struct {
	TotalAgents      int `json:"total_agents"`
	ValidVotes       int `json:"valid_votes"`
	ErrorAgents      int `json:"error_agents"`
	TotalFindings    int `json:"total_findings"`
	FindingClusters  int `json:"finding_clusters"`
	AgreedFindings   int `json:"agreed_findings"`
	DisputedFindings int `json:"disputed_findings"`
	UniqueFindings   int `json:"unique_findings"`
}
