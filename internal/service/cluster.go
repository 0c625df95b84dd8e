package service

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Harshitk-cp/concord/internal/domain"
)

// DefaultSimilarityThreshold is the tunable boundary at or above which two
// findings are treated as the same observation.
const DefaultSimilarityThreshold = 0.85

// Clusterer groups near-duplicate findings across agents. It is pure and
// deterministic: the same results in the same order give the same clusters.
type Clusterer struct {
	Similarity Similarity
	Threshold  float64
}

// NewClusterer creates a clusterer. A nil similarity selects
// DefaultSimilarity and an out-of-range threshold selects
// DefaultSimilarityThreshold.
func NewClusterer(sim Similarity, threshold float64) *Clusterer {
	if sim == nil {
		sim = DefaultSimilarity()
	}
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	return &Clusterer{Similarity: sim, Threshold: threshold}
}

type pooledFinding struct {
	agentID    string
	text       string
	normalized string
	confidence float64
}

// Cluster pools the findings of every non-error result, in result order,
// and groups them by single-link similarity: two findings share a cluster
// whenever a chain of pairwise matches connects them, so the partition
// does not depend on the order findings arrive in.
//
// A cluster holds at most one member per agent. An agent's own
// near-duplicates fold into its first member, so SourceCount counts
// corroborating agents.
func (c *Clusterer) Cluster(results []domain.AgentResult) []domain.FindingCluster {
	pool := c.pool(results)
	if len(pool) == 0 {
		return []domain.FindingCluster{}
	}

	parent := make([]int, len(pool))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		// The earliest finding stays root so cluster order follows dispatch order.
		if rb < ra {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	for i := range pool {
		for j := i + 1; j < len(pool); j++ {
			if find(i) == find(j) {
				continue
			}
			if c.Similarity.Score(pool[i].normalized, pool[j].normalized) >= c.Threshold {
				union(i, j)
			}
		}
	}

	groups := make(map[int][]int)
	for i := range pool {
		root := find(i)
		groups[root] = append(groups[root], i)
	}
	roots := make([]int, 0, len(groups))
	for root := range groups {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	clusters := make([]domain.FindingCluster, 0, len(roots))
	for _, root := range roots {
		clusters = append(clusters, buildCluster(pool, groups[root]))
	}
	return clusters
}

func (c *Clusterer) pool(results []domain.AgentResult) []pooledFinding {
	var pool []pooledFinding
	for _, r := range results {
		if !r.Valid() {
			continue
		}
		for _, text := range r.Findings {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			pool = append(pool, pooledFinding{
				agentID:    r.AgentID,
				text:       text,
				normalized: NormalizeText(text),
				confidence: r.Confidence,
			})
		}
	}
	return pool
}

// buildCluster turns the pool indexes of one component, ascending, into a
// cluster. The canonical text is the longest finding; the earliest wins ties.
func buildCluster(pool []pooledFinding, indexes []int) domain.FindingCluster {
	fc := domain.FindingCluster{Members: []domain.ClusterMember{}}
	seen := make(map[string]bool)
	canonLen := -1
	sum := 0.0

	for _, i := range indexes {
		f := pool[i]
		if n := utf8.RuneCountInString(f.text); n > canonLen {
			fc.CanonicalText = f.text
			canonLen = n
		}
		if seen[f.agentID] {
			continue
		}
		seen[f.agentID] = true
		fc.Members = append(fc.Members, domain.ClusterMember{
			AgentID:      f.agentID,
			OriginalText: f.text,
			Confidence:   f.confidence,
		})
		sum += f.confidence
	}

	fc.SourceCount = len(fc.Members)
	fc.AvgConfidence = roundConfidence(sum / float64(fc.SourceCount))
	return fc
}
