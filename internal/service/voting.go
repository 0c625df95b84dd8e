package service

import (
	"math"
	"sort"
	"strings"

	"github.com/Harshitk-cp/concord/internal/domain"
	"go.uber.org/zap"
)

const tieEpsilon = 1e-9

// Aggregator reduces agent verdicts to a single ConsensusResult.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates a new consensus aggregator.
func NewAggregator(logger *zap.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

type verdictTally struct {
	verdict domain.Verdict
	weight  float64
	confSum float64
	count   int
}

func (t verdictTally) meanConfidence() float64 {
	if t.count == 0 {
		return 0
	}
	return t.confSum / float64(t.count)
}

// Aggregate computes the consensus for one run. results must contain one
// entry per dispatched agent, errored ones included, in dispatch order.
func (a *Aggregator) Aggregate(results []domain.AgentResult, clusters []domain.FindingCluster, profile *domain.DomainWeightProfile, mode domain.ConsensusMode, threshold float64) domain.ConsensusResult {
	var valid []domain.AgentResult
	for _, r := range results {
		if r.Valid() {
			valid = append(valid, r)
		}
	}

	n := len(results)
	out := domain.ConsensusResult{
		Method:   mode,
		Findings: []domain.FindingCluster{},
	}

	if len(valid) == 0 {
		out.Verdict = domain.VerdictNoConsensus
		out.Confidence = 0
		out.QuorumPenalty = n > 0
		a.logger.Warn("no valid agent results", zap.Int("dispatched", n))
		return out
	}

	switch mode {
	case domain.ModeConservative:
		if verdict, conf, triggers := escalate(valid, profile); triggers > 0 {
			out.Verdict, out.Confidence, out.EscalationTriggers = verdict, conf, triggers
			a.logger.Info("consensus escalated",
				zap.String("verdict", string(verdict)),
				zap.Int("triggers", triggers))
		} else {
			out.Verdict, out.Confidence = weightedMajority(valid, profile)
		}
		out.Findings = corroborated(clusters, len(valid), threshold)

	case domain.ModeUnion:
		out.Verdict, out.Confidence = weightedMajority(valid, profile)
		out.Findings = append(out.Findings, clusters...)

	case domain.ModeDiversity:
		out.Verdict = domain.VerdictNoForcedConsensus
		out.Confidence = agreementSpread(valid)
		out.AgentVerdicts = make([]domain.AgentVerdict, 0, len(valid))
		for _, r := range valid {
			out.AgentVerdicts = append(out.AgentVerdicts, domain.AgentVerdict{
				AgentID:    r.AgentID,
				Verdict:    r.Verdict,
				Confidence: r.Confidence,
			})
		}
		out.Findings = append(out.Findings, clusters...)

	default:
		out.Verdict, out.Confidence = weightedMajority(valid, profile)
		out.Findings = corroborated(clusters, len(valid), threshold)
	}

	// Tolerate up to floor((n-1)/3) failed agents before penalizing.
	failed := n - len(valid)
	if failed > (n-1)/3 {
		out.Confidence *= float64(len(valid)) / float64(n)
		out.QuorumPenalty = true
		a.logger.Warn("quorum penalty applied",
			zap.Error(domain.ErrInsufficientQuorum),
			zap.Int("failed", failed),
			zap.Int("dispatched", n))
	}
	out.Confidence = roundConfidence(out.Confidence)
	return out
}

// EffectiveWeight is the voting weight of a result under a domain profile.
func EffectiveWeight(r domain.AgentResult, profile *domain.DomainWeightProfile) float64 {
	w := r.Weight
	if w <= 0 {
		w = 1
	}
	return w * profile.Multiplier(r.Provider)
}

func weightedMajority(valid []domain.AgentResult, profile *domain.DomainWeightProfile) (domain.Verdict, float64) {
	tallies := make(map[domain.Verdict]*verdictTally)
	total := 0.0
	for _, r := range valid {
		w := EffectiveWeight(r, profile)
		total += w
		t, ok := tallies[r.Verdict]
		if !ok {
			t = &verdictTally{verdict: r.Verdict}
			tallies[r.Verdict] = t
		}
		t.weight += w
		t.confSum += r.Confidence
		t.count++
	}

	ordered := make([]verdictTally, 0, len(tallies))
	for _, t := range tallies {
		ordered = append(ordered, *t)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if math.Abs(a.weight-b.weight) > tieEpsilon {
			return a.weight > b.weight
		}
		if ma, mb := a.meanConfidence(), b.meanConfidence(); math.Abs(ma-mb) > tieEpsilon {
			return ma > mb
		}
		return a.verdict < b.verdict
	})

	winner := ordered[0]
	if total <= 0 {
		return winner.verdict, 0
	}
	return winner.verdict, winner.weight / total
}

// escalate returns the forced verdict, its confidence and the number of
// agents whose verdict or findings reach the profile's escalation severity.
func escalate(valid []domain.AgentResult, profile *domain.DomainWeightProfile) (domain.Verdict, float64, int) {
	if profile == nil || profile.EscalateAt == "" {
		return "", 0, 0
	}
	floor := profile.Rank(profile.EscalateAt)
	if floor < 0 {
		return "", 0, 0
	}

	keywords := make([]string, 0, len(profile.EscalationKeywords))
	for _, kw := range profile.EscalationKeywords {
		if kw = NormalizeText(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	maxLevel := -1
	triggers := 0
	confSum := 0.0
	for _, r := range valid {
		level := -1
		if rank := profile.Rank(r.Verdict); rank >= floor {
			level = rank
		}
		if level < floor && mentionsAny(r.Findings, keywords) {
			level = floor
		}
		if level < 0 {
			continue
		}
		triggers++
		confSum += r.Confidence
		if level > maxLevel {
			maxLevel = level
		}
	}
	if triggers == 0 {
		return "", 0, 0
	}
	return profile.Severity[maxLevel], confSum / float64(triggers), triggers
}

func mentionsAny(findings []string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	for _, f := range findings {
		padded := " " + NormalizeText(f) + " "
		for _, kw := range keywords {
			if strings.Contains(padded, " "+kw+" ") {
				return true
			}
		}
	}
	return false
}

// agreementSpread is 1 minus the normalized number of distinct verdicts.
func agreementSpread(valid []domain.AgentResult) float64 {
	if len(valid) <= 1 {
		return 1
	}
	distinct := make(map[domain.Verdict]bool)
	for _, r := range valid {
		distinct[r.Verdict] = true
	}
	return 1 - float64(len(distinct)-1)/float64(len(valid)-1)
}

func corroborated(clusters []domain.FindingCluster, validVotes int, threshold float64) []domain.FindingCluster {
	required := RequiredSources(validVotes, threshold)
	out := []domain.FindingCluster{}
	for _, c := range clusters {
		if c.SourceCount >= required {
			out = append(out, c)
		}
	}
	return out
}

// RequiredSources is the corroboration count a cluster needs to count as
// agreed or disputed: ceil(validVotes*threshold), never below two.
func RequiredSources(validVotes int, threshold float64) int {
	required := int(math.Ceil(float64(validVotes)*threshold - tieEpsilon))
	if required < 2 {
		required = 2
	}
	return required
}

func roundConfidence(c float64) float64 {
	return math.Round(ClampConfidence(c)*1e4) / 1e4
}
