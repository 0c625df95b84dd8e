package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Harshitk-cp/concord/internal/domain"
	"go.uber.org/zap"
)

// DefaultAgreementThreshold is used when neither the request nor the domain
// profile sets a corroboration threshold.
const DefaultAgreementThreshold = 0.5

// Engine composes the pipeline: orchestrate, then cluster, vote and report.
// The two halves are exposed separately so they can be chained over a pipe.
type Engine struct {
	orchestrator *Orchestrator
	clusterer    *Clusterer
	aggregator   *Aggregator
	reports      *ReportBuilder
	profiles     domain.ProfileSource
	logger       *zap.Logger

	DefaultThreshold float64
}

// NewEngine creates an engine around orchestrator and clusterer. The
// aggregator and report builder are created internally.
func NewEngine(orchestrator *Orchestrator, clusterer *Clusterer, profiles domain.ProfileSource, logger *zap.Logger) *Engine {
	return &Engine{
		orchestrator:     orchestrator,
		clusterer:        clusterer,
		aggregator:       NewAggregator(logger),
		reports:          NewReportBuilder(),
		profiles:         profiles,
		logger:           logger,
		DefaultThreshold: DefaultAgreementThreshold,
	}
}

// Evaluate runs the full pipeline for one request.
func (e *Engine) Evaluate(ctx context.Context, req *domain.ConsensusRequest) (*domain.ConsensusResponse, error) {
	resp, err := e.Orchestrate(ctx, req)
	if err != nil {
		return nil, err
	}
	return e.Reduce(resp)
}

// Orchestrate validates the request and collects agent results only.
func (e *Engine) Orchestrate(ctx context.Context, req *domain.ConsensusRequest) (*domain.ConsensusResponse, error) {
	profile, err := e.orchestrator.Validate(req.Query, req.Agents, req.Domain)
	if err != nil {
		return nil, err
	}
	mode, threshold, err := e.resolvePolicy(profile, req.Mode, req.Threshold)
	if err != nil {
		return nil, err
	}
	if req.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("%w: timeout_seconds must be >= 0", domain.ErrInvalidConfig)
	}
	timeout := time.Duration(req.TimeoutSeconds * float64(time.Second))

	set, err := e.orchestrator.Run(ctx, req.Query, req.Agents, req.Domain, timeout)
	if err != nil {
		return nil, err
	}

	return &domain.ConsensusResponse{
		RunID:        set.RunID,
		Query:        set.Query,
		Domain:       set.Domain,
		Mode:         mode,
		Threshold:    &threshold,
		Cancelled:    set.Cancelled,
		Dispatched:   set.Dispatched,
		AgentResults: set.Results,
	}, nil
}

// Reduce clusters, votes and reports over the agent results carried by in.
// It accepts the output of Orchestrate (or of a previous Reduce).
func (e *Engine) Reduce(in *domain.ConsensusResponse) (*domain.ConsensusResponse, error) {
	profile, ok := e.profiles.Get(in.Domain)
	if !ok {
		return nil, fmt.Errorf("%w: unknown domain %q", domain.ErrInvalidConfig, in.Domain)
	}
	mode, threshold, err := e.resolvePolicy(profile, in.Mode, in.Threshold)
	if err != nil {
		return nil, err
	}

	set := in.ResultSet()
	results, err := sanitize(set.Results, profile)
	if err != nil {
		return nil, err
	}
	results = padMissing(results, set.Dispatched)

	clusters := e.clusterer.Cluster(results)
	consensus := e.aggregator.Aggregate(results, clusters, profile, mode, threshold)
	agreement, stats := e.reports.Build(results, clusters, threshold)

	e.logger.Info("consensus computed",
		zap.String("run_id", in.RunID),
		zap.String("domain", profile.Name),
		zap.String("method", string(mode)),
		zap.String("verdict", string(consensus.Verdict)),
		zap.Float64("confidence", consensus.Confidence),
		zap.Int("valid_votes", stats.ValidVotes),
		zap.Int("error_agents", stats.ErrorAgents),
		zap.Int("clusters", stats.FindingClusters))

	return &domain.ConsensusResponse{
		RunID:        in.RunID,
		Query:        in.Query,
		Domain:       profile.Name,
		Mode:         mode,
		Threshold:    &threshold,
		Cancelled:    in.Cancelled,
		Dispatched:   len(results),
		AgentResults: results,
		Consensus:    &consensus,
		AgreementMap: &agreement,
		Statistics:   &stats,
	}, nil
}

func (e *Engine) resolvePolicy(profile *domain.DomainWeightProfile, mode domain.ConsensusMode, threshold *float64) (domain.ConsensusMode, float64, error) {
	if mode == "" {
		mode = profile.DefaultMode
	}
	if mode == "" {
		mode = domain.ModeMajority
	}
	if !mode.IsValid() {
		return "", 0, fmt.Errorf("%w: unknown consensus mode %q", domain.ErrInvalidConfig, mode)
	}

	var t float64
	switch {
	case threshold != nil:
		t = *threshold
	case profile.Threshold > 0:
		t = profile.Threshold
	default:
		t = e.DefaultThreshold
	}
	if t < 0 || t > 1 {
		return "", 0, fmt.Errorf("%w: threshold must be within [0,1]", domain.ErrInvalidConfig)
	}
	return mode, t, nil
}

// sanitize re-checks results that arrive from outside the orchestrator so
// the reduce stage upholds the same invariants on piped input. Agent ids
// key verdicts and corroboration, so an empty or repeated id is rejected.
func sanitize(in []domain.AgentResult, profile *domain.DomainWeightProfile) ([]domain.AgentResult, error) {
	out := make([]domain.AgentResult, len(in))
	seen := make(map[string]bool, len(in))
	for i, r := range in {
		if strings.TrimSpace(r.AgentID) == "" {
			return nil, fmt.Errorf("%w: agent result %d: agent_id is required", domain.ErrInvalidConfig, i)
		}
		if seen[r.AgentID] {
			return nil, fmt.Errorf("%w: duplicate agent_id %q in agent results", domain.ErrInvalidConfig, r.AgentID)
		}
		seen[r.AgentID] = true
		r.DispatchIndex = i
		if r.Findings == nil {
			r.Findings = []string{}
		}
		switch {
		case r.Error != "" || r.Verdict == domain.VerdictError:
			if r.Error == "" {
				r.Error = "agent reported error"
			}
			r.Verdict = domain.VerdictError
			r.Confidence = 0
		case !profile.Allows(NormalizeVerdict(string(r.Verdict))):
			r = domain.ErrorResult(r.AgentID, r.Provider,
				fmt.Sprintf("%s: verdict %q is not allowed for domain %s", domain.ErrMalformedOutput, r.Verdict, profile.Name))
			r.Weight = in[i].Weight
			r.DispatchIndex = i
			r.DurationMS = in[i].DurationMS
		default:
			r.Verdict = NormalizeVerdict(string(r.Verdict))
			r.Confidence = ClampConfidence(r.Confidence)
			if r.Weight <= 0 {
				r.Weight = 1
			}
		}
		out[i] = r
	}
	return out, nil
}

// padMissing appends cancelled placeholders until results covers every
// dispatched slot. Slots lost in transit still count as dispatched agents.
func padMissing(results []domain.AgentResult, dispatched int) []domain.AgentResult {
	taken := make(map[string]bool, len(results))
	for _, r := range results {
		taken[r.AgentID] = true
	}
	for n := 0; len(results) < dispatched; n++ {
		id := fmt.Sprintf("missing-%d", n)
		if taken[id] {
			continue
		}
		r := domain.ErrorResult(id, "", domain.ErrAgentCancelled.Error())
		r.DispatchIndex = len(results)
		results = append(results, r)
	}
	return results
}
