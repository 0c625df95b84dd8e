package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Harshitk-cp/concord/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultAgentTimeout   = 120 * time.Second
	DefaultMaxConcurrency = 8
)

// Orchestrator fans one query out to every configured agent and fans the
// results back in. Agents are isolated: one failure never cancels another.
type Orchestrator struct {
	invoker  domain.AgentInvoker
	profiles domain.ProfileSource
	logger   *zap.Logger

	DefaultTimeout time.Duration
	MaxConcurrency int
}

// NewOrchestrator creates an orchestrator with the default per-agent timeout
// and concurrency limit.
func NewOrchestrator(invoker domain.AgentInvoker, profiles domain.ProfileSource, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		invoker:        invoker,
		profiles:       profiles,
		logger:         logger,
		DefaultTimeout: DefaultAgentTimeout,
		MaxConcurrency: DefaultMaxConcurrency,
	}
}

// Validate checks a run configuration without dispatching anything.
func (o *Orchestrator) Validate(query string, agents []domain.AgentConfig, domainName string) (*domain.DomainWeightProfile, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidConfig)
	}
	if len(agents) == 0 {
		return nil, fmt.Errorf("%w: at least one agent is required", domain.ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(agents))
	for i, a := range agents {
		if strings.TrimSpace(a.ID) == "" {
			return nil, fmt.Errorf("%w: agent %d: id is required", domain.ErrInvalidConfig, i)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("%w: duplicate agent id %q", domain.ErrInvalidConfig, a.ID)
		}
		seen[a.ID] = true
		if strings.TrimSpace(a.Provider) == "" {
			return nil, fmt.Errorf("%w: agent %s: provider is required", domain.ErrInvalidConfig, a.ID)
		}
		if !(a.Weight > 0) || math.IsInf(a.Weight, 0) {
			return nil, fmt.Errorf("%w: agent %s: weight must be > 0", domain.ErrInvalidConfig, a.ID)
		}
	}
	profile, ok := o.profiles.Get(domainName)
	if !ok {
		return nil, fmt.Errorf("%w: unknown domain %q", domain.ErrInvalidConfig, domainName)
	}
	return profile, nil
}

type indexedResult struct {
	index  int
	result domain.AgentResult
}

// Run dispatches query to every agent concurrently and waits until each
// one has answered, failed or timed out. If ctx is cancelled first, Run
// returns at once with the results received so far and Cancelled set.
func (o *Orchestrator) Run(ctx context.Context, query string, agents []domain.AgentConfig, domainName string, timeout time.Duration) (*domain.AgentResultSet, error) {
	profile, err := o.Validate(query, agents, domainName)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = o.DefaultTimeout
	}

	n := len(agents)
	set := &domain.AgentResultSet{
		RunID:      uuid.NewString(),
		Query:      query,
		Domain:     profile.Name,
		Results:    make([]domain.AgentResult, n),
		Dispatched: n,
	}
	q := domain.Query{Text: query, Domain: profile.Name, Verdicts: profile.Verdicts}
	normalizer := NewNormalizer(profile)

	o.logger.Info("dispatching agents",
		zap.String("run_id", set.RunID),
		zap.String("domain", profile.Name),
		zap.Int("agents", n),
		zap.Duration("timeout", timeout))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so late senders never block after Run has returned.
	done := make(chan indexedResult, n)
	go func() {
		var g errgroup.Group
		if o.MaxConcurrency > 0 {
			g.SetLimit(o.MaxConcurrency)
		}
		for i, agent := range agents {
			if runCtx.Err() != nil {
				done <- indexedResult{i, o.stamp(cancelledResult(agent), i, agent, 0)}
				continue
			}
			g.Go(func() error {
				done <- indexedResult{i, o.dispatch(runCtx, i, agent, q, normalizer, timeout)}
				return nil
			})
		}
		_ = g.Wait()
	}()

	filled := make([]bool, n)
	for received := 0; received < n; {
		select {
		case r := <-done:
			set.Results[r.index] = r.result
			filled[r.index] = true
			received++
		case <-ctx.Done():
			set.Cancelled = true
			for i, ok := range filled {
				if !ok {
					set.Results[i] = o.stamp(cancelledResult(agents[i]), i, agents[i], 0)
				}
			}
			o.logger.Warn("run cancelled",
				zap.String("run_id", set.RunID),
				zap.Int("received", received),
				zap.Int("dispatched", n))
			return set, nil
		}
	}
	// Every slot may have drained as "cancelled" before ctx.Done was observed.
	if ctx.Err() != nil {
		set.Cancelled = true
	}

	o.logger.Info("agents settled",
		zap.String("run_id", set.RunID),
		zap.Int("valid", len(set.Valid())),
		zap.Int("dispatched", n))
	return set, nil
}

type invokeOutcome struct {
	raw string
	err error
}

func (o *Orchestrator) dispatch(ctx context.Context, index int, agent domain.AgentConfig, q domain.Query, normalizer *Normalizer, timeout time.Duration) domain.AgentResult {
	start := time.Now()
	agentCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	outcome := make(chan invokeOutcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				outcome <- invokeOutcome{err: fmt.Errorf("%w: invoker panic: %v", domain.ErrAgentProvider, p)}
			}
		}()
		raw, err := o.invoker.Invoke(agentCtx, agent, q)
		outcome <- invokeOutcome{raw: raw, err: err}
	}()

	var result domain.AgentResult
	select {
	case out := <-outcome:
		switch {
		case out.err == nil:
			result = normalizer.Normalize(agent, out.raw)
		case ctx.Err() != nil:
			result = cancelledResult(agent)
		case errors.Is(agentCtx.Err(), context.DeadlineExceeded):
			result = domain.ErrorResult(agent.ID, agent.Provider, domain.ErrAgentTimeout.Error())
		default:
			result = domain.ErrorResult(agent.ID, agent.Provider, out.err.Error())
		}
	case <-agentCtx.Done():
		if ctx.Err() != nil {
			result = cancelledResult(agent)
		} else {
			result = domain.ErrorResult(agent.ID, agent.Provider, domain.ErrAgentTimeout.Error())
		}
	}

	result = o.stamp(result, index, agent, time.Since(start))
	if result.Error != "" {
		o.logger.Warn("agent failed",
			zap.String("agent_id", agent.ID),
			zap.String("provider", agent.Provider),
			zap.String("error", result.Error),
			zap.Int64("duration_ms", result.DurationMS))
	} else {
		o.logger.Debug("agent answered",
			zap.String("agent_id", agent.ID),
			zap.String("verdict", string(result.Verdict)),
			zap.Float64("confidence", result.Confidence),
			zap.Int("findings", len(result.Findings)),
			zap.Int64("duration_ms", result.DurationMS))
	}
	return result
}

func (o *Orchestrator) stamp(r domain.AgentResult, index int, agent domain.AgentConfig, elapsed time.Duration) domain.AgentResult {
	r.AgentID = agent.ID
	r.Provider = agent.Provider
	r.Weight = agent.Weight
	r.DispatchIndex = index
	r.DurationMS = elapsed.Milliseconds()
	return r
}

func cancelledResult(agent domain.AgentConfig) domain.AgentResult {
	return domain.ErrorResult(agent.ID, agent.Provider, domain.ErrAgentCancelled.Error())
}
