// Package bootstrap assembles the consensus engine from environment config.
// Both the CLI and the HTTP server start from here.
package bootstrap

import (
	"fmt"

	"github.com/Harshitk-cp/concord/internal/config"
	"github.com/Harshitk-cp/concord/internal/llm"
	"github.com/Harshitk-cp/concord/internal/profile"
	"github.com/Harshitk-cp/concord/internal/service"
	"go.uber.org/zap"
)

// Components is the wired object graph.
type Components struct {
	Engine   *service.Engine
	Profiles *profile.Registry
	Invokers *llm.Registry
}

// Build loads domain profiles, registers every configured provider and
// applies the engine tunables from config.
func Build(logger *zap.Logger) (*Components, error) {
	profiles, err := profile.Load(config.DomainProfilesPath())
	if err != nil {
		return nil, fmt.Errorf("load domain profiles: %w", err)
	}
	logger.Info("domain profiles loaded", zap.Strings("domains", profiles.Names()))

	invokers := llm.BuildRegistry(config.APIKeyFor, config.ProviderModel,
		config.ProviderRPS(), config.ProviderBurst(), logger)

	orchestrator := service.NewOrchestrator(invokers, profiles, logger)
	orchestrator.DefaultTimeout = config.AgentTimeout()
	orchestrator.MaxConcurrency = config.MaxConcurrentAgents()

	engine := service.NewEngine(orchestrator,
		service.NewClusterer(service.DefaultSimilarity(), config.SimilarityThreshold()),
		profiles, logger)
	engine.DefaultThreshold = config.AgreementThreshold()

	return &Components{Engine: engine, Profiles: profiles, Invokers: invokers}, nil
}
