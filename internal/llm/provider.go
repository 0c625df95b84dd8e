package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Harshitk-cp/concord/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Provider constants
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderCerebras  = "cerebras"
	ProviderMock      = "mock"
)

// NewInvoker creates an agent invoker based on the provider name.
// Returns an error if the provider is unknown or the API key is empty (except for mock).
func NewInvoker(provider, apiKey, model string) (domain.AgentInvoker, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIInvoker(apiKey, model, ""), nil

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicInvoker(apiKey, model), nil

	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiInvoker(apiKey, model), nil

	case ProviderCerebras:
		if apiKey == "" {
			return nil, fmt.Errorf("CEREBRAS_API_KEY is required for Cerebras provider")
		}
		return NewCerebrasInvoker(apiKey, model), nil

	case ProviderMock:
		return NewMockInvoker(), nil

	default:
		return nil, fmt.Errorf("unknown provider: %s (valid options: openai, anthropic, gemini, cerebras, mock)", provider)
	}
}

// Registry routes each agent to the invoker of its provider. Every provider
// gets its own rate limiter. Registration must finish before the first Invoke.
type Registry struct {
	invokers map[string]domain.AgentInvoker
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
	logger   *zap.Logger
}

// NewRegistry creates an empty invoker registry. Each registered provider
// gets its own limiter allowing rps calls per second with the given burst.
func NewRegistry(rps float64, burst int, logger *zap.Logger) *Registry {
	return &Registry{
		invokers: make(map[string]domain.AgentInvoker),
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		logger:   logger,
	}
}

func (r *Registry) Register(provider string, inv domain.AgentInvoker) {
	provider = strings.ToLower(provider)
	r.invokers[provider] = inv
	if r.rps > 0 {
		r.limiters[provider] = rate.NewLimiter(r.rps, r.burst)
	}
}

func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.invokers))
	for name := range r.invokers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Invoke(ctx context.Context, agent domain.AgentConfig, query domain.Query) (string, error) {
	provider := strings.ToLower(agent.Provider)
	inv, ok := r.invokers[provider]
	if !ok {
		return "", fmt.Errorf("%w: no invoker configured for provider %q", domain.ErrAgentProvider, agent.Provider)
	}

	if lim := r.limiters[provider]; lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	r.logger.Debug("invoking agent",
		zap.String("agent_id", agent.ID),
		zap.String("provider", provider),
		zap.String("model", agent.Model))

	return inv.Invoke(ctx, agent, query)
}

// BuildRegistry registers every provider whose API key is available plus
// the mock provider. keyFor and modelFor usually come from the config package.
func BuildRegistry(keyFor, modelFor func(provider string) string, rps float64, burst int, logger *zap.Logger) *Registry {
	reg := NewRegistry(rps, burst, logger)
	for _, provider := range []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderCerebras, ProviderMock} {
		inv, err := NewInvoker(provider, keyFor(provider), modelFor(provider))
		if err != nil {
			logger.Debug("provider not configured", zap.String("provider", provider), zap.Error(err))
			continue
		}
		reg.Register(provider, inv)
		logger.Info("agent invoker initialized", zap.String("provider", provider))
	}
	return reg
}
