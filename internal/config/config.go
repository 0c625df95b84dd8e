package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by CONCORD_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
// Missing files are skipped; a file that exists but cannot be parsed is an error.
func Load() error {
	envFile := os.Getenv("CONCORD_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	for _, path := range []string{envFile, envFile + ".secret"} {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func CerebrasAPIKey() string {
	return os.Getenv("CEREBRAS_API_KEY")
}

// ProviderModel returns the default model override for a provider,
// e.g. OPENAI_MODEL. Empty means the invoker's built-in default.
func ProviderModel(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_MODEL")
	case "anthropic":
		return os.Getenv("ANTHROPIC_MODEL")
	case "gemini":
		return os.Getenv("GEMINI_MODEL")
	case "cerebras":
		return os.Getenv("CEREBRAS_MODEL")
	default:
		return ""
	}
}

// APIKeyFor returns the API key for the given provider.
func APIKeyFor(provider string) string {
	switch provider {
	case "openai":
		return OpenAIAPIKey()
	case "anthropic":
		return AnthropicAPIKey()
	case "gemini":
		return GeminiAPIKey()
	case "cerebras":
		return CerebrasAPIKey()
	default:
		return ""
	}
}

// DomainProfilesPath points at an optional YAML file that extends or
// overrides the built-in domain weight profiles.
func DomainProfilesPath() string {
	return os.Getenv("DOMAIN_PROFILES_PATH")
}

// AgentTimeout returns the default per-agent deadline.
// Defaults to 120s if not set.
func AgentTimeout() time.Duration {
	d, err := time.ParseDuration(os.Getenv("AGENT_TIMEOUT"))
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// MaxConcurrentAgents bounds the dispatch task group.
// Defaults to 8 if not set.
func MaxConcurrentAgents() int {
	n, err := strconv.Atoi(os.Getenv("MAX_CONCURRENT_AGENTS"))
	if err != nil || n <= 0 {
		return 8
	}
	return n
}

// SimilarityThreshold returns the finding clustering boundary.
// Defaults to 0.85 if not set.
func SimilarityThreshold() float64 {
	return unitFloat("SIMILARITY_THRESHOLD", 0.85)
}

// AgreementThreshold returns the corroboration share used when neither the
// request nor the domain profile sets one. Defaults to 0.5.
func AgreementThreshold() float64 {
	return unitFloat("AGREEMENT_THRESHOLD", 0.5)
}

// ProviderRPS returns the per-provider dispatch rate. Defaults to 2.
func ProviderRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("PROVIDER_RPS"), 64)
	if err != nil || rps <= 0 {
		return 2
	}
	return rps
}

// ProviderBurst returns the per-provider burst size. Defaults to 4.
func ProviderBurst() int {
	burst, err := strconv.Atoi(os.Getenv("PROVIDER_BURST"))
	if err != nil || burst <= 0 {
		return 4
	}
	return burst
}

// RateLimitRPS returns requests per second limit.
// Defaults to 20 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 20
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 10 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 10
	}
	return burst
}

// APIKey returns the bearer token required by the HTTP API.
// Empty disables authentication.
func APIKey() string {
	return os.Getenv("CONCORD_API_KEY")
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

func unitFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v < 0 || v > 1 {
		return def
	}
	return v
}
