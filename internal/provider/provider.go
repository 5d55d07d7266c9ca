package provider

import (
	"fmt"

	"github.com/nkapur/solvent/internal/solver"
	"github.com/nkapur/solvent/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewModel builds the langchaingo model client for the configured
// provider. Gemini is served through its OpenAI-compatible endpoint via
// base_url, so every provider goes through the one client. A missing
// credential is a *solver.ConfigError and must stop startup before any
// phase can run.
func NewModel(name string, cfg config.ProviderConfig) (llms.Model, error) {
	key := cfg.ResolveAPIKey()
	if key == "" {
		return nil, &solver.ConfigError{
			Reason: fmt.Sprintf("no API key for provider %s (set %s)", name, cfg.APIKeyEnv),
		}
	}

	switch name {
	case "openai", "openrouter", "gemini":
		opts := []openai.Option{
			openai.WithToken(key),
			openai.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(opts...)
	default:
		return nil, &solver.ConfigError{
			Reason: fmt.Sprintf("provider %s is not supported", name),
		}
	}
}
