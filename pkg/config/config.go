package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig                 `yaml:"app"`
	Solver    SolverConfig              `yaml:"solver"`
	Gateways  map[string]GatewayConfig  `yaml:"gateways"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Memory    MemoryConfig              `yaml:"memory"`
}

type AppConfig struct {
	Name       string `yaml:"name"`
	PromptsDir string `yaml:"prompts_dir"`
}

type SolverConfig struct {
	// MaxRetries is a pointer so an explicit 0 (exactly one attempt)
	// is distinguishable from the key being absent.
	MaxRetries *int `yaml:"max_retries"`
}

type GatewayConfig struct {
	Token    string `yaml:"token,omitempty"`
	TokenEnv string `yaml:"token_env,omitempty"`
	Enabled  bool   `yaml:"enabled"`
}

type ProviderConfig struct {
	APIKey    string `yaml:"api_key,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Enabled   bool   `yaml:"enabled"`
}

type MemoryConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &cfg, nil
}

// SolverMaxRetries returns the configured retry budget, defaulting to 1
// only when the key is absent.
func (c *Config) SolverMaxRetries() int {
	if c.Solver.MaxRetries == nil {
		return 1
	}
	return *c.Solver.MaxRetries
}

// GetDefaultProvider returns the first enabled provider
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	tg, ok := c.Gateways["telegram"]
	if ok && tg.Enabled {
		return tg, true
	}
	return GatewayConfig{}, false
}

// ResolveAPIKey returns the provider credential, preferring a literal
// key over the environment variable named by api_key_env. An empty
// result means the credential is absent and startup must fail before
// any model call is made.
func (p ProviderConfig) ResolveAPIKey() string {
	if p.APIKey != "" {
		return p.APIKey
	}
	if p.APIKeyEnv != "" {
		return os.Getenv(p.APIKeyEnv)
	}
	return ""
}

// ResolveToken returns the gateway credential, literal over env.
func (g GatewayConfig) ResolveToken() string {
	if g.Token != "" {
		return g.Token
	}
	if g.TokenEnv != "" {
		return os.Getenv(g.TokenEnv)
	}
	return ""
}
