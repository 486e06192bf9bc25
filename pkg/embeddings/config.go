package embeddings

import (
	"fmt"
	"time"
)

// Config selects and parameterizes the embedding provider. It is designed
// to be embedded in the YAML configuration file; the provider is resolved
// once at startup and passed explicitly to the components that embed text.
type Config struct {
	// Provider is one of "pseudo", "ollama", "openai".
	Provider string `yaml:"provider" json:"provider"`
	// URL is the API endpoint for remote providers.
	URL string `yaml:"url" json:"url"`
	// Model is the model identifier for remote providers.
	Model string `yaml:"model" json:"model"`
	// APIKey authenticates against OpenAI-compatible endpoints. Often
	// set through environment expansion in the config file.
	APIKey string `yaml:"api_key" json:"api_key"`
	// Timeout bounds a single embedding request, e.g. "60s".
	Timeout string `yaml:"timeout" json:"timeout"`
	// Dimension overrides the pseudo provider's vector length.
	Dimension int `yaml:"dimension" json:"dimension"`
}

// DefaultConfig returns the offline-safe default: the pseudo provider.
func DefaultConfig() Config {
	return Config{Provider: "pseudo"}
}

// New resolves the configuration into a concrete provider.
func New(cfg Config) (Embedder, error) {
	timeout := time.Duration(0)
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid embedder timeout %q: %w", cfg.Timeout, err)
		}
		timeout = d
	}

	switch cfg.Provider {
	case "", "pseudo":
		if cfg.Dimension > 0 {
			return NewPseudoEmbedderWithDim(cfg.Dimension), nil
		}
		return NewPseudoEmbedder(), nil
	case "ollama":
		if cfg.URL == "" || cfg.Model == "" {
			return nil, fmt.Errorf("ollama provider requires url and model")
		}
		return NewOllamaEmbedder(cfg.URL, cfg.Model, timeout), nil
	case "openai":
		if cfg.Model == "" {
			return nil, fmt.Errorf("openai provider requires model")
		}
		return NewOpenAIEmbedder(cfg.URL, cfg.Model, cfg.APIKey, timeout), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
