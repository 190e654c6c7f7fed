package embedding

import (
	"fmt"
	"log/slog"
	"time"
)

// ProviderConfig selects and configures an embedding backend.
type ProviderConfig struct {
	// Provider is "fastembed", "openai" or "hashing".
	Provider string
	Model    string
	CacheDir string

	BaseURL   string
	APIKey    string
	BatchSize int
	Timeout   time.Duration

	// HashingDim is the vector width of the hashing provider.
	HashingDim int
}

// NewProvider creates an embedding provider based on the configuration.
func NewProvider(cfg ProviderConfig, log *slog.Logger) (Provider, error) {
	switch cfg.Provider {
	case "fastembed", "":
		p, err := NewFastEmbedProvider(FastEmbedConfig{
			Model:     cfg.Model,
			CacheDir:  cfg.CacheDir,
			BatchSize: cfg.BatchSize,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case "openai":
		c, err := NewOpenAIClient(OpenAIConfig{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BatchSize: cfg.BatchSize,
			Timeout:   cfg.Timeout,
		}, log)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "hashing":
		return NewHashingEmbedder(cfg.HashingDim), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
