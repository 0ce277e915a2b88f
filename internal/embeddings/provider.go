// Package embeddings converts text into fixed-dimension vectors via a
// selectable backend.
//
// The provider is resolved once per process from configuration and must be
// the same at index and query time for a given collection: vectors produced
// by different providers are dimensionally and semantically incompatible.
// The vector store's dimension check turns that mistake into a hard error
// instead of a silent mis-ranking.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Sentinel errors for embedding operations.
var (
	// ErrUnknownProvider is returned for an unrecognized provider name.
	ErrUnknownProvider = errors.New("unknown embeddings provider")

	// ErrBackendUnavailable indicates the embedding backend could not be
	// reached or rejected the request. Retry policy belongs to the caller.
	ErrBackendUnavailable = errors.New("embeddings backend unavailable")

	// ErrEmptyInput indicates there was nothing to embed.
	ErrEmptyInput = errors.New("no texts to embed")
)

// Provider generates vector embeddings from text. Results preserve input
// order and length. Repeated calls with identical text recompute embeddings;
// there is no caching layer.
type Provider interface {
	// Embed returns one embedding per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimensionality of produced vectors. It may be
	// zero for backends whose dimension is only known after the first call.
	Dimension() int

	// Name identifies the provider implementation.
	Name() string
}

// Config selects and configures the embedding provider.
type Config struct {
	// Provider is one of "openai", "gemini" or "ollama".
	Provider string `mapstructure:"provider"`
	// Model is the embedding model name. Empty selects the provider default.
	Model string `mapstructure:"model"`
	// APIKeyFile points to a file holding the backend API key.
	APIKeyFile string `mapstructure:"api-key-file"`
	// BaseURL is the backend endpoint (ollama only).
	BaseURL string `mapstructure:"base-url"`
	// Timeout bounds a single embedding call.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "openai"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// New creates an embedding provider from the configuration. The context
// bounds backend client construction.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		return newOpenAIProvider(cfg, logger)
	case "gemini":
		return newGeminiProvider(ctx, cfg, logger)
	case "ollama":
		return newOllamaProvider(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// checkBatch verifies the backend honored the order-and-length contract.
func checkBatch(vectors [][]float32, want int) error {
	if len(vectors) != want {
		return fmt.Errorf("%w: got %d embeddings for %d texts", ErrBackendUnavailable, len(vectors), want)
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("%w: empty embedding at index %d", ErrBackendUnavailable, i)
		}
	}
	return nil
}
