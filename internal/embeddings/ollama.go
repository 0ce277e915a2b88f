package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "nomic-embed-text"
)

// ollamaProvider embeds text via an Ollama server's native embeddings API.
// The dimension is unknown until the first call and adopted lazily.
type ollamaProvider struct {
	baseURL   string
	model     string
	client    *http.Client
	dimension int
	logger    *zap.Logger
}

func newOllamaProvider(cfg Config, logger *zap.Logger) (*ollamaProvider, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}

	return &ollamaProvider{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}, nil
}

func (p *ollamaProvider) Name() string { return "ollama" }

func (p *ollamaProvider) Dimension() int { return p.dimension }

func (p *ollamaProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := p.embedOne(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}

	if err := checkBatch(vectors, len(texts)); err != nil {
		return nil, err
	}
	if p.dimension == 0 {
		p.dimension = len(vectors[0])
	}

	p.logger.Debug("embedded texts",
		zap.String("provider", "ollama"),
		zap.String("model", p.model),
		zap.Int("count", len(texts)),
	)

	return vectors, nil
}

func (p *ollamaProvider) embedOne(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(map[string]string{
		"model":  p.model,
		"prompt": text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embeddings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama embeddings: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: ollama embeddings: %s", ErrBackendUnavailable, resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading ollama response: %v", ErrBackendUnavailable, err)
	}

	var out struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("%w: decoding ollama response: %v", ErrBackendUnavailable, err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("%w: ollama returned no embedding", ErrBackendUnavailable)
	}

	return out.Embedding, nil
}
