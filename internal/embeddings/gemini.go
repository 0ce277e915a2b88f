package embeddings

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/pathfinder-ai/pathfinder/internal/secrets"
)

const defaultGeminiModel = "text-embedding-004"

var geminiModelDimensions = map[string]int{
	"text-embedding-004":   768,
	"gemini-embedding-001": 3072,
}

// geminiProvider embeds text via the Gemini API.
type geminiProvider struct {
	client    *genai.Client
	model     string
	dimension int
	logger    *zap.Logger
}

func newGeminiProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*geminiProvider, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:    "gemini api key",
		Env:     "GEMINI_API_KEY",
		File:    cfg.APIKeyFile,
		FileKey: "embeddings.api-key-file",
	})
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &geminiProvider{
		client:    client,
		model:     model,
		dimension: geminiModelDimensions[model],
		logger:    logger,
	}, nil
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) Dimension() int { return p.dimension }

func (p *geminiProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	resp, err := p.client.Models.EmbedContent(ctx, p.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini embeddings: %v", ErrBackendUnavailable, err)
	}

	vectors := make([][]float32, 0, len(resp.Embeddings))
	for _, emb := range resp.Embeddings {
		if emb == nil {
			return nil, fmt.Errorf("%w: gemini returned a nil embedding", ErrBackendUnavailable)
		}
		vectors = append(vectors, emb.Values)
	}

	if err := checkBatch(vectors, len(texts)); err != nil {
		return nil, err
	}
	if p.dimension == 0 {
		p.dimension = len(vectors[0])
	}

	p.logger.Debug("embedded texts",
		zap.String("provider", "gemini"),
		zap.String("model", p.model),
		zap.Int("count", len(texts)),
	)

	return vectors, nil
}
