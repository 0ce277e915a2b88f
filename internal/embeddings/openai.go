package embeddings

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/pathfinder-ai/pathfinder/internal/secrets"
)

const defaultOpenAIModel = string(openai.EmbeddingModelTextEmbedding3Small)

// openAIModelDimensions maps known OpenAI embedding models to their output
// dimensionality.
var openAIModelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// openAIProvider embeds text via the OpenAI embeddings API.
type openAIProvider struct {
	client    openai.Client
	model     string
	dimension int
	logger    *zap.Logger
}

func newOpenAIProvider(cfg Config, logger *zap.Logger) (*openAIProvider, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:    "openai api key",
		Env:     "OPENAI_API_KEY",
		File:    cfg.APIKeyFile,
		FileKey: "embeddings.api-key-file",
	})
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &openAIProvider{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		dimension: openAIModelDimensions[model],
		logger:    logger,
	}, nil
}

func (p *openAIProvider) Name() string { return "openai" }

func (p *openAIProvider) Dimension() int { return p.dimension }

func (p *openAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai embeddings: %v", ErrBackendUnavailable, err)
	}

	vectors := make([][]float32, len(resp.Data))
	for _, item := range resp.Data {
		if item.Index < 0 || int(item.Index) >= len(vectors) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", ErrBackendUnavailable, item.Index)
		}
		vec := make([]float32, len(item.Embedding))
		for i, f := range item.Embedding {
			vec[i] = float32(f)
		}
		vectors[item.Index] = vec
	}

	if err := checkBatch(vectors, len(texts)); err != nil {
		return nil, err
	}
	if p.dimension == 0 {
		p.dimension = len(vectors[0])
	}

	p.logger.Debug("embedded texts",
		zap.String("provider", "openai"),
		zap.String("model", p.model),
		zap.Int("count", len(texts)),
	)

	return vectors, nil
}
