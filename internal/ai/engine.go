package ai

import (
	"context"
	"encoding/json"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pathfinder-ai/pathfinder/internal/util"
)

const defaultMaxLogLength = 200

// Engine invokes a generation backend and extracts a structured result from
// its response. It never substitutes empty or default structured data: when
// extraction fails the caller gets the raw model text and the extraction
// error, so what the model actually said stays auditable.
//
// The engine does not validate that decoded fields match any schema; schema
// drift from the model is the caller's to surface.
type Engine struct {
	generator Generator
	logger    *zap.Logger
	maxLogLen int
}

// NewEngine creates an Engine around the given generation backend.
func NewEngine(generator Generator, logger *zap.Logger, maxLogLength int) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Engine{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// GenerateStructured runs one blocking generation call and extracts the
// first JSON object from the response.
//
// The raw response is always returned. On a backend failure the error wraps
// the backend's; on an extraction failure the error is ErrNoJSON or
// ErrMalformedJSON and the result is nil.
func (e *Engine) GenerateStructured(ctx context.Context, prompt string) (json.RawMessage, string, error) {
	e.logger.Debug("generation request",
		zap.String("model", e.generator.Model()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, "", err
	}

	e.logger.Debug("generation response",
		zap.String("model", e.generator.Model()),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, e.maxLogLen)),
	)

	result, err := ExtractJSONObject(raw)
	if err != nil {
		e.logger.Warn("structured extraction failed",
			zap.String("model", e.generator.Model()),
			zap.Error(err),
		)
		return nil, raw, err
	}

	return result, raw, nil
}
