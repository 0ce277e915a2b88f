package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	fieldProvider = "ai_provider"
	fieldModel    = "ai_model"
)

// WithCommonFields attaches the AI provider and model as structured fields so
// every backend log line carries them. Empty values are skipped and a nil
// logger falls back to a no-op one.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	fields := make([]zap.Field, 0, 2)
	if p := strings.TrimSpace(provider); p != "" {
		fields = append(fields, zap.String(fieldProvider, p))
	}
	if m := strings.TrimSpace(model); m != "" {
		fields = append(fields, zap.String(fieldModel, m))
	}

	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
