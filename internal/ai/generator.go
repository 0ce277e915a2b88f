// Package ai turns free-text model output into reliable structured results.
//
// It holds the generation-backend abstraction and the single structured
// generation capability every task variant (question answering, match
// scoring, apply-kit generation) is built on: build a prompt, invoke the
// backend once, extract the first JSON object, and surface a well-defined
// fallback when extraction fails.
package ai

import (
	"context"
	"errors"
)

// Sniffing model output for JSON is best-effort; these errors keep the two
// failure modes distinguishable: the model ignored the instructions entirely
// versus it produced malformed JSON.
var (
	// ErrNoJSON means the response contains no {...} span at all.
	ErrNoJSON = errors.New("no JSON object in model response")

	// ErrMalformedJSON means a {...} span was found but did not decode.
	ErrMalformedJSON = errors.New("malformed JSON object in model response")
)

// Generator is a blocking text-generation backend. Calls may take minutes;
// the only cancellation mechanism is the caller's context.
type Generator interface {
	// GenerateContent sends the prompt and returns the textual response.
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// Model identifies the backend model for logging.
	Model() string
}
