package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSONObject scans text for the first balanced {...} span, greedy from
// the first '{' to the last '}', and validates it as a JSON object. Pure
// function; the two failure modes stay distinct:
//
//   - no braces at all       -> ErrNoJSON
//   - span fails to decode   -> ErrMalformedJSON
func ExtractJSONObject(text string) (json.RawMessage, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoJSON
	}

	span := text[start : end+1]
	if !json.Valid([]byte(span)) {
		return nil, fmt.Errorf("%w: %d-byte span does not decode", ErrMalformedJSON, len(span))
	}

	return json.RawMessage(span), nil
}
