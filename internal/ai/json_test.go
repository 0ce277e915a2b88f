package ai

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	t.Parallel()

	raw, err := ExtractJSONObject(`Here is the result: {"match_score": 72, "notes": "ok"} Hope it helps!`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out struct {
		MatchScore int    `json:"match_score"`
		Notes      string `json:"notes"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decoding extracted span: %v", err)
	}
	if out.MatchScore != 72 {
		t.Fatalf("expected match_score 72, got %d", out.MatchScore)
	}
}

func TestExtractJSONObjectBareJSON(t *testing.T) {
	t.Parallel()

	raw, err := ExtractJSONObject(`{"answer": "yes"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{"answer": "yes"}` {
		t.Fatalf("unexpected span: %s", raw)
	}
}

func TestExtractJSONObjectNoJSON(t *testing.T) {
	t.Parallel()

	_, err := ExtractJSONObject("I cannot answer that in JSON, sorry.")
	if !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
}

func TestExtractJSONObjectMalformed(t *testing.T) {
	t.Parallel()

	_, err := ExtractJSONObject(`{"match_score": 72,`)
	if !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON for a span with no closing brace, got %v", err)
	}

	_, err = ExtractJSONObject(`{"match_score": } oops`)
	if !errors.Is(err, ErrMalformedJSON) {
		t.Fatalf("expected ErrMalformedJSON, got %v", err)
	}
}

func TestExtractJSONObjectGreedySpan(t *testing.T) {
	t.Parallel()

	// Nested objects resolve via the greedy first-to-last span.
	raw, err := ExtractJSONObject(`prefix {"a": {"b": 1}, "c": [2, 3]} suffix`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !json.Valid(raw) {
		t.Fatalf("extracted span is not valid json: %s", raw)
	}
}
