package gemini

import (
	"errors"
	"net/http"
	"testing"

	"google.golang.org/genai"
)

func TestIsTemporary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"rate limited", genai.APIError{Code: http.StatusTooManyRequests}, true},
		{"internal", genai.APIError{Code: http.StatusInternalServerError}, true},
		{"bad gateway", genai.APIError{Code: http.StatusBadGateway}, true},
		{"bad request", genai.APIError{Code: http.StatusBadRequest}, false},
		{"unauthorized", genai.APIError{Code: http.StatusUnauthorized}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTemporary(tt.err); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestCollectText(t *testing.T) {
	t.Parallel()

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			nil,
			{Content: nil},
			{Content: &genai.Content{Parts: []*genai.Part{
				nil,
				{Text: "  first  "},
				{Text: ""},
				{Text: "second"},
			}}},
		},
	}

	if got := collectText(resp); got != "first\nsecond" {
		t.Fatalf("unexpected collected text: %q", got)
	}
}

func TestCollectTextEmpty(t *testing.T) {
	t.Parallel()

	if got := collectText(&genai.GenerateContentResponse{}); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := NewGenerator(t.Context(), "  ", "", 0, 0, nil); err == nil {
		t.Fatal("expected an error for a missing api key")
	}
}

func TestModelOnNilGenerator(t *testing.T) {
	t.Parallel()

	var g *Generator
	if g.Model() != "" {
		t.Fatal("expected empty model name on nil generator")
	}
}
