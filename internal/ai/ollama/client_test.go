package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestGenerateContent(t *testing.T) {
	var got generateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: `{"answer": "ok"}`})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Model: "llama3.1:8b", MaxTokens: 256}, zap.NewNop())

	output, err := client.GenerateContent(context.Background(), "the prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output != `{"answer": "ok"}` {
		t.Fatalf("unexpected output: %q", output)
	}

	if got.Model != "llama3.1:8b" {
		t.Fatalf("unexpected model: %q", got.Model)
	}
	if got.Prompt != "the prompt" {
		t.Fatalf("unexpected prompt: %q", got.Prompt)
	}
	if got.Stream {
		t.Fatal("expected a blocking, non-streaming request")
	}
	if got.Options["num_predict"] != float64(256) {
		t.Fatalf("unexpected num_predict option: %v", got.Options["num_predict"])
	}
}

func TestGenerateContentEmptyPrompt(t *testing.T) {
	client := NewClient(Config{}, zap.NewNop())

	if _, err := client.GenerateContent(context.Background(), "  "); err == nil {
		t.Fatal("expected an error for an empty prompt")
	}
}

func TestGenerateContentServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, zap.NewNop())

	if _, err := client.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected an error for a failing backend")
	}
}

func TestGenerateContentEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "   "})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, zap.NewNop())

	if _, err := client.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected an error for an empty response")
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{}, nil)

	if client.Model() != defaultModel {
		t.Fatalf("unexpected default model: %q", client.Model())
	}
	if client.baseURL != defaultBaseURL {
		t.Fatalf("unexpected default base url: %q", client.baseURL)
	}
}
