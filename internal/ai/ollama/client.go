// Package ollama provides a text-generation backend on a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.1:8b"

	// Generation latency is backend-dependent and unpredictable; the client
	// timeout is minutes, not seconds, to avoid false failures.
	defaultTimeout = 5 * time.Minute

	temperature = 0.1
)

// Client calls Ollama's blocking generate endpoint.
type Client struct {
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
	logger    *zap.Logger
}

// Config configures the Ollama generation client.
type Config struct {
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// NewClient creates an Ollama client with the provided configuration.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:   baseURL,
		model:     model,
		maxTokens: cfg.MaxTokens,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// GenerateContent sends the prompt to Ollama and returns the full response.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("prompt must not be empty")
	}

	options := map[string]any{"temperature": temperature}
	if c.maxTokens > 0 {
		options["num_predict"] = c.maxTokens
	}

	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: options,
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama generate: %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading ollama response: %w", err)
	}

	var out generateResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("decoding ollama response: %w", err)
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", fmt.Errorf("ollama returned empty response")
	}

	return out.Response, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}
