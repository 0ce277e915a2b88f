package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TEST_API_KEY", "  sk-123  ")

	secret, err := Load(Source{Name: "api key", Env: "TEST_API_KEY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "sk-123" {
		t.Fatalf("expected trimmed secret, got %q", secret)
	}
}

func TestLoadFilePrecedence(t *testing.T) {
	t.Setenv("TEST_API_KEY", "from-env")

	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("from-file\n"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	secret, err := Load(Source{Name: "api key", Env: "TEST_API_KEY", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "from-file" {
		t.Fatalf("expected file to take precedence, got %q", secret)
	}
}

func TestLoadNotConfiguredHint(t *testing.T) {
	t.Setenv("TEST_API_KEY", "")

	_, err := Load(Source{
		Name:    "openai api key",
		Env:     "TEST_API_KEY",
		FileKey: "embeddings.api-key-file",
	})
	if err == nil {
		t.Fatal("expected an error when nothing is configured")
	}

	msg := err.Error()
	if !strings.Contains(msg, "embeddings.api-key-file") || !strings.Contains(msg, "TEST_API_KEY") {
		t.Fatalf("expected the hint to name the config key and env var, got %q", msg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(Source{Name: "api key", File: filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, []byte("   \n"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := Load(Source{Name: "api key", File: path}); err == nil {
		t.Fatal("expected an error for an empty secret file")
	}
}

func TestLoadNothingConfigured(t *testing.T) {
	t.Parallel()

	_, err := Load(Source{Name: "api key"})
	if err == nil {
		t.Fatal("expected an error when no source is set")
	}
	if strings.Contains(err.Error(), "(set") {
		t.Fatalf("expected no hint without sources, got %q", err.Error())
	}
}
