package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestFilePlainText(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "resume.txt", "  Senior Go engineer.\nEight years of experience.  \n")

	text, err := File(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Senior Go engineer.\nEight years of experience." {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestFileEmpty(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "empty.txt", "   \n  ")

	_, err := File(path)
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestFileMissing(t *testing.T) {
	t.Parallel()

	if _, err := File(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestFileBrokenPDF(t *testing.T) {
	t.Parallel()

	// The .pdf extension routes through the PDF parser regardless of content.
	path := writeFile(t, "broken.pdf", "this is not a pdf")

	if _, err := File(path); err == nil {
		t.Fatal("expected an error for a non-pdf payload")
	}
}
