// Package extract pulls plain text out of uploaded documents. It is the
// boundary to the document-parsing collaborator; the pipeline above it only
// ever sees plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText means the document parsed fine but contained no extractable
// text. A reportable condition, distinct from a parse failure.
var ErrNoText = errors.New("no extractable text")

// File extracts plain text from a document on disk. PDFs are parsed;
// anything else is read as plain text.
func File(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return pdfFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%w in %s", ErrNoText, path)
	}
	return text, nil
}

func pdfFile(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	return plainText(reader, path)
}

// PDF extracts plain text from in-memory PDF bytes.
func PDF(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("parsing pdf: %w", err)
	}
	return plainText(reader, "pdf")
}

func plainText(reader *pdf.Reader, name string) (string, error) {
	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", name, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, content); err != nil {
		return "", fmt.Errorf("reading text from %s: %w", name, err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", fmt.Errorf("%w in %s", ErrNoText, name)
	}
	return text, nil
}
