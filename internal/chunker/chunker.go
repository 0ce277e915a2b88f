// Package chunker splits raw text into overlapping fixed-size windows used as
// retrieval units.
package chunker

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParams is returned when the window size or overlap is out of range.
var ErrInvalidParams = errors.New("invalid chunking parameters")

const (
	// DefaultMaxChars is the default window size in characters.
	DefaultMaxChars = 900
	// DefaultOverlap is the default number of characters shared between
	// consecutive windows.
	DefaultOverlap = 150
)

// Config holds chunking parameters.
type Config struct {
	MaxChars int `mapstructure:"max-chars"`
	Overlap  int `mapstructure:"overlap"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.MaxChars == 0 {
		c.MaxChars = DefaultMaxChars
	}
	if c.Overlap == 0 {
		c.Overlap = DefaultOverlap
	}
}

// Validate checks that the parameters describe a progressing window.
func (c *Config) Validate() error {
	if c.MaxChars <= 0 {
		return fmt.Errorf("%w: max-chars must be positive, got %d", ErrInvalidParams, c.MaxChars)
	}
	if c.Overlap < 0 || c.Overlap >= c.MaxChars {
		return fmt.Errorf("%w: overlap must be in [0, max-chars), got %d", ErrInvalidParams, c.Overlap)
	}
	return nil
}

// Chunk splits text into trimmed windows of up to maxChars characters, each
// overlapping the previous one by overlap characters. Line endings are
// normalized to \n first. Empty or whitespace-only input yields no chunks.
// The function is pure: the same input always produces the same output.
func Chunk(text string, maxChars, overlap int) ([]string, error) {
	cfg := Config{MaxChars: maxChars, Overlap: overlap}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	runes := []rune(text)
	n := len(runes)

	var chunks []string
	start := 0
	for start < n {
		end := start + maxChars
		if end > n {
			end = n
		}

		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			chunks = append(chunks, piece)
		}

		if end == n {
			break
		}

		next := end - overlap
		// Guard against the overlap stalling the cursor.
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks, nil
}

// ChunkWithConfig applies defaults before chunking.
func ChunkWithConfig(text string, cfg Config) ([]string, error) {
	cfg.ApplyDefaults()
	return Chunk(text, cfg.MaxChars, cfg.Overlap)
}
