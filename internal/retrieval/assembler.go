// Package retrieval embeds queries, runs similarity search and renders the
// hits as labeled context blocks for prompt construction.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/pathfinder-ai/pathfinder/internal/embeddings"
	"github.com/pathfinder-ai/pathfinder/internal/vectorstore"
)

// mainScanTopK is how many neighbors the approximate main-record lookup
// scans before giving up.
const mainScanTopK = 15

// MainSuffix marks the authoritative full-text record of a source document,
// as opposed to its derived chunks.
const MainSuffix = "::main"

// Block is one retrieved context unit. Evidence citations in generated
// output reference blocks by Label, never by raw quoted text.
type Block struct {
	// Label is the citation handle, e.g. "RESUME_CHUNK 2" (1-based rank).
	Label string `json:"label"`
	// Metadata is the stored record metadata.
	Metadata map[string]any `json:"metadata"`
	// Text is the record text.
	Text string `json:"text"`
	// Distance is the query distance (ascending, most similar first).
	Distance float32 `json:"distance"`
}

// String renders the block in the fixed "[LABEL | metadata]\ntext" form the
// prompt contract relies on.
func (b Block) String() string {
	return fmt.Sprintf("[%s | %s]\n%s", b.Label, formatMetadata(b.Metadata), b.Text)
}

// formatMetadata renders metadata as sorted key=value pairs so block headers
// are deterministic.
func formatMetadata(metadata map[string]any) string {
	if len(metadata) == 0 {
		return ""
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, metadata[k]))
	}
	return strings.Join(parts, " ")
}

// mainMeta is the slice of record metadata the main-record scan cares about.
type mainMeta struct {
	DocID  string `mapstructure:"doc_id"`
	IsMain bool   `mapstructure:"is_main"`
}

func decodeMainMeta(metadata map[string]any) (mainMeta, error) {
	var meta mainMeta
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &meta,
		WeaklyTypedInput: true, // the store keeps metadata as strings
	})
	if err != nil {
		return meta, err
	}
	if err := dec.Decode(metadata); err != nil {
		return meta, err
	}
	return meta, nil
}

// Assembler executes embed, query and format for a collection.
type Assembler struct {
	provider embeddings.Provider
	store    *vectorstore.Store
	logger   *zap.Logger
}

// New creates an Assembler.
func New(provider embeddings.Provider, store *vectorstore.Store, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{provider: provider, store: store, logger: logger}
}

// Retrieve embeds the query, searches the collection and returns up to topK
// blocks labeled "<label> <rank>" in ascending-distance order.
func (a *Assembler) Retrieve(ctx context.Context, collection, label, query string, topK int) ([]Block, error) {
	vectors, err := a.provider.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := a.store.Query(ctx, collection, vectors[0], topK)
	if err != nil {
		return nil, err
	}

	blocks := make([]Block, len(hits))
	for i, hit := range hits {
		blocks[i] = Block{
			Label:    fmt.Sprintf("%s %d", label, i+1),
			Metadata: hit.Metadata,
			Text:     hit.Text,
			Distance: hit.Distance,
		}
	}

	a.logger.Debug("assembled context",
		zap.String("collection", collection),
		zap.String("label", label),
		zap.Int("blocks", len(blocks)),
	)

	return blocks, nil
}

// MainRecord fetches the authoritative full-text record for a source id.
//
// The exact lookup by "<id>::main" is authoritative. The nearest-neighbor
// scan with a synthetic marker query is kept as a fallback for records
// indexed without a stable id scheme; it may legitimately miss, so absence
// means "not indexed", never a system failure.
func (a *Assembler) MainRecord(ctx context.Context, collection, sourceID string) (*vectorstore.Record, bool, error) {
	rec, ok, err := a.store.Get(ctx, collection, sourceID+MainSuffix)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return rec, true, nil
	}

	marker := fmt.Sprintf("MAIN DOCUMENT %s", sourceID)
	vectors, err := a.provider.Embed(ctx, []string{marker})
	if err != nil {
		return nil, false, fmt.Errorf("embedding main-record marker: %w", err)
	}

	hits, err := a.store.Query(ctx, collection, vectors[0], mainScanTopK)
	if err != nil {
		return nil, false, err
	}

	for _, hit := range hits {
		meta, err := decodeMainMeta(hit.Metadata)
		if err != nil {
			continue
		}
		if meta.IsMain && meta.DocID == sourceID {
			rec := hit.Record
			return &rec, true, nil
		}
	}

	a.logger.Debug("main record not found",
		zap.String("collection", collection),
		zap.String("source_id", sourceID),
	)

	return nil, false, nil
}
