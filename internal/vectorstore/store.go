// Package vectorstore persists (id, text, embedding, metadata) records in
// named collections and answers nearest-neighbor queries.
//
// The store is backed by chromem-go, an embeddable pure-Go vector database
// with gob persistence. It is the single source of truth for indexed content;
// nothing above this layer caches records.
package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// dimsFilename is the sidecar file recording the embedding dimension adopted
// for each collection when no vector size is configured. Without it the
// mismatch check would go blind after a restart.
const dimsFilename = "dimensions.json"

// Sentinel errors for store operations.
var (
	// ErrInvalidConfig indicates invalid store configuration.
	ErrInvalidConfig = errors.New("invalid vector store configuration")

	// ErrEmptyRecords indicates an upsert with nothing to store.
	ErrEmptyRecords = errors.New("empty or nil records")

	// ErrInvalidRecord indicates a record missing an id, text or embedding.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrDimensionMismatch is returned when an embedding's dimensionality
	// does not match the collection's. The check runs before any distance
	// computation so a mismatch can never produce a nonsensical ranking.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Record is a stored vector tuple. Upserting an existing ID replaces the
// whole record; there is no partial update.
type Record struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  map[string]any
}

// Result is a query hit. Distance is 1 - cosine similarity: non-negative,
// ascending, most similar first.
type Result struct {
	Record
	Distance float32
}

// Config holds configuration for the persistent store.
type Config struct {
	// Path is the directory for persistent storage.
	Path string `mapstructure:"path"`

	// Compress enables gzip compression for stored data.
	Compress bool `mapstructure:"compress"`

	// VectorSize is the expected embedding dimension. Zero means the store
	// adopts the dimension of the first batch written to each collection.
	VectorSize int `mapstructure:"vector-size"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "~/.pathfinder/store"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.VectorSize < 0 {
		return fmt.Errorf("%w: vector size must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Store wraps a persistent chromem-go database.
type Store struct {
	db     *chromem.DB
	config Config
	path   string
	logger *zap.Logger

	mu   sync.Mutex
	dims map[string]int
}

// New opens (or creates) the store at the configured path.
func New(config Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	path, err := expandPath(config.Path)
	if err != nil {
		return nil, fmt.Errorf("expanding store path: %w", err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory %s: %w", path, err)
	}

	db, err := chromem.NewPersistentDB(path, config.Compress)
	if err != nil {
		return nil, fmt.Errorf("opening chromem DB: %w", err)
	}

	logger.Debug("vector store opened",
		zap.String("path", path),
		zap.Int("vector_size", config.VectorSize),
	)

	store := &Store{
		db:     db,
		config: config,
		path:   path,
		logger: logger,
		dims:   make(map[string]int),
	}
	store.loadDims()

	return store, nil
}

// loadDims restores the dimensions adopted in earlier runs.
func (s *Store) loadDims() {
	data, err := os.ReadFile(filepath.Join(s.path, dimsFilename))
	if err != nil {
		return
	}

	var dims map[string]int
	if err := json.Unmarshal(data, &dims); err != nil || dims == nil {
		s.logger.Warn("ignoring unreadable collection dimensions file", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.dims = dims
	s.mu.Unlock()
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// noEmbedding is passed to chromem so it never falls back to its default
// OpenAI embedding function: all embeddings here are precomputed.
func noEmbedding(context.Context, string) ([]float32, error) {
	return nil, errors.New("embeddings must be precomputed")
}

// expectedDim returns the enforced dimension for a collection, or zero when
// none has been established yet.
func (s *Store) expectedDim(collection string) int {
	if s.config.VectorSize > 0 {
		return s.config.VectorSize
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dims[collection]
}

func (s *Store) adoptDim(collection string, dim int) {
	if s.config.VectorSize > 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dims[collection]; ok {
		return
	}
	s.dims[collection] = dim

	data, err := json.Marshal(s.dims)
	if err == nil {
		err = os.WriteFile(filepath.Join(s.path, dimsFilename), data, 0o644)
	}
	if err != nil {
		s.logger.Warn("persisting collection dimensions", zap.Error(err))
	}
}

// Upsert stores records in the collection, creating it if absent. Each ID's
// record is fully replaced if it already exists. The whole batch is rejected
// when any record is invalid or dimensionally inconsistent.
func (s *Store) Upsert(ctx context.Context, collection string, records []Record) error {
	if len(records) == 0 {
		return ErrEmptyRecords
	}

	dim := len(records[0].Embedding)
	for i, rec := range records {
		if rec.ID == "" {
			return fmt.Errorf("%w: record %d has no id", ErrInvalidRecord, i)
		}
		if rec.Text == "" {
			return fmt.Errorf("%w: record %q has no text", ErrInvalidRecord, rec.ID)
		}
		if len(rec.Embedding) == 0 {
			return fmt.Errorf("%w: record %q has no embedding", ErrInvalidRecord, rec.ID)
		}
		if len(rec.Embedding) != dim {
			return fmt.Errorf("%w: record %q has dimension %d, batch has %d",
				ErrDimensionMismatch, rec.ID, len(rec.Embedding), dim)
		}
	}

	if want := s.expectedDim(collection); want > 0 && dim != want {
		return fmt.Errorf("%w: collection %q expects %d, got %d",
			ErrDimensionMismatch, collection, want, dim)
	}

	col, err := s.db.GetOrCreateCollection(collection, nil, noEmbedding)
	if err != nil {
		return fmt.Errorf("getting/creating collection %s: %w", collection, err)
	}

	docs := make([]chromem.Document, len(records))
	for i, rec := range records {
		docs[i] = chromem.Document{
			ID:        rec.ID,
			Content:   rec.Text,
			Embedding: rec.Embedding,
			Metadata:  metadataToString(rec.Metadata),
		}
	}

	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("adding documents to %s: %w", collection, err)
	}

	s.adoptDim(collection, dim)

	s.logger.Debug("upserted records",
		zap.String("collection", collection),
		zap.Int("count", len(records)),
	)

	return nil
}

// Query returns up to topK records ordered by ascending distance. Ties keep
// the store's iteration order, which is deterministic for a fixed dataset.
// Querying a nonexistent or empty collection returns an empty result.
func (s *Store) Query(ctx context.Context, collection string, embedding []float32, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidConfig, topK)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: query has no embedding", ErrInvalidRecord)
	}

	if want := s.expectedDim(collection); want > 0 && len(embedding) != want {
		return nil, fmt.Errorf("%w: collection %q expects %d, query has %d",
			ErrDimensionMismatch, collection, want, len(embedding))
	}

	col := s.db.GetCollection(collection, noEmbedding)
	if col == nil {
		return []Result{}, nil
	}

	count := col.Count()
	if count == 0 {
		return []Result{}, nil
	}
	if topK > count {
		topK = count
	}

	hits, err := col.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", collection, err)
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		distance := 1 - h.Similarity
		if distance < 0 {
			distance = 0
		}
		results[i] = Result{
			Record: Record{
				ID:        h.ID,
				Text:      h.Content,
				Embedding: h.Embedding,
				Metadata:  metadataFromString(h.Metadata),
			},
			Distance: distance,
		}
	}

	s.logger.Debug("queried collection",
		zap.String("collection", collection),
		zap.Int("top_k", topK),
		zap.Int("results", len(results)),
	)

	return results, nil
}

// Get performs an exact lookup by record ID. A missing collection or ID is
// reported as absence, not an error.
func (s *Store) Get(ctx context.Context, collection, id string) (*Record, bool, error) {
	if id == "" {
		return nil, false, fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}

	col := s.db.GetCollection(collection, noEmbedding)
	if col == nil {
		return nil, false, nil
	}

	doc, err := col.GetByID(ctx, id)
	if err != nil {
		// chromem reports a missing ID as an error.
		return nil, false, nil
	}

	return &Record{
		ID:        doc.ID,
		Text:      doc.Content,
		Embedding: doc.Embedding,
		Metadata:  metadataFromString(doc.Metadata),
	}, true, nil
}

// Count returns the number of records in the collection, zero if it does not
// exist.
func (s *Store) Count(collection string) int {
	col := s.db.GetCollection(collection, noEmbedding)
	if col == nil {
		return 0
	}
	return col.Count()
}

// metadataToString flattens metadata to chromem's string map. Scalars and
// booleans keep a stable textual form so they round-trip through mapstructure.
func metadataToString(metadata map[string]any) map[string]string {
	if metadata == nil {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		switch val := v.(type) {
		case string:
			out[k] = val
		case int:
			out[k] = fmt.Sprintf("%d", val)
		case int64:
			out[k] = fmt.Sprintf("%d", val)
		case float64:
			out[k] = fmt.Sprintf("%g", val)
		case bool:
			out[k] = fmt.Sprintf("%t", val)
		default:
			out[k] = fmt.Sprintf("%v", val)
		}
	}
	return out
}

func metadataFromString(metadata map[string]string) map[string]any {
	if metadata == nil {
		return nil
	}
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
