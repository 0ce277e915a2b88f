// Package career orchestrates the indexing and matching pipeline: chunk,
// embed, store, retrieve, generate, extract.
package career

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pathfinder-ai/pathfinder/internal/ai"
	"github.com/pathfinder-ai/pathfinder/internal/chunker"
	"github.com/pathfinder-ai/pathfinder/internal/embeddings"
	"github.com/pathfinder-ai/pathfinder/internal/retrieval"
	"github.com/pathfinder-ai/pathfinder/internal/vectorstore"
)

const (
	// jobContextPreviewLimit caps the job context echoed back in responses.
	jobContextPreviewLimit = 1500

	// DefaultQueryTopK is the default for free-text retrieval.
	DefaultQueryTopK = 5
	// DefaultMatchTopK is the default number of resume chunks retrieved for
	// matching and kit generation.
	DefaultMatchTopK = 6

	// DefaultTone is the default apply-kit tone.
	DefaultTone = "professional"

	jobMainLabel     = "JOB_MAIN"
	resumeChunkLabel = "RESUME_CHUNK"
	answerChunkLabel = "CHUNK"
)

// Options configures a Service.
type Options struct {
	ChunkConfig       chunker.Config
	JobsCollection    string
	ResumesCollection string
}

func (o *Options) applyDefaults() {
	o.ChunkConfig.ApplyDefaults()
	if o.JobsCollection == "" {
		o.JobsCollection = "jobs"
	}
	if o.ResumesCollection == "" {
		o.ResumesCollection = "resumes"
	}
}

// Service executes the retrieval-and-matching pipeline. Each call is
// independent and synchronous; the vector store is the only shared state.
type Service struct {
	provider  embeddings.Provider
	store     *vectorstore.Store
	assembler *retrieval.Assembler
	engine    *ai.Engine
	opts      Options
	logger    *zap.Logger
}

// NewService wires the pipeline components together.
func NewService(provider embeddings.Provider, store *vectorstore.Store, assembler *retrieval.Assembler, engine *ai.Engine, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.applyDefaults()
	return &Service{
		provider:  provider,
		store:     store,
		assembler: assembler,
		engine:    engine,
		opts:      opts,
		logger:    logger,
	}
}

// IndexJob stores a job description as an authoritative full-text record
// plus derived chunk records. A single embedding failure aborts the whole
// batch so chunk coverage is never partial.
func (s *Service) IndexJob(ctx context.Context, job JobUpload) (*JobIndexed, error) {
	title := strings.TrimSpace(job.Title)
	description := strings.TrimSpace(job.Description)
	if title == "" {
		return nil, fmt.Errorf("%w: job title is required", ErrEmptyInput)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: job description is required", ErrEmptyInput)
	}

	chunks, err := chunker.ChunkWithConfig(description, s.opts.ChunkConfig)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: chunking produced no text", ErrEmptyInput)
	}

	jobID := uuid.NewString()

	// One batch for the main record and all chunks.
	texts := append([]string{description}, chunks...)
	vectors, err := s.provider.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding job %s: %w", jobID, err)
	}

	baseMeta := func() map[string]any {
		return map[string]any{
			"doc_id":   jobID,
			"title":    title,
			"company":  job.Company,
			"location": job.Location,
		}
	}

	mainMeta := baseMeta()
	mainMeta["is_main"] = true
	records := []vectorstore.Record{{
		ID:        jobID + retrieval.MainSuffix,
		Text:      description,
		Embedding: vectors[0],
		Metadata:  mainMeta,
	}}

	for i, chunk := range chunks {
		meta := baseMeta()
		meta["is_main"] = false
		meta["chunk_index"] = i
		records = append(records, vectorstore.Record{
			ID:        fmt.Sprintf("%s::chunk::%d", jobID, i),
			Text:      chunk,
			Embedding: vectors[i+1],
			Metadata:  meta,
		})
	}

	if err := s.store.Upsert(ctx, s.opts.JobsCollection, records); err != nil {
		return nil, fmt.Errorf("storing job %s: %w", jobID, err)
	}

	s.logger.Info("indexed job",
		zap.String("job_id", jobID),
		zap.String("title", title),
		zap.Int("chunks", len(chunks)),
	)

	return &JobIndexed{JobID: jobID, ChunksIndexed: len(chunks)}, nil
}

// IndexResume stores resume text as chunk records. Re-indexing the same id
// replaces the previous records chunk-for-chunk.
func (s *Service) IndexResume(ctx context.Context, resume ResumeUpload) (*ResumeIndexed, error) {
	id := strings.TrimSpace(resume.ID)
	text := strings.TrimSpace(resume.Text)
	if id == "" {
		return nil, fmt.Errorf("%w: resume id is required", ErrEmptyInput)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: resume text is required", ErrEmptyInput)
	}

	chunks, err := chunker.ChunkWithConfig(text, s.opts.ChunkConfig)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: chunking produced no text", ErrEmptyInput)
	}

	vectors, err := s.provider.Embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embedding resume %s: %w", id, err)
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, chunk := range chunks {
		meta := make(map[string]any, len(resume.Metadata)+2)
		for k, v := range resume.Metadata {
			meta[k] = v
		}
		// Reserved keys win over caller metadata.
		meta["doc_id"] = id
		meta["chunk_index"] = i
		records[i] = vectorstore.Record{
			ID:        fmt.Sprintf("%s::chunk::%d", id, i),
			Text:      chunk,
			Embedding: vectors[i],
			Metadata:  meta,
		}
	}

	if err := s.store.Upsert(ctx, s.opts.ResumesCollection, records); err != nil {
		return nil, fmt.Errorf("storing resume %s: %w", id, err)
	}

	s.logger.Info("indexed resume",
		zap.String("id", id),
		zap.Int("chunks", len(chunks)),
	)

	return &ResumeIndexed{ID: id, ChunksIndexed: len(chunks)}, nil
}

// Query returns the resume context blocks most similar to the question.
func (s *Service) Query(ctx context.Context, question string, topK int) ([]retrieval.Block, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", ErrEmptyInput)
	}
	if topK <= 0 {
		topK = DefaultQueryTopK
	}
	return s.assembler.Retrieve(ctx, s.opts.ResumesCollection, answerChunkLabel, question, topK)
}

// Answer runs structured question answering over retrieved resume context.
// Extraction failure does not abort: the response carries the raw model text
// and an explicit error tag with a nil result.
func (s *Service) Answer(ctx context.Context, question string, topK int) (*AnswerResponse, error) {
	blocks, err := s.Query(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	rendered := renderBlocks(blocks)
	prompt := buildAnswerPrompt(question, rendered)

	raw, rawText, err := s.engine.GenerateStructured(ctx, prompt)
	resp := &AnswerResponse{
		Question:     question,
		RawModelText: rawText,
		ContextUsed:  rendered,
	}
	if err != nil {
		if isExtractionError(err) {
			resp.ExtractionError = err.Error()
			return resp, nil
		}
		return nil, err
	}

	var result AnswerResult
	if err := decodeStructured(raw, &result); err != nil {
		resp.ExtractionError = err.Error()
		return resp, nil
	}
	resp.Result = &result
	return resp, nil
}

// matchContext is the assembled evidence both Match and ApplyKit run on.
type matchContext struct {
	jobBlock     string
	resumeBlocks []string
}

// retrieveMatchContext loads the job's authoritative text and retrieves the
// resume chunks most similar to it.
func (s *Service) retrieveMatchContext(ctx context.Context, jobID string, topK int) (*matchContext, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, fmt.Errorf("%w: job id is required", ErrEmptyInput)
	}
	if topK <= 0 {
		topK = DefaultMatchTopK
	}

	main, ok, err := s.assembler.MainRecord(ctx, s.opts.JobsCollection, jobID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: job %q (index the job first)", ErrJobNotFound, jobID)
	}

	blocks, err := s.assembler.Retrieve(ctx, s.opts.ResumesCollection, resumeChunkLabel, main.Text, topK)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%w: index a resume first", ErrNoResumeIndexed)
	}

	return &matchContext{
		jobBlock:     fmt.Sprintf("[%s]\n%s", jobMainLabel, main.Text),
		resumeBlocks: renderBlocks(blocks),
	}, nil
}

// Match scores job/resume compatibility. The structured result may be nil
// when extraction failed; the raw model text is always preserved.
func (s *Service) Match(ctx context.Context, jobID string, topK int) (*MatchResponse, error) {
	mc, err := s.retrieveMatchContext(ctx, jobID, topK)
	if err != nil {
		return nil, err
	}

	prompt := buildMatchPrompt(mc.jobBlock, mc.resumeBlocks)

	raw, rawText, err := s.engine.GenerateStructured(ctx, prompt)
	resp := &MatchResponse{
		JobID:         strings.TrimSpace(jobID),
		RawModelText:  rawText,
		JobContext:    truncateRunes(mc.jobBlock, jobContextPreviewLimit),
		ResumeContext: mc.resumeBlocks,
	}
	if err != nil {
		if isExtractionError(err) {
			resp.ExtractionError = err.Error()
			return resp, nil
		}
		return nil, err
	}

	result, err := decodeMatchResult(raw)
	if err != nil {
		// Schema drift from the model is surfaced, not masked.
		resp.ExtractionError = err.Error()
		return resp, nil
	}
	resp.Result = result

	s.logger.Info("matched job against resume",
		zap.String("job_id", resp.JobID),
		zap.Int("match_score", result.MatchScore),
	)

	return resp, nil
}

// ApplyKit generates a tailored application kit over the same retrieval
// context as Match, without re-running the match generation.
func (s *Service) ApplyKit(ctx context.Context, jobID string, topK int, tone string) (*KitResponse, error) {
	mc, err := s.retrieveMatchContext(ctx, jobID, topK)
	if err != nil {
		return nil, err
	}

	tone = strings.TrimSpace(tone)
	if tone == "" {
		tone = DefaultTone
	}

	prompt := buildKitPrompt(tone, mc.jobBlock, mc.resumeBlocks)

	raw, rawText, err := s.engine.GenerateStructured(ctx, prompt)
	resp := &KitResponse{
		JobID:         strings.TrimSpace(jobID),
		RawModelText:  rawText,
		JobContext:    truncateRunes(mc.jobBlock, jobContextPreviewLimit),
		ResumeContext: mc.resumeBlocks,
	}
	if err != nil {
		if isExtractionError(err) {
			resp.ExtractionError = err.Error()
			return resp, nil
		}
		return nil, err
	}

	var result KitResult
	if err := decodeStructured(raw, &result); err != nil {
		resp.ExtractionError = err.Error()
		return resp, nil
	}
	resp.Result = &result

	s.logger.Info("generated apply kit",
		zap.String("job_id", resp.JobID),
		zap.String("tone", tone),
	)

	return resp, nil
}

// ResumeIndexedAlready reports whether chunk records for the resume id are
// already present.
func (s *Service) ResumeIndexedAlready(ctx context.Context, id string) (bool, error) {
	_, ok, err := s.store.Get(ctx, s.opts.ResumesCollection, fmt.Sprintf("%s::chunk::0", id))
	return ok, err
}

func renderBlocks(blocks []retrieval.Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.String()
	}
	return out
}

func isExtractionError(err error) bool {
	return errors.Is(err, ai.ErrNoJSON) || errors.Is(err, ai.ErrMalformedJSON)
}

func decodeStructured(raw json.RawMessage, target any) error {
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode structured result: %w", err)
	}
	return nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
