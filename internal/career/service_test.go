package career

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathfinder-ai/pathfinder/internal/ai"
	"github.com/pathfinder-ai/pathfinder/internal/chunker"
	"github.com/pathfinder-ai/pathfinder/internal/retrieval"
	"github.com/pathfinder-ai/pathfinder/internal/vectorstore"
)

// keywordProvider embeds text as keyword counts over a small vocabulary, so
// retrieval behaves like a tiny semantic search without a real backend.
type keywordProvider struct {
	vocab []string
	err   error
}

func newKeywordProvider() *keywordProvider {
	return &keywordProvider{
		vocab: []string{"go", "python", "kubernetes", "grpc", "postgres", "kafka", "terraform"},
	}
}

func (p *keywordProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if p.err != nil {
		return nil, p.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		vec := make([]float32, len(p.vocab)+1)
		for j, word := range p.vocab {
			vec[j] = float32(strings.Count(lower, word))
		}
		vec[len(p.vocab)] = 1 // never a zero vector
		vectors[i] = vec
	}
	return vectors, nil
}

func (p *keywordProvider) Dimension() int { return len(p.vocab) + 1 }

func (p *keywordProvider) Name() string { return "keyword" }

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string { return "stub-model" }

const jobDescription = `We are hiring a senior backend engineer.
You will build Go services, operate Kubernetes clusters and design gRPC APIs.
Experience with Postgres and Kafka is required. Terraform is a plus.
The role involves mentoring and on-call rotation across several product teams.`

const resumeText = `Senior engineer with eight years of experience.
Shipped Go microservices with gRPC and Postgres at scale.
Ran Kubernetes in production and automated infrastructure with Terraform.
Mentored juniors, led incident reviews, owned the Kafka ingestion pipeline.`

func newTestService(t *testing.T, gen ai.Generator) (*Service, *keywordProvider, *vectorstore.Store) {
	t.Helper()

	provider := newKeywordProvider()
	store, err := vectorstore.New(vectorstore.Config{
		Path:       t.TempDir(),
		VectorSize: provider.Dimension(),
	}, nil)
	require.NoError(t, err)

	assembler := retrieval.New(provider, store, nil)
	engine := ai.NewEngine(gen, nil, 0)

	service := NewService(provider, store, assembler, engine, Options{
		ChunkConfig: chunker.Config{MaxChars: 120, Overlap: 20},
	}, nil)

	return service, provider, store
}

func indexFixtures(t *testing.T, service *Service) string {
	t.Helper()

	ctx := context.Background()

	job, err := service.IndexJob(ctx, JobUpload{
		Title:       "Senior Backend Engineer",
		Company:     "Acme",
		Location:    "Remote",
		Description: jobDescription,
	})
	require.NoError(t, err)
	require.NotEmpty(t, job.JobID)
	require.Greater(t, job.ChunksIndexed, 0)

	resume, err := service.IndexResume(ctx, ResumeUpload{
		ID:   "resume.pdf",
		Text: resumeText,
	})
	require.NoError(t, err)
	require.Greater(t, resume.ChunksIndexed, 0)

	return job.JobID
}

func TestIndexJobValidation(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t, &stubGenerator{})

	_, err := service.IndexJob(ctx, JobUpload{Description: "text"})
	assert.True(t, errors.Is(err, ErrEmptyInput), "missing title: %v", err)

	_, err = service.IndexJob(ctx, JobUpload{Title: "Engineer"})
	assert.True(t, errors.Is(err, ErrEmptyInput), "missing description: %v", err)

	_, err = service.IndexJob(ctx, JobUpload{Title: "Engineer", Description: "   \n  "})
	assert.True(t, errors.Is(err, ErrEmptyInput), "blank description: %v", err)
}

func TestIndexJobEmbeddingFailureAborts(t *testing.T) {
	ctx := context.Background()
	service, provider, store := newTestService(t, &stubGenerator{})

	provider.err = errors.New("backend down")

	_, err := service.IndexJob(ctx, JobUpload{
		Title:       "Engineer",
		Description: jobDescription,
	})
	require.Error(t, err)

	// Nothing persisted: a partial job index would poison retrieval.
	assert.Equal(t, 0, store.Count("jobs"))
	assert.Equal(t, 0, store.Count("resumes"))
}

func TestIndexResumeReplace(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t, &stubGenerator{})

	first, err := service.IndexResume(ctx, ResumeUpload{ID: "resume.pdf", Text: resumeText})
	require.NoError(t, err)

	ok, err := service.ResumeIndexedAlready(ctx, "resume.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	second, err := service.IndexResume(ctx, ResumeUpload{ID: "resume.pdf", Text: resumeText})
	require.NoError(t, err)
	assert.Equal(t, first.ChunksIndexed, second.ChunksIndexed)

	ok, err = service.ResumeIndexedAlready(ctx, "other.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIndexResumeReservedMetadata(t *testing.T) {
	ctx := context.Background()
	service, _, store := newTestService(t, &stubGenerator{})

	_, err := service.IndexResume(ctx, ResumeUpload{
		ID:   "resume.pdf",
		Text: resumeText,
		Metadata: map[string]any{
			"doc_id":      "spoofed",
			"chunk_index": 99,
			"source":      "upload",
		},
	})
	require.NoError(t, err)

	rec, ok, err := store.Get(ctx, "resumes", "resume.pdf::chunk::0")
	require.NoError(t, err)
	require.True(t, ok)

	// Caller metadata must not shadow the keys retrieval depends on.
	assert.Equal(t, "resume.pdf", rec.Metadata["doc_id"])
	assert.Equal(t, "0", rec.Metadata["chunk_index"])
	assert.Equal(t, "upload", rec.Metadata["source"])
}

func TestQuery(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t, &stubGenerator{})
	indexFixtures(t, service)

	blocks, err := service.Query(ctx, "kubernetes and terraform experience", 3)
	require.NoError(t, err)
	require.NotEmpty(t, blocks)

	assert.Equal(t, "CHUNK 1", blocks[0].Label)
	for i := 1; i < len(blocks); i++ {
		assert.LessOrEqual(t, blocks[i-1].Distance, blocks[i].Distance)
	}

	_, err = service.Query(ctx, "   ", 3)
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

func TestMatch(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{response: `Assessment follows.
{
  "match_score": 82,
  "strong_matches": ["Go", "Kubernetes", "gRPC"],
  "missing_skills": ["Rust"],
  "recommended_actions": ["Highlight the Kafka pipeline work"],
  "evidence": {"job": ["JOB_MAIN"], "resume": ["RESUME_CHUNK 1"]},
  "notes": "Strong overlap on core stack."
}`}
	service, _, _ := newTestService(t, gen)
	jobID := indexFixtures(t, service)

	resp, err := service.Match(ctx, jobID, 0)
	require.NoError(t, err)
	require.NotNil(t, resp.Result)

	assert.Equal(t, jobID, resp.JobID)
	assert.Equal(t, 82, resp.Result.MatchScore)
	assert.Contains(t, resp.Result.StrongMatches, "Go")
	assert.Equal(t, []string{"Rust"}, resp.Result.MissingSkills)
	assert.Equal(t, []string{"JOB_MAIN"}, resp.Result.Evidence.Job)
	assert.Empty(t, resp.ExtractionError)
	assert.NotEmpty(t, resp.RawModelText)

	// The prompt carries the labeled job and resume context.
	assert.Contains(t, gen.lastPrompt, "[JOB_MAIN]")
	assert.Contains(t, gen.lastPrompt, "RESUME_CHUNK 1")
	assert.NotEmpty(t, resp.JobContext)
	assert.NotEmpty(t, resp.ResumeContext)
}

func TestMatchJobNotFound(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t, &stubGenerator{})
	indexFixtures(t, service)

	_, err := service.Match(ctx, "no-such-job", 0)
	assert.True(t, errors.Is(err, ErrJobNotFound), "expected ErrJobNotFound, got %v", err)

	_, err = service.Match(ctx, "  ", 0)
	assert.True(t, errors.Is(err, ErrEmptyInput), "expected ErrEmptyInput, got %v", err)
}

func TestMatchWithoutResume(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t, &stubGenerator{})

	job, err := service.IndexJob(ctx, JobUpload{
		Title:       "Senior Backend Engineer",
		Description: jobDescription,
	})
	require.NoError(t, err)

	_, err = service.Match(ctx, job.JobID, 0)
	assert.True(t, errors.Is(err, ErrNoResumeIndexed), "expected ErrNoResumeIndexed, got %v", err)
}

func TestMatchExtractionFailure(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{response: "I am unable to produce a structured assessment."}
	service, _, _ := newTestService(t, gen)
	jobID := indexFixtures(t, service)

	resp, err := service.Match(ctx, jobID, 0)
	require.NoError(t, err)

	assert.Nil(t, resp.Result)
	assert.NotEmpty(t, resp.ExtractionError)
	assert.Equal(t, gen.response, resp.RawModelText)
}

func TestMatchSchemaDrift(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{response: `{"match_score": {"value": 80}}`}
	service, _, _ := newTestService(t, gen)
	jobID := indexFixtures(t, service)

	resp, err := service.Match(ctx, jobID, 0)
	require.NoError(t, err)

	// Valid JSON that does not fit the schema is surfaced, not masked.
	assert.Nil(t, resp.Result)
	assert.NotEmpty(t, resp.ExtractionError)
	assert.Equal(t, gen.response, resp.RawModelText)
}

func TestMatchBackendFailure(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{err: errors.New("generation backend down")}
	service, _, _ := newTestService(t, gen)
	jobID := indexFixtures(t, service)

	_, err := service.Match(ctx, jobID, 0)
	require.Error(t, err)
}

func TestApplyKit(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{response: `{
  "cv_bullets": ["Shipped Go microservices with gRPC"],
  "why_me_summary": "Deep overlap on the core stack.",
  "cover_letter_short": "Dear team, ...",
  "linkedin_message": "Hi, I noticed your opening ...",
  "interview_questions": [{"question": "Tell me about Kafka", "suggested_answer": "I owned the ingestion pipeline."}],
  "upskilling_plan_7_days": ["Day 1: review Rust basics"],
  "evidence_used": ["RESUME_CHUNK 1"]
}`}
	service, _, _ := newTestService(t, gen)
	jobID := indexFixtures(t, service)

	resp, err := service.ApplyKit(ctx, jobID, 0, "")
	require.NoError(t, err)
	require.NotNil(t, resp.Result)

	assert.Len(t, resp.Result.CVBullets, 1)
	assert.Len(t, resp.Result.InterviewQuestions, 1)
	assert.Equal(t, "Tell me about Kafka", resp.Result.InterviewQuestions[0].Question)

	// The default tone lands in the prompt.
	assert.Contains(t, gen.lastPrompt, DefaultTone)
	assert.Contains(t, gen.lastPrompt, "[JOB_MAIN]")
}

func TestAnswer(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{response: `{"answer": "Eight years.", "evidence": ["CHUNK 1"]}`}
	service, _, _ := newTestService(t, gen)
	indexFixtures(t, service)

	resp, err := service.Answer(ctx, "How many years of experience?", 0)
	require.NoError(t, err)
	require.NotNil(t, resp.Result)

	assert.Equal(t, "Eight years.", resp.Result.Answer)
	assert.Equal(t, []string{"CHUNK 1"}, resp.Result.Evidence)
	assert.NotEmpty(t, resp.ContextUsed)
	assert.Contains(t, gen.lastPrompt, "How many years of experience?")
}

func TestAnswerExtractionFailure(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{response: "free text, no json"}
	service, _, _ := newTestService(t, gen)
	indexFixtures(t, service)

	resp, err := service.Answer(ctx, "question?", 0)
	require.NoError(t, err)

	assert.Nil(t, resp.Result)
	assert.NotEmpty(t, resp.ExtractionError)
	assert.Equal(t, gen.response, resp.RawModelText)
}
