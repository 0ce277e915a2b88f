package career

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Empty-input and not-found conditions are client faults;
// callers map them to their own fault signaling.
var (
	// ErrEmptyInput indicates a missing required field or empty text.
	ErrEmptyInput = errors.New("empty input")

	// ErrJobNotFound indicates the referenced job id has not been indexed.
	ErrJobNotFound = errors.New("job not found")

	// ErrNoResumeIndexed indicates no resume content is available to match
	// against.
	ErrNoResumeIndexed = errors.New("no resume indexed")
)

// JobUpload is a job description to index.
type JobUpload struct {
	Title       string
	Company     string
	Location    string
	Description string
}

// JobIndexed reports the outcome of indexing a job.
type JobIndexed struct {
	JobID         string `json:"job_id"`
	ChunksIndexed int    `json:"chunks_indexed"`
}

// ResumeUpload is extracted resume text to index.
type ResumeUpload struct {
	// ID identifies the resume source, typically the filename.
	ID string
	// Text is the extracted plain text.
	Text string
	// Metadata is attached to every derived chunk record.
	Metadata map[string]any
}

// ResumeIndexed reports the outcome of indexing a resume.
type ResumeIndexed struct {
	ID            string `json:"id"`
	ChunksIndexed int    `json:"chunks_indexed"`
}

// Evidence cites the context block labels a claim rests on.
type Evidence struct {
	Job    []string `json:"job"`
	Resume []string `json:"resume"`
}

// MatchResult is the structured job/resume compatibility assessment.
type MatchResult struct {
	MatchScore         int      `json:"match_score"`
	StrongMatches      []string `json:"strong_matches"`
	MissingSkills      []string `json:"missing_skills"`
	RecommendedActions []string `json:"recommended_actions"`
	Evidence           Evidence `json:"evidence"`
	Notes              string   `json:"notes"`
}

// decodeMatchResult decodes model output into a MatchResult, tolerating a
// numeric score emitted as a float or a quoted number.
func decodeMatchResult(raw json.RawMessage) (*MatchResult, error) {
	var aux struct {
		MatchScore         json.Number `json:"match_score"`
		StrongMatches      []string    `json:"strong_matches"`
		MissingSkills      []string    `json:"missing_skills"`
		RecommendedActions []string    `json:"recommended_actions"`
		Evidence           Evidence    `json:"evidence"`
		Notes              string      `json:"notes"`
	}

	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&aux); err != nil {
		return nil, fmt.Errorf("decode match result: %w", err)
	}

	score := 0
	if aux.MatchScore != "" {
		f, err := aux.MatchScore.Float64()
		if err != nil {
			return nil, fmt.Errorf("decode match score %q: %w", aux.MatchScore, err)
		}
		score = int(f)
	}

	return &MatchResult{
		MatchScore:         score,
		StrongMatches:      aux.StrongMatches,
		MissingSkills:      aux.MissingSkills,
		RecommendedActions: aux.RecommendedActions,
		Evidence:           aux.Evidence,
		Notes:              aux.Notes,
	}, nil
}

// MatchResponse carries the assessment plus everything needed to audit it.
// Result is nil when extraction failed; RawModelText is always present.
type MatchResponse struct {
	JobID           string       `json:"job_id"`
	Result          *MatchResult `json:"result"`
	RawModelText    string       `json:"raw_llm"`
	JobContext      string       `json:"job_context_used"`
	ResumeContext   []string     `json:"resume_context_used"`
	ExtractionError string       `json:"extraction_error,omitempty"`
}

// InterviewQuestion pairs a likely question with a suggested answer.
type InterviewQuestion struct {
	Question        string `json:"question"`
	SuggestedAnswer string `json:"suggested_answer"`
}

// KitResult is the structured apply-kit payload.
type KitResult struct {
	CVBullets           []string            `json:"cv_bullets"`
	WhyMeSummary        string              `json:"why_me_summary"`
	CoverLetterShort    string              `json:"cover_letter_short"`
	LinkedInMessage     string              `json:"linkedin_message"`
	InterviewQuestions  []InterviewQuestion `json:"interview_questions"`
	UpskillingPlan7Days []string            `json:"upskilling_plan_7_days"`
	EvidenceUsed        []string            `json:"evidence_used"`
}

// KitResponse carries the apply kit, or the raw model text with an error tag
// when extraction failed.
type KitResponse struct {
	JobID           string     `json:"job_id"`
	Result          *KitResult `json:"result"`
	RawModelText    string     `json:"raw_llm"`
	JobContext      string     `json:"job_context_used"`
	ResumeContext   []string   `json:"resume_context_used"`
	ExtractionError string     `json:"extraction_error,omitempty"`
}

// AnswerResult is the structured answer to a free-text question over
// retrieved context.
type AnswerResult struct {
	Answer   string   `json:"answer"`
	Evidence []string `json:"evidence"`
}

// AnswerResponse carries the answer plus the context it was grounded on.
type AnswerResponse struct {
	Question        string        `json:"question"`
	Result          *AnswerResult `json:"result"`
	RawModelText    string        `json:"raw_llm"`
	ContextUsed     []string      `json:"chunks_used"`
	ExtractionError string        `json:"extraction_error,omitempty"`
}
