package career

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDecodeMatchResult(t *testing.T) {
	t.Parallel()

	raw := json.RawMessage(`{
		"match_score": 77,
		"strong_matches": ["Go"],
		"missing_skills": [],
		"recommended_actions": ["apply"],
		"evidence": {"job": ["JOB_MAIN"], "resume": []},
		"notes": ""
	}`)

	result, err := decodeMatchResult(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MatchScore != 77 {
		t.Fatalf("expected score 77, got %d", result.MatchScore)
	}
	if len(result.StrongMatches) != 1 || result.StrongMatches[0] != "Go" {
		t.Fatalf("unexpected strong matches: %v", result.StrongMatches)
	}
}

func TestDecodeMatchResultFloatScore(t *testing.T) {
	t.Parallel()

	// Models occasionally emit the score as a float; it truncates to int.
	result, err := decodeMatchResult(json.RawMessage(`{"match_score": 72.8}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MatchScore != 72 {
		t.Fatalf("expected score 72, got %d", result.MatchScore)
	}
}

func TestDecodeMatchResultMissingScore(t *testing.T) {
	t.Parallel()

	result, err := decodeMatchResult(json.RawMessage(`{"notes": "no score given"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MatchScore != 0 {
		t.Fatalf("expected zero score, got %d", result.MatchScore)
	}
}

func TestDecodeMatchResultBadShape(t *testing.T) {
	t.Parallel()

	if _, err := decodeMatchResult(json.RawMessage(`{"match_score": {"nested": 1}}`)); err == nil {
		t.Fatal("expected an error for a non-numeric score")
	}
}

func TestBuildPrompts(t *testing.T) {
	t.Parallel()

	match := buildMatchPrompt("[JOB_MAIN]\njob text", []string{"[RESUME_CHUNK 1 | doc_id=r]\nresume text"})
	for _, want := range []string{"[JOB_MAIN]", "job text", "resume text", "match_score"} {
		if !strings.Contains(match, want) {
			t.Fatalf("match prompt missing %q", want)
		}
	}

	kit := buildKitPrompt("casual", "[JOB_MAIN]\njob", []string{"[RESUME_CHUNK 1]\nresume"})
	for _, want := range []string{"casual", "cv_bullets", "interview_questions"} {
		if !strings.Contains(kit, want) {
			t.Fatalf("kit prompt missing %q", want)
		}
	}

	answer := buildAnswerPrompt("What stack?", []string{"[CHUNK 1]\ncontext"})
	for _, want := range []string{"What stack?", "[CHUNK 1]", `"answer"`} {
		if !strings.Contains(answer, want) {
			t.Fatalf("answer prompt missing %q", want)
		}
	}
}
