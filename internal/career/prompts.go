package career

import (
	_ "embed"
	"strings"
)

//go:embed prompts/match.md
var matchTemplate string

//go:embed prompts/kit.md
var kitTemplate string

//go:embed prompts/answer.md
var answerTemplate string

func buildMatchPrompt(jobContext string, resumeContext []string) string {
	prompt := strings.ReplaceAll(matchTemplate, "{{JOB_CONTEXT}}", jobContext)
	prompt = strings.ReplaceAll(prompt, "{{RESUME_CONTEXT}}", strings.Join(resumeContext, "\n"))
	return strings.TrimSpace(prompt)
}

func buildKitPrompt(tone, jobContext string, resumeContext []string) string {
	prompt := strings.ReplaceAll(kitTemplate, "{{TONE}}", tone)
	prompt = strings.ReplaceAll(prompt, "{{JOB_CONTEXT}}", jobContext)
	prompt = strings.ReplaceAll(prompt, "{{RESUME_CONTEXT}}", strings.Join(resumeContext, "\n"))
	return strings.TrimSpace(prompt)
}

func buildAnswerPrompt(question string, contextBlocks []string) string {
	prompt := strings.ReplaceAll(answerTemplate, "{{QUESTION}}", question)
	prompt = strings.ReplaceAll(prompt, "{{CONTEXT}}", strings.Join(contextBlocks, "\n\n"))
	return strings.TrimSpace(prompt)
}
