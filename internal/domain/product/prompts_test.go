package product

import (
	"strings"
	"testing"
)

func TestAnalyzeUserIncludesDescription(t *testing.T) {
	prompts, err := NewPrompts()
	if err != nil {
		t.Fatalf("load prompts: %v", err)
	}

	withDescription, err := prompts.AnalyzeUser("https://example.com", "a task tracker")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(withDescription, "https://example.com") {
		t.Fatalf("expected website in prompt: %s", withDescription)
	}
	if !strings.Contains(withDescription, "and description: a task tracker") {
		t.Fatalf("expected description clause: %s", withDescription)
	}

	withoutDescription, err := prompts.AnalyzeUser("https://example.com", "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(withoutDescription, "and description") {
		t.Fatalf("expected description clause omitted: %s", withoutDescription)
	}
}

func TestEvaluateUserFormatsCandidates(t *testing.T) {
	prompts, err := NewPrompts()
	if err != nil {
		t.Fatalf("load prompts: %v", err)
	}

	formatted, err := prompts.EvaluateUser("A task tracker", "", []Candidate{
		{Name: "startups", Description: "Startup community"},
		{Name: "SaaS"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(formatted, "- startups: Startup community") {
		t.Fatalf("expected candidate line: %s", formatted)
	}
	if !strings.Contains(formatted, "- SaaS: No description available") {
		t.Fatalf("expected description fallback: %s", formatted)
	}
	if !strings.Contains(formatted, `Target Audience: "Not specified"`) {
		t.Fatalf("expected audience fallback: %s", formatted)
	}
}

func TestJudgeUser(t *testing.T) {
	prompts, err := NewPrompts()
	if err != nil {
		t.Fatalf("load prompts: %v", err)
	}

	formatted, err := prompts.JudgeUser("A task tracker", "I keep losing track of deadlines", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(formatted, "A task tracker") || !strings.Contains(formatted, "losing track of deadlines") {
		t.Fatalf("unexpected prompt: %s", formatted)
	}
	if strings.Contains(formatted, "reported in a community") {
		t.Fatalf("expected community clause omitted: %s", formatted)
	}

	withContext, err := prompts.JudgeUser("A task tracker", "I keep losing track of deadlines", "Freelancers community")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(withContext, "Freelancers community") {
		t.Fatalf("expected community clause: %s", withContext)
	}
}

func TestSystemPromptsAreStatic(t *testing.T) {
	prompts, err := NewPrompts()
	if err != nil {
		t.Fatalf("load prompts: %v", err)
	}
	for name, load := range map[string]func() (string, error){
		"analyze":  prompts.AnalyzeSystem,
		"evaluate": prompts.EvaluateSystem,
		"judge":    prompts.JudgeSystem,
	} {
		system, err := load()
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if strings.TrimSpace(system) == "" {
			t.Fatalf("%s: empty system prompt", name)
		}
	}
}
