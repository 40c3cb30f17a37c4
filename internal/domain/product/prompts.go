package product

import (
	"embed"
	"fmt"
	"strings"

	"github.com/kapu/painpoint-scout-go/internal/prompt"
)

//go:embed prompts/*.yml
var promptsFS embed.FS

// Prompts 는 제품 분석 프롬프트 모음이다.
type Prompts struct {
	bundle *prompt.Bundle
}

// NewPrompts: 제품 분석 프롬프트를 로드합니다.
func NewPrompts() (*Prompts, error) {
	bundle, err := prompt.LoadBundle(promptsFS, "prompts", "product")
	if err != nil {
		return nil, fmt.Errorf("load product prompts: %w", err)
	}
	return &Prompts{bundle: bundle}, nil
}

// AnalyzeSystem: 제품 분석 시스템 프롬프트를 반환합니다.
func (p *Prompts) AnalyzeSystem() (string, error) {
	data, err := p.getPrompt("analyze")
	if err != nil {
		return "", err
	}
	return promptField(data, "system", "analyze.system")
}

// AnalyzeUser: 제품 분석 유저 프롬프트를 반환합니다.
// description 이 비어 있으면 설명 절을 생략합니다.
func (p *Prompts) AnalyzeUser(website string, description string) (string, error) {
	data, err := p.getPrompt("analyze")
	if err != nil {
		return "", err
	}
	template, err := promptField(data, "user", "analyze.user")
	if err != nil {
		return "", err
	}
	descriptionClause := ""
	if strings.TrimSpace(description) != "" {
		descriptionClause = fmt.Sprintf(" and description: %s", description)
	}
	formatted, err := prompt.FormatTemplate(template, map[string]string{
		"website":            website,
		"description_clause": descriptionClause,
	})
	if err != nil {
		return "", fmt.Errorf("format analyze.user: %w", err)
	}
	return formatted, nil
}

// EvaluateSystem: 커뮤니티 평가 시스템 프롬프트를 반환합니다.
func (p *Prompts) EvaluateSystem() (string, error) {
	data, err := p.getPrompt("evaluate")
	if err != nil {
		return "", err
	}
	return promptField(data, "system", "evaluate.system")
}

// EvaluateUser: 커뮤니티 평가 유저 프롬프트를 반환합니다.
func (p *Prompts) EvaluateUser(productSummary string, targetAudience string, candidates []Candidate) (string, error) {
	data, err := p.getPrompt("evaluate")
	if err != nil {
		return "", err
	}
	template, err := promptField(data, "user", "evaluate.user")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(targetAudience) == "" {
		targetAudience = "Not specified"
	}
	formatted, err := prompt.FormatTemplate(template, map[string]string{
		"product_summary": productSummary,
		"target_audience": targetAudience,
		"subreddit_list":  formatCandidateList(candidates),
	})
	if err != nil {
		return "", fmt.Errorf("format evaluate.user: %w", err)
	}
	return formatted, nil
}

// JudgeSystem: 문제 판정 시스템 프롬프트를 반환합니다.
func (p *Prompts) JudgeSystem() (string, error) {
	data, err := p.getPrompt("judge")
	if err != nil {
		return "", err
	}
	return promptField(data, "system", "judge.system")
}

// JudgeUser: 문제 판정 유저 프롬프트를 반환합니다.
// subredditDescription 이 비어 있으면 커뮤니티 맥락 절을 생략합니다.
func (p *Prompts) JudgeUser(productSummary string, problemDescription string, subredditDescription string) (string, error) {
	data, err := p.getPrompt("judge")
	if err != nil {
		return "", err
	}
	template, err := promptField(data, "user", "judge.user")
	if err != nil {
		return "", err
	}
	subredditContext := ""
	if strings.TrimSpace(subredditDescription) != "" {
		subredditContext = fmt.Sprintf(" reported in a community described as: %q", subredditDescription)
	}
	formatted, err := prompt.FormatTemplate(template, map[string]string{
		"product_summary":     productSummary,
		"problem_description": problemDescription,
		"subreddit_context":   subredditContext,
	})
	if err != nil {
		return "", fmt.Errorf("format judge.user: %w", err)
	}
	return formatted, nil
}

func formatCandidateList(candidates []Candidate) string {
	lines := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		description := candidate.Description
		if strings.TrimSpace(description) == "" {
			description = "No description available"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", candidate.Name, description))
	}
	return strings.Join(lines, "\n")
}

func (p *Prompts) getPrompt(name string) (map[string]string, error) {
	if p == nil {
		return nil, fmt.Errorf("product prompts not initialized")
	}
	promptMap, err := p.bundle.Prompt(name)
	if err != nil {
		return nil, fmt.Errorf("get product prompt %s: %w", name, err)
	}
	return promptMap, nil
}

func promptField(data map[string]string, key string, label string) (string, error) {
	value, err := prompt.Field(data, key, label)
	if err != nil {
		return "", fmt.Errorf("get product prompt field %s: %w", label, err)
	}
	return value, nil
}
