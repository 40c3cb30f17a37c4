package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapu/painpoint-scout-go/internal/domain/product"
	"github.com/kapu/painpoint-scout-go/internal/gemini"
	"github.com/kapu/painpoint-scout-go/internal/httperror"
)

// shortlistCap 은 평가 결과로 반환하는 커뮤니티 수의 상한이다.
const shortlistCap = 10

type EvaluateRequest struct {
	Candidates     []product.Candidate
	ProductSummary string
	TargetAudience string
}

// Evaluate 는 후보 커뮤니티 중 제품과 실제로 연관된 것만 골라낸다.
// 결과는 입력 후보 이름의 부분집합이며 최대 10개다.
func (s *Service) Evaluate(ctx context.Context, requestID string, req EvaluateRequest) ([]string, error) {
	if s == nil || s.client == nil || s.prompts == nil {
		return nil, httperror.NewInternalError("service not configured")
	}

	if len(req.Candidates) == 0 {
		return nil, httperror.NewMissingField("subreddits")
	}
	productSummary := strings.TrimSpace(req.ProductSummary)
	if productSummary == "" {
		return nil, httperror.NewMissingField("product_summary")
	}

	candidates := product.MergeCandidates(req.Candidates)
	if len(candidates) == 0 {
		return nil, httperror.NewInvalidInput("subreddits contains no usable names")
	}

	system, err := s.prompts.EvaluateSystem()
	if err != nil {
		s.logError("evaluate_system_prompt_failed", err)
		return nil, httperror.NewInternalError("load evaluate system prompt failed")
	}
	userContent, err := s.prompts.EvaluateUser(productSummary, req.TargetAudience, candidates)
	if err != nil {
		s.logError("evaluate_user_prompt_failed", err)
		return nil, httperror.NewInternalError("format evaluate user prompt failed")
	}

	payload, _, err := s.client.Structured(ctx, gemini.Request{
		Prompt:       userContent,
		SystemPrompt: system,
		Task:         "evaluate",
	}, product.EvaluationSchema())
	if err != nil {
		return nil, fmt.Errorf("evaluate subreddits: %w", err)
	}

	rawNames, ok := payload["subreddits"].([]any)
	if !ok {
		return nil, httperror.NewLLMParsingError("evaluation response missing subreddits array")
	}

	shortlist := filterToCandidates(rawNames, candidates)

	s.logger.Info(
		"subreddits_evaluated",
		"request_id", requestID,
		"candidates", len(candidates),
		"relevant", len(shortlist),
	)
	return shortlist, nil
}

// filterToCandidates: LLM 출력에서 후보에 존재하는 이름만 취합니다.
// 대소문자 차이는 후보의 표기로 정규화하고, 중복을 제거하며, 상한을 적용한다.
func filterToCandidates(rawNames []any, candidates []product.Candidate) []string {
	canonical := make(map[string]string, len(candidates))
	for _, candidate := range candidates {
		canonical[strings.ToLower(candidate.Name)] = candidate.Name
	}

	shortlist := make([]string, 0, shortlistCap)
	seen := make(map[string]bool, shortlistCap)
	for _, raw := range rawNames {
		name, ok := raw.(string)
		if !ok {
			continue
		}
		name = product.NormalizeSubreddit(name)
		match, ok := canonical[strings.ToLower(name)]
		if !ok || seen[match] {
			continue
		}
		seen[match] = true
		shortlist = append(shortlist, match)
		if len(shortlist) == shortlistCap {
			break
		}
	}
	return shortlist
}
