package problems

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kapu/painpoint-scout-go/internal/config"
	"github.com/kapu/painpoint-scout-go/internal/domain/product"
	"github.com/kapu/painpoint-scout-go/internal/firestore"
	"github.com/kapu/painpoint-scout-go/internal/gemini"
	"github.com/kapu/painpoint-scout-go/internal/guard"
	"github.com/kapu/painpoint-scout-go/internal/handler/shared"
	"github.com/kapu/painpoint-scout-go/internal/httperror"
)

// ProblemIndex 는 문제 벡터 검색 저장소 인터페이스다.
type ProblemIndex interface {
	SearchProblems(ctx context.Context, vector []float32, limit int) ([]firestore.ProblemRecord, error)
}

// Service: 문제 검색과 문제-제품 연관성 판정 구현체입니다.
type Service struct {
	cfg     *config.Config
	client  gemini.LLM
	guard   *guard.InjectionGuard
	index   ProblemIndex
	prompts *product.Prompts
	logger  *slog.Logger
}

// New: 문제 Service 인스턴스를 생성합니다.
func New(
	cfg *config.Config,
	client gemini.LLM,
	injectionGuard *guard.InjectionGuard,
	index ProblemIndex,
	prompts *product.Prompts,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:     cfg,
		client:  client,
		guard:   injectionGuard,
		index:   index,
		prompts: prompts,
		logger:  logger,
	}
}

// Search 는 질의와 유사한 문제를 모든 커뮤니티에서 찾는다.
// 인덱스가 비어 있으면 오류가 아니라 빈 목록을 반환한다.
func (s *Service) Search(ctx context.Context, requestID string, query string) ([]firestore.ProblemRecord, error) {
	if s == nil || s.guard == nil || s.client == nil || s.index == nil {
		return nil, httperror.NewInternalError("service not configured")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, httperror.NewMissingField("query")
	}
	if err := s.guard.EnsureSafe(query); err != nil {
		s.logError("problem_query_guard_failed", err)
		return nil, fmt.Errorf("guard query: %w", err)
	}

	vector, err := s.client.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.index.SearchProblems(ctx, vector, s.cfg.Firestore.SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search problems: %w", err)
	}
	if results == nil {
		results = []firestore.ProblemRecord{}
	}

	s.logger.Info("problems_searched", "request_id", requestID, "results", len(results))
	return results, nil
}

type JudgeRequest struct {
	ProductSummary       string
	ProblemDescription   string
	SubredditDescription string
}

// Judge 는 제품이 문제 해결에 적합한지 판정한다.
// 필수 필드 검증은 어떤 네트워크 호출보다 먼저 수행된다.
func (s *Service) Judge(ctx context.Context, requestID string, req JudgeRequest) (product.Verdict, error) {
	if s == nil || s.guard == nil || s.client == nil || s.prompts == nil {
		return product.Verdict{}, httperror.NewInternalError("service not configured")
	}

	productSummary := strings.TrimSpace(req.ProductSummary)
	if productSummary == "" {
		return product.Verdict{}, httperror.NewMissingField("product_summary")
	}
	problemDescription := strings.TrimSpace(req.ProblemDescription)
	if problemDescription == "" {
		return product.Verdict{}, httperror.NewMissingField("problem_description")
	}
	if err := s.guard.EnsureSafe(problemDescription); err != nil {
		s.logError("judge_problem_guard_failed", err)
		return product.Verdict{}, fmt.Errorf("guard problem description: %w", err)
	}

	system, err := s.prompts.JudgeSystem()
	if err != nil {
		s.logError("judge_system_prompt_failed", err)
		return product.Verdict{}, httperror.NewInternalError("load judge system prompt failed")
	}
	userContent, err := s.prompts.JudgeUser(productSummary, problemDescription, req.SubredditDescription)
	if err != nil {
		s.logError("judge_user_prompt_failed", err)
		return product.Verdict{}, httperror.NewInternalError("format judge user prompt failed")
	}

	payload, _, err := s.client.Structured(ctx, gemini.Request{
		Prompt:       userContent,
		SystemPrompt: system,
		Task:         "judge",
	}, product.VerdictSchema())
	if err != nil {
		return product.Verdict{}, fmt.Errorf("judge problem: %w", err)
	}

	if _, ok := payload["relevant"]; !ok {
		return product.Verdict{}, httperror.NewLLMParsingError("verdict missing relevant field")
	}

	var verdict product.Verdict
	if err := shared.Decode(payload, &verdict); err != nil {
		s.logError("judge_payload_decode_failed", err)
		return product.Verdict{}, httperror.NewLLMParsingError("verdict payload malformed")
	}

	s.logger.Info("problem_judged", "request_id", requestID, "relevant", verdict.Relevant)
	return verdict, nil
}

func (s *Service) logError(event string, err error) {
	if s.logger == nil || err == nil {
		return
	}
	s.logger.Warn(event, "err", err)
}
