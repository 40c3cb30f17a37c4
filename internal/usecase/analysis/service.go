package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/kapu/painpoint-scout-go/internal/analysiscache"
	"github.com/kapu/painpoint-scout-go/internal/config"
	"github.com/kapu/painpoint-scout-go/internal/domain/product"
	"github.com/kapu/painpoint-scout-go/internal/firestore"
	"github.com/kapu/painpoint-scout-go/internal/gemini"
	"github.com/kapu/painpoint-scout-go/internal/guard"
	"github.com/kapu/painpoint-scout-go/internal/handler/shared"
	"github.com/kapu/painpoint-scout-go/internal/httperror"
)

// CommunityIndex 는 커뮤니티 조회/검색 저장소 인터페이스다.
// 테스트에서 mock 구현을 주입할 수 있도록 한다.
type CommunityIndex interface {
	Communities(ctx context.Context, names []string) ([]firestore.CommunityRecord, error)
	SearchCommunities(ctx context.Context, vector []float32, limit int) ([]firestore.CommunityRecord, error)
}

// Service: 제품 분석 파이프라인(분석 → 후보 수집 → 평가) 구현체입니다.
type Service struct {
	cfg     *config.Config
	client  gemini.LLM
	guard   *guard.InjectionGuard
	index   CommunityIndex
	cache   *analysiscache.Store
	prompts *product.Prompts
	logger  *slog.Logger
	group   singleflight.Group
}

// New: 분석 Service 인스턴스를 생성합니다.
func New(
	cfg *config.Config,
	client gemini.LLM,
	injectionGuard *guard.InjectionGuard,
	index CommunityIndex,
	cache *analysiscache.Store,
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
		cache:   cache,
		prompts: prompts,
		logger:  logger,
	}
}

type AnalyzeRequest struct {
	Website     string
	Description string
}

type AnalyzeResult struct {
	Analysis product.Analysis
	Cached   bool
}

// Analyze 는 제품을 분석하고 추천 커뮤니티를 골라낸다.
// 평가 단계 실패는 LLM이 제안한 목록으로 대체되며 요청을 실패시키지 않는다.
func (s *Service) Analyze(ctx context.Context, requestID string, req AnalyzeRequest) (AnalyzeResult, error) {
	if s == nil || s.guard == nil || s.client == nil || s.prompts == nil || s.cfg == nil {
		return AnalyzeResult{}, httperror.NewInternalError("service not configured")
	}

	website := strings.TrimSpace(req.Website)
	if website == "" {
		return AnalyzeResult{}, httperror.NewMissingField("website")
	}
	description := strings.TrimSpace(req.Description)
	if err := s.guard.EnsureSafe(description); err != nil {
		s.logError("analysis_description_guard_failed", err)
		return AnalyzeResult{}, fmt.Errorf("guard description: %w", err)
	}

	if cached := s.cachedAnalysis(ctx, website, description); cached != nil {
		s.logger.Info("analysis_cache_hit", "request_id", requestID, "website", website)
		return AnalyzeResult{Analysis: *cached, Cached: true}, nil
	}

	// 동일한 {website, description} 분석이 동시에 들어오면 LLM 호출을 한 번으로 합친다
	value, err, _ := s.group.Do(analysiscache.Key(website, description), func() (any, error) {
		return s.runPipeline(ctx, requestID, website, description)
	})
	if err != nil {
		return AnalyzeResult{}, err
	}

	analysis, ok := value.(product.Analysis)
	if !ok {
		return AnalyzeResult{}, httperror.NewInternalError("analysis pipeline returned unexpected value")
	}
	return AnalyzeResult{Analysis: analysis}, nil
}

func (s *Service) runPipeline(ctx context.Context, requestID string, website string, description string) (product.Analysis, error) {
	analysis, err := s.analyzeLLM(ctx, website, description)
	if err != nil {
		return product.Analysis{}, err
	}

	candidates := s.collectCandidates(ctx, requestID, analysis)

	shortlist, err := s.Evaluate(ctx, requestID, EvaluateRequest{
		Candidates:     candidates,
		ProductSummary: analysis.ProductSummary,
		TargetAudience: analysis.TargetAudience,
	})
	if err != nil {
		// 평가는 best-effort: 실패 시 LLM 제안 목록 그대로 반환
		s.logError("analysis_evaluation_fallback", err)
	} else {
		analysis.Subreddits = shortlist
	}

	s.storeAnalysis(ctx, website, description, &analysis)

	s.logger.Info(
		"product_analyzed",
		"request_id", requestID,
		"website", website,
		"candidates", len(candidates),
		"subreddits", len(analysis.Subreddits),
	)

	return analysis, nil
}

// analyzeLLM: 웹 검색 능력을 선언한 단일 LLM 호출로 제품을 분석합니다.
func (s *Service) analyzeLLM(ctx context.Context, website string, description string) (product.Analysis, error) {
	system, err := s.prompts.AnalyzeSystem()
	if err != nil {
		s.logError("analysis_system_prompt_failed", err)
		return product.Analysis{}, httperror.NewInternalError("load analyze system prompt failed")
	}
	userContent, err := s.prompts.AnalyzeUser(website, description)
	if err != nil {
		s.logError("analysis_user_prompt_failed", err)
		return product.Analysis{}, httperror.NewInternalError("format analyze user prompt failed")
	}

	payload, _, err := s.client.StructuredWithSearch(ctx, gemini.Request{
		Prompt:       userContent,
		SystemPrompt: system,
		Task:         "analyze",
	})
	if err != nil {
		return product.Analysis{}, fmt.Errorf("analyze product: %w", err)
	}

	var analysis product.Analysis
	if err := shared.Decode(payload, &analysis); err != nil {
		s.logError("analysis_payload_decode_failed", err)
		return product.Analysis{}, httperror.NewLLMParsingError("analysis payload malformed")
	}

	// 평가 실패 시 이 목록이 그대로 응답되므로 여기서 상한과 중복을 정리한다
	names := make([]string, 0, shortlistCap)
	seen := make(map[string]bool, shortlistCap)
	for _, name := range analysis.Subreddits {
		normalized := product.NormalizeSubreddit(name)
		if normalized == "" {
			continue
		}
		key := strings.ToLower(normalized)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, normalized)
		if len(names) == shortlistCap {
			break
		}
	}
	analysis.Subreddits = names

	return analysis, nil
}

// collectCandidates: LLM 제안과 벡터 검색 결과를 병합한 후보 목록을 만듭니다.
// 벡터 검색 실패는 LLM 후보만으로 진행한다.
func (s *Service) collectCandidates(ctx context.Context, requestID string, analysis product.Analysis) []product.Candidate {
	aiCandidates := make([]product.Candidate, 0, len(analysis.Subreddits))
	for _, name := range analysis.Subreddits {
		aiCandidates = append(aiCandidates, product.Candidate{Name: name, Source: product.SourceAI})
	}

	vectorCandidates := s.vectorCandidates(ctx, analysis)
	merged := product.MergeCandidates(aiCandidates, vectorCandidates)

	if described := s.describeCandidates(ctx, merged); described != nil {
		merged = described
	}

	s.logger.Debug(
		"analysis_candidates_collected",
		"request_id", requestID,
		"ai", len(aiCandidates),
		"vector", len(vectorCandidates),
		"merged", len(merged),
	)
	return merged
}

func (s *Service) vectorCandidates(ctx context.Context, analysis product.Analysis) []product.Candidate {
	if s.index == nil {
		return nil
	}

	query := strings.TrimSpace(analysis.ProductSummary + " " + analysis.TargetAudience)
	if query == "" {
		return nil
	}

	vector, err := s.client.Embed(ctx, query)
	if err != nil {
		s.logError("analysis_embed_failed", err)
		return nil
	}

	records, err := s.index.SearchCommunities(ctx, vector, s.cfg.Firestore.SearchLimit)
	if err != nil {
		s.logError("analysis_vector_search_failed", err)
		return nil
	}

	candidates := make([]product.Candidate, 0, len(records))
	for _, record := range records {
		candidates = append(candidates, product.Candidate{
			Name:        record.Name,
			Description: record.Description,
			Source:      product.SourceVector,
			Similarity:  record.Similarity,
		})
	}
	return candidates
}

// describeCandidates: 설명이 없는 후보의 설명을 저장소에서 보충합니다.
// 조회 실패는 무시하고 기존 목록을 그대로 쓴다.
func (s *Service) describeCandidates(ctx context.Context, candidates []product.Candidate) []product.Candidate {
	if s.index == nil {
		return nil
	}

	missing := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Description == "" {
			missing = append(missing, candidate.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	records, err := s.index.Communities(ctx, missing)
	if err != nil {
		s.logError("analysis_candidate_describe_failed", err)
		return nil
	}

	descriptions := make(map[string]string, len(records))
	for _, record := range records {
		descriptions[record.Name] = record.Description
	}

	enriched := make([]product.Candidate, len(candidates))
	copy(enriched, candidates)
	for i := range enriched {
		if enriched[i].Description == "" {
			enriched[i].Description = descriptions[enriched[i].Name]
		}
	}
	return enriched
}

func (s *Service) cachedAnalysis(ctx context.Context, website string, description string) *product.Analysis {
	if s.cache == nil || !s.cache.IsEnabled() {
		return nil
	}
	cached, err := s.cache.Get(ctx, website, description)
	if err != nil {
		if !errors.Is(err, analysiscache.ErrNotCached) && !errors.Is(err, analysiscache.ErrStoreDisabled) {
			s.logError("analysis_cache_read_failed", err)
		}
		return nil
	}
	return cached
}

func (s *Service) storeAnalysis(ctx context.Context, website string, description string, analysis *product.Analysis) {
	if s.cache == nil || !s.cache.IsEnabled() {
		return
	}
	if err := s.cache.Set(ctx, website, description, analysis); err != nil && !errors.Is(err, analysiscache.ErrStoreDisabled) {
		s.logError("analysis_cache_write_failed", err)
	}
}

func (s *Service) logError(event string, err error) {
	if s.logger == nil || err == nil {
		return
	}
	s.logger.Warn(event, "err", err)
}
