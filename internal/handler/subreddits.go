package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kapu/painpoint-scout-go/internal/config"
	"github.com/kapu/painpoint-scout-go/internal/domain/product"
	"github.com/kapu/painpoint-scout-go/internal/firestore"
	"github.com/kapu/painpoint-scout-go/internal/gemini"
	"github.com/kapu/painpoint-scout-go/internal/guard"
	"github.com/kapu/painpoint-scout-go/internal/handler/shared"
	"github.com/kapu/painpoint-scout-go/internal/httperror"
	"github.com/kapu/painpoint-scout-go/internal/middleware"
	analysisuc "github.com/kapu/painpoint-scout-go/internal/usecase/analysis"
)

// CommunityReader 는 커뮤니티 상세 조회 인터페이스다.
type CommunityReader interface {
	CommunityDetails(ctx context.Context, names []string) ([]firestore.CommunityData, error)
}

// EvaluateSubredditsRequest: 커뮤니티 평가 요청 본문입니다.
// subreddits 항목은 이름 문자열 또는 {name, description} 객체를 허용한다.
type EvaluateSubredditsRequest struct {
	Subreddits     []any  `json:"subreddits"`
	ProductSummary string `json:"product_summary"`
	TargetAudience string `json:"target_audience"`
}

// EvaluateSubredditsResponse: 커뮤니티 평가 응답입니다.
type EvaluateSubredditsResponse struct {
	RelevantSubreddits []string `json:"relevant_subreddits"`
}

// SubredditDataRequest: 커뮤니티 데이터 조회 요청 본문입니다.
type SubredditDataRequest struct {
	Subreddits []string `json:"subreddits"`
}

// SubredditDataResponse: 커뮤니티 데이터 조회 응답입니다.
type SubredditDataResponse struct {
	Data []firestore.CommunityData `json:"data"`
}

// SubredditsHandler: 커뮤니티 API 핸들러입니다.
type SubredditsHandler struct {
	usecase *analysisuc.Service
	reader  CommunityReader
	logger  *slog.Logger
}

// NewSubredditsHandler: 커뮤니티 핸들러를 생성합니다.
func NewSubredditsHandler(
	cfg *config.Config,
	client gemini.LLM,
	injectionGuard *guard.InjectionGuard,
	index analysisuc.CommunityIndex,
	reader CommunityReader,
	prompts *product.Prompts,
	logger *slog.Logger,
) *SubredditsHandler {
	return &SubredditsHandler{
		usecase: analysisuc.New(cfg, client, injectionGuard, index, nil, prompts, logger),
		reader:  reader,
		logger:  logger,
	}
}

// RegisterRoutes: 커뮤니티 라우트를 등록합니다.
func (h *SubredditsHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/subreddits")
	group.POST("/evaluations", h.handleEvaluate)
	group.POST("/data", h.handleData)
}

func (h *SubredditsHandler) handleEvaluate(c *gin.Context) {
	var req EvaluateSubredditsRequest
	if !bindJSON(c, &req) {
		return
	}

	shortlist, err := h.usecase.Evaluate(c.Request.Context(), middleware.GetRequestID(c), analysisuc.EvaluateRequest{
		Candidates:     coerceCandidates(req.Subreddits),
		ProductSummary: req.ProductSummary,
		TargetAudience: req.TargetAudience,
	})
	if err != nil {
		h.logError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, EvaluateSubredditsResponse{RelevantSubreddits: shortlist})
}

func (h *SubredditsHandler) handleData(c *gin.Context) {
	var req SubredditDataRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.Subreddits) == 0 {
		writeError(c, httperror.NewMissingField("subreddits"))
		return
	}

	names := make([]string, 0, len(req.Subreddits))
	for _, name := range req.Subreddits {
		if normalized := product.NormalizeSubreddit(name); normalized != "" {
			names = append(names, normalized)
		}
	}

	data, err := h.reader.CommunityDetails(c.Request.Context(), names)
	if err != nil {
		h.logError(err)
		writeError(c, err)
		return
	}
	if data == nil {
		data = []firestore.CommunityData{}
	}

	c.JSON(http.StatusOK, SubredditDataResponse{Data: data})
}

// coerceCandidates: 이름 문자열/객체 혼합 배열을 후보 목록으로 변환합니다.
func coerceCandidates(raw []any) []product.Candidate {
	candidates := make([]product.Candidate, 0, len(raw))
	for _, item := range raw {
		switch value := item.(type) {
		case string:
			candidates = append(candidates, product.Candidate{Name: value})
		case map[string]any:
			name, _ := value["name"].(string)
			description, _ := value["description"].(string)
			if name != "" {
				candidates = append(candidates, product.Candidate{Name: name, Description: description})
			}
		}
	}
	return candidates
}

func (h *SubredditsHandler) logError(err error) {
	shared.LogError(h.logger, "subreddits", err)
}
