package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kapu/painpoint-scout-go/internal/config"
	"github.com/kapu/painpoint-scout-go/internal/domain/product"
	"github.com/kapu/painpoint-scout-go/internal/firestore"
	"github.com/kapu/painpoint-scout-go/internal/gemini"
	"github.com/kapu/painpoint-scout-go/internal/guard"
	"github.com/kapu/painpoint-scout-go/internal/handler/shared"
	"github.com/kapu/painpoint-scout-go/internal/middleware"
	problemsuc "github.com/kapu/painpoint-scout-go/internal/usecase/problems"
)

// SearchProblemsRequest: 문제 검색 요청 본문입니다.
type SearchProblemsRequest struct {
	Query string `json:"query"`
}

// SearchProblemsResponse: 문제 검색 응답입니다.
type SearchProblemsResponse struct {
	Results []firestore.ProblemRecord `json:"results"`
}

// EvaluateProblemRequest: 문제 판정 요청 본문입니다.
type EvaluateProblemRequest struct {
	ProductSummary       string `json:"product_summary"`
	ProblemDescription   string `json:"problem_description"`
	SubredditDescription string `json:"subreddit_description"`
}

// EvaluateProblemResponse: 문제 판정 응답입니다.
type EvaluateProblemResponse struct {
	Evaluation product.Verdict `json:"evaluation"`
}

// ProblemsHandler: 문제 API 핸들러입니다.
type ProblemsHandler struct {
	usecase *problemsuc.Service
	logger  *slog.Logger
}

// NewProblemsHandler: 문제 핸들러를 생성합니다.
func NewProblemsHandler(
	cfg *config.Config,
	client gemini.LLM,
	injectionGuard *guard.InjectionGuard,
	index problemsuc.ProblemIndex,
	prompts *product.Prompts,
	logger *slog.Logger,
) *ProblemsHandler {
	return &ProblemsHandler{
		usecase: problemsuc.New(cfg, client, injectionGuard, index, prompts, logger),
		logger:  logger,
	}
}

// RegisterRoutes: 문제 라우트를 등록합니다.
func (h *ProblemsHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/problems")
	group.POST("/searches", h.handleSearch)
	group.POST("/evaluations", h.handleEvaluate)
}

func (h *ProblemsHandler) handleSearch(c *gin.Context) {
	var req SearchProblemsRequest
	if !bindJSON(c, &req) {
		return
	}

	results, err := h.usecase.Search(c.Request.Context(), middleware.GetRequestID(c), req.Query)
	if err != nil {
		h.logError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SearchProblemsResponse{Results: results})
}

func (h *ProblemsHandler) handleEvaluate(c *gin.Context) {
	var req EvaluateProblemRequest
	if !bindJSON(c, &req) {
		return
	}

	verdict, err := h.usecase.Judge(c.Request.Context(), middleware.GetRequestID(c), problemsuc.JudgeRequest{
		ProductSummary:       req.ProductSummary,
		ProblemDescription:   req.ProblemDescription,
		SubredditDescription: req.SubredditDescription,
	})
	if err != nil {
		h.logError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, EvaluateProblemResponse{Evaluation: verdict})
}

func (h *ProblemsHandler) logError(err error) {
	shared.LogError(h.logger, "problems", err)
}
