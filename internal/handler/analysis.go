package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kapu/painpoint-scout-go/internal/analysiscache"
	"github.com/kapu/painpoint-scout-go/internal/config"
	"github.com/kapu/painpoint-scout-go/internal/domain/product"
	"github.com/kapu/painpoint-scout-go/internal/gemini"
	"github.com/kapu/painpoint-scout-go/internal/guard"
	"github.com/kapu/painpoint-scout-go/internal/handler/shared"
	"github.com/kapu/painpoint-scout-go/internal/middleware"
	analysisuc "github.com/kapu/painpoint-scout-go/internal/usecase/analysis"
)

// AnalyzeProductRequest: 제품 분석 요청 본문입니다.
type AnalyzeProductRequest struct {
	Website     string `json:"website"`
	Description string `json:"description"`
}

// AnalyzeProductResponse: 제품 분석 응답입니다.
type AnalyzeProductResponse struct {
	Analysis product.Analysis `json:"analysis"`
	Cached   bool             `json:"cached,omitempty"`
}

// AnalysisHandler: 제품 분석 API 핸들러입니다.
type AnalysisHandler struct {
	usecase *analysisuc.Service
	logger  *slog.Logger
}

// NewAnalysisHandler: 제품 분석 핸들러를 생성합니다.
func NewAnalysisHandler(
	cfg *config.Config,
	client gemini.LLM,
	injectionGuard *guard.InjectionGuard,
	index analysisuc.CommunityIndex,
	cache *analysiscache.Store,
	prompts *product.Prompts,
	logger *slog.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		usecase: analysisuc.New(cfg, client, injectionGuard, index, cache, prompts, logger),
		logger:  logger,
	}
}

// RegisterRoutes: 제품 분석 라우트를 등록합니다.
func (h *AnalysisHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/products/analyses", h.handleAnalyze)
}

func (h *AnalysisHandler) handleAnalyze(c *gin.Context) {
	var req AnalyzeProductRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.usecase.Analyze(c.Request.Context(), middleware.GetRequestID(c), analysisuc.AnalyzeRequest{
		Website:     req.Website,
		Description: req.Description,
	})
	if err != nil {
		h.logError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, AnalyzeProductResponse{
		Analysis: result.Analysis,
		Cached:   result.Cached,
	})
}

func (h *AnalysisHandler) logError(err error) {
	shared.LogError(h.logger, "analysis", err)
}
