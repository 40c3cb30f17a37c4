package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kapu/painpoint-scout-go/internal/config"
	"github.com/kapu/painpoint-scout-go/internal/health"
)

// ModelConfigResponse: 모델 설정 응답입니다.
type ModelConfigResponse struct {
	ModelDefault       string  `json:"model_default"`
	ModelAnalyze       string  `json:"model_analyze"`
	ModelEvaluate      string  `json:"model_evaluate"`
	ModelJudge         string  `json:"model_judge"`
	EmbeddingModel     string  `json:"embedding_model"`
	EmbeddingDimension int     `json:"embedding_dimension"`
	Temperature        float64 `json:"temperature"`
	JudgeTemperature   float64 `json:"judge_temperature"`
	TimeoutSeconds     int     `json:"timeout_seconds"`
	HTTP2Enabled       bool    `json:"http2_enabled"`
	TransportMode      string  `json:"transport_mode"`
}

// RegisterHealthRoutes: 상태 확인 라우트를 등록합니다.
func RegisterHealthRoutes(router *gin.Engine, cfg *config.Config) {
	router.GET("/health", func(c *gin.Context) {
		// Liveness: 외부 의존성(Valkey/Firestore/DB) 상태로 인해 다운 판정되지 않도록 shallow로 유지합니다.
		payload := health.Collect(c.Request.Context(), cfg, false)
		c.JSON(http.StatusOK, payload)
	})

	router.GET("/health/ready", func(c *gin.Context) {
		payload := health.Collect(c.Request.Context(), cfg, true)
		status := http.StatusOK
		if payload.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, payload)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health/models", func(c *gin.Context) {
		transportMode := "h1"
		if cfg.HTTP.HTTP2Enabled {
			transportMode = "h2c"
		}

		c.JSON(http.StatusOK, ModelConfigResponse{
			ModelDefault:       cfg.Gemini.DefaultModel,
			ModelAnalyze:       cfg.Gemini.ModelForTask("analyze"),
			ModelEvaluate:      cfg.Gemini.ModelForTask("evaluate"),
			ModelJudge:         cfg.Gemini.ModelForTask("judge"),
			EmbeddingModel:     cfg.Embedding.Model,
			EmbeddingDimension: cfg.Embedding.Dimension,
			Temperature:        cfg.Gemini.Temperature,
			JudgeTemperature:   cfg.Gemini.JudgeTemperature,
			TimeoutSeconds:     cfg.Gemini.TimeoutSeconds,
			HTTP2Enabled:       cfg.HTTP.HTTP2Enabled,
			TransportMode:      transportMode,
		})
	})
}
