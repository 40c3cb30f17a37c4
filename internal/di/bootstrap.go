package di

import (
	"fmt"

	"github.com/kapu/painpoint-scout-go/internal/analysiscache"
	"github.com/kapu/painpoint-scout-go/internal/config"
	"github.com/kapu/painpoint-scout-go/internal/domain/product"
	"github.com/kapu/painpoint-scout-go/internal/firestore"
	"github.com/kapu/painpoint-scout-go/internal/gemini"
	"github.com/kapu/painpoint-scout-go/internal/guard"
	"github.com/kapu/painpoint-scout-go/internal/handler"
	"github.com/kapu/painpoint-scout-go/internal/metrics"
	"github.com/kapu/painpoint-scout-go/internal/server"
	"github.com/kapu/painpoint-scout-go/internal/usage"
)

// InitializeApp 은 애플리케이션 의존성을 초기화하고 App 인스턴스를 반환한다.
func InitializeApp() (*App, error) {
	cfg, err := config.ProvideConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	metricsStore := metrics.NewStore()
	if err := metrics.NewCollector(metricsStore).Register(); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	usageRepository := usage.NewRepository(cfg, logger)
	usageRecorder := usage.NewRecorder(cfg, usageRepository, logger)

	geminiClient, err := gemini.NewClient(cfg, metricsStore, usageRecorder)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	injectionGuard, err := guard.NewGuard(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("guard: %w", err)
	}

	analysisCache, err := analysiscache.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("analysis cache: %w", err)
	}

	firestoreStore := firestore.NewStore(cfg.Firestore, logger)

	prompts, err := product.NewPrompts()
	if err != nil {
		return nil, fmt.Errorf("product prompts: %w", err)
	}

	analysisHandler := handler.NewAnalysisHandler(cfg, geminiClient, injectionGuard, firestoreStore, analysisCache, prompts, logger)
	subredditsHandler := handler.NewSubredditsHandler(cfg, geminiClient, injectionGuard, firestoreStore, firestoreStore, prompts, logger)
	problemsHandler := handler.NewProblemsHandler(cfg, geminiClient, injectionGuard, firestoreStore, prompts, logger)
	usageHandler := handler.NewUsageHandler(cfg, usageRepository, logger)

	router := handler.NewRouter(cfg, logger, analysisHandler, subredditsHandler, problemsHandler, usageHandler)
	httpServer := server.NewHTTPServer(cfg, router)

	return NewApp(httpServer, logger, cfg, analysisCache, firestoreStore, usageRepository, usageRecorder), nil
}
