package health

import (
	"context"
	"time"

	"github.com/kapu/painpoint-scout-go/internal/analysiscache"
	"github.com/kapu/painpoint-scout-go/internal/config"
	"github.com/kapu/painpoint-scout-go/internal/firestore"
	"github.com/kapu/painpoint-scout-go/internal/usage"
)

var startTime = time.Now()

// Component 는 상태 구성 요소다.
type Component struct {
	Status string         `json:"status"`
	Detail map[string]any `json:"detail"`
}

// Response 는 상태 응답 본문이다.
type Response struct {
	Status     string               `json:"status"`
	Components map[string]Component `json:"components"`
}

// Collect 는 헬스 상태를 수집한다.
// deepChecks 는 외부 의존성(Valkey/Firestore/Postgres)까지 확인한다.
func Collect(ctx context.Context, cfg *config.Config, deepChecks bool) Response {
	if ctx == nil {
		ctx = context.Background()
	}

	components := map[string]Component{
		"app":            buildAppStatus(),
		"gemini":         buildGeminiStatus(cfg),
		"analysis_cache": buildCacheStatus(ctx, cfg, deepChecks),
		"firestore":      buildFirestoreStatus(ctx, cfg, deepChecks),
		"database":       buildDatabaseStatus(ctx, cfg, deepChecks),
	}

	overall := "ok"
	for _, component := range components {
		if component.Status != "ok" {
			overall = "degraded"
			break
		}
	}

	return Response{Status: overall, Components: components}
}

func buildAppStatus() Component {
	return Component{
		Status: "ok",
		Detail: map[string]any{
			"uptime_seconds": int(time.Since(startTime).Seconds()),
		},
	}
}

func buildGeminiStatus(cfg *config.Config) Component {
	apiKeyPresent := false
	defaultModel := ""
	embeddingModel := ""
	timeoutSeconds := 0

	if cfg != nil {
		apiKeyPresent = cfg.Gemini.PrimaryKey() != ""
		defaultModel = cfg.Gemini.DefaultModel
		embeddingModel = cfg.Embedding.Model
		timeoutSeconds = cfg.Gemini.TimeoutSeconds
	}

	status := "ok"
	if !apiKeyPresent {
		status = "degraded"
	}

	return Component{
		Status: status,
		Detail: map[string]any{
			"api_key_present": apiKeyPresent,
			"default_model":   defaultModel,
			"embedding_model": embeddingModel,
			"timeout_seconds": timeoutSeconds,
		},
	}
}

func buildCacheStatus(ctx context.Context, cfg *config.Config, deepChecks bool) Component {
	enabled := false
	ttlMinutes := 0
	if cfg != nil {
		enabled = cfg.AnalysisCache.Enabled
		ttlMinutes = cfg.AnalysisCache.TTLMinutes
	}

	backend := "memory"
	connected := false
	checkErr := ""

	if enabled && deepChecks {
		checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()

		store, err := analysiscache.NewStore(cfg)
		if err != nil {
			checkErr = err.Error()
		} else {
			defer store.Close()
			if err := store.Ping(checkCtx); err != nil {
				checkErr = err.Error()
			} else {
				connected = true
				backend = "valkey"
			}
		}
	}

	status := "ok"
	if enabled && deepChecks && !connected {
		status = "degraded"
	}

	detail := map[string]any{
		"cache_enabled":   enabled,
		"cache_connected": connected,
		"backend":         backend,
		"ttl_minutes":     ttlMinutes,
		"deep_checked":    deepChecks,
	}
	if checkErr != "" {
		detail["cache_error"] = checkErr
	}

	return Component{Status: status, Detail: detail}
}

func buildFirestoreStatus(ctx context.Context, cfg *config.Config, deepChecks bool) Component {
	projectConfigured := false
	var firestoreCfg config.FirestoreConfig
	if cfg != nil {
		firestoreCfg = cfg.Firestore
		projectConfigured = firestoreCfg.ProjectID != ""
	}

	connected := false
	checkErr := ""
	if projectConfigured && deepChecks {
		checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		defer cancel()

		store := firestore.NewStore(firestoreCfg, nil)
		defer store.Close()
		if err := store.Ping(checkCtx); err != nil {
			checkErr = err.Error()
		} else {
			connected = true
		}
	}

	status := "ok"
	if !projectConfigured {
		status = "degraded"
	}
	if projectConfigured && deepChecks && !connected {
		status = "degraded"
	}

	detail := map[string]any{
		"project_configured": projectConfigured,
		"connected":          connected,
		"deep_checked":       deepChecks,
	}
	if checkErr != "" {
		detail["firestore_error"] = checkErr
	}

	return Component{Status: status, Detail: detail}
}

func buildDatabaseStatus(ctx context.Context, cfg *config.Config, deepChecks bool) Component {
	repo := usage.NewRepository(cfg, nil)
	enabled := repo.Enabled()

	connected := false
	checkErr := ""
	if enabled && deepChecks {
		checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		defer repo.Close()

		if err := repo.Ping(checkCtx); err != nil {
			checkErr = err.Error()
		} else {
			connected = true
		}
	}

	status := "ok"
	if enabled && deepChecks && !connected {
		status = "degraded"
	}

	detail := map[string]any{
		"usage_db_enabled":   enabled,
		"usage_db_connected": connected,
		"deep_checked":       deepChecks,
	}
	if checkErr != "" {
		detail["database_error"] = checkErr
	}

	return Component{Status: status, Detail: detail}
}
