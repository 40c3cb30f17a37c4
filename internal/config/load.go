package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

var (
	configOnce  sync.Once
	configValue *Config
)

// Load 는 환경 변수 기반 설정을 로드한다.
func Load() *Config {
	configOnce.Do(func() {
		_ = godotenv.Load()
		configValue = buildConfig()
	})
	return configValue
}

// ProvideConfig 는 설정을 로드하고 검증한다.
func ProvideConfig() (*Config, error) {
	cfg := Load()
	if cfg == nil {
		return nil, errors.New("config not initialized")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 는 설정 유효성을 검사한다.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.Gemini.DefaultModel) == "" {
		return errors.New("gemini model required")
	}
	if c.Firestore.SearchLimit <= 0 {
		return fmt.Errorf("invalid firestore search limit: %d", c.Firestore.SearchLimit)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("invalid embedding dimension: %d", c.Embedding.Dimension)
	}
	return nil
}

// LogEnvStatus 는 환경 설정 상태를 로그로 남긴다.
// Gemini 키 부재는 치명적 오류가 아니며 첫 호출 시점에 실패한다.
func LogEnvStatus(cfg *Config, logger *slog.Logger) {
	if logger == nil || cfg == nil {
		return
	}

	envFilePresent := fileExists(".env")
	primaryKey := maskSecret(cfg.Gemini.PrimaryKey())
	logger.Debug(
		"env_status",
		"env_file", envFilePresent,
		"gemini_keys", len(cfg.Gemini.APIKeys),
		"primary_key", primaryKey,
		"model", cfg.Gemini.DefaultModel,
		"embedding_model", cfg.Embedding.Model,
		"timeout", cfg.Gemini.TimeoutSeconds,
		"firestore_project", cfg.Firestore.ProjectID,
		"firestore_credentials_file", cfg.Firestore.CredentialsFile != "",
		"analysis_cache_url", cfg.AnalysisCache.URL,
		"db_host", cfg.Database.Host,
		"db_name", cfg.Database.Name,
	)

	if len(cfg.Gemini.APIKeys) == 0 {
		logger.Error("env_missing_google_api_key")
	}
	if cfg.Firestore.CredentialsFile == "" && !cfg.Firestore.HasKeyCredentials() {
		logger.Warn("env_missing_firestore_credentials")
	}
}

func buildConfig() *Config {
	return &Config{
		Gemini: GeminiConfig{
			APIKeys:          parseAPIKeys(),
			DefaultModel:     getEnvString("GEMINI_MODEL", "gemini-2.5-flash"),
			AnalyzeModel:     getEnvString("GEMINI_ANALYZE_MODEL", ""),
			EvaluateModel:    getEnvString("GEMINI_EVALUATE_MODEL", ""),
			JudgeModel:       getEnvString("GEMINI_JUDGE_MODEL", ""),
			Temperature:      getEnvFloat("GEMINI_TEMPERATURE", 0.7),
			JudgeTemperature: getEnvFloat("GEMINI_JUDGE_TEMPERATURE", 0.1),
			MaxOutputTokens:  getEnvInt("GEMINI_MAX_TOKENS", 8192),
			TimeoutSeconds:   getEnvInt("GEMINI_TIMEOUT", 60),
		},
		Embedding: EmbeddingConfig{
			Model:     getEnvString("EMBEDDING_MODEL", "gemini-embedding-001"),
			Dimension: getEnvInt("EMBEDDING_DIMENSION", 1536),
		},
		Firestore: FirestoreConfig{
			ProjectID:            getEnvString("FIRESTORE_PROJECT_ID", ""),
			CredentialsFile:      getEnvString("GOOGLE_APPLICATION_CREDENTIALS", ""),
			ClientEmail:          getEnvString("FIRESTORE_CLIENT_EMAIL", ""),
			PrivateKey:           normalizePrivateKey(getEnvString("FIRESTORE_PRIVATE_KEY", "")),
			SubredditsCollection: getEnvString("FIRESTORE_SUBREDDITS_COLLECTION", "subreddits"),
			ProblemsCollection:   getEnvString("FIRESTORE_PROBLEMS_COLLECTION", "problems"),
			SubredditVectorField: getEnvString("FIRESTORE_SUBREDDIT_VECTOR_FIELD", "description_embedding"),
			ProblemVectorField:   getEnvString("FIRESTORE_PROBLEM_VECTOR_FIELD", "embedding"),
			SearchLimit:          getEnvInt("FIRESTORE_SEARCH_LIMIT", 10),
		},
		AnalysisCache: AnalysisCacheConfig{
			URL:          getEnvString("ANALYSIS_CACHE_URL", "redis://localhost:6379"),
			Enabled:      getEnvBool("ANALYSIS_CACHE_ENABLED", false),
			Required:     getEnvBool("ANALYSIS_CACHE_REQUIRED", false),
			DisableCache: getEnvBool("ANALYSIS_CACHE_DISABLE_CLIENT_CACHE", false),
			TTLMinutes:   getEnvInt("ANALYSIS_CACHE_TTL_MINUTES", 360),
		},
		Guard: GuardConfig{
			Enabled:       getEnvBool("GUARD_ENABLED", true),
			ExtraPatterns: getEnvList("GUARD_EXTRA_PATTERNS"),
		},
		Logging: LoggingConfig{
			Level:      getEnvString("LOG_LEVEL", "info"),
			LogDir:     getEnvString("LOG_DIR", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 14),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		HTTP: HTTPConfig{
			Host:           getEnvString("HTTP_HOST", "0.0.0.0"),
			Port:           getEnvInt("HTTP_PORT", 8080),
			HTTP2Enabled:   getEnvBool("HTTP2_ENABLED", false),
			AllowedOrigins: getEnvList("HTTP_ALLOWED_ORIGINS"),
		},
		HTTPAuth: HTTPAuthConfig{
			APIKey: getEnvString("HTTP_API_KEY", ""),
		},
		HTTPRateLimit: HTTPRateLimitConfig{
			RequestsPerMinute: getEnvNonNegativeInt("HTTP_RATE_LIMIT_PER_MINUTE", 0),
			CacheSize:         getEnvInt("HTTP_RATE_LIMIT_CACHE_SIZE", 4096),
			CacheTTLSeconds:   getEnvInt("HTTP_RATE_LIMIT_CACHE_TTL_SECONDS", 120),
		},
		Database: DatabaseConfig{
			Host:                           getEnvString("DB_HOST", ""),
			Port:                           getEnvInt("DB_PORT", 5432),
			Name:                           getEnvString("DB_NAME", "painpoint"),
			User:                           getEnvString("DB_USER", "painpoint"),
			Password:                       getEnvString("DB_PASSWORD", ""),
			MinPool:                        getEnvInt("DB_MIN_POOL", 1),
			MaxPool:                        getEnvInt("DB_MAX_POOL", 8),
			ConnMaxLifetimeMinutes:         getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30),
			ConnMaxIdleTimeMinutes:         getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 10),
			UsageBatchEnabled:              getEnvBool("USAGE_BATCH_ENABLED", true),
			UsageBatchFlushIntervalSeconds: getEnvInt("USAGE_BATCH_FLUSH_INTERVAL_SECONDS", 30),
			UsageBatchFlushTimeoutSeconds:  getEnvInt("USAGE_BATCH_FLUSH_TIMEOUT_SECONDS", 10),
		},
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func maskSecret(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 8 {
		return "****"
	}
	return trimmed[:4] + "****" + trimmed[len(trimmed)-4:]
}
