package config

import (
	"net"
	"net/url"
	"strconv"
)

// GeminiConfig: Gemini 모델 설정입니다.
type GeminiConfig struct {
	APIKeys          []string
	DefaultModel     string
	AnalyzeModel     string
	EvaluateModel    string
	JudgeModel       string
	Temperature      float64
	JudgeTemperature float64
	MaxOutputTokens  int
	TimeoutSeconds   int
}

// PrimaryKey: 기본 API 키를 반환합니다.
func (g GeminiConfig) PrimaryKey() string {
	if len(g.APIKeys) == 0 {
		return ""
	}
	return g.APIKeys[0]
}

// ModelForTask: 작업 유형별 모델을 반환합니다.
func (g GeminiConfig) ModelForTask(task string) string {
	switch task {
	case "analyze":
		if g.AnalyzeModel != "" {
			return g.AnalyzeModel
		}
	case "evaluate":
		if g.EvaluateModel != "" {
			return g.EvaluateModel
		}
	case "judge":
		if g.JudgeModel != "" {
			return g.JudgeModel
		}
	}
	return g.DefaultModel
}

// TemperatureForTask: 작업 유형별 temperature를 반환합니다.
// judge는 실행 간 편차를 줄이기 위해 낮은 temperature를 사용합니다.
func (g GeminiConfig) TemperatureForTask(task string) float64 {
	if task == "judge" {
		return g.JudgeTemperature
	}
	return g.Temperature
}

// EmbeddingConfig: 임베딩 모델 설정입니다.
type EmbeddingConfig struct {
	Model     string
	Dimension int
}

// FirestoreConfig: Firestore 연결 및 컬렉션 설정입니다.
type FirestoreConfig struct {
	ProjectID            string
	CredentialsFile      string
	ClientEmail          string
	PrivateKey           string
	SubredditsCollection string
	ProblemsCollection   string
	SubredditVectorField string
	ProblemVectorField   string
	SearchLimit          int
}

// HasKeyCredentials: 개별 자격 증명 3종이 모두 설정되어 있는지 확인합니다.
func (f FirestoreConfig) HasKeyCredentials() bool {
	return f.ProjectID != "" && f.ClientEmail != "" && f.PrivateKey != ""
}

// AnalysisCacheConfig: 분석 결과 캐시 저장소 연결 설정입니다.
type AnalysisCacheConfig struct {
	URL          string
	Enabled      bool
	Required     bool
	DisableCache bool
	TTLMinutes   int
}

// GuardConfig: 입력 검증 설정입니다.
type GuardConfig struct {
	Enabled       bool
	ExtraPatterns []string
}

// LoggingConfig: 로깅 설정입니다.
type LoggingConfig struct {
	Level      string
	LogDir     string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// HTTPConfig: HTTP 서버 설정입니다.
type HTTPConfig struct {
	Host           string
	Port           int
	HTTP2Enabled   bool
	AllowedOrigins []string
}

// HTTPAuthConfig: API 키 인증 설정입니다.
type HTTPAuthConfig struct {
	APIKey string
}

// HTTPRateLimitConfig: 요청 제한 설정입니다.
type HTTPRateLimitConfig struct {
	RequestsPerMinute int
	CacheSize         int
	CacheTTLSeconds   int
}

// DatabaseConfig: 사용량 DB 연결 및 저장 설정입니다.
type DatabaseConfig struct {
	Host                           string
	Port                           int
	Name                           string
	User                           string
	Password                       string
	MinPool                        int
	MaxPool                        int
	ConnMaxLifetimeMinutes         int
	ConnMaxIdleTimeMinutes         int
	UsageBatchEnabled              bool
	UsageBatchFlushIntervalSeconds int
	UsageBatchFlushTimeoutSeconds  int
}

// DSN: DB 접속 문자열을 반환합니다.
func (d DatabaseConfig) DSN() string {
	host := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	u := &url.URL{
		Scheme: "postgresql",
		Host:   host,
		Path:   "/" + d.Name,
	}
	if d.Password == "" {
		u.User = url.User(d.User)
	} else {
		u.User = url.UserPassword(d.User, d.Password)
	}
	return u.String()
}

// Config: 애플리케이션 전체 설정입니다.
type Config struct {
	Gemini        GeminiConfig
	Embedding     EmbeddingConfig
	Firestore     FirestoreConfig
	AnalysisCache AnalysisCacheConfig
	Guard         GuardConfig
	Logging       LoggingConfig
	HTTP          HTTPConfig
	HTTPAuth      HTTPAuthConfig
	HTTPRateLimit HTTPRateLimitConfig
	Database      DatabaseConfig
}
