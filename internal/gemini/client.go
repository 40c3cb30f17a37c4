package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"google.golang.org/genai"

	"github.com/kapu/painpoint-scout-go/internal/config"
	"github.com/kapu/painpoint-scout-go/internal/llm"
	"github.com/kapu/painpoint-scout-go/internal/metrics"
	"github.com/kapu/painpoint-scout-go/internal/usage"
)

var (
	// ErrMissingAPIKey 는 Gemini API 키가 없을 때 반환된다.
	ErrMissingAPIKey = errors.New("missing gemini api key")
	// ErrInvalidModel 는 모델이 지정되지 않았을 때 반환된다.
	ErrInvalidModel = errors.New("invalid model")
)

// Request 는 Gemini 요청 데이터다.
type Request struct {
	Prompt       string
	SystemPrompt string
	Model        string
	Task         string
}

// Client 는 Gemini 호출을 담당한다.
type Client struct {
	cfg           *config.Config
	metrics       *metrics.Store
	usageRecorder *usage.Recorder
	mu            sync.Mutex
	clients       map[string]*genai.Client
	apiKeys       []string
	apiKeyIdx     int
}

// NewClient 는 Gemini 클라이언트를 생성한다.
func NewClient(cfg *config.Config, metricsStore *metrics.Store, usageRecorder *usage.Recorder) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if metricsStore == nil {
		return nil, errors.New("metrics store is nil")
	}
	return &Client{
		cfg:           cfg,
		metrics:       metricsStore,
		usageRecorder: usageRecorder,
		clients:       make(map[string]*genai.Client),
		apiKeys:       cfg.Gemini.APIKeys,
	}, nil
}

// Structured 는 JSON 스키마 기반 응답을 반환한다.
func (c *Client) Structured(ctx context.Context, req Request, schema map[string]any) (map[string]any, string, error) {
	start := time.Now()
	response, model, err := c.generate(ctx, req, "application/json", schema, false)
	if err != nil {
		c.metrics.RecordError(time.Since(start))
		return nil, model, err
	}

	callUsage := extractUsage(response)
	c.metrics.RecordSuccess(time.Since(start), callUsage)
	c.recordUsage(ctx, callUsage)

	parsed, err := decodePayload(response.Text())
	if err != nil {
		return nil, model, err
	}
	return parsed, model, nil
}

// StructuredWithSearch 는 웹 검색 능력을 선언하고 JSON 응답을 복원한다.
func (c *Client) StructuredWithSearch(ctx context.Context, req Request) (map[string]any, string, error) {
	start := time.Now()
	response, model, err := c.generate(ctx, req, "", nil, true)
	if err != nil {
		c.metrics.RecordError(time.Since(start))
		return nil, model, err
	}

	callUsage := extractUsage(response)
	c.metrics.RecordSuccess(time.Since(start), callUsage)
	c.recordUsage(ctx, callUsage)

	parsed, err := decodePayload(response.Text())
	if err != nil {
		return nil, model, err
	}
	return parsed, model, nil
}

// Embed 는 질의 텍스트의 임베딩 벡터를 반환한다.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("cannot embed empty text")
	}

	client, err := c.selectClient(ctx)
	if err != nil {
		return nil, err
	}

	embedConfig := &genai.EmbedContentConfig{TaskType: "RETRIEVAL_QUERY"}
	if c.cfg.Embedding.Dimension > 0 {
		embedConfig.OutputDimensionality = genai.Ptr(int32(c.cfg.Embedding.Dimension))
	}

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	response, err := client.Models.EmbedContent(ctx, c.cfg.Embedding.Model, contents, embedConfig)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if response == nil || len(response.Embeddings) == 0 || len(response.Embeddings[0].Values) == 0 {
		return nil, errors.New("empty embedding response")
	}
	return response.Embeddings[0].Values, nil
}

func (c *Client) recordUsage(ctx context.Context, callUsage llm.Usage) {
	if c.usageRecorder == nil {
		return
	}
	c.usageRecorder.Record(ctx, int64(callUsage.InputTokens), int64(callUsage.OutputTokens))
}

func (c *Client) generate(
	ctx context.Context,
	req Request,
	responseMimeType string,
	responseSchema map[string]any,
	withSearch bool,
) (*genai.GenerateContentResponse, string, error) {
	client, err := c.selectClient(ctx)
	if err != nil {
		return nil, "", err
	}

	model, err := c.resolveModel(req.Model, req.Task)
	if err != nil {
		return nil, model, err
	}

	generateConfig := c.buildGenerateConfig(req.SystemPrompt, req.Task, responseMimeType, responseSchema, withSearch)
	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}
	response, err := client.Models.GenerateContent(ctx, model, contents, generateConfig)
	if err != nil {
		return nil, model, fmt.Errorf("generate content: %w", err)
	}
	return response, model, nil
}

func (c *Client) selectClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.apiKeys) == 0 {
		return nil, ErrMissingAPIKey
	}

	key := c.apiKeys[c.apiKeyIdx%len(c.apiKeys)]
	c.apiKeyIdx++
	if client, ok := c.clients[key]; ok {
		return client, nil
	}

	timeout := time.Duration(c.cfg.Gemini.TimeoutSeconds) * time.Second
	client, err := genai.NewClient(context.WithoutCancel(ctx), &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			Timeout: genai.Ptr(timeout),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	c.clients[key] = client
	return client, nil
}

func (c *Client) resolveModel(modelOverride string, task string) (string, error) {
	model := modelOverride
	if model == "" {
		model = c.cfg.Gemini.ModelForTask(task)
	}
	if model == "" {
		return "", ErrInvalidModel
	}
	return model, nil
}

func (c *Client) buildGenerateConfig(
	systemPrompt string,
	task string,
	responseMimeType string,
	responseSchema map[string]any,
	withSearch bool,
) *genai.GenerateContentConfig {
	temperature := float32(c.cfg.Gemini.TemperatureForTask(task))
	generateConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: int32(c.cfg.Gemini.MaxOutputTokens),
	}

	if systemPrompt != "" {
		generateConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	if responseMimeType != "" {
		generateConfig.ResponseMIMEType = responseMimeType
	}
	if responseSchema != nil {
		generateConfig.ResponseJsonSchema = responseSchema
	}
	if withSearch {
		generateConfig.Tools = []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		}
	}

	return generateConfig
}

func decodePayload(payload string) (map[string]any, error) {
	extracted := extractJSON(payload)
	if extracted == "" {
		return nil, errors.New("empty structured response")
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(extracted), &parsed); err != nil {
		return nil, fmt.Errorf("decode structured response: %w", err)
	}
	return parsed, nil
}

// extractJSON 은 응답 텍스트에서 JSON 오브젝트 본문을 복원한다.
// 검색 툴 사용 시 모델이 코드 펜스나 전후 설명을 붙이는 경우가 있다.
func extractJSON(payload string) string {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start < 0 || end < start {
		return ""
	}
	return trimmed[start : end+1]
}

func extractUsage(response *genai.GenerateContentResponse) llm.Usage {
	if response == nil || response.UsageMetadata == nil {
		return llm.Usage{}
	}
	meta := response.UsageMetadata
	return llm.Usage{
		InputTokens:  int(meta.PromptTokenCount),
		OutputTokens: int(meta.CandidatesTokenCount),
		TotalTokens:  int(meta.TotalTokenCount),
	}
}
