package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/kapu/painpoint-scout-go/internal/config"
	"github.com/kapu/painpoint-scout-go/internal/domain/product"
	"github.com/kapu/painpoint-scout-go/internal/firestore"
	"github.com/kapu/painpoint-scout-go/internal/gemini"
	"github.com/kapu/painpoint-scout-go/internal/guard"
)

type fakeLLMClient struct {
	structuredFn func(ctx context.Context, req gemini.Request, schema map[string]any) (map[string]any, string, error)
	searchFn     func(ctx context.Context, req gemini.Request) (map[string]any, string, error)
	embedFn      func(ctx context.Context, text string) ([]float32, error)
}

func (f fakeLLMClient) Structured(ctx context.Context, req gemini.Request, schema map[string]any) (map[string]any, string, error) {
	if f.structuredFn == nil {
		return map[string]any{}, "gemini-test", nil
	}
	return f.structuredFn(ctx, req, schema)
}

func (f fakeLLMClient) StructuredWithSearch(ctx context.Context, req gemini.Request) (map[string]any, string, error) {
	if f.searchFn == nil {
		return map[string]any{}, "gemini-test", nil
	}
	return f.searchFn(ctx, req)
}

func (f fakeLLMClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.embedFn == nil {
		return []float32{0.1}, nil
	}
	return f.embedFn(ctx, text)
}

type fakeCommunityIndex struct {
	records []firestore.CommunityRecord
}

func (f fakeCommunityIndex) Communities(_ context.Context, names []string) ([]firestore.CommunityRecord, error) {
	found := make([]firestore.CommunityRecord, 0, len(names))
	for _, name := range names {
		for _, record := range f.records {
			if record.Name == name {
				found = append(found, record)
			}
		}
	}
	return found, nil
}

func (f fakeCommunityIndex) SearchCommunities(_ context.Context, _ []float32, _ int) ([]firestore.CommunityRecord, error) {
	return f.records, nil
}

type fakeProblemIndex struct {
	results []firestore.ProblemRecord
	err     error
}

func (f fakeProblemIndex) SearchProblems(_ context.Context, _ []float32, _ int) ([]firestore.ProblemRecord, error) {
	return f.results, f.err
}

type fakeCommunityReader struct {
	data map[string]firestore.CommunityData
	err  error
}

func (f fakeCommunityReader) CommunityDetails(_ context.Context, names []string) ([]firestore.CommunityData, error) {
	if f.err != nil {
		return nil, f.err
	}
	found := make([]firestore.CommunityData, 0, len(names))
	for _, name := range names {
		if detail, ok := f.data[name]; ok {
			found = append(found, detail)
		}
	}
	return found, nil
}

func testDeps(t *testing.T) (*config.Config, *guard.InjectionGuard, *product.Prompts, *slog.Logger) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Gemini:    config.GeminiConfig{DefaultModel: "gemini-test"},
		Guard:     config.GuardConfig{Enabled: true},
		Firestore: config.FirestoreConfig{SearchLimit: 10},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))

	injectionGuard, err := guard.NewGuard(cfg, logger)
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	prompts, err := product.NewPrompts()
	if err != nil {
		t.Fatalf("load prompts: %v", err)
	}
	return cfg, injectionGuard, prompts, logger
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(recorder.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, recorder.Body.String())
	}
	return out
}

func newAnalysisRouter(t *testing.T, client gemini.LLM, index fakeCommunityIndex) *gin.Engine {
	cfg, injectionGuard, prompts, logger := testDeps(t)
	handler := NewAnalysisHandler(cfg, client, injectionGuard, index, nil, prompts, logger)
	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func TestHandleAnalyzeMissingWebsite(t *testing.T) {
	router := newAnalysisRouter(t, fakeLLMClient{}, fakeCommunityIndex{})

	recorder := postJSON(t, router, "/api/products/analyses", gin.H{"description": "no website"})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", recorder.Code, recorder.Body.String())
	}
	body := decodeBody[map[string]any](t, recorder)
	if body["error_code"] != "MISSING_FIELD" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestHandleAnalyzeSuccess(t *testing.T) {
	client := fakeLLMClient{
		searchFn: func(_ context.Context, _ gemini.Request) (map[string]any, string, error) {
			return map[string]any{
				"product_summary": "A task tracker",
				"target_audience": "Freelancers",
				"problems":        []any{"missed deadlines"},
				"subreddits":      []any{"r/freelance"},
			}, "gemini-test", nil
		},
		structuredFn: func(_ context.Context, _ gemini.Request, _ map[string]any) (map[string]any, string, error) {
			return map[string]any{"subreddits": []any{"freelance"}}, "gemini-test", nil
		},
	}
	router := newAnalysisRouter(t, client, fakeCommunityIndex{})

	recorder := postJSON(t, router, "/api/products/analyses", gin.H{"website": "https://example.com"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	body := decodeBody[AnalyzeProductResponse](t, recorder)
	if body.Analysis.ProductSummary != "A task tracker" {
		t.Fatalf("unexpected analysis: %+v", body.Analysis)
	}
	if len(body.Analysis.Subreddits) != 1 || body.Analysis.Subreddits[0] != "freelance" {
		t.Fatalf("unexpected subreddits: %v", body.Analysis.Subreddits)
	}
}

func newSubredditsRouter(t *testing.T, client gemini.LLM, reader CommunityReader) *gin.Engine {
	cfg, injectionGuard, prompts, logger := testDeps(t)
	handler := NewSubredditsHandler(cfg, client, injectionGuard, fakeCommunityIndex{}, reader, prompts, logger)
	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func TestHandleEvaluateSubreddits(t *testing.T) {
	client := fakeLLMClient{
		structuredFn: func(_ context.Context, _ gemini.Request, _ map[string]any) (map[string]any, string, error) {
			return map[string]any{"subreddits": []any{"freelance", "intruder"}}, "gemini-test", nil
		},
	}
	router := newSubredditsRouter(t, client, fakeCommunityReader{})

	recorder := postJSON(t, router, "/api/subreddits/evaluations", gin.H{
		"subreddits": []any{
			"freelance",
			map[string]any{"name": "SaaS", "description": "SaaS founders"},
		},
		"product_summary": "A task tracker",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	body := decodeBody[EvaluateSubredditsResponse](t, recorder)
	if len(body.RelevantSubreddits) != 1 || body.RelevantSubreddits[0] != "freelance" {
		t.Fatalf("unexpected shortlist: %v", body.RelevantSubreddits)
	}
}

func TestHandleEvaluateSubredditsMissingFields(t *testing.T) {
	router := newSubredditsRouter(t, fakeLLMClient{}, fakeCommunityReader{})

	recorder := postJSON(t, router, "/api/subreddits/evaluations", gin.H{
		"subreddits": []any{"freelance"},
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing summary, got %d", recorder.Code)
	}
}

func TestHandleSubredditData(t *testing.T) {
	reader := fakeCommunityReader{data: map[string]firestore.CommunityData{
		"freelance": {
			Subreddit:   "freelance",
			Description: "Freelancers community",
			Problems:    []map[string]any{{"id": "p1", "title": "late payments"}},
		},
	}}
	router := newSubredditsRouter(t, fakeLLMClient{}, reader)

	recorder := postJSON(t, router, "/api/subreddits/data", gin.H{
		"subreddits": []string{"r/freelance", "missing"},
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	body := decodeBody[SubredditDataResponse](t, recorder)
	// 존재하지 않는 커뮤니티는 조용히 제외된다
	if len(body.Data) != 1 || body.Data[0].Subreddit != "freelance" {
		t.Fatalf("unexpected data: %+v", body.Data)
	}
	if len(body.Data[0].Problems) != 1 {
		t.Fatalf("expected problems included: %+v", body.Data[0])
	}
}

func TestHandleSubredditDataMissingList(t *testing.T) {
	router := newSubredditsRouter(t, fakeLLMClient{}, fakeCommunityReader{})

	recorder := postJSON(t, router, "/api/subreddits/data", gin.H{})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func newProblemsRouter(t *testing.T, client gemini.LLM, index fakeProblemIndex) *gin.Engine {
	cfg, injectionGuard, prompts, logger := testDeps(t)
	handler := NewProblemsHandler(cfg, client, injectionGuard, index, prompts, logger)
	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func TestHandleSearchProblems(t *testing.T) {
	index := fakeProblemIndex{results: []firestore.ProblemRecord{
		{ID: "p1", Subreddit: "freelance", Title: "Untitled Problem", Description: "No description available", Similarity: 0.75},
	}}
	router := newProblemsRouter(t, fakeLLMClient{}, index)

	recorder := postJSON(t, router, "/api/problems/searches", gin.H{"query": "missed deadlines"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	body := decodeBody[SearchProblemsResponse](t, recorder)
	if len(body.Results) != 1 || body.Results[0].Subreddit != "freelance" {
		t.Fatalf("unexpected results: %+v", body.Results)
	}
}

func TestHandleSearchProblemsEmptyQuery(t *testing.T) {
	router := newProblemsRouter(t, fakeLLMClient{}, fakeProblemIndex{})

	recorder := postJSON(t, router, "/api/problems/searches", gin.H{"query": ""})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestHandleSearchProblemsUpstreamFailure(t *testing.T) {
	router := newProblemsRouter(t, fakeLLMClient{}, fakeProblemIndex{err: errors.New("index down")})

	recorder := postJSON(t, router, "/api/problems/searches", gin.H{"query": "missed deadlines"})
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", recorder.Code)
	}
}

func TestHandleEvaluateProblem(t *testing.T) {
	client := fakeLLMClient{
		structuredFn: func(_ context.Context, _ gemini.Request, _ map[string]any) (map[string]any, string, error) {
			return map[string]any{
				"relevant":       true,
				"explanation":    "direct fit",
				"recommendation": "lead with deadline reminders",
			}, "gemini-test", nil
		},
	}
	router := newProblemsRouter(t, client, fakeProblemIndex{})

	recorder := postJSON(t, router, "/api/problems/evaluations", gin.H{
		"product_summary":     "A task tracker",
		"problem_description": "I keep missing deadlines",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	body := decodeBody[EvaluateProblemResponse](t, recorder)
	if !body.Evaluation.Relevant || body.Evaluation.Recommendation == "" {
		t.Fatalf("unexpected verdict: %+v", body.Evaluation)
	}
}

func TestHandleEvaluateProblemMissingFields(t *testing.T) {
	router := newProblemsRouter(t, fakeLLMClient{}, fakeProblemIndex{})

	recorder := postJSON(t, router, "/api/problems/evaluations", gin.H{
		"problem_description": "I keep missing deadlines",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}
