package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/kapu/painpoint-scout-go/internal/domain/product"
	"github.com/kapu/painpoint-scout-go/internal/gemini"
	"github.com/kapu/painpoint-scout-go/internal/httperror"
)

func candidates(names ...string) []product.Candidate {
	list := make([]product.Candidate, 0, len(names))
	for _, name := range names {
		list = append(list, product.Candidate{Name: name, Source: product.SourceAI})
	}
	return list
}

func TestEvaluateRequiresInput(t *testing.T) {
	service := testService(t, &fakeLLM{}, &fakeIndex{})

	_, err := service.Evaluate(context.Background(), "req-1", EvaluateRequest{
		ProductSummary: "a product",
	})
	var httpErr *httperror.Error
	if !errors.As(err, &httpErr) || httpErr.Code != httperror.ErrorCodeMissingField {
		t.Fatalf("expected missing field for empty candidates, got %v", err)
	}

	_, err = service.Evaluate(context.Background(), "req-1", EvaluateRequest{
		Candidates: candidates("freelance"),
	})
	if !errors.As(err, &httpErr) || httpErr.Code != httperror.ErrorCodeMissingField {
		t.Fatalf("expected missing field for empty summary, got %v", err)
	}
}

func TestEvaluateSubsetAndCap(t *testing.T) {
	client := &fakeLLM{
		structured: func(_ gemini.Request) (map[string]any, error) {
			return map[string]any{"subreddits": []any{
				"r/freelance", "Freelance", "unknown", "c1", "c2", "c3", "c4", "c5",
				"c6", "c7", "c8", "c9", "c10",
			}}, nil
		},
	}
	service := testService(t, client, &fakeIndex{})

	shortlist, err := service.Evaluate(context.Background(), "req-1", EvaluateRequest{
		Candidates: candidates(
			"freelance", "c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8", "c9", "c10",
		),
		ProductSummary: "a product",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shortlist) != 10 {
		t.Fatalf("expected cap of 10, got %d: %v", len(shortlist), shortlist)
	}
	if shortlist[0] != "freelance" {
		t.Fatalf("expected normalized candidate name first, got %v", shortlist)
	}
	for _, name := range shortlist {
		if name == "unknown" {
			t.Fatalf("non-candidate leaked into shortlist: %v", shortlist)
		}
	}
}

func TestEvaluateMissingSubredditsArray(t *testing.T) {
	client := &fakeLLM{
		structured: func(_ gemini.Request) (map[string]any, error) {
			return map[string]any{"relevant": true}, nil
		},
	}
	service := testService(t, client, &fakeIndex{})

	_, err := service.Evaluate(context.Background(), "req-1", EvaluateRequest{
		Candidates:     candidates("freelance"),
		ProductSummary: "a product",
	})
	var httpErr *httperror.Error
	if !errors.As(err, &httpErr) || httpErr.Code != httperror.ErrorCodeLLMParsing {
		t.Fatalf("expected llm parsing error, got %v", err)
	}
}

func TestEvaluateUsesEvaluateTask(t *testing.T) {
	client := &fakeLLM{
		structured: func(_ gemini.Request) (map[string]any, error) {
			return map[string]any{"subreddits": []any{}}, nil
		},
	}
	service := testService(t, client, &fakeIndex{})

	if _, err := service.Evaluate(context.Background(), "req-1", EvaluateRequest{
		Candidates:     candidates("freelance"),
		ProductSummary: "a product",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.structuredReqs) != 1 || client.structuredReqs[0].Task != "evaluate" {
		t.Fatalf("unexpected structured requests: %+v", client.structuredReqs)
	}
}
