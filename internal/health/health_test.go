package health

import (
	"context"
	"testing"

	"github.com/kapu/painpoint-scout-go/internal/config"
)

func TestCollectShallowWithoutCredentials(t *testing.T) {
	cfg := &config.Config{
		Gemini: config.GeminiConfig{
			APIKeys:        nil,
			DefaultModel:   "gemini-2.5-flash",
			TimeoutSeconds: 10,
		},
		AnalysisCache: config.AnalysisCacheConfig{Enabled: false, TTLMinutes: 60},
	}

	resp := Collect(context.Background(), cfg, false)
	if resp.Status != "degraded" {
		t.Fatalf("expected degraded status without api key, got %s", resp.Status)
	}
	if resp.Components["gemini"].Status != "degraded" {
		t.Fatalf("expected gemini degraded, got %s", resp.Components["gemini"].Status)
	}
	if resp.Components["analysis_cache"].Status != "ok" {
		t.Fatalf("expected cache ok, got %s", resp.Components["analysis_cache"].Status)
	}
	if resp.Components["firestore"].Status != "degraded" {
		t.Fatalf("expected firestore degraded without project, got %s", resp.Components["firestore"].Status)
	}
}

func TestCollectHealthyConfig(t *testing.T) {
	cfg := &config.Config{
		Gemini:    config.GeminiConfig{APIKeys: []string{"key"}, DefaultModel: "gemini-2.5-flash"},
		Firestore: config.FirestoreConfig{ProjectID: "demo"},
	}

	resp := Collect(context.Background(), cfg, false)
	if resp.Status != "ok" {
		t.Fatalf("expected ok status, got %s: %+v", resp.Status, resp.Components)
	}
	uptime, ok := resp.Components["app"].Detail["uptime_seconds"].(int)
	if !ok || uptime < 0 {
		t.Fatalf("unexpected app detail: %+v", resp.Components["app"])
	}
}
