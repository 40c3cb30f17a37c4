package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

type logEntry struct {
	level slog.Level
	msg   string
	attrs map[string]any
}

type recordingHandler struct {
	level   slog.Level
	attrs   []slog.Attr
	mu      sync.Mutex
	entries []logEntry
}

func (h *recordingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *recordingHandler) Handle(_ context.Context, record slog.Record) error {
	attrs := map[string]any{}
	for _, attr := range h.attrs {
		attrs[attr.Key] = attr.Value.Any()
	}
	record.Attrs(func(attr slog.Attr) bool {
		attrs[attr.Key] = attr.Value.Any()
		return true
	})

	h.mu.Lock()
	h.entries = append(h.entries, logEntry{
		level: record.Level,
		msg:   record.Message,
		attrs: attrs,
	})
	h.mu.Unlock()
	return nil
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &recordingHandler{
		level: h.level,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *recordingHandler) WithGroup(_ string) slog.Handler {
	return &recordingHandler{level: h.level, attrs: h.attrs}
}

func (h *recordingHandler) Entries() []logEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := make([]logEntry, len(h.entries))
	copy(entries, h.entries)
	return entries
}

func newLoggingRouter(handler *recordingHandler, status int, route string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), RequestLogger(slog.New(handler)))
	router.POST(route, func(c *gin.Context) { c.Status(status) })
	router.GET(route, func(c *gin.Context) { c.Status(status) })
	return router
}

func TestRequestLoggerLogsSuccess(t *testing.T) {
	handler := &recordingHandler{level: slog.LevelInfo}
	router := newLoggingRouter(handler, http.StatusOK, "/api/products/analyses")

	req := httptest.NewRequest(http.MethodPost, "/api/products/analyses", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	entries := handler.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.level != slog.LevelInfo {
		t.Fatalf("expected info level, got %s", entry.level)
	}
	if entry.msg != "http_request" {
		t.Fatalf("expected http_request message, got %q", entry.msg)
	}

	attrs := entry.attrs
	if attrs["request_id"] != "req-123" {
		t.Fatalf("expected request_id=req-123, got %v", attrs["request_id"])
	}
	if attrs["method"] != "POST" {
		t.Fatalf("expected method=POST, got %v", attrs["method"])
	}
	if attrs["path"] != "/api/products/analyses" {
		t.Fatalf("expected analysis path, got %v", attrs["path"])
	}
	if fmt.Sprint(attrs["status"]) != "200" {
		t.Fatalf("expected status=200, got %v", attrs["status"])
	}
	if attrs["ip"] != "192.0.2.1" {
		t.Fatalf("expected client ip attribute, got %v", attrs["ip"])
	}
}

func TestRequestLoggerSkipsPollingPathsOnSuccess(t *testing.T) {
	for _, route := range []string{"/health", "/health/ready", "/metrics"} {
		handler := &recordingHandler{level: slog.LevelInfo}
		router := newLoggingRouter(handler, http.StatusOK, route)

		req := httptest.NewRequest(http.MethodGet, route, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if entries := handler.Entries(); len(entries) != 0 {
			t.Fatalf("expected no log entry for %s, got %d", route, len(entries))
		}
	}
}

func TestRequestLoggerLogsWarnOnClientError(t *testing.T) {
	handler := &recordingHandler{level: slog.LevelInfo}
	router := newLoggingRouter(handler, http.StatusBadRequest, "/api/problems/searches")

	req := httptest.NewRequest(http.MethodPost, "/api/problems/searches", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	entries := handler.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].level != slog.LevelWarn {
		t.Fatalf("expected warn level, got %s", entries[0].level)
	}
}

func TestRequestLoggerLogsErrorOnServerError(t *testing.T) {
	handler := &recordingHandler{level: slog.LevelInfo}
	router := newLoggingRouter(handler, http.StatusInternalServerError, "/api/problems/evaluations")

	req := httptest.NewRequest(http.MethodPost, "/api/problems/evaluations", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	entries := handler.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.level != slog.LevelError {
		t.Fatalf("expected error level, got %s", entry.level)
	}
	if fmt.Sprint(entry.attrs["status"]) != "500" {
		t.Fatalf("expected status=500, got %v", entry.attrs["status"])
	}
}
