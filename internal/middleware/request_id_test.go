package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newRequestIDRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.POST("/api/problems/searches", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	return router
}

func TestRequestIDGenerated(t *testing.T) {
	router := newRequestIDRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/problems/searches", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	id := resp.Header().Get(RequestIDHeader)
	if len(id) != 32 {
		t.Fatalf("expected generated hex id, got %q", id)
	}
	if resp.Body.String() != id {
		t.Fatalf("expected body to match request id")
	}
}

func TestRequestIDPreserved(t *testing.T) {
	router := newRequestIDRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/problems/searches", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if id := resp.Header().Get(RequestIDHeader); id != "req-123" {
		t.Fatalf("expected request id to be preserved, got %q", id)
	}
}

func TestRequestIDOversizedInboundReplaced(t *testing.T) {
	router := newRequestIDRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/problems/searches", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxInboundIDLength+1))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	id := resp.Header().Get(RequestIDHeader)
	if strings.Contains(id, "x") {
		t.Fatalf("expected oversized inbound id to be replaced, got %q", id)
	}
	if len(id) != 32 {
		t.Fatalf("expected generated hex id, got %q", id)
	}
}
