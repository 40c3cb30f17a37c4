package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kapu/painpoint-scout-go/internal/config"
)

// NewHTTPServer 는 HTTP 서버를 생성한다.
// 분석 요청은 웹 검색을 동반한 LLM 호출이라 수십 초까지 걸릴 수 있어
// 쓰기 타임아웃은 Gemini 타임아웃보다 넉넉하게 잡는다.
func NewHTTPServer(cfg *config.Config, router *gin.Engine) *http.Server {
	writeTimeout := time.Duration(cfg.Gemini.TimeoutSeconds+30) * time.Second

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	if cfg.HTTP.HTTP2Enabled {
		server.Handler = h2c.NewHandler(router, &http2.Server{})
	}

	return server
}
