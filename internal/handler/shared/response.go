package shared

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/kapu/painpoint-scout-go/internal/httperror"
	"github.com/kapu/painpoint-scout-go/internal/middleware"
)

// WriteError 는 에러 응답을 작성한다.
func WriteError(c *gin.Context, err error) {
	if c == nil {
		return
	}
	status, payload := httperror.Response(err, middleware.GetRequestID(c))
	c.JSON(status, payload)
}

// BindJSON 는 요청 본문을 JSON으로 파싱한다.
// 모든 분석/검색 엔드포인트는 본문이 필수라 빈 본문도 검증 에러로 처리한다.
func BindJSON(c *gin.Context, out any) bool {
	if c == nil {
		return false
	}
	if err := c.ShouldBindJSON(out); err != nil {
		if errors.Is(err, io.EOF) {
			WriteError(c, httperror.NewInvalidInput("request body is required"))
			return false
		}
		WriteError(c, httperror.NewValidationError(err))
		return false
	}
	return true
}
