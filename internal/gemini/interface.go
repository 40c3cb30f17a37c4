package gemini

import (
	"context"
)

// LLM 은 LLM 클라이언트 인터페이스다.
// 테스트에서 mock 구현을 주입할 수 있도록 한다.
type LLM interface {
	// Structured JSON 스키마 기반 응답
	Structured(ctx context.Context, req Request, schema map[string]any) (map[string]any, string, error)

	// StructuredWithSearch 프로바이더 내장 웹 검색 능력을 선언한 JSON 응답.
	// google_search 툴과 response schema는 동시에 선언할 수 없으므로
	// JSON 형태는 프롬프트로 지시하고 응답 텍스트에서 복원한다.
	StructuredWithSearch(ctx context.Context, req Request) (map[string]any, string, error)

	// Embed 질의 텍스트를 임베딩 벡터로 변환
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Client가 LLM 인터페이스를 구현하는지 컴파일 타임 확인
var _ LLM = (*Client)(nil)
