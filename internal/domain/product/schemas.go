package product

// EvaluationSchema: 커뮤니티 평가 응답의 JSON 스키마입니다.
func EvaluationSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"subreddits": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"subreddits"},
	}
}

// VerdictSchema: 문제 판정 응답의 JSON 스키마입니다.
func VerdictSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"relevant":       map[string]any{"type": "boolean"},
			"explanation":    map[string]any{"type": "string"},
			"recommendation": map[string]any{"type": "string"},
		},
		"required": []string{"relevant", "explanation", "recommendation"},
	}
}
