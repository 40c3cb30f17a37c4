package shared

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecoderConfig: mapstructure 디코더의 기본 설정입니다.
func DecoderConfig(result any) *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		Result:           result,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
}

// Decode: LLM 구조화 응답(map[string]any)을 Go struct로 디코딩합니다.
// 모델이 숫자를 문자열로 내보내는 경우가 있어 약한 타입 변환을 허용하고,
// 스키마에 없는 여분 필드는 무시합니다.
func Decode(input map[string]any, result any) error {
	decoder, err := mapstructure.NewDecoder(DecoderConfig(result))
	if err != nil {
		return fmt.Errorf("new decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
