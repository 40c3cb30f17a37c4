package guard

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/forPelevin/gomoji"
	"golang.org/x/text/unicode/norm"

	"github.com/kapu/painpoint-scout-go/internal/config"
)

// BlockedError 는 가드가 입력을 차단했을 때 반환된다.
type BlockedError struct {
	Pattern string
}

// Error 는 차단 사유 메시지를 반환한다.
func (e *BlockedError) Error() string {
	return fmt.Sprintf("input blocked by injection guard: %s", e.Pattern)
}

// 사용자 입력(제품 설명, 문제 검색어)이 프롬프트에 그대로 삽입되므로
// 대표적인 인젝션 문구를 사전 차단한다.
var defaultPatterns = []string{
	"ignore previous instructions",
	"ignore all previous instructions",
	"disregard the above",
	"disregard all prior",
	"you are now",
	"system prompt",
	"reveal your instructions",
	"print your instructions",
	"do anything now",
	"jailbreak",
}

// InjectionGuard 는 사용자 입력의 프롬프트 인젝션을 검사한다.
type InjectionGuard struct {
	enabled  bool
	patterns []string
	matcher  *ahocorasick.Matcher
	logger   *slog.Logger
}

// NewGuard 는 InjectionGuard 를 생성한다.
func NewGuard(cfg *config.Config, logger *slog.Logger) (*InjectionGuard, error) {
	if logger == nil {
		logger = slog.Default()
	}

	enabled := true
	var extra []string
	if cfg != nil {
		enabled = cfg.Guard.Enabled
		extra = cfg.Guard.ExtraPatterns
	}

	patterns := make([]string, 0, len(defaultPatterns)+len(extra))
	for _, pattern := range append(append([]string{}, defaultPatterns...), extra...) {
		normalized := Normalize(pattern)
		if normalized != "" {
			patterns = append(patterns, normalized)
		}
	}

	return &InjectionGuard{
		enabled:  enabled,
		patterns: patterns,
		matcher:  ahocorasick.NewStringMatcher(patterns),
		logger:   logger,
	}, nil
}

// EnsureSafe 는 입력이 안전하지 않으면 BlockedError 를 반환한다.
func (g *InjectionGuard) EnsureSafe(text string) error {
	if g == nil || !g.enabled {
		return nil
	}
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	hits := g.matcher.Match([]byte(normalized))
	if len(hits) == 0 {
		return nil
	}

	pattern := ""
	if hits[0] >= 0 && hits[0] < len(g.patterns) {
		pattern = g.patterns[hits[0]]
	}
	g.logger.Warn("guard_blocked", "pattern", pattern)
	return &BlockedError{Pattern: pattern}
}

// Normalize 는 매칭/임베딩 전 입력 텍스트를 정규화한다.
// NFC 정규화 후 이모지를 제거하고 소문자로 맞춘다.
func Normalize(text string) string {
	value := norm.NFC.String(text)
	value = gomoji.RemoveEmojis(value)
	value = strings.Join(strings.Fields(value), " ")
	return strings.ToLower(strings.TrimSpace(value))
}
