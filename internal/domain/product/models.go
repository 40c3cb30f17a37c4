package product

import "strings"

// Analysis: 제품 분석 결과입니다. LLM이 생성한 요약과 추천 커뮤니티를 담습니다.
type Analysis struct {
	ProductSummary string   `json:"product_summary" mapstructure:"product_summary"`
	TargetAudience string   `json:"target_audience" mapstructure:"target_audience"`
	Problems       []string `json:"problems" mapstructure:"problems"`
	Subreddits     []string `json:"subreddits" mapstructure:"subreddits"`
}

// Candidate: 평가 대상 커뮤니티 후보입니다.
type Candidate struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Source      string  `json:"source"`
	Similarity  float64 `json:"similarity,omitempty"`
}

// 후보 출처 구분.
const (
	SourceAI     = "ai"
	SourceVector = "vector"
)

// Verdict: 문제-제품 연관성 판정 결과입니다.
type Verdict struct {
	Relevant       bool   `json:"relevant" mapstructure:"relevant"`
	Explanation    string `json:"explanation" mapstructure:"explanation"`
	Recommendation string `json:"recommendation" mapstructure:"recommendation"`
}

// NormalizeSubreddit: "r/" 접두사를 제거하고 공백을 정리합니다.
func NormalizeSubreddit(name string) string {
	name = strings.TrimSpace(name)
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "r/") {
		name = name[2:]
	} else if strings.HasPrefix(lower, "/r/") {
		name = name[3:]
	}
	return strings.TrimSpace(name)
}

// MergeCandidates: 이름 기준으로 후보를 병합합니다. 같은 이름이 다시 나오면
// 나중 항목이 이깁니다.
func MergeCandidates(lists ...[]Candidate) []Candidate {
	merged := make([]Candidate, 0)
	index := make(map[string]int)
	for _, list := range lists {
		for _, candidate := range list {
			candidate.Name = NormalizeSubreddit(candidate.Name)
			if candidate.Name == "" {
				continue
			}
			if pos, ok := index[candidate.Name]; ok {
				merged[pos] = candidate
				continue
			}
			index[candidate.Name] = len(merged)
			merged = append(merged, candidate)
		}
	}
	return merged
}

// CandidateNames: 후보 목록에서 이름만 추출합니다.
func CandidateNames(candidates []Candidate) []string {
	names := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		names = append(names, candidate.Name)
	}
	return names
}
