package firestore

import (
	"context"
	"fmt"

	gcfs "cloud.google.com/go/firestore"
)

// ProblemRecord: 문제 벡터 검색 결과 한 건입니다.
type ProblemRecord struct {
	ID          string  `json:"id"`
	Subreddit   string  `json:"subreddit"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Similarity  float64 `json:"similarity"`
}

// SearchCommunities: 임베딩 벡터로 유사 커뮤니티를 검색합니다.
// 인덱스가 비어 있으면 빈 목록을 반환합니다.
func (s *Store) SearchCommunities(ctx context.Context, vector []float32, limit int) ([]CommunityRecord, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.cfg.SearchLimit
	}

	query := client.Collection(s.cfg.SubredditsCollection).FindNearest(
		s.cfg.SubredditVectorField,
		gcfs.Vector32(vector),
		limit,
		gcfs.DistanceMeasureCosine,
		&gcfs.FindNearestOptions{DistanceResultField: distanceField},
	)

	iter := query.Documents(ctx)
	defer iter.Stop()

	results := make([]CommunityRecord, 0, limit)
	for {
		doc, err := iter.Next()
		if err != nil {
			if isIteratorDone(err) {
				break
			}
			return nil, fmt.Errorf("search communities: %w", err)
		}
		data := doc.Data()
		results = append(results, CommunityRecord{
			Name:        doc.Ref.ID,
			Description: stringField(data, "description"),
			Similarity:  SimilarityFromDistance(floatField(data, distanceField)),
		})
	}
	return results, nil
}

// SearchProblems: 모든 커뮤니티를 가로질러 유사 문제를 검색합니다.
// 커뮤니티 이름은 문제 문서의 상위 경로에서 복원합니다.
func (s *Store) SearchProblems(ctx context.Context, vector []float32, limit int) ([]ProblemRecord, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.cfg.SearchLimit
	}

	query := client.CollectionGroup(s.cfg.ProblemsCollection).FindNearest(
		s.cfg.ProblemVectorField,
		gcfs.Vector32(vector),
		limit,
		gcfs.DistanceMeasureCosine,
		&gcfs.FindNearestOptions{DistanceResultField: distanceField},
	)

	iter := query.Documents(ctx)
	defer iter.Stop()

	results := make([]ProblemRecord, 0, limit)
	for {
		doc, err := iter.Next()
		if err != nil {
			if isIteratorDone(err) {
				break
			}
			return nil, fmt.Errorf("search problems: %w", err)
		}

		subreddit := "unknown"
		if parent := doc.Ref.Parent; parent != nil && parent.Parent != nil {
			subreddit = parent.Parent.ID
		}

		data := doc.Data()
		record := ProblemRecord{
			ID:          doc.Ref.ID,
			Subreddit:   subreddit,
			Title:       stringField(data, "title"),
			Description: stringField(data, "description"),
			Similarity:  SimilarityFromDistance(floatField(data, distanceField)),
		}
		if record.Title == "" {
			record.Title = "Untitled Problem"
		}
		if record.Description == "" {
			record.Description = "No description available"
		}
		results = append(results, record)
	}
	return results, nil
}

// SimilarityFromDistance: 코사인 거리(0~2)를 유사도(0~1)로 변환합니다.
func SimilarityFromDistance(distance float64) float64 {
	similarity := 1 - distance/2
	if similarity < 0 {
		return 0
	}
	if similarity > 1 {
		return 1
	}
	return similarity
}

func floatField(data map[string]any, key string) float64 {
	if data == nil {
		return 0
	}
	switch value := data[key].(type) {
	case float64:
		return value
	case float32:
		return float64(value)
	case int64:
		return float64(value)
	}
	return 0
}
