package firestore

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"
)

// CommunityRecord: 커뮤니티 문서의 요약 뷰입니다.
type CommunityRecord struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Similarity  float64 `json:"similarity,omitempty"`
}

// CommunityData: 커뮤니티 문서와 하위 문제 문서 전체입니다.
type CommunityData struct {
	Subreddit   string           `json:"subreddit"`
	Description string           `json:"description"`
	Problems    []map[string]any `json:"problems"`
}

func (s *Store) logLookupFailure(event string, name string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(event, "name", name, "err", err)
}

// lookupEach 는 이름별 조회를 병렬로 수행한다. 입력 순서를 유지하며,
// 실패하거나 존재하지 않는 항목은 onError 통지 후 결과에서 제외된다.
func lookupEach[T any](
	ctx context.Context,
	names []string,
	maxGoroutines int,
	lookup func(ctx context.Context, name string) (*T, error),
	onError func(name string, err error),
) []T {
	results := make([]*T, len(names))
	p := pool.New().WithContext(ctx).WithMaxGoroutines(maxGoroutines)
	for i, name := range names {
		p.Go(func(ctx context.Context) error {
			result, err := lookup(ctx, name)
			if err != nil {
				onError(name, err)
				return nil
			}
			results[i] = result
			return nil
		})
	}
	_ = p.Wait()

	found := make([]T, 0, len(names))
	for _, result := range results {
		if result != nil {
			found = append(found, *result)
		}
	}
	return found
}

// Community: 이름으로 커뮤니티 문서를 조회합니다. 없으면 nil을 반환합니다.
func (s *Store) Community(ctx context.Context, name string) (*CommunityRecord, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := client.Collection(s.cfg.SubredditsCollection).Doc(name).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get community %s: %w", name, err)
	}

	return &CommunityRecord{
		Name:        doc.Ref.ID,
		Description: stringField(doc.Data(), "description"),
	}, nil
}

// Communities: 여러 커뮤니티 문서를 병렬 조회합니다.
// 입력 순서를 유지하고, 존재하지 않거나 조회에 실패한 커뮤니티는 결과에서 제외합니다.
// 개별 실패는 로그만 남기고 배치 전체를 중단하지 않는다.
func (s *Store) Communities(ctx context.Context, names []string) ([]CommunityRecord, error) {
	if len(names) == 0 {
		return []CommunityRecord{}, nil
	}

	found := lookupEach(ctx, names, 8, s.Community, func(name string, err error) {
		s.logLookupFailure("community_lookup_failed", name, err)
	})
	return found, nil
}

// CommunityDetail: 커뮤니티 문서와 문제 하위 컬렉션을 조회합니다.
// 커뮤니티가 없으면 nil을 반환합니다.
func (s *Store) CommunityDetail(ctx context.Context, name string) (*CommunityData, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}

	docRef := client.Collection(s.cfg.SubredditsCollection).Doc(name)
	doc, err := docRef.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get community %s: %w", name, err)
	}

	data := &CommunityData{
		Subreddit:   doc.Ref.ID,
		Description: stringField(doc.Data(), "description"),
		Problems:    []map[string]any{},
	}

	iter := docRef.Collection(s.cfg.ProblemsCollection).Documents(ctx)
	defer iter.Stop()
	for {
		problemDoc, err := iter.Next()
		if err != nil {
			if isIteratorDone(err) {
				break
			}
			return nil, fmt.Errorf("list problems of %s: %w", name, err)
		}
		fields := problemDoc.Data()
		delete(fields, s.cfg.ProblemVectorField)
		fields["id"] = problemDoc.Ref.ID
		data.Problems = append(data.Problems, fields)
	}

	return data, nil
}

// CommunityDetails: 여러 커뮤니티의 상세 데이터를 병렬 조회합니다.
// 입력 순서를 유지하고, 존재하지 않거나 조회에 실패한 커뮤니티는 결과에서 제외합니다.
func (s *Store) CommunityDetails(ctx context.Context, names []string) ([]CommunityData, error) {
	if len(names) == 0 {
		return []CommunityData{}, nil
	}

	found := lookupEach(ctx, names, 4, s.CommunityDetail, func(name string, err error) {
		s.logLookupFailure("community_detail_lookup_failed", name, err)
	})
	return found, nil
}

func stringField(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	if value, ok := data[key].(string); ok {
		return value
	}
	return ""
}
