package firestore

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestLookupEachDropsFailedAndMissing(t *testing.T) {
	docs := map[string]string{
		"freelance": "freelancing community",
		"SaaS":      "SaaS founders",
	}

	var mu sync.Mutex
	var failed []string
	records := lookupEach(context.Background(), []string{"freelance", "broken", "missing", "SaaS"}, 4,
		func(_ context.Context, name string) (*CommunityRecord, error) {
			if name == "broken" {
				return nil, errors.New("unavailable")
			}
			description, ok := docs[name]
			if !ok {
				return nil, nil
			}
			return &CommunityRecord{Name: name, Description: description}, nil
		},
		func(name string, _ error) {
			mu.Lock()
			failed = append(failed, name)
			mu.Unlock()
		},
	)

	// 실패한 조회는 누락 문서와 동일하게 해당 항목만 빠진다
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %v", len(records), records)
	}
	if records[0].Name != "freelance" || records[1].Name != "SaaS" {
		t.Fatalf("expected input order preserved, got %v", records)
	}
	if len(failed) != 1 || failed[0] != "broken" {
		t.Fatalf("expected single failure notification, got %v", failed)
	}
}

func TestLookupEachEmptyInput(t *testing.T) {
	records := lookupEach(context.Background(), nil, 4,
		func(_ context.Context, _ string) (*CommunityRecord, error) {
			t.Fatal("lookup must not run for empty input")
			return nil, nil
		},
		func(string, error) {},
	)
	if len(records) != 0 {
		t.Fatalf("expected empty result, got %v", records)
	}
}
