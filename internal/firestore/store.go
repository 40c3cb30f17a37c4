package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	gcfs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kapu/painpoint-scout-go/internal/config"
)

// distanceField 는 벡터 검색 결과에 거리값이 기록되는 필드명이다.
const distanceField = "vector_distance"

// Store: Firestore 커뮤니티/문제 데이터 저장소입니다.
// 클라이언트는 첫 사용 시점에 지연 초기화됩니다.
type Store struct {
	cfg    config.FirestoreConfig
	logger *slog.Logger

	mu     sync.Mutex
	client *gcfs.Client
}

// NewStore: Firestore 저장소를 생성합니다. 연결은 아직 열지 않습니다.
func NewStore(cfg config.FirestoreConfig, logger *slog.Logger) *Store {
	return &Store{cfg: cfg, logger: logger}
}

// Enabled: 프로젝트 설정이 존재하는지 확인합니다.
func (s *Store) Enabled() bool {
	return s != nil && s.cfg.ProjectID != ""
}

// getClient: Firestore 클라이언트를 지연 생성합니다.
// 자격 증명 우선순위: 서비스 계정 파일 > 환경변수 키 쌍 > ADC.
func (s *Store) getClient(ctx context.Context) (*gcfs.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}
	if s.cfg.ProjectID == "" {
		return nil, fmt.Errorf("firestore project id not configured")
	}

	var opts []option.ClientOption
	switch {
	case s.cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(s.cfg.CredentialsFile))
	case s.cfg.HasKeyCredentials():
		opts = append(opts, option.WithCredentialsJSON(serviceAccountJSON(s.cfg)))
	}

	client, err := gcfs.NewClient(ctx, s.cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	s.client = client
	return client, nil
}

// Ping: 연결 상태를 확인합니다.
func (s *Store) Ping(ctx context.Context) error {
	client, err := s.getClient(ctx)
	if err != nil {
		return err
	}
	iter := client.Collection(s.cfg.SubredditsCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !isIteratorDone(err) {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

// Close: 열린 클라이언트를 닫습니다.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isIteratorDone(err error) bool {
	return errors.Is(err, iterator.Done)
}

// serviceAccountJSON: 환경변수로 주입된 키 쌍을 서비스 계정 JSON으로 조립합니다.
func serviceAccountJSON(cfg config.FirestoreConfig) []byte {
	payload := fmt.Sprintf(
		`{"type":"service_account","project_id":%q,"client_email":%q,"private_key":%q,"token_uri":"https://oauth2.googleapis.com/token"}`,
		cfg.ProjectID, cfg.ClientEmail, cfg.PrivateKey,
	)
	return []byte(payload)
}
