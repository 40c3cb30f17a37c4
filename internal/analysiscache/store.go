package analysiscache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/valkey-io/valkey-go"

	"github.com/kapu/painpoint-scout-go/internal/config"
	"github.com/kapu/painpoint-scout-go/internal/domain/product"
)

var (
	// ErrNotCached 는 캐시 미존재 오류다.
	ErrNotCached = errors.New("analysis not cached")
	// ErrStoreDisabled 는 저장소 비활성 오류다.
	ErrStoreDisabled = errors.New("analysis cache disabled")
)

type storeBackend int

const (
	storeBackendMemory storeBackend = iota
	storeBackendValkey
)

// Store 는 Valkey 기반 제품 분석 캐시다.
// 동일 제품의 재분석 요청에 LLM 호출을 생략한다.
type Store struct {
	client  valkey.Client
	cfg     *config.Config
	enabled bool
	backend storeBackend

	mu        sync.RWMutex
	entries   map[string][]byte
	expiresAt map[string]time.Time
}

// NewStore 는 분석 캐시를 생성한다.
func NewStore(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	if !cfg.AnalysisCache.Enabled {
		if cfg.AnalysisCache.Required {
			return nil, errors.New("analysis cache required but disabled")
		}
		return newMemoryStore(cfg), nil
	}

	conn, err := parseStoreURL(cfg.AnalysisCache.URL)
	if err != nil {
		return nil, fmt.Errorf("parse analysis cache url: %w", err)
	}

	var tlsConfig *tls.Config
	if conn.useTLS {
		host, _, splitErr := net.SplitHostPort(conn.addr)
		if splitErr != nil {
			return nil, fmt.Errorf("parse analysis cache addr: %w", splitErr)
		}
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host}
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		TLSConfig:    tlsConfig,
		Username:     conn.username,
		Password:     conn.password,
		InitAddress:  []string{conn.addr},
		SelectDB:     conn.selectDB,
		DisableCache: cfg.AnalysisCache.DisableCache,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to valkey: %w", err)
	}

	return &Store{
		client:  client,
		cfg:     cfg,
		enabled: true,
		backend: storeBackendValkey,
	}, nil
}

func newMemoryStore(cfg *config.Config) *Store {
	return &Store{
		cfg:       cfg,
		enabled:   true,
		backend:   storeBackendMemory,
		entries:   make(map[string][]byte),
		expiresAt: make(map[string]time.Time),
	}
}

// IsEnabled 는 캐시 활성화 여부를 반환한다.
func (s *Store) IsEnabled() bool {
	return s != nil && s.enabled
}

// Close 는 Valkey 연결을 종료한다.
func (s *Store) Close() {
	if s == nil {
		return
	}
	if s.backend == storeBackendValkey && s.client != nil {
		s.client.Close()
	}
}

// Key: 웹사이트와 설명으로 캐시 키를 유도합니다.
func Key(website string, description string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(website) + "\x00" + strings.TrimSpace(description)))
	return "analysis:" + hex.EncodeToString(sum[:])
}

func (s *Store) ttl() time.Duration {
	return time.Duration(s.cfg.AnalysisCache.TTLMinutes) * time.Minute
}

// Get 캐시된 분석 결과 조회
func (s *Store) Get(ctx context.Context, website string, description string) (*product.Analysis, error) {
	if !s.IsEnabled() {
		return nil, ErrStoreDisabled
	}
	key := Key(website, description)
	if s.backend == storeBackendMemory {
		return s.getMemory(key)
	}

	raw, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, ErrNotCached
		}
		return nil, fmt.Errorf("get cached analysis: %w", err)
	}
	return decodeAnalysis(raw)
}

// Set 분석 결과 캐시
func (s *Store) Set(ctx context.Context, website string, description string, analysis *product.Analysis) error {
	if !s.IsEnabled() {
		return ErrStoreDisabled
	}
	if analysis == nil {
		return errors.New("analysis is nil")
	}

	encoded, err := encodeAnalysis(analysis)
	if err != nil {
		return err
	}

	key := Key(website, description)
	if s.backend == storeBackendMemory {
		return s.setMemory(key, encoded)
	}

	cmd := s.client.B().Set().Key(key).Value(valkey.BinaryString(encoded)).Ex(s.ttl()).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("cache analysis: %w", err)
	}
	return nil
}

// Delete 캐시 항목 삭제
func (s *Store) Delete(ctx context.Context, website string, description string) error {
	if !s.IsEnabled() {
		return ErrStoreDisabled
	}
	key := Key(website, description)
	if s.backend == storeBackendMemory {
		return s.deleteMemory(key)
	}

	if err := s.client.Do(ctx, s.client.B().Del().Key(key).Build()).Error(); err != nil && !valkey.IsValkeyNil(err) {
		return fmt.Errorf("delete cached analysis: %w", err)
	}
	return nil
}

// Ping 백엔드 연결 확인
func (s *Store) Ping(ctx context.Context) error {
	if !s.IsEnabled() {
		return ErrStoreDisabled
	}
	if s.backend == storeBackendMemory {
		return nil
	}
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping analysis cache: %w", err)
	}
	return nil
}

func encodeAnalysis(analysis *product.Analysis) ([]byte, error) {
	data, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis: %w", err)
	}
	compressed, err := compressZstd(data)
	if err != nil {
		return nil, err
	}
	return compressed, nil
}

func decodeAnalysis(raw []byte) (*product.Analysis, error) {
	data, err := decompressZstd(raw)
	if err != nil {
		return nil, err
	}
	var analysis product.Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("unmarshal analysis: %w", err)
	}
	return &analysis, nil
}
