package analysiscache

import (
	"time"

	"github.com/kapu/painpoint-scout-go/internal/domain/product"
)

func (s *Store) getMemory(key string) (*product.Analysis, error) {
	s.mu.RLock()
	raw, ok := s.entries[key]
	expiresAt, hasExpiry := s.expiresAt[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotCached
	}
	if hasExpiry && time.Now().After(expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		delete(s.expiresAt, key)
		s.mu.Unlock()
		return nil, ErrNotCached
	}
	return decodeAnalysis(raw)
}

func (s *Store) setMemory(key string, encoded []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = encoded
	s.expiresAt[key] = time.Now().Add(s.ttl())
	return nil
}

func (s *Store) deleteMemory(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	delete(s.expiresAt, key)
	return nil
}
