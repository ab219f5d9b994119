package memory

import (
	"context"
	"sync"
	"time"

	"wayfarer/internal/app/policies"
)

type codeEntry struct {
	code      string
	expiresAt time.Time
}

// CodeStore holds one-time codes in process with lazy expiry. Single
// instance only; deployments with more than one replica use redis.
type CodeStore struct {
	mu      sync.Mutex
	entries map[string]codeEntry
	now     func() time.Time
}

func NewCodeStore() *CodeStore {
	return &CodeStore{entries: make(map[string]codeEntry), now: time.Now}
}

func (s *CodeStore) Put(_ context.Context, key, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = codeEntry{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *CodeStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return "", policies.ErrCodeNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return "", policies.ErrCodeNotFound
	}
	return entry.code, nil
}

func (s *CodeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
