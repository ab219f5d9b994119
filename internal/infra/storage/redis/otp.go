// Package redis implements the one-time-code store on redis so codes survive
// restarts and are shared across instances.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wayfarer/internal/app/policies"
)

type CodeStore struct {
	client *redis.Client
}

func NewCodeStore(client *redis.Client) *CodeStore {
	return &CodeStore{client: client}
}

func (s *CodeStore) Put(ctx context.Context, key, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, codeKey(key), code, ttl).Err(); err != nil {
		return fmt.Errorf("redis: store code: %w", err)
	}
	return nil
}

func (s *CodeStore) Get(ctx context.Context, key string) (string, error) {
	code, err := s.client.Get(ctx, codeKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", policies.ErrCodeNotFound
		}
		return "", fmt.Errorf("redis: fetch code: %w", err)
	}
	return code, nil
}

func (s *CodeStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, codeKey(key)).Err(); err != nil {
		return fmt.Errorf("redis: delete code: %w", err)
	}
	return nil
}

func codeKey(key string) string {
	return "otp:" + key
}

var _ policies.CodeStore = (*CodeStore)(nil)
