package memory

import (
	"context"
	"sync"

	"wayfarer/internal/domain/user"
)

type UserRepository struct {
	mu      sync.RWMutex
	records map[user.ID]user.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{records: make(map[user.ID]user.User)}
}

func (r *UserRepository) ByID(_ context.Context, id user.ID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.records[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := u
	return &copied, nil
}

func (r *UserRepository) ByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = user.NormalizeEmail(email)
	for _, u := range r.records {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *UserRepository) Save(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.records {
		if existing.Email == u.Email && id != u.ID {
			return user.ErrEmailAlreadyUsed
		}
	}
	r.records[u.ID] = *u
	return nil
}
