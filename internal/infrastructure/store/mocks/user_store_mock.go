package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/ec-shop/internal/domain/user"
)

// MockUserStore is an in-memory implementation of user.Store for testing.
type MockUserStore struct {
	mu    sync.RWMutex
	users map[string]user.User // keyed by username
}

func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[string]user.User)}
}

func (m *MockUserStore) CreateUser(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.Username]; ok {
		return fmt.Errorf("%s: %w", u.Username, user.ErrUserAlreadyExists)
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return fmt.Errorf("%s: %w", u.Email, user.ErrUserAlreadyExists)
		}
	}
	m.users[u.Username] = *u
	return nil
}

func (m *MockUserStore) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[username]
	if !ok {
		return nil, fmt.Errorf("%s: %w", username, user.ErrUserNotFound)
	}
	cp := u
	return &cp, nil
}
