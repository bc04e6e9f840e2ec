package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockURLCache is a mock implementation of port.URLCache.
type MockURLCache struct {
	mock.Mock
}

func (m *MockURLCache) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockURLCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockURLCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
