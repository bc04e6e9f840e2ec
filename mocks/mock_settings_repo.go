package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invoicer/internal/domain"
)

// MockSettingsRepo is a mock implementation of port.SettingsRepository.
type MockSettingsRepo struct {
	mock.Mock
}

func (m *MockSettingsRepo) Get(ctx context.Context) (*domain.BusinessSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BusinessSettings), args.Error(1)
}

func (m *MockSettingsRepo) Upsert(ctx context.Context, settings *domain.BusinessSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}
