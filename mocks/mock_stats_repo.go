package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"invoicer/internal/domain"
)

// MockStatsRepo is a mock implementation of port.StatsRepository.
type MockStatsRepo struct {
	mock.Mock
}

func (m *MockStatsRepo) GetDashboardStats(ctx context.Context, today time.Time) (*domain.DashboardStats, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardStats), args.Error(1)
}
