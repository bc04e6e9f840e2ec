package service

import (
	"context"

	"invoicer/internal/domain"
	"invoicer/internal/port"
)

// StatsService provides dashboard statistics.
type StatsService interface {
	GetStats(ctx context.Context) (*domain.DashboardStats, error)
}

type statsService struct {
	statsRepo port.StatsRepository
	clock     Clock
}

// NewStatsService creates a new StatsService implementation.
func NewStatsService(statsRepo port.StatsRepository, clock Clock) StatsService {
	return &statsService{statsRepo: statsRepo, clock: clock}
}

func (s *statsService) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	return s.statsRepo.GetDashboardStats(ctx, s.clock.today())
}
