package port

import (
	"context"
	"time"

	"invoicer/internal/domain"
)

// StatsRepository provides aggregate dashboard queries.
type StatsRepository interface {
	// GetDashboardStats counts invoices past due relative to today as overdue.
	GetDashboardStats(ctx context.Context, today time.Time) (*domain.DashboardStats, error)
}
