package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"invoicer/internal/domain"
	"invoicer/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

const dashboardStatsQuery = `SELECT
	COALESCE(SUM(total), 0)::numeric(12,2) AS total_revenue,
	COALESCE(SUM(CASE WHEN status = 'paid' THEN total END), 0)::numeric(12,2) AS paid_revenue,
	COALESCE(SUM(CASE WHEN status <> 'paid' THEN total END), 0)::numeric(12,2) AS pending_revenue,
	COUNT(*) AS invoice_count,
	COUNT(CASE WHEN status = 'paid' THEN 1 END) AS paid_count,
	COUNT(CASE WHEN status <> 'paid' THEN 1 END) AS pending_count,
	COUNT(CASE WHEN status <> 'paid' AND due_date < $1 THEN 1 END) AS overdue_count
FROM invoices`

func (r *statsRepo) GetDashboardStats(ctx context.Context, today time.Time) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := r.db.GetContext(ctx, &stats, dashboardStatsQuery, today); err != nil {
		return nil, fmt.Errorf("statsRepo.GetDashboardStats invoices: %w", err)
	}

	var clientCount int
	if err := r.db.GetContext(ctx, &clientCount, "SELECT COUNT(*) FROM clients"); err != nil {
		return nil, fmt.Errorf("statsRepo.GetDashboardStats clients: %w", err)
	}
	stats.ClientCount = clientCount

	return &stats, nil
}
