package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DashboardStats holds sale totals for the standard reporting windows.
// Each total is SUM(total_amount) over sales with sold_at >= the window start.
type DashboardStats struct {
	TodayTotal decimal.Decimal `json:"today_total"`
	WeekTotal  decimal.Decimal `json:"week_total"`
	MonthTotal decimal.Decimal `json:"month_total"`
	YearTotal  decimal.Decimal `json:"year_total"`
}

// LowStockItem is the reduced item view shown in the dashboard alert list.
type LowStockItem struct {
	ID       uuid.UUID    `json:"id"`
	Name     string       `json:"name"`
	Quantity int          `json:"quantity"`
	Status   ItemStatus   `json:"status"`
	Category ItemCategory `json:"type"`
}

// ReportingService provides the read-only dashboard queries. It derives
// everything from the items and sales tables and enforces no invariants of
// its own.
type ReportingService interface {
	// GetStats sums sale totals since midnight, the start of the week
	// (Sunday), the first of the month, and January 1st, all in local time.
	GetStats(ctx context.Context) (*DashboardStats, error)
	// GetLowStockItems returns items whose status is Low Stock or
	// Not Available, most depleted first.
	GetLowStockItems(ctx context.Context) ([]LowStockItem, error)
	// GetRecentSales returns the limit most recent sales with their lines.
	GetRecentSales(ctx context.Context, limit int) ([]Sale, error)
}

type reportingService struct {
	pool  *pgxpool.Pool
	sales SaleService
}

// NewReportingService constructs a ReportingService backed by the given pool.
// Recent sales are read through the SaleService so line loading stays in one
// place.
func NewReportingService(pool *pgxpool.Pool, sales SaleService) ReportingService {
	return &reportingService{pool: pool, sales: sales}
}

func (s *reportingService) GetStats(ctx context.Context) (*DashboardStats, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := dayStart.AddDate(0, 0, -int(dayStart.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	var stats DashboardStats
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount) FILTER (WHERE sold_at >= $1), 0),
		       COALESCE(SUM(total_amount) FILTER (WHERE sold_at >= $2), 0),
		       COALESCE(SUM(total_amount) FILTER (WHERE sold_at >= $3), 0),
		       COALESCE(SUM(total_amount) FILTER (WHERE sold_at >= $4), 0)
		FROM sales
		WHERE sold_at >= LEAST($2, $4)`,
		dayStart, weekStart, monthStart, yearStart,
	).Scan(&stats.TodayTotal, &stats.WeekTotal, &stats.MonthTotal, &stats.YearTotal)
	if err != nil {
		return nil, fmt.Errorf("failed to compute sales statistics: %w", err)
	}
	return &stats, nil
}

func (s *reportingService) GetLowStockItems(ctx context.Context) ([]LowStockItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, quantity, status, type
		FROM items
		WHERE status IN ($1, $2)
		ORDER BY quantity ASC`,
		StatusLowStock, StatusNotAvailable)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock items: %w", err)
	}
	defer rows.Close()

	var items []LowStockItem
	for rows.Next() {
		var it LowStockItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Quantity, &it.Status, &it.Category); err != nil {
			return nil, fmt.Errorf("failed to scan low stock item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *reportingService) GetRecentSales(ctx context.Context, limit int) ([]Sale, error) {
	if limit < 1 {
		limit = 5
	}
	sales, _, err := s.sales.GetSales(ctx, SaleFilter{Page: 1, PageSize: limit})
	return sales, err
}
