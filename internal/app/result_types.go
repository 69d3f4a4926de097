package app

import (
	"time"

	"cdj-supply/internal/core"

	"github.com/google/uuid"
)

// UserResult is the authenticated user's public profile.
type UserResult struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// ItemListResult is one page of items with pagination metadata, shaped like
// the /items listing payload.
type ItemListResult struct {
	Items      []core.Item `json:"items"`
	TotalCount int         `json:"totalCount"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"totalPages"`
}

// SaleListResult is one page of sales with pagination metadata.
type SaleListResult struct {
	Sales      []core.Sale `json:"sales"`
	TotalCount int         `json:"totalCount"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"totalPages"`
}

// MovementListResult is a recent-first slice of stock movements.
type MovementListResult struct {
	Movements []core.StockMovement `json:"movements"`
}

// DashboardResult is the full dashboard payload.
type DashboardResult struct {
	Statistics    *core.DashboardStats `json:"statistics"`
	LowStockItems []core.LowStockItem  `json:"lowStockItems"`
	RecentSales   []core.Sale          `json:"recentSales"`
	LastUpdated   time.Time            `json:"lastUpdated"`
}
