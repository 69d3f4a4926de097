package app

import (
	"context"

	"cdj-supply/internal/core"

	"github.com/google/uuid"
)

// ApplicationService is the single interface the web adapter calls. It
// decouples the HTTP surface from the core services and owns request
// validation and response shaping. Implementations contain no presentation
// logic.
type ApplicationService interface {
	// Authenticate verifies credentials and returns the user profile.
	Authenticate(ctx context.Context, username, password string) (*UserResult, error)

	// GetUser returns a user profile by id.
	GetUser(ctx context.Context, id uuid.UUID) (*UserResult, error)

	// ListItems returns one page of items matching the filters.
	ListItems(ctx context.Context, req ListItemsRequest) (*ItemListResult, error)

	// GetItem returns a single item by id.
	GetItem(ctx context.Context, id uuid.UUID) (*core.Item, error)

	// CreateItem adds a catalog item with its initial quantity.
	CreateItem(ctx context.Context, req CreateItemRequest) (*core.Item, error)

	// UpdateItem applies a partial update; a quantity change recomputes status.
	UpdateItem(ctx context.Context, id uuid.UUID, req UpdateItemRequest) (*core.Item, error)

	// DeleteItem removes an item. Movement and sale history is kept.
	DeleteItem(ctx context.Context, id uuid.UUID) error

	// ListSales returns one page of sales with their line items.
	ListSales(ctx context.Context, req ListSalesRequest) (*SaleListResult, error)

	// GetSale returns a single sale with its line items.
	GetSale(ctx context.Context, id uuid.UUID) (*core.Sale, error)

	// CreateSale executes a multi-item sale atomically on behalf of actor.
	CreateSale(ctx context.Context, req CreateSaleRequest, actor uuid.UUID) (*core.Sale, error)

	// ListMovements returns recent stock movements, optionally for one item.
	ListMovements(ctx context.Context, itemID *uuid.UUID, limit int) (*MovementListResult, error)

	// CreateMovement records a direct stock movement on behalf of actor.
	CreateMovement(ctx context.Context, req CreateMovementRequest, actor uuid.UUID) (*core.StockMovement, error)

	// GetDashboard assembles the read-only dashboard payload.
	GetDashboard(ctx context.Context) (*DashboardResult, error)
}
