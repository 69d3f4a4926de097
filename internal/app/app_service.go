package app

import (
	"context"
	"time"

	"cdj-supply/internal/core"

	"github.com/google/uuid"
)

// dashboardRecentSales is how many sales the dashboard shows.
const dashboardRecentSales = 5

type appService struct {
	inventory core.InventoryService
	sales     core.SaleService
	reporting core.ReportingService
	users     core.UserService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	inventory core.InventoryService,
	sales core.SaleService,
	reporting core.ReportingService,
	users core.UserService,
) ApplicationService {
	return &appService{
		inventory: inventory,
		sales:     sales,
		reporting: reporting,
		users:     users,
	}
}

func (s *appService) Authenticate(ctx context.Context, username, password string) (*UserResult, error) {
	u, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &UserResult{ID: u.ID, Username: u.Username, Email: u.Email}, nil
}

func (s *appService) GetUser(ctx context.Context, id uuid.UUID) (*UserResult, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &UserResult{ID: u.ID, Username: u.Username, Email: u.Email}, nil
}

func (s *appService) ListItems(ctx context.Context, req ListItemsRequest) (*ItemListResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	page, limit := normalizePaging(req.Page, req.Limit)
	items, total, err := s.inventory.GetItems(ctx, core.ItemFilter{
		Search:   req.Search,
		Category: core.ItemCategory(req.Category),
		Status:   core.ItemStatus(req.Status),
		Page:     page,
		PageSize: limit,
	})
	if err != nil {
		return nil, err
	}

	return &ItemListResult{
		Items:      emptyIfNil(items),
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (s *appService) GetItem(ctx context.Context, id uuid.UUID) (*core.Item, error) {
	return s.inventory.GetItem(ctx, id)
}

func (s *appService) CreateItem(ctx context.Context, req CreateItemRequest) (*core.Item, error) {
	return s.inventory.CreateItem(ctx, core.CreateItemInput{
		Name:        req.Name,
		Description: req.Description,
		Quantity:    req.Quantity,
		Amount:      req.Amount,
		Category:    core.ItemCategory(req.Type),
	})
}

func (s *appService) UpdateItem(ctx context.Context, id uuid.UUID, req UpdateItemRequest) (*core.Item, error) {
	in := core.UpdateItemInput{
		Name:        req.Name,
		Description: req.Description,
		Quantity:    req.Quantity,
		Amount:      req.Amount,
	}
	if req.Type != nil {
		category := core.ItemCategory(*req.Type)
		in.Category = &category
	}
	return s.inventory.UpdateItem(ctx, id, in)
}

func (s *appService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.inventory.DeleteItem(ctx, id)
}

func (s *appService) ListSales(ctx context.Context, req ListSalesRequest) (*SaleListResult, error) {
	filter := core.SaleFilter{CustomerName: req.CustomerName}

	var err error
	if filter.DateFrom, err = parseTimeFilter(req.DateFrom); err != nil {
		return nil, core.Validationf("invalid date_from %q", req.DateFrom)
	}
	if filter.DateTo, err = parseTimeFilter(req.DateTo); err != nil {
		return nil, core.Validationf("invalid date_to %q", req.DateTo)
	}

	page, limit := normalizePaging(req.Page, req.Limit)
	filter.Page, filter.PageSize = page, limit

	sales, total, err := s.sales.GetSales(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &SaleListResult{
		Sales:      emptyIfNil(sales),
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (s *appService) GetSale(ctx context.Context, id uuid.UUID) (*core.Sale, error) {
	return s.sales.GetSale(ctx, id)
}

func (s *appService) CreateSale(ctx context.Context, req CreateSaleRequest, actor uuid.UUID) (*core.Sale, error) {
	lines := make([]core.SaleLineInput, len(req.Items))
	for i, l := range req.Items {
		lines[i] = core.SaleLineInput{ItemID: l.ItemID, Quantity: l.Quantity}
	}
	return s.sales.CreateSale(ctx, core.CreateSaleInput{
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		Lines:           lines,
	}, actor)
}

func (s *appService) ListMovements(ctx context.Context, itemID *uuid.UUID, limit int) (*MovementListResult, error) {
	movements, err := s.inventory.GetMovements(ctx, itemID, limit)
	if err != nil {
		return nil, err
	}
	return &MovementListResult{Movements: emptyIfNil(movements)}, nil
}

func (s *appService) CreateMovement(ctx context.Context, req CreateMovementRequest, actor uuid.UUID) (*core.StockMovement, error) {
	return s.inventory.RecordMovement(ctx, core.MovementInput{
		ItemID:        req.ItemID,
		Type:          core.MovementType(req.MovementType),
		Quantity:      req.Quantity,
		ReferenceID:   req.ReferenceID,
		ReferenceType: req.ReferenceType,
		Notes:         req.Notes,
	}, actor)
}

func (s *appService) GetDashboard(ctx context.Context) (*DashboardResult, error) {
	stats, err := s.reporting.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.reporting.GetLowStockItems(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.reporting.GetRecentSales(ctx, dashboardRecentSales)
	if err != nil {
		return nil, err
	}

	return &DashboardResult{
		Statistics:    stats,
		LowStockItems: emptyIfNil(lowStock),
		RecentSales:   emptyIfNil(recent),
		LastUpdated:   time.Now().UTC(),
	}, nil
}

// parseTimeFilter parses an optional RFC 3339 timestamp or YYYY-MM-DD date.
func parseTimeFilter(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func totalPages(total, limit int) int {
	return (total + limit - 1) / limit
}

// emptyIfNil keeps JSON list fields as [] instead of null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
