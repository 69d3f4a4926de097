package app

import (
	"cdj-supply/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListItemsRequest carries the item listing filters as they arrive from the
// query string. Category and Status are validated against the fixed enums.
type ListItemsRequest struct {
	Search   string
	Category string
	Status   string
	Page     int
	Limit    int
}

func (r ListItemsRequest) validate() error {
	if r.Category != "" && !core.ValidCategory(core.ItemCategory(r.Category)) {
		return core.Validationf("unknown item category %q", r.Category)
	}
	switch core.ItemStatus(r.Status) {
	case "", core.StatusAvailable, core.StatusLowStock, core.StatusNotAvailable:
	default:
		return core.Validationf("unknown item status %q", r.Status)
	}
	return nil
}

// CreateItemRequest is the POST /api/items body.
type CreateItemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
}

// UpdateItemRequest is the PUT /api/items/{id} body. Absent fields are left
// unchanged.
type UpdateItemRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Quantity    *int             `json:"quantity"`
	Amount      *decimal.Decimal `json:"amount"`
	Type        *string          `json:"type"`
}

// SaleLineRequest is one requested line of a sale.
type SaleLineRequest struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

// CreateSaleRequest is the POST /api/sales body.
type CreateSaleRequest struct {
	CustomerName    string            `json:"customer_name"`
	CustomerContact string            `json:"customer_contact"`
	Items           []SaleLineRequest `json:"items"`
}

// ListSalesRequest carries the sale listing filters. DateFrom/DateTo accept
// RFC 3339 timestamps or plain YYYY-MM-DD dates.
type ListSalesRequest struct {
	CustomerName string
	DateFrom     string
	DateTo       string
	Page         int
	Limit        int
}

// CreateMovementRequest is the POST /api/stock-movements body.
type CreateMovementRequest struct {
	ItemID        uuid.UUID  `json:"item_id"`
	MovementType  string     `json:"movement_type"`
	Quantity      int        `json:"quantity"`
	ReferenceID   *uuid.UUID `json:"reference_id"`
	ReferenceType string     `json:"reference_type"`
	Notes         string     `json:"notes"`
}
