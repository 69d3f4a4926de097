package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemStatus is the stock availability state of an item. It is never set
// directly: every quantity change recomputes it through StockPolicy.
type ItemStatus string

const (
	StatusAvailable    ItemStatus = "Available"
	StatusLowStock     ItemStatus = "Low Stock"
	StatusNotAvailable ItemStatus = "Not Available"
)

// ItemCategory is the fixed auto-parts catalog classification.
type ItemCategory string

const (
	CategoryEngine     ItemCategory = "Engine & Drivetrain Parts"
	CategorySuspension ItemCategory = "Suspension, Steering & Brakes"
	CategoryElectrical ItemCategory = "Electrical & Electronics"
	CategoryWheels     ItemCategory = "Wheels, Tires & Accessories"
	CategoryBody       ItemCategory = "Body & Exterior"
	CategoryInterior   ItemCategory = "Interior Parts"
	CategoryFluids     ItemCategory = "Fluids, Filters & Maintenance"
	CategoryTools      ItemCategory = "Tools & Accessories"
)

// Categories lists every valid ItemCategory, in catalog order.
var Categories = []ItemCategory{
	CategoryEngine, CategorySuspension, CategoryElectrical, CategoryWheels,
	CategoryBody, CategoryInterior, CategoryFluids, CategoryTools,
}

// ValidCategory reports whether c is one of the fixed catalog categories.
func ValidCategory(c ItemCategory) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// MovementType is the kind of a stock movement.
// receive adds quantity, issue removes it, adjust sets the absolute level.
type MovementType string

const (
	MovementReceive MovementType = "receive"
	MovementIssue   MovementType = "issue"
	MovementAdjust  MovementType = "adjust"
)

// ValidMovementType reports whether t is a known movement kind.
func ValidMovementType(t MovementType) bool {
	return t == MovementReceive || t == MovementIssue || t == MovementAdjust
}

// ReferenceTypeSale marks a movement that was produced by a sale transaction.
const ReferenceTypeSale = "sale"

// StockPolicy holds the configurable threshold that derives an item's status
// from its quantity.
type StockPolicy struct {
	// LowStockThreshold is the smallest quantity that still counts as fully
	// available. Quantities in [1, LowStockThreshold) are Low Stock.
	LowStockThreshold int
}

// DefaultStockPolicy returns the stock policy with a low-stock threshold of 10.
func DefaultStockPolicy() StockPolicy {
	return StockPolicy{LowStockThreshold: 10}
}

// StatusFor derives the item status for a quantity:
// 0 is Not Available, [1, threshold) is Low Stock, everything above is Available.
func (p StockPolicy) StatusFor(quantity int) ItemStatus {
	switch {
	case quantity <= 0:
		return StatusNotAvailable
	case quantity < p.LowStockThreshold:
		return StatusLowStock
	default:
		return StatusAvailable
	}
}

// NextQuantity applies a movement of the given kind to the current quantity.
// Direct movements clamp at zero; they never reject. Sale-driven issues are
// validated before this is applied (see SaleService.CreateSale).
func NextQuantity(current int, t MovementType, quantity int) int {
	var next int
	switch t {
	case MovementReceive:
		next = current + quantity
	case MovementIssue:
		next = current - quantity
	case MovementAdjust:
		next = quantity
	default:
		next = current
	}
	if next < 0 {
		next = 0
	}
	return next
}

// Item is a stocked auto part. Quantity and Status are owned exclusively by
// the InventoryService; everything else only reads them.
type Item struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
	ImageURL    string          `json:"image_url,omitempty"`
	Status      ItemStatus      `json:"status"`
	Category    ItemCategory    `json:"type"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StockMovement is one append-only ledger entry. Movements are never updated
// or deleted, and they survive deletion of the item they reference.
type StockMovement struct {
	ID            uuid.UUID    `json:"id"`
	ItemID        uuid.UUID    `json:"item_id"`
	ItemName      string       `json:"item_name,omitempty"` // joined; empty if the item was deleted
	Type          MovementType `json:"movement_type"`
	Quantity      int          `json:"quantity"`
	ReferenceID   *uuid.UUID   `json:"reference_id,omitempty"`
	ReferenceType string       `json:"reference_type,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	CreatedBy     uuid.UUID    `json:"created_by"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Sale is a completed customer sale with its line items.
// TotalAmount always equals the sum of the line totals.
type Sale struct {
	ID              uuid.UUID       `json:"id"`
	CustomerName    string          `json:"customer_name"`
	CustomerContact string          `json:"customer_contact,omitempty"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	SoldAt          time.Time       `json:"sold_at"`
	CreatedBy       uuid.UUID       `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []SaleItem      `json:"sale_items"`
}

// SaleItem is one immutable line of a sale. UnitPrice is the item's price at
// sale time, not a live reference.
type SaleItem struct {
	ID        uuid.UUID       `json:"id"`
	SaleID    uuid.UUID       `json:"sale_id"`
	ItemID    uuid.UUID       `json:"item_id"`
	ItemName  string          `json:"item_name,omitempty"` // joined; empty if the item was deleted
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// SaleLineInput is one requested line when creating a sale.
type SaleLineInput struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

// User is an authenticated operator of the system.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ItemFilter narrows and paginates item listings. Zero values mean "no filter".
type ItemFilter struct {
	Search   string // case-insensitive substring match on name
	Category ItemCategory
	Status   ItemStatus
	Page     int // 1-indexed
	PageSize int // clamped to [1, 100]
}

// SaleFilter narrows and paginates sale listings.
type SaleFilter struct {
	CustomerName string // case-insensitive substring match
	DateFrom     *time.Time
	DateTo       *time.Time
	Page         int
	PageSize     int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps page/pageSize to their valid ranges and returns the
// SQL offset for a 1-indexed page.
func normalizePage(page, pageSize int) (p, size, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}
