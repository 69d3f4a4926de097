package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CreateItemInput holds the fields for a new catalog item.
type CreateItemInput struct {
	Name        string
	Description string
	Quantity    int
	Amount      decimal.Decimal
	Category    ItemCategory
}

// UpdateItemInput holds a partial update; nil fields are left untouched.
// If Quantity is set the item's status is recomputed.
type UpdateItemInput struct {
	Name        *string
	Description *string
	Quantity    *int
	Amount      *decimal.Decimal
	Category    *ItemCategory
}

// MovementInput holds the fields for a direct stock movement.
type MovementInput struct {
	ItemID        uuid.UUID
	Type          MovementType
	Quantity      int
	ReferenceID   *uuid.UUID
	ReferenceType string
	Notes         string
}

// InventoryService is the single authority over item stock levels and their
// derived status. All quantity mutations outside item creation go through
// RecordMovement or IssueForSaleTx, and each produces exactly one
// StockMovement row atomically with the item update.
type InventoryService interface {
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	// GetItems returns one page of items plus the unpaginated match count.
	// Results are ordered newest first.
	GetItems(ctx context.Context, filter ItemFilter) ([]Item, int, error)
	CreateItem(ctx context.Context, in CreateItemInput) (*Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, in UpdateItemInput) (*Item, error)
	// DeleteItem removes the item row. Historical stock movements and sale
	// lines keep their item reference; history is immutable.
	DeleteItem(ctx context.Context, id uuid.UUID) error
	// RecordMovement applies a direct movement (receive/issue/adjust) to the
	// item's quantity, clamping the result at zero, and appends the ledger
	// entry in the same transaction.
	RecordMovement(ctx context.Context, in MovementInput, actor uuid.UUID) (*StockMovement, error)
	// GetMovements returns movements newest first, optionally filtered by item.
	GetMovements(ctx context.Context, itemID *uuid.UUID, limit int) ([]StockMovement, error)

	// IssueForSaleTx deducts stock for one sale line within the caller's
	// transaction. Unlike RecordMovement it rejects with
	// InsufficientStockError instead of clamping: a sale may never oversell.
	IssueForSaleTx(ctx context.Context, tx pgx.Tx, line SaleLineInput, saleID uuid.UUID, customerName string, actor uuid.UUID) error
}

type inventoryService struct {
	pool   *pgxpool.Pool
	policy StockPolicy
}

// NewInventoryService constructs an InventoryService backed by PostgreSQL.
func NewInventoryService(pool *pgxpool.Pool, policy StockPolicy) InventoryService {
	return &inventoryService{pool: pool, policy: policy}
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared
// query helpers.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const itemColumns = `id, name, COALESCE(description, ''), quantity, amount,
	COALESCE(image_url, ''), status, type, created_at, updated_at`

func scanItem(row pgx.Row, it *Item) error {
	return row.Scan(&it.ID, &it.Name, &it.Description, &it.Quantity, &it.Amount,
		&it.ImageURL, &it.Status, &it.Category, &it.CreatedAt, &it.UpdatedAt)
}

func (s *inventoryService) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	return getItemQ(ctx, s.pool, id)
}

func getItemQ(ctx context.Context, q pgxQuerier, id uuid.UUID) (*Item, error) {
	var it Item
	err := scanItem(q.QueryRow(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = $1", id), &it)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "item", ID: id}
		}
		return nil, fmt.Errorf("failed to fetch item %s: %w", id, err)
	}
	return &it, nil
}

func (s *inventoryService) GetItems(ctx context.Context, filter ItemFilter) ([]Item, int, error) {
	where := []string{"TRUE"}
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM items WHERE "+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	_, size, offset := normalizePage(filter.Page, filter.PageSize)
	args = append(args, size, offset)
	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		"SELECT %s FROM items WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		itemColumns, cond, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := scanItem(rows, &it); err != nil {
			return nil, 0, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}

func (s *inventoryService) CreateItem(ctx context.Context, in CreateItemInput) (*Item, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, Validationf("item name is required")
	}
	if in.Quantity < 0 {
		return nil, Validationf("quantity must be 0 or greater")
	}
	if in.Amount.IsNegative() {
		return nil, Validationf("amount must be 0 or greater")
	}
	if !ValidCategory(in.Category) {
		return nil, Validationf("unknown item category %q", in.Category)
	}

	var it Item
	err := scanItem(s.pool.QueryRow(ctx, `
		INSERT INTO items (id, name, description, quantity, amount, status, type)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
		RETURNING `+itemColumns,
		uuid.New(), in.Name, in.Description, in.Quantity, in.Amount,
		s.policy.StatusFor(in.Quantity), in.Category), &it)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return &it, nil
}

func (s *inventoryService) UpdateItem(ctx context.Context, id uuid.UUID, in UpdateItemInput) (*Item, error) {
	set := []string{"updated_at = NOW()"}
	args := []any{}
	add := func(expr string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf(expr, len(args)))
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, Validationf("item name is required")
		}
		add("name = $%d", *in.Name)
	}
	if in.Description != nil {
		add("description = NULLIF($%d, '')", *in.Description)
	}
	if in.Amount != nil {
		if in.Amount.IsNegative() {
			return nil, Validationf("amount must be 0 or greater")
		}
		add("amount = $%d", *in.Amount)
	}
	if in.Category != nil {
		if !ValidCategory(*in.Category) {
			return nil, Validationf("unknown item category %q", *in.Category)
		}
		add("type = $%d", *in.Category)
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, Validationf("quantity must be 0 or greater")
		}
		add("quantity = $%d", *in.Quantity)
		add("status = $%d", s.policy.StatusFor(*in.Quantity))
	}

	args = append(args, id)
	var it Item
	err := scanItem(s.pool.QueryRow(ctx, fmt.Sprintf(
		"UPDATE items SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args), itemColumns), args...), &it)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "item", ID: id}
		}
		return nil, fmt.Errorf("failed to update item %s: %w", id, err)
	}
	return &it, nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "item", ID: id}
	}
	return nil
}

func (s *inventoryService) RecordMovement(ctx context.Context, in MovementInput, actor uuid.UUID) (*StockMovement, error) {
	if !ValidMovementType(in.Type) {
		return nil, Validationf("unknown movement type %q", in.Type)
	}
	if in.Quantity < 1 {
		return nil, Validationf("movement quantity must be at least 1")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the item row so concurrent movements serialize.
	var current int
	err = tx.QueryRow(ctx,
		"SELECT quantity FROM items WHERE id = $1 FOR UPDATE", in.ItemID,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "item", ID: in.ItemID}
		}
		return nil, fmt.Errorf("failed to lock item %s: %w", in.ItemID, err)
	}

	next := NextQuantity(current, in.Type, in.Quantity)
	_, err = tx.Exec(ctx,
		"UPDATE items SET quantity = $1, status = $2, updated_at = NOW() WHERE id = $3",
		next, s.policy.StatusFor(next), in.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to update item quantity: %w", err)
	}

	var m StockMovement
	err = tx.QueryRow(ctx, `
		INSERT INTO stock_movements (id, item_id, movement_type, quantity, reference_id, reference_type, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8)
		RETURNING id, item_id, movement_type, quantity, reference_id,
		          COALESCE(reference_type, ''), COALESCE(notes, ''), created_by, created_at`,
		uuid.New(), in.ItemID, in.Type, in.Quantity, in.ReferenceID,
		in.ReferenceType, in.Notes, actor,
	).Scan(&m.ID, &m.ItemID, &m.Type, &m.Quantity, &m.ReferenceID,
		&m.ReferenceType, &m.Notes, &m.CreatedBy, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert stock movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stock movement: %w", err)
	}
	return &m, nil
}

func (s *inventoryService) GetMovements(ctx context.Context, itemID *uuid.UUID, limit int) ([]StockMovement, error) {
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}

	query := `
		SELECT sm.id, sm.item_id, COALESCE(i.name, ''), sm.movement_type, sm.quantity,
		       sm.reference_id, COALESCE(sm.reference_type, ''), COALESCE(sm.notes, ''),
		       sm.created_by, sm.created_at
		FROM stock_movements sm
		LEFT JOIN items i ON i.id = sm.item_id`
	args := []any{}
	if itemID != nil {
		query += " WHERE sm.item_id = $1"
		args = append(args, *itemID)
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY sm.created_at DESC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock movements: %w", err)
	}
	defer rows.Close()

	var movements []StockMovement
	for rows.Next() {
		var m StockMovement
		if err := rows.Scan(&m.ID, &m.ItemID, &m.ItemName, &m.Type, &m.Quantity,
			&m.ReferenceID, &m.ReferenceType, &m.Notes, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// IssueForSaleTx deducts stock for one sale line within the caller's TX.
// The item row is locked for update; the insufficiency check and the
// decrement therefore see the same quantity even under concurrent sales.
func (s *inventoryService) IssueForSaleTx(ctx context.Context, tx pgx.Tx, line SaleLineInput, saleID uuid.UUID, customerName string, actor uuid.UUID) error {
	var name string
	var current int
	err := tx.QueryRow(ctx,
		"SELECT name, quantity FROM items WHERE id = $1 FOR UPDATE", line.ItemID,
	).Scan(&name, &current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Entity: "item", ID: line.ItemID}
		}
		return fmt.Errorf("failed to lock item %s: %w", line.ItemID, err)
	}

	if line.Quantity > current {
		return &InsufficientStockError{
			ItemID:    line.ItemID,
			ItemName:  name,
			Available: current,
			Requested: line.Quantity,
		}
	}

	next := current - line.Quantity
	_, err = tx.Exec(ctx,
		"UPDATE items SET quantity = $1, status = $2, updated_at = NOW() WHERE id = $3",
		next, s.policy.StatusFor(next), line.ItemID)
	if err != nil {
		return fmt.Errorf("failed to deduct stock for %s: %w", name, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO stock_movements (id, item_id, movement_type, quantity, reference_id, reference_type, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.New(), line.ItemID, MovementIssue, line.Quantity, saleID,
		ReferenceTypeSale, fmt.Sprintf("Sale to %s", customerName), actor)
	if err != nil {
		return fmt.Errorf("failed to insert sale movement for %s: %w", name, err)
	}
	return nil
}
