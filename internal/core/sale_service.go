package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CreateSaleInput holds a proposed multi-item sale.
type CreateSaleInput struct {
	CustomerName    string
	CustomerContact string
	Lines           []SaleLineInput
}

// SaleService validates and executes sales as single atomic units. A sale
// either commits completely (sale row, line items, stock decrements, issue
// movements) or leaves no trace.
type SaleService interface {
	// CreateSale runs the whole sale in one transaction. Unit prices are
	// snapshotted from the items at execution time; the total is the sum of
	// the line totals. Fails with NotFoundError for an unknown item and
	// InsufficientStockError when any line exceeds available stock, in both
	// cases with zero persisted side effects.
	CreateSale(ctx context.Context, in CreateSaleInput, actor uuid.UUID) (*Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*Sale, error)
	// GetSales returns one page of sales with their lines, newest first,
	// plus the unpaginated match count.
	GetSales(ctx context.Context, filter SaleFilter) ([]Sale, int, error)
}

type saleService struct {
	pool      *pgxpool.Pool
	inventory InventoryService
}

// NewSaleService constructs a SaleService. All stock mutations are delegated
// to the inventory service so the movement ledger has a single writer.
func NewSaleService(pool *pgxpool.Pool, inventory InventoryService) SaleService {
	return &saleService{pool: pool, inventory: inventory}
}

func (s *saleService) CreateSale(ctx context.Context, in CreateSaleInput, actor uuid.UUID) (*Sale, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, Validationf("customer name is required")
	}
	if len(in.Lines) == 0 {
		return nil, Validationf("a sale requires at least one item")
	}
	for _, line := range in.Lines {
		if line.Quantity < 1 {
			return nil, Validationf("line quantity must be at least 1")
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin sale transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock all referenced items in ascending id order so two concurrent
	// multi-line sales cannot deadlock on each other's rows.
	ids := uniqueItemIDs(in.Lines)
	type lockedItem struct {
		name     string
		quantity int
		amount   decimal.Decimal
	}
	locked := make(map[uuid.UUID]lockedItem, len(ids))
	for _, id := range ids {
		var li lockedItem
		err := tx.QueryRow(ctx,
			"SELECT name, quantity, amount FROM items WHERE id = $1 FOR UPDATE", id,
		).Scan(&li.name, &li.quantity, &li.amount)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &NotFoundError{Entity: "item", ID: id}
			}
			return nil, fmt.Errorf("failed to lock item %s: %w", id, err)
		}
		locked[id] = li
	}

	// Validate stock sufficiency against the locked quantities, tracking the
	// running remainder so repeated lines for one item cannot oversell.
	remaining := make(map[uuid.UUID]int, len(ids))
	for id, li := range locked {
		remaining[id] = li.quantity
	}
	for _, line := range in.Lines {
		li := locked[line.ItemID]
		if line.Quantity > remaining[line.ItemID] {
			return nil, &InsufficientStockError{
				ItemID:    line.ItemID,
				ItemName:  li.name,
				Available: remaining[line.ItemID],
				Requested: line.Quantity,
			}
		}
		remaining[line.ItemID] -= line.Quantity
	}

	// Snapshot prices and compute totals.
	total := decimal.Zero
	lineTotals := make([]decimal.Decimal, len(in.Lines))
	for i, line := range in.Lines {
		lineTotals[i] = locked[line.ItemID].amount.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotals[i])
	}

	var saleID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO sales (id, customer_name, customer_contact, total_amount, sold_at, created_by)
		VALUES ($1, $2, NULLIF($3, ''), $4, NOW(), $5)
		RETURNING id`,
		uuid.New(), in.CustomerName, in.CustomerContact, total, actor,
	).Scan(&saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sale: %w", err)
	}

	for i, line := range in.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO sale_items (id, sale_id, item_id, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), saleID, line.ItemID, line.Quantity,
			locked[line.ItemID].amount, lineTotals[i])
		if err != nil {
			return nil, fmt.Errorf("failed to insert sale line %d: %w", i+1, err)
		}

		if err := s.inventory.IssueForSaleTx(ctx, tx, line, saleID, in.CustomerName, actor); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit sale: %w", err)
	}

	return s.GetSale(ctx, saleID)
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*Sale, error) {
	var sale Sale
	err := s.pool.QueryRow(ctx, `
		SELECT id, customer_name, COALESCE(customer_contact, ''), total_amount,
		       sold_at, created_by, created_at
		FROM sales WHERE id = $1`, id,
	).Scan(&sale.ID, &sale.CustomerName, &sale.CustomerContact, &sale.TotalAmount,
		&sale.SoldAt, &sale.CreatedBy, &sale.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "sale", ID: id}
		}
		return nil, fmt.Errorf("failed to fetch sale %s: %w", id, err)
	}

	items, err := s.fetchSaleItems(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	sale.Items = items[id]
	return &sale, nil
}

func (s *saleService) GetSales(ctx context.Context, filter SaleFilter) ([]Sale, int, error) {
	where := []string{"TRUE"}
	args := []any{}

	if filter.CustomerName != "" {
		args = append(args, "%"+filter.CustomerName+"%")
		where = append(where, fmt.Sprintf("customer_name ILIKE $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		where = append(where, fmt.Sprintf("sold_at >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		where = append(where, fmt.Sprintf("sold_at <= $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM sales WHERE "+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	_, size, offset := normalizePage(filter.Page, filter.PageSize)
	args = append(args, size, offset)
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, customer_name, COALESCE(customer_contact, ''), total_amount,
		       sold_at, created_by, created_at
		FROM sales WHERE %s
		ORDER BY sold_at DESC LIMIT $%d OFFSET $%d`,
		cond, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []Sale
	var ids []uuid.UUID
	for rows.Next() {
		var sale Sale
		if err := rows.Scan(&sale.ID, &sale.CustomerName, &sale.CustomerContact,
			&sale.TotalAmount, &sale.SoldAt, &sale.CreatedBy, &sale.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
		ids = append(ids, sale.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) > 0 {
		itemsBySale, err := s.fetchSaleItems(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range sales {
			sales[i].Items = itemsBySale[sales[i].ID]
		}
	}
	return sales, total, nil
}

// fetchSaleItems loads the lines for a set of sales in one query, keyed by
// sale id. The item join is LEFT so lines of deleted items still appear.
func (s *saleService) fetchSaleItems(ctx context.Context, saleIDs []uuid.UUID) (map[uuid.UUID][]SaleItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT si.id, si.sale_id, si.item_id, COALESCE(i.name, ''),
		       si.quantity, si.unit_price, si.line_total
		FROM sale_items si
		LEFT JOIN items i ON i.id = si.item_id
		WHERE si.sale_id = ANY($1)
		ORDER BY si.created_at`, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale items: %w", err)
	}
	defer rows.Close()

	bySale := make(map[uuid.UUID][]SaleItem, len(saleIDs))
	for rows.Next() {
		var li SaleItem
		if err := rows.Scan(&li.ID, &li.SaleID, &li.ItemID, &li.ItemName,
			&li.Quantity, &li.UnitPrice, &li.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		bySale[li.SaleID] = append(bySale[li.SaleID], li)
	}
	return bySale, rows.Err()
}

// uniqueItemIDs returns the distinct item ids of the lines in ascending byte
// order, giving every sale transaction the same lock acquisition order.
func uniqueItemIDs(lines []SaleLineInput) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	var ids []uuid.UUID
	for _, line := range lines {
		if _, ok := seen[line.ItemID]; ok {
			continue
		}
		seen[line.ItemID] = struct{}{}
		ids = append(ids, line.ItemID)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}
