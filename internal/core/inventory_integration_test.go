package core_test

import (
	"context"
	"errors"
	"testing"

	"cdj-supply/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func mustCreateItem(t *testing.T, ctx context.Context, inv core.InventoryService, name string, quantity int, amount float64) *core.Item {
	t.Helper()
	item, err := inv.CreateItem(ctx, core.CreateItemInput{
		Name:     name,
		Quantity: quantity,
		Amount:   decimal.NewFromFloat(amount),
		Category: core.CategoryFluids,
	})
	if err != nil {
		t.Fatalf("CreateItem(%s) failed: %v", name, err)
	}
	return item
}

func TestInventory_CreateItem_DerivesStatus(t *testing.T) {
	pool, inv, _, _, ctx := newTestServices(t)
	defer pool.Close()

	tests := []struct {
		quantity int
		want     core.ItemStatus
	}{
		{0, core.StatusNotAvailable},
		{4, core.StatusLowStock},
		{12, core.StatusAvailable},
	}
	for _, tt := range tests {
		item := mustCreateItem(t, ctx, inv, "Brake Pads", tt.quantity, 45)
		if item.Status != tt.want {
			t.Errorf("quantity %d: status = %q, want %q", tt.quantity, item.Status, tt.want)
		}
	}
}

func TestInventory_CreateItem_Validation(t *testing.T) {
	pool, inv, _, _, ctx := newTestServices(t)
	defer pool.Close()

	var ve *core.ValidationError

	_, err := inv.CreateItem(ctx, core.CreateItemInput{Name: "  ", Category: core.CategoryTools})
	if !errors.As(err, &ve) {
		t.Errorf("empty name: expected ValidationError, got %v", err)
	}

	_, err = inv.CreateItem(ctx, core.CreateItemInput{Name: "Wrench", Quantity: -1, Category: core.CategoryTools})
	if !errors.As(err, &ve) {
		t.Errorf("negative quantity: expected ValidationError, got %v", err)
	}

	_, err = inv.CreateItem(ctx, core.CreateItemInput{
		Name: "Wrench", Amount: decimal.NewFromInt(-5), Category: core.CategoryTools,
	})
	if !errors.As(err, &ve) {
		t.Errorf("negative amount: expected ValidationError, got %v", err)
	}

	_, err = inv.CreateItem(ctx, core.CreateItemInput{Name: "Wrench", Category: "Groceries"})
	if !errors.As(err, &ve) {
		t.Errorf("unknown category: expected ValidationError, got %v", err)
	}
}

func TestInventory_RecordMovement_Lifecycle(t *testing.T) {
	pool, inv, _, _, ctx := newTestServices(t)
	defer pool.Close()

	item := mustCreateItem(t, ctx, inv, "Brake Fluid", 12, 150)
	if item.Status != core.StatusAvailable {
		t.Fatalf("initial status = %q, want Available", item.Status)
	}

	// Issue 10 -> quantity 2, Low Stock.
	m, err := inv.RecordMovement(ctx, core.MovementInput{
		ItemID: item.ID, Type: core.MovementIssue, Quantity: 10,
	}, testActor)
	if err != nil {
		t.Fatalf("RecordMovement(issue 10) failed: %v", err)
	}
	if m.Type != core.MovementIssue || m.Quantity != 10 {
		t.Errorf("movement = %s %d, want issue 10", m.Type, m.Quantity)
	}

	got, err := inv.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got.Quantity != 2 || got.Status != core.StatusLowStock {
		t.Errorf("after issue 10: quantity=%d status=%q, want 2 Low Stock", got.Quantity, got.Status)
	}

	// Issue 2 more -> quantity 0, Not Available.
	if _, err := inv.RecordMovement(ctx, core.MovementInput{
		ItemID: item.ID, Type: core.MovementIssue, Quantity: 2,
	}, testActor); err != nil {
		t.Fatalf("RecordMovement(issue 2) failed: %v", err)
	}
	got, _ = inv.GetItem(ctx, item.ID)
	if got.Quantity != 0 || got.Status != core.StatusNotAvailable {
		t.Errorf("after issue 2: quantity=%d status=%q, want 0 Not Available", got.Quantity, got.Status)
	}

	// Direct issue past zero clamps, it does not reject.
	if _, err := inv.RecordMovement(ctx, core.MovementInput{
		ItemID: item.ID, Type: core.MovementIssue, Quantity: 1,
	}, testActor); err != nil {
		t.Fatalf("RecordMovement(issue past zero) failed: %v", err)
	}
	got, _ = inv.GetItem(ctx, item.ID)
	if got.Quantity != 0 {
		t.Errorf("clamp: quantity = %d, want 0", got.Quantity)
	}

	// Receive restocks.
	if _, err := inv.RecordMovement(ctx, core.MovementInput{
		ItemID: item.ID, Type: core.MovementReceive, Quantity: 20,
	}, testActor); err != nil {
		t.Fatalf("RecordMovement(receive 20) failed: %v", err)
	}
	got, _ = inv.GetItem(ctx, item.ID)
	if got.Quantity != 20 || got.Status != core.StatusAvailable {
		t.Errorf("after receive 20: quantity=%d status=%q, want 20 Available", got.Quantity, got.Status)
	}

	// Adjust sets the absolute level.
	if _, err := inv.RecordMovement(ctx, core.MovementInput{
		ItemID: item.ID, Type: core.MovementAdjust, Quantity: 7,
	}, testActor); err != nil {
		t.Fatalf("RecordMovement(adjust 7) failed: %v", err)
	}
	got, _ = inv.GetItem(ctx, item.ID)
	if got.Quantity != 7 || got.Status != core.StatusLowStock {
		t.Errorf("after adjust 7: quantity=%d status=%q, want 7 Low Stock", got.Quantity, got.Status)
	}

	// Exactly one ledger row per mutation.
	movements, err := inv.GetMovements(ctx, &item.ID, 50)
	if err != nil {
		t.Fatalf("GetMovements failed: %v", err)
	}
	if len(movements) != 5 {
		t.Errorf("movement count = %d, want 5", len(movements))
	}
}

func TestInventory_RecordMovement_UnknownItem(t *testing.T) {
	pool, inv, _, _, ctx := newTestServices(t)
	defer pool.Close()

	_, err := inv.RecordMovement(ctx, core.MovementInput{
		ItemID: uuid.New(), Type: core.MovementReceive, Quantity: 1,
	}, testActor)
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestInventory_UpdateItem(t *testing.T) {
	pool, inv, _, _, ctx := newTestServices(t)
	defer pool.Close()

	item := mustCreateItem(t, ctx, inv, "Oil Filter", 30, 25)

	name := "Oil Filter Premium"
	quantity := 3
	updated, err := inv.UpdateItem(ctx, item.ID, core.UpdateItemInput{
		Name:     &name,
		Quantity: &quantity,
	})
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if updated.Name != name {
		t.Errorf("name = %q, want %q", updated.Name, name)
	}
	if updated.Quantity != 3 || updated.Status != core.StatusLowStock {
		t.Errorf("quantity=%d status=%q, want 3 Low Stock", updated.Quantity, updated.Status)
	}

	// An update without quantity leaves status alone.
	amount := decimal.NewFromFloat(27.50)
	updated, err = inv.UpdateItem(ctx, item.ID, core.UpdateItemInput{Amount: &amount})
	if err != nil {
		t.Fatalf("UpdateItem(amount) failed: %v", err)
	}
	if updated.Status != core.StatusLowStock {
		t.Errorf("status changed to %q on non-quantity update", updated.Status)
	}
	if !updated.Amount.Equal(amount) {
		t.Errorf("amount = %s, want %s", updated.Amount, amount)
	}

	_, err = inv.UpdateItem(ctx, uuid.New(), core.UpdateItemInput{Name: &name})
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("unknown id: expected NotFoundError, got %v", err)
	}
}

func TestInventory_DeleteItem_KeepsHistory(t *testing.T) {
	pool, inv, _, _, ctx := newTestServices(t)
	defer pool.Close()

	item := mustCreateItem(t, ctx, inv, "Spark Plug", 10, 8)
	if _, err := inv.RecordMovement(ctx, core.MovementInput{
		ItemID: item.ID, Type: core.MovementIssue, Quantity: 1,
	}, testActor); err != nil {
		t.Fatalf("RecordMovement failed: %v", err)
	}

	if err := inv.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}

	var nf *core.NotFoundError
	if _, err := inv.GetItem(ctx, item.ID); !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError after delete, got %v", err)
	}
	if err := inv.DeleteItem(ctx, item.ID); !errors.As(err, &nf) {
		t.Errorf("double delete: expected NotFoundError, got %v", err)
	}

	// History survives with a dangling item reference.
	movements, err := inv.GetMovements(ctx, &item.ID, 10)
	if err != nil {
		t.Fatalf("GetMovements failed: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("movement count after delete = %d, want 1", len(movements))
	}
	if movements[0].ItemName != "" {
		t.Errorf("deleted item name = %q, want empty", movements[0].ItemName)
	}
}

func TestInventory_GetItems_FilterAndPaginate(t *testing.T) {
	pool, inv, _, _, ctx := newTestServices(t)
	defer pool.Close()

	mustCreateItem(t, ctx, inv, "Brake Fluid DOT 4", 20, 150)
	mustCreateItem(t, ctx, inv, "Brake Pads Front", 3, 80)
	mustCreateItem(t, ctx, inv, "Fuel Filter", 0, 200)

	// Case-insensitive substring search on name.
	items, total, err := inv.GetItems(ctx, core.ItemFilter{Search: "brake"})
	if err != nil {
		t.Fatalf("GetItems(search) failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("search brake: total=%d len=%d, want 2/2", total, len(items))
	}

	// Status filter.
	items, total, err = inv.GetItems(ctx, core.ItemFilter{Status: core.StatusNotAvailable})
	if err != nil {
		t.Fatalf("GetItems(status) failed: %v", err)
	}
	if total != 1 || items[0].Name != "Fuel Filter" {
		t.Errorf("status filter: total=%d, want 1 Fuel Filter", total)
	}

	// Page beyond the data is empty but keeps the true count.
	items, total, err = inv.GetItems(ctx, core.ItemFilter{Page: 2, PageSize: 3})
	if err != nil {
		t.Fatalf("GetItems(page 2) failed: %v", err)
	}
	if total != 3 || len(items) != 0 {
		t.Errorf("page 2: total=%d len=%d, want 3/0", total, len(items))
	}

	// Page size 1 returns the newest item first.
	items, _, err = inv.GetItems(ctx, core.ItemFilter{Page: 1, PageSize: 1})
	if err != nil {
		t.Fatalf("GetItems(size 1) failed: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Fuel Filter" {
		t.Errorf("newest first: got %v", items)
	}
}
