package core_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cdj-supply/internal/core"

	"github.com/shopspring/decimal"
)

func TestReporting_GetStats(t *testing.T) {
	pool, inv, sales, reporting, ctx := newTestServices(t)
	defer pool.Close()

	item := mustCreateItem(t, ctx, inv, "Radiator Cap", 100, 25)

	for i := 0; i < 3; i++ {
		if _, err := sales.CreateSale(ctx, core.CreateSaleInput{
			CustomerName: "Dashboard Buyer",
			Lines:        []core.SaleLineInput{{ItemID: item.ID, Quantity: 2}},
		}, testActor); err != nil {
			t.Fatalf("CreateSale failed: %v", err)
		}
	}

	stats, err := reporting.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}

	// Three sales of 2 * 25 just happened, so every window holds 150.
	want := decimal.NewFromInt(150)
	for window, got := range map[string]decimal.Decimal{
		"today": stats.TodayTotal,
		"week":  stats.WeekTotal,
		"month": stats.MonthTotal,
		"year":  stats.YearTotal,
	} {
		if !got.Equal(want) {
			t.Errorf("%s total = %s, want %s", window, got, want)
		}
	}
}

func TestReporting_GetStats_Empty(t *testing.T) {
	pool, _, _, reporting, ctx := newTestServices(t)
	defer pool.Close()

	stats, err := reporting.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if !stats.TodayTotal.IsZero() || !stats.YearTotal.IsZero() {
		t.Errorf("empty database: stats = %+v, want all zero", stats)
	}
}

func TestReporting_GetLowStockItems_OrderedByDepletion(t *testing.T) {
	pool, inv, _, reporting, ctx := newTestServices(t)
	defer pool.Close()

	mustCreateItem(t, ctx, inv, "Well Stocked", 50, 10)
	mustCreateItem(t, ctx, inv, "Running Low", 4, 10)
	mustCreateItem(t, ctx, inv, "Almost Gone", 1, 10)
	mustCreateItem(t, ctx, inv, "Sold Out", 0, 10)

	items, err := reporting.GetLowStockItems(ctx)
	if err != nil {
		t.Fatalf("GetLowStockItems failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("low stock count = %d, want 3", len(items))
	}
	wantOrder := []string{"Sold Out", "Almost Gone", "Running Low"}
	for i, name := range wantOrder {
		if items[i].Name != name {
			t.Errorf("position %d: %q, want %q", i, items[i].Name, name)
		}
	}
	if items[0].Status != core.StatusNotAvailable || items[1].Status != core.StatusLowStock {
		t.Errorf("statuses = %q, %q", items[0].Status, items[1].Status)
	}
}

func TestReporting_GetRecentSales_LimitAndOrder(t *testing.T) {
	pool, inv, sales, reporting, ctx := newTestServices(t)
	defer pool.Close()

	item := mustCreateItem(t, ctx, inv, "Fan Belt", 100, 18)
	for i := 1; i <= 7; i++ {
		if _, err := sales.CreateSale(ctx, core.CreateSaleInput{
			CustomerName: fmt.Sprintf("Customer %d", i),
			Lines:        []core.SaleLineInput{{ItemID: item.ID, Quantity: 1}},
		}, testActor); err != nil {
			t.Fatalf("CreateSale %d failed: %v", i, err)
		}
	}

	recent, err := reporting.GetRecentSales(ctx, 5)
	if err != nil {
		t.Fatalf("GetRecentSales failed: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("recent count = %d, want 5", len(recent))
	}
	if recent[0].CustomerName != "Customer 7" {
		t.Errorf("newest sale = %q, want Customer 7", recent[0].CustomerName)
	}
	for _, sale := range recent {
		if len(sale.Items) != 1 {
			t.Errorf("sale %s: lines = %d, want 1", sale.ID, len(sale.Items))
		}
	}
}

func TestUsers_Authenticate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	users := core.NewUserService(pool)
	ctx := context.Background()

	u, err := users.Authenticate(ctx, "tester", "secret123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if u.ID != testActor || u.Username != "tester" {
		t.Errorf("user = %s %q", u.ID, u.Username)
	}

	if _, err := users.Authenticate(ctx, "tester", "wrong"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := users.Authenticate(ctx, "nobody", "secret123"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}
