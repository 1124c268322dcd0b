package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

func TestCartRepositoryAddItem_MergesQty(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepository()

	if _, err := repo.AddItem(ctx, "customer-1", domain.CartItem{ContentID: "content-1", Qty: 1, PriceMinor: 500}); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := repo.AddItem(ctx, "customer-1", domain.CartItem{ContentID: "content-1", Qty: 2, PriceMinor: 700})
	if err != nil {
		t.Fatalf("add again: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("items = %d, want merged into 1", len(cart.Items))
	}
	if cart.Items[0].Qty != 3 {
		t.Fatalf("qty = %d, want 3", cart.Items[0].Qty)
	}
	// Цена фиксируется при первом добавлении.
	if cart.Items[0].PriceMinor != 500 {
		t.Fatalf("price = %d, want captured 500", cart.Items[0].PriceMinor)
	}
}

func TestCartRepositoryUpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepository()

	cart, err := repo.AddItem(ctx, "customer-1", domain.CartItem{ContentID: "content-1", Qty: 1, PriceMinor: 500})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	itemID := cart.Items[0].ID

	cart, err = repo.UpdateItemQty(ctx, "customer-1", itemID, 5)
	if err != nil {
		t.Fatalf("update qty: %v", err)
	}
	if cart.Items[0].Qty != 5 {
		t.Fatalf("qty = %d, want 5", cart.Items[0].Qty)
	}

	if _, err := repo.UpdateItemQty(ctx, "customer-1", "missing", 1); !errors.Is(err, domain.ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}

	cart, err = repo.RemoveItem(ctx, "customer-1", itemID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v", cart.Items)
	}
}

func TestCartRepositoryClear(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepository()

	if _, err := repo.AddItem(ctx, "customer-1", domain.CartItem{ContentID: "content-1", Qty: 2, PriceMinor: 500}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := repo.Clear(ctx, "customer-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	cart, err := repo.GetByCustomer(ctx, "customer-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("expected cleared cart, got %+v", cart.Items)
	}

	// Clear несуществующей корзины не считается ошибкой.
	if err := repo.Clear(ctx, "customer-2"); err != nil {
		t.Fatalf("clear missing cart: %v", err)
	}
}
