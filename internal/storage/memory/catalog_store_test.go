package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

func seedContent(store *CatalogStore, id string, stock int32) {
	store.Put(domain.Content{
		ID:         id,
		Title:      "Item " + id,
		PriceMinor: 100,
		StockQty:   stock,
		Published:  true,
		ForSale:    true,
	})
}

func TestCatalogStoreReserve_Conditional(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore()
	seedContent(store, "content-1", 5)

	if err := store.Reserve(ctx, "content-1", 3); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := store.Reserve(ctx, "content-1", 3); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	content, err := store.Get(ctx, "content-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if content.StockQty != 2 {
		t.Fatalf("stock = %d, want 2 (failed reserve must not mutate)", content.StockQty)
	}
}

func TestCatalogStoreReserve_UnknownContent(t *testing.T) {
	store := NewCatalogStore()
	if err := store.Reserve(context.Background(), "missing", 1); !errors.Is(err, domain.ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}

func TestCatalogStoreRelease_RestoresStock(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore()
	seedContent(store, "content-1", 1)

	if err := store.Reserve(ctx, "content-1", 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := store.Release(ctx, "content-1", 1); err != nil {
		t.Fatalf("release: %v", err)
	}

	content, _ := store.Get(ctx, "content-1")
	if content.StockQty != 1 {
		t.Fatalf("stock = %d, want 1", content.StockQty)
	}
}

func TestCatalogStoreReserve_ConcurrentNeverNegative(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore()
	seedContent(store, "content-1", 10)

	const workers = 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Reserve(ctx, "content-1", 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Fatalf("succeeded = %d, want exactly 10", succeeded)
	}
	content, _ := store.Get(ctx, "content-1")
	if content.StockQty != 0 {
		t.Fatalf("stock = %d, want 0", content.StockQty)
	}
}
