package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

func seedContentForIntegrationTest(t *testing.T, store *Store, id string, stock int32) {
	t.Helper()

	_, err := store.DB().ExecContext(context.Background(), `
		INSERT INTO contents (id, title, price_minor, stock_qty, published, for_sale)
		VALUES ($1, 'Go in Practice', 500, $2, TRUE, TRUE)
	`, id, stock)
	if err != nil {
		t.Fatalf("seed content: %v", err)
	}
}

func stockForIntegrationTest(t *testing.T, store *Store, id string) int32 {
	t.Helper()

	var stock int32
	if err := store.DB().QueryRowContext(context.Background(),
		`SELECT stock_qty FROM contents WHERE id = $1`, id).Scan(&stock); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return stock
}

func TestContentRepository_Integration_GetAndMissing(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewContentRepository(store)
	ctx := context.Background()

	seedContentForIntegrationTest(t, store, "content-1", 5)

	content, err := repo.Get(ctx, "content-1")
	if err != nil {
		t.Fatalf("get content: %v", err)
	}
	if content.PriceMinor != 500 || content.StockQty != 5 {
		t.Fatalf("content = %+v", content)
	}

	if _, err := repo.Get(ctx, "ghost"); !errors.Is(err, domain.ErrContentNotFound) {
		t.Fatalf("err = %v, want ErrContentNotFound", err)
	}
}

func TestContentRepository_Integration_ReserveAndRelease(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewContentRepository(store)
	ctx := context.Background()

	seedContentForIntegrationTest(t, store, "content-1", 3)

	if err := repo.Reserve(ctx, "content-1", 2); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if got := stockForIntegrationTest(t, store, "content-1"); got != 1 {
		t.Fatalf("stock after reserve = %d, want 1", got)
	}

	err := repo.Reserve(ctx, "content-1", 2)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if got := stockForIntegrationTest(t, store, "content-1"); got != 1 {
		t.Fatalf("failed reserve must not change stock, got %d", got)
	}

	if err := repo.Release(ctx, "content-1", 2); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := stockForIntegrationTest(t, store, "content-1"); got != 3 {
		t.Fatalf("stock after release = %d, want 3", got)
	}

	if err := repo.Reserve(ctx, "ghost", 1); !errors.Is(err, domain.ErrContentNotFound) {
		t.Fatalf("reserve unknown content: err = %v, want ErrContentNotFound", err)
	}
}

func TestContentRepository_Integration_ConcurrentReserve(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewContentRepository(store)

	seedContentForIntegrationTest(t, store, "content-1", 10)

	const workers = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Reserve(context.Background(), "content-1", 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Fatalf("successful reservations = %d, want exactly 10", succeeded)
	}
	if got := stockForIntegrationTest(t, store, "content-1"); got != 0 {
		t.Fatalf("final stock = %d, want 0", got)
	}
}
