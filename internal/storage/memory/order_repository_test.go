package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

func sampleOrder(id, number string) domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:            id,
		OrderNumber:   number,
		CustomerID:    "customer-1",
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestOrderRepositoryCreate_UniqueNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	if err := repo.Create(ctx, sampleOrder("order-1", "ORD-20260830-AAAA")); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := repo.Create(ctx, sampleOrder("order-2", "ORD-20260830-AAAA"))
	if !errors.Is(err, domain.ErrOrderNumberTaken) {
		t.Fatalf("expected ErrOrderNumberTaken, got %v", err)
	}
}

func TestOrderRepositoryAddItemsAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	if err := repo.Create(ctx, sampleOrder("order-1", "ORD-20260830-BBBB")); err != nil {
		t.Fatalf("create: %v", err)
	}
	items := []domain.OrderItem{
		{ID: "item-1", ContentID: "content-1", Qty: 2, PriceMinor: 500, LineTotalMinor: 1000},
	}
	if err := repo.AddItems(ctx, "order-1", items); err != nil {
		t.Fatalf("add items: %v", err)
	}

	order, err := repo.Get(ctx, "order-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(order.Items) != 1 || order.Items[0].LineTotalMinor != 1000 {
		t.Fatalf("unexpected items: %+v", order.Items)
	}

	byNumber, err := repo.GetByNumber(ctx, "ORD-20260830-BBBB")
	if err != nil {
		t.Fatalf("get by number: %v", err)
	}
	if byNumber.ID != "order-1" {
		t.Fatalf("got order %q, want order-1", byNumber.ID)
	}
}

func TestOrderRepositoryDelete_Compensation(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	if err := repo.Create(ctx, sampleOrder("order-1", "ORD-20260830-CCCC")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.AddItems(ctx, "order-1", []domain.OrderItem{{ID: "item-1"}}); err != nil {
		t.Fatalf("add items: %v", err)
	}

	if err := repo.DeleteItems(ctx, "order-1"); err != nil {
		t.Fatalf("delete items: %v", err)
	}
	if err := repo.Delete(ctx, "order-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := repo.Get(ctx, "order-1"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	// Номер снова свободен: повторная вставка с тем же order_number проходит.
	if err := repo.Create(ctx, sampleOrder("order-2", "ORD-20260830-CCCC")); err != nil {
		t.Fatalf("recreate with freed number: %v", err)
	}
}

func TestOrderRepositoryListByCustomer(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	first := sampleOrder("order-1", "ORD-20260830-DDD1")
	first.CreatedAt = time.Now().UTC().Add(-time.Hour)
	second := sampleOrder("order-2", "ORD-20260830-DDD2")

	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	orders, err := repo.ListByCustomer(ctx, "customer-1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != "order-2" {
		t.Fatalf("expected newest first, got %+v", orders)
	}

	limited, err := repo.ListByCustomer(ctx, "customer-1", 1)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit ignored, got %d orders", len(limited))
	}
}
