package cart_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/service/cart"
	"github.com/vladislavdragonenkov/checkout/internal/storage/memory"
)

func seedCatalog() *memory.CatalogStore {
	store := memory.NewCatalogStore()
	store.Put(domain.Content{
		ID:         "ok",
		Title:      "Available",
		PriceMinor: 100,
		StockQty:   10,
		Published:  true,
		ForSale:    true,
	})
	store.Put(domain.Content{
		ID:         "unpublished",
		PriceMinor: 100,
		StockQty:   10,
		Published:  false,
		ForSale:    true,
	})
	store.Put(domain.Content{
		ID:         "not-for-sale",
		PriceMinor: 100,
		StockQty:   10,
		Published:  true,
		ForSale:    false,
	})
	store.Put(domain.Content{
		ID:         "low-stock",
		PriceMinor: 100,
		StockQty:   1,
		Published:  true,
		ForSale:    true,
	})
	store.Put(domain.Content{
		ID:         "repriced",
		PriceMinor: 150,
		StockQty:   10,
		Published:  true,
		ForSale:    true,
	})
	return store
}

func cartWith(items ...domain.CartItem) domain.Cart {
	return domain.Cart{ID: "cart-1", CustomerID: "customer-1", Items: items}
}

func TestValidatorClassification(t *testing.T) {
	validator := cart.NewValidator(seedCatalog(), 10, nil)

	cases := []struct {
		name string
		item domain.CartItem
		want domain.LineIssueKind
	}{
		{
			name: "discontinued",
			item: domain.CartItem{ID: "i1", ContentID: "missing", Qty: 1, PriceMinor: 100},
			want: domain.LineIssueDiscontinued,
		},
		{
			name: "not published",
			item: domain.CartItem{ID: "i2", ContentID: "unpublished", Qty: 1, PriceMinor: 100},
			want: domain.LineIssueNotPublished,
		},
		{
			name: "not for sale",
			item: domain.CartItem{ID: "i3", ContentID: "not-for-sale", Qty: 1, PriceMinor: 100},
			want: domain.LineIssueNotForSale,
		},
		{
			name: "out of stock",
			item: domain.CartItem{ID: "i4", ContentID: "low-stock", Qty: 3, PriceMinor: 100},
			want: domain.LineIssueOutOfStock,
		},
		{
			name: "price changed",
			item: domain.CartItem{ID: "i5", ContentID: "repriced", Qty: 1, PriceMinor: 100},
			want: domain.LineIssuePriceChanged,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := validator.Validate(context.Background(), cartWith(tc.item))
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if result.Valid {
				t.Fatal("expected invalid result")
			}
			if len(result.Issues) != 1 || result.Issues[0].Kind != tc.want {
				t.Fatalf("issues = %+v, want single %s", result.Issues, tc.want)
			}
		})
	}
}

func TestValidatorOkLine(t *testing.T) {
	validator := cart.NewValidator(seedCatalog(), 10, nil)

	result, err := validator.Validate(context.Background(), cartWith(
		domain.CartItem{ID: "i1", ContentID: "ok", Qty: 2, PriceMinor: 100},
	))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !result.Valid || len(result.Lines) != 1 {
		t.Fatalf("expected valid single line, got %+v", result)
	}
	if result.Lines[0].Title != "Available" {
		t.Fatalf("title snapshot = %q, want Available", result.Lines[0].Title)
	}
}

func TestValidatorOutOfStockDetails(t *testing.T) {
	validator := cart.NewValidator(seedCatalog(), 10, nil)

	result, _ := validator.Validate(context.Background(), cartWith(
		domain.CartItem{ID: "i1", ContentID: "low-stock", Qty: 5, PriceMinor: 100},
	))
	issue := result.Issues[0]
	if issue.AvailableQty != 1 || issue.RequestedQty != 5 {
		t.Fatalf("issue = %+v, want available 1 / requested 5", issue)
	}
}

func TestValidatorPriceDriftDetails(t *testing.T) {
	validator := cart.NewValidator(seedCatalog(), 10, nil)

	result, _ := validator.Validate(context.Background(), cartWith(
		domain.CartItem{ID: "i1", ContentID: "repriced", Qty: 1, PriceMinor: 100},
	))
	issue := result.Issues[0]
	if issue.OldPriceMinor != 100 || issue.NewPriceMinor != 150 {
		t.Fatalf("prices = %d/%d, want 100/150", issue.OldPriceMinor, issue.NewPriceMinor)
	}
	if issue.PercentChange != 50 {
		t.Fatalf("percent change = %v, want 50", issue.PercentChange)
	}
}

func TestValidatorDriftAtThresholdPasses(t *testing.T) {
	store := seedCatalog()
	store.Put(domain.Content{
		ID:         "edge",
		PriceMinor: 110,
		StockQty:   10,
		Published:  true,
		ForSale:    true,
	})
	validator := cart.NewValidator(store, 10, nil)

	// Ровно 10% — проходит по зафиксированной цене.
	result, _ := validator.Validate(context.Background(), cartWith(
		domain.CartItem{ID: "i1", ContentID: "edge", Qty: 1, PriceMinor: 100},
	))
	if !result.Valid {
		t.Fatalf("drift at threshold must pass, got %+v", result.Issues)
	}
	if result.Lines[0].Item.PriceMinor != 100 {
		t.Fatal("line must keep the captured cart price")
	}
}

func TestValidatorIdempotent(t *testing.T) {
	validator := cart.NewValidator(seedCatalog(), 10, nil)
	cartState := cartWith(
		domain.CartItem{ID: "i1", ContentID: "ok", Qty: 2, PriceMinor: 100},
		domain.CartItem{ID: "i2", ContentID: "low-stock", Qty: 3, PriceMinor: 100},
		domain.CartItem{ID: "i3", ContentID: "repriced", Qty: 1, PriceMinor: 100},
	)

	first, err := validator.Validate(context.Background(), cartState)
	if err != nil {
		t.Fatalf("first validate: %v", err)
	}
	second, err := validator.Validate(context.Background(), cartState)
	if err != nil {
		t.Fatalf("second validate: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("validator is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
