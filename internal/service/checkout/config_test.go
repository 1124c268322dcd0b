package checkout

import (
	"context"
	"testing"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

func TestConfigWithDefaults(t *testing.T) {
	cases := []struct {
		name      string
		in        Config
		wantDrift float64
	}{
		{name: "negative drift falls back to default", in: Config{PriceDriftPercent: -1}, wantDrift: 10},
		{name: "zero drift is kept as zero tolerance", in: Config{PriceDriftPercent: 0}, wantDrift: 0},
		{name: "explicit drift is kept", in: Config{PriceDriftPercent: 25}, wantDrift: 25},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.withDefaults()
			if got.PriceDriftPercent != tc.wantDrift {
				t.Fatalf("PriceDriftPercent = %v, want %v", got.PriceDriftPercent, tc.wantDrift)
			}
			if got.OrderNumberPrefix != "ORD" || got.OrderNumberAttempts != 5 {
				t.Fatalf("unexpected defaults: %+v", got)
			}
		})
	}
}

func TestCheckout_ZeroDriftToleranceBlocksAnyChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedContent("content-1", 101, 10)
	f.seedCartLine(t, "customer-1", "content-1", 1, 100)

	cfg := DefaultConfig()
	cfg.PriceDriftPercent = 0

	o := f.orchestrator(cfg)
	_, err := o.Checkout(ctx, "customer-1", validRequest())
	ce := assertCategory(t, err, domain.ErrorCategoryValidation)

	issues, ok := ce.Details.([]domain.LineIssue)
	if !ok || len(issues) != 1 || issues[0].Kind != domain.LineIssuePriceChanged {
		t.Fatalf("expected price_changed issue, got %#v", ce.Details)
	}
}
