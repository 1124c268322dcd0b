package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// helper для создания базового заказа с двумя позициями.
func makeOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:            "order-1",
		OrderNumber:   "ORD-20260830-A1B2",
		CustomerID:    "customer-1",
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
		Customer: domain.CustomerInfo{
			FullName: "Ivan Petrov",
			Email:    "ivan@example.com",
			Phone:    "+70000000000",
		},
		Shipping: domain.ShippingAddress{
			Address: "Lenina 1",
			City:    "Moscow",
		},
		Delivery: domain.DeliveryOption{ID: "courier", Name: "Courier", CostMinor: 500},
		Totals: domain.Totals{
			SubtotalMinor: 1300,
			TaxMinor:      0,
			ShippingMinor: 500,
			DiscountMinor: 10,
			TotalMinor:    1790,
		},
		Items: []domain.OrderItem{
			{
				ID:             "item-1",
				ContentID:      "content-1",
				Title:          "First",
				Qty:            2,
				PriceMinor:     500,
				LineTotalMinor: 1000,
				CreatedAt:      now,
			},
			{
				ID:             "item-2",
				ContentID:      "content-2",
				Title:          "Second",
				Qty:            1,
				PriceMinor:     300,
				LineTotalMinor: 300,
				CreatedAt:      now,
			},
		},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
		want error
	}{
		{
			name: "no customer",
			mut: func(o *domain.Order) {
				o.CustomerID = ""
			},
			want: domain.ErrCustomerRequired,
		},
		{
			name: "no order number",
			mut: func(o *domain.Order) {
				o.OrderNumber = ""
			},
			want: domain.ErrOrderNumberRequired,
		},
		{
			name: "no items",
			mut: func(o *domain.Order) {
				o.Items = nil
				o.Totals.SubtotalMinor = 0
				o.Totals.DiscountMinor = 0
				o.Totals.TotalMinor = 500
			},
			want: domain.ErrItemsRequired,
		},
		{
			name: "subtotal mismatch",
			mut: func(o *domain.Order) {
				o.Totals.SubtotalMinor = 999
			},
			want: domain.ErrSubtotalMismatch,
		},
		{
			name: "total identity violated",
			mut: func(o *domain.Order) {
				o.Totals.TotalMinor = 2000
			},
			want: domain.ErrTotalMismatch,
		},
		{
			name: "line total mismatch",
			mut: func(o *domain.Order) {
				o.Items[0].LineTotalMinor = 1
				o.Totals.SubtotalMinor = 301
				o.Totals.TotalMinor = 791
			},
			want: domain.ErrLineTotalMismatch,
		},
		{
			name: "discount above subtotal",
			mut: func(o *domain.Order) {
				o.Totals.DiscountMinor = 5000
				o.Totals.TotalMinor = o.Totals.SubtotalMinor + o.Totals.ShippingMinor - 5000
			},
			want: domain.ErrDiscountOutOfRange,
		},
		{
			name: "incomplete customer snapshot",
			mut: func(o *domain.Order) {
				o.Customer.Email = ""
			},
			want: domain.ErrCustomerInfoIncomplete,
		},
		{
			name: "incomplete shipping snapshot",
			mut: func(o *domain.Order) {
				o.Shipping.City = ""
			},
			want: domain.ErrShippingIncomplete,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			tc.mut(&order)

			errs := order.ValidateInvariants()
			if len(errs) == 0 {
				t.Fatal("expected validation errors, got none")
			}
			found := false
			for _, err := range errs {
				if err == tc.want {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("expected %v among %v", tc.want, errs)
			}
		})
	}
}
