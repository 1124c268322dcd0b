package rest

import "github.com/vladislavdragonenkov/checkout/internal/domain"

// Транспортные DTO отделяют JSON-контракт API от доменных типов:
// домен не знает про сериализацию.

type customerInfoDTO struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type shippingAddressDTO struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code,omitempty"`
}

type deliveryMethodDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CostMinor int64  `json:"cost_minor"`
}

type checkoutRequestDTO struct {
	Customer     customerInfoDTO    `json:"customer_info"`
	Shipping     shippingAddressDTO `json:"shipping_address"`
	Delivery     deliveryMethodDTO  `json:"delivery_method"`
	DiscountCode string             `json:"discount_code,omitempty"`
}

type totalsDTO struct {
	SubtotalMinor int64 `json:"subtotal_minor"`
	TaxMinor      int64 `json:"tax_minor"`
	ShippingMinor int64 `json:"shipping_minor"`
	DiscountMinor int64 `json:"discount_minor"`
	TotalMinor    int64 `json:"total_minor"`
}

type orderItemDTO struct {
	ContentID      string `json:"content_id"`
	Title          string `json:"title"`
	Qty            int32  `json:"qty"`
	PriceMinor     int64  `json:"price_minor"`
	LineTotalMinor int64  `json:"line_total_minor"`
}

type checkoutResponseDTO struct {
	OrderID     string             `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	Status      string             `json:"status"`
	Totals      totalsDTO          `json:"totals"`
	Customer    customerInfoDTO    `json:"customer_info"`
	Shipping    shippingAddressDTO `json:"shipping_address"`
	Delivery    deliveryMethodDTO  `json:"delivery_method"`
	Items       []orderItemDTO     `json:"items"`
	Warnings    []string           `json:"warnings,omitempty"`
}

type errorResponseDTO struct {
	ErrorCategory string `json:"error_category"`
	Message       string `json:"message"`
	Details       any    `json:"details,omitempty"`
}

type cartItemDTO struct {
	ID         string `json:"id"`
	ContentID  string `json:"content_id"`
	Qty        int32  `json:"qty"`
	PriceMinor int64  `json:"price_minor"`
}

type cartResponseDTO struct {
	CustomerID string        `json:"customer_id"`
	Items      []cartItemDTO `json:"items"`
}

type addItemRequestDTO struct {
	ContentID string `json:"content_id"`
	Qty       int32  `json:"qty"`
}

type updateQtyRequestDTO struct {
	Qty int32 `json:"qty"`
}

type lineIssueDTO struct {
	ContentID     string  `json:"content_id"`
	ItemID        string  `json:"item_id,omitempty"`
	Kind          string  `json:"kind"`
	AvailableQty  int32   `json:"available_qty,omitempty"`
	RequestedQty  int32   `json:"requested_qty,omitempty"`
	OldPriceMinor int64   `json:"old_price_minor,omitempty"`
	NewPriceMinor int64   `json:"new_price_minor,omitempty"`
	PercentChange float64 `json:"percent_change,omitempty"`
}

type validationResponseDTO struct {
	Valid  bool           `json:"valid"`
	Issues []lineIssueDTO `json:"issues,omitempty"`
}

func toCheckoutResponse(order domain.Order, warnings []string) checkoutResponseDTO {
	items := make([]orderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemDTO{
			ContentID:      item.ContentID,
			Title:          item.Title,
			Qty:            item.Qty,
			PriceMinor:     item.PriceMinor,
			LineTotalMinor: item.LineTotalMinor,
		})
	}
	return checkoutResponseDTO{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Totals: totalsDTO{
			SubtotalMinor: order.Totals.SubtotalMinor,
			TaxMinor:      order.Totals.TaxMinor,
			ShippingMinor: order.Totals.ShippingMinor,
			DiscountMinor: order.Totals.DiscountMinor,
			TotalMinor:    order.Totals.TotalMinor,
		},
		Customer: customerInfoDTO{
			FullName: order.Customer.FullName,
			Email:    order.Customer.Email,
			Phone:    order.Customer.Phone,
		},
		Shipping: shippingAddressDTO{
			Address:    order.Shipping.Address,
			City:       order.Shipping.City,
			PostalCode: order.Shipping.PostalCode,
		},
		Delivery: deliveryMethodDTO{
			ID:        order.Delivery.ID,
			Name:      order.Delivery.Name,
			CostMinor: order.Delivery.CostMinor,
		},
		Items:    items,
		Warnings: warnings,
	}
}

func toCartResponse(cart domain.Cart) cartResponseDTO {
	items := make([]cartItemDTO, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, cartItemDTO{
			ID:         item.ID,
			ContentID:  item.ContentID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
		})
	}
	return cartResponseDTO{CustomerID: cart.CustomerID, Items: items}
}

func toLineIssues(issues []domain.LineIssue) []lineIssueDTO {
	out := make([]lineIssueDTO, 0, len(issues))
	for _, issue := range issues {
		out = append(out, lineIssueDTO{
			ContentID:     issue.ContentID,
			ItemID:        issue.ItemID,
			Kind:          string(issue.Kind),
			AvailableQty:  issue.AvailableQty,
			RequestedQty:  issue.RequestedQty,
			OldPriceMinor: issue.OldPriceMinor,
			NewPriceMinor: issue.NewPriceMinor,
			PercentChange: issue.PercentChange,
		})
	}
	return out
}

func toValidationResponse(v domain.CartValidation) validationResponseDTO {
	return validationResponseDTO{
		Valid:  v.Valid,
		Issues: toLineIssues(v.Issues),
	}
}
