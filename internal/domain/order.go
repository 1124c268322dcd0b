package domain

import "time"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, оплата ещё не подтверждена.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusPaid — оплата подтверждена платёжным провайдером.
	OrderStatusPaid OrderStatus = "paid"
	// OrderStatusFailed — оплата не состоялась.
	OrderStatusFailed OrderStatus = "failed"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusCompleted — заказ выполнен.
	OrderStatusCompleted OrderStatus = "completed"
)

// PaymentStatus отражает состояние оплаты заказа.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusFailed PaymentStatus = "failed"
)

// CustomerInfo — снапшот контактных данных покупателя на момент оформления.
// Последующие правки профиля не меняют размещённый заказ.
type CustomerInfo struct {
	FullName string
	Email    string
	Phone    string
}

// ShippingAddress — снапшот адреса доставки на момент оформления.
type ShippingAddress struct {
	Address    string
	City       string
	PostalCode string
}

// DeliveryOption — выбранный способ доставки с фиксированной стоимостью.
type DeliveryOption struct {
	ID        string
	Name      string
	CostMinor int64
}

// Totals — рассчитанные суммы заказа в минимальных денежных единицах.
type Totals struct {
	SubtotalMinor int64
	TaxMinor      int64
	ShippingMinor int64
	DiscountMinor int64
	TotalMinor    int64
}

// OrderItem представляет одну позицию заказа. После записи позиция
// неизменяема: это постоянная запись о том, что и по какой цене куплено.
type OrderItem struct {
	ID        string
	ContentID string
	// Title — снапшот названия товара на момент покупки.
	Title string
	Qty   int32
	// PriceMinor — цена за единицу на момент покупки.
	PriceMinor int64
	// LineTotalMinor = Qty * PriceMinor.
	LineTotalMinor int64
	CreatedAt      time.Time
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID string
	// OrderNumber — человекочитаемый уникальный номер вида PREFIX-YYYYMMDD-XXXX.
	OrderNumber   string
	CustomerID    string
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Customer      CustomerInfo
	Shipping      ShippingAddress
	Delivery      DeliveryOption
	// DiscountCode — применённый код скидки, пустая строка если не был указан.
	DiscountCode string
	Totals       Totals
	Items        []OrderItem
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if o.OrderNumber == "" {
		errs = append(errs, ErrOrderNumberRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.Customer.FullName == "" || o.Customer.Email == "" {
		errs = append(errs, ErrCustomerInfoIncomplete)
	}
	if o.Shipping.Address == "" || o.Shipping.City == "" {
		errs = append(errs, ErrShippingIncomplete)
	}

	// Сверяем subtotal с суммой позиций и тождество итога.
	var subtotal int64
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		if item.LineTotalMinor != int64(item.Qty)*item.PriceMinor {
			errs = append(errs, ErrLineTotalMismatch)
		}
		subtotal += item.LineTotalMinor
	}
	if subtotal != o.Totals.SubtotalMinor {
		errs = append(errs, ErrSubtotalMismatch)
	}
	if o.Totals.TotalMinor != o.Totals.SubtotalMinor+o.Totals.TaxMinor+o.Totals.ShippingMinor-o.Totals.DiscountMinor {
		errs = append(errs, ErrTotalMismatch)
	}
	if o.Totals.DiscountMinor < 0 || o.Totals.DiscountMinor > o.Totals.SubtotalMinor {
		errs = append(errs, ErrDiscountOutOfRange)
	}

	return errs
}
