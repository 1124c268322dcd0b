package domain

import "time"

// Типы событий timeline, которые пишет checkout. Reason заполняется
// только для событий-сбоев.
const (
	TimelineOrderPlaced         = "OrderPlaced"
	TimelineCheckoutFailed      = "CheckoutFailed"
	TimelineCheckoutCompensated = "CheckoutCompensated"
	TimelineCartClearFailed     = "CartClearFailed"
)

// TimelineEvent — запись в append-only журнале жизненного цикла заказа.
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}
