package pricing

import (
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// Engine считает суммы заказа. Все вычисления чистые: движок не ходит
// в хранилища и не имеет состояния между вызовами.
//
// Деньги — int64 в минимальных единицах, поэтому единственное место,
// где возможна дробная часть, — процентная скидка. Округление применяется
// один раз к итоговому значению скидки, а не к промежуточным произведениям.
type Engine struct {
	// taxMinor — placeholder налога; сейчас всегда 0.
	taxMinor int64
}

// NewEngine создаёт движок с заданным placeholder'ом налога.
func NewEngine(taxMinor int64) *Engine {
	return &Engine{taxMinor: taxMinor}
}

// Quote считает Totals по валидированным позициям, способу доставки и
// (опционально) промокоду. Промокод учитывается только если он действует
// в момент now; скидка ограничена сверху значением subtotal.
func (e *Engine) Quote(lines []domain.ValidatedLine, delivery domain.DeliveryOption, discount *domain.DiscountCode, now time.Time) domain.Totals {
	var subtotal int64
	for _, line := range lines {
		subtotal += int64(line.Item.Qty) * line.Item.PriceMinor
	}

	totals := domain.Totals{
		SubtotalMinor: subtotal,
		TaxMinor:      e.taxMinor,
		ShippingMinor: delivery.CostMinor,
	}

	if discount != nil && discount.IsRedeemable(now) {
		totals.DiscountMinor = discountAmount(subtotal, *discount)
	}

	totals.TotalMinor = totals.SubtotalMinor + totals.TaxMinor + totals.ShippingMinor - totals.DiscountMinor
	return totals
}

// discountAmount считает размер скидки и ограничивает его subtotal,
// чтобы скидка сама по себе не увела итог в минус.
func discountAmount(subtotalMinor int64, code domain.DiscountCode) int64 {
	if code.Value <= 0 {
		return 0
	}

	var amount int64
	switch code.Type {
	case domain.DiscountTypePercentage:
		// Округление half-up до минимальной единицы.
		amount = (subtotalMinor*code.Value + 50) / 100
	case domain.DiscountTypeFixed:
		amount = code.Value
	default:
		return 0
	}

	if amount > subtotalMinor {
		amount = subtotalMinor
	}
	return amount
}
