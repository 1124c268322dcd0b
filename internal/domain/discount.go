package domain

import "time"

// DiscountType определяет способ расчёта скидки.
type DiscountType string

const (
	// DiscountTypePercentage — скидка как процент от subtotal.
	DiscountTypePercentage DiscountType = "percentage"
	// DiscountTypeFixed — фиксированная сумма в минимальных единицах.
	DiscountTypeFixed DiscountType = "fixed"
)

// DiscountCode описывает промокод с окном действия.
type DiscountCode struct {
	Code string
	Type DiscountType
	// Value — процент для percentage (например, 10 означает 10%)
	// или сумма в минимальных единицах для fixed.
	Value     int64
	ValidFrom time.Time
	ValidTo   time.Time
	Active    bool
}

// IsRedeemable сообщает, действует ли код в момент now.
func (d *DiscountCode) IsRedeemable(now time.Time) bool {
	if !d.Active {
		return false
	}
	if !d.ValidFrom.IsZero() && now.Before(d.ValidFrom) {
		return false
	}
	if !d.ValidTo.IsZero() && now.After(d.ValidTo) {
		return false
	}
	return true
}
