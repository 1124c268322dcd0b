package domain

import "time"

// CartItem представляет одну позицию корзины.
type CartItem struct {
	// ID позиции нужен для адресации при изменении количества и удалении.
	ID string
	// ContentID — внешний идентификатор товара в каталоге.
	ContentID string
	// Qty — количество единиц товара.
	Qty int32
	// PriceMinor — цена за единицу, зафиксированная в момент добавления
	// в корзину, в минимальных денежных единицах.
	PriceMinor int64
	// AddedAt фиксирует момент добавления позиции.
	AddedAt time.Time
}

// Cart агрегирует позиции корзины одного покупателя.
type Cart struct {
	ID         string
	CustomerID string
	Items      []CartItem
	UpdatedAt  time.Time
}

// IsEmpty сообщает, есть ли в корзине хотя бы одна позиция.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Item возвращает позицию корзины по идентификатору.
func (c *Cart) Item(itemID string) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return CartItem{}, false
}

// Validate проверяет, корректно ли заполнена позиция корзины.
func (i *CartItem) Validate() []error {
	var errs []error

	if i.ContentID == "" {
		errs = append(errs, ErrContentIDRequired)
	}
	if i.Qty <= 0 {
		errs = append(errs, ErrItemQtyInvalid)
	}
	if i.PriceMinor < 0 {
		errs = append(errs, ErrItemPriceInvalid)
	}

	return errs
}
