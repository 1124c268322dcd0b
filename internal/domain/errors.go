package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствующего идентификатора покупателя.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствующего номера заказа.
	ErrOrderNumberRequired = errors.New("order_number is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка несоответствия line_total произведению qty * price.
	ErrLineTotalMismatch = errors.New("item line total does not match qty * price")
	// Ошибка несоответствия subtotal сумме позиций.
	ErrSubtotalMismatch = errors.New("order subtotal does not match items sum")
	// Ошибка нарушения тождества total = subtotal + tax + shipping - discount.
	ErrTotalMismatch = errors.New("order total identity violated")
	// Ошибка скидки вне диапазона [0, subtotal].
	ErrDiscountOutOfRange = errors.New("discount must be within [0, subtotal]")
	// Ошибка неполного снапшота контактных данных.
	ErrCustomerInfoIncomplete = errors.New("customer info snapshot is incomplete")
	// Ошибка неполного снапшота адреса доставки.
	ErrShippingIncomplete = errors.New("shipping address snapshot is incomplete")
	// Ошибка отсутствующего идентификатора товара в позиции корзины.
	ErrContentIDRequired = errors.New("content_id is required")

	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderNumberTaken сигнализирует о конфликте уникальности номера заказа.
	ErrOrderNumberTaken = errors.New("order number already taken")
	// ErrCartNotFound возвращается, если корзина покупателя не найдена.
	ErrCartNotFound = errors.New("cart not found")
	// ErrCartItemNotFound возвращается при адресации несуществующей позиции корзины.
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrContentNotFound возвращается, если товара нет в каталоге.
	ErrContentNotFound = errors.New("content not found")
	// ErrInsufficientStock — остатка не хватает для резервирования.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDiscountNotFound возвращается, если код скидки неизвестен.
	ErrDiscountNotFound = errors.New("discount code not found")
	// ErrDiscountNotRedeemable — код неактивен или вне окна действия.
	ErrDiscountNotRedeemable = errors.New("discount code is not redeemable")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// ErrorCategory — внешняя категория ошибки checkout, попадающая в ответ API.
type ErrorCategory string

const (
	ErrorCategoryValidation  ErrorCategory = "validation"
	ErrorCategoryCartEmpty   ErrorCategory = "cart_empty"
	ErrorCategoryStock       ErrorCategory = "stock"
	ErrorCategoryPersistence ErrorCategory = "persistence"
	ErrorCategoryInternal    ErrorCategory = "internal"
)

// CheckoutError — типизированная ошибка checkout-ядра. Категория и message
// уходят клиенту; cause остаётся только в серверных логах.
type CheckoutError struct {
	Category ErrorCategory
	Message  string
	// Details — структурированные подробности для клиента (например,
	// список позиций с нехваткой остатка). Может быть nil.
	Details any

	cause error
}

func (e *CheckoutError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *CheckoutError) Unwrap() error {
	return e.cause
}

// NewCheckoutError создаёт ошибку с категорией и причиной.
func NewCheckoutError(category ErrorCategory, message string, cause error) *CheckoutError {
	return &CheckoutError{Category: category, Message: message, cause: cause}
}

// WithDetails прикрепляет к ошибке структурированные подробности.
func (e *CheckoutError) WithDetails(details any) *CheckoutError {
	e.Details = details
	return e
}

// CategoryOf возвращает категорию ошибки; для нетипизированных ошибок — internal.
func CategoryOf(err error) ErrorCategory {
	var ce *CheckoutError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ErrorCategoryInternal
}

// IsInsufficientStock проверяет, вызвана ли ошибка нехваткой остатка.
func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}
