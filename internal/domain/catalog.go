package domain

import "time"

// Content описывает товар каталога с точки зрения checkout-ядра:
// цена, остаток и признаки доступности. Каталог для нас read-only,
// за исключением счётчика остатка, которым управляет резервирование.
type Content struct {
	ID string
	// Title нужен для снапшота позиции заказа.
	Title string
	// PriceMinor — актуальная цена каталога в минимальных единицах.
	PriceMinor int64
	// StockQty — доступный остаток. Никогда не уходит в минус.
	StockQty int32
	// Published — товар опубликован в каталоге.
	Published bool
	// ForSale — товар доступен к продаже (может быть опубликован,
	// но снят с продажи).
	ForSale   bool
	UpdatedAt time.Time
}

// LineIssueKind классифицирует проблему позиции корзины при валидации.
type LineIssueKind string

const (
	LineIssueNotPublished LineIssueKind = "not_published"
	LineIssueNotForSale   LineIssueKind = "not_for_sale"
	LineIssueOutOfStock   LineIssueKind = "out_of_stock"
	LineIssuePriceChanged LineIssueKind = "price_changed"
	LineIssueDiscontinued LineIssueKind = "discontinued"
)

// LineIssue описывает блокирующую проблему одной позиции корзины.
type LineIssue struct {
	ContentID string
	ItemID    string
	Kind      LineIssueKind
	// AvailableQty заполняется для out_of_stock.
	AvailableQty int32
	RequestedQty int32
	// OldPriceMinor/NewPriceMinor/PercentChange заполняются для price_changed.
	OldPriceMinor int64
	NewPriceMinor int64
	PercentChange float64
}

// ValidatedLine — позиция корзины, прошедшая валидацию, вместе с
// данными каталога, нужными для снапшота заказа.
type ValidatedLine struct {
	Item  CartItem
	Title string
}

// CartValidation — агрегированный результат валидации корзины.
type CartValidation struct {
	Valid bool
	// Lines содержит только позиции без блокирующих проблем.
	Lines []ValidatedLine
	// Issues перечисляет блокирующие проблемы, по одной на позицию.
	Issues []LineIssue
}
