package domain

import (
	"context"
	"time"
)

// CartRepository описывает требования к хранилищу корзин.
type CartRepository interface {
	// GetByCustomer возвращает корзину покупателя или ErrCartNotFound.
	GetByCustomer(ctx context.Context, customerID string) (Cart, error)
	// AddItem добавляет позицию в корзину покупателя, создавая корзину при необходимости.
	// Если товар уже есть в корзине, количество суммируется, цена не перезаписывается.
	AddItem(ctx context.Context, customerID string, item CartItem) (Cart, error)
	// UpdateItemQty меняет количество позиции. qty должен быть > 0.
	UpdateItemQty(ctx context.Context, customerID, itemID string, qty int32) (Cart, error)
	// RemoveItem удаляет позицию из корзины.
	RemoveItem(ctx context.Context, customerID, itemID string) (Cart, error)
	// Clear удаляет все позиции корзины. Вызывается только после полного
	// коммита заказа.
	Clear(ctx context.Context, customerID string) error
}

// CatalogRepository — read-only доступ к каталогу.
type CatalogRepository interface {
	// Get возвращает товар или ErrContentNotFound.
	Get(ctx context.Context, contentID string) (Content, error)
}

// InventoryRepository — авторитетное управление остатками.
// Reserve обязан быть атомарным на уровне хранилища: проверка
// "остатка хватает" и декремент выполняются одной условной записью,
// а не отдельным чтением с последующей записью.
type InventoryRepository interface {
	// Reserve уменьшает остаток на qty, если его хватает,
	// иначе возвращает ErrInsufficientStock без изменения остатка.
	Reserve(ctx context.Context, contentID string, qty int32) error
	// Release возвращает qty единиц остатка (компенсация).
	Release(ctx context.Context, contentID string, qty int32) error
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет строку заказа (без позиций). Возвращает
	// ErrOrderNumberTaken при конфликте уникальности order_number.
	Create(ctx context.Context, order Order) error
	// AddItems записывает позиции заказа. Позиции неизменяемы.
	AddItems(ctx context.Context, orderID string, items []OrderItem) error
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	// GetByNumber возвращает заказ по человекочитаемому номеру.
	GetByNumber(ctx context.Context, orderNumber string) (Order, error)
	// ListByCustomer возвращает заказы покупателя, новые первыми.
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]Order, error)
	// DeleteItems удаляет позиции заказа (только для компенсации).
	DeleteItems(ctx context.Context, orderID string) error
	// Delete удаляет заказ (только для компенсации).
	Delete(ctx context.Context, id string) error
}

// DiscountRepository — поиск промокодов.
type DiscountRepository interface {
	// GetByCode возвращает код или ErrDiscountNotFound.
	GetByCode(ctx context.Context, code string) (DiscountCode, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}

// EventOrderPlaced — wire-тип события успешного checkout.
const EventOrderPlaced = "order.placed"

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
