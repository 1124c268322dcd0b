package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
// Уникальность order_number моделирует unique constraint хранилища.
type orderRepositoryInMemory struct {
	mu        sync.RWMutex
	orders    map[string]domain.Order
	byNumber  map[string]string
	itemsByID map[string][]domain.OrderItem
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		orders:    make(map[string]domain.Order),
		byNumber:  make(map[string]string),
		itemsByID: make(map[string][]domain.OrderItem),
	}
}

// Create сохраняет строку заказа, если ID и order_number ещё не заняты.
func (r *orderRepositoryInMemory) Create(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return domain.ErrOrderNumberTaken
	}
	if _, exists := r.byNumber[order.OrderNumber]; exists {
		return domain.ErrOrderNumberTaken
	}

	// Позиции хранятся отдельно: Create пишет только строку заказа.
	order.Items = nil
	r.orders[order.ID] = order
	r.byNumber[order.OrderNumber] = order.ID
	return nil
}

// AddItems записывает позиции заказа.
func (r *orderRepositoryInMemory) AddItems(_ context.Context, orderID string, items []domain.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[orderID]; !ok {
		return domain.ErrOrderNotFound
	}
	stored := make([]domain.OrderItem, len(items))
	copy(stored, items)
	r.itemsByID[orderID] = append(r.itemsByID[orderID], stored...)
	return nil
}

// Get возвращает заказ с позициями или ErrOrderNotFound.
func (r *orderRepositoryInMemory) Get(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return r.withItems(order), nil
}

// GetByNumber возвращает заказ по человекочитаемому номеру.
func (r *orderRepositoryInMemory) GetByNumber(_ context.Context, orderNumber string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byNumber[orderNumber]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return r.withItems(r.orders[id]), nil
}

// ListByCustomer возвращает заказы покупателя, новые первыми.
func (r *orderRepositoryInMemory) ListByCustomer(_ context.Context, customerID string, limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range r.orders {
		if order.CustomerID != customerID {
			continue
		}
		result = append(result, r.withItems(order))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// DeleteItems удаляет позиции заказа (компенсация).
func (r *orderRepositoryInMemory) DeleteItems(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.itemsByID, orderID)
	return nil
}

// Delete удаляет заказ (компенсация).
func (r *orderRepositoryInMemory) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil
	}
	delete(r.byNumber, order.OrderNumber)
	delete(r.orders, id)
	delete(r.itemsByID, id)
	return nil
}

func (r *orderRepositoryInMemory) withItems(order domain.Order) domain.Order {
	items := r.itemsByID[order.ID]
	copied := make([]domain.OrderItem, len(items))
	copy(copied, items)
	order.Items = copied
	return order
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
