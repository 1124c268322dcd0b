package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// CartRepository — простая in-memory реализация CartRepository.
// Корзина хранится по customer_id: у покупателя ровно одна корзина.
type CartRepository struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

// NewCartRepository возвращает in-memory репозиторий корзин.
func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[string]domain.Cart)}
}

// GetByCustomer возвращает копию корзины или ErrCartNotFound.
func (r *CartRepository) GetByCustomer(_ context.Context, customerID string) (domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[customerID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	return copyCart(cart), nil
}

// AddItem добавляет позицию, суммируя количество при повторном добавлении
// того же товара. Зафиксированная цена при этом не перезаписывается.
func (r *CartRepository) AddItem(_ context.Context, customerID string, item domain.CartItem) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[customerID]
	if !ok {
		cart = domain.Cart{
			ID:         uuid.NewString(),
			CustomerID: customerID,
		}
	}

	now := time.Now().UTC()
	merged := false
	for i := range cart.Items {
		if cart.Items[i].ContentID == item.ContentID {
			cart.Items[i].Qty += item.Qty
			merged = true
			break
		}
	}
	if !merged {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.AddedAt = now
		cart.Items = append(cart.Items, item)
	}
	cart.UpdatedAt = now
	r.carts[customerID] = cart

	return copyCart(cart), nil
}

// UpdateItemQty меняет количество позиции.
func (r *CartRepository) UpdateItemQty(_ context.Context, customerID, itemID string, qty int32) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[customerID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}

	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Qty = qty
			cart.UpdatedAt = time.Now().UTC()
			r.carts[customerID] = cart
			return copyCart(cart), nil
		}
	}
	return domain.Cart{}, domain.ErrCartItemNotFound
}

// RemoveItem удаляет позицию из корзины.
func (r *CartRepository) RemoveItem(_ context.Context, customerID, itemID string) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[customerID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}

	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			cart.UpdatedAt = time.Now().UTC()
			r.carts[customerID] = cart
			return copyCart(cart), nil
		}
	}
	return domain.Cart{}, domain.ErrCartItemNotFound
}

// Clear удаляет все позиции корзины.
func (r *CartRepository) Clear(_ context.Context, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[customerID]
	if !ok {
		return nil
	}
	cart.Items = nil
	cart.UpdatedAt = time.Now().UTC()
	r.carts[customerID] = cart
	return nil
}

// copyCart возвращает копию с отдельным слайсом позиций, чтобы избежать
// непредсказуемых мутаций извне.
func copyCart(cart domain.Cart) domain.Cart {
	items := make([]domain.CartItem, len(cart.Items))
	copy(items, cart.Items)
	cart.Items = items
	return cart
}

var _ domain.CartRepository = (*CartRepository)(nil)
