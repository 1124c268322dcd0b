package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// CatalogStore — in-memory каталог с управлением остатками.
// Реализует и CatalogRepository, и InventoryRepository: в памяти
// атомарность условного декремента обеспечивает общий мьютекс.
type CatalogStore struct {
	mu       sync.RWMutex
	contents map[string]domain.Content
}

// NewCatalogStore создаёт пустой in-memory каталог для разработки и тестов.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{contents: make(map[string]domain.Content)}
}

// Put сохраняет или заменяет товар каталога (seed для тестов).
func (s *CatalogStore) Put(content domain.Content) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content.UpdatedAt = time.Now().UTC()
	s.contents[content.ID] = content
}

// Get возвращает товар или ErrContentNotFound.
func (s *CatalogStore) Get(_ context.Context, contentID string) (domain.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.contents[contentID]
	if !ok {
		return domain.Content{}, domain.ErrContentNotFound
	}
	return content, nil
}

// Reserve выполняет проверку и декремент остатка одной критической секцией.
// Остаток никогда не уходит в минус.
func (s *CatalogStore) Reserve(_ context.Context, contentID string, qty int32) error {
	if qty <= 0 {
		return domain.ErrItemQtyInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	content, ok := s.contents[contentID]
	if !ok {
		return domain.ErrContentNotFound
	}
	if content.StockQty < qty {
		return domain.ErrInsufficientStock
	}
	content.StockQty -= qty
	content.UpdatedAt = time.Now().UTC()
	s.contents[contentID] = content
	return nil
}

// Release возвращает qty единиц остатка (компенсация резервирования).
func (s *CatalogStore) Release(_ context.Context, contentID string, qty int32) error {
	if qty <= 0 {
		return domain.ErrItemQtyInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	content, ok := s.contents[contentID]
	if !ok {
		return domain.ErrContentNotFound
	}
	content.StockQty += qty
	content.UpdatedAt = time.Now().UTC()
	s.contents[contentID] = content
	return nil
}

var _ domain.CatalogRepository = (*CatalogStore)(nil)
var _ domain.InventoryRepository = (*CatalogStore)(nil)
