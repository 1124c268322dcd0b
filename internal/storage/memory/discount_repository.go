package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// DiscountRepository — in-memory справочник промокодов.
// Коды сравниваются без учёта регистра.
type DiscountRepository struct {
	mu    sync.RWMutex
	codes map[string]domain.DiscountCode
}

// NewDiscountRepository создаёт пустой справочник промокодов.
func NewDiscountRepository() *DiscountRepository {
	return &DiscountRepository{codes: make(map[string]domain.DiscountCode)}
}

// Put сохраняет промокод (seed для тестов и разработки).
func (r *DiscountRepository) Put(code domain.DiscountCode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codes[strings.ToUpper(code.Code)] = code
}

// GetByCode возвращает промокод или ErrDiscountNotFound.
func (r *DiscountRepository) GetByCode(_ context.Context, code string) (domain.DiscountCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found, ok := r.codes[strings.ToUpper(code)]
	if !ok {
		return domain.DiscountCode{}, domain.ErrDiscountNotFound
	}
	return found, nil
}

var _ domain.DiscountRepository = (*DiscountRepository)(nil)
