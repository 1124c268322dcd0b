package cart

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// Service реализует мутации корзины. Цена позиции фиксируется в момент
// добавления и дальше не следует за каталогом: расхождение обрабатывает
// валидатор через порог price drift.
type Service struct {
	carts   domain.CartRepository
	catalog domain.CatalogRepository
	logger  *log.Entry
}

// NewService конструирует сервис корзины.
func NewService(carts domain.CartRepository, catalog domain.CatalogRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "cart-service")
	}
	return &Service{
		carts:   carts,
		catalog: catalog,
		logger:  logger,
	}
}

// Get возвращает корзину покупателя; отсутствующая корзина считается пустой.
func (s *Service) Get(ctx context.Context, customerID string) (domain.Cart, error) {
	cart, err := s.carts.GetByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return domain.Cart{CustomerID: customerID}, nil
		}
		return domain.Cart{}, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// AddItem добавляет товар в корзину, фиксируя актуальную цену каталога.
func (s *Service) AddItem(ctx context.Context, customerID, contentID string, qty int32) (domain.Cart, error) {
	if qty <= 0 {
		return domain.Cart{}, domain.NewCheckoutError(domain.ErrorCategoryValidation, "qty must be greater than zero", domain.ErrItemQtyInvalid)
	}

	content, err := s.catalog.Get(ctx, contentID)
	if err != nil {
		if errors.Is(err, domain.ErrContentNotFound) {
			return domain.Cart{}, domain.NewCheckoutError(domain.ErrorCategoryValidation, "content not found", err)
		}
		return domain.Cart{}, fmt.Errorf("read catalog: %w", err)
	}
	if !content.Published || !content.ForSale {
		return domain.Cart{}, domain.NewCheckoutError(domain.ErrorCategoryValidation, "content is not available for sale", nil)
	}

	cart, err := s.carts.AddItem(ctx, customerID, domain.CartItem{
		ContentID:  contentID,
		Qty:        qty,
		PriceMinor: content.PriceMinor,
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("add cart item: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"customer_id": customerID,
		"content_id":  contentID,
		"qty":         qty,
	}).Debug("cart item added")

	return cart, nil
}

// UpdateItemQty меняет количество существующей позиции.
func (s *Service) UpdateItemQty(ctx context.Context, customerID, itemID string, qty int32) (domain.Cart, error) {
	if qty <= 0 {
		return domain.Cart{}, domain.NewCheckoutError(domain.ErrorCategoryValidation, "qty must be greater than zero", domain.ErrItemQtyInvalid)
	}

	cart, err := s.carts.UpdateItemQty(ctx, customerID, itemID, qty)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) || errors.Is(err, domain.ErrCartItemNotFound) {
			return domain.Cart{}, domain.NewCheckoutError(domain.ErrorCategoryValidation, "cart item not found", err)
		}
		return domain.Cart{}, fmt.Errorf("update cart item: %w", err)
	}
	return cart, nil
}

// RemoveItem удаляет позицию из корзины.
func (s *Service) RemoveItem(ctx context.Context, customerID, itemID string) (domain.Cart, error) {
	cart, err := s.carts.RemoveItem(ctx, customerID, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) || errors.Is(err, domain.ErrCartItemNotFound) {
			return domain.Cart{}, domain.NewCheckoutError(domain.ErrorCategoryValidation, "cart item not found", err)
		}
		return domain.Cart{}, fmt.Errorf("remove cart item: %w", err)
	}
	return cart, nil
}
