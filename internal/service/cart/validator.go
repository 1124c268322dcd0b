package cart

import (
	"context"
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// Validator классифицирует позиции корзины относительно живого состояния
// каталога. Валидатор ничего не пишет и идемпотентен: два вызова на
// неизменной корзине дают одинаковый результат.
//
// Это рекомендательная проверка. Авторитетная проверка остатка выполняется
// резервированием в момент коммита, потому что между валидацией и коммитом
// проходит время.
type Validator struct {
	catalog domain.CatalogRepository
	// driftPercent — порог расхождения цены; на пороге и ниже позиция
	// проходит по зафиксированной цене корзины, выше — блокируется.
	driftPercent float64
	logger       *log.Entry
}

// NewValidator создаёт валидатор с порогом расхождения цены в процентах.
func NewValidator(catalog domain.CatalogRepository, driftPercent float64, logger *log.Entry) *Validator {
	if logger == nil {
		logger = log.WithField("component", "cart-validator")
	}
	return &Validator{
		catalog:      catalog,
		driftPercent: driftPercent,
		logger:       logger,
	}
}

// Validate классифицирует каждую позицию корзины ровно одним исходом:
// discontinued, not_published, not_for_sale, out_of_stock, price_changed
// или ok.
func (v *Validator) Validate(ctx context.Context, cart domain.Cart) (domain.CartValidation, error) {
	result := domain.CartValidation{Valid: true}

	for _, item := range cart.Items {
		content, err := v.catalog.Get(ctx, item.ContentID)
		if err != nil {
			if errors.Is(err, domain.ErrContentNotFound) {
				result.Valid = false
				result.Issues = append(result.Issues, domain.LineIssue{
					ContentID:    item.ContentID,
					ItemID:       item.ID,
					Kind:         domain.LineIssueDiscontinued,
					RequestedQty: item.Qty,
				})
				continue
			}
			return domain.CartValidation{}, fmt.Errorf("read catalog for %s: %w", item.ContentID, err)
		}

		if issue, ok := v.classify(item, content); ok {
			result.Valid = false
			result.Issues = append(result.Issues, issue)
			continue
		}

		result.Lines = append(result.Lines, domain.ValidatedLine{
			Item:  item,
			Title: content.Title,
		})
	}

	v.logger.WithFields(log.Fields{
		"customer_id": cart.CustomerID,
		"lines":       len(cart.Items),
		"issues":      len(result.Issues),
	}).Debug("cart validated")

	return result, nil
}

func (v *Validator) classify(item domain.CartItem, content domain.Content) (domain.LineIssue, bool) {
	issue := domain.LineIssue{
		ContentID:    item.ContentID,
		ItemID:       item.ID,
		RequestedQty: item.Qty,
	}

	if !content.Published {
		issue.Kind = domain.LineIssueNotPublished
		return issue, true
	}
	if !content.ForSale {
		issue.Kind = domain.LineIssueNotForSale
		return issue, true
	}
	if content.StockQty < item.Qty {
		issue.Kind = domain.LineIssueOutOfStock
		issue.AvailableQty = content.StockQty
		return issue, true
	}
	if drift := priceDriftPercent(item.PriceMinor, content.PriceMinor); drift > v.driftPercent {
		issue.Kind = domain.LineIssuePriceChanged
		issue.OldPriceMinor = item.PriceMinor
		issue.NewPriceMinor = content.PriceMinor
		issue.PercentChange = drift
		return issue, true
	}

	return domain.LineIssue{}, false
}

// priceDriftPercent считает относительное расхождение цены каталога от
// цены, зафиксированной в корзине.
func priceDriftPercent(capturedMinor, currentMinor int64) float64 {
	if capturedMinor == currentMinor {
		return 0
	}
	if capturedMinor == 0 {
		return 100
	}
	return math.Abs(float64(currentMinor-capturedMinor)) / float64(capturedMinor) * 100
}
