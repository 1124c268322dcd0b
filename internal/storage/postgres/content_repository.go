package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

type ContentRepository struct {
	db *sql.DB
}

// NewContentRepository создаёт PostgreSQL-реализацию каталога и остатков.
// Один репозиторий обслуживает оба порта: остаток — это колонка строки
// каталога, и резервирование должно менять её одной условной записью.
func NewContentRepository(store *Store) *ContentRepository {
	return &ContentRepository{db: store.DB()}
}

func (r *ContentRepository) Get(ctx context.Context, contentID string) (domain.Content, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var content domain.Content
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, price_minor, stock_qty, published, for_sale, updated_at
		FROM contents
		WHERE id = $1
	`, contentID).Scan(
		&content.ID, &content.Title, &content.PriceMinor,
		&content.StockQty, &content.Published, &content.ForSale, &content.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Content{}, domain.ErrContentNotFound
		}
		return domain.Content{}, fmt.Errorf("select content: %w", err)
	}

	return content, nil
}

// Reserve выполняет условный декремент остатка. UPDATE с предикатом
// stock_qty >= qty атомарен на уровне строки: двум конкурентным вызовам
// за последнюю единицу товара не достанется по единице каждому.
func (r *ContentRepository) Reserve(ctx context.Context, contentID string, qty int32) error {
	if qty <= 0 {
		return domain.ErrItemQtyInvalid
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE contents
		SET stock_qty = stock_qty - $2,
		    updated_at = NOW()
		WHERE id = $1
		  AND stock_qty >= $2
	`, contentID, qty)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for reserve: %w", err)
	}
	if affected == 0 {
		exists, err := r.contentExists(ctx, contentID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrContentNotFound
		}
		return domain.ErrInsufficientStock
	}

	return nil
}

// Release возвращает зарезервированный остаток при компенсации.
func (r *ContentRepository) Release(ctx context.Context, contentID string, qty int32) error {
	if qty <= 0 {
		return domain.ErrItemQtyInvalid
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE contents
		SET stock_qty = stock_qty + $2,
		    updated_at = NOW()
		WHERE id = $1
	`, contentID, qty)
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for release: %w", err)
	}
	if affected == 0 {
		return domain.ErrContentNotFound
	}

	return nil
}

func (r *ContentRepository) contentExists(ctx context.Context, contentID string) (bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM contents WHERE id = $1`, contentID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check content exists: %w", err)
}

var _ domain.CatalogRepository = (*ContentRepository)(nil)
var _ domain.InventoryRepository = (*ContentRepository)(nil)
