package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт PostgreSQL-реализацию CartRepository.
// Корзина не имеет собственной строки: она существует ровно тогда,
// когда у покупателя есть хотя бы одна позиция.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{db: store.DB()}
}

func (r *cartRepository) GetByCustomer(ctx context.Context, customerID string) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cart, err := r.loadCart(ctx, customerID)
	if err != nil {
		return domain.Cart{}, err
	}
	if len(cart.Items) == 0 {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	return cart, nil
}

func (r *cartRepository) AddItem(ctx context.Context, customerID string, item domain.CartItem) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}

	// Повторное добавление того же товара суммирует количество и
	// сохраняет цену, зафиксированную первым добавлением.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (id, customer_id, content_id, qty, price_minor, added_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (customer_id, content_id)
		DO UPDATE SET qty = cart_items.qty + EXCLUDED.qty
	`, item.ID, customerID, item.ContentID, item.Qty, item.PriceMinor, item.AddedAt)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("insert cart item: %w", err)
	}

	return r.loadCart(ctx, customerID)
}

func (r *cartRepository) UpdateItemQty(ctx context.Context, customerID, itemID string, qty int32) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_items
		SET qty = $3
		WHERE customer_id = $1 AND id = $2
	`, customerID, itemID, qty)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("update cart item qty: %w", err)
	}
	if err := requireAffected(res, domain.ErrCartItemNotFound); err != nil {
		return domain.Cart{}, err
	}

	return r.loadCart(ctx, customerID)
}

func (r *cartRepository) RemoveItem(ctx context.Context, customerID, itemID string) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE customer_id = $1 AND id = $2
	`, customerID, itemID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("delete cart item: %w", err)
	}
	if err := requireAffected(res, domain.ErrCartItemNotFound); err != nil {
		return domain.Cart{}, err
	}

	return r.loadCart(ctx, customerID)
}

func (r *cartRepository) Clear(ctx context.Context, customerID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE customer_id = $1`, customerID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *cartRepository) loadCart(ctx context.Context, customerID string) (domain.Cart, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, content_id, qty, price_minor, added_at
		FROM cart_items
		WHERE customer_id = $1
		ORDER BY added_at ASC, id ASC
	`, customerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart items: %w", err)
	}
	defer rows.Close()

	cart := domain.Cart{ID: customerID, CustomerID: customerID}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.ContentID, &item.Qty, &item.PriceMinor, &item.AddedAt); err != nil {
			return domain.Cart{}, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("iterate cart items: %w", err)
	}

	return cart, nil
}

func requireAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

var _ domain.CartRepository = (*cartRepository)(nil)
