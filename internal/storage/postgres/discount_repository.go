package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

type discountRepository struct {
	db *sql.DB
}

// NewDiscountRepository создаёт PostgreSQL-реализацию DiscountRepository.
func NewDiscountRepository(store *Store) domain.DiscountRepository {
	return &discountRepository{db: store.DB()}
}

// GetByCode ищет промокод без учёта регистра.
func (r *discountRepository) GetByCode(ctx context.Context, code string) (domain.DiscountCode, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		discount domain.DiscountCode
		kind     string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT code, type, value, valid_from, valid_to, active
		FROM discount_codes
		WHERE LOWER(code) = LOWER($1)
	`, strings.TrimSpace(code)).Scan(
		&discount.Code, &kind, &discount.Value,
		&discount.ValidFrom, &discount.ValidTo, &discount.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DiscountCode{}, domain.ErrDiscountNotFound
		}
		return domain.DiscountCode{}, fmt.Errorf("select discount code: %w", err)
	}
	discount.Type = domain.DiscountType(kind)

	return discount, nil
}

var _ domain.DiscountRepository = (*discountRepository)(nil)
