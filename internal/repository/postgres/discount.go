package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type discountRepository struct {
	db DBTX
}

func NewDiscountRepository(db DBTX) repository.DiscountRepository {
	return &discountRepository{db: db}
}

func (r *discountRepository) GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	logger.EnterMethod("discountRepository.GetByCode", "code", code)

	query := `
		SELECT code, type, value, min_days, min_amount, max_uses, current_uses,
		       valid_from, valid_until, is_active
		FROM discount_codes WHERE code = $1
	`
	var (
		d          domain.DiscountCode
		minDays    sql.NullInt32
		minAmount  decimal.NullDecimal
		validFrom  sql.NullTime
		validUntil sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&d.Code, &d.Type, &d.Value, &minDays, &minAmount, &d.MaxUses, &d.CurrentUses,
		&validFrom, &validUntil, &d.IsActive,
	)
	if err != nil {
		logger.ExitMethodWithError("discountRepository.GetByCode", err, "code", code)
		return nil, notFound(err, "discount code", code)
	}

	if minDays.Valid {
		v := int(minDays.Int32)
		d.MinDays = &v
	}
	if minAmount.Valid {
		d.MinAmount = &minAmount.Decimal
	}
	if validFrom.Valid {
		d.ValidFrom = &validFrom.Time
	}
	if validUntil.Valid {
		d.ValidUntil = &validUntil.Time
	}

	logger.ExitMethod("discountRepository.GetByCode", "code", code)
	return &d, nil
}

// Redeem is the atomic check-then-increment: the max_uses guard and the
// increment are one statement, so concurrent redemptions cannot overshoot.
func (r *discountRepository) Redeem(ctx context.Context, code string) (bool, error) {
	query := `
		UPDATE discount_codes
		SET current_uses = current_uses + 1, updated_at = $2
		WHERE code = $1 AND is_active AND (max_uses = 0 OR current_uses < max_uses)
	`
	logger.DatabaseCall("discount_codes.Redeem", query, "code", code)

	res, err := r.db.ExecContext(ctx, query, code, time.Now().UTC())
	if err != nil {
		logger.DatabaseResult("discount_codes.Redeem", 0, err)
		return false, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("discount_codes.Redeem", n, err)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
