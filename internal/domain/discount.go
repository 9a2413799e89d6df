package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// DiscountCode is a promotional code. MaxUses of 0 means unlimited.
type DiscountCode struct {
	Code        string           `json:"code"`
	Type        DiscountType     `json:"type"`
	Value       decimal.Decimal  `json:"value"`
	MinDays     *int             `json:"min_days,omitempty"`
	MinAmount   *decimal.Decimal `json:"min_amount,omitempty"`
	MaxUses     int              `json:"max_uses"`
	CurrentUses int              `json:"current_uses"`
	ValidFrom   *time.Time       `json:"valid_from,omitempty"`
	ValidUntil  *time.Time       `json:"valid_until,omitempty"`
	IsActive    bool             `json:"is_active"`
}

// DiscountEvaluation is the outcome of checking a code against a booking.
type DiscountEvaluation struct {
	Code   string          `json:"code"`
	Valid  bool            `json:"valid"`
	Reason RejectionReason `json:"reason,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// Err converts a failed evaluation into a ValidationError.
func (e DiscountEvaluation) Err() error {
	if e.Valid {
		return nil
	}
	return NewValidationError(e.Reason, "discount code %q rejected", e.Code)
}
