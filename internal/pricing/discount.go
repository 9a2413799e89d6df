package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"rentacar-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// DiscountContext is everything a code is validated against. Today is passed
// in explicitly so evaluation is deterministic.
type DiscountContext struct {
	Days                   int
	SubtotalBeforeDiscount decimal.Decimal
	Today                  time.Time
}

// EvaluateDiscount checks the code's constraints in a fixed order and stops
// at the first failure. A valid code yields an amount between zero and the
// subtotal it is applied to.
func EvaluateDiscount(code domain.DiscountCode, dc DiscountContext) domain.DiscountEvaluation {
	reject := func(reason domain.RejectionReason) domain.DiscountEvaluation {
		return domain.DiscountEvaluation{Code: code.Code, Valid: false, Reason: reason, Amount: decimal.Zero}
	}

	today := domain.ToDate(dc.Today)
	if !code.IsActive {
		return reject(domain.ReasonInactive)
	}
	if code.ValidFrom != nil && today.Before(domain.ToDate(*code.ValidFrom)) {
		return reject(domain.ReasonNotYetValid)
	}
	if code.ValidUntil != nil && today.After(domain.ToDate(*code.ValidUntil)) {
		return reject(domain.ReasonExpired)
	}
	if code.MaxUses > 0 && code.CurrentUses >= code.MaxUses {
		return reject(domain.ReasonExhausted)
	}
	if code.MinDays != nil && dc.Days < *code.MinDays {
		return reject(domain.ReasonMinDaysNotMet)
	}
	if code.MinAmount != nil && dc.SubtotalBeforeDiscount.LessThan(*code.MinAmount) {
		return reject(domain.ReasonMinAmountNotMet)
	}

	return domain.DiscountEvaluation{
		Code:   code.Code,
		Valid:  true,
		Amount: discountAmount(code, dc.SubtotalBeforeDiscount),
	}
}

func discountAmount(code domain.DiscountCode, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	var amount decimal.Decimal
	switch code.Type {
	case domain.DiscountTypePercentage:
		amount = base.Mul(code.Value).Div(hundred)
	case domain.DiscountTypeFixed:
		amount = decimal.Min(code.Value, base)
	default:
		return decimal.Zero
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(base) {
		return base
	}
	return amount
}
