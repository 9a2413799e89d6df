package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rentacar-backend/internal/domain"
)

// QuoteInput is a booking draft as seen by the calculator. Extras carry the
// prices captured at selection time.
type QuoteInput struct {
	Group          domain.VehicleGroup
	Range          domain.DateRange
	PickupLocation domain.Location
	ReturnLocation domain.Location
	Extras         []domain.ExtraLineItem
	Discount       *domain.DiscountCode
	Today          time.Time
}

// ComputeQuote prices a booking draft. An invalid discount code does not fail
// the quote: the quote is computed without it and the evaluation carries the
// rejection reason. The returned quote always satisfies Quote.Verify.
func ComputeQuote(in QuoteInput, defaults Defaults) (domain.Quote, *domain.DiscountEvaluation, error) {
	rate, err := ResolveRate(in.Group, in.Range, defaults)
	if err != nil {
		return domain.Quote{}, nil, err
	}
	days := decimal.NewFromInt(int64(rate.Days))

	extrasTotal, err := ExtrasTotal(in.Extras, rate.Days)
	if err != nil {
		return domain.Quote{}, nil, err
	}

	base := rate.DailyPrice.Mul(days)
	surcharge := LocationSurcharge(in.PickupLocation, in.ReturnLocation)
	gross := base.Add(extrasTotal).Add(surcharge)

	discount := decimal.Zero
	var eval *domain.DiscountEvaluation
	if in.Discount != nil {
		ev := EvaluateDiscount(*in.Discount, DiscountContext{
			Days:                   rate.Days,
			SubtotalBeforeDiscount: gross,
			Today:                  in.Today,
		})
		eval = &ev
		if ev.Valid {
			discount = ev.Amount
		}
	}

	taxRate := defaults.TaxRate()
	subtotal := gross.Sub(discount)
	tax := subtotal.Mul(taxRate)

	q := domain.Quote{
		Days:              rate.Days,
		DailyPrice:        rate.DailyPrice,
		BasePrice:         base,
		ExtrasTotal:       extrasTotal,
		LocationSurcharge: surcharge,
		DiscountAmount:    discount,
		Subtotal:          subtotal,
		TaxRate:           taxRate,
		TaxAmount:         tax,
		Total:             domain.RoundMoney(subtotal.Add(tax)),
		KmIncluded:        rate.KmIncluded(),
	}
	if err := q.Verify(); err != nil {
		return domain.Quote{}, eval, fmt.Errorf("compute quote for group %s: %w", in.Group.ID, err)
	}
	return q, eval, nil
}

// ExtrasTotal sums the selected extras. Per-rental extras are charged once;
// the rest are charged per day.
func ExtrasTotal(extras []domain.ExtraLineItem, days int) (decimal.Decimal, error) {
	total := decimal.Zero
	d := decimal.NewFromInt(int64(days))
	for _, e := range extras {
		if e.Quantity < 1 {
			return decimal.Zero, domain.NewValidationError(domain.ReasonExtraQuantityExceeded, "extra %s: quantity must be at least 1", e.ExtraID)
		}
		if e.MaxQuantity > 0 && e.Quantity > e.MaxQuantity {
			return decimal.Zero, domain.NewValidationError(domain.ReasonExtraQuantityExceeded, "extra %s: quantity %d exceeds maximum %d", e.ExtraID, e.Quantity, e.MaxQuantity)
		}
		if e.UnitPrice.IsNegative() {
			return decimal.Zero, fmt.Errorf("extra %s has negative unit price", e.ExtraID)
		}
		line := e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
		if !e.IsPerRental {
			line = line.Mul(d)
		}
		total = total.Add(line)
	}
	return total, nil
}

// LocationSurcharge is the return location's fee for one-way rentals. It is
// zero when the locations match or the return location does not take
// one-way returns; the latter is rejected separately by CheckReturnLocation.
func LocationSurcharge(pickup, ret domain.Location) decimal.Decimal {
	if pickup.ID == ret.ID || !ret.AllowsDifferentReturn {
		return decimal.Zero
	}
	if ret.DifferentReturnFee.IsNegative() {
		return decimal.Zero
	}
	return ret.DifferentReturnFee
}

// CheckReturnLocation rejects a one-way rental to a location that only takes
// its own vehicles back.
func CheckReturnLocation(pickup, ret domain.Location) error {
	if pickup.ID != ret.ID && !ret.AllowsDifferentReturn {
		return domain.NewValidationError(domain.ReasonDifferentReturnNotAllowed, "location %s does not accept returns from %s", ret.ID, pickup.ID)
	}
	return nil
}
