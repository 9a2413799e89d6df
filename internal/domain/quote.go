package domain

import "github.com/shopspring/decimal"

// CurrencyPlaces is the number of minor-unit digits totals are rounded to.
const CurrencyPlaces int32 = 2

// Quote is the customer-facing price breakdown. Every field except Total is
// kept at full precision; Total is rounded once, half-up, to CurrencyPlaces.
type Quote struct {
	Days              int             `json:"days"`
	DailyPrice        decimal.Decimal `json:"daily_price"`
	BasePrice         decimal.Decimal `json:"base_price"`
	ExtrasTotal       decimal.Decimal `json:"extras_total"`
	LocationSurcharge decimal.Decimal `json:"location_surcharge"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	Total             decimal.Decimal `json:"total"`
	KmIncluded        int64           `json:"km_included"`
}

// RoundMoney rounds half-up to the currency minor unit. Amounts in the engine
// are non-negative, where decimal's half-away-from-zero equals half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// Verify re-derives the subtotal/tax/total invariant from the quote's own
// components and reports ErrInvariantViolated when any of them drifted.
func (q Quote) Verify() error {
	gross := q.BasePrice.Add(q.ExtrasTotal).Add(q.LocationSurcharge)
	if q.DiscountAmount.IsNegative() || q.DiscountAmount.GreaterThan(gross) {
		return ErrInvariantViolated
	}
	if !q.Subtotal.Equal(gross.Sub(q.DiscountAmount)) {
		return ErrInvariantViolated
	}
	if !q.TaxAmount.Equal(q.Subtotal.Mul(q.TaxRate)) {
		return ErrInvariantViolated
	}
	if !q.Total.Equal(RoundMoney(q.Subtotal.Add(q.TaxAmount))) {
		return ErrInvariantViolated
	}
	for _, v := range []decimal.Decimal{q.BasePrice, q.ExtrasTotal, q.LocationSurcharge, q.Subtotal, q.TaxAmount, q.Total} {
		if v.IsNegative() {
			return ErrInvariantViolated
		}
	}
	return nil
}

// SettlementAdjustment holds the charges added to a quote at vehicle return.
type SettlementAdjustment struct {
	ExtraKmCharge  decimal.Decimal `json:"extra_km_charge"`
	FuelCharge     decimal.Decimal `json:"fuel_charge"`
	CleaningCharge decimal.Decimal `json:"cleaning_charge"`
	DamageCharge   decimal.Decimal `json:"damage_charge"`
}

// Sum adds the four charges without rounding any of them.
func (a SettlementAdjustment) Sum() decimal.Decimal {
	return a.ExtraKmCharge.Add(a.FuelCharge).Add(a.CleaningCharge).Add(a.DamageCharge)
}

// Equal compares adjustments by value.
func (a SettlementAdjustment) Equal(b SettlementAdjustment) bool {
	return a.ExtraKmCharge.Equal(b.ExtraKmCharge) &&
		a.FuelCharge.Equal(b.FuelCharge) &&
		a.CleaningCharge.Equal(b.CleaningCharge) &&
		a.DamageCharge.Equal(b.DamageCharge)
}

// Settlement is the final invoice reconciliation produced at return.
type Settlement struct {
	Adjustment    SettlementAdjustment `json:"adjustment"`
	KmDriven      int64                `json:"km_driven"`
	KmIncluded    int64                `json:"km_included"`
	ExtraKm       int64                `json:"extra_km"`
	OriginalTotal decimal.Decimal      `json:"original_total"`
	FinalTotal    decimal.Decimal      `json:"final_total"`
}
