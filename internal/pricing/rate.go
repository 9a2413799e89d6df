// Package pricing holds the pure calculations of the booking engine: rate
// resolution, discount evaluation, quotes and return settlements. Nothing in
// this package performs I/O or reads the clock.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"rentacar-backend/internal/domain"
)

// Defaults carries the configured fallbacks and rates the engine consumes.
type Defaults struct {
	TaxRatePercent  decimal.Decimal
	ExtraKmRate     decimal.Decimal
	DefaultKmPerDay int
}

// DefaultDefaults mirrors the product defaults: 21% tax, 0.15 per extra km,
// 150 km per day.
func DefaultDefaults() Defaults {
	return Defaults{
		TaxRatePercent:  decimal.NewFromInt(21),
		ExtraKmRate:     decimal.RequireFromString("0.15"),
		DefaultKmPerDay: 150,
	}
}

// TaxRate returns the tax rate as a fraction (21 -> 0.21).
func (d Defaults) TaxRate() decimal.Decimal {
	return d.TaxRatePercent.Div(decimal.NewFromInt(100))
}

// Rate is the resolved price basis for a group over a date range.
type Rate struct {
	DailyPrice decimal.Decimal
	KmPerDay   int
	Days       int
}

// KmIncluded is the distance allowance for the whole rental.
func (r Rate) KmIncluded() int64 {
	return int64(r.KmPerDay) * int64(r.Days)
}

// ResolveRate returns the flat daily price and km allowance of a group. There
// is no seasonal pricing: the price does not depend on which dates are booked,
// only on how many.
func ResolveRate(group domain.VehicleGroup, rng domain.DateRange, defaults Defaults) (Rate, error) {
	if err := rng.Validate(); err != nil {
		return Rate{}, err
	}
	if group.DailyPrice.IsNegative() {
		return Rate{}, fmt.Errorf("vehicle group %s has negative daily price", group.ID)
	}
	kmPerDay := group.KmPerDay
	if kmPerDay <= 0 {
		kmPerDay = defaults.DefaultKmPerDay
	}
	return Rate{
		DailyPrice: group.DailyPrice,
		KmPerDay:   kmPerDay,
		Days:       rng.Days(),
	}, nil
}
