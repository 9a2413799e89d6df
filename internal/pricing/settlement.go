package pricing

import (
	"github.com/shopspring/decimal"

	"rentacar-backend/internal/domain"
)

// SettlementInput is what staff record when a vehicle comes back, together
// with the figures taken from the confirmed quote.
type SettlementInput struct {
	QuoteTotal     decimal.Decimal
	KmIncluded     int64
	PickupMileage  int64
	ReturnMileage  int64
	FuelCharge     decimal.Decimal
	CleaningCharge decimal.Decimal
	DamageCharge   decimal.Decimal
}

// SettlementInputFor builds the input from a booking's persisted quote and its
// pickup/return records.
func SettlementInputFor(q domain.Quote, pickup, ret domain.InspectionRecord) SettlementInput {
	return SettlementInput{
		QuoteTotal:    q.Total,
		KmIncluded:    q.KmIncluded,
		PickupMileage: pickup.Mileage,
		ReturnMileage: ret.Mileage,
	}
}

// ComputeSettlement adds the return charges to the quoted total. An odometer
// reading lower at return than at pickup counts as zero km driven. The four
// charges are summed unrounded and the grand total is rounded once.
func ComputeSettlement(in SettlementInput, defaults Defaults) (domain.Settlement, error) {
	charges := []struct {
		name   string
		amount decimal.Decimal
	}{
		{"fuel", in.FuelCharge},
		{"cleaning", in.CleaningCharge},
		{"damage", in.DamageCharge},
	}
	for _, c := range charges {
		if c.amount.IsNegative() {
			return domain.Settlement{}, domain.NewValidationError(domain.ReasonNegativeCharge, "%s charge %s is negative", c.name, c.amount.String())
		}
	}

	driven := in.ReturnMileage - in.PickupMileage
	if driven < 0 {
		driven = 0
	}
	extraKm := driven - in.KmIncluded
	if extraKm < 0 {
		extraKm = 0
	}

	rate := defaults.ExtraKmRate
	if rate.IsNegative() {
		rate = decimal.Zero
	}

	adj := domain.SettlementAdjustment{
		ExtraKmCharge:  decimal.NewFromInt(extraKm).Mul(rate),
		FuelCharge:     in.FuelCharge,
		CleaningCharge: in.CleaningCharge,
		DamageCharge:   in.DamageCharge,
	}
	return domain.Settlement{
		Adjustment:    adj,
		KmDriven:      driven,
		KmIncluded:    in.KmIncluded,
		ExtraKm:       extraKm,
		OriginalTotal: in.QuoteTotal,
		FinalTotal:    domain.RoundMoney(in.QuoteTotal.Add(adj.Sum())),
	}, nil
}
