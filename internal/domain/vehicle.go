package domain

import "github.com/shopspring/decimal"

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "available"
	VehicleStatusRented      VehicleStatus = "rented"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusReserved    VehicleStatus = "reserved"
	VehicleStatusUnavailable VehicleStatus = "unavailable"
)

// VehicleGroup is a rental category priced and booked before a physical
// vehicle is assigned. Reference data owned by the catalog.
type VehicleGroup struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	DailyPrice decimal.Decimal `json:"daily_price"`
	KmPerDay   int             `json:"km_per_day"`
	Deposit    decimal.Decimal `json:"deposit"`
	IsActive   bool            `json:"is_active"`
}

// Vehicle is a physical unit in the fleet. Bookings reference it by ID only.
type Vehicle struct {
	ID         string        `json:"id"`
	GroupID    string        `json:"group_id"`
	LocationID string        `json:"location_id"`
	Plate      string        `json:"plate"`
	Mileage    int64         `json:"mileage"`
	Status     VehicleStatus `json:"status"`
	IsActive   bool          `json:"is_active"`
}

// Bookable reports whether the vehicle's own state allows it to be rented,
// independent of any reservation.
func (v Vehicle) Bookable() bool {
	if !v.IsActive {
		return false
	}
	switch v.Status {
	case VehicleStatusMaintenance, VehicleStatusUnavailable:
		return false
	}
	return true
}

type Location struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	AllowsDifferentReturn bool            `json:"allows_different_return"`
	DifferentReturnFee    decimal.Decimal `json:"different_return_fee"`
}

// Extra is a catalog add-on (GPS, child seat, additional driver).
type Extra struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	MaxQuantity int             `json:"max_quantity"`
	IsPerRental bool            `json:"is_per_rental"`
}

// ExtraLineItem is an extra as selected on a booking, with its price
// captured at selection time.
type ExtraLineItem struct {
	ExtraID     string          `json:"extra_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	MaxQuantity int             `json:"max_quantity"`
	IsPerRental bool            `json:"is_per_rental"`
}

// LineItem snapshots an extra at the given quantity.
func (e Extra) LineItem(quantity int) ExtraLineItem {
	return ExtraLineItem{
		ExtraID:     e.ID,
		Name:        e.Name,
		UnitPrice:   e.UnitPrice,
		Quantity:    quantity,
		MaxQuantity: e.MaxQuantity,
		IsPerRental: e.IsPerRental,
	}
}
