package domain

import "time"

type BookingStatus string

const (
	BookingStatusNone       BookingStatus = "none"
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// ActiveBookingStatuses are the statuses that occupy a vehicle.
var ActiveBookingStatuses = []BookingStatus{BookingStatusConfirmed, BookingStatusInProgress}

// IsActive reports whether the status blocks its vehicle for other bookings.
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusConfirmed || s == BookingStatusInProgress
}

// IsTerminal reports whether no further transition is possible.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// AllowedTransitions is the booking lifecycle as code.
var AllowedTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted},
}

func CanTransition(from, to BookingStatus) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

type FuelLevel string

const (
	FuelLevelFull          FuelLevel = "full"
	FuelLevelThreeQuarters FuelLevel = "3/4"
	FuelLevelHalf          FuelLevel = "1/2"
	FuelLevelQuarter       FuelLevel = "1/4"
	FuelLevelEmpty         FuelLevel = "empty"
)

// InspectionRecord captures odometer and fuel at pickup or return.
type InspectionRecord struct {
	Mileage    int64     `json:"mileage"`
	FuelLevel  FuelLevel `json:"fuel_level"`
	Notes      string    `json:"notes,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// WithDefaults fills optional fields: a missing fuel level is read as full.
func (r InspectionRecord) WithDefaults() InspectionRecord {
	if r.FuelLevel == "" {
		r.FuelLevel = FuelLevelFull
	}
	return r
}

// Booking is a reservation of a vehicle group. Bookings are never deleted.
type Booking struct {
	ID               string            `json:"id"`
	Reference        string            `json:"reference"`
	CustomerID       string            `json:"customer_id"`
	GroupID          string            `json:"group_id"`
	VehicleID        *string           `json:"vehicle_id,omitempty"`
	Range            DateRange         `json:"range"`
	PickupLocationID string            `json:"pickup_location_id"`
	ReturnLocationID string            `json:"return_location_id"`
	Extras           []ExtraLineItem   `json:"extras"`
	DiscountCode     *string           `json:"discount_code,omitempty"`
	Status           BookingStatus     `json:"status"`
	StatusVersion    int               `json:"status_version"`
	Quote            *Quote            `json:"quote,omitempty"`
	PickupRecord     *InspectionRecord `json:"pickup_record,omitempty"`
	ReturnRecord     *InspectionRecord `json:"return_record,omitempty"`
	Settlement       *Settlement       `json:"settlement,omitempty"`
	CancelReason     *string           `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	ConfirmedAt      *time.Time        `json:"confirmed_at,omitempty"`
	StartedAt        *time.Time        `json:"started_at,omitempty"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
	CancelledAt      *time.Time        `json:"cancelled_at,omitempty"`
}

// DifferentReturn reports whether the vehicle is dropped at another location.
func (b *Booking) DifferentReturn() bool {
	return b.PickupLocationID != b.ReturnLocationID
}

// DropOffLocation is where the vehicle ends up once the rental is over.
func (b *Booking) DropOffLocation() string {
	if b.ReturnLocationID == "" {
		return b.PickupLocationID
	}
	return b.ReturnLocationID
}

// Actor types recorded on booking events.
const (
	ActorCustomer = "customer"
	ActorStaff    = "staff"
	ActorSystem   = "system"
)

// KnownActor reports whether a is one of the actor types above.
func KnownActor(a string) bool {
	switch a {
	case ActorCustomer, ActorStaff, ActorSystem:
		return true
	}
	return false
}

// Event is an append-only audit record of a status change.
type Event struct {
	ID         int64         `json:"id"`
	BookingID  string        `json:"booking_id"`
	FromStatus BookingStatus `json:"from_status"`
	ToStatus   BookingStatus `json:"to_status"`
	ActorType  string        `json:"actor_type"`
	ActorID    *string       `json:"actor_id,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}
