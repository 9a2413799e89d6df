package service

import (
	"context"

	"github.com/shopspring/decimal"

	"rentacar-backend/internal/availability"
	"rentacar-backend/internal/domain"
)

type BookingService interface {
	Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error)
	FindAvailable(ctx context.Context, req availability.Request) ([]domain.Vehicle, error)
	Search(ctx context.Context, req SearchRequest) ([]SearchResult, error)
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, []domain.Event, error)
	ConfirmBooking(ctx context.Context, id string) (*domain.Booking, error)
	StartRental(ctx context.Context, id string, pickup domain.InspectionRecord) (*domain.Booking, error)
	CompleteRental(ctx context.Context, req CompleteRentalRequest) (*domain.Booking, error)
	CancelBooking(ctx context.Context, req CancelRequest) (*domain.Booking, error)
}

// ExtraSelection is an extra the customer picked, by catalog ID.
type ExtraSelection struct {
	ExtraID  string `json:"extra_id"`
	Quantity int    `json:"quantity"`
}

type QuoteRequest struct {
	GroupID          string
	PickupLocationID string
	ReturnLocationID string
	Range            domain.DateRange
	Extras           []ExtraSelection
	DiscountCode     string
}

// QuoteResult carries the quote, the extras as priced, and the discount
// evaluation when a code was supplied. A rejected code leaves the quote
// undiscounted.
type QuoteResult struct {
	Quote    domain.Quote               `json:"quote"`
	Extras   []domain.ExtraLineItem     `json:"extras"`
	Discount *domain.DiscountEvaluation `json:"discount,omitempty"`
}

type SearchRequest struct {
	PickupLocationID string
	ReturnLocationID string
	Range            domain.DateRange
}

// SearchResult is one vehicle group offer. Sold-out groups are listed with
// Available = 0.
type SearchResult struct {
	Group     domain.VehicleGroup `json:"group"`
	Available int                 `json:"available"`
	Quote     domain.Quote        `json:"quote"`
}

type CreateBookingRequest struct {
	QuoteRequest
	CustomerID string
}

// CompleteRentalRequest is what staff record when the vehicle comes back.
type CompleteRentalRequest struct {
	BookingID      string
	Return         domain.InspectionRecord
	FuelCharge     decimal.Decimal
	CleaningCharge decimal.Decimal
	DamageCharge   decimal.Decimal
}

type CancelRequest struct {
	BookingID string
	ActorType string
	ActorID   string
	Reason    string
}
