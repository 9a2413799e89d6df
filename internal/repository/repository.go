package repository

import (
	"context"
	"time"

	"rentacar-backend/internal/domain"
)

type GroupRepository interface {
	GetByID(ctx context.Context, id string) (*domain.VehicleGroup, error)
	ListActive(ctx context.Context) ([]domain.VehicleGroup, error)
}

type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Location, error)
	List(ctx context.Context) ([]domain.Location, error)
}

type VehicleRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	ListByGroupAndLocation(ctx context.Context, groupID, locationID string) ([]domain.Vehicle, error)
	// LockByGroupAndLocation is ListByGroupAndLocation holding row locks until
	// the surrounding transaction ends.
	LockByGroupAndLocation(ctx context.Context, groupID, locationID string) ([]domain.Vehicle, error)
	UpdateState(ctx context.Context, id string, status domain.VehicleStatus, locationID string, mileage int64) error
}

type ExtraRepository interface {
	List(ctx context.Context) ([]domain.Extra, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Extra, error)
}

type DiscountRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error)
	// Redeem increments current_uses only while the code is active and under
	// its cap. It reports false when no use was left.
	Redeem(ctx context.Context, code string) (bool, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error)
	// ListActiveOverlapping returns confirmed and in-progress bookings of the
	// group with start < rng.End and end > rng.Start.
	ListActiveOverlapping(ctx context.Context, groupID string, rng domain.DateRange) ([]domain.Booking, error)
	// Update persists b if its status_version still equals expectedVersion and
	// bumps the version. A stale version yields domain.ErrConflict.
	Update(ctx context.Context, b *domain.Booking, expectedVersion int) error
	AppendEvent(ctx context.Context, e *domain.Event) error
	ListEvents(ctx context.Context, bookingID string) ([]domain.Event, error)
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.Booking, error)
	ListOverdue(ctx context.Context, today time.Time) ([]domain.Booking, error)
}

// Repositories is one consistent view of the store: either the connection
// pool or a single transaction.
type Repositories struct {
	Groups    GroupRepository
	Locations LocationRepository
	Vehicles  VehicleRepository
	Extras    ExtraRepository
	Discounts DiscountRepository
	Bookings  BookingRepository
}

type TxManager interface {
	// RunSerializable runs fn in a serializable transaction. Serialization
	// failures and deadlocks re-run fn up to the configured number of
	// attempts; exhausting them yields domain.ErrConflict.
	RunSerializable(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
