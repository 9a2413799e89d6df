// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockGroupRepo
type MockGroupRepo struct {
	mock.Mock
}

func (m *MockGroupRepo) GetByID(ctx context.Context, id string) (*domain.VehicleGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VehicleGroup), args.Error(1)
}
func (m *MockGroupRepo) ListActive(ctx context.Context) ([]domain.VehicleGroup, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.VehicleGroup), args.Error(1)
}

// MockLocationRepo
type MockLocationRepo struct {
	mock.Mock
}

func (m *MockLocationRepo) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Location), args.Error(1)
}
func (m *MockLocationRepo) List(ctx context.Context) ([]domain.Location, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Location), args.Error(1)
}

// MockVehicleRepo
type MockVehicleRepo struct {
	mock.Mock
}

func (m *MockVehicleRepo) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) ListByGroupAndLocation(ctx context.Context, groupID, locationID string) ([]domain.Vehicle, error) {
	args := m.Called(ctx, groupID, locationID)
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) LockByGroupAndLocation(ctx context.Context, groupID, locationID string) ([]domain.Vehicle, error) {
	args := m.Called(ctx, groupID, locationID)
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) UpdateState(ctx context.Context, id string, status domain.VehicleStatus, locationID string, mileage int64) error {
	args := m.Called(ctx, id, status, locationID, mileage)
	return args.Error(0)
}

// MockExtraRepo
type MockExtraRepo struct {
	mock.Mock
}

func (m *MockExtraRepo) List(ctx context.Context) ([]domain.Extra, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Extra), args.Error(1)
}
func (m *MockExtraRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Extra, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Extra), args.Error(1)
}

// MockDiscountRepo
type MockDiscountRepo struct {
	mock.Mock
}

func (m *MockDiscountRepo) GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DiscountCode), args.Error(1)
}
func (m *MockDiscountRepo) Redeem(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListActiveOverlapping(ctx context.Context, groupID string, rng domain.DateRange) ([]domain.Booking, error) {
	args := m.Called(ctx, groupID, rng)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) Update(ctx context.Context, b *domain.Booking, expectedVersion int) error {
	args := m.Called(ctx, b, expectedVersion)
	return args.Error(0)
}
func (m *MockBookingRepo) AppendEvent(ctx context.Context, e *domain.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
func (m *MockBookingRepo) ListEvents(ctx context.Context, bookingID string) ([]domain.Event, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.Event), args.Error(1)
}
func (m *MockBookingRepo) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.Booking, error) {
	args := m.Called(ctx, cutoff, limit)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListOverdue(ctx context.Context, today time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, today)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

// Set bundles one mock per repository.
type Set struct {
	Groups    *MockGroupRepo
	Locations *MockLocationRepo
	Vehicles  *MockVehicleRepo
	Extras    *MockExtraRepo
	Discounts *MockDiscountRepo
	Bookings  *MockBookingRepo
}

func NewSet() *Set {
	return &Set{
		Groups:    new(MockGroupRepo),
		Locations: new(MockLocationRepo),
		Vehicles:  new(MockVehicleRepo),
		Extras:    new(MockExtraRepo),
		Discounts: new(MockDiscountRepo),
		Bookings:  new(MockBookingRepo),
	}
}

func (s *Set) Repositories() repository.Repositories {
	return repository.Repositories{
		Groups:    s.Groups,
		Locations: s.Locations,
		Vehicles:  s.Vehicles,
		Extras:    s.Extras,
		Discounts: s.Discounts,
		Bookings:  s.Bookings,
	}
}

// PassthroughTx runs fn once, directly against the given repositories.
type PassthroughTx struct {
	Repos repository.Repositories
	Calls int
}

func (p *PassthroughTx) RunSerializable(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	p.Calls++
	return fn(ctx, p.Repos)
}
