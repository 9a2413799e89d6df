package service

import (
	"context"
	"sync"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/repository"
)

// memStore is an in-memory store whose transactions run one at a time, the
// observable behaviour of serializable isolation.
type memStore struct {
	txMu sync.Mutex

	mu        sync.Mutex
	groups    map[string]domain.VehicleGroup
	locations map[string]domain.Location
	vehicles  map[string]domain.Vehicle
	discounts map[string]domain.DiscountCode
	bookings  map[string]domain.Booking
	events    []domain.Event
}

func newMemStore() *memStore {
	return &memStore{
		groups:    make(map[string]domain.VehicleGroup),
		locations: make(map[string]domain.Location),
		vehicles:  make(map[string]domain.Vehicle),
		discounts: make(map[string]domain.DiscountCode),
		bookings:  make(map[string]domain.Booking),
	}
}

func (m *memStore) Repositories() repository.Repositories {
	return repository.Repositories{
		Groups:    memGroups{m},
		Locations: memLocations{m},
		Vehicles:  memVehicles{m},
		Extras:    memExtras{},
		Discounts: memDiscounts{m},
		Bookings:  memBookings{m},
	}
}

func (m *memStore) RunSerializable(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, m.Repositories())
}

type memGroups struct{ m *memStore }

func (r memGroups) GetByID(_ context.Context, id string) (*domain.VehicleGroup, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	g, ok := r.m.groups[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &g, nil
}

func (r memGroups) ListActive(context.Context) ([]domain.VehicleGroup, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.VehicleGroup
	for _, g := range r.m.groups {
		if g.IsActive {
			out = append(out, g)
		}
	}
	return out, nil
}

type memLocations struct{ m *memStore }

func (r memLocations) GetByID(_ context.Context, id string) (*domain.Location, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	l, ok := r.m.locations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (r memLocations) List(context.Context) ([]domain.Location, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Location
	for _, l := range r.m.locations {
		out = append(out, l)
	}
	return out, nil
}

type memVehicles struct{ m *memStore }

func (r memVehicles) GetByID(_ context.Context, id string) (*domain.Vehicle, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.vehicles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (r memVehicles) ListByGroupAndLocation(_ context.Context, groupID, locationID string) ([]domain.Vehicle, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Vehicle
	for _, v := range r.m.vehicles {
		if v.GroupID == groupID && v.LocationID == locationID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r memVehicles) LockByGroupAndLocation(ctx context.Context, groupID, locationID string) ([]domain.Vehicle, error) {
	return r.ListByGroupAndLocation(ctx, groupID, locationID)
}

func (r memVehicles) UpdateState(_ context.Context, id string, status domain.VehicleStatus, locationID string, mileage int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.vehicles[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.Status = status
	v.LocationID = locationID
	if mileage > v.Mileage {
		v.Mileage = mileage
	}
	r.m.vehicles[id] = v
	return nil
}

type memExtras struct{}

func (memExtras) List(context.Context) ([]domain.Extra, error) { return nil, nil }
func (memExtras) GetByIDs(context.Context, []string) ([]domain.Extra, error) {
	return nil, nil
}

type memDiscounts struct{ m *memStore }

func (r memDiscounts) GetByCode(_ context.Context, code string) (*domain.DiscountCode, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.discounts[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (r memDiscounts) Redeem(_ context.Context, code string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.discounts[code]
	if !ok || !d.IsActive || (d.MaxUses > 0 && d.CurrentUses >= d.MaxUses) {
		return false, nil
	}
	d.CurrentUses++
	r.m.discounts[code] = d
	return true, nil
}

type memBookings struct{ m *memStore }

func (r memBookings) Create(_ context.Context, b *domain.Booking) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.bookings[b.ID]; ok {
		return domain.ErrConflict
	}
	r.m.bookings[b.ID] = *b
	return nil
}

func (r memBookings) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r memBookings) GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r memBookings) ListActiveOverlapping(_ context.Context, groupID string, rng domain.DateRange) ([]domain.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Booking
	for _, b := range r.m.bookings {
		if b.GroupID == groupID && b.Status.IsActive() && b.Range.Overlaps(rng) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r memBookings) Update(_ context.Context, b *domain.Booking, expectedVersion int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.bookings[b.ID]
	if !ok || cur.StatusVersion != expectedVersion {
		return domain.ErrConflict
	}
	b.StatusVersion = expectedVersion + 1
	r.m.bookings[b.ID] = *b
	return nil
}

func (r memBookings) AppendEvent(_ context.Context, e *domain.Event) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e.ID = int64(len(r.m.events) + 1)
	r.m.events = append(r.m.events, *e)
	return nil
}

func (r memBookings) ListEvents(_ context.Context, bookingID string) ([]domain.Event, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Event
	for _, e := range r.m.events {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memBookings) ListPendingCreatedBefore(context.Context, time.Time, int) ([]domain.Booking, error) {
	return nil, nil
}

func (r memBookings) ListOverdue(context.Context, time.Time) ([]domain.Booking, error) {
	return nil, nil
}
