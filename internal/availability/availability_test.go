package availability

import (
	"context"
	"errors"
	"testing"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func rng(t *testing.T, a, b string) domain.DateRange {
	t.Helper()
	r, err := domain.ParseDateRange(a, b)
	require.NoError(t, err)
	return r
}

func fleet() []domain.Vehicle {
	return []domain.Vehicle{
		{ID: "v-3", GroupID: "eco", LocationID: "mad", Mileage: 30000, Status: domain.VehicleStatusAvailable, IsActive: true},
		{ID: "v-1", GroupID: "eco", LocationID: "mad", Mileage: 12000, Status: domain.VehicleStatusAvailable, IsActive: true},
		{ID: "v-2", GroupID: "eco", LocationID: "mad", Mileage: 12000, Status: domain.VehicleStatusRented, IsActive: true},
		{ID: "v-4", GroupID: "eco", LocationID: "mad", Mileage: 100, Status: domain.VehicleStatusMaintenance, IsActive: true},
		{ID: "v-5", GroupID: "eco", LocationID: "mad", Mileage: 200, Status: domain.VehicleStatusAvailable, IsActive: false},
		{ID: "v-6", GroupID: "eco", LocationID: "bcn", Mileage: 10, Status: domain.VehicleStatusAvailable, IsActive: true},
		{ID: "v-7", GroupID: "van", LocationID: "mad", Mileage: 10, Status: domain.VehicleStatusAvailable, IsActive: true},
		{ID: "v-8", GroupID: "eco", LocationID: "mad", Mileage: 500, Status: domain.VehicleStatusUnavailable, IsActive: true},
	}
}

func ids(vs []domain.Vehicle) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.ID)
	}
	return out
}

func TestFindAvailable(t *testing.T) {
	req := Request{GroupID: "eco", LocationID: "mad", Range: rng(t, "2024-07-10", "2024-07-15")}

	t.Run("filters state, group and location; orders by mileage then id", func(t *testing.T) {
		got := FindAvailable(req, fleet(), nil)
		assert.Equal(t, []string{"v-1", "v-2", "v-3"}, ids(got))
	})

	t.Run("active overlapping booking holds its vehicle", func(t *testing.T) {
		bookings := []domain.Booking{
			{ID: "b1", GroupID: "eco", VehicleID: strPtr("v-1"), Status: domain.BookingStatusConfirmed, Range: rng(t, "2024-07-14", "2024-07-16")},
			{ID: "b2", GroupID: "eco", VehicleID: strPtr("v-3"), Status: domain.BookingStatusInProgress, Range: rng(t, "2024-07-01", "2024-07-11")},
		}
		got := FindAvailable(req, fleet(), bookings)
		assert.Equal(t, []string{"v-2"}, ids(got))
	})

	t.Run("back-to-back bookings do not conflict", func(t *testing.T) {
		bookings := []domain.Booking{
			{ID: "b1", GroupID: "eco", VehicleID: strPtr("v-1"), Status: domain.BookingStatusConfirmed, Range: rng(t, "2024-07-15", "2024-07-20")},
			{ID: "b2", GroupID: "eco", VehicleID: strPtr("v-2"), Status: domain.BookingStatusInProgress, Range: rng(t, "2024-07-05", "2024-07-10")},
		}
		got := FindAvailable(req, fleet(), bookings)
		assert.Equal(t, []string{"v-1", "v-2", "v-3"}, ids(got))
	})

	t.Run("pending, cancelled and completed bookings are ignored", func(t *testing.T) {
		bookings := []domain.Booking{
			{ID: "b1", GroupID: "eco", VehicleID: strPtr("v-1"), Status: domain.BookingStatusPending, Range: req.Range},
			{ID: "b2", GroupID: "eco", VehicleID: strPtr("v-2"), Status: domain.BookingStatusCancelled, Range: req.Range},
			{ID: "b3", GroupID: "eco", VehicleID: strPtr("v-3"), Status: domain.BookingStatusCompleted, Range: req.Range},
		}
		assert.Len(t, FindAvailable(req, fleet(), bookings), 3)
	})

	t.Run("unassigned active bookings consume capacity", func(t *testing.T) {
		bookings := []domain.Booking{
			{ID: "b1", GroupID: "eco", Status: domain.BookingStatusConfirmed, Range: req.Range},
			{ID: "b2", GroupID: "eco", Status: domain.BookingStatusConfirmed, Range: rng(t, "2024-07-12", "2024-07-13")},
			{ID: "b3", GroupID: "eco", Status: domain.BookingStatusConfirmed, Range: rng(t, "2024-07-15", "2024-07-16")},
		}
		got := FindAvailable(req, fleet(), bookings)
		assert.Equal(t, []string{"v-1"}, ids(got))
	})

	t.Run("earlier one-way booking moves the vehicle away", func(t *testing.T) {
		bookings := []domain.Booking{
			{ID: "b1", GroupID: "eco", VehicleID: strPtr("v-1"), Status: domain.BookingStatusConfirmed,
				PickupLocationID: "mad", ReturnLocationID: "bcn", Range: rng(t, "2024-07-01", "2024-07-05")},
			{ID: "b2", GroupID: "eco", VehicleID: strPtr("v-3"), Status: domain.BookingStatusConfirmed,
				PickupLocationID: "mad", ReturnLocationID: "bcn", Range: rng(t, "2024-07-01", "2024-07-03")},
			{ID: "b3", GroupID: "eco", VehicleID: strPtr("v-3"), Status: domain.BookingStatusConfirmed,
				PickupLocationID: "bcn", ReturnLocationID: "mad", Range: rng(t, "2024-07-04", "2024-07-08")},
			{ID: "b4", GroupID: "eco", VehicleID: strPtr("v-2"), Status: domain.BookingStatusConfirmed,
				PickupLocationID: "mad", ReturnLocationID: "bcn", Range: rng(t, "2024-07-20", "2024-07-25")},
		}
		got := FindAvailable(req, fleet(), bookings)
		assert.Equal(t, []string{"v-2", "v-3"}, ids(got))
	})

	t.Run("sold out is empty, not nil", func(t *testing.T) {
		bookings := []domain.Booking{
			{ID: "b1", GroupID: "eco", Status: domain.BookingStatusConfirmed, Range: req.Range},
			{ID: "b2", GroupID: "eco", Status: domain.BookingStatusConfirmed, Range: req.Range},
			{ID: "b3", GroupID: "eco", Status: domain.BookingStatusConfirmed, Range: req.Range},
			{ID: "b4", GroupID: "eco", Status: domain.BookingStatusConfirmed, Range: req.Range},
		}
		got := FindAvailable(req, fleet(), bookings)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestFindAvailable_NoDoubleBooking(t *testing.T) {
	// Assign greedily over a sequence of requests and check no vehicle ends up
	// with two overlapping confirmed bookings.
	requests := []domain.DateRange{
		rng(t, "2024-07-01", "2024-07-05"),
		rng(t, "2024-07-03", "2024-07-08"),
		rng(t, "2024-07-05", "2024-07-06"),
		rng(t, "2024-07-04", "2024-07-05"),
		rng(t, "2024-07-02", "2024-07-09"),
		rng(t, "2024-07-08", "2024-07-10"),
	}
	var confirmed []domain.Booking
	for i, r := range requests {
		free := FindAvailable(Request{GroupID: "eco", LocationID: "mad", Range: r}, fleet(), confirmed)
		if len(free) == 0 {
			continue
		}
		vid := free[0].ID
		confirmed = append(confirmed, domain.Booking{ID: string(rune('a' + i)), GroupID: "eco", VehicleID: &vid, Status: domain.BookingStatusConfirmed, Range: r})
	}

	for i := range confirmed {
		for j := i + 1; j < len(confirmed); j++ {
			if *confirmed[i].VehicleID == *confirmed[j].VehicleID {
				assert.False(t, confirmed[i].Range.Overlaps(confirmed[j].Range), "%s and %s", confirmed[i].ID, confirmed[j].ID)
			}
		}
	}
	assert.Len(t, confirmed, 5)
}

func TestChecker_FindAvailable(t *testing.T) {
	ctx := context.Background()
	req := Request{GroupID: "eco", LocationID: "mad", Range: rng(t, "2024-07-10", "2024-07-15")}

	t.Run("Success", func(t *testing.T) {
		repos := mocks.NewSet()
		repos.Vehicles.On("ListByGroupAndLocation", ctx, "eco", "mad").Return(fleet(), nil)
		repos.Bookings.On("ListActiveOverlapping", ctx, "eco", Horizon(req.Range)).Return([]domain.Booking{
			{ID: "b1", GroupID: "eco", VehicleID: strPtr("v-2"), Status: domain.BookingStatusConfirmed, Range: req.Range},
		}, nil)

		got, err := NewChecker(repos.Vehicles, repos.Bookings).FindAvailable(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, []string{"v-1", "v-3"}, ids(got))
		repos.Vehicles.AssertExpectations(t)
		repos.Bookings.AssertExpectations(t)
	})

	t.Run("Invalid range", func(t *testing.T) {
		repos := mocks.NewSet()
		_, err := NewChecker(repos.Vehicles, repos.Bookings).FindAvailable(ctx, Request{GroupID: "eco", LocationID: "mad"})
		assert.ErrorIs(t, err, domain.Rejection(domain.ReasonInvalidDateRange))
		repos.Vehicles.AssertNotCalled(t, "ListByGroupAndLocation")
	})

	t.Run("Store failure", func(t *testing.T) {
		repos := mocks.NewSet()
		repos.Vehicles.On("ListByGroupAndLocation", ctx, "eco", "mad").Return([]domain.Vehicle{}, errors.New("connection reset"))

		_, err := NewChecker(repos.Vehicles, repos.Bookings).FindAvailable(ctx, req)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})
}
