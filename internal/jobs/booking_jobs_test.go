package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentacar-backend/internal/config"
	"rentacar-backend/internal/domain"
	repomocks "rentacar-backend/internal/repository/mocks"
	"rentacar-backend/internal/service"
	svcmocks "rentacar-backend/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

const testConfig = `
server:
  port: 8080
database:
  host: localhost
  user: rentacar
  database: rentacar
`

func newRunner(t *testing.T) (*JobRunner, *repomocks.MockBookingRepo, *svcmocks.MockBookingService) {
	t.Helper()
	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)
	bookings := new(repomocks.MockBookingRepo)
	svc := new(svcmocks.MockBookingService)
	jr := NewJobRunner(bookings, svc, cfg)
	jr.clock = func() time.Time { return now }
	return jr, bookings, svc
}

func TestExpirePendingBookings(t *testing.T) {
	jr, bookings, svc := newRunner(t)
	ctx := context.Background()

	cutoff := now.Add(-60 * time.Minute)
	bookings.On("ListPendingCreatedBefore", ctx, cutoff, expireBatchSize).Return([]domain.Booking{
		{ID: "b-1"}, {ID: "b-2"}, {ID: "b-3"},
	}, nil)
	cancel := func(id string) service.CancelRequest {
		return service.CancelRequest{BookingID: id, ActorType: domain.ActorSystem, Reason: "pending booking expired"}
	}
	svc.On("CancelBooking", ctx, cancel("b-1")).Return(&domain.Booking{ID: "b-1", Status: domain.BookingStatusCancelled}, nil)
	svc.On("CancelBooking", ctx, cancel("b-2")).Return(nil, domain.ErrInvalidState)
	svc.On("CancelBooking", ctx, cancel("b-3")).Return(nil, errors.New("db down"))

	expired, err := jr.expirePendingBookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	svc.AssertExpectations(t)
}

func TestExpirePendingBookings_ListError(t *testing.T) {
	jr, bookings, _ := newRunner(t)
	bookings.On("ListPendingCreatedBefore", mock.Anything, mock.Anything, mock.Anything).Return([]domain.Booking{}, errors.New("db down"))

	_, err := jr.expirePendingBookings(context.Background())
	assert.Error(t, err)
	assert.NotPanics(t, jr.ExpirePendingBookings)
}

func TestOverdueReturns(t *testing.T) {
	jr, bookings, _ := newRunner(t)
	vid := "v-1"
	rng, _ := domain.ParseDateRange("2024-05-25", "2024-05-30")
	bookings.On("ListOverdue", mock.Anything, now).Return([]domain.Booking{
		{ID: "b-9", VehicleID: &vid, Range: rng, Status: domain.BookingStatusInProgress},
	}, nil)

	overdue, err := jr.overdueReturns(context.Background())
	require.NoError(t, err)
	assert.Len(t, overdue, 1)
}

func TestRunWithRecovery(t *testing.T) {
	jr, _, _ := newRunner(t)
	assert.NotPanics(t, func() {
		jr.runWithRecovery("boom", func() { panic("boom") })
	})
}
