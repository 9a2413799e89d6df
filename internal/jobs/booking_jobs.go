package jobs

import (
	"context"
	"errors"
	"fmt"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/service"
)

// expireBatchSize bounds how many pending bookings one run cancels.
const expireBatchSize = 500

// ExpirePendingBookings cancels pending bookings that were never confirmed
// within the configured TTL.
func (jr *JobRunner) ExpirePendingBookings() {
	jr.runWithRecovery("ExpirePendingBookings", func() {
		expired, err := jr.expirePendingBookings(context.Background())
		if err != nil {
			logger.Error("Failed to expire pending bookings", "error", err)
			return
		}
		logger.Info("Expired pending bookings", "count", expired)
	})
}

func (jr *JobRunner) expirePendingBookings(ctx context.Context) (int, error) {
	cutoff := jr.clock().UTC().Add(-jr.config.Booking.PendingTTL())
	pending, err := jr.bookings.ListPendingCreatedBefore(ctx, cutoff, expireBatchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending bookings: %w", err)
	}

	expired := 0
	for _, b := range pending {
		_, err := jr.service.CancelBooking(ctx, service.CancelRequest{
			BookingID: b.ID,
			ActorType: domain.ActorSystem,
			Reason:    "pending booking expired",
		})
		switch {
		case err == nil:
			expired++
		case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrConflict):
			// confirmed or cancelled since it was listed
			logger.Debug("Skipped pending booking", "booking_id", b.ID, "error", err)
		default:
			logger.Error("Failed to expire booking", "booking_id", b.ID, "error", err)
		}
	}
	return expired, nil
}

// ReportOverdueReturns logs in-progress rentals whose return date has passed.
func (jr *JobRunner) ReportOverdueReturns() {
	jr.runWithRecovery("ReportOverdueReturns", func() {
		overdue, err := jr.overdueReturns(context.Background())
		if err != nil {
			logger.Error("Failed to list overdue returns", "error", err)
			return
		}
		logger.Info("Overdue returns", "count", len(overdue))
	})
}

func (jr *JobRunner) overdueReturns(ctx context.Context) ([]domain.Booking, error) {
	overdue, err := jr.bookings.ListOverdue(ctx, jr.clock())
	if err != nil {
		return nil, err
	}
	for _, b := range overdue {
		vehicleID := ""
		if b.VehicleID != nil {
			vehicleID = *b.VehicleID
		}
		logger.Warn("Rental overdue",
			"booking_id", b.ID,
			"reference", b.Reference,
			"vehicle_id", vehicleID,
			"return_date", b.Range.End.Format(domain.DateLayout),
			"return_location_id", b.ReturnLocationID)
	}
	return overdue, nil
}
