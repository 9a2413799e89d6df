// Package availability decides which vehicles of a group are free for a date
// range. The same rules run at search time and inside the confirmation
// transaction.
package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

// Request identifies what the customer asked for.
type Request struct {
	GroupID    string
	LocationID string
	Range      domain.DateRange
}

// FindAvailable filters vehicles down to those of the requested group at the
// pickup location that are bookable and not held by an active booking
// overlapping the range. Active overlapping bookings with no vehicle assigned
// yet each hold back one more vehicle. A vehicle whose latest earlier active
// booking drops it off somewhere else is not at the pickup location by then
// and is skipped. The result is ordered by mileage, then ID; an empty result
// means the group is sold out.
func FindAvailable(req Request, vehicles []domain.Vehicle, bookings []domain.Booking) []domain.Vehicle {
	held := make(map[string]bool)
	previous := make(map[string]domain.Booking)
	unassigned := 0
	for _, b := range bookings {
		if b.GroupID != req.GroupID || !b.Status.IsActive() {
			continue
		}
		if !b.Range.Overlaps(req.Range) {
			if b.VehicleID != nil && !b.Range.End.After(req.Range.Start) {
				if p, ok := previous[*b.VehicleID]; !ok || b.Range.End.After(p.Range.End) {
					previous[*b.VehicleID] = b
				}
			}
			continue
		}
		if b.VehicleID == nil {
			unassigned++
			continue
		}
		held[*b.VehicleID] = true
	}

	free := make([]domain.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v.GroupID != req.GroupID || v.LocationID != req.LocationID {
			continue
		}
		if !v.Bookable() || held[v.ID] {
			continue
		}
		if p, ok := previous[v.ID]; ok {
			if loc := p.DropOffLocation(); loc != "" && loc != req.LocationID {
				continue
			}
		}
		free = append(free, v)
	}

	sort.Slice(free, func(i, j int) bool {
		if free[i].Mileage != free[j].Mileage {
			return free[i].Mileage < free[j].Mileage
		}
		return free[i].ID < free[j].ID
	})

	if unassigned >= len(free) {
		return []domain.Vehicle{}
	}
	return free[:len(free)-unassigned]
}

// Horizon widens r back to the beginning of time so a booking query also
// returns the earlier active bookings that decide where each vehicle will be
// at pickup.
func Horizon(r domain.DateRange) domain.DateRange {
	return domain.DateRange{Start: time.Time{}, End: r.End}
}

// Checker runs FindAvailable against the store.
type Checker struct {
	vehicles repository.VehicleRepository
	bookings repository.BookingRepository
}

func NewChecker(vehicles repository.VehicleRepository, bookings repository.BookingRepository) *Checker {
	return &Checker{vehicles: vehicles, bookings: bookings}
}

func (c *Checker) FindAvailable(ctx context.Context, req Request) ([]domain.Vehicle, error) {
	methodName := "Checker.FindAvailable"
	logger.EnterMethod(methodName, "groupID", req.GroupID, "locationID", req.LocationID, "range", req.Range.String())

	if err := req.Range.Validate(); err != nil {
		logger.ExitMethodWithError(methodName, err)
		return nil, err
	}

	vehicles, err := c.vehicles.ListByGroupAndLocation(ctx, req.GroupID, req.LocationID)
	if err != nil {
		logger.ExitMethodWithError(methodName, err)
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	bookings, err := c.bookings.ListActiveOverlapping(ctx, req.GroupID, Horizon(req.Range))
	if err != nil {
		logger.ExitMethodWithError(methodName, err)
		return nil, fmt.Errorf("list overlapping bookings: %w", err)
	}

	free := FindAvailable(req, vehicles, bookings)
	logger.ExitMethod(methodName, "candidates", len(vehicles), "available", len(free))
	return free, nil
}
