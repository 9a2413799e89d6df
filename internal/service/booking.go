package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentacar-backend/internal/availability"
	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/events"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/pricing"
	"rentacar-backend/internal/repository"
)

// Options parameterise the booking service.
type Options struct {
	Defaults           pricing.Defaults
	Currency           string
	CancellationWindow time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

type bookingService struct {
	repos     repository.Repositories
	tx        repository.TxManager
	checker   *availability.Checker
	publisher events.Publisher
	opts      Options
}

// NewBookingService wires the service. repos serves reads outside of
// transactions and may carry cached catalog repositories; every mutation runs
// through tx.
func NewBookingService(repos repository.Repositories, tx repository.TxManager, publisher events.Publisher, opts Options) BookingService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &bookingService{
		repos:     repos,
		tx:        tx,
		checker:   availability.NewChecker(repos.Vehicles, repos.Bookings),
		publisher: publisher,
		opts:      opts,
	}
}

func (s *bookingService) now() time.Time {
	return s.opts.Clock().UTC()
}

// NormalizeDiscountCode upper-cases and trims a customer-entered code.
func NormalizeDiscountCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *bookingService) Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	methodName := "bookingService.Quote"
	logger.EnterMethod(methodName, "groupID", req.GroupID, "range", req.Range.String())

	if err := req.Range.Validate(); err != nil {
		logger.ExitMethodWithError(methodName, err)
		return nil, err
	}
	in, err := s.quoteInput(ctx, s.repos, req.GroupID, req.PickupLocationID, req.ReturnLocationID, req.Range)
	if err != nil {
		logger.ExitMethodWithError(methodName, err)
		return nil, err
	}
	in.Extras, err = resolveExtras(ctx, s.repos.Extras, req.Extras)
	if err != nil {
		logger.ExitMethodWithError(methodName, err)
		return nil, err
	}

	var unknown *domain.DiscountEvaluation
	if code := NormalizeDiscountCode(req.DiscountCode); code != "" {
		in.Discount, err = lookupDiscount(ctx, s.repos.Discounts, code)
		if errors.Is(err, domain.ErrNotFound) {
			unknown = &domain.DiscountEvaluation{Code: code, Reason: domain.ReasonUnknownDiscount}
		} else if err != nil {
			logger.ExitMethodWithError(methodName, err)
			return nil, err
		}
	}

	q, eval, err := pricing.ComputeQuote(in, s.opts.Defaults)
	if err != nil {
		logger.ExitMethodWithError(methodName, err)
		return nil, err
	}
	if unknown != nil {
		eval = unknown
	}

	logger.ExitMethod(methodName, "total", q.Total.String())
	return &QuoteResult{Quote: q, Extras: in.Extras, Discount: eval}, nil
}

func (s *bookingService) FindAvailable(ctx context.Context, req availability.Request) ([]domain.Vehicle, error) {
	return s.checker.FindAvailable(ctx, req)
}

func (s *bookingService) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	methodName := "bookingService.Search"
	logger.EnterMethod(methodName, "pickup", req.PickupLocationID, "range", req.Range.String())

	if err := req.Range.Validate(); err != nil {
		logger.ExitMethodWithError(methodName, err)
		return nil, err
	}
	groups, err := s.repos.Groups.ListActive(ctx)
	if err != nil {
		logger.ExitMethodWithError(methodName, err)
		return nil, fmt.Errorf("list vehicle groups: %w", err)
	}
	pickup, ret, err := s.locations(ctx, s.repos, req.PickupLocationID, req.ReturnLocationID)
	if err != nil {
		logger.ExitMethodWithError(methodName, err)
		return nil, err
	}

	results := make([]SearchResult, 0, len(groups))
	for _, g := range groups {
		free, err := s.checker.FindAvailable(ctx, availability.Request{GroupID: g.ID, LocationID: pickup.ID, Range: req.Range})
		if err != nil {
			logger.ExitMethodWithError(methodName, err)
			return nil, err
		}
		q, _, err := pricing.ComputeQuote(pricing.QuoteInput{
			Group:          g,
			Range:          req.Range,
			PickupLocation: *pickup,
			ReturnLocation: *ret,
			Today:          s.now(),
		}, s.opts.Defaults)
		if err != nil {
			logger.ExitMethodWithError(methodName, err)
			return nil, err
		}
		results = append(results, SearchResult{Group: g, Available: len(free), Quote: q})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Quote.Total.LessThan(results[j].Quote.Total)
	})

	logger.ExitMethod(methodName, "groups", len(results))
	return results, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	methodName := "bookingService.CreateBooking"
	logger.EnterMethod(methodName, "customerID", req.CustomerID, "groupID", req.GroupID, "range", req.Range.String())

	b, err := s.createBooking(ctx, req)
	if err != nil {
		logger.ExitMethodWithError(methodName, err)
		return nil, err
	}

	logger.BookingTransition(b.ID, string(domain.BookingStatusNone), string(b.Status), "reference", b.Reference)
	s.publish(ctx, events.TypeBookingCreated, b)
	logger.ExitMethod(methodName, "bookingID", b.ID)
	return b, nil
}

func (s *bookingService) createBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if strings.TrimSpace(req.CustomerID) == "" {
		return nil, domain.NewValidationError(domain.ReasonMissingField, "customer_id is required")
	}
	if err := req.Range.Validate(); err != nil {
		return nil, err
	}

	var b *domain.Booking
	err := s.tx.RunSerializable(ctx, func(ctx context.Context, repos repository.Repositories) error {
		in, err := s.quoteInput(ctx, repos, req.GroupID, req.PickupLocationID, req.ReturnLocationID, req.Range)
		if err != nil {
			return err
		}
		if err := pricing.CheckReturnLocation(in.PickupLocation, in.ReturnLocation); err != nil {
			return err
		}
		in.Extras, err = resolveExtras(ctx, repos.Extras, req.Extras)
		if err != nil {
			return err
		}

		var code *string
		if c := NormalizeDiscountCode(req.DiscountCode); c != "" {
			in.Discount, err = lookupDiscount(ctx, repos.Discounts, c)
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewValidationError(domain.ReasonUnknownDiscount, "discount code %q", c)
			}
			if err != nil {
				return err
			}
			code = &c
		}

		q, eval, err := pricing.ComputeQuote(in, s.opts.Defaults)
		if err != nil {
			return err
		}
		if eval != nil {
			if err := eval.Err(); err != nil {
				return err
			}
		}

		now := s.now()
		b = &domain.Booking{
			ID:               uuid.NewString(),
			Reference:        newReference(),
			CustomerID:       req.CustomerID,
			GroupID:          in.Group.ID,
			Range:            req.Range,
			PickupLocationID: in.PickupLocation.ID,
			ReturnLocationID: in.ReturnLocation.ID,
			Extras:           in.Extras,
			DiscountCode:     code,
			Status:           domain.BookingStatusPending,
			Quote:            &q,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := repos.Bookings.Create(ctx, b); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		return repos.Bookings.AppendEvent(ctx, &domain.Event{
			BookingID:  b.ID,
			FromStatus: domain.BookingStatusNone,
			ToStatus:   domain.BookingStatusPending,
			ActorType:  domain.ActorCustomer,
			ActorID:    &req.CustomerID,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, []domain.Event, error) {
	b, err := s.repos.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	evs, err := s.repos.Bookings.ListEvents(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return b, evs, nil
}

// ConfirmBooking re-checks availability, assigns a vehicle, redeems the
// discount code and persists the final quote in one serializable
// transaction. domain.ErrConflict means the group sold out in the meantime
// and the customer has to start over.
func (s *bookingService) ConfirmBooking(ctx context.Context, id string) (*domain.Booking, error) {
	methodName := "bookingService.ConfirmBooking"
	logger.EnterMethod(methodName, "bookingID", id)

	var confirmed *domain.Booking
	err := s.tx.RunSerializable(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, err := repos.Bookings.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !domain.CanTransition(b.Status, domain.BookingStatusConfirmed) {
			return fmt.Errorf("confirm booking in status %s: %w", b.Status, domain.ErrInvalidState)
		}

		in, err := s.quoteInput(ctx, repos, b.GroupID, b.PickupLocationID, b.ReturnLocationID, b.Range)
		if err != nil {
			return err
		}
		in.Extras = b.Extras

		vehicles, err := repos.Vehicles.LockByGroupAndLocation(ctx, b.GroupID, b.PickupLocationID)
		if err != nil {
			return fmt.Errorf("lock vehicles: %w", err)
		}
		overlapping, err := repos.Bookings.ListActiveOverlapping(ctx, b.GroupID, availability.Horizon(b.Range))
		if err != nil {
			return fmt.Errorf("list overlapping bookings: %w", err)
		}
		free := availability.FindAvailable(availability.Request{
			GroupID:    b.GroupID,
			LocationID: b.PickupLocationID,
			Range:      b.Range,
		}, vehicles, overlapping)
		if len(free) == 0 {
			return fmt.Errorf("group %s for %s: %w", b.GroupID, b.Range, domain.ErrConflict)
		}

		if b.DiscountCode != nil {
			in.Discount, err = lookupDiscount(ctx, repos.Discounts, *b.DiscountCode)
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewValidationError(domain.ReasonUnknownDiscount, "discount code %q", *b.DiscountCode)
			}
			if err != nil {
				return err
			}
		}

		q, eval, err := pricing.ComputeQuote(in, s.opts.Defaults)
		if err != nil {
			return err
		}
		if eval != nil {
			if err := eval.Err(); err != nil {
				return err
			}
			ok, err := repos.Discounts.Redeem(ctx, *b.DiscountCode)
			if err != nil {
				return fmt.Errorf("redeem discount code: %w", err)
			}
			if !ok {
				return domain.NewValidationError(domain.ReasonExhausted, "discount code %q", *b.DiscountCode)
			}
		}

		now := s.now()
		expected := b.StatusVersion
		vehicleID := free[0].ID
		b.VehicleID = &vehicleID
		b.Quote = &q
		b.Status = domain.BookingStatusConfirmed
		b.ConfirmedAt = &now
		b.UpdatedAt = now
		if err := repos.Bookings.Update(ctx, b, expected); err != nil {
			return err
		}
		if err := repos.Bookings.AppendEvent(ctx, &domain.Event{
			BookingID:  b.ID,
			FromStatus: domain.BookingStatusPending,
			ToStatus:   domain.BookingStatusConfirmed,
			ActorType:  domain.ActorCustomer,
			ActorID:    &b.CustomerID,
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		confirmed = b
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError(methodName, err, "bookingID", id)
		return nil, err
	}

	logger.BookingTransition(confirmed.ID, string(domain.BookingStatusPending), string(confirmed.Status),
		"vehicleID", *confirmed.VehicleID, "total", confirmed.Quote.Total.String())
	s.publish(ctx, events.TypeBookingConfirmed, confirmed)
	logger.ExitMethod(methodName, "bookingID", id)
	return confirmed, nil
}

func (s *bookingService) StartRental(ctx context.Context, id string, pickup domain.InspectionRecord) (*domain.Booking, error) {
	methodName := "bookingService.StartRental"
	logger.EnterMethod(methodName, "bookingID", id, "mileage", pickup.Mileage)

	if pickup.Mileage < 0 {
		err := domain.NewValidationError(domain.ReasonInvalidMileage, "pickup mileage %d", pickup.Mileage)
		logger.ExitMethodWithError(methodName, err)
		return nil, err
	}

	var started *domain.Booking
	err := s.tx.RunSerializable(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, err := repos.Bookings.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !domain.CanTransition(b.Status, domain.BookingStatusInProgress) || b.VehicleID == nil {
			return fmt.Errorf("start rental in status %s: %w", b.Status, domain.ErrInvalidState)
		}

		now := s.now()
		rec := pickup.WithDefaults()
		if rec.RecordedAt.IsZero() {
			rec.RecordedAt = now
		}
		expected := b.StatusVersion
		b.PickupRecord = &rec
		b.Status = domain.BookingStatusInProgress
		b.StartedAt = &now
		b.UpdatedAt = now
		if err := repos.Bookings.Update(ctx, b, expected); err != nil {
			return err
		}
		if err := repos.Vehicles.UpdateState(ctx, *b.VehicleID, domain.VehicleStatusRented, b.PickupLocationID, rec.Mileage); err != nil {
			return fmt.Errorf("mark vehicle rented: %w", err)
		}
		if err := repos.Bookings.AppendEvent(ctx, &domain.Event{
			BookingID:  b.ID,
			FromStatus: domain.BookingStatusConfirmed,
			ToStatus:   domain.BookingStatusInProgress,
			ActorType:  domain.ActorStaff,
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		started = b
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError(methodName, err, "bookingID", id)
		return nil, err
	}

	logger.BookingTransition(started.ID, string(domain.BookingStatusConfirmed), string(started.Status), "vehicleID", *started.VehicleID)
	s.publish(ctx, events.TypeRentalStarted, started)
	logger.ExitMethod(methodName, "bookingID", id)
	return started, nil
}

// CompleteRental records the return and settles the rental. Repeating the
// call with the same figures returns the booking unchanged; different figures
// are rejected, settlements are never amended.
func (s *bookingService) CompleteRental(ctx context.Context, req CompleteRentalRequest) (*domain.Booking, error) {
	methodName := "bookingService.CompleteRental"
	logger.EnterMethod(methodName, "bookingID", req.BookingID, "mileage", req.Return.Mileage)

	if req.Return.Mileage < 0 {
		err := domain.NewValidationError(domain.ReasonInvalidMileage, "return mileage %d", req.Return.Mileage)
		logger.ExitMethodWithError(methodName, err)
		return nil, err
	}

	var (
		completed *domain.Booking
		replayed  bool
	)
	err := s.tx.RunSerializable(ctx, func(ctx context.Context, repos repository.Repositories) error {
		replayed = false
		b, err := repos.Bookings.GetByIDForUpdate(ctx, req.BookingID)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingStatusInProgress && b.Status != domain.BookingStatusCompleted {
			return fmt.Errorf("complete rental in status %s: %w", b.Status, domain.ErrInvalidState)
		}
		if b.Quote == nil || b.PickupRecord == nil || b.VehicleID == nil {
			return fmt.Errorf("booking %s has no quote or pickup record: %w", b.ID, domain.ErrInvalidState)
		}

		rec := req.Return.WithDefaults()
		in := pricing.SettlementInputFor(*b.Quote, *b.PickupRecord, rec)
		in.FuelCharge = req.FuelCharge
		in.CleaningCharge = req.CleaningCharge
		in.DamageCharge = req.DamageCharge
		settlement, err := pricing.ComputeSettlement(in, s.opts.Defaults)
		if err != nil {
			return err
		}

		if b.Status == domain.BookingStatusCompleted && b.Settlement != nil {
			if sameSettlement(*b.Settlement, settlement) {
				completed, replayed = b, true
				return nil
			}
			return domain.NewValidationError(domain.ReasonSettlementAmendment, "booking %s already settled at %s", b.ID, b.Settlement.FinalTotal.String())
		}

		now := s.now()
		if rec.RecordedAt.IsZero() {
			rec.RecordedAt = now
		}
		expected := b.StatusVersion
		b.ReturnRecord = &rec
		b.Settlement = &settlement
		b.Status = domain.BookingStatusCompleted
		b.CompletedAt = &now
		b.UpdatedAt = now
		if err := repos.Bookings.Update(ctx, b, expected); err != nil {
			return err
		}
		if err := repos.Vehicles.UpdateState(ctx, *b.VehicleID, domain.VehicleStatusAvailable, b.ReturnLocationID, rec.Mileage); err != nil {
			return fmt.Errorf("release vehicle: %w", err)
		}
		if err := repos.Bookings.AppendEvent(ctx, &domain.Event{
			BookingID:  b.ID,
			FromStatus: domain.BookingStatusInProgress,
			ToStatus:   domain.BookingStatusCompleted,
			ActorType:  domain.ActorStaff,
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		completed = b
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError(methodName, err, "bookingID", req.BookingID)
		return nil, err
	}
	if replayed {
		logger.ExitMethod(methodName, "bookingID", req.BookingID, "replayed", true)
		return completed, nil
	}

	logger.BookingTransition(completed.ID, string(domain.BookingStatusInProgress), string(completed.Status),
		"finalTotal", completed.Settlement.FinalTotal.String())
	s.publish(ctx, events.TypeRentalCompleted, completed)
	logger.ExitMethod(methodName, "bookingID", req.BookingID)
	return completed, nil
}

func sameSettlement(a, b domain.Settlement) bool {
	return a.Adjustment.Equal(b.Adjustment) &&
		a.KmDriven == b.KmDriven &&
		a.FinalTotal.Equal(b.FinalTotal)
}

// CancelBooking cancels a pending or confirmed booking. Customers may cancel a
// confirmed booking only while more than the cancellation window remains
// before pickup; staff and the system are not bound by the window.
func (s *bookingService) CancelBooking(ctx context.Context, req CancelRequest) (*domain.Booking, error) {
	methodName := "bookingService.CancelBooking"
	logger.EnterMethod(methodName, "bookingID", req.BookingID, "actor", req.ActorType)

	actor := req.ActorType
	if actor == "" {
		actor = domain.ActorCustomer
	}
	if !domain.KnownActor(actor) {
		err := domain.NewValidationError(domain.ReasonInvalidActor, "actor type %q", actor)
		logger.ExitMethodWithError(methodName, err)
		return nil, err
	}

	var (
		cancelled *domain.Booking
		from      domain.BookingStatus
	)
	err := s.tx.RunSerializable(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, err := repos.Bookings.GetByIDForUpdate(ctx, req.BookingID)
		if err != nil {
			return err
		}
		if !domain.CanTransition(b.Status, domain.BookingStatusCancelled) {
			return fmt.Errorf("cancel booking in status %s: %w", b.Status, domain.ErrInvalidState)
		}

		now := s.now()
		if actor == domain.ActorCustomer && b.Status == domain.BookingStatusConfirmed &&
			!now.Add(s.opts.CancellationWindow).Before(b.Range.Start) {
			return domain.NewValidationError(domain.ReasonCancellationWindowPassed, "pickup on %s", b.Range.Start.Format(domain.DateLayout))
		}

		from = b.Status
		expected := b.StatusVersion
		b.Status = domain.BookingStatusCancelled
		b.CancelledAt = &now
		b.UpdatedAt = now
		if req.Reason != "" {
			reason := req.Reason
			b.CancelReason = &reason
		}
		if err := repos.Bookings.Update(ctx, b, expected); err != nil {
			return err
		}
		ev := &domain.Event{
			BookingID:  b.ID,
			FromStatus: from,
			ToStatus:   domain.BookingStatusCancelled,
			ActorType:  actor,
			CreatedAt:  now,
		}
		if req.ActorID != "" {
			actorID := req.ActorID
			ev.ActorID = &actorID
		}
		if err := repos.Bookings.AppendEvent(ctx, ev); err != nil {
			return err
		}
		cancelled = b
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError(methodName, err, "bookingID", req.BookingID)
		return nil, err
	}

	logger.BookingTransition(cancelled.ID, string(from), string(cancelled.Status), "actor", actor)
	s.publish(ctx, events.TypeBookingCancelled, cancelled)
	logger.ExitMethod(methodName, "bookingID", req.BookingID)
	return cancelled, nil
}

// quoteInput loads the group and both locations of a booking draft.
func (s *bookingService) quoteInput(ctx context.Context, repos repository.Repositories, groupID, pickupID, returnID string, rng domain.DateRange) (pricing.QuoteInput, error) {
	group, err := repos.Groups.GetByID(ctx, groupID)
	if errors.Is(err, domain.ErrNotFound) {
		return pricing.QuoteInput{}, domain.NewValidationError(domain.ReasonGroupUnavailable, "vehicle group %s", groupID)
	}
	if err != nil {
		return pricing.QuoteInput{}, fmt.Errorf("get vehicle group: %w", err)
	}
	if !group.IsActive {
		return pricing.QuoteInput{}, domain.NewValidationError(domain.ReasonGroupUnavailable, "vehicle group %s is inactive", groupID)
	}
	pickup, ret, err := s.locations(ctx, repos, pickupID, returnID)
	if err != nil {
		return pricing.QuoteInput{}, err
	}
	return pricing.QuoteInput{
		Group:          *group,
		Range:          rng,
		PickupLocation: *pickup,
		ReturnLocation: *ret,
		Today:          s.now(),
	}, nil
}

// locations resolves pickup and return; an empty return ID means a round trip.
func (s *bookingService) locations(ctx context.Context, repos repository.Repositories, pickupID, returnID string) (*domain.Location, *domain.Location, error) {
	if pickupID == "" {
		return nil, nil, domain.NewValidationError(domain.ReasonMissingField, "pickup_location_id is required")
	}
	pickup, err := repos.Locations.GetByID(ctx, pickupID)
	if err != nil {
		return nil, nil, fmt.Errorf("get pickup location %s: %w", pickupID, err)
	}
	if returnID == "" || returnID == pickupID {
		return pickup, pickup, nil
	}
	ret, err := repos.Locations.GetByID(ctx, returnID)
	if err != nil {
		return nil, nil, fmt.Errorf("get return location %s: %w", returnID, err)
	}
	return pickup, ret, nil
}

// resolveExtras prices the selection from the catalog. Repeated IDs are
// merged into one line.
func resolveExtras(ctx context.Context, extras repository.ExtraRepository, selections []ExtraSelection) ([]domain.ExtraLineItem, error) {
	if len(selections) == 0 {
		return []domain.ExtraLineItem{}, nil
	}
	var ids []string
	quantities := make(map[string]int)
	for _, sel := range selections {
		if _, seen := quantities[sel.ExtraID]; !seen {
			ids = append(ids, sel.ExtraID)
		}
		quantities[sel.ExtraID] += sel.Quantity
	}

	catalog, err := extras.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get extras: %w", err)
	}
	byID := make(map[string]domain.Extra, len(catalog))
	for _, e := range catalog {
		byID[e.ID] = e
	}

	items := make([]domain.ExtraLineItem, 0, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			return nil, domain.NewValidationError(domain.ReasonUnknownExtra, "extra %s", id)
		}
		items = append(items, e.LineItem(quantities[id]))
	}
	return items, nil
}

func lookupDiscount(ctx context.Context, discounts repository.DiscountRepository, code string) (*domain.DiscountCode, error) {
	dc, err := discounts.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get discount code: %w", err)
	}
	return dc, nil
}

// newReference returns the customer-facing booking reference.
func newReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "RC-" + strings.ToUpper(id[:10])
}

// publish sends a lifecycle event after commit. Delivery failures are logged
// and do not undo the transition.
func (s *bookingService) publish(ctx context.Context, t events.Type, b *domain.Booking) {
	e := events.NewBookingEvent(t, b, s.opts.Currency, s.now())
	if err := s.publisher.Publish(ctx, e); err != nil {
		logger.Warn("Failed to publish booking event", "type", t, "bookingID", b.ID, "error", err)
	}
}
