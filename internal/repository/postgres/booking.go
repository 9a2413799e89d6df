package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"

	"github.com/lib/pq"
)

type bookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `
	id, reference, customer_id, group_id, vehicle_id, pickup_date, return_date,
	pickup_location_id, return_location_id, extras, discount_code, status, status_version,
	quote, pickup_record, return_record, settlement, cancel_reason,
	created_at, updated_at, confirmed_at, started_at, completed_at, cancelled_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b                                  domain.Booking
		vehicleID, discountCode, cancel    sql.NullString
		start, end                         time.Time
		extras, quote, pickup, ret, settle []byte
		confirmedAt, startedAt             sql.NullTime
		completedAt, cancelledAt           sql.NullTime
	)
	err := row.Scan(
		&b.ID, &b.Reference, &b.CustomerID, &b.GroupID, &vehicleID, &start, &end,
		&b.PickupLocationID, &b.ReturnLocationID, &extras, &discountCode, &b.Status, &b.StatusVersion,
		&quote, &pickup, &ret, &settle, &cancel,
		&b.CreatedAt, &b.UpdatedAt, &confirmedAt, &startedAt, &completedAt, &cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	rng, err := domain.NewDateRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	b.Range = rng
	b.VehicleID = nullString(vehicleID)
	b.DiscountCode = nullString(discountCode)
	b.CancelReason = nullString(cancel)
	b.ConfirmedAt = nullTime(confirmedAt)
	b.StartedAt = nullTime(startedAt)
	b.CompletedAt = nullTime(completedAt)
	b.CancelledAt = nullTime(cancelledAt)

	if len(extras) > 0 {
		if err := json.Unmarshal(extras, &b.Extras); err != nil {
			return nil, fmt.Errorf("booking %s extras: %w", b.ID, err)
		}
	}
	if b.Quote, err = scanJSON[domain.Quote](quote); err != nil {
		return nil, fmt.Errorf("booking %s quote: %w", b.ID, err)
	}
	if b.PickupRecord, err = scanJSON[domain.InspectionRecord](pickup); err != nil {
		return nil, fmt.Errorf("booking %s pickup record: %w", b.ID, err)
	}
	if b.ReturnRecord, err = scanJSON[domain.InspectionRecord](ret); err != nil {
		return nil, fmt.Errorf("booking %s return record: %w", b.ID, err)
	}
	if b.Settlement, err = scanJSON[domain.Settlement](settle); err != nil {
		return nil, fmt.Errorf("booking %s settlement: %w", b.ID, err)
	}
	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.Create", "bookingID", b.ID, "groupID", b.GroupID)

	extras, err := json.Marshal(b.Extras)
	if err != nil {
		return err
	}
	if b.Extras == nil {
		extras = []byte("[]")
	}
	quote, err := jsonColumn(b.Quote)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO bookings (
			id, reference, customer_id, group_id, pickup_date, return_date,
			pickup_location_id, return_location_id, extras, discount_code,
			status, status_version, quote, total, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = r.db.ExecContext(ctx, query,
		b.ID, b.Reference, b.CustomerID, b.GroupID, b.Range.Start, b.Range.End,
		b.PickupLocationID, b.ReturnLocationID, extras, b.DiscountCode,
		b.Status, b.StatusVersion, quote, quoteTotal(b.Quote), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Create", err, "bookingID", b.ID)
		if pqCode(err) == codeUniqueViolation {
			return fmt.Errorf("booking reference %s already taken: %w", b.Reference, domain.ErrConflict)
		}
		return err
	}

	logger.ExitMethod("bookingRepository.Create", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

func (r *bookingRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
}

func (r *bookingRepository) get(ctx context.Context, query, id string) (*domain.Booking, error) {
	logger.EnterMethod("bookingRepository.GetByID", "bookingID", id)

	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.GetByID", err, "bookingID", id)
		return nil, notFound(err, "booking", id)
	}

	logger.ExitMethod("bookingRepository.GetByID", "bookingID", id, "status", b.Status)
	return b, nil
}

func (r *bookingRepository) ListActiveOverlapping(ctx context.Context, groupID string, rng domain.DateRange) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE group_id = $1 AND status = ANY($2) AND pickup_date < $3 AND return_date > $4
		ORDER BY pickup_date, id`
	statuses := []string{string(domain.BookingStatusConfirmed), string(domain.BookingStatusInProgress)}
	logger.DatabaseCall("bookings.ListActiveOverlapping", query, "groupID", groupID, "range", rng.String())

	return r.list(ctx, query, groupID, pq.Array(statuses), rng.End, rng.Start)
}

func (r *bookingRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
		LIMIT $3`
	return r.list(ctx, query, domain.BookingStatusPending, cutoff, limit)
}

func (r *bookingRepository) ListOverdue(ctx context.Context, today time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1 AND return_date < $2
		ORDER BY return_date, id`
	return r.list(ctx, query, domain.BookingStatusInProgress, domain.ToDate(today))
}

func (r *bookingRepository) list(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking, expectedVersion int) error {
	logger.EnterMethod("bookingRepository.Update", "bookingID", b.ID, "status", b.Status, "version", expectedVersion)

	quote, err := jsonColumn(b.Quote)
	if err != nil {
		return err
	}
	pickup, err := jsonColumn(b.PickupRecord)
	if err != nil {
		return err
	}
	ret, err := jsonColumn(b.ReturnRecord)
	if err != nil {
		return err
	}
	settle, err := jsonColumn(b.Settlement)
	if err != nil {
		return err
	}
	total := quoteTotal(b.Quote)
	var finalTotal any
	if b.Settlement != nil {
		finalTotal = b.Settlement.FinalTotal
	}

	query := `
		UPDATE bookings SET
			vehicle_id = $1,
			status = $2,
			status_version = status_version + 1,
			quote = $3,
			total = $4,
			pickup_record = $5,
			return_record = $6,
			settlement = $7,
			final_total = $8,
			cancel_reason = $9,
			updated_at = $10,
			confirmed_at = $11,
			started_at = $12,
			completed_at = $13,
			cancelled_at = $14
		WHERE id = $15 AND status_version = $16
	`
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, query,
		b.VehicleID, b.Status, quote, total, pickup, ret, settle, finalTotal, b.CancelReason,
		b.UpdatedAt, b.ConfirmedAt, b.StartedAt, b.CompletedAt, b.CancelledAt,
		b.ID, expectedVersion,
	)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Update", err, "bookingID", b.ID)
		if pqCode(err) == codeExclusionViolation {
			return fmt.Errorf("booking %s overlaps another booking of vehicle: %w", b.ID, domain.ErrConflict)
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err := fmt.Errorf("booking %s changed concurrently: %w", b.ID, domain.ErrConflict)
		logger.ExitMethodWithError("bookingRepository.Update", err, "bookingID", b.ID)
		return err
	}

	b.StatusVersion = expectedVersion + 1
	logger.ExitMethod("bookingRepository.Update", "bookingID", b.ID, "version", b.StatusVersion)
	return nil
}

func (r *bookingRepository) AppendEvent(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO booking_events (booking_id, from_status, to_status, actor_type, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return r.db.QueryRowContext(ctx, query, e.BookingID, e.FromStatus, e.ToStatus, e.ActorType, e.ActorID, e.CreatedAt).Scan(&e.ID)
}

func (r *bookingRepository) ListEvents(ctx context.Context, bookingID string) ([]domain.Event, error) {
	query := `
		SELECT id, booking_id, from_status, to_status, actor_type, actor_id, created_at
		FROM booking_events WHERE booking_id = $1 ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			e       domain.Event
			actorID sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.BookingID, &e.FromStatus, &e.ToStatus, &e.ActorType, &actorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ActorID = nullString(actorID)
		events = append(events, e)
	}
	return events, rows.Err()
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// quoteTotal is the denormalised total column, NULL until a quote exists.
func quoteTotal(q *domain.Quote) any {
	if q == nil {
		return nil
	}
	return q.Total
}
