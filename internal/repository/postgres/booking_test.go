package postgres_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingCols = []string{
	"id", "reference", "customer_id", "group_id", "vehicle_id", "pickup_date", "return_date",
	"pickup_location_id", "return_location_id", "extras", "discount_code", "status", "status_version",
	"quote", "pickup_record", "return_record", "settlement", "cancel_reason",
	"created_at", "updated_at", "confirmed_at", "started_at", "completed_at", "cancelled_at",
}

func date(s string) time.Time {
	t, _ := time.Parse(domain.DateLayout, s)
	return t
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestBookingRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	rng, _ := domain.NewDateRange(date("2024-07-01"), date("2024-07-04"))
	code := "SUMMER10"
	b := &domain.Booking{
		ID: "b-1", Reference: "RC-ABC123", CustomerID: "cust-1", GroupID: "eco", Range: rng,
		PickupLocationID: "mad", ReturnLocationID: "mad", DiscountCode: &code,
		Extras:    []domain.ExtraLineItem{{ExtraID: "gps", Name: "GPS", UnitPrice: decimal.NewFromInt(5), Quantity: 1, IsPerRental: true}},
		Status:    domain.BookingStatusPending,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO bookings").
			WithArgs("b-1", "RC-ABC123", "cust-1", "eco", rng.Start, rng.End, "mad", "mad", sqlmock.AnyArg(), "SUMMER10",
				"pending", 0, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(ctx, b))
	})

	t.Run("Duplicate reference", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO bookings").WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, b)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	quote, _ := json.Marshal(domain.Quote{Days: 3, Total: decimal.RequireFromString("145.20"), KmIncluded: 450})
	extras := []byte(`[{"extra_id":"gps","name":"GPS","unit_price":"5","quantity":1,"max_quantity":1,"is_per_rental":true}]`)
	now := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(bookingCols).AddRow(
			"b-1", "RC-ABC123", "cust-1", "eco", "v-1", date("2024-07-01"), date("2024-07-04"),
			"mad", "bcn", extras, nil, "confirmed", 1,
			quote, nil, nil, nil, nil,
			now, now, now, nil, nil, nil,
		)
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").WithArgs("b-1").WillReturnRows(rows)

		b, err := repo.GetByID(ctx, "b-1")
		require.NoError(t, err)
		assert.Equal(t, "RC-ABC123", b.Reference)
		require.NotNil(t, b.VehicleID)
		assert.Equal(t, "v-1", *b.VehicleID)
		assert.Nil(t, b.DiscountCode)
		assert.Equal(t, 3, b.Range.Days())
		assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
		assert.Equal(t, 1, b.StatusVersion)
		require.Len(t, b.Extras, 1)
		assert.True(t, b.Extras[0].IsPerRental)
		require.NotNil(t, b.Quote)
		assert.Equal(t, "145.2", b.Quote.Total.String())
		assert.NotNil(t, b.ConfirmedAt)
		assert.Nil(t, b.StartedAt)
		assert.True(t, b.DifferentReturn())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").WithArgs("missing").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("For update", func(t *testing.T) {
		rows := sqlmock.NewRows(bookingCols).AddRow(
			"b-2", "RC-XYZ", "cust-2", "eco", nil, date("2024-07-01"), date("2024-07-02"),
			"mad", "mad", []byte(`[]`), "SPRING", "pending", 0,
			nil, nil, nil, nil, nil,
			now, now, nil, nil, nil, nil,
		)
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1 FOR UPDATE").WithArgs("b-2").WillReturnRows(rows)

		b, err := repo.GetByIDForUpdate(ctx, "b-2")
		require.NoError(t, err)
		assert.Nil(t, b.VehicleID)
		assert.Nil(t, b.Quote)
		require.NotNil(t, b.DiscountCode)
		assert.Equal(t, "SPRING", *b.DiscountCode)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_ListActiveOverlapping(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()
	rng, _ := domain.NewDateRange(date("2024-07-10"), date("2024-07-15"))
	now := time.Now().UTC()

	rows := sqlmock.NewRows(bookingCols).
		AddRow("b-1", "R1", "c", "eco", "v-1", date("2024-07-14"), date("2024-07-16"), "mad", "mad", []byte(`[]`), nil, "confirmed", 1,
			nil, nil, nil, nil, nil, now, now, now, nil, nil, nil).
		AddRow("b-2", "R2", "c", "eco", "v-2", date("2024-07-01"), date("2024-07-11"), "mad", "mad", []byte(`[]`), nil, "in_progress", 2,
			nil, []byte(`{"mileage":1000,"fuel_level":"full","recorded_at":"2024-07-01T09:00:00Z"}`), nil, nil, nil, now, now, now, now, nil, nil)

	// half-open overlap: existing.start < requested.end AND existing.end > requested.start
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE group_id = \\$1 AND status = ANY\\(\\$2\\) AND pickup_date < \\$3 AND return_date > \\$4").
		WithArgs("eco", sqlmock.AnyArg(), rng.End, rng.Start).
		WillReturnRows(rows)

	bookings, err := repo.ListActiveOverlapping(ctx, "eco", rng)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	require.NotNil(t, bookings[1].PickupRecord)
	assert.Equal(t, int64(1000), bookings[1].PickupRecord.Mileage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	vid := "v-1"
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	b := &domain.Booking{
		ID: "b-1", VehicleID: &vid, Status: domain.BookingStatusConfirmed, StatusVersion: 0,
		Quote:       &domain.Quote{Total: decimal.RequireFromString("145.20")},
		UpdatedAt:   now,
		ConfirmedAt: &now,
	}

	t.Run("Success bumps version and keeps caller's timestamp", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings SET").
			WithArgs("v-1", "confirmed", sqlmock.AnyArg(), sqlmock.AnyArg(), nil, nil, nil, nil, nil,
				now, sqlmock.AnyArg(), nil, nil, nil, "b-1", 0).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(ctx, b, 0))
		assert.Equal(t, 1, b.StatusVersion)
		assert.Equal(t, now, b.UpdatedAt)
	})

	t.Run("Stale version", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings SET").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, b, 0)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, 1, b.StatusVersion)
	})

	t.Run("Exclusion constraint", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings SET").WillReturnError(&pq.Error{Code: "23P01"})

		err := repo.Update(ctx, b, 1)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Events(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	e := &domain.Event{BookingID: "b-1", FromStatus: domain.BookingStatusPending, ToStatus: domain.BookingStatusConfirmed, ActorType: "customer"}
	mock.ExpectQuery("INSERT INTO booking_events").
		WithArgs("b-1", "pending", "confirmed", "customer", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	require.NoError(t, repo.AppendEvent(ctx, e))
	assert.Equal(t, int64(7), e.ID)

	mock.ExpectQuery("SELECT (.+) FROM booking_events WHERE booking_id = \\$1").
		WithArgs("b-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "from_status", "to_status", "actor_type", "actor_id", "created_at"}).
			AddRow(7, "b-1", "pending", "confirmed", "customer", nil, time.Now()).
			AddRow(8, "b-1", "confirmed", "cancelled", "staff", "agent-9", time.Now()))

	events, err := repo.ListEvents(ctx, "b-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.NotNil(t, events[1].ActorID)
	assert.Equal(t, "agent-9", *events[1].ActorID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Housekeeping(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()
	cutoff := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE status = \\$1 AND created_at < \\$2").
		WithArgs("pending", cutoff, 100).
		WillReturnRows(sqlmock.NewRows(bookingCols))

	pending, err := repo.ListPendingCreatedBefore(ctx, cutoff, 100)
	require.NoError(t, err)
	assert.Empty(t, pending)

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE status = \\$1 AND return_date < \\$2").
		WithArgs("in_progress", date("2024-07-01")).
		WillReturnRows(sqlmock.NewRows(bookingCols))

	overdue, err := repo.ListOverdue(ctx, cutoff)
	require.NoError(t, err)
	assert.Empty(t, overdue)
	assert.NoError(t, mock.ExpectationsWereMet())
}
