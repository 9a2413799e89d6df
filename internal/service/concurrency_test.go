package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/pricing"
	"rentacar-backend/internal/repository/postgres"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// confirmRace creates two pending bookings of the same group and dates and
// confirms them in parallel. It returns the confirmation errors.
func confirmRace(t *testing.T, svc BookingService) []error {
	t.Helper()
	ctx := context.Background()
	rng := mustRange(t, "2024-07-01", "2024-07-04")

	var ids []string
	for _, customer := range []string{"cust-a", "cust-b"} {
		b, err := svc.CreateBooking(ctx, CreateBookingRequest{
			QuoteRequest: QuoteRequest{GroupID: "grp-eco", PickupLocationID: "loc-mad", Range: rng},
			CustomerID:   customer,
		})
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}

	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.ConfirmBooking(ctx, id)
		}(i, id)
	}
	close(start)
	wg.Wait()
	return errs
}

func assertOneWinner(t *testing.T, errs []error) {
	t.Helper()
	succeeded, conflicted := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrConflict):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)
}

func TestConfirmBooking_LastVehicleRace(t *testing.T) {
	logger.Get()
	store := newMemStore()
	store.groups["grp-eco"] = *economy()
	store.locations["loc-mad"] = *madrid()
	store.vehicles["v-1"] = domain.Vehicle{ID: "v-1", GroupID: "grp-eco", LocationID: "loc-mad", Status: domain.VehicleStatusAvailable, IsActive: true}

	svc := NewBookingService(store.Repositories(), store, nil, Options{
		Defaults: pricing.DefaultDefaults(),
		Clock:    func() time.Time { return clock },
	})

	assertOneWinner(t, confirmRace(t, svc))

	active := 0
	for _, b := range store.bookings {
		if b.Status.IsActive() {
			active++
			assert.Equal(t, "v-1", *b.VehicleID)
		}
	}
	assert.Equal(t, 1, active)
}

// TestConfirmBooking_LastVehicleRace_Postgres runs the same race against a
// real database. Set RENTAL_TEST_DSN to a disposable database to enable it.
func TestConfirmBooking_LastVehicleRace_Postgres(t *testing.T) {
	dsn := os.Getenv("RENTAL_TEST_DSN")
	if dsn == "" {
		t.Skip("RENTAL_TEST_DSN not set")
	}
	ctx := context.Background()
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, postgres.Migrate(ctx, db))
	_, err = db.ExecContext(ctx, `TRUNCATE booking_events, bookings, vehicles, discount_codes, extras, locations, vehicle_groups CASCADE`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO vehicle_groups (id, name, daily_price, km_per_day, deposit, is_active) VALUES ('grp-eco', 'Economy', 40, 150, 300, TRUE)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO locations (id, name, allows_different_return, different_return_fee) VALUES ('loc-mad', 'Madrid Centro', TRUE, 50)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO vehicles (id, group_id, location_id, plate, mileage, status, is_active) VALUES ('v-1', 'grp-eco', 'loc-mad', '1234ABC', 10000, 'available', TRUE)`)
	require.NoError(t, err)

	store := postgres.NewStore(db, 5)
	svc := NewBookingService(store.Repositories, store, nil, Options{
		Defaults: pricing.DefaultDefaults(),
		Clock:    func() time.Time { return clock },
	})

	assertOneWinner(t, confirmRace(t, svc))

	var active int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE status = 'confirmed'`).Scan(&active))
	assert.Equal(t, 1, active)
}
