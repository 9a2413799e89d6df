package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"

	"github.com/lib/pq"
)

// Postgres error codes the store reacts to.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeExclusionViolation   = "23P01"
	codeUniqueViolation      = "23505"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every repository can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db          *sql.DB
	maxAttempts int
	repository.Repositories
}

// NewStore wires the repositories on the pool. maxAttempts bounds how often a
// serializable transaction is run before giving up with domain.ErrConflict.
func NewStore(db *sql.DB, maxAttempts int) *Store {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Store{
		db:           db,
		maxAttempts:  maxAttempts,
		Repositories: NewRepositories(db),
	}
}

func NewRepositories(q DBTX) repository.Repositories {
	return repository.Repositories{
		Groups:    NewGroupRepository(q),
		Locations: NewLocationRepository(q),
		Vehicles:  NewVehicleRepository(q),
		Extras:    NewExtraRepository(q),
		Discounts: NewDiscountRepository(q),
		Bookings:  NewBookingRepository(q),
	}
}

func (s *Store) RunSerializable(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	for attempt := 1; ; attempt++ {
		err := s.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		if attempt >= s.maxAttempts {
			logger.Warn("Serializable transaction gave up", "attempts", attempt, "error", err)
			return fmt.Errorf("%w: gave up after %d attempts", domain.ErrConflict, attempt)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Debug("Retrying serializable transaction", "attempt", attempt, "error", err)
	}
}

func (s *Store) runOnce(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(ctx, NewRepositories(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isRetryable(err error) bool {
	switch pqCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, domain.ErrNotFound)
	}
	return err
}

// jsonColumn encodes v for a JSONB column, mapping nil to SQL NULL.
func jsonColumn[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func scanJSON[T any](raw []byte) (*T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, err
	}
	return v, nil
}
