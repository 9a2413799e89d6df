package postgres

import (
	"context"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"

	"github.com/lib/pq"
)

type groupRepository struct {
	db DBTX
}

func NewGroupRepository(db DBTX) repository.GroupRepository {
	return &groupRepository{db: db}
}

const groupColumns = `id, name, daily_price, COALESCE(km_per_day, 0), deposit, is_active`

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.VehicleGroup, error) {
	logger.EnterMethod("groupRepository.GetByID", "groupID", id)

	g := &domain.VehicleGroup{}
	err := r.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM vehicle_groups WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.DailyPrice, &g.KmPerDay, &g.Deposit, &g.IsActive)
	if err != nil {
		logger.ExitMethodWithError("groupRepository.GetByID", err, "groupID", id)
		return nil, notFound(err, "vehicle group", id)
	}

	logger.ExitMethod("groupRepository.GetByID", "groupID", id)
	return g, nil
}

func (r *groupRepository) ListActive(ctx context.Context) ([]domain.VehicleGroup, error) {
	logger.EnterMethod("groupRepository.ListActive")

	rows, err := r.db.QueryContext(ctx, `SELECT `+groupColumns+` FROM vehicle_groups WHERE is_active ORDER BY daily_price, id`)
	if err != nil {
		logger.ExitMethodWithError("groupRepository.ListActive", err)
		return nil, err
	}
	defer rows.Close()

	var groups []domain.VehicleGroup
	for rows.Next() {
		var g domain.VehicleGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.DailyPrice, &g.KmPerDay, &g.Deposit, &g.IsActive); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.ExitMethod("groupRepository.ListActive", "count", len(groups))
	return groups, nil
}

type locationRepository struct {
	db DBTX
}

func NewLocationRepository(db DBTX) repository.LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	l := &domain.Location{}
	query := `SELECT id, name, allows_different_return, different_return_fee FROM locations WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&l.ID, &l.Name, &l.AllowsDifferentReturn, &l.DifferentReturnFee)
	if err != nil {
		return nil, notFound(err, "location", id)
	}
	return l, nil
}

func (r *locationRepository) List(ctx context.Context) ([]domain.Location, error) {
	query := `SELECT id, name, allows_different_return, different_return_fee FROM locations ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []domain.Location
	for rows.Next() {
		var l domain.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.AllowsDifferentReturn, &l.DifferentReturnFee); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

type extraRepository struct {
	db DBTX
}

func NewExtraRepository(db DBTX) repository.ExtraRepository {
	return &extraRepository{db: db}
}

func (r *extraRepository) List(ctx context.Context) ([]domain.Extra, error) {
	return r.query(ctx, `SELECT id, name, unit_price, max_quantity, is_per_rental FROM extras ORDER BY name`)
}

// GetByIDs returns the extras found; unknown IDs are simply absent.
func (r *extraRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Extra, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, name, unit_price, max_quantity, is_per_rental FROM extras WHERE id = ANY($1)`
	logger.DatabaseCall("extras.GetByIDs", query, "count", len(ids))
	return r.query(ctx, query, pq.Array(ids))
}

func (r *extraRepository) query(ctx context.Context, query string, args ...any) ([]domain.Extra, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var extras []domain.Extra
	for rows.Next() {
		var e domain.Extra
		if err := rows.Scan(&e.ID, &e.Name, &e.UnitPrice, &e.MaxQuantity, &e.IsPerRental); err != nil {
			return nil, err
		}
		extras = append(extras, e)
	}
	return extras, rows.Err()
}
