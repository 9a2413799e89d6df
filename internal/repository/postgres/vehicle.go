package postgres

import (
	"context"
	"fmt"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

type vehicleRepository struct {
	db DBTX
}

func NewVehicleRepository(db DBTX) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

const vehicleSelect = `SELECT id, group_id, location_id, plate, mileage, status, is_active FROM vehicles`

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	err := r.db.QueryRowContext(ctx, vehicleSelect+` WHERE id = $1`, id).
		Scan(&v.ID, &v.GroupID, &v.LocationID, &v.Plate, &v.Mileage, &v.Status, &v.IsActive)
	if err != nil {
		return nil, notFound(err, "vehicle", id)
	}
	return v, nil
}

func (r *vehicleRepository) ListByGroupAndLocation(ctx context.Context, groupID, locationID string) ([]domain.Vehicle, error) {
	return r.list(ctx, "vehicleRepository.ListByGroupAndLocation",
		vehicleSelect+` WHERE group_id = $1 AND location_id = $2 ORDER BY mileage, id`, groupID, locationID)
}

func (r *vehicleRepository) LockByGroupAndLocation(ctx context.Context, groupID, locationID string) ([]domain.Vehicle, error) {
	return r.list(ctx, "vehicleRepository.LockByGroupAndLocation",
		vehicleSelect+` WHERE group_id = $1 AND location_id = $2 ORDER BY mileage, id FOR UPDATE`, groupID, locationID)
}

func (r *vehicleRepository) list(ctx context.Context, method, query string, groupID, locationID string) ([]domain.Vehicle, error) {
	logger.EnterMethod(method, "groupID", groupID, "locationID", locationID)

	rows, err := r.db.QueryContext(ctx, query, groupID, locationID)
	if err != nil {
		logger.ExitMethodWithError(method, err, "groupID", groupID)
		return nil, err
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.GroupID, &v.LocationID, &v.Plate, &v.Mileage, &v.Status, &v.IsActive); err != nil {
			logger.ExitMethodWithError(method, err, "groupID", groupID)
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.ExitMethod(method, "count", len(vehicles))
	return vehicles, nil
}

// UpdateState moves a vehicle after pickup or return. The odometer never goes
// backwards.
func (r *vehicleRepository) UpdateState(ctx context.Context, id string, status domain.VehicleStatus, locationID string, mileage int64) error {
	query := `UPDATE vehicles SET status = $1, location_id = $2, mileage = GREATEST(mileage, $3), updated_at = $4 WHERE id = $5`
	logger.DatabaseCall("vehicles.UpdateState", query, "vehicleID", id, "status", status)

	res, err := r.db.ExecContext(ctx, query, status, locationID, mileage, time.Now().UTC(), id)
	if err != nil {
		logger.DatabaseResult("vehicles.UpdateState", 0, err)
		return err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("vehicles.UpdateState", n, err)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("vehicle %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
