package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mycad-io/fleet-api/internal/models"
	"github.com/mycad-io/fleet-api/internal/query"
)

var vehicleDescriptor = query.Descriptor{
	Table: "vehicles v",
	Joins: `JOIN vehicle_models m ON m.id = v.model_id
        JOIN brands b ON b.id = m.brand_id
        JOIN vehicle_types t ON t.id = m.type_id
        LEFT JOIN conditions co ON co.id = v.condition_id`,
	IDColumn: "v.id",
	SelectColumns: `v.id, v.model_id, v.condition_id, v.plate_number, v.serial_number, v.econ_number,
        v.acquisition_date, v.cost, v.mileage, v.status, v.comments, v.enabled, v.created_at, v.updated_at,
        m.name AS model_name, m.year AS model_year, b.name AS brand_name, t.name AS type_name, co.name AS condition_name`,
	TextColumns: []string{
		"v.plate_number",
		"v.serial_number",
		"v.econ_number",
		"v.comments",
		"m.name",
		"b.name",
		"t.name",
	},
	NumericColumns: []string{"v.cost", "v.mileage"},
	Sortable: map[string]string{
		"createdAt":                "v.created_at",
		"plateNumber":              "v.plate_number",
		"econNumber":               "v.econ_number",
		"mileage":                  "v.mileage",
		"cost":                     "v.cost",
		"status":                   "v.status",
		"model.name":               "m.name",
		"model.year":               "m.year",
		"model.brand.name":         "b.name",
		"model.type.name":          "t.name",
	},
	DefaultSort:      "createdAt",
	DefaultDirection: "desc",
	StatusColumn:     "v.status",
	StatusLabels:     models.VehicleStatusLabels,
	SoftDeleteColumn: "v.enabled",
}

// VehicleRepository manages persistence for fleet vehicles.
type VehicleRepository struct {
	db *sqlx.DB
}

// NewVehicleRepository constructs a VehicleRepository.
func NewVehicleRepository(db *sqlx.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// Search returns the paginated vehicle page matching the request.
func (r *VehicleRepository) Search(ctx context.Context, req query.Request) (query.Page[models.VehicleDetail], error) {
	return query.Search[models.VehicleDetail](ctx, r.db, vehicleDescriptor, req)
}

// FindByID fetches a vehicle detail by ID. Disabled records are still
// reachable by ID so their history stays visible.
func (r *VehicleRepository) FindByID(ctx context.Context, id string) (*models.VehicleDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM %s %s WHERE v.id = $1",
		vehicleDescriptor.SelectColumns, vehicleDescriptor.Table, vehicleDescriptor.Joins)
	var detail models.VehicleDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsByPlate checks for a vehicle with the given plate number, optionally
// excluding an ID.
func (r *VehicleRepository) ExistsByPlate(ctx context.Context, plate, excludeID string) (bool, error) {
	query := "SELECT 1 FROM vehicles WHERE plate_number = $1 AND enabled = TRUE"
	args := []interface{}{plate}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check plate: %w", err)
	}
	return true, nil
}

// Create inserts a new vehicle record.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	if vehicle.ID == "" {
		vehicle.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if vehicle.CreatedAt.IsZero() {
		vehicle.CreatedAt = now
	}
	vehicle.UpdatedAt = now
	const query = `INSERT INTO vehicles (id, model_id, condition_id, plate_number, serial_number, econ_number,
        acquisition_date, cost, mileage, status, comments, enabled, created_at, updated_at)
        VALUES (:id, :model_id, :condition_id, :plate_number, :serial_number, :econ_number,
        :acquisition_date, :cost, :mileage, :status, :comments, :enabled, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, vehicle); err != nil {
		return fmt.Errorf("create vehicle: %w", err)
	}
	return nil
}

// Update modifies an existing vehicle.
func (r *VehicleRepository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	vehicle.UpdatedAt = time.Now().UTC()
	const query = `UPDATE vehicles SET model_id = :model_id, condition_id = :condition_id,
        plate_number = :plate_number, serial_number = :serial_number, econ_number = :econ_number,
        acquisition_date = :acquisition_date, cost = :cost, mileage = :mileage, status = :status,
        comments = :comments, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, vehicle); err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	return nil
}

// UpdateStatus transitions a vehicle to a new operational status.
func (r *VehicleRepository) UpdateStatus(ctx context.Context, id string, status models.VehicleStatus) error {
	const query = `UPDATE vehicles SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update vehicle status: %w", err)
	}
	return nil
}

// UpdateMileage records the latest odometer reading when it advances.
func (r *VehicleRepository) UpdateMileage(ctx context.Context, id string, mileage int) error {
	const query = `UPDATE vehicles SET mileage = $2, updated_at = $3 WHERE id = $1 AND mileage < $2`
	if _, err := r.db.ExecContext(ctx, query, id, mileage, time.Now().UTC()); err != nil {
		return fmt.Errorf("update vehicle mileage: %w", err)
	}
	return nil
}

// Delete performs a soft delete by disabling the vehicle.
func (r *VehicleRepository) Delete(ctx context.Context, id string) error {
	const query = `UPDATE vehicles SET enabled = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	return nil
}
