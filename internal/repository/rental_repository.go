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

var rentalDescriptor = query.Descriptor{
	Table: "rentals r",
	Joins: `JOIN clients c ON c.id = r.client_id
        JOIN vehicles v ON v.id = r.vehicle_id
        JOIN vehicle_models m ON m.id = v.model_id
        JOIN brands b ON b.id = m.brand_id`,
	IDColumn: "r.id",
	SelectColumns: `r.id, r.folio, r.vehicle_id, r.client_id, r.start_date, r.end_date,
        r.pickup_location, r.dropoff_location, r.daily_rate, r.deposit, r.total_cost, r.payment_status,
        r.initial_mileage, r.final_mileage, r.fuel_level_start, r.fuel_level_end,
        r.comments, r.status, r.enabled, r.created_at, r.updated_at,
        c.name AS client_name, c.company AS client_company, v.plate_number, m.name AS model_name, b.name AS brand_name`,
	TextColumns: []string{
		"r.folio",
		"r.pickup_location",
		"r.dropoff_location",
		"r.comments",
		"c.name",
		"c.company",
		"v.plate_number",
		"m.name",
		"b.name",
	},
	NumericColumns: []string{
		"r.total_cost",
		"r.deposit",
		"r.daily_rate",
	},
	Sortable: map[string]string{
		"createdAt":                "r.created_at",
		"folio":                    "r.folio",
		"startDate":                "r.start_date",
		"endDate":                  "r.end_date",
		"dailyRate":                "r.daily_rate",
		"totalCost":                "r.total_cost",
		"status":                   "r.status",
		"client.name":              "c.name",
		"vehicle.plateNumber":      "v.plate_number",
		"vehicle.model.name":       "m.name",
		"vehicle.model.brand.name": "b.name",
	},
	DefaultSort:      "createdAt",
	DefaultDirection: "desc",
	StatusColumn:     "r.status",
	StatusLabels:     models.RentalStatusLabels,
	SoftDeleteColumn: "r.enabled",
}

// RentalRepository manages persistence for rentals.
type RentalRepository struct {
	db *sqlx.DB
}

// NewRentalRepository constructs a RentalRepository.
func NewRentalRepository(db *sqlx.DB) *RentalRepository {
	return &RentalRepository{db: db}
}

// Search returns the paginated rental page matching the request.
func (r *RentalRepository) Search(ctx context.Context, req query.Request) (query.Page[models.RentalDetail], error) {
	return query.Search[models.RentalDetail](ctx, r.db, rentalDescriptor, req)
}

// FindByID fetches a rental detail by ID.
func (r *RentalRepository) FindByID(ctx context.Context, id string) (*models.RentalDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM %s %s WHERE r.id = $1",
		rentalDescriptor.SelectColumns, rentalDescriptor.Table, rentalDescriptor.Joins)
	var detail models.RentalDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// OverlappingRental reports whether the vehicle already has a pending or
// active rental intersecting the given period.
func (r *RentalRepository) OverlappingRental(ctx context.Context, vehicleID string, start, end time.Time, excludeID string) (bool, error) {
	query := `SELECT 1 FROM rentals WHERE vehicle_id = $1 AND enabled = TRUE
        AND status IN ($2, $3) AND start_date <= $5 AND end_date >= $4`
	args := []interface{}{vehicleID, models.RentalStatusPending, models.RentalStatusActive, start, end}
	if excludeID != "" {
		query += " AND id <> $6"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check rental overlap: %w", err)
	}
	return true, nil
}

// Create inserts a new rental.
func (r *RentalRepository) Create(ctx context.Context, rental *models.Rental) error {
	if rental.ID == "" {
		rental.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rental.CreatedAt.IsZero() {
		rental.CreatedAt = now
	}
	rental.UpdatedAt = now
	const query = `INSERT INTO rentals (id, folio, vehicle_id, client_id, start_date, end_date,
        pickup_location, dropoff_location, daily_rate, deposit, total_cost, payment_status,
        initial_mileage, final_mileage, fuel_level_start, fuel_level_end, comments, status, enabled, created_at, updated_at)
        VALUES (:id, :folio, :vehicle_id, :client_id, :start_date, :end_date,
        :pickup_location, :dropoff_location, :daily_rate, :deposit, :total_cost, :payment_status,
        :initial_mileage, :final_mileage, :fuel_level_start, :fuel_level_end, :comments, :status, :enabled, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rental); err != nil {
		return fmt.Errorf("create rental: %w", err)
	}
	return nil
}

// Update modifies mutable fields of a rental. The folio is immutable.
func (r *RentalRepository) Update(ctx context.Context, rental *models.Rental) error {
	rental.UpdatedAt = time.Now().UTC()
	const query = `UPDATE rentals SET vehicle_id = :vehicle_id, client_id = :client_id,
        start_date = :start_date, end_date = :end_date, pickup_location = :pickup_location,
        dropoff_location = :dropoff_location, daily_rate = :daily_rate, deposit = :deposit,
        total_cost = :total_cost, payment_status = :payment_status, initial_mileage = :initial_mileage,
        final_mileage = :final_mileage, fuel_level_start = :fuel_level_start, fuel_level_end = :fuel_level_end,
        comments = :comments, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, rental); err != nil {
		return fmt.Errorf("update rental: %w", err)
	}
	return nil
}

// SetStatus transitions a rental to a new lifecycle status.
func (r *RentalRepository) SetStatus(ctx context.Context, id string, status models.RentalStatus) error {
	const query = `UPDATE rentals SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("set rental status: %w", err)
	}
	return nil
}

// Delete performs a soft delete by disabling the rental.
func (r *RentalRepository) Delete(ctx context.Context, id string) error {
	const query = `UPDATE rentals SET enabled = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete rental: %w", err)
	}
	return nil
}
