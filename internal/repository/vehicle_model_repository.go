package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mycad-io/fleet-api/internal/models"
)

// VehicleModelRepository manages persistence for vehicle models.
type VehicleModelRepository struct {
	db *sqlx.DB
}

// NewVehicleModelRepository constructs a VehicleModelRepository.
func NewVehicleModelRepository(db *sqlx.DB) *VehicleModelRepository {
	return &VehicleModelRepository{db: db}
}

// List returns enabled models with their brand and type names, optionally
// restricted to a brand.
func (r *VehicleModelRepository) List(ctx context.Context, brandID string) ([]models.VehicleModelDetail, error) {
	query := `SELECT m.id, m.name, m.year, m.brand_id, m.type_id, m.enabled, m.created_at, m.updated_at,
        b.name AS brand_name, t.name AS type_name
        FROM vehicle_models m
        JOIN brands b ON b.id = m.brand_id
        JOIN vehicle_types t ON t.id = m.type_id
        WHERE m.enabled = TRUE`
	args := []interface{}{}
	if brandID != "" {
		query += " AND m.brand_id = $1"
		args = append(args, brandID)
	}
	query += " ORDER BY b.name ASC, m.name ASC, m.year DESC"

	details := make([]models.VehicleModelDetail, 0)
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("list vehicle models: %w", err)
	}
	return details, nil
}

// FindByID fetches a model detail by ID.
func (r *VehicleModelRepository) FindByID(ctx context.Context, id string) (*models.VehicleModelDetail, error) {
	const query = `SELECT m.id, m.name, m.year, m.brand_id, m.type_id, m.enabled, m.created_at, m.updated_at,
        b.name AS brand_name, t.name AS type_name
        FROM vehicle_models m
        JOIN brands b ON b.id = m.brand_id
        JOIN vehicle_types t ON t.id = m.type_id
        WHERE m.id = $1`
	var detail models.VehicleModelDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Exists checks for a model with the same name, year and brand.
func (r *VehicleModelRepository) Exists(ctx context.Context, name string, year int, brandID, excludeID string) (bool, error) {
	query := "SELECT 1 FROM vehicle_models WHERE LOWER(name) = LOWER($1) AND year = $2 AND brand_id = $3 AND enabled = TRUE"
	args := []interface{}{name, year, brandID}
	if excludeID != "" {
		query += " AND id <> $4"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check vehicle model: %w", err)
	}
	return true, nil
}

// Create inserts a new vehicle model.
func (r *VehicleModelRepository) Create(ctx context.Context, model *models.VehicleModel) error {
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.UpdatedAt = now
	const query = `INSERT INTO vehicle_models (id, name, year, brand_id, type_id, enabled, created_at, updated_at)
        VALUES (:id, :name, :year, :brand_id, :type_id, :enabled, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, model); err != nil {
		return fmt.Errorf("create vehicle model: %w", err)
	}
	return nil
}

// Update modifies an existing vehicle model.
func (r *VehicleModelRepository) Update(ctx context.Context, model *models.VehicleModel) error {
	model.UpdatedAt = time.Now().UTC()
	const query = `UPDATE vehicle_models SET name = :name, year = :year, brand_id = :brand_id,
        type_id = :type_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, model); err != nil {
		return fmt.Errorf("update vehicle model: %w", err)
	}
	return nil
}

// Delete performs a soft delete by disabling the model.
func (r *VehicleModelRepository) Delete(ctx context.Context, id string) error {
	const query = `UPDATE vehicle_models SET enabled = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete vehicle model: %w", err)
	}
	return nil
}
