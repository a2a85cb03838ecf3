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

// Catalog tables share the same shape (id, name, enabled, timestamps) so a
// single repository serves brands, vehicle types and conditions. The table
// name is fixed per instance, never caller supplied.
type catalogRepository struct {
	db    *sqlx.DB
	table string
}

// BrandRepository manages persistence for vehicle brands.
type BrandRepository struct{ catalogRepository }

// NewBrandRepository constructs a BrandRepository.
func NewBrandRepository(db *sqlx.DB) *BrandRepository {
	return &BrandRepository{catalogRepository{db: db, table: "brands"}}
}

// VehicleTypeRepository manages persistence for vehicle types.
type VehicleTypeRepository struct{ catalogRepository }

// NewVehicleTypeRepository constructs a VehicleTypeRepository.
func NewVehicleTypeRepository(db *sqlx.DB) *VehicleTypeRepository {
	return &VehicleTypeRepository{catalogRepository{db: db, table: "vehicle_types"}}
}

// ConditionRepository manages persistence for vehicle conditions.
type ConditionRepository struct{ catalogRepository }

// NewConditionRepository constructs a ConditionRepository.
func NewConditionRepository(db *sqlx.DB) *ConditionRepository {
	return &ConditionRepository{catalogRepository{db: db, table: "conditions"}}
}

func (r *catalogRepository) List(ctx context.Context) ([]models.CatalogEntry, error) {
	query := fmt.Sprintf("SELECT id, name, enabled, created_at, updated_at FROM %s WHERE enabled = TRUE ORDER BY name ASC", r.table)
	entries := make([]models.CatalogEntry, 0)
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table, err)
	}
	return entries, nil
}

func (r *catalogRepository) FindByID(ctx context.Context, id string) (*models.CatalogEntry, error) {
	query := fmt.Sprintf("SELECT id, name, enabled, created_at, updated_at FROM %s WHERE id = $1", r.table)
	var entry models.CatalogEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *catalogRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE LOWER(name) = LOWER($1) AND enabled = TRUE", r.table)
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check %s name: %w", r.table, err)
	}
	return true, nil
}

func (r *catalogRepository) Create(ctx context.Context, entry *models.CatalogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	query := fmt.Sprintf("INSERT INTO %s (id, name, enabled, created_at, updated_at) VALUES (:id, :name, :enabled, :created_at, :updated_at)", r.table)
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create %s entry: %w", r.table, err)
	}
	return nil
}

func (r *catalogRepository) Update(ctx context.Context, entry *models.CatalogEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf("UPDATE %s SET name = :name, updated_at = :updated_at WHERE id = :id", r.table)
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("update %s entry: %w", r.table, err)
	}
	return nil
}

func (r *catalogRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET enabled = FALSE, updated_at = $2 WHERE id = $1", r.table)
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete %s entry: %w", r.table, err)
	}
	return nil
}
