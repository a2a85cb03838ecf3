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

var clientDescriptor = query.Descriptor{
	Table:         "clients c",
	IDColumn:      "c.id",
	SelectColumns: "c.id, c.name, c.company, c.email, c.phone_number, c.enabled, c.created_at, c.updated_at",
	TextColumns: []string{
		"c.name",
		"c.company",
		"c.email",
		"c.phone_number",
	},
	Sortable: map[string]string{
		"createdAt": "c.created_at",
		"name":      "c.name",
		"company":   "c.company",
		"email":     "c.email",
	},
	DefaultSort:      "createdAt",
	DefaultDirection: "desc",
	SoftDeleteColumn: "c.enabled",
}

// ClientRepository manages persistence for rental clients.
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository constructs a ClientRepository.
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Search returns the paginated client page matching the request.
func (r *ClientRepository) Search(ctx context.Context, req query.Request) (query.Page[models.Client], error) {
	return query.Search[models.Client](ctx, r.db, clientDescriptor, req)
}

// FindByID fetches a client by ID.
func (r *ClientRepository) FindByID(ctx context.Context, id string) (*models.Client, error) {
	const query = `SELECT id, name, company, email, phone_number, enabled, created_at, updated_at FROM clients WHERE id = $1`
	var client models.Client
	if err := r.db.GetContext(ctx, &client, query, id); err != nil {
		return nil, err
	}
	return &client, nil
}

// ExistsByEmail checks for an enabled client with the given email.
func (r *ClientRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	query := "SELECT 1 FROM clients WHERE LOWER(email) = LOWER($1) AND enabled = TRUE"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check client email: %w", err)
	}
	return true, nil
}

// Create inserts a new client.
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	client.UpdatedAt = now
	const query = `INSERT INTO clients (id, name, company, email, phone_number, enabled, created_at, updated_at)
        VALUES (:id, :name, :company, :email, :phone_number, :enabled, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, client); err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

// Update modifies an existing client.
func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	client.UpdatedAt = time.Now().UTC()
	const query = `UPDATE clients SET name = :name, company = :company, email = :email,
        phone_number = :phone_number, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, client); err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return nil
}

// Delete performs a soft delete by disabling the client.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	const query = `UPDATE clients SET enabled = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

// HasActiveRentals reports whether the client has rentals in a non-terminal state.
func (r *ClientRepository) HasActiveRentals(ctx context.Context, id string) (bool, error) {
	const query = `SELECT 1 FROM rentals WHERE client_id = $1 AND enabled = TRUE AND status IN ($2, $3) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, id, models.RentalStatusPending, models.RentalStatusActive); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check client rentals: %w", err)
	}
	return true, nil
}
