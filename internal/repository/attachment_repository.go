package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mycad-io/fleet-api/internal/models"
)

// AttachmentRepository manages persistence for uploaded file records.
type AttachmentRepository struct {
	db *sqlx.DB
}

// NewAttachmentRepository constructs an AttachmentRepository.
func NewAttachmentRepository(db *sqlx.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create inserts an attachment record.
func (r *AttachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	if attachment.ID == "" {
		attachment.ID = uuid.NewString()
	}
	if attachment.CreatedAt.IsZero() {
		attachment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attachments (id, owner_type, owner_id, url, mime_type, metadata, created_at)
        VALUES (:id, :owner_type, :owner_id, :url, :mime_type, :metadata, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, attachment); err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}
	return nil
}

// FindByID fetches an attachment by ID.
func (r *AttachmentRepository) FindByID(ctx context.Context, id string) (*models.Attachment, error) {
	const query = `SELECT id, owner_type, owner_id, url, mime_type, metadata, created_at FROM attachments WHERE id = $1`
	var attachment models.Attachment
	if err := r.db.GetContext(ctx, &attachment, query, id); err != nil {
		return nil, err
	}
	return &attachment, nil
}

// ListByOwner returns all attachments belonging to one record.
func (r *AttachmentRepository) ListByOwner(ctx context.Context, ownerType models.AttachmentOwner, ownerID string) ([]models.Attachment, error) {
	const query = `SELECT id, owner_type, owner_id, url, mime_type, metadata, created_at
        FROM attachments WHERE owner_type = $1 AND owner_id = $2 ORDER BY created_at ASC`
	attachments := make([]models.Attachment, 0)
	if err := r.db.SelectContext(ctx, &attachments, query, ownerType, ownerID); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return attachments, nil
}

// OwnerExists reports whether the owning record is present and enabled.
func (r *AttachmentRepository) OwnerExists(ctx context.Context, ownerType models.AttachmentOwner, ownerID string) (bool, error) {
	var table string
	switch ownerType {
	case models.AttachmentOwnerVehicle:
		table = "vehicles"
	case models.AttachmentOwnerRental:
		table = "rentals"
	case models.AttachmentOwnerRepairReport:
		table = "repair_reports"
	case models.AttachmentOwnerServiceReport:
		table = "service_reports"
	default:
		return false, fmt.Errorf("unknown attachment owner type %q", ownerType)
	}
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1 AND enabled = TRUE)", table)
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, ownerID); err != nil {
		return false, fmt.Errorf("check attachment owner: %w", err)
	}
	return exists, nil
}

// Delete removes an attachment record.
func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM attachments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return nil
}
