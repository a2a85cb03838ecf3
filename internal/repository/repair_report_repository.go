package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mycad-io/fleet-api/internal/models"
	"github.com/mycad-io/fleet-api/internal/query"
)

var repairReportDescriptor = query.Descriptor{
	Table: "repair_reports rr",
	Joins: `JOIN vehicles v ON v.id = rr.vehicle_id
        JOIN vehicle_models m ON m.id = v.model_id
        JOIN brands b ON b.id = m.brand_id
        JOIN vehicle_types t ON t.id = m.type_id`,
	IDColumn: "rr.id",
	SelectColumns: `rr.id, rr.folio, rr.vehicle_id, rr.failure_date, rr.start_repair_date, rr.repair_date,
        rr.description, rr.total_cost, rr.comments, rr.workshop_type, rr.workshop_name, rr.workshop_contact,
        rr.enabled, rr.created_at, rr.updated_at,
        v.plate_number, m.name AS model_name, b.name AS brand_name, t.name AS type_name`,
	TextColumns: []string{
		"rr.folio",
		"rr.description",
		"rr.comments",
		"rr.workshop_type",
		"rr.workshop_name",
		"rr.workshop_contact",
		"v.plate_number",
		"m.name",
		"b.name",
		"t.name",
	},
	NumericColumns: []string{"rr.total_cost"},
	ExistsMatches: []string{
		"EXISTS (SELECT 1 FROM repair_report_parts p WHERE p.report_id = rr.id AND LOWER(p.part_name) LIKE %s)",
	},
	Sortable: map[string]string{
		"createdAt":                "rr.created_at",
		"folio":                    "rr.folio",
		"failureDate":              "rr.failure_date",
		"repairDate":               "rr.repair_date",
		"totalCost":                "rr.total_cost",
		"vehicle.plateNumber":      "v.plate_number",
		"vehicle.model.name":       "m.name",
		"vehicle.model.brand.name": "b.name",
	},
	DefaultSort:      "createdAt",
	DefaultDirection: "desc",
	SoftDeleteColumn: "rr.enabled",
}

// RepairReportRepository manages persistence for repair reports and their parts.
type RepairReportRepository struct {
	db *sqlx.DB
}

// NewRepairReportRepository constructs a RepairReportRepository.
func NewRepairReportRepository(db *sqlx.DB) *RepairReportRepository {
	return &RepairReportRepository{db: db}
}

// Search returns the paginated repair report page matching the request.
func (r *RepairReportRepository) Search(ctx context.Context, req query.Request) (query.Page[models.RepairReportDetail], error) {
	return query.Search[models.RepairReportDetail](ctx, r.db, repairReportDescriptor, req)
}

// FindByID fetches a repair report detail, parts included.
func (r *RepairReportRepository) FindByID(ctx context.Context, id string) (*models.RepairReportDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM %s %s WHERE rr.id = $1",
		repairReportDescriptor.SelectColumns, repairReportDescriptor.Table, repairReportDescriptor.Joins)
	var detail models.RepairReportDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	parts, err := r.listParts(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Parts = parts
	return &detail, nil
}

// Create inserts a report and its parts in one transaction.
func (r *RepairReportRepository) Create(ctx context.Context, report *models.RepairReport, parts []models.ReportPart) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin repair report tx: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO repair_reports (id, folio, vehicle_id, failure_date, start_repair_date, repair_date,
        description, total_cost, comments, workshop_type, workshop_name, workshop_contact, enabled, created_at, updated_at)
        VALUES (:id, :folio, :vehicle_id, :failure_date, :start_repair_date, :repair_date,
        :description, :total_cost, :comments, :workshop_type, :workshop_name, :workshop_contact, :enabled, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("create repair report: %w", err)
	}
	if err := insertParts(ctx, tx, "repair_report_parts", report.ID, parts); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit repair report: %w", err)
	}
	return nil
}

// Update modifies a report and replaces its parts in one transaction. The
// folio is immutable.
func (r *RepairReportRepository) Update(ctx context.Context, report *models.RepairReport, parts []models.ReportPart) error {
	report.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin repair report tx: %w", err)
	}
	defer tx.Rollback()

	const query = `UPDATE repair_reports SET vehicle_id = :vehicle_id, failure_date = :failure_date,
        start_repair_date = :start_repair_date, repair_date = :repair_date, description = :description,
        total_cost = :total_cost, comments = :comments, workshop_type = :workshop_type,
        workshop_name = :workshop_name, workshop_contact = :workshop_contact, updated_at = :updated_at
        WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("update repair report: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM repair_report_parts WHERE report_id = $1", report.ID); err != nil {
		return fmt.Errorf("clear repair report parts: %w", err)
	}
	if err := insertParts(ctx, tx, "repair_report_parts", report.ID, parts); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit repair report: %w", err)
	}
	return nil
}

// Delete performs a soft delete by disabling the report.
func (r *RepairReportRepository) Delete(ctx context.Context, id string) error {
	const query = `UPDATE repair_reports SET enabled = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete repair report: %w", err)
	}
	return nil
}

func (r *RepairReportRepository) listParts(ctx context.Context, reportID string) ([]models.ReportPart, error) {
	const query = `SELECT id, report_id, part_name, action_type, cost, created_at
        FROM repair_report_parts WHERE report_id = $1 ORDER BY created_at ASC`
	parts := make([]models.ReportPart, 0)
	if err := r.db.SelectContext(ctx, &parts, query, reportID); err != nil {
		return nil, fmt.Errorf("list repair report parts: %w", err)
	}
	return parts, nil
}

func insertParts(ctx context.Context, tx *sqlx.Tx, table, reportID string, parts []models.ReportPart) error {
	now := time.Now().UTC()
	query := fmt.Sprintf(`INSERT INTO %s (id, report_id, part_name, action_type, cost, created_at)
        VALUES (:id, :report_id, :part_name, :action_type, :cost, :created_at)`, table)
	for i := range parts {
		part := &parts[i]
		if part.ID == "" {
			part.ID = uuid.NewString()
		}
		part.ReportID = reportID
		if part.CreatedAt.IsZero() {
			part.CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, query, part); err != nil {
			return fmt.Errorf("insert part %s: %w", part.PartName, err)
		}
	}
	return nil
}
