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

var serviceReportDescriptor = query.Descriptor{
	Table: "service_reports sr",
	Joins: `JOIN vehicles v ON v.id = sr.vehicle_id
        JOIN vehicle_models m ON m.id = v.model_id
        JOIN brands b ON b.id = m.brand_id`,
	IDColumn: "sr.id",
	SelectColumns: `sr.id, sr.folio, sr.vehicle_id, sr.report_type, sr.service_date, sr.description,
        sr.total_cost, sr.comments, sr.enabled, sr.created_at, sr.updated_at,
        v.plate_number, m.name AS model_name, b.name AS brand_name`,
	TextColumns: []string{
		"sr.folio",
		"sr.description",
		"sr.comments",
		"v.plate_number",
		"m.name",
		"b.name",
	},
	NumericColumns: []string{"sr.total_cost"},
	ExistsMatches: []string{
		"EXISTS (SELECT 1 FROM service_report_parts p WHERE p.report_id = sr.id AND LOWER(p.part_name) LIKE %s)",
	},
	Sortable: map[string]string{
		"createdAt":                "sr.created_at",
		"folio":                    "sr.folio",
		"serviceDate":              "sr.service_date",
		"totalCost":                "sr.total_cost",
		"vehicle.plateNumber":      "v.plate_number",
		"vehicle.model.name":       "m.name",
		"vehicle.model.brand.name": "b.name",
	},
	DefaultSort:      "createdAt",
	DefaultDirection: "desc",
	SoftDeleteColumn: "sr.enabled",
}

// ServiceReportRepository manages persistence for preventive and corrective
// service reports and their parts.
type ServiceReportRepository struct {
	db *sqlx.DB
}

// NewServiceReportRepository constructs a ServiceReportRepository.
func NewServiceReportRepository(db *sqlx.DB) *ServiceReportRepository {
	return &ServiceReportRepository{db: db}
}

// Search returns the paginated service report page matching the request.
// Use req.Filters["sr.report_type"] to restrict to one report type.
func (r *ServiceReportRepository) Search(ctx context.Context, req query.Request) (query.Page[models.ServiceReportDetail], error) {
	return query.Search[models.ServiceReportDetail](ctx, r.db, serviceReportDescriptor, req)
}

// FindByID fetches a service report detail, parts included.
func (r *ServiceReportRepository) FindByID(ctx context.Context, id string) (*models.ServiceReportDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM %s %s WHERE sr.id = $1",
		serviceReportDescriptor.SelectColumns, serviceReportDescriptor.Table, serviceReportDescriptor.Joins)
	var detail models.ServiceReportDetail
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
func (r *ServiceReportRepository) Create(ctx context.Context, report *models.ServiceReport, parts []models.ReportPart) error {
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
		return fmt.Errorf("begin service report tx: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO service_reports (id, folio, vehicle_id, report_type, service_date, description,
        total_cost, comments, enabled, created_at, updated_at)
        VALUES (:id, :folio, :vehicle_id, :report_type, :service_date, :description,
        :total_cost, :comments, :enabled, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("create service report: %w", err)
	}
	if err := insertParts(ctx, tx, "service_report_parts", report.ID, parts); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit service report: %w", err)
	}
	return nil
}

// Update modifies a report and replaces its parts in one transaction. The
// folio and report type are immutable.
func (r *ServiceReportRepository) Update(ctx context.Context, report *models.ServiceReport, parts []models.ReportPart) error {
	report.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin service report tx: %w", err)
	}
	defer tx.Rollback()

	const query = `UPDATE service_reports SET vehicle_id = :vehicle_id, service_date = :service_date,
        description = :description, total_cost = :total_cost, comments = :comments, updated_at = :updated_at
        WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("update service report: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM service_report_parts WHERE report_id = $1", report.ID); err != nil {
		return fmt.Errorf("clear service report parts: %w", err)
	}
	if err := insertParts(ctx, tx, "service_report_parts", report.ID, parts); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit service report: %w", err)
	}
	return nil
}

// Delete performs a soft delete by disabling the report.
func (r *ServiceReportRepository) Delete(ctx context.Context, id string) error {
	const query = `UPDATE service_reports SET enabled = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete service report: %w", err)
	}
	return nil
}

func (r *ServiceReportRepository) listParts(ctx context.Context, reportID string) ([]models.ReportPart, error) {
	const query = `SELECT id, report_id, part_name, action_type, cost, created_at
        FROM service_report_parts WHERE report_id = $1 ORDER BY created_at ASC`
	parts := make([]models.ReportPart, 0)
	if err := r.db.SelectContext(ctx, &parts, query, reportID); err != nil {
		return nil, fmt.Errorf("list service report parts: %w", err)
	}
	return parts, nil
}
