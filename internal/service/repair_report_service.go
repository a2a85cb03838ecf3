package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mycad-io/fleet-api/internal/folio"
	"github.com/mycad-io/fleet-api/internal/models"
	"github.com/mycad-io/fleet-api/internal/query"
	appErrors "github.com/mycad-io/fleet-api/pkg/errors"
)

type repairReportRepository interface {
	Search(ctx context.Context, req query.Request) (query.Page[models.RepairReportDetail], error)
	FindByID(ctx context.Context, id string) (*models.RepairReportDetail, error)
	Create(ctx context.Context, report *models.RepairReport, parts []models.ReportPart) error
	Update(ctx context.Context, report *models.RepairReport, parts []models.ReportPart) error
	Delete(ctx context.Context, id string) error
}

// ReportPartRequest describes a part touched during a repair or service.
type ReportPartRequest struct {
	PartName   string            `json:"part_name" validate:"required"`
	ActionType models.PartAction `json:"action_type" validate:"required,oneof=REPLACED REPAIRED ADJUSTED"`
	Cost       float64           `json:"cost" validate:"gte=0"`
}

// RepairReportRequest holds payload for creating or updating repair reports.
type RepairReportRequest struct {
	VehicleID       string              `json:"vehicle_id" validate:"required"`
	FailureDate     time.Time           `json:"failure_date" validate:"required"`
	StartRepairDate time.Time           `json:"start_repair_date" validate:"required"`
	RepairDate      time.Time           `json:"repair_date" validate:"required"`
	Description     string              `json:"description" validate:"required"`
	TotalCost       float64             `json:"total_cost" validate:"gte=0"`
	Comments        string              `json:"comments"`
	WorkshopType    string              `json:"workshop_type"`
	WorkshopName    string              `json:"workshop_name"`
	WorkshopContact string              `json:"workshop_contact"`
	Parts           []ReportPartRequest `json:"repaired_parts" validate:"dive"`
}

// RepairReportService handles repair report use-cases.
type RepairReportService struct {
	repo        repairReportRepository
	vehicles    rentalVehicleRepository
	attachments attachmentLister
	folios      folioIssuer
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewRepairReportService constructs the repair report service.
func NewRepairReportService(repo repairReportRepository, vehicles rentalVehicleRepository, attachments attachmentLister, folios folioIssuer, validate *validator.Validate, logger *zap.Logger) *RepairReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepairReportService{
		repo:        repo,
		vehicles:    vehicles,
		attachments: attachments,
		folios:      folios,
		validator:   validate,
		logger:      logger,
	}
}

// Search returns the repair report page matching the request.
func (s *RepairReportService) Search(ctx context.Context, req query.Request) (query.Page[models.RepairReportDetail], error) {
	page, err := s.repo.Search(ctx, req)
	if err != nil {
		return page, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search repair reports")
	}
	return page, nil
}

// Get returns a repair report with its parts and attachments.
func (s *RepairReportService) Get(ctx context.Context, id string) (*models.RepairReportDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "repair report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load repair report")
	}
	attachments, err := s.attachments.ListByOwner(ctx, models.AttachmentOwnerRepairReport, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report attachments")
	}
	detail.Attachments = attachments
	return detail, nil
}

// Create registers a repair report and mints its folio.
func (s *RepairReportService) Create(ctx context.Context, req RepairReportRequest) (*models.RepairReportDetail, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	issued, err := s.folios.Next(ctx, folio.CategoryRepair)
	if err != nil {
		return nil, err
	}

	report := &models.RepairReport{
		Folio:           issued,
		VehicleID:       req.VehicleID,
		FailureDate:     req.FailureDate,
		StartRepairDate: req.StartRepairDate,
		RepairDate:      req.RepairDate,
		Description:     req.Description,
		TotalCost:       req.TotalCost,
		Comments:        req.Comments,
		WorkshopType:    req.WorkshopType,
		WorkshopName:    req.WorkshopName,
		WorkshopContact: req.WorkshopContact,
		Enabled:         true,
	}
	if err := s.repo.Create(ctx, report, partsFromRequests(req.Parts)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create repair report")
	}
	return s.Get(ctx, report.ID)
}

// Update modifies a repair report and replaces its parts. The folio is kept.
func (s *RepairReportService) Update(ctx context.Context, id string, req RepairReportRequest) (*models.RepairReportDetail, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	report := detail.RepairReport
	report.VehicleID = req.VehicleID
	report.FailureDate = req.FailureDate
	report.StartRepairDate = req.StartRepairDate
	report.RepairDate = req.RepairDate
	report.Description = req.Description
	report.TotalCost = req.TotalCost
	report.Comments = req.Comments
	report.WorkshopType = req.WorkshopType
	report.WorkshopName = req.WorkshopName
	report.WorkshopContact = req.WorkshopContact

	if err := s.repo.Update(ctx, &report, partsFromRequests(req.Parts)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update repair report")
	}
	return s.Get(ctx, id)
}

// Delete soft deletes a repair report. The folio stays reserved.
func (s *RepairReportService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete repair report")
	}
	return nil
}

func (s *RepairReportService) validateRequest(ctx context.Context, req RepairReportRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid repair report payload")
	}
	if req.StartRepairDate.Before(req.FailureDate) {
		return appErrors.Clone(appErrors.ErrValidation, "repair start precedes failure date")
	}
	if req.RepairDate.Before(req.StartRepairDate) {
		return appErrors.Clone(appErrors.ErrValidation, "repair completion precedes repair start")
	}
	if _, err := s.vehicles.FindByID(ctx, req.VehicleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "vehicle does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}
	return nil
}

func partsFromRequests(reqs []ReportPartRequest) []models.ReportPart {
	parts := make([]models.ReportPart, 0, len(reqs))
	for _, r := range reqs {
		parts = append(parts, models.ReportPart{
			PartName:   r.PartName,
			ActionType: r.ActionType,
			Cost:       r.Cost,
		})
	}
	return parts
}
