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

type serviceReportRepository interface {
	Search(ctx context.Context, req query.Request) (query.Page[models.ServiceReportDetail], error)
	FindByID(ctx context.Context, id string) (*models.ServiceReportDetail, error)
	Create(ctx context.Context, report *models.ServiceReport, parts []models.ReportPart) error
	Update(ctx context.Context, report *models.ServiceReport, parts []models.ReportPart) error
	Delete(ctx context.Context, id string) error
}

// ServiceReportRequest holds payload for creating or updating service reports.
type ServiceReportRequest struct {
	VehicleID   string                   `json:"vehicle_id" validate:"required"`
	ReportType  models.ServiceReportType `json:"report_type" validate:"required,oneof=PREVENTIVE CORRECTIVE"`
	ServiceDate time.Time                `json:"service_date" validate:"required"`
	Description string                   `json:"description" validate:"required"`
	TotalCost   float64                  `json:"total_cost" validate:"gte=0"`
	Comments    string                   `json:"comments"`
	Parts       []ReportPartRequest      `json:"replaced_parts" validate:"dive"`
}

// ServiceReportService handles preventive and corrective maintenance reports.
type ServiceReportService struct {
	repo        serviceReportRepository
	vehicles    rentalVehicleRepository
	attachments attachmentLister
	folios      folioIssuer
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewServiceReportService constructs the service report service.
func NewServiceReportService(repo serviceReportRepository, vehicles rentalVehicleRepository, attachments attachmentLister, folios folioIssuer, validate *validator.Validate, logger *zap.Logger) *ServiceReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServiceReportService{
		repo:        repo,
		vehicles:    vehicles,
		attachments: attachments,
		folios:      folios,
		validator:   validate,
		logger:      logger,
	}
}

// FolioCategory maps a report type to its folio category.
func FolioCategory(reportType models.ServiceReportType) folio.Category {
	if reportType == models.ServiceReportCorrective {
		return folio.CategoryCorrective
	}
	return folio.CategoryPreventive
}

// Search returns the service report page matching the request. Restrict to
// one type through req.Filters["sr.report_type"].
func (s *ServiceReportService) Search(ctx context.Context, req query.Request) (query.Page[models.ServiceReportDetail], error) {
	page, err := s.repo.Search(ctx, req)
	if err != nil {
		return page, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search service reports")
	}
	return page, nil
}

// Get returns a service report with its parts and attachments.
func (s *ServiceReportService) Get(ctx context.Context, id string) (*models.ServiceReportDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service report")
	}
	attachments, err := s.attachments.ListByOwner(ctx, models.AttachmentOwnerServiceReport, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report attachments")
	}
	detail.Attachments = attachments
	return detail, nil
}

// Create registers a service report, minting a MANT or SERV folio depending
// on the report type.
func (s *ServiceReportService) Create(ctx context.Context, req ServiceReportRequest) (*models.ServiceReportDetail, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	issued, err := s.folios.Next(ctx, FolioCategory(req.ReportType))
	if err != nil {
		return nil, err
	}

	report := &models.ServiceReport{
		Folio:       issued,
		VehicleID:   req.VehicleID,
		ReportType:  req.ReportType,
		ServiceDate: req.ServiceDate,
		Description: req.Description,
		TotalCost:   req.TotalCost,
		Comments:    req.Comments,
		Enabled:     true,
	}
	if err := s.repo.Create(ctx, report, partsFromRequests(req.Parts)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create service report")
	}
	return s.Get(ctx, report.ID)
}

// Update modifies a service report and replaces its parts. The folio and
// report type are kept.
func (s *ServiceReportService) Update(ctx context.Context, id string, req ServiceReportRequest) (*models.ServiceReportDetail, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ReportType != detail.ReportType {
		return nil, appErrors.Clone(appErrors.ErrValidation, "report type cannot change after creation")
	}

	report := detail.ServiceReport
	report.VehicleID = req.VehicleID
	report.ServiceDate = req.ServiceDate
	report.Description = req.Description
	report.TotalCost = req.TotalCost
	report.Comments = req.Comments

	if err := s.repo.Update(ctx, &report, partsFromRequests(req.Parts)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update service report")
	}
	return s.Get(ctx, id)
}

// Delete soft deletes a service report. The folio stays reserved.
func (s *ServiceReportService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete service report")
	}
	return nil
}

func (s *ServiceReportService) validateRequest(ctx context.Context, req ServiceReportRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service report payload")
	}
	if _, err := s.vehicles.FindByID(ctx, req.VehicleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "vehicle does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}
	return nil
}
