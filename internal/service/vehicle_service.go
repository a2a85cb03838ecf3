package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mycad-io/fleet-api/internal/models"
	"github.com/mycad-io/fleet-api/internal/query"
	appErrors "github.com/mycad-io/fleet-api/pkg/errors"
)

type vehicleRepository interface {
	Search(ctx context.Context, req query.Request) (query.Page[models.VehicleDetail], error)
	FindByID(ctx context.Context, id string) (*models.VehicleDetail, error)
	ExistsByPlate(ctx context.Context, plate, excludeID string) (bool, error)
	Create(ctx context.Context, vehicle *models.Vehicle) error
	Update(ctx context.Context, vehicle *models.Vehicle) error
	UpdateStatus(ctx context.Context, id string, status models.VehicleStatus) error
	Delete(ctx context.Context, id string) error
}

type vehicleModelReader interface {
	FindByID(ctx context.Context, id string) (*models.VehicleModelDetail, error)
}

type vehicleAttachmentLister interface {
	ListByOwner(ctx context.Context, ownerType models.AttachmentOwner, ownerID string) ([]models.Attachment, error)
}

// CreateVehicleRequest holds payload for registering vehicles.
type CreateVehicleRequest struct {
	ModelID         string     `json:"model_id" validate:"required"`
	ConditionID     *string    `json:"condition_id"`
	PlateNumber     string     `json:"plate_number" validate:"required"`
	SerialNumber    string     `json:"serial_number" validate:"required"`
	EconNumber      string     `json:"econ_number"`
	AcquisitionDate *time.Time `json:"acquisition_date"`
	Cost            *float64   `json:"cost" validate:"omitempty,gte=0"`
	Mileage         int        `json:"mileage" validate:"gte=0"`
	Comments        string     `json:"comments"`
}

// UpdateVehicleRequest holds payload for updating vehicles.
type UpdateVehicleRequest struct {
	ModelID         string               `json:"model_id" validate:"required"`
	ConditionID     *string              `json:"condition_id"`
	PlateNumber     string               `json:"plate_number" validate:"required"`
	SerialNumber    string               `json:"serial_number" validate:"required"`
	EconNumber      string               `json:"econ_number"`
	AcquisitionDate *time.Time           `json:"acquisition_date"`
	Cost            *float64             `json:"cost" validate:"omitempty,gte=0"`
	Mileage         int                  `json:"mileage" validate:"gte=0"`
	Status          models.VehicleStatus `json:"status" validate:"required,oneof=AVAILABLE RENTED MAINTENANCE RETIRED"`
	Comments        string               `json:"comments"`
}

// VehicleService handles fleet vehicle use-cases.
type VehicleService struct {
	repo        vehicleRepository
	modelRepo   vehicleModelReader
	attachments vehicleAttachmentLister
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewVehicleService constructs the vehicle service.
func NewVehicleService(repo vehicleRepository, modelRepo vehicleModelReader, attachments vehicleAttachmentLister, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *VehicleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VehicleService{repo: repo, modelRepo: modelRepo, attachments: attachments, cache: cache, validator: validate, logger: logger}
}

// Search returns the vehicle page matching the request, served from cache
// when a fresh copy exists.
func (s *VehicleService) Search(ctx context.Context, req query.Request) (query.Page[models.VehicleDetail], error) {
	key := searchCacheKey("vehicles", req)
	var page query.Page[models.VehicleDetail]
	if hit, _ := s.cache.Get(ctx, key, &page); hit {
		return page, nil
	}

	page, err := s.repo.Search(ctx, req)
	if err != nil {
		return page, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search vehicles")
	}
	if err := s.cache.Set(ctx, key, page, 0); err != nil {
		s.logger.Warn("failed to cache vehicle page", zap.Error(err))
	}
	return page, nil
}

// Get returns detailed vehicle information with its images.
func (s *VehicleService) Get(ctx context.Context, id string) (*models.VehicleDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}
	images, err := s.attachments.ListByOwner(ctx, models.AttachmentOwnerVehicle, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle images")
	}
	detail.Images = images
	return detail, nil
}

// Create registers a new vehicle. New vehicles start available.
func (s *VehicleService) Create(ctx context.Context, req CreateVehicleRequest) (*models.VehicleDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vehicle payload")
	}
	if _, err := s.modelRepo.FindByID(ctx, req.ModelID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "vehicle model does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check vehicle model")
	}
	exists, err := s.repo.ExistsByPlate(ctx, req.PlateNumber, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check plate number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "plate number already registered")
	}

	vehicle := &models.Vehicle{
		ModelID:         req.ModelID,
		ConditionID:     req.ConditionID,
		PlateNumber:     req.PlateNumber,
		SerialNumber:    req.SerialNumber,
		EconNumber:      req.EconNumber,
		AcquisitionDate: req.AcquisitionDate,
		Cost:            req.Cost,
		Mileage:         req.Mileage,
		Status:          models.VehicleStatusAvailable,
		Comments:        req.Comments,
		Enabled:         true,
	}
	if err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create vehicle")
	}
	s.invalidate(ctx)
	return s.repo.FindByID(ctx, vehicle.ID)
}

// Update modifies an existing vehicle.
func (s *VehicleService) Update(ctx context.Context, id string, req UpdateVehicleRequest) (*models.VehicleDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vehicle payload")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}
	exists, err := s.repo.ExistsByPlate(ctx, req.PlateNumber, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check plate number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "plate number already registered")
	}

	vehicle := detail.Vehicle
	vehicle.ModelID = req.ModelID
	vehicle.ConditionID = req.ConditionID
	vehicle.PlateNumber = req.PlateNumber
	vehicle.SerialNumber = req.SerialNumber
	vehicle.EconNumber = req.EconNumber
	vehicle.AcquisitionDate = req.AcquisitionDate
	vehicle.Cost = req.Cost
	vehicle.Mileage = req.Mileage
	vehicle.Status = req.Status
	vehicle.Comments = req.Comments

	if err := s.repo.Update(ctx, &vehicle); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update vehicle")
	}
	s.invalidate(ctx)
	return s.repo.FindByID(ctx, id)
}

// UpdateStatus transitions a vehicle to a new operational status.
func (s *VehicleService) UpdateStatus(ctx context.Context, id string, status models.VehicleStatus) error {
	switch status {
	case models.VehicleStatusAvailable, models.VehicleStatusRented, models.VehicleStatusMaintenance, models.VehicleStatusRetired:
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown vehicle status")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update vehicle status")
	}
	s.invalidate(ctx)
	return nil
}

// Delete soft deletes a vehicle. Rented vehicles cannot be removed.
func (s *VehicleService) Delete(ctx context.Context, id string) error {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if detail.Status == models.VehicleStatusRented {
		return appErrors.Clone(appErrors.ErrConflict, "vehicle has an active rental")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete vehicle")
	}
	s.invalidate(ctx)
	return nil
}

func (s *VehicleService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, searchCachePattern("vehicles")); err != nil {
		s.logger.Warn("failed to invalidate vehicle cache", zap.Error(err))
	}
}
