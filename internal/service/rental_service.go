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

type rentalRepository interface {
	Search(ctx context.Context, req query.Request) (query.Page[models.RentalDetail], error)
	FindByID(ctx context.Context, id string) (*models.RentalDetail, error)
	OverlappingRental(ctx context.Context, vehicleID string, start, end time.Time, excludeID string) (bool, error)
	Create(ctx context.Context, rental *models.Rental) error
	Update(ctx context.Context, rental *models.Rental) error
	SetStatus(ctx context.Context, id string, status models.RentalStatus) error
	Delete(ctx context.Context, id string) error
}

type rentalVehicleRepository interface {
	FindByID(ctx context.Context, id string) (*models.VehicleDetail, error)
	UpdateStatus(ctx context.Context, id string, status models.VehicleStatus) error
	UpdateMileage(ctx context.Context, id string, mileage int) error
}

type rentalClientReader interface {
	FindByID(ctx context.Context, id string) (*models.Client, error)
}

type attachmentLister interface {
	ListByOwner(ctx context.Context, ownerType models.AttachmentOwner, ownerID string) ([]models.Attachment, error)
}

type folioIssuer interface {
	Next(ctx context.Context, category folio.Category) (string, error)
}

// CreateRentalRequest holds payload for opening a rental.
type CreateRentalRequest struct {
	VehicleID       string     `json:"vehicle_id" validate:"required"`
	ClientID        string     `json:"client_id" validate:"required"`
	StartDate       *time.Time `json:"start_date" validate:"required"`
	EndDate         *time.Time `json:"end_date" validate:"required"`
	PickupLocation  string     `json:"pickup_location"`
	DropoffLocation string     `json:"dropoff_location"`
	DailyRate       float64    `json:"daily_rate" validate:"required,gt=0"`
	Deposit         *float64   `json:"deposit" validate:"omitempty,gte=0"`
	InitialMileage  *int       `json:"initial_mileage" validate:"omitempty,gte=0"`
	FuelLevelStart  *float64   `json:"fuel_level_start" validate:"omitempty,gte=0,lte=1"`
	Comments        string     `json:"comments"`
}

// UpdateRentalRequest holds payload for editing an open rental.
type UpdateRentalRequest struct {
	StartDate       *time.Time           `json:"start_date" validate:"required"`
	EndDate         *time.Time           `json:"end_date" validate:"required"`
	PickupLocation  string               `json:"pickup_location"`
	DropoffLocation string               `json:"dropoff_location"`
	DailyRate       float64              `json:"daily_rate" validate:"required,gt=0"`
	Deposit         *float64             `json:"deposit" validate:"omitempty,gte=0"`
	PaymentStatus   models.PaymentStatus `json:"payment_status" validate:"required,oneof=PENDING COMPLETED PARTIAL REFUNDED"`
	Comments        string               `json:"comments"`
}

// CloseRentalRequest holds the return readings when completing a rental.
type CloseRentalRequest struct {
	FinalMileage *int     `json:"final_mileage" validate:"omitempty,gte=0"`
	FuelLevelEnd *float64 `json:"fuel_level_end" validate:"omitempty,gte=0,lte=1"`
	Comments     string   `json:"comments"`
}

// RentalService handles rental lifecycle use-cases.
type RentalService struct {
	repo        rentalRepository
	vehicles    rentalVehicleRepository
	clients     rentalClientReader
	attachments attachmentLister
	folios      folioIssuer
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewRentalService constructs the rental service.
func NewRentalService(repo rentalRepository, vehicles rentalVehicleRepository, clients rentalClientReader, attachments attachmentLister, folios folioIssuer, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RentalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RentalService{
		repo:        repo,
		vehicles:    vehicles,
		clients:     clients,
		attachments: attachments,
		folios:      folios,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// Search returns the rental page matching the request, cached.
func (s *RentalService) Search(ctx context.Context, req query.Request) (query.Page[models.RentalDetail], error) {
	key := searchCacheKey("rentals", req)
	var page query.Page[models.RentalDetail]
	if hit, _ := s.cache.Get(ctx, key, &page); hit {
		return page, nil
	}

	page, err := s.repo.Search(ctx, req)
	if err != nil {
		return page, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search rentals")
	}
	if err := s.cache.Set(ctx, key, page, 0); err != nil {
		s.logger.Warn("failed to cache rental page", zap.Error(err))
	}
	return page, nil
}

// Get returns detailed rental information with its attachments.
func (s *RentalService) Get(ctx context.Context, id string) (*models.RentalDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "rental not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rental")
	}
	files, err := s.attachments.ListByOwner(ctx, models.AttachmentOwnerRental, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rental files")
	}
	detail.Files = files
	return detail, nil
}

// Create opens a rental in PENDING state and mints its folio.
func (s *RentalService) Create(ctx context.Context, req CreateRentalRequest) (*models.RentalDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rental payload")
	}
	if req.EndDate.Before(*req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date precedes start date")
	}

	vehicle, err := s.vehicles.FindByID(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "vehicle does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}
	if vehicle.Status == models.VehicleStatusRetired || vehicle.Status == models.VehicleStatusMaintenance {
		return nil, appErrors.Clone(appErrors.ErrConflict, "vehicle is not available for rental")
	}
	if _, err := s.clients.FindByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "client does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}

	overlap, err := s.repo.OverlappingRental(ctx, req.VehicleID, *req.StartDate, *req.EndDate, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check rental overlap")
	}
	if overlap {
		return nil, appErrors.Clone(appErrors.ErrConflict, "vehicle already rented for that period")
	}

	issued, err := s.folios.Next(ctx, folio.CategoryRental)
	if err != nil {
		return nil, err
	}

	total := totalCost(req.DailyRate, *req.StartDate, *req.EndDate)
	rental := &models.Rental{
		Folio:           issued,
		VehicleID:       req.VehicleID,
		ClientID:        req.ClientID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		DailyRate:       req.DailyRate,
		Deposit:         req.Deposit,
		TotalCost:       &total,
		PaymentStatus:   models.PaymentStatusPending,
		InitialMileage:  req.InitialMileage,
		FuelLevelStart:  req.FuelLevelStart,
		Comments:        req.Comments,
		Status:          models.RentalStatusPending,
		Enabled:         true,
	}
	if err := s.repo.Create(ctx, rental); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create rental")
	}
	s.invalidate(ctx)
	return s.Get(ctx, rental.ID)
}

// Update edits an open rental. Completed and canceled rentals are immutable.
func (s *RentalService) Update(ctx context.Context, id string, req UpdateRentalRequest) (*models.RentalDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rental payload")
	}
	if req.EndDate.Before(*req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date precedes start date")
	}

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail.Status == models.RentalStatusCompleted || detail.Status == models.RentalStatusCanceled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "rental is closed")
	}

	overlap, err := s.repo.OverlappingRental(ctx, detail.VehicleID, *req.StartDate, *req.EndDate, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check rental overlap")
	}
	if overlap {
		return nil, appErrors.Clone(appErrors.ErrConflict, "vehicle already rented for that period")
	}

	rental := detail.Rental
	rental.StartDate = req.StartDate
	rental.EndDate = req.EndDate
	rental.PickupLocation = req.PickupLocation
	rental.DropoffLocation = req.DropoffLocation
	rental.DailyRate = req.DailyRate
	rental.Deposit = req.Deposit
	rental.PaymentStatus = req.PaymentStatus
	rental.Comments = req.Comments
	total := totalCost(req.DailyRate, *req.StartDate, *req.EndDate)
	rental.TotalCost = &total

	if err := s.repo.Update(ctx, &rental); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update rental")
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Activate hands the vehicle over and marks it rented.
func (s *RentalService) Activate(ctx context.Context, id string) (*models.RentalDetail, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail.Status != models.RentalStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only pending rentals can be activated")
	}
	if err := s.repo.SetStatus(ctx, id, models.RentalStatusActive); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate rental")
	}
	if err := s.vehicles.UpdateStatus(ctx, detail.VehicleID, models.VehicleStatusRented); err != nil {
		s.logger.Warn("failed to mark vehicle rented", zap.String("vehicle_id", detail.VehicleID), zap.Error(err))
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Complete closes an active rental, records the return readings and frees the
// vehicle.
func (s *RentalService) Complete(ctx context.Context, id string, req CloseRentalRequest) (*models.RentalDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid close payload")
	}
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail.Status != models.RentalStatusActive {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only active rentals can be completed")
	}
	if req.FinalMileage != nil && detail.InitialMileage != nil && *req.FinalMileage < *detail.InitialMileage {
		return nil, appErrors.Clone(appErrors.ErrValidation, "final mileage below initial mileage")
	}

	rental := detail.Rental
	rental.FinalMileage = req.FinalMileage
	rental.FuelLevelEnd = req.FuelLevelEnd
	if req.Comments != "" {
		rental.Comments = req.Comments
	}
	rental.Status = models.RentalStatusCompleted
	if err := s.repo.Update(ctx, &rental); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete rental")
	}
	if err := s.vehicles.UpdateStatus(ctx, detail.VehicleID, models.VehicleStatusAvailable); err != nil {
		s.logger.Warn("failed to free vehicle", zap.String("vehicle_id", detail.VehicleID), zap.Error(err))
	}
	if req.FinalMileage != nil {
		if err := s.vehicles.UpdateMileage(ctx, detail.VehicleID, *req.FinalMileage); err != nil {
			s.logger.Warn("failed to record vehicle mileage", zap.String("vehicle_id", detail.VehicleID), zap.Error(err))
		}
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Cancel voids a pending or active rental and frees the vehicle when needed.
func (s *RentalService) Cancel(ctx context.Context, id string) (*models.RentalDetail, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail.Status == models.RentalStatusCompleted || detail.Status == models.RentalStatusCanceled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "rental is already closed")
	}
	if err := s.repo.SetStatus(ctx, id, models.RentalStatusCanceled); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel rental")
	}
	if detail.Status == models.RentalStatusActive {
		if err := s.vehicles.UpdateStatus(ctx, detail.VehicleID, models.VehicleStatusAvailable); err != nil {
			s.logger.Warn("failed to free vehicle", zap.String("vehicle_id", detail.VehicleID), zap.Error(err))
		}
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Delete soft deletes a rental. The folio stays reserved.
func (s *RentalService) Delete(ctx context.Context, id string) error {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if detail.Status == models.RentalStatusActive {
		return appErrors.Clone(appErrors.ErrConflict, "active rentals cannot be removed")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete rental")
	}
	s.invalidate(ctx)
	return nil
}

func (s *RentalService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, searchCachePattern("rentals")); err != nil {
		s.logger.Warn("failed to invalidate rental cache", zap.Error(err))
	}
}

// totalCost charges complete days, partial days round up, with a one day
// minimum.
func totalCost(dailyRate float64, start, end time.Time) float64 {
	days := int(end.Sub(start).Hours() / 24)
	if end.Sub(start)%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return dailyRate * float64(days)
}
