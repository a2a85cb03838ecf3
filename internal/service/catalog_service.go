package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mycad-io/fleet-api/internal/models"
	appErrors "github.com/mycad-io/fleet-api/pkg/errors"
)

type catalogRepositoryInterface interface {
	List(ctx context.Context) ([]models.CatalogEntry, error)
	FindByID(ctx context.Context, id string) (*models.CatalogEntry, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, entry *models.CatalogEntry) error
	Update(ctx context.Context, entry *models.CatalogEntry) error
	Delete(ctx context.Context, id string) error
}

type vehicleModelRepository interface {
	List(ctx context.Context, brandID string) ([]models.VehicleModelDetail, error)
	FindByID(ctx context.Context, id string) (*models.VehicleModelDetail, error)
	Exists(ctx context.Context, name string, year int, brandID, excludeID string) (bool, error)
	Create(ctx context.Context, model *models.VehicleModel) error
	Update(ctx context.Context, model *models.VehicleModel) error
	Delete(ctx context.Context, id string) error
}

// CatalogEntryRequest holds payload for creating or renaming catalog entries.
type CatalogEntryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// VehicleModelRequest holds payload for creating or updating vehicle models.
type VehicleModelRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=100"`
	Year    int    `json:"year" validate:"required,gte=1950,lte=2100"`
	BrandID string `json:"brand_id" validate:"required"`
	TypeID  string `json:"type_id" validate:"required"`
}

// CatalogService handles brand, vehicle type, condition and model lookups.
// The three flat catalogs share one code path; which one is addressed is
// decided by the handler wiring.
type CatalogService struct {
	brands     catalogRepositoryInterface
	types      catalogRepositoryInterface
	conditions catalogRepositoryInterface
	modelsRepo vehicleModelRepository
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(brands, types, conditions catalogRepositoryInterface, modelsRepo vehicleModelRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		brands:     brands,
		types:      types,
		conditions: conditions,
		modelsRepo: modelsRepo,
		cache:      cache,
		validator:  validate,
		logger:     logger,
	}
}

// CatalogKind selects one of the flat catalogs.
type CatalogKind string

const (
	CatalogBrands     CatalogKind = "brands"
	CatalogTypes      CatalogKind = "vehicle_types"
	CatalogConditions CatalogKind = "conditions"
)

func (s *CatalogService) repoFor(kind CatalogKind) (catalogRepositoryInterface, error) {
	switch kind {
	case CatalogBrands:
		return s.brands, nil
	case CatalogTypes:
		return s.types, nil
	case CatalogConditions:
		return s.conditions, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown catalog")
	}
}

// List returns the enabled entries of a catalog, cached.
func (s *CatalogService) List(ctx context.Context, kind CatalogKind) ([]models.CatalogEntry, error) {
	repo, err := s.repoFor(kind)
	if err != nil {
		return nil, err
	}

	key := string(kind) + ":all"
	var entries []models.CatalogEntry
	if hit, _ := s.cache.Get(ctx, key, &entries); hit {
		return entries, nil
	}

	entries, err = repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list catalog")
	}
	if err := s.cache.Set(ctx, key, entries, 0); err != nil {
		s.logger.Warn("failed to cache catalog", zap.String("catalog", string(kind)), zap.Error(err))
	}
	return entries, nil
}

// Create adds a catalog entry, rejecting duplicate names.
func (s *CatalogService) Create(ctx context.Context, kind CatalogKind, req CatalogEntryRequest) (*models.CatalogEntry, error) {
	repo, err := s.repoFor(kind)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid catalog payload")
	}
	exists, err := repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "name already exists")
	}

	entry := &models.CatalogEntry{Name: req.Name, Enabled: true}
	if err := repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create catalog entry")
	}
	s.invalidate(ctx, kind)
	return entry, nil
}

// Update renames a catalog entry.
func (s *CatalogService) Update(ctx context.Context, kind CatalogKind, id string, req CatalogEntryRequest) (*models.CatalogEntry, error) {
	repo, err := s.repoFor(kind)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid catalog payload")
	}
	entry, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "catalog entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog entry")
	}
	exists, err := repo.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "name already exists")
	}

	entry.Name = req.Name
	if err := repo.Update(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update catalog entry")
	}
	s.invalidate(ctx, kind)
	return entry, nil
}

// Delete soft deletes a catalog entry.
func (s *CatalogService) Delete(ctx context.Context, kind CatalogKind, id string) error {
	repo, err := s.repoFor(kind)
	if err != nil {
		return err
	}
	if _, err := repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "catalog entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog entry")
	}
	if err := repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete catalog entry")
	}
	s.invalidate(ctx, kind)
	return nil
}

// ListModels returns enabled vehicle models, optionally restricted to a brand.
func (s *CatalogService) ListModels(ctx context.Context, brandID string) ([]models.VehicleModelDetail, error) {
	details, err := s.modelsRepo.List(ctx, brandID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list vehicle models")
	}
	return details, nil
}

// CreateModel adds a vehicle model after checking that the brand and type exist.
func (s *CatalogService) CreateModel(ctx context.Context, req VehicleModelRequest) (*models.VehicleModelDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vehicle model payload")
	}
	if err := s.checkModelRefs(ctx, req); err != nil {
		return nil, err
	}
	exists, err := s.modelsRepo.Exists(ctx, req.Name, req.Year, req.BrandID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check vehicle model")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "model already exists for that brand and year")
	}

	model := &models.VehicleModel{Name: req.Name, Year: req.Year, BrandID: req.BrandID, TypeID: req.TypeID, Enabled: true}
	if err := s.modelsRepo.Create(ctx, model); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create vehicle model")
	}
	return s.modelsRepo.FindByID(ctx, model.ID)
}

// UpdateModel modifies a vehicle model.
func (s *CatalogService) UpdateModel(ctx context.Context, id string, req VehicleModelRequest) (*models.VehicleModelDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vehicle model payload")
	}
	detail, err := s.modelsRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vehicle model not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle model")
	}
	if err := s.checkModelRefs(ctx, req); err != nil {
		return nil, err
	}
	exists, err := s.modelsRepo.Exists(ctx, req.Name, req.Year, req.BrandID, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check vehicle model")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "model already exists for that brand and year")
	}

	model := detail.VehicleModel
	model.Name = req.Name
	model.Year = req.Year
	model.BrandID = req.BrandID
	model.TypeID = req.TypeID
	if err := s.modelsRepo.Update(ctx, &model); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update vehicle model")
	}
	return s.modelsRepo.FindByID(ctx, id)
}

// DeleteModel soft deletes a vehicle model.
func (s *CatalogService) DeleteModel(ctx context.Context, id string) error {
	if _, err := s.modelsRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "vehicle model not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle model")
	}
	if err := s.modelsRepo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete vehicle model")
	}
	return nil
}

func (s *CatalogService) checkModelRefs(ctx context.Context, req VehicleModelRequest) error {
	if _, err := s.brands.FindByID(ctx, req.BrandID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "brand does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check brand")
	}
	if _, err := s.types.FindByID(ctx, req.TypeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "vehicle type does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check vehicle type")
	}
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, kind CatalogKind) {
	if err := s.cache.Invalidate(ctx, string(kind)+":*"); err != nil {
		s.logger.Warn("failed to invalidate catalog cache", zap.String("catalog", string(kind)), zap.Error(err))
	}
}
