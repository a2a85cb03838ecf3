package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mycad-io/fleet-api/internal/folio"
	appErrors "github.com/mycad-io/fleet-api/pkg/errors"
)

// FolioService issues record folios and translates generator failures into
// HTTP-aware errors.
type FolioService struct {
	generator *folio.Generator
	logger    *zap.Logger
}

// NewFolioService constructs a FolioService.
func NewFolioService(generator *folio.Generator, logger *zap.Logger) *FolioService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FolioService{generator: generator, logger: logger}
}

// Next mints the next folio for a category.
func (s *FolioService) Next(ctx context.Context, category folio.Category) (string, error) {
	issued, err := s.generator.Next(ctx, category)
	if err != nil {
		switch {
		case errors.Is(err, folio.ErrInvalidCategory):
			return "", appErrors.Wrap(err, appErrors.ErrInvalidFolioCategory.Code, appErrors.ErrInvalidFolioCategory.Status, appErrors.ErrInvalidFolioCategory.Message)
		case errors.Is(err, folio.ErrMalformedFolio):
			s.logger.Error("stored folio is malformed, refusing to mint", zap.String("category", string(category)), zap.Error(err))
			return "", appErrors.Wrap(err, appErrors.ErrMalformedFolio.Code, appErrors.ErrMalformedFolio.Status, appErrors.ErrMalformedFolio.Message)
		case errors.Is(err, folio.ErrExhausted):
			s.logger.Error("folio space exhausted", zap.String("category", string(category)))
			return "", appErrors.Wrap(err, appErrors.ErrFolioExhausted.Code, appErrors.ErrFolioExhausted.Status, appErrors.ErrFolioExhausted.Message)
		default:
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate folio")
		}
	}
	s.logger.Debug("folio issued", zap.String("category", string(category)), zap.String("folio", issued))
	return issued, nil
}
