package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mycad-io/fleet-api/internal/folio"
	"github.com/mycad-io/fleet-api/internal/models"
)

// FolioRepository backs the folio generator onto the tables owning each
// record family. Disabled records keep their folio reserved, so queries never
// filter on enabled.
type FolioRepository struct {
	db *sqlx.DB
}

// NewFolioRepository constructs a FolioRepository.
func NewFolioRepository(db *sqlx.DB) *FolioRepository {
	return &FolioRepository{db: db}
}

// LastFolio returns the most recently issued folio for the category. Ordering
// is by created_at first, folio second: since sequential folios only ever grow,
// the two orders pick the same row, and created_at stays correct even if the
// numeric suffix ever overflows its zero padding and sorts wrong as text.
func (r *FolioRepository) LastFolio(ctx context.Context, category folio.Category) (string, error) {
	var query string
	args := []interface{}{}
	switch category {
	case folio.CategoryRepair:
		query = `SELECT folio FROM repair_reports ORDER BY created_at DESC, folio DESC LIMIT 1`
	case folio.CategoryPreventive:
		query = `SELECT folio FROM service_reports WHERE report_type = $1 ORDER BY created_at DESC, folio DESC LIMIT 1`
		args = append(args, models.ServiceReportPreventive)
	case folio.CategoryCorrective:
		query = `SELECT folio FROM service_reports WHERE report_type = $1 ORDER BY created_at DESC, folio DESC LIMIT 1`
		args = append(args, models.ServiceReportCorrective)
	case folio.CategoryRental:
		query = `SELECT folio FROM rentals ORDER BY created_at DESC, folio DESC LIMIT 1`
	default:
		return "", fmt.Errorf("%w: %q", folio.ErrInvalidCategory, category)
	}

	var last string
	if err := r.db.GetContext(ctx, &last, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("last folio for %s: %w", category, err)
	}
	return last, nil
}

// Exists reports whether the folio is already assigned within the category.
func (r *FolioRepository) Exists(ctx context.Context, category folio.Category, value string) (bool, error) {
	var query string
	switch category {
	case folio.CategoryRepair:
		query = `SELECT 1 FROM repair_reports WHERE folio = $1 LIMIT 1`
	case folio.CategoryPreventive, folio.CategoryCorrective:
		query = `SELECT 1 FROM service_reports WHERE folio = $1 LIMIT 1`
	case folio.CategoryRental:
		query = `SELECT 1 FROM rentals WHERE folio = $1 LIMIT 1`
	default:
		return false, fmt.Errorf("%w: %q", folio.ErrInvalidCategory, category)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query, value); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check folio %s: %w", value, err)
	}
	return true, nil
}
