package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycad-io/fleet-api/internal/folio"
	"github.com/mycad-io/fleet-api/internal/models"
)

func TestFolioLastFolioRepair(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFolioRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT folio FROM repair_reports ORDER BY created_at DESC, folio DESC LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"folio"}).AddRow("RPR-0041"))

	last, err := repo.LastFolio(context.Background(), folio.CategoryRepair)
	require.NoError(t, err)
	assert.Equal(t, "RPR-0041", last)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFolioLastFolioFiltersServiceType(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFolioRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT folio FROM service_reports WHERE report_type = $1")).
		WithArgs(string(models.ServiceReportPreventive)).
		WillReturnRows(sqlmock.NewRows([]string{"folio"}).AddRow("MANT-0007"))

	last, err := repo.LastFolio(context.Background(), folio.CategoryPreventive)
	require.NoError(t, err)
	assert.Equal(t, "MANT-0007", last)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFolioLastFolioEmptyTable(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFolioRepository(db)

	mock.ExpectQuery("SELECT folio FROM repair_reports").
		WillReturnRows(sqlmock.NewRows([]string{"folio"}))

	last, err := repo.LastFolio(context.Background(), folio.CategoryRepair)
	require.NoError(t, err)
	assert.Empty(t, last)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFolioExistsRental(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFolioRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM rentals WHERE folio = $1 LIMIT 1")).
		WithArgs("RNT-2026-ABCDEF").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), folio.CategoryRental, "RNT-2026-ABCDEF")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFolioExistsNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFolioRepository(db)

	mock.ExpectQuery("SELECT 1 FROM rentals").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.Exists(context.Background(), folio.CategoryRental, "RNT-2026-000000")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFolioInvalidCategory(t *testing.T) {
	db, _, cleanup := newMock(t)
	defer cleanup()
	repo := NewFolioRepository(db)

	_, err := repo.LastFolio(context.Background(), folio.Category("BOGUS"))
	assert.ErrorIs(t, err, folio.ErrInvalidCategory)

	_, err = repo.Exists(context.Background(), folio.Category("BOGUS"), "X-0001")
	assert.ErrorIs(t, err, folio.ErrInvalidCategory)
}
