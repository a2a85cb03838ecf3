package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycad-io/fleet-api/internal/models"
	"github.com/mycad-io/fleet-api/internal/query"
)

func rentalColumns() []string {
	return []string{
		"id", "folio", "vehicle_id", "client_id", "start_date", "end_date",
		"pickup_location", "dropoff_location", "daily_rate", "deposit", "total_cost", "payment_status",
		"initial_mileage", "final_mileage", "fuel_level_start", "fuel_level_end",
		"comments", "status", "enabled", "created_at", "updated_at",
		"client_name", "client_company", "plate_number", "model_name", "brand_name",
	}
}

func rentalRow(rows *sqlmock.Rows, id, folio string, status models.RentalStatus) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, folio, "v1", "c1", now, now.Add(72*time.Hour),
		"North lot", "North lot", 1200.0, 5000.0, 3600.0, string(models.PaymentStatusPending),
		12000, nil, 1.0, nil,
		"", string(status), true, now, now,
		"ACME", "ACME Corp", "ABC-123", "Hilux", "Toyota")
}

func TestRentalSearchMapsStatusLabels(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRentalRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("r.status IN ($1, $2)")).
		WithArgs(string(models.RentalStatusPending), string(models.RentalStatusActive)).
		WillReturnRows(rentalRow(sqlmock.NewRows(rentalColumns()), "r1", "RNT-2026-A1B2C3", models.RentalStatusActive))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT r.id)")).
		WithArgs(string(models.RentalStatusPending), string(models.RentalStatusActive)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	page, err := repo.Search(context.Background(), query.Request{StatusLabels: []string{"Pendiente", "Activa"}})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, "RNT-2026-A1B2C3", page.Data[0].Folio)
	assert.Equal(t, "ACME", page.Data[0].ClientName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRentalRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.id = $1")).
		WithArgs("r1").
		WillReturnRows(rentalRow(sqlmock.NewRows(rentalColumns()), "r1", "RNT-2026-A1B2C3", models.RentalStatusPending))

	detail, err := repo.FindByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Toyota", detail.BrandName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalOverlapping(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRentalRepository(db)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("start_date <= $5 AND end_date >= $4")).
		WithArgs("v1", string(models.RentalStatusPending), string(models.RentalStatusActive), start, end).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	overlap, err := repo.OverlappingRental(context.Background(), "v1", start, end, "")
	require.NoError(t, err)
	assert.True(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalSetStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRentalRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE rentals SET status = $2, updated_at = $3 WHERE id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetStatus(context.Background(), "r1", models.RentalStatusCompleted))
	assert.NoError(t, mock.ExpectationsWereMet())
}
