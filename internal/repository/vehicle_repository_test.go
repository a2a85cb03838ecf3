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

func vehicleColumns() []string {
	return []string{
		"id", "model_id", "condition_id", "plate_number", "serial_number", "econ_number",
		"acquisition_date", "cost", "mileage", "status", "comments", "enabled", "created_at", "updated_at",
		"model_name", "model_year", "brand_name", "type_name", "condition_name",
	}
}

func vehicleRow(rows *sqlmock.Rows, id, plate string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, "m1", nil, plate, "SER-1", "ECO-1",
		nil, 250000.0, 12000, string(models.VehicleStatusAvailable), "", true, now, now,
		"Hilux", 2023, "Toyota", "Pickup", nil)
}

func TestVehicleSearch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVehicleRepository(db)

	mock.ExpectQuery("SELECT v.id, v.model_id").
		WillReturnRows(vehicleRow(sqlmock.NewRows(vehicleColumns()), "v1", "ABC-123"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT v.id)")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	page, err := repo.Search(context.Background(), query.Request{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, "ABC-123", page.Data[0].PlateNumber)
	assert.Equal(t, "Toyota", page.Data[0].BrandName)
	assert.Equal(t, 1, page.Pagination.TotalRecords)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVehicleSearchByStatusLabel(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVehicleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("v.status IN ($1)")).
		WithArgs(string(models.VehicleStatusAvailable)).
		WillReturnRows(sqlmock.NewRows(vehicleColumns()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT v.id)")).
		WithArgs(string(models.VehicleStatusAvailable)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	page, err := repo.Search(context.Background(), query.Request{StatusLabels: []string{"Disponible"}})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVehicleFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVehicleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE v.id = $1")).
		WithArgs("v1").
		WillReturnRows(vehicleRow(sqlmock.NewRows(vehicleColumns()), "v1", "ABC-123"))

	detail, err := repo.FindByID(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, "Hilux", detail.ModelName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVehicleExistsByPlate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVehicleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM vehicles WHERE plate_number = $1 AND enabled = TRUE LIMIT 1")).
		WithArgs("ABC-123").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByPlate(context.Background(), "ABC-123", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVehicleDeleteDisables(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVehicleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE vehicles SET enabled = FALSE, updated_at = $2 WHERE id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "v1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVehicleUpdateMileageGuardsRegression(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVehicleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE vehicles SET mileage = $2, updated_at = $3 WHERE id = $1 AND mileage < $2")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateMileage(context.Background(), "v1", 9000))
	assert.NoError(t, mock.ExpectationsWereMet())
}
