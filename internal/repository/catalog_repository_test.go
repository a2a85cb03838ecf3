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
)

func TestBrandList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBrandRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "enabled", "created_at", "updated_at"}).
		AddRow("b1", "Ford", true, now, now).
		AddRow("b2", "Toyota", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, enabled, created_at, updated_at FROM brands WHERE enabled = TRUE ORDER BY name ASC")).
		WillReturnRows(rows)

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Ford", entries[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConditionCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewConditionRepository(db)

	mock.ExpectExec("INSERT INTO conditions").WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.CatalogEntry{Name: "Excelente", Enabled: true}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVehicleTypeExistsByName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVehicleTypeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM vehicle_types WHERE LOWER(name) = LOWER($1) AND enabled = TRUE LIMIT 1")).
		WithArgs("Pickup").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByName(context.Background(), "Pickup", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBrandDeleteDisables(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBrandRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE brands SET enabled = FALSE, updated_at = $2 WHERE id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "b1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
