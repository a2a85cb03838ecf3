package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycad-io/fleet-api/internal/models"
	"github.com/mycad-io/fleet-api/internal/query"
)

func TestRepairReportCreateWithParts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRepairReportRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO repair_reports").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO repair_report_parts").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO repair_report_parts").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	report := &models.RepairReport{
		Folio:       "RPR-0001",
		VehicleID:   "v1",
		FailureDate: time.Now(),
		Description: "Transmission failure",
		TotalCost:   8500,
		Enabled:     true,
	}
	parts := []models.ReportPart{
		{PartName: "Clutch kit", ActionType: models.PartActionReplaced, Cost: 6000},
		{PartName: "Shift cable", ActionType: models.PartActionAdjusted, Cost: 0},
	}

	require.NoError(t, repo.Create(context.Background(), report, parts))
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, report.ID, parts[0].ReportID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepairReportCreateRollsBackOnPartFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRepairReportRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO repair_reports").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO repair_report_parts").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	report := &models.RepairReport{Folio: "RPR-0002", VehicleID: "v1", Enabled: true}
	parts := []models.ReportPart{{PartName: "Radiator", ActionType: models.PartActionReplaced, Cost: 2100}}

	err := repo.Create(context.Background(), report, parts)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepairReportSearchMatchesPartsAndWorkshop(t *testing.T) {
	stmt := query.Build(repairReportDescriptor, query.Request{Search: "alternator"})

	assert.Contains(t, stmt.ListSQL,
		"EXISTS (SELECT 1 FROM repair_report_parts p WHERE p.report_id = rr.id AND LOWER(p.part_name) LIKE")
	assert.Contains(t, stmt.ListSQL, "LOWER(rr.workshop_type) LIKE")
	assert.Contains(t, stmt.ListSQL, "LOWER(rr.workshop_contact) LIKE")
	assert.Contains(t, stmt.ListSQL, "LOWER(t.name) LIKE")
	assert.Contains(t, stmt.Args, "%alternator%")
}

func TestServiceReportSearchMatchesParts(t *testing.T) {
	stmt := query.Build(serviceReportDescriptor, query.Request{Search: "oil filter"})

	assert.Contains(t, stmt.ListSQL,
		"EXISTS (SELECT 1 FROM service_report_parts p WHERE p.report_id = sr.id AND LOWER(p.part_name) LIKE")
	assert.Contains(t, stmt.Args, "%oil filter%")
}

func TestRepairReportUpdateReplacesParts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRepairReportRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE repair_reports SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM repair_report_parts").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO repair_report_parts").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	report := &models.RepairReport{ID: "rep1", Folio: "RPR-0001", VehicleID: "v1"}
	parts := []models.ReportPart{{PartName: "Brake pads", ActionType: models.PartActionReplaced, Cost: 900}}

	require.NoError(t, repo.Update(context.Background(), report, parts))
	assert.NoError(t, mock.ExpectationsWereMet())
}
