package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mycad-io/fleet-api/internal/folio"
	"github.com/mycad-io/fleet-api/internal/models"
	"github.com/mycad-io/fleet-api/internal/query"
)

type serviceReportRepoMock struct {
	reports   map[string]*models.ServiceReportDetail
	created   *models.ServiceReport
	deletedID string
}

func newServiceReportRepoMock() *serviceReportRepoMock {
	return &serviceReportRepoMock{reports: map[string]*models.ServiceReportDetail{}}
}

func (m *serviceReportRepoMock) Search(ctx context.Context, req query.Request) (query.Page[models.ServiceReportDetail], error) {
	return query.Page[models.ServiceReportDetail]{Data: []models.ServiceReportDetail{}, Pagination: models.NewPagination(0, req.Page, req.PageSize)}, nil
}

func (m *serviceReportRepoMock) FindByID(ctx context.Context, id string) (*models.ServiceReportDetail, error) {
	detail, ok := m.reports[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *detail
	return &copied, nil
}

func (m *serviceReportRepoMock) Create(ctx context.Context, report *models.ServiceReport, parts []models.ReportPart) error {
	if report.ID == "" {
		report.ID = "srv-new"
	}
	m.created = report
	m.reports[report.ID] = &models.ServiceReportDetail{ServiceReport: *report, Parts: parts}
	return nil
}

func (m *serviceReportRepoMock) Update(ctx context.Context, report *models.ServiceReport, parts []models.ReportPart) error {
	detail := m.reports[report.ID]
	detail.ServiceReport = *report
	detail.Parts = parts
	return nil
}

func (m *serviceReportRepoMock) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return nil
}

func newServiceReportServiceForTest(repo *serviceReportRepoMock, folios *folioIssuerMock) *ServiceReportService {
	return NewServiceReportService(repo, &rentalVehiclesMock{vehicle: availableVehicle()}, attachmentListerMock{}, folios, nil, zap.NewNop())
}

func TestFolioCategoryPerReportType(t *testing.T) {
	assert.Equal(t, folio.CategoryPreventive, FolioCategory(models.ServiceReportPreventive))
	assert.Equal(t, folio.CategoryCorrective, FolioCategory(models.ServiceReportCorrective))
}

func TestServiceReportServiceCreatePreventive(t *testing.T) {
	repo := newServiceReportRepoMock()
	folios := &folioIssuerMock{issued: "MANT-0004"}
	svc := newServiceReportServiceForTest(repo, folios)

	detail, err := svc.Create(context.Background(), ServiceReportRequest{
		VehicleID:   "veh-1",
		ReportType:  models.ServiceReportPreventive,
		ServiceDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "oil and filters",
		TotalCost:   350,
		Parts:       []ReportPartRequest{{PartName: "Oil filter", ActionType: models.PartActionReplaced, Cost: 120}},
	})
	require.NoError(t, err)
	assert.Equal(t, "MANT-0004", detail.Folio)
	assert.Equal(t, models.ServiceReportPreventive, repo.created.ReportType)
	assert.Equal(t, 1, folios.calls)
}

func TestServiceReportServiceCreateRejectsUnknownType(t *testing.T) {
	svc := newServiceReportServiceForTest(newServiceReportRepoMock(), &folioIssuerMock{issued: "SERV-0001"})

	_, err := svc.Create(context.Background(), ServiceReportRequest{
		VehicleID:   "veh-1",
		ReportType:  models.ServiceReportType("PREDICTIVE"),
		ServiceDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "oil and filters",
	})
	require.Error(t, err)
}

func TestServiceReportServiceUpdateRejectsTypeChange(t *testing.T) {
	repo := newServiceReportRepoMock()
	repo.reports["srv-1"] = &models.ServiceReportDetail{ServiceReport: models.ServiceReport{
		ID: "srv-1", Folio: "MANT-0002", VehicleID: "veh-1",
		ReportType:  models.ServiceReportPreventive,
		ServiceDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "oil and filters", Enabled: true,
	}}
	svc := newServiceReportServiceForTest(repo, &folioIssuerMock{})

	_, err := svc.Update(context.Background(), "srv-1", ServiceReportRequest{
		VehicleID:   "veh-1",
		ReportType:  models.ServiceReportCorrective,
		ServiceDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "brake pads",
	})
	require.Error(t, err)
}

func TestServiceReportServiceUpdateKeepsFolio(t *testing.T) {
	repo := newServiceReportRepoMock()
	repo.reports["srv-1"] = &models.ServiceReportDetail{ServiceReport: models.ServiceReport{
		ID: "srv-1", Folio: "SERV-0009", VehicleID: "veh-1",
		ReportType:  models.ServiceReportCorrective,
		ServiceDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "brake pads", Enabled: true,
	}}
	folios := &folioIssuerMock{issued: "SERV-9999"}
	svc := newServiceReportServiceForTest(repo, folios)

	detail, err := svc.Update(context.Background(), "srv-1", ServiceReportRequest{
		VehicleID:   "veh-1",
		ReportType:  models.ServiceReportCorrective,
		ServiceDate: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		Description: "brake pads and discs",
	})
	require.NoError(t, err)
	assert.Equal(t, "SERV-0009", detail.Folio)
	assert.Zero(t, folios.calls)
}
