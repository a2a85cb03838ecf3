package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mycad-io/fleet-api/internal/models"
	"github.com/mycad-io/fleet-api/internal/query"
	"github.com/mycad-io/fleet-api/pkg/export"
	"github.com/mycad-io/fleet-api/pkg/storage"
)

// exportPageSize bounds how many rows a single export pulls.
const exportPageSize = 10000

type vehicleLister interface {
	Search(ctx context.Context, req query.Request) (query.Page[models.VehicleDetail], error)
}

type rentalLister interface {
	Search(ctx context.Context, req query.Request) (query.Page[models.RentalDetail], error)
}

type repairReportLister interface {
	Search(ctx context.Context, req query.Request) (query.Page[models.RepairReportDetail], error)
}

type serviceReportLister interface {
	Search(ctx context.Context, req query.Request) (query.Page[models.ServiceReportDetail], error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportSources bundles the list readers an export can draw from.
type ExportSources struct {
	Vehicles       vehicleLister
	Rentals        rentalLister
	RepairReports  repairReportLister
	ServiceReports serviceReportLister
}

// ExportService builds list datasets and persists rendered files.
type ExportService struct {
	sources ExportSources
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// NewExportService constructs an ExportService.
func NewExportService(sources ExportSources, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		sources: sources,
		storage: storage,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate builds the dataset for a job and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/exports/download/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", job.Entity, timestamp, job.Params.Format)
}

func listRequest(params models.ExportJobParams) query.Request {
	return query.Request{
		Search:       params.Search,
		StatusLabels: params.StatusLabels,
		Page:         1,
		PageSize:     exportPageSize,
	}
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ExportJob) (export.Dataset, string, error) {
	switch job.Entity {
	case models.ExportEntityVehicles:
		return s.buildVehicleDataset(ctx, job.Params)
	case models.ExportEntityRentals:
		return s.buildRentalDataset(ctx, job.Params)
	case models.ExportEntityRepairReports:
		return s.buildRepairReportDataset(ctx, job.Params)
	case models.ExportEntityServiceReports:
		return s.buildServiceReportDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported export entity %s", job.Entity)
	}
}

func (s *ExportService) buildVehicleDataset(ctx context.Context, params models.ExportJobParams) (export.Dataset, string, error) {
	page, err := s.sources.Vehicles.Search(ctx, listRequest(params))
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(page.Data))
	for _, v := range page.Data {
		rows = append(rows, map[string]string{
			"Plate":      v.PlateNumber,
			"Economic #": v.EconNumber,
			"Brand":      v.BrandName,
			"Model":      v.ModelName,
			"Year":       fmt.Sprintf("%d", v.ModelYear),
			"Type":       v.TypeName,
			"Mileage":    fmt.Sprintf("%d", v.Mileage),
			"Status":     string(v.Status),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Plate", "Economic #", "Brand", "Model", "Year", "Type", "Mileage", "Status"},
		Rows:    rows,
	}
	return dataset, "Fleet Vehicles", nil
}

func (s *ExportService) buildRentalDataset(ctx context.Context, params models.ExportJobParams) (export.Dataset, string, error) {
	page, err := s.sources.Rentals.Search(ctx, listRequest(params))
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(page.Data))
	for _, r := range page.Data {
		rows = append(rows, map[string]string{
			"Folio":      r.Folio,
			"Client":     r.ClientName,
			"Vehicle":    fmt.Sprintf("%s %s (%s)", r.BrandName, r.ModelName, r.PlateNumber),
			"Start":      formatExportDate(r.StartDate),
			"End":        formatExportDate(r.EndDate),
			"Daily Rate": fmt.Sprintf("%.2f", r.DailyRate),
			"Total":      formatExportAmount(r.TotalCost),
			"Payment":    string(r.PaymentStatus),
			"Status":     string(r.Status),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Folio", "Client", "Vehicle", "Start", "End", "Daily Rate", "Total", "Payment", "Status"},
		Rows:    rows,
	}
	return dataset, "Rentals", nil
}

func (s *ExportService) buildRepairReportDataset(ctx context.Context, params models.ExportJobParams) (export.Dataset, string, error) {
	page, err := s.sources.RepairReports.Search(ctx, listRequest(params))
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(page.Data))
	for _, r := range page.Data {
		rows = append(rows, map[string]string{
			"Folio":        r.Folio,
			"Vehicle":      fmt.Sprintf("%s %s (%s)", r.BrandName, r.ModelName, r.PlateNumber),
			"Failure Date": r.FailureDate.Format("2006-01-02"),
			"Repair Date":  r.RepairDate.Format("2006-01-02"),
			"Workshop":     r.WorkshopName,
			"Total Cost":   fmt.Sprintf("%.2f", r.TotalCost),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Folio", "Vehicle", "Failure Date", "Repair Date", "Workshop", "Total Cost"},
		Rows:    rows,
	}
	return dataset, "Repair Reports", nil
}

func (s *ExportService) buildServiceReportDataset(ctx context.Context, params models.ExportJobParams) (export.Dataset, string, error) {
	page, err := s.sources.ServiceReports.Search(ctx, listRequest(params))
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(page.Data))
	for _, r := range page.Data {
		rows = append(rows, map[string]string{
			"Folio":        r.Folio,
			"Vehicle":      fmt.Sprintf("%s %s (%s)", r.BrandName, r.ModelName, r.PlateNumber),
			"Type":         string(r.ReportType),
			"Service Date": r.ServiceDate.Format("2006-01-02"),
			"Total Cost":   fmt.Sprintf("%.2f", r.TotalCost),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Folio", "Vehicle", "Type", "Service Date", "Total Cost"},
		Rows:    rows,
	}
	return dataset, "Service Reports", nil
}

func formatExportDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func formatExportAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}
