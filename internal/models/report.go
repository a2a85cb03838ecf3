package models

import "time"

// ServiceReportType distinguishes maintenance report categories.
type ServiceReportType string

const (
	ServiceReportPreventive ServiceReportType = "PREVENTIVE"
	ServiceReportCorrective ServiceReportType = "CORRECTIVE"
)

// PartAction enumerates what was done with a part during a repair or service.
type PartAction string

const (
	PartActionReplaced PartAction = "REPLACED"
	PartActionRepaired PartAction = "REPAIRED"
	PartActionAdjusted PartAction = "ADJUSTED"
)

// RepairReport documents an unplanned repair of a vehicle.
type RepairReport struct {
	ID              string    `db:"id" json:"id"`
	Folio           string    `db:"folio" json:"folio"`
	VehicleID       string    `db:"vehicle_id" json:"vehicle_id"`
	FailureDate     time.Time `db:"failure_date" json:"failure_date"`
	StartRepairDate time.Time `db:"start_repair_date" json:"start_repair_date"`
	RepairDate      time.Time `db:"repair_date" json:"repair_date"`
	Description     string    `db:"description" json:"description"`
	TotalCost       float64   `db:"total_cost" json:"total_cost"`
	Comments        string    `db:"comments" json:"comments"`
	WorkshopType    string    `db:"workshop_type" json:"workshop_type"`
	WorkshopName    string    `db:"workshop_name" json:"workshop_name"`
	WorkshopContact string    `db:"workshop_contact" json:"workshop_contact"`
	Enabled         bool      `db:"enabled" json:"enabled"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// RepairReportDetail joins a repair report with vehicle display fields.
type RepairReportDetail struct {
	RepairReport
	PlateNumber string       `db:"plate_number" json:"plate_number"`
	ModelName   string       `db:"model_name" json:"model_name"`
	BrandName   string       `db:"brand_name" json:"brand_name"`
	TypeName    string       `db:"type_name" json:"type_name"`
	Parts       []ReportPart `db:"-" json:"repaired_parts,omitempty"`
	Attachments []Attachment `db:"-" json:"attachments,omitempty"`
}

// ServiceReport documents scheduled (preventive) or corrective maintenance.
type ServiceReport struct {
	ID          string            `db:"id" json:"id"`
	Folio       string            `db:"folio" json:"folio"`
	VehicleID   string            `db:"vehicle_id" json:"vehicle_id"`
	ReportType  ServiceReportType `db:"report_type" json:"report_type"`
	ServiceDate time.Time         `db:"service_date" json:"service_date"`
	Description string            `db:"description" json:"description"`
	TotalCost   float64           `db:"total_cost" json:"total_cost"`
	Comments    string            `db:"comments" json:"comments"`
	Enabled     bool              `db:"enabled" json:"enabled"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// ServiceReportDetail joins a service report with vehicle display fields.
type ServiceReportDetail struct {
	ServiceReport
	PlateNumber string       `db:"plate_number" json:"plate_number"`
	ModelName   string       `db:"model_name" json:"model_name"`
	BrandName   string       `db:"brand_name" json:"brand_name"`
	Parts       []ReportPart `db:"-" json:"replaced_parts,omitempty"`
	Attachments []Attachment `db:"-" json:"attachments,omitempty"`
}

// ReportPart is a part touched during a repair or service report.
type ReportPart struct {
	ID         string     `db:"id" json:"id"`
	ReportID   string     `db:"report_id" json:"report_id"`
	PartName   string     `db:"part_name" json:"part_name"`
	ActionType PartAction `db:"action_type" json:"action_type"`
	Cost       float64    `db:"cost" json:"cost"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
