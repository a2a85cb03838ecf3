package models

import "time"

// VehicleStatus enumerates operational vehicle states.
type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "AVAILABLE"
	VehicleStatusRented      VehicleStatus = "RENTED"
	VehicleStatusMaintenance VehicleStatus = "MAINTENANCE"
	VehicleStatusRetired     VehicleStatus = "RETIRED"
)

// VehicleStatusLabels maps display-layer labels to internal vehicle status codes.
var VehicleStatusLabels = map[string]string{
	"Disponible":       string(VehicleStatusAvailable),
	"Rentado":          string(VehicleStatusRented),
	"En Mantenimiento": string(VehicleStatusMaintenance),
	"Retirado":         string(VehicleStatusRetired),
}

// Vehicle represents a fleet vehicle stored in the vehicles table.
type Vehicle struct {
	ID              string        `db:"id" json:"id"`
	ModelID         string        `db:"model_id" json:"model_id"`
	ConditionID     *string       `db:"condition_id" json:"condition_id,omitempty"`
	PlateNumber     string        `db:"plate_number" json:"plate_number"`
	SerialNumber    string        `db:"serial_number" json:"serial_number"`
	EconNumber      string        `db:"econ_number" json:"econ_number"`
	AcquisitionDate *time.Time    `db:"acquisition_date" json:"acquisition_date,omitempty"`
	Cost            *float64      `db:"cost" json:"cost,omitempty"`
	Mileage         int           `db:"mileage" json:"mileage"`
	Status          VehicleStatus `db:"status" json:"status"`
	Comments        string        `db:"comments" json:"comments"`
	Enabled         bool          `db:"enabled" json:"enabled"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// VehicleDetail joins the vehicle with its model, brand, type and condition names.
type VehicleDetail struct {
	Vehicle
	ModelName     string       `db:"model_name" json:"model_name"`
	ModelYear     int          `db:"model_year" json:"model_year"`
	BrandName     string       `db:"brand_name" json:"brand_name"`
	TypeName      string       `db:"type_name" json:"type_name"`
	ConditionName *string      `db:"condition_name" json:"condition_name,omitempty"`
	Images        []Attachment `db:"-" json:"images,omitempty"`
}
