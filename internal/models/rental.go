package models

import "time"

// RentalStatus enumerates rental lifecycle states.
type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "PENDING"
	RentalStatusActive    RentalStatus = "ACTIVE"
	RentalStatusCompleted RentalStatus = "COMPLETED"
	RentalStatusCanceled  RentalStatus = "CANCELED"
)

// PaymentStatus enumerates payment states for a rental.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusPartial   PaymentStatus = "PARTIAL"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// RentalStatusLabels maps display-layer labels to internal rental status codes.
// Unrecognized labels are dropped from filters rather than rejected.
var RentalStatusLabels = map[string]string{
	"Pendiente":  string(RentalStatusPending),
	"Activa":     string(RentalStatusActive),
	"Completada": string(RentalStatusCompleted),
	"Cancelada":  string(RentalStatusCanceled),
}

// PaymentStatusLabels maps display-layer labels to internal payment status codes.
var PaymentStatusLabels = map[string]string{
	"Pendiente":           string(PaymentStatusPending),
	"Pagado":              string(PaymentStatusCompleted),
	"Parcialmente Pagado": string(PaymentStatusPartial),
	"Reembolsado":         string(PaymentStatusRefunded),
}

// Rental represents a vehicle rental agreement.
type Rental struct {
	ID              string        `db:"id" json:"id"`
	Folio           string        `db:"folio" json:"folio"`
	VehicleID       string        `db:"vehicle_id" json:"vehicle_id"`
	ClientID        string        `db:"client_id" json:"client_id"`
	StartDate       *time.Time    `db:"start_date" json:"start_date,omitempty"`
	EndDate         *time.Time    `db:"end_date" json:"end_date,omitempty"`
	PickupLocation  string        `db:"pickup_location" json:"pickup_location"`
	DropoffLocation string        `db:"dropoff_location" json:"dropoff_location"`
	DailyRate       float64       `db:"daily_rate" json:"daily_rate"`
	Deposit         *float64      `db:"deposit" json:"deposit,omitempty"`
	TotalCost       *float64      `db:"total_cost" json:"total_cost,omitempty"`
	PaymentStatus   PaymentStatus `db:"payment_status" json:"payment_status"`
	InitialMileage  *int          `db:"initial_mileage" json:"initial_mileage,omitempty"`
	FinalMileage    *int          `db:"final_mileage" json:"final_mileage,omitempty"`
	FuelLevelStart  *float64      `db:"fuel_level_start" json:"fuel_level_start,omitempty"`
	FuelLevelEnd    *float64      `db:"fuel_level_end" json:"fuel_level_end,omitempty"`
	Comments        string        `db:"comments" json:"comments"`
	Status          RentalStatus  `db:"status" json:"status"`
	Enabled         bool          `db:"enabled" json:"enabled"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// RentalDetail joins a rental with client and vehicle display fields.
type RentalDetail struct {
	Rental
	ClientName    string       `db:"client_name" json:"client_name"`
	ClientCompany string       `db:"client_company" json:"client_company"`
	PlateNumber   string       `db:"plate_number" json:"plate_number"`
	ModelName     string       `db:"model_name" json:"model_name"`
	BrandName     string       `db:"brand_name" json:"brand_name"`
	Files         []Attachment `db:"-" json:"files,omitempty"`
}
