package models

import "time"

// CatalogEntry is a named lookup record. Brands, vehicle types and conditions
// all share this shape.
type CatalogEntry struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Enabled   bool      `db:"enabled" json:"enabled"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// VehicleModel links a model name and year to a brand and type.
type VehicleModel struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Year      int       `db:"year" json:"year"`
	BrandID   string    `db:"brand_id" json:"brand_id"`
	TypeID    string    `db:"type_id" json:"type_id"`
	Enabled   bool      `db:"enabled" json:"enabled"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// VehicleModelDetail joins a model with its brand and type names.
type VehicleModelDetail struct {
	VehicleModel
	BrandName string `db:"brand_name" json:"brand_name"`
	TypeName  string `db:"type_name" json:"type_name"`
}
