package models

import "time"

// Client represents a rental customer.
type Client struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Company     string    `db:"company" json:"company"`
	Email       string    `db:"email" json:"email"`
	PhoneNumber string    `db:"phone_number" json:"phone_number"`
	Enabled     bool      `db:"enabled" json:"enabled"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
