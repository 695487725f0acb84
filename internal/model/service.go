package model

import (
	"time"

	"github.com/google/uuid"
)

type Service struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Category        string    `db:"category" json:"category"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// StylistService is the per-stylist price and duration override for a
// service. A service is bookable with a stylist only if an active row exists.
type StylistService struct {
	StylistID       uuid.UUID `db:"stylist_id" json:"stylist_id"`
	ServiceID       uuid.UUID `db:"service_id" json:"service_id"`
	PriceCents      int64     `db:"price_cents" json:"price_cents"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type CreateServiceRequest struct {
	Name            string `json:"name" binding:"required,max=120"`
	Category        string `json:"category" binding:"max=60"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,gt=0"`
}

type UpsertStylistServiceRequest struct {
	ServiceID       uuid.UUID `json:"service_id" binding:"required"`
	PriceCents      int64     `json:"price_cents" binding:"required,gte=0"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,gt=0"`
	Active          *bool     `json:"active"`
}
