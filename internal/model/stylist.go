package model

import (
	"time"

	"github.com/google/uuid"
)

type Stylist struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Bio       string    `db:"bio" json:"bio,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type CreateStylistRequest struct {
	Name string `json:"name" binding:"required,max=120"`
	Bio  string `json:"bio" binding:"max=2000"`
}

type UpdateStylistRequest struct {
	Name   *string `json:"name" binding:"omitempty,max=120"`
	Bio    *string `json:"bio" binding:"omitempty,max=2000"`
	Active *bool   `json:"active"`
}
