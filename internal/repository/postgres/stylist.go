package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shearbook/booking-api/internal/model"
	"github.com/shearbook/booking-api/internal/repository"
)

func (r *stylistRepository) Create(ctx context.Context, stylist *model.Stylist) error {
	query := `
		INSERT INTO stylists (id, name, bio, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	stylist.ID = uuid.New()
	stylist.CreatedAt = time.Now()
	stylist.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		stylist.ID,
		stylist.Name,
		stylist.Bio,
		stylist.Active,
		stylist.CreatedAt,
		stylist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create stylist: %w", err)
	}
	return nil
}

func (r *stylistRepository) Get(ctx context.Context, id uuid.UUID) (*model.Stylist, error) {
	query := `
		SELECT id, name, bio, active, created_at, updated_at
		FROM stylists
		WHERE id = $1
	`
	var stylist model.Stylist
	err := r.db.GetContext(ctx, &stylist, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stylist: %w", err)
	}
	return &stylist, nil
}

func (r *stylistRepository) Update(ctx context.Context, stylist *model.Stylist) error {
	query := `
		UPDATE stylists
		SET name = $1, bio = $2, active = $3, updated_at = $4
		WHERE id = $5
	`
	stylist.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		stylist.Name,
		stylist.Bio,
		stylist.Active,
		stylist.UpdatedAt,
		stylist.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update stylist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *stylistRepository) List(ctx context.Context) ([]*model.Stylist, error) {
	query := `
		SELECT id, name, bio, active, created_at, updated_at
		FROM stylists
		ORDER BY name ASC
	`
	var stylists []*model.Stylist
	if err := r.db.SelectContext(ctx, &stylists, query); err != nil {
		return nil, fmt.Errorf("failed to list stylists: %w", err)
	}
	return stylists, nil
}
