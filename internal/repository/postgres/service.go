package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/shearbook/booking-api/internal/model"
	"github.com/shearbook/booking-api/internal/repository"
)

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	query := `
		INSERT INTO services (id, name, category, duration_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	service.ID = uuid.New()
	service.CreatedAt = time.Now()
	service.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		service.ID,
		service.Name,
		service.Category,
		service.DurationMinutes,
		service.CreatedAt,
		service.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := `
		SELECT id, name, category, duration_minutes, created_at, updated_at
		FROM services
		WHERE id = $1
	`
	var service model.Service
	err := r.db.GetContext(ctx, &service, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &service, nil
}

func (r *serviceRepository) List(ctx context.Context) ([]*model.Service, error) {
	query := `
		SELECT id, name, category, duration_minutes, created_at, updated_at
		FROM services
		ORDER BY category, name
	`
	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, query); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (r *serviceRepository) GetStylistServices(ctx context.Context, stylistID uuid.UUID, serviceIDs []uuid.UUID) ([]*model.StylistService, error) {
	query := `
		SELECT stylist_id, service_id, price_cents, duration_minutes, active, created_at, updated_at
		FROM stylist_services
		WHERE stylist_id = $1
		AND service_id = ANY($2)
		AND active = true
	`
	ids := make([]string, len(serviceIDs))
	for i, id := range serviceIDs {
		ids[i] = id.String()
	}

	var rows []*model.StylistService
	if err := r.db.SelectContext(ctx, &rows, query, stylistID, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get stylist services: %w", err)
	}
	return rows, nil
}

func (r *serviceRepository) UpsertStylistService(ctx context.Context, row *model.StylistService) error {
	query := `
		INSERT INTO stylist_services (stylist_id, service_id, price_cents, duration_minutes, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (stylist_id, service_id) DO UPDATE
		SET price_cents = EXCLUDED.price_cents,
			duration_minutes = EXCLUDED.duration_minutes,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	row.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		row.StylistID,
		row.ServiceID,
		row.PriceCents,
		row.DurationMinutes,
		row.Active,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert stylist service: %w", err)
	}
	return nil
}
