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

func (r *scheduleRepository) GetWeekly(ctx context.Context, stylistID uuid.UUID, dayOfWeek int) (*model.WeeklySchedule, error) {
	query := `
		SELECT id, stylist_id, day_of_week, closed, open_minute, close_minute, latest_start_minute, created_at, updated_at
		FROM stylist_schedules
		WHERE stylist_id = $1 AND day_of_week = $2
	`
	var rule model.WeeklySchedule
	err := r.db.GetContext(ctx, &rule, query, stylistID, dayOfWeek)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly schedule: %w", err)
	}
	return &rule, nil
}

func (r *scheduleRepository) GetOverride(ctx context.Context, stylistID uuid.UUID, dayDate string) (*model.ScheduleOverride, error) {
	query := `
		SELECT id, stylist_id, day_date, closed, open_minute, close_minute, latest_start_minute, created_at, updated_at
		FROM stylist_schedule_overrides
		WHERE stylist_id = $1 AND day_date = $2
	`
	var override model.ScheduleOverride
	err := r.db.GetContext(ctx, &override, query, stylistID, dayDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule override: %w", err)
	}
	return &override, nil
}

func (r *scheduleRepository) UpsertWeekly(ctx context.Context, rule *model.WeeklySchedule) error {
	query := `
		INSERT INTO stylist_schedules (id, stylist_id, day_of_week, closed, open_minute, close_minute, latest_start_minute, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (stylist_id, day_of_week) DO UPDATE
		SET closed = EXCLUDED.closed,
			open_minute = EXCLUDED.open_minute,
			close_minute = EXCLUDED.close_minute,
			latest_start_minute = EXCLUDED.latest_start_minute,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	now := time.Now()
	rule.UpdatedAt = now

	// RETURNING hands back the existing row's id when the conflict branch
	// fires, so the caller always sees the persisted id.
	err := r.db.GetContext(ctx, &rule.ID, query,
		uuid.New(),
		rule.StylistID,
		rule.DayOfWeek,
		rule.Closed,
		rule.OpenMinute,
		rule.CloseMinute,
		rule.LatestStartMinute,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert weekly schedule: %w", err)
	}
	return nil
}

func (r *scheduleRepository) UpsertOverride(ctx context.Context, override *model.ScheduleOverride) error {
	query := `
		INSERT INTO stylist_schedule_overrides (id, stylist_id, day_date, closed, open_minute, close_minute, latest_start_minute, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (stylist_id, day_date) DO UPDATE
		SET closed = EXCLUDED.closed,
			open_minute = EXCLUDED.open_minute,
			close_minute = EXCLUDED.close_minute,
			latest_start_minute = EXCLUDED.latest_start_minute,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	now := time.Now()
	override.UpdatedAt = now

	err := r.db.GetContext(ctx, &override.ID, query,
		uuid.New(),
		override.StylistID,
		override.DayDate,
		override.Closed,
		override.OpenMinute,
		override.CloseMinute,
		override.LatestStartMinute,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert schedule override: %w", err)
	}
	return nil
}

func (r *scheduleRepository) ListWeekly(ctx context.Context, stylistID uuid.UUID) ([]*model.WeeklySchedule, error) {
	query := `
		SELECT id, stylist_id, day_of_week, closed, open_minute, close_minute, latest_start_minute, created_at, updated_at
		FROM stylist_schedules
		WHERE stylist_id = $1
		ORDER BY day_of_week ASC
	`
	var rules []*model.WeeklySchedule
	if err := r.db.SelectContext(ctx, &rules, query, stylistID); err != nil {
		return nil, fmt.Errorf("failed to list weekly schedules: %w", err)
	}
	return rules, nil
}
