package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shearbook/booking-api/internal/model"
)

// All repository interfaces in one file
type (
	StylistRepository interface {
		Create(ctx context.Context, stylist *model.Stylist) error
		Get(ctx context.Context, id uuid.UUID) (*model.Stylist, error)
		Update(ctx context.Context, stylist *model.Stylist) error
		List(ctx context.Context) ([]*model.Stylist, error)
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		List(ctx context.Context) ([]*model.Service, error)
		// GetStylistServices returns the active price/duration rows a stylist
		// has for the given service ids. Missing rows are simply absent from
		// the result; the pricing resolver decides whether that is an error.
		GetStylistServices(ctx context.Context, stylistID uuid.UUID, serviceIDs []uuid.UUID) ([]*model.StylistService, error)
		UpsertStylistService(ctx context.Context, row *model.StylistService) error
	}

	ScheduleRepository interface {
		GetWeekly(ctx context.Context, stylistID uuid.UUID, dayOfWeek int) (*model.WeeklySchedule, error)
		GetOverride(ctx context.Context, stylistID uuid.UUID, dayDate string) (*model.ScheduleOverride, error)
		// UpsertWeekly and UpsertOverride write the persisted row's id back
		// onto the given struct; when the upsert updates an existing row
		// that is the existing row's id.
		UpsertWeekly(ctx context.Context, rule *model.WeeklySchedule) error
		UpsertOverride(ctx context.Context, override *model.ScheduleOverride) error
		ListWeekly(ctx context.Context, stylistID uuid.UUID) ([]*model.WeeklySchedule, error)
	}

	BookingRepository interface {
		// CreateIfAvailable atomically checks for overlapping active bookings
		// and inserts. It returns ErrConflict when the interval is taken; on
		// success the booking row and its outbox event are committed together.
		CreateIfAvailable(ctx context.Context, booking *model.Booking) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		ListForStylist(ctx context.Context, stylistID uuid.UUID, from, to time.Time) ([]*model.Booking, error)
		// ActiveRangesOn returns the [start,end) intervals of active bookings
		// overlapping the given day window. Read-only; allowed to be stale.
		ActiveRangesOn(ctx context.Context, stylistID uuid.UUID, dayStart, dayEnd time.Time) ([]model.TimeRange, error)
		// Cancel conditionally moves an active booking into the given
		// cancellation status, stamping cancelled_at and the reason. It
		// reports false when the booking was no longer active, which is how
		// concurrent cancellations are serialized.
		Cancel(ctx context.Context, id uuid.UUID, status model.BookingStatus, cancelledAt time.Time, reason *string) (bool, error)
		// SetStatus performs an unconditional status update (refund-failure
		// downgrade after a cancellation has already been claimed).
		SetStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error
	}

	OutboxRepository interface {
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
