package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/shearbook/booking-api/internal/model"
	"github.com/shearbook/booking-api/internal/repository"
)

const pqExclusionViolation = "23P01"

// CreateIfAvailable inserts a booking only if no active booking for the same
// stylist overlaps [start_at, end_at). The overlap check and the insert run
// in one transaction serialized by a per-stylist advisory lock, so two
// concurrent attempts on the same stylist cannot interleave between check
// and insert. The bookings_no_overlap exclusion constraint backstops the
// same rule at the store level; a violation from it is reported as the same
// ErrConflict as a pre-check hit. The booking's outbox event commits in the
// same transaction.
func (r *bookingRepository) CreateIfAvailable(ctx context.Context, booking *model.Booking) error {
	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`,
		booking.StylistID,
	); err != nil {
		return fmt.Errorf("failed to acquire stylist lock: %w", err)
	}

	var hasConflict bool
	err = tx.GetContext(ctx, &hasConflict, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE stylist_id = $1
			AND status IN ('pending_payment', 'confirmed')
			AND start_at < $3
			AND end_at > $2
		)
	`, booking.StylistID, booking.StartAt, booking.EndAt)
	if err != nil {
		return fmt.Errorf("failed to check booking conflicts: %w", err)
	}
	if hasConflict {
		return repository.ErrConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings (
			id, stylist_id, primary_service_id, addon_service_ids,
			start_at, end_at, status,
			client_name, client_email, client_phone, notes, service_summary,
			total_cents, deposit_cents,
			stripe_payment_intent_id, stripe_payment_status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`,
		booking.ID,
		booking.StylistID,
		booking.PrimaryServiceID,
		booking.AddonServiceIDs,
		booking.StartAt,
		booking.EndAt,
		booking.Status,
		booking.ClientName,
		booking.ClientEmail,
		booking.ClientPhone,
		booking.Notes,
		booking.ServiceSummary,
		booking.TotalCents,
		booking.DepositCents,
		booking.StripePaymentIntentID,
		booking.StripePaymentStatus,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqExclusionViolation {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if err := insertOutboxEvent(ctx, tx, model.EventBookingCreated, booking); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqExclusionViolation {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) ListForStylist(ctx context.Context, stylistID uuid.UUID, from, to time.Time) ([]*model.Booking, error) {
	var bookings []*model.Booking
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE stylist_id = $1
		AND start_at >= $2
		AND start_at < $3
		ORDER BY start_at ASC
	`, stylistID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) ActiveRangesOn(ctx context.Context, stylistID uuid.UUID, dayStart, dayEnd time.Time) ([]model.TimeRange, error) {
	var ranges []model.TimeRange
	err := r.db.SelectContext(ctx, &ranges, `
		SELECT start_at, end_at
		FROM bookings
		WHERE stylist_id = $1
		AND status IN ('pending_payment', 'confirmed')
		AND start_at < $3
		AND end_at > $2
		ORDER BY start_at ASC
	`, stylistID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get active booking ranges: %w", err)
	}
	return ranges, nil
}

// Cancel claims the cancellation: the status moves only if the booking is
// still active, so a second concurrent cancel sees zero rows and backs off.
func (r *bookingRepository) Cancel(ctx context.Context, id uuid.UUID, status model.BookingStatus, cancelledAt time.Time, reason *string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET status = $1, cancelled_at = $2, cancellation_reason = $3, updated_at = $4
		WHERE id = $5
		AND status IN ('pending_payment', 'confirmed')
	`, status, cancelledAt, reason, time.Now(), id)
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return false, tx.Commit()
	}

	payload := map[string]interface{}{
		"booking_id":   id,
		"status":       status,
		"cancelled_at": cancelledAt,
	}
	if err := insertOutboxEvent(ctx, tx, model.EventBookingCancelled, payload); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit cancellation: %w", err)
	}
	return true, nil
}

func (r *bookingRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3
	`, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
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

func insertOutboxEvent(ctx context.Context, tx *sqlx.Tx, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}
	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO outbox_events (id, event_type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, uuid.New(), eventType, body, model.OutboxStatusPending, now)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

const bookingColumns = `id, stylist_id, primary_service_id, addon_service_ids,
		start_at, end_at, status,
		client_name, client_email, client_phone, notes, service_summary,
		total_cents, deposit_cents,
		stripe_payment_intent_id, stripe_payment_status,
		cancelled_at, cancellation_reason,
		created_at, updated_at`
