package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type BookingStatus string

const (
	BookingStatusPendingPayment     BookingStatus = "pending_payment"
	BookingStatusConfirmed          BookingStatus = "confirmed"
	BookingStatusCancelledRefunded  BookingStatus = "cancelled_refunded"
	BookingStatusCancelledLate      BookingStatus = "cancelled_late"
	BookingStatusCancelRefundFailed BookingStatus = "cancelled_refund_failed"
	BookingStatusNoShowCharged      BookingStatus = "no_show_charged"
	BookingStatusNoShowFailedCharge BookingStatus = "no_show_failed_charge"
)

// ActiveStatuses are the statuses that count toward overlap checks.
var ActiveStatuses = []BookingStatus{BookingStatusPendingPayment, BookingStatusConfirmed}

// Active reports whether the booking still holds its time slot.
func (s BookingStatus) Active() bool {
	return s == BookingStatusPendingPayment || s == BookingStatusConfirmed
}

// Terminal reports whether no further transition is permitted.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusCancelledRefunded, BookingStatusCancelledLate,
		BookingStatusCancelRefundFailed, BookingStatusNoShowCharged,
		BookingStatusNoShowFailedCharge:
		return true
	}
	return false
}

// CanTransitionTo enforces the booking lifecycle: active states may move to
// confirmed or any terminal state. The only permitted move out of a terminal
// state is the refund-failure downgrade, cancelled_refunded to
// cancelled_refund_failed, which records that the refund attempted after the
// cancellation was claimed did not go through.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s.Terminal() {
		return s == BookingStatusCancelledRefunded && next == BookingStatusCancelRefundFailed
	}
	switch next {
	case BookingStatusConfirmed:
		return s == BookingStatusPendingPayment
	case BookingStatusCancelledRefunded, BookingStatusCancelledLate,
		BookingStatusCancelRefundFailed, BookingStatusNoShowCharged,
		BookingStatusNoShowFailedCharge:
		return true
	}
	return false
}

type Booking struct {
	ID                    uuid.UUID      `db:"id" json:"id"`
	StylistID             uuid.UUID      `db:"stylist_id" json:"stylist_id"`
	PrimaryServiceID      uuid.UUID      `db:"primary_service_id" json:"primary_service_id"`
	AddonServiceIDs       pq.StringArray `db:"addon_service_ids" json:"addon_service_ids"`
	StartAt               time.Time      `db:"start_at" json:"start_at"`
	EndAt                 time.Time      `db:"end_at" json:"end_at"`
	Status                BookingStatus  `db:"status" json:"status"`
	ClientName            string         `db:"client_name" json:"client_name"`
	ClientEmail           string         `db:"client_email" json:"client_email"`
	ClientPhone           string         `db:"client_phone" json:"client_phone"`
	Notes                 string         `db:"notes" json:"notes,omitempty"`
	ServiceSummary        string         `db:"service_summary" json:"service_summary"`
	TotalCents            int64          `db:"total_cents" json:"total_cents"`
	DepositCents          int64          `db:"deposit_cents" json:"deposit_cents"`
	StripePaymentIntentID *string        `db:"stripe_payment_intent_id" json:"stripe_payment_intent_id,omitempty"`
	StripePaymentStatus   *string        `db:"stripe_payment_status" json:"stripe_payment_status,omitempty"`
	CancelledAt           *time.Time     `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason    *string        `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`
}

type CreateBookingRequest struct {
	StylistID             uuid.UUID   `json:"stylist_id" binding:"required"`
	PrimaryServiceID      uuid.UUID   `json:"primary_service_id" binding:"required"`
	AddonServiceIDs       []uuid.UUID `json:"addon_service_ids"`
	Date                  string      `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime             string      `json:"start_time" binding:"required,clock12"` // "10:00 AM"
	ClientName            string      `json:"client_name" binding:"required,max=120"`
	ClientEmail           string      `json:"client_email" binding:"required,email"`
	ClientPhone           string      `json:"client_phone" binding:"max=30"`
	Notes                 string      `json:"notes" binding:"max=2000"`
	StripePaymentIntentID string      `json:"stripe_payment_intent_id"`
}

type DepositIntentRequest struct {
	StylistID        uuid.UUID   `json:"stylist_id" binding:"required"`
	PrimaryServiceID uuid.UUID   `json:"primary_service_id" binding:"required"`
	AddonServiceIDs  []uuid.UUID `json:"addon_service_ids"`
}

type DepositIntentResponse struct {
	DepositRequired bool   `json:"deposit_required"`
	DepositCents    int64  `json:"deposit_cents"`
	TotalCents      int64  `json:"total_cents"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	ClientSecret    string `json:"client_secret,omitempty"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// RefundOutcome describes what happened to the deposit during cancellation.
type RefundOutcome struct {
	Refunded bool   `json:"refunded"`
	RefundID string `json:"refund_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// TimeRange is an existing booking's interval as seen by the availability
// engine. Intervals are half-open: [Start, End).
type TimeRange struct {
	Start time.Time `db:"start_at" json:"start"`
	End   time.Time `db:"end_at" json:"end"`
}

// Slot is a bookable start time. Computed fresh per query, never persisted.
type Slot struct {
	Time    string `json:"time"` // e.g. "9:30 AM"
	Squeeze bool   `json:"squeeze"`
}
