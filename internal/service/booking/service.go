// Package booking is the engine behind booking creation and cancellation.
// Creation verifies the deposit against the payment processor before the
// slot is claimed; the claim itself is a single atomic check-and-insert in
// the repository, so two clients racing for one slot resolve to exactly one
// booking and one conflict error.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/shearbook/booking-api/internal/email"
	"github.com/shearbook/booking-api/internal/model"
	"github.com/shearbook/booking-api/internal/payment"
	"github.com/shearbook/booking-api/internal/repository"
	"github.com/shearbook/booking-api/internal/service/pricing"
	apperrors "github.com/shearbook/booking-api/pkg/errors"
	"github.com/shearbook/booking-api/pkg/logger"
	"github.com/shearbook/booking-api/pkg/metrics"
)

// CancellationWindow is the cutoff before the appointment start. Cancelling
// at or before the cutoff refunds the deposit; after it the deposit is kept.
const CancellationWindow = 48 * time.Hour

// startTimeLayout matches the slot strings the availability engine hands out.
const startTimeLayout = "2006-01-02 3:04 PM"

const (
	refundReasonNoDeposit       = "no_deposit_to_refund"
	refundReasonLateCancel      = "late_cancellation_no_refund"
	refundReasonAlreadyResolved = "already_cancelled"
	refundReasonFailed          = "refund_failed"
)

type Service struct {
	bookings repository.BookingRepository
	stylists repository.StylistRepository
	pricing  *pricing.Service
	payments payment.Processor
	email    email.Service
	metrics  *metrics.Metrics
	logger   *logger.Logger
	loc      *time.Location

	// now is swappable so the cancellation cutoff is testable.
	now func() time.Time
}

func NewService(
	bookings repository.BookingRepository,
	stylists repository.StylistRepository,
	pricingSvc *pricing.Service,
	payments payment.Processor,
	emailSvc email.Service,
	m *metrics.Metrics,
	log *logger.Logger,
	loc *time.Location,
) *Service {
	return &Service{
		bookings: bookings,
		stylists: stylists,
		pricing:  pricingSvc,
		payments: payments,
		email:    emailSvc,
		metrics:  m,
		logger:   log,
		loc:      loc,
		now:      time.Now,
	}
}

// Create books an appointment. Prices and duration are re-derived from the
// stylist's price list, never taken from the client. When the quote carries a
// deposit, the payment intent must already be succeeded for exactly that
// amount before the slot is claimed.
func (s *Service) Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	stylist, err := s.stylists.Get(ctx, req.StylistID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("stylist", err)
		}
		return nil, fmt.Errorf("failed to get stylist: %w", err)
	}
	if !stylist.Active {
		return nil, apperrors.NotFound("stylist", nil)
	}

	quote, err := s.pricing.Resolve(ctx, req.StylistID, req.PrimaryServiceID, req.AddonServiceIDs)
	if err != nil {
		return nil, err
	}

	startAt, err := time.ParseInLocation(startTimeLayout, req.Date+" "+req.StartTime, s.loc)
	if err != nil {
		return nil, apperrors.BadRequest("invalid date or start_time", err)
	}
	endAt := startAt.Add(time.Duration(quote.DurationMinutes) * time.Minute)

	var intentID, intentStatus *string
	if quote.DepositCents > 0 {
		intent, err := s.verifyDeposit(ctx, req.StripePaymentIntentID, quote.DepositCents)
		if err != nil {
			return nil, err
		}
		intentID = &intent.ID
		intentStatus = &intent.Status
	}

	booking := &model.Booking{
		StylistID:             req.StylistID,
		PrimaryServiceID:      req.PrimaryServiceID,
		AddonServiceIDs:       uuidStrings(req.AddonServiceIDs),
		StartAt:               startAt,
		EndAt:                 endAt,
		Status:                model.BookingStatusConfirmed,
		ClientName:            req.ClientName,
		ClientEmail:           req.ClientEmail,
		ClientPhone:           req.ClientPhone,
		Notes:                 req.Notes,
		ServiceSummary:        quote.ServiceSummary,
		TotalCents:            quote.TotalCents,
		DepositCents:          quote.DepositCents,
		StripePaymentIntentID: intentID,
		StripePaymentStatus:   intentStatus,
	}

	if err := s.bookings.CreateIfAvailable(ctx, booking); err != nil {
		if err == repository.ErrConflict {
			s.metrics.BookingConflicts.Inc()
			return nil, apperrors.Conflict("this time slot is no longer available")
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	s.metrics.BookingsCreated.Inc()

	if err := s.email.SendBookingConfirmation(booking); err != nil {
		s.logger.Error(err, "failed to send booking confirmation",
			"booking_id", booking.ID.String())
	}

	return booking, nil
}

// verifyDeposit checks the payment intent has actually succeeded for exactly
// the required amount. A succeeded intent for the wrong amount is rejected
// rather than topped up or partially refunded.
func (s *Service) verifyDeposit(ctx context.Context, intentID string, depositCents int64) (*payment.Intent, error) {
	if intentID == "" {
		return nil, apperrors.BadRequest("stripe_payment_intent_id is required for this booking", nil)
	}

	start := time.Now()
	intent, err := s.payments.GetIntent(ctx, intentID)
	s.metrics.PaymentLatency.WithLabelValues("get_intent").Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.PaymentCalls.WithLabelValues("get_intent", "error").Inc()
		return nil, apperrors.Internal(fmt.Errorf("failed to verify payment intent: %w", err))
	}
	s.metrics.PaymentCalls.WithLabelValues("get_intent", "ok").Inc()

	if intent.Status != payment.IntentStatusSucceeded {
		return nil, apperrors.PaymentNotCompleted(intent.Status)
	}
	if intent.AmountCents != depositCents {
		return nil, apperrors.PaymentAmountMismatch(depositCents, intent.AmountCents)
	}
	return intent, nil
}

// Cancel applies the refund policy. Cancelling 48 hours or more before the
// start refunds the deposit; later cancellations keep it. The conditional
// status update in the repository claims the cancellation, so of two
// concurrent requests only one attempts the refund. Repeat cancellations of
// an already-terminal booking are no-ops, not errors.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, req *model.CancelBookingRequest) (*model.Booking, *model.RefundOutcome, error) {
	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, nil, apperrors.NotFound("booking", err)
		}
		return nil, nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking.Status.Terminal() {
		return booking, &model.RefundOutcome{Reason: refundReasonAlreadyResolved}, nil
	}

	now := s.now()
	var reason *string
	if req != nil && req.Reason != "" {
		reason = &req.Reason
	}

	refundEligible := booking.StartAt.Sub(now) >= CancellationWindow

	target := model.BookingStatusCancelledLate
	if refundEligible {
		target = model.BookingStatusCancelledRefunded
	}
	if !booking.Status.CanTransitionTo(target) {
		return booking, &model.RefundOutcome{Reason: refundReasonAlreadyResolved}, nil
	}

	claimed, err := s.bookings.Cancel(ctx, id, target, now, reason)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	if !claimed {
		// Lost the race to a concurrent cancellation; report whatever
		// outcome the winner left behind.
		current, err := s.bookings.Get(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get booking: %w", err)
		}
		return current, &model.RefundOutcome{Reason: refundReasonAlreadyResolved}, nil
	}

	booking.Status = target
	booking.CancelledAt = &now
	booking.CancellationReason = reason

	outcome := &model.RefundOutcome{Reason: refundReasonLateCancel}
	if refundEligible {
		outcome = s.refundDeposit(ctx, booking)
	}
	s.metrics.Cancellations.WithLabelValues(string(booking.Status)).Inc()

	if err := s.email.SendCancellationNotice(booking, *outcome); err != nil {
		s.logger.Error(err, "failed to send cancellation notice",
			"booking_id", booking.ID.String())
	}

	return booking, outcome, nil
}

// refundDeposit runs after the cancellation is already claimed. A processor
// failure never reverts the cancellation; the booking takes the sanctioned
// downgrade to cancelled_refund_failed and the refund is reconciled by hand.
func (s *Service) refundDeposit(ctx context.Context, booking *model.Booking) *model.RefundOutcome {
	if booking.DepositCents == 0 || booking.StripePaymentIntentID == nil {
		return &model.RefundOutcome{Reason: refundReasonNoDeposit}
	}

	start := time.Now()
	result, err := s.payments.RefundDeposit(ctx, *booking.StripePaymentIntentID, booking.DepositCents)
	s.metrics.PaymentLatency.WithLabelValues("refund").Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.PaymentCalls.WithLabelValues("refund", "error").Inc()
		s.logger.Error(err, "deposit refund failed",
			"booking_id", booking.ID.String())
		if booking.Status.CanTransitionTo(model.BookingStatusCancelRefundFailed) {
			if serr := s.bookings.SetStatus(ctx, booking.ID, model.BookingStatusCancelRefundFailed); serr != nil {
				s.logger.Error(serr, "failed to record refund failure",
					"booking_id", booking.ID.String())
			} else {
				booking.Status = model.BookingStatusCancelRefundFailed
			}
		}
		return &model.RefundOutcome{Reason: refundReasonFailed}
	}
	s.metrics.PaymentCalls.WithLabelValues("refund", "ok").Inc()

	return &model.RefundOutcome{
		Refunded: result.Refunded,
		RefundID: result.RefundID,
		Reason:   result.Reason,
	}
}

// Get returns one booking.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("booking", err)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// ListForStylist returns a stylist's bookings in [from, to).
func (s *Service) ListForStylist(ctx context.Context, stylistID uuid.UUID, from, to time.Time) ([]*model.Booking, error) {
	bookings, err := s.bookings.ListForStylist(ctx, stylistID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// DepositIntent quotes the requested services and, when a deposit is due,
// creates the payment intent the client completes before booking.
func (s *Service) DepositIntent(ctx context.Context, req *model.DepositIntentRequest) (*model.DepositIntentResponse, error) {
	quote, err := s.pricing.Resolve(ctx, req.StylistID, req.PrimaryServiceID, req.AddonServiceIDs)
	if err != nil {
		return nil, err
	}

	resp := &model.DepositIntentResponse{
		DepositCents: quote.DepositCents,
		TotalCents:   quote.TotalCents,
	}
	if quote.DepositCents == 0 {
		return resp, nil
	}

	start := time.Now()
	intent, err := s.payments.CreateDepositIntent(ctx, payment.DepositIntentRequest{
		AmountCents: quote.DepositCents,
		Description: "Booking deposit: " + quote.ServiceSummary,
		Metadata: map[string]string{
			"stylist_id":         req.StylistID.String(),
			"primary_service_id": req.PrimaryServiceID.String(),
		},
	})
	s.metrics.PaymentLatency.WithLabelValues("create_intent").Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.PaymentCalls.WithLabelValues("create_intent", "error").Inc()
		return nil, apperrors.Internal(fmt.Errorf("failed to create payment intent: %w", err))
	}
	s.metrics.PaymentCalls.WithLabelValues("create_intent", "ok").Inc()

	resp.DepositRequired = true
	resp.PaymentIntentID = intent.ID
	resp.ClientSecret = intent.ClientSecret
	return resp, nil
}

func uuidStrings(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
