package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shearbook/booking-api/internal/model"
	"github.com/shearbook/booking-api/internal/payment"
	"github.com/shearbook/booking-api/internal/repository"
	"github.com/shearbook/booking-api/internal/service/pricing"
	apperrors "github.com/shearbook/booking-api/pkg/errors"
	"github.com/shearbook/booking-api/pkg/logger"
	"github.com/shearbook/booking-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("booking_test")

// fakeBookingRepo reproduces the repository's atomic check-and-insert under
// a mutex so concurrent create attempts race exactly as they would against
// the database guard.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*model.Booking

	// loseClaim makes the next Cancel behave as if a concurrent
	// cancellation committed between the caller's read and its claim: the
	// stored booking flips terminal and the claim reports false.
	loseClaim bool
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*model.Booking)}
}

func (f *fakeBookingRepo) CreateIfAvailable(_ context.Context, booking *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.StylistID == booking.StylistID && b.Status.Active() &&
			b.StartAt.Before(booking.EndAt) && b.EndAt.After(booking.StartAt) {
			return repository.ErrConflict
		}
	}
	booking.ID = uuid.New()
	cp := *booking
	f.bookings[booking.ID] = &cp
	return nil
}

func (f *fakeBookingRepo) Get(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) ListForStylist(context.Context, uuid.UUID, time.Time, time.Time) ([]*model.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) ActiveRangesOn(context.Context, uuid.UUID, time.Time, time.Time) ([]model.TimeRange, error) {
	return nil, nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, id uuid.UUID, status model.BookingStatus, cancelledAt time.Time, reason *string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || !b.Status.Active() {
		return false, nil
	}
	if f.loseClaim {
		f.loseClaim = false
		b.Status = model.BookingStatusCancelledRefunded
		b.CancelledAt = &cancelledAt
		return false, nil
	}
	b.Status = status
	b.CancelledAt = &cancelledAt
	b.CancellationReason = reason
	return true, nil
}

func (f *fakeBookingRepo) SetStatus(_ context.Context, id uuid.UUID, status model.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[id]; ok {
		b.Status = status
	}
	return nil
}

type fakeStylistRepo struct {
	stylist *model.Stylist
}

func (f *fakeStylistRepo) Create(context.Context, *model.Stylist) error { return nil }

func (f *fakeStylistRepo) Get(_ context.Context, id uuid.UUID) (*model.Stylist, error) {
	if f.stylist == nil || f.stylist.ID != id {
		return nil, repository.ErrNotFound
	}
	return f.stylist, nil
}

func (f *fakeStylistRepo) Update(context.Context, *model.Stylist) error { return nil }
func (f *fakeStylistRepo) List(context.Context) ([]*model.Stylist, error) {
	return nil, nil
}

type fakeServiceRepo struct {
	services map[uuid.UUID]*model.Service
	prices   map[uuid.UUID]*model.StylistService
}

func (f *fakeServiceRepo) Create(context.Context, *model.Service) error { return nil }

func (f *fakeServiceRepo) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	if svc, ok := f.services[id]; ok {
		return svc, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeServiceRepo) List(context.Context) ([]*model.Service, error) { return nil, nil }

func (f *fakeServiceRepo) GetStylistServices(_ context.Context, _ uuid.UUID, serviceIDs []uuid.UUID) ([]*model.StylistService, error) {
	var rows []*model.StylistService
	for _, id := range serviceIDs {
		if row, ok := f.prices[id]; ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (f *fakeServiceRepo) UpsertStylistService(context.Context, *model.StylistService) error {
	return nil
}

type fakeProcessor struct {
	mu           sync.Mutex
	intent       *payment.Intent
	getErr       error
	refundResult *payment.RefundResult
	refundErr    error
	getCalls     int
	refundCalls  int
	createCalls  int
}

func (f *fakeProcessor) CreateDepositIntent(_ context.Context, req payment.DepositIntentRequest) (*payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	return &payment.Intent{
		ID:           "pi_test",
		Status:       "requires_payment_method",
		AmountCents:  req.AmountCents,
		ClientSecret: "pi_test_secret",
	}, nil
}

func (f *fakeProcessor) GetIntent(context.Context, string) (*payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.intent, nil
}

func (f *fakeProcessor) RefundDeposit(context.Context, string, int64) (*payment.RefundResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refundCalls++
	if f.refundErr != nil {
		return nil, f.refundErr
	}
	if f.refundResult != nil {
		return f.refundResult, nil
	}
	return &payment.RefundResult{Refunded: true, RefundID: "re_test"}, nil
}

type fakeEmail struct {
	mu            sync.Mutex
	confirmations int
	cancellations int
}

func (f *fakeEmail) SendBookingConfirmation(*model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations++
	return nil
}

func (f *fakeEmail) SendCancellationNotice(*model.Booking, model.RefundOutcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancellations++
	return nil
}

type fixture struct {
	svc       *Service
	repo      *fakeBookingRepo
	processor *fakeProcessor
	email     *fakeEmail
	stylistID uuid.UUID
	primaryID uuid.UUID
	cheapID   uuid.UUID
}

// The primary service costs $180 (deposit $54); the cheap one $20 (no
// deposit).
func newFixture(t *testing.T) *fixture {
	t.Helper()

	stylistID := uuid.New()
	primaryID := uuid.New()
	cheapID := uuid.New()

	serviceRepo := &fakeServiceRepo{
		services: map[uuid.UUID]*model.Service{
			primaryID: {ID: primaryID, Name: "Balayage"},
			cheapID:   {ID: cheapID, Name: "Bang Trim"},
		},
		prices: map[uuid.UUID]*model.StylistService{
			primaryID: {ServiceID: primaryID, PriceCents: 18000, DurationMinutes: 120, Active: true},
			cheapID:   {ServiceID: cheapID, PriceCents: 2000, DurationMinutes: 15, Active: true},
		},
	}

	repo := newFakeBookingRepo()
	processor := &fakeProcessor{
		intent: &payment.Intent{ID: "pi_ok", Status: payment.IntentStatusSucceeded, AmountCents: 5400},
	}
	mail := &fakeEmail{}

	svc := NewService(
		repo,
		&fakeStylistRepo{stylist: &model.Stylist{ID: stylistID, Name: "Dana", Active: true}},
		pricing.NewService(serviceRepo),
		processor,
		mail,
		testMetrics,
		logger.NewLogger(nil),
		time.UTC,
	)

	return &fixture{
		svc:       svc,
		repo:      repo,
		processor: processor,
		email:     mail,
		stylistID: stylistID,
		primaryID: primaryID,
		cheapID:   cheapID,
	}
}

func (f *fixture) createRequest() *model.CreateBookingRequest {
	return &model.CreateBookingRequest{
		StylistID:             f.stylistID,
		PrimaryServiceID:      f.primaryID,
		Date:                  "2026-03-02",
		StartTime:             "10:00 AM",
		ClientName:            "Jess Alvarez",
		ClientEmail:           "jess@example.com",
		StripePaymentIntentID: "pi_ok",
	}
}

func appCode(t *testing.T, err error) apperrors.ErrorCode {
	t.Helper()
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	return appErr.Code
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	booked, err := f.svc.Create(context.Background(), f.createRequest())
	require.NoError(t, err)

	// The repository assigns the id during the insert.
	assert.NotEqual(t, uuid.Nil, booked.ID)
	assert.Equal(t, model.BookingStatusConfirmed, booked.Status)
	assert.Equal(t, int64(18000), booked.TotalCents)
	assert.Equal(t, int64(5400), booked.DepositCents)
	assert.Equal(t, "Balayage", booked.ServiceSummary)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), booked.StartAt)
	assert.Equal(t, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), booked.EndAt)
	require.NotNil(t, booked.StripePaymentIntentID)
	assert.Equal(t, "pi_ok", *booked.StripePaymentIntentID)
	assert.Equal(t, 1, f.email.confirmations)
}

func TestCreateRequiresIntentWhenDepositDue(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest()
	req.StripePaymentIntentID = ""

	_, err := f.svc.Create(context.Background(), req)
	assert.Equal(t, apperrors.ErrBadRequest, appCode(t, err))
	assert.Zero(t, f.processor.getCalls)
}

func TestCreatePaymentNotSucceeded(t *testing.T) {
	f := newFixture(t)
	f.processor.intent = &payment.Intent{ID: "pi_ok", Status: "requires_payment_method", AmountCents: 5400}

	_, err := f.svc.Create(context.Background(), f.createRequest())
	assert.Equal(t, apperrors.ErrPaymentNotCompleted, appCode(t, err))
	assert.Empty(t, f.repo.bookings)
}

func TestCreatePaymentAmountMismatch(t *testing.T) {
	f := newFixture(t)
	f.processor.intent = &payment.Intent{ID: "pi_ok", Status: payment.IntentStatusSucceeded, AmountCents: 100}

	_, err := f.svc.Create(context.Background(), f.createRequest())
	assert.Equal(t, apperrors.ErrPaymentAmountMismatch, appCode(t, err))
	assert.Empty(t, f.repo.bookings)
}

func TestCreateNoDepositSkipsProcessor(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest()
	req.PrimaryServiceID = f.cheapID
	req.StripePaymentIntentID = ""

	booked, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(0), booked.DepositCents)
	assert.Nil(t, booked.StripePaymentIntentID)
	assert.Zero(t, f.processor.getCalls)
}

func TestCreateUnknownStylist(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest()
	req.StylistID = uuid.New()

	_, err := f.svc.Create(context.Background(), req)
	assert.Equal(t, apperrors.ErrNotFound, appCode(t, err))
}

func TestCreateConflictOnOverlap(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.createRequest())
	require.NoError(t, err)

	// Same stylist, overlapping interval 11:00-11:15 inside 10:00-12:00.
	req := f.createRequest()
	req.PrimaryServiceID = f.cheapID
	req.StripePaymentIntentID = ""
	req.StartTime = "11:00 AM"

	_, err = f.svc.Create(context.Background(), req)
	assert.Equal(t, apperrors.ErrConflict, appCode(t, err))
}

func TestConcurrentCreateOneWins(t *testing.T) {
	f := newFixture(t)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), f.createRequest())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		assert.Equal(t, apperrors.ErrConflict, appCode(t, err))
		conflicts++
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Len(t, f.repo.bookings, 1)
}

func cancelFixtureBooking(f *fixture, startAt time.Time) *model.Booking {
	intentID := "pi_ok"
	b := &model.Booking{
		ID:                    uuid.New(),
		StylistID:             f.stylistID,
		PrimaryServiceID:      f.primaryID,
		StartAt:               startAt,
		EndAt:                 startAt.Add(2 * time.Hour),
		Status:                model.BookingStatusConfirmed,
		ClientName:            "Jess Alvarez",
		ClientEmail:           "jess@example.com",
		TotalCents:            18000,
		DepositCents:          5400,
		StripePaymentIntentID: &intentID,
	}
	f.repo.bookings[b.ID] = b
	return b
}

func TestCancelRefundEligibleAtExactCutoff(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }
	b := cancelFixtureBooking(f, now.Add(CancellationWindow))

	booked, refund, err := f.svc.Cancel(context.Background(), b.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusCancelledRefunded, booked.Status)
	assert.True(t, refund.Refunded)
	assert.Equal(t, "re_test", refund.RefundID)
	assert.Equal(t, 1, f.processor.refundCalls)
	assert.Equal(t, 1, f.email.cancellations)
}

func TestCancelLateKeepsDeposit(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }
	b := cancelFixtureBooking(f, now.Add(CancellationWindow-time.Second))

	booked, refund, err := f.svc.Cancel(context.Background(), b.ID, &model.CancelBookingRequest{Reason: "sick"})
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusCancelledLate, booked.Status)
	assert.False(t, refund.Refunded)
	assert.Zero(t, f.processor.refundCalls)
	require.NotNil(t, booked.CancellationReason)
	assert.Equal(t, "sick", *booked.CancellationReason)
}

func TestCancelIdempotent(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }
	b := cancelFixtureBooking(f, now.Add(72*time.Hour))

	_, _, err := f.svc.Cancel(context.Background(), b.ID, nil)
	require.NoError(t, err)

	booked, refund, err := f.svc.Cancel(context.Background(), b.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusCancelledRefunded, booked.Status)
	assert.False(t, refund.Refunded)
	// The deposit is refunded exactly once.
	assert.Equal(t, 1, f.processor.refundCalls)
}

func TestCancelRefundFailure(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }
	f.processor.refundErr = assert.AnError
	b := cancelFixtureBooking(f, now.Add(72*time.Hour))

	booked, refund, err := f.svc.Cancel(context.Background(), b.ID, nil)
	require.NoError(t, err)

	// The cancellation stands; only the refund needs manual follow-up. The
	// downgrade is a sanctioned lifecycle move, not a free-form update.
	assert.True(t, model.BookingStatusCancelledRefunded.CanTransitionTo(model.BookingStatusCancelRefundFailed))
	assert.Equal(t, model.BookingStatusCancelRefundFailed, booked.Status)
	assert.False(t, refund.Refunded)

	stored, err := f.repo.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelRefundFailed, stored.Status)
}

func TestCancelLosesClaimToConcurrentCancel(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }
	b := cancelFixtureBooking(f, now.Add(72*time.Hour))
	f.repo.loseClaim = true

	booked, refund, err := f.svc.Cancel(context.Background(), b.ID, nil)
	require.NoError(t, err)

	// The loser reports the winner's committed outcome and never touches
	// the deposit.
	assert.Equal(t, model.BookingStatusCancelledRefunded, booked.Status)
	assert.False(t, refund.Refunded)
	assert.Equal(t, "already_cancelled", refund.Reason)
	assert.Zero(t, f.processor.refundCalls)
}

func TestCancelNoChargeToRefund(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }
	f.processor.refundResult = &payment.RefundResult{Refunded: false, Reason: "no_charge_to_refund"}
	b := cancelFixtureBooking(f, now.Add(72*time.Hour))

	booked, refund, err := f.svc.Cancel(context.Background(), b.ID, nil)
	require.NoError(t, err)

	// An uncharged intent is not a failure.
	assert.Equal(t, model.BookingStatusCancelledRefunded, booked.Status)
	assert.False(t, refund.Refunded)
	assert.Equal(t, "no_charge_to_refund", refund.Reason)
}

func TestCancelUnknownBooking(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Cancel(context.Background(), uuid.New(), nil)
	assert.Equal(t, apperrors.ErrNotFound, appCode(t, err))
}

func TestDepositIntentNoDeposit(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.DepositIntent(context.Background(), &model.DepositIntentRequest{
		StylistID:        f.stylistID,
		PrimaryServiceID: f.cheapID,
	})
	require.NoError(t, err)

	assert.False(t, resp.DepositRequired)
	assert.Equal(t, int64(0), resp.DepositCents)
	assert.Equal(t, int64(2000), resp.TotalCents)
	assert.Zero(t, f.processor.createCalls)
}

func TestDepositIntentCreatesIntent(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.DepositIntent(context.Background(), &model.DepositIntentRequest{
		StylistID:        f.stylistID,
		PrimaryServiceID: f.primaryID,
	})
	require.NoError(t, err)

	assert.True(t, resp.DepositRequired)
	assert.Equal(t, int64(5400), resp.DepositCents)
	assert.Equal(t, "pi_test", resp.PaymentIntentID)
	assert.Equal(t, "pi_test_secret", resp.ClientSecret)
	assert.Equal(t, 1, f.processor.createCalls)
}
