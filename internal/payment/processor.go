// Package payment wraps the external payment processor behind a small
// interface so the booking engine can verify deposits and drive refunds
// without binding its tests to Stripe.
package payment

import "context"

// IntentStatusSucceeded is the only processor state that satisfies deposit
// verification.
const IntentStatusSucceeded = "succeeded"

// Intent is the engine's view of an external payment authorization.
type Intent struct {
	ID             string
	Status         string
	AmountCents    int64
	ClientSecret   string
	LatestChargeID string
}

// DepositIntentRequest carries the context the processor attaches to a new
// deposit authorization.
type DepositIntentRequest struct {
	AmountCents int64
	Description string
	Metadata    map[string]string
}

// RefundResult reports what a refund attempt did. Refunded false with a
// Reason is a legitimate outcome (nothing was ever charged), not a failure;
// failures are returned as errors.
type RefundResult struct {
	Refunded bool
	RefundID string
	Reason   string
}

type Processor interface {
	CreateDepositIntent(ctx context.Context, req DepositIntentRequest) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	// RefundDeposit refunds amountCents against the intent's latest charge.
	// When the intent has no charge to refund it returns a non-refunded
	// result rather than an error.
	RefundDeposit(ctx context.Context, intentID string, amountCents int64) (*RefundResult, error)
}
