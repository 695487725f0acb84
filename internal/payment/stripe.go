package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type StripeProcessor struct {
	api *client.API
}

func NewStripeProcessor(secretKey string) *StripeProcessor {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProcessor{api: api}
}

func (p *StripeProcessor) CreateDepositIntent(ctx context.Context, req DepositIntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String(req.Description),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return intentFromStripe(pi), nil
}

func (p *StripeProcessor) GetIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")

	pi, err := p.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}
	return intentFromStripe(pi), nil
}

func (p *StripeProcessor) RefundDeposit(ctx context.Context, intentID string, amountCents int64) (*RefundResult, error) {
	intent, err := p.GetIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}

	// If the deposit never got captured there is no charge to refund; that
	// is recorded as a non-refund, not an error.
	if intent.LatestChargeID == "" {
		return &RefundResult{Refunded: false, Reason: "no_charge_to_refund"}, nil
	}

	params := &stripe.RefundParams{
		Charge: stripe.String(intent.LatestChargeID),
	}
	params.Context = ctx
	if amountCents > 0 {
		params.Amount = stripe.Int64(amountCents)
	}

	ref, err := p.api.Refunds.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create refund: %w", err)
	}
	return &RefundResult{Refunded: true, RefundID: ref.ID}, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	intent := &Intent{
		ID:           pi.ID,
		Status:       string(pi.Status),
		AmountCents:  pi.Amount,
		ClientSecret: pi.ClientSecret,
	}
	if pi.LatestCharge != nil {
		intent.LatestChargeID = pi.LatestCharge.ID
	}
	return intent
}
