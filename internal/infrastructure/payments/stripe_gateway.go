// Package payments implements the payment gateway port. The stripe gateway
// mirrors the instant-settlement card flow: create a payment intent for the
// approved amount, then refund it, returning the refund id as the claim's
// transaction id.
package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"

	"github.com/maverickins/claims-intake/internal/bootstrap/config"
	"github.com/maverickins/claims-intake/internal/errs"
	"github.com/maverickins/claims-intake/internal/ports"
)

type StripeGateway struct {
	api      *stripeclient.API
	currency string
}

func NewStripeGateway(cfg config.PaymentsConfig) *StripeGateway {
	api := &stripeclient.API{}
	api.Init(cfg.APIKey, nil)

	return &StripeGateway{
		api:      api,
		currency: strings.ToLower(cfg.Currency),
	}
}

func (g *StripeGateway) Refund(ctx context.Context, req ports.RefundRequest) (string, error) {
	if !req.Amount.IsPositive() {
		return "", fmt.Errorf("refund amount must be positive, got %s", req.Amount)
	}

	minorUnits := req.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	intentParams := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(minorUnits),
		Currency:           stripe.String(g.currency),
		ReceiptEmail:       stripe.String(req.Destination),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	intentParams.SetIdempotencyKey(req.IdempotencyKey + "-intent")

	intent, err := g.api.PaymentIntents.New(intentParams)
	if err != nil {
		return "", errs.Wrap(err, "create payment intent")
	}

	refundParams := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(intent.ID),
	}
	refundParams.SetIdempotencyKey(req.IdempotencyKey + "-refund")

	refund, err := g.api.Refunds.New(refundParams)
	if err != nil {
		return "", errs.Wrap(err, "create refund")
	}

	return refund.ID, nil
}
