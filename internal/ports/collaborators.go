package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maverickins/claims-intake/internal/domain/claim"
)

// PolicyRegistry answers whether a policy number is known. Implementations
// never return an error: unknown, malformed and unreachable all resolve to
// false (fail closed).
type PolicyRegistry interface {
	IsValid(ctx context.Context, policyNumber string) bool
	// Holder returns prefill data for a known policy, when available.
	Holder(ctx context.Context, policyNumber string) (PolicyHolder, bool)
}

// PolicyHolder is the registry's view of the insured party.
type PolicyHolder struct {
	Name  string
	Email string
	IBAN  string
}

// VisionEstimator scores a damage photo. The pipeline only relies on the
// contract shape: a raw category label and a raw monetary estimate, both
// normalized by the domain afterwards. Unreachable scoring is an error, never
// a guessed category.
type VisionEstimator interface {
	Score(ctx context.Context, photo []byte) (category string, estimate decimal.Decimal, err error)
}

// WeatherHistory retrieves the hourly observations covering the date of loss
// at a location. Lookup errors are expected and absorbed by the caller.
type WeatherHistory interface {
	Lookup(ctx context.Context, location string, at time.Time) ([]claim.HourlyObservation, error)
}

// RefundRequest describes one payout to issue.
type RefundRequest struct {
	// Amount is strictly positive, in major currency units.
	Amount decimal.Decimal
	// Destination identifies the claimant at the payment collaborator
	// (receipt email for the card flow).
	Destination string
	// IdempotencyKey guards against double issuance on retries.
	IdempotencyKey string
}

// PaymentGateway moves money. A failed refund must surface as an error so the
// pipeline never records an approved claim without a transaction id.
type PaymentGateway interface {
	Refund(ctx context.Context, req RefundRequest) (transactionID string, err error)
}

// OutcomeEvent is the terminal result of a pipeline run, published after the
// audit record is durable.
type OutcomeEvent struct {
	ClaimRef     string          `json:"claim_ref"`
	PolicyNumber string          `json:"policy_number"`
	State        string          `json:"state"`
	Approved     bool            `json:"approved"`
	Reason       string          `json:"reason"`
	Estimate     decimal.Decimal `json:"estimate"`
	RecordID     uint64          `json:"record_id,omitempty"`
}

// OutcomeNotifier publishes outcome events. Best effort: publish failures are
// logged by the caller and never fail the claim.
type OutcomeNotifier interface {
	Publish(ctx context.Context, event OutcomeEvent) error
}
