// Package pipeline sequences the claim evaluation stages: policy validation,
// damage assessment, weather corroboration, rules decision, payout issuance
// and audit persistence. It is the single surface the presentation layer
// calls.
package pipeline

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maverickins/claims-intake/internal/domain/claim"
	"github.com/maverickins/claims-intake/internal/ports"
)

// Config carries the tunables that used to drift between workflow variants:
// one clamp range, one approval threshold, one timeout per external call.
type Config struct {
	Bounds            claim.EstimateBounds
	ApprovalThreshold decimal.Decimal
	PolicyTimeout     time.Duration
	WeatherTimeout    time.Duration
	PayoutTimeout     time.Duration
}

// Service owns one pipeline configuration and its collaborators. Submissions
// are processed independently; the service holds no per-claim state, so
// concurrent Submit calls only share the append-only store and the read-only
// registry.
type Service struct {
	registry  ports.PolicyRegistry
	estimator ports.VisionEstimator
	weather   ports.WeatherHistory
	gateway   ports.PaymentGateway
	repo      ports.AuditRepository
	uow       ports.UnitOfWork
	notifier  ports.OutcomeNotifier
	cfg       Config

	now func() time.Time
}

// NewService wires the pipeline. notifier may be nil; every other
// collaborator is required.
func NewService(
	registry ports.PolicyRegistry,
	estimator ports.VisionEstimator,
	weather ports.WeatherHistory,
	gateway ports.PaymentGateway,
	repo ports.AuditRepository,
	uow ports.UnitOfWork,
	notifier ports.OutcomeNotifier,
	cfg Config,
) *Service {
	return &Service{
		registry:  registry,
		estimator: estimator,
		weather:   weather,
		gateway:   gateway,
		repo:      repo,
		uow:       uow,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
	}
}

// LookupPolicy is the prefill operation: validity plus holder data when the
// registry has it. Used by the presentation layer before a full submission.
func (s *Service) LookupPolicy(ctx context.Context, policyNumber string) (bool, ports.PolicyHolder, bool) {
	lookupCtx, cancel := s.stageContext(ctx, s.cfg.PolicyTimeout)
	defer cancel()

	if !s.registry.IsValid(lookupCtx, policyNumber) {
		return false, ports.PolicyHolder{}, false
	}
	holder, ok := s.registry.Holder(lookupCtx, policyNumber)
	return true, holder, ok
}

func (s *Service) stageContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
