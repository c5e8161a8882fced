package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/maverickins/claims-intake/internal/bootstrap/logging"
	"github.com/maverickins/claims-intake/internal/domain/claim"
	"github.com/maverickins/claims-intake/internal/errs"
	"github.com/maverickins/claims-intake/internal/ports"
)

// Outcome is the terminal result of one pipeline run, rendered by the caller.
type Outcome struct {
	ClaimRef      string
	State         claim.State
	Assessment    claim.Assessment
	WeatherOK     bool
	Decision      claim.Decision
	TransactionID string
	RecordID      uint64
}

// Submit runs one claim through the full stage sequence. Stages are strictly
// sequential and non-skippable; every step goes through the domain transition
// table.
//
// Terminal results without an error: Rejected (policy unknown, no record) and
// Done (decided and recorded). Errors carry one of the claim sentinels:
// ErrInvalidSubmission, ErrAssessmentUnavailable, ErrPayoutFailed,
// ErrPersistenceFailed.
func (s *Service) Submit(ctx context.Context, sub claim.Submission) (Outcome, error) {
	if ctx == nil {
		return Outcome{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, errs.Wrap(err, "check context")
	}

	out := Outcome{
		ClaimRef: uuid.NewString(),
		State:    claim.StateReceived,
	}
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "pipeline"),
		slog.String("claim_ref", out.ClaimRef),
	)

	if err := sub.Validate(s.now()); err != nil {
		return out, err
	}

	// Policy stage. Rejection is a user-facing outcome, not an error.
	policyCtx, cancelPolicy := s.stageContext(logCtx, s.cfg.PolicyTimeout)
	valid := s.registry.IsValid(policyCtx, sub.PolicyNumber)
	cancelPolicy()
	if !valid {
		state, err := claim.Advance(out.State, claim.StateRejected)
		if err != nil {
			return out, err
		}
		out.State = state
		out.Decision = claim.Decision{Approved: false, Reason: claim.ReasonPolicyUnknown}
		logging.Info(logCtx, "claim rejected", slog.String("policy_number", sub.PolicyNumber))
		return out, nil
	}
	if err := s.advance(&out, claim.StatePolicyChecked); err != nil {
		return out, err
	}

	// Assessment stage. An unreachable scorer propagates; the pipeline never
	// invents a category.
	rawCategory, rawEstimate, err := s.estimator.Score(logCtx, sub.Photo)
	if err != nil {
		return out, fmt.Errorf("%w: %v", claim.ErrAssessmentUnavailable, err)
	}
	out.Assessment = claim.NewAssessment(rawCategory, rawEstimate, s.cfg.Bounds)
	if err := s.advance(&out, claim.StateAssessed); err != nil {
		return out, err
	}
	logging.Info(logCtx, "damage assessed",
		slog.String("category", out.Assessment.Category.String()),
		slog.String("estimate", out.Assessment.Estimate.String()),
	)

	// Weather stage. Any lookup failure is absorbed: absence of corroboration,
	// not a system error.
	out.WeatherOK = s.corroborate(logCtx, sub, out.Assessment.Category)
	if err := s.advance(&out, claim.StateWeatherChecked); err != nil {
		return out, err
	}

	// Decision stage.
	out.Decision = claim.Decide(out.Assessment, out.WeatherOK, s.cfg.ApprovalThreshold)
	if err := s.advance(&out, claim.StateDecided); err != nil {
		return out, err
	}
	logging.Info(logCtx, "claim decided",
		slog.Bool("approved", out.Decision.Approved),
		slog.String("reason", out.Decision.Reason),
	)

	// Payout stage, approved claims only. A failed payout is fatal to the
	// submission and leaves no record behind.
	if out.Decision.Approved {
		payoutCtx, cancelPayout := s.stageContext(logCtx, s.cfg.PayoutTimeout)
		txID, err := s.gateway.Refund(payoutCtx, ports.RefundRequest{
			Amount:         out.Assessment.Estimate,
			Destination:    sub.ClaimantEmail,
			IdempotencyKey: out.ClaimRef,
		})
		cancelPayout()
		if err != nil {
			if _, advErr := claim.Advance(out.State, claim.StateDenied); advErr == nil {
				out.State = claim.StateDenied
			}
			return out, fmt.Errorf("%w: %v", claim.ErrPayoutFailed, err)
		}
		out.TransactionID = txID
		if err := s.advance(&out, claim.StatePaid); err != nil {
			return out, err
		}
		logging.Info(logCtx, "payout issued", slog.String("transaction_id", txID))
	} else {
		if err := s.advance(&out, claim.StateDenied); err != nil {
			return out, err
		}
	}

	// Record stage. Losing the audit row for a money-moving claim is a
	// correctness violation, so failures always propagate.
	record := s.buildRecord(sub, out)
	if err := record.CheckInvariant(); err != nil {
		return out, errs.Wrap(err, "claim record invariant")
	}
	if err := s.uow.WithTx(logCtx, func(txCtx context.Context) error {
		recordID, err := s.repo.Append(txCtx, record)
		if err != nil {
			return err
		}
		out.RecordID = recordID
		return nil
	}); err != nil {
		return out, fmt.Errorf("%w: %v", claim.ErrPersistenceFailed, err)
	}
	if err := s.advance(&out, claim.StateDone); err != nil {
		return out, err
	}
	logging.Info(logCtx, "claim recorded", slog.Uint64("record_id", out.RecordID))

	s.notifyBestEffort(logCtx, sub, out)
	return out, nil
}

func (s *Service) advance(out *Outcome, to claim.State) error {
	state, err := claim.Advance(out.State, to)
	if err != nil {
		return err
	}
	out.State = state
	return nil
}

// corroborate turns the date of loss into an unambiguous instant (noon UTC on
// the loss date, inside the day the timemachine endpoint returns) and applies
// the per-category corroboration rule to the returned hours.
func (s *Service) corroborate(ctx context.Context, sub claim.Submission, category claim.DamageCategory) bool {
	y, m, d := sub.DateOfLoss.UTC().Date()
	at := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)

	weatherCtx, cancel := s.stageContext(ctx, s.cfg.WeatherTimeout)
	defer cancel()

	hours, err := s.weather.Lookup(weatherCtx, sub.Location, at)
	if err != nil {
		logging.Warn(ctx, "weather lookup failed, treating as uncorroborated",
			slog.Any("err", errs.Loggable(err)),
		)
		return false
	}
	return claim.Corroborates(category, hours)
}

func (s *Service) buildRecord(sub claim.Submission, out Outcome) claim.Record {
	var txID *string
	if out.Decision.Approved && out.TransactionID != "" {
		txID = &out.TransactionID
	}

	return claim.Record{
		ClaimRef:      out.ClaimRef,
		PolicyNumber:  sub.PolicyNumber,
		ClaimantName:  sub.ClaimantName,
		ClaimantEmail: sub.ClaimantEmail,
		DateOfLoss:    sub.DateOfLoss,
		Location:      sub.Location,
		Category:      out.Assessment.Category,
		Estimate:      out.Assessment.Estimate,
		WeatherOK:     out.WeatherOK,
		Approved:      out.Decision.Approved,
		Reason:        out.Decision.Reason,
		TransactionID: txID,
		CreatedAt:     s.now(),
	}
}

func (s *Service) notifyBestEffort(ctx context.Context, sub claim.Submission, out Outcome) {
	if s.notifier == nil {
		return
	}

	err := s.notifier.Publish(ctx, ports.OutcomeEvent{
		ClaimRef:     out.ClaimRef,
		PolicyNumber: sub.PolicyNumber,
		State:        string(out.State),
		Approved:     out.Decision.Approved,
		Reason:       out.Decision.Reason,
		Estimate:     out.Assessment.Estimate,
		RecordID:     out.RecordID,
	})
	if err != nil {
		logging.Warn(ctx, "outcome notification failed", slog.Any("err", errs.Loggable(err)))
	}
}
