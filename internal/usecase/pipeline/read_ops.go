package pipeline

import (
	"context"
	"errors"

	"github.com/maverickins/claims-intake/internal/domain/claim"
	"github.com/maverickins/claims-intake/internal/errs"
	"github.com/maverickins/claims-intake/internal/ports"
)

// ListRecords reads from the audit log.
func (s *Service) ListRecords(ctx context.Context, filter ports.RecordFilter) ([]claim.Record, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	return s.repo.ListRecords(ctx, filter)
}

// GetRecord fetches a single audit row by id.
func (s *Service) GetRecord(ctx context.Context, recordID uint64) (claim.Record, error) {
	if ctx == nil {
		return claim.Record{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return claim.Record{}, errs.Wrap(err, "check context")
	}
	return s.repo.GetRecord(ctx, recordID)
}
