package ports

import (
	"context"

	"github.com/maverickins/claims-intake/internal/domain/claim"
)

// RecordFilter narrows audit reads.
type RecordFilter struct {
	PolicyNumber string
	ApprovedOnly bool
	Limit        int
}

// AuditReadRepository exposes the read side of the audit log.
type AuditReadRepository interface {
	GetRecord(ctx context.Context, recordID uint64) (claim.Record, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]claim.Record, error)
}

// AuditRepository is the append-only audit store. Append assigns the record
// id; identical content appended twice yields two distinct rows. Rows are
// never updated or deleted.
type AuditRepository interface {
	AuditReadRepository
	Append(ctx context.Context, record claim.Record) (recordID uint64, err error)
}
