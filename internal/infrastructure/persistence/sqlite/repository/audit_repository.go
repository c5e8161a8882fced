package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/maverickins/claims-intake/internal/domain/claim"
	"github.com/maverickins/claims-intake/internal/errs"
	"github.com/maverickins/claims-intake/internal/infrastructure/persistence/sqlite/model"
	"github.com/maverickins/claims-intake/internal/ports"
)

const dateLayout = "2006-01-02"

// AuditRepository is the sqlite-backed append-only audit store.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// Append inserts one audit row and returns its assigned record id. The row
// invariant is re-checked here so no store can ever hold an approved record
// without a transaction id.
func (r *AuditRepository) Append(ctx context.Context, record claim.Record) (uint64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	if err := record.CheckInvariant(); err != nil {
		return 0, errs.Wrap(err, "audit row invariant")
	}

	row := model.ClaimRecord{
		ClaimRef:      record.ClaimRef,
		PolicyNumber:  record.PolicyNumber,
		ClaimantName:  record.ClaimantName,
		ClaimantEmail: record.ClaimantEmail,
		DateOfLoss:    record.DateOfLoss.UTC().Format(dateLayout),
		Location:      record.Location,
		Category:      record.Category.String(),
		Estimate:      record.Estimate,
		WeatherOK:     record.WeatherOK,
		Approved:      record.Approved,
		Reason:        record.Reason,
		TransactionID: record.TransactionID,
		CreatedAt:     record.CreatedAt.UTC().Format(time.RFC3339),
	}

	if err := db.Create(&row).Error; err != nil {
		return 0, errs.Wrap(err, "insert claim record")
	}
	return row.RecordID, nil
}

func (r *AuditRepository) GetRecord(ctx context.Context, recordID uint64) (claim.Record, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return claim.Record{}, err
	}

	var row model.ClaimRecord
	if err := db.Where("record_id = ?", recordID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return claim.Record{}, fmt.Errorf("%w: id %d", claim.ErrRecordNotFound, recordID)
		}
		return claim.Record{}, errs.Wrap(err, "query claim record")
	}
	return mapRecord(row), nil
}

func (r *AuditRepository) ListRecords(ctx context.Context, filter ports.RecordFilter) ([]claim.Record, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.ClaimRecord{})
	if policyNumber := strings.TrimSpace(filter.PolicyNumber); policyNumber != "" {
		query = query.Where("policy_number = ?", policyNumber)
	}
	if filter.ApprovedOnly {
		query = query.Where("approved = ?", true)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []model.ClaimRecord
	if err := query.Order("record_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query claim records")
	}

	records := make([]claim.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, mapRecord(row))
	}
	return records, nil
}

func mapRecord(row model.ClaimRecord) claim.Record {
	dateOfLoss, _ := time.ParseInLocation(dateLayout, row.DateOfLoss, time.UTC)
	createdAt, _ := time.Parse(time.RFC3339, row.CreatedAt)

	return claim.Record{
		RecordID:      row.RecordID,
		ClaimRef:      row.ClaimRef,
		PolicyNumber:  row.PolicyNumber,
		ClaimantName:  row.ClaimantName,
		ClaimantEmail: row.ClaimantEmail,
		DateOfLoss:    dateOfLoss,
		Location:      row.Location,
		Category:      claim.DamageCategory(row.Category),
		Estimate:      row.Estimate,
		WeatherOK:     row.WeatherOK,
		Approved:      row.Approved,
		Reason:        row.Reason,
		TransactionID: row.TransactionID,
		CreatedAt:     createdAt,
	}
}
