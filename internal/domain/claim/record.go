package claim

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Record is the append-only audit entity for one completed pipeline run.
// It is created exactly once per decided claim (never for a policy-rejected
// submission) and never updated or deleted afterwards.
type Record struct {
	RecordID      uint64
	ClaimRef      string
	PolicyNumber  string
	ClaimantName  string
	ClaimantEmail string
	DateOfLoss    time.Time
	Location      string
	Category      DamageCategory
	Estimate      decimal.Decimal
	WeatherOK     bool
	Approved      bool
	Reason        string
	TransactionID *string
	CreatedAt     time.Time
}

// CheckInvariant enforces the money-movement invariant: an approved record
// carries a non-empty transaction id, a denied record carries none.
func (r Record) CheckInvariant() error {
	if r.Approved {
		if r.TransactionID == nil || *r.TransactionID == "" {
			return fmt.Errorf("approved record %q has no transaction id", r.ClaimRef)
		}
		return nil
	}
	if r.TransactionID != nil {
		return fmt.Errorf("denied record %q carries transaction id %q", r.ClaimRef, *r.TransactionID)
	}
	return nil
}
