package claim

import (
	"fmt"
	"strings"
	"time"
)

// Submission is the immutable input to one pipeline run. It is built once per
// user request and never mutated; policy validity is recomputed on every call
// rather than cached in any shared state.
type Submission struct {
	PolicyNumber  string
	ClaimantName  string
	ClaimantEmail string
	DateOfLoss    time.Time
	Location      string
	Photo         []byte
}

// Validate checks the submission shape before the pipeline is entered.
// An absent photo is a validation failure: the assessor never sees a claim
// without evidence (fail closed).
func (s Submission) Validate(now time.Time) error {
	if strings.TrimSpace(s.PolicyNumber) == "" {
		return fmt.Errorf("%w: policy number is required", ErrInvalidSubmission)
	}
	if strings.TrimSpace(s.ClaimantName) == "" {
		return fmt.Errorf("%w: claimant name is required", ErrInvalidSubmission)
	}
	email := strings.TrimSpace(s.ClaimantEmail)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: claimant email %q is not usable", ErrInvalidSubmission, s.ClaimantEmail)
	}
	if s.DateOfLoss.IsZero() {
		return fmt.Errorf("%w: date of loss is required", ErrInvalidSubmission)
	}
	if dateOnly(s.DateOfLoss).After(dateOnly(now)) {
		return fmt.Errorf("%w: date of loss %s is in the future", ErrInvalidSubmission, s.DateOfLoss.Format("2006-01-02"))
	}
	if strings.TrimSpace(s.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrInvalidSubmission)
	}
	if len(s.Photo) == 0 {
		return fmt.Errorf("%w: a damage photo is required", ErrInvalidSubmission)
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
