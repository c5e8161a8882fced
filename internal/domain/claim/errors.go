package claim

import "errors"

var (
	// ErrInvalidSubmission marks a submission rejected before pipeline entry.
	ErrInvalidSubmission = errors.New("invalid claim submission")

	// ErrAssessmentUnavailable means the vision collaborator could not score
	// the photo. The pipeline never guesses a category in its place.
	ErrAssessmentUnavailable = errors.New("damage assessment unavailable")

	// ErrPayoutFailed means the payment collaborator refused or failed the
	// refund. Fatal to the submission: no audit record is written.
	ErrPayoutFailed = errors.New("payout issuance failed")

	// ErrPersistenceFailed means the audit append did not complete. An
	// approved-but-unrecorded claim is a correctness violation, so this
	// always propagates.
	ErrPersistenceFailed = errors.New("audit record persistence failed")

	// ErrRecordNotFound is returned by audit reads for unknown record ids.
	ErrRecordNotFound = errors.New("claim record not found")
)
