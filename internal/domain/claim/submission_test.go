package claim

import (
	"errors"
	"testing"
	"time"
)

func validSubmission() Submission {
	return Submission{
		PolicyNumber:  "DEMO-12345",
		ClaimantName:  "Anna Keller",
		ClaimantEmail: "anna@example.com",
		DateOfLoss:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Location:      "8001",
		Photo:         []byte{0x01, 0x02},
	}
}

func TestValidateAccepts(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	if err := validSubmission().Validate(now); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		mutate func(*Submission)
	}{
		{"missing policy number", func(s *Submission) { s.PolicyNumber = "  " }},
		{"missing name", func(s *Submission) { s.ClaimantName = "" }},
		{"bad email", func(s *Submission) { s.ClaimantEmail = "not-an-email" }},
		{"zero date", func(s *Submission) { s.DateOfLoss = time.Time{} }},
		{"future date", func(s *Submission) { s.DateOfLoss = now.AddDate(0, 0, 1) }},
		{"missing location", func(s *Submission) { s.Location = "" }},
		{"missing photo", func(s *Submission) { s.Photo = nil }},
		{"empty photo", func(s *Submission) { s.Photo = []byte{} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validSubmission()
			tc.mutate(&sub)
			if err := sub.Validate(now); !errors.Is(err, ErrInvalidSubmission) {
				t.Fatalf("Validate() error = %v, want ErrInvalidSubmission", err)
			}
		})
	}
}

func TestValidateSameDayLoss(t *testing.T) {
	// A loss dated today is not "in the future" even when submitted earlier
	// in the day than the loss timestamp.
	now := time.Date(2025, 6, 10, 0, 30, 0, 0, time.UTC)
	sub := validSubmission()
	sub.DateOfLoss = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	if err := sub.Validate(now); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}
